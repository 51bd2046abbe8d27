package http

import (
	"context"
	"net/http"

	"github.com/aussiebroadwan/spacehub/internal/accounts/domain"
	"github.com/aussiebroadwan/spacehub/internal/accounts/service"
	"github.com/aussiebroadwan/spacehub/pkg/accountsdk"
	"github.com/aussiebroadwan/spacehub/pkg/httpx"
)

// AuthHandler serves signup, verification, login and password recovery.
type AuthHandler struct {
	Accounts *service.AccountService
	Profiles *service.ProfileService
}

// HandleSignup godoc
//
//	@Summary		Sign up
//	@Description	Create a self-service account. A verification code is emailed to the address.
//	@Tags			Auth
//	@Accept			json
//	@Produce		json
//	@Param			request	body		accountsdk.SignupRequest	true	"Signup request"
//	@Success		201		{object}	accountsdk.Account
//	@Failure		409		{object}	accountsdk.ErrorResponse	"duplicate_account"
//	@Failure		422		{object}	accountsdk.ErrorResponse	"validation_error"
//	@Failure		502		{object}	accountsdk.ErrorResponse	"delivery_failed"
//	@Router			/v1/auth/signup [post].
func (h *AuthHandler) HandleSignup(w http.ResponseWriter, r *http.Request) {
	var req accountsdk.SignupRequest
	if err := decode(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	acct, err := h.Accounts.Signup(r.Context(), service.SignupInput{
		Email:           req.Email,
		Password:        req.Password,
		PasswordConfirm: req.PasswordConfirm,
		Role:            domain.Role(req.Role),
		FullName:        req.FullName,
		PhoneNo:         req.PhoneNo,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusCreated, toAccount(acct))
}

// HandleResendOTP godoc
//
//	@Summary	Resend verification code
//	@Tags		Auth
//	@Accept		json
//	@Param		request	body	accountsdk.EmailRequest	true	"Account email"
//	@Success	204
//	@Failure	404	{object}	accountsdk.ErrorResponse	"not_found"
//	@Failure	502	{object}	accountsdk.ErrorResponse	"delivery_failed"
//	@Router		/v1/auth/resend-otp [post].
func (h *AuthHandler) HandleResendOTP(w http.ResponseWriter, r *http.Request) {
	var req accountsdk.EmailRequest
	if err := decode(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	if err := h.Accounts.ResendVerification(r.Context(), domain.NormalizeEmail(req.Email)); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// HandleVerifyOTP godoc
//
//	@Summary		Verify one-time code
//	@Description	Redeem an emailed code. Marks the account verified and returns a session.
//	@Tags			Auth
//	@Accept			json
//	@Produce		json
//	@Param			request	body		accountsdk.VerifyOTPRequest	true	"Email and code"
//	@Success		200		{object}	accountsdk.SessionResponse
//	@Failure		400		{object}	accountsdk.ErrorResponse	"expired"
//	@Failure		401		{object}	accountsdk.ErrorResponse	"invalid_credentials"
//	@Router			/v1/auth/verify-otp [post].
func (h *AuthHandler) HandleVerifyOTP(w http.ResponseWriter, r *http.Request) {
	var req accountsdk.VerifyOTPRequest
	if err := decode(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	s, err := h.Accounts.VerifyOTP(r.Context(), domain.NormalizeEmail(req.Email), req.Code)
	h.writeSession(w, r, s, err)
}

// HandleLogin godoc
//
//	@Summary	Log in
//	@Tags		Auth
//	@Accept		json
//	@Produce	json
//	@Param		request	body		accountsdk.LoginRequest	true	"Credentials"
//	@Success	200		{object}	accountsdk.SessionResponse
//	@Failure	401		{object}	accountsdk.ErrorResponse	"invalid_credentials or account_not_verified"
//	@Router		/v1/auth/login [post].
func (h *AuthHandler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	var req accountsdk.LoginRequest
	if err := decode(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	s, err := h.Accounts.Login(r.Context(), domain.NormalizeEmail(req.Email), req.Password)
	h.writeSession(w, r, s, err)
}

// HandleForgotPassword godoc
//
//	@Summary	Request a password reset code
//	@Tags		Auth
//	@Accept		json
//	@Param		request	body	accountsdk.EmailRequest	true	"Account email"
//	@Success	204
//	@Failure	404	{object}	accountsdk.ErrorResponse	"not_found"
//	@Failure	502	{object}	accountsdk.ErrorResponse	"delivery_failed"
//	@Router		/v1/auth/forgot-password [post].
func (h *AuthHandler) HandleForgotPassword(w http.ResponseWriter, r *http.Request) {
	var req accountsdk.EmailRequest
	if err := decode(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	if err := h.Accounts.ForgotPassword(r.Context(), domain.NormalizeEmail(req.Email)); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// HandleResetPassword godoc
//
//	@Summary	Reset password
//	@Tags		Auth
//	@Accept		json
//	@Produce	json
//	@Param		request	body		accountsdk.ResetPasswordRequest	true	"New password"
//	@Success	200		{object}	accountsdk.SessionResponse
//	@Failure	404		{object}	accountsdk.ErrorResponse	"not_found"
//	@Failure	422		{object}	accountsdk.ErrorResponse	"validation_error"
//	@Router		/v1/auth/reset-password [patch].
func (h *AuthHandler) HandleResetPassword(w http.ResponseWriter, r *http.Request) {
	var req accountsdk.ResetPasswordRequest
	if err := decode(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	s, err := h.Accounts.ResetPassword(r.Context(), service.ResetInput{
		Email:           req.Email,
		Code:            req.Code,
		Password:        req.Password,
		PasswordConfirm: req.PasswordConfirm,
	})
	h.writeSession(w, r, s, err)
}

// HandleUpdatePassword godoc
//
//	@Summary		Change password
//	@Description	Rotate the caller's password. Every token issued before the change stops working.
//	@Tags			Auth
//	@Accept			json
//	@Produce		json
//	@Param			request	body		accountsdk.UpdatePasswordRequest	true	"Current and new password"
//	@Success		200		{object}	accountsdk.SessionResponse
//	@Failure		401		{object}	accountsdk.ErrorResponse	"invalid_credentials"
//	@Failure		422		{object}	accountsdk.ErrorResponse	"validation_error"
//	@Security		BearerAuth
//	@Router			/v1/auth/password [patch].
func (h *AuthHandler) HandleUpdatePassword(w http.ResponseWriter, r *http.Request) {
	p, err := principalFrom(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}

	var req accountsdk.UpdatePasswordRequest
	if err := decode(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	s, err := h.Accounts.UpdatePassword(r.Context(), p.ID, service.UpdatePasswordInput{
		CurrentPassword: req.CurrentPassword,
		Password:        req.Password,
		PasswordConfirm: req.PasswordConfirm,
	})
	h.writeSession(w, r, s, err)
}

// writeSession answers with the session and the account it belongs to.
func (h *AuthHandler) writeSession(w http.ResponseWriter, r *http.Request, s service.Session, err error) {
	if err != nil {
		writeError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, sessionResponse(r.Context(), h.Profiles, s))
}

// sessionResponse attaches the account when it can be read back; the token
// is valid either way.
func sessionResponse(ctx context.Context, profiles *service.ProfileService, s service.Session) accountsdk.SessionResponse {
	out := toSession(s)
	if profiles == nil {
		return out
	}
	if acct, err := profiles.Me(ctx, s.AccountID); err == nil {
		view := toAccount(acct)
		out.Account = &view
	}
	return out
}
