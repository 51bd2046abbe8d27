package http

import (
	"net/http"

	"github.com/aussiebroadwan/spacehub/internal/accounts/service"
	"github.com/aussiebroadwan/spacehub/pkg/accountsdk"
	"github.com/aussiebroadwan/spacehub/pkg/httpx"
)

// InvitationHandler serves the manager onboarding flow.
type InvitationHandler struct {
	Invitations *service.InvitationService
	Profiles    *service.ProfileService
}

// HandleInvite godoc
//
//	@Summary		Invite a manager
//	@Description	Create a pending manager on a branch and email the acceptance link. Storage owners may only invite onto their own spaces.
//	@Tags			Invitations
//	@Accept			json
//	@Produce		json
//	@Param			request	body		accountsdk.InviteRequest	true	"Invitation"
//	@Success		201		{object}	accountsdk.Account
//	@Failure		403		{object}	accountsdk.ErrorResponse	"forbidden"
//	@Failure		404		{object}	accountsdk.ErrorResponse	"not_found"
//	@Failure		409		{object}	accountsdk.ErrorResponse	"duplicate_account"
//	@Failure		502		{object}	accountsdk.ErrorResponse	"delivery_failed"
//	@Security		BearerAuth
//	@Router			/v1/invitations [post].
func (h *InvitationHandler) HandleInvite(w http.ResponseWriter, r *http.Request) {
	p, err := principalFrom(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}

	var req accountsdk.InviteRequest
	if err := decode(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	acct, err := h.Invitations.InviteManager(r.Context(), actor(p), service.InviteInput{
		Email:    req.Email,
		BranchID: req.BranchID,
		FullName: req.FullName,
		PhoneNo:  req.PhoneNo,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusCreated, toAccount(acct))
}

// HandleAccept godoc
//
//	@Summary		Accept an invitation
//	@Description	Redeem the emailed link. Single use; returns the ticket for /v1/invitations/complete.
//	@Tags			Invitations
//	@Produce		json
//	@Param			email	query		string	true	"Invited email"
//	@Param			token	query		string	true	"Invitation token"
//	@Success		200		{object}	accountsdk.AcceptInvitationResponse
//	@Failure		400		{object}	accountsdk.ErrorResponse	"expired"
//	@Failure		401		{object}	accountsdk.ErrorResponse	"invalid_credentials"
//	@Failure		404		{object}	accountsdk.ErrorResponse	"not_found"
//	@Router			/v1/invitations/accept [get].
func (h *InvitationHandler) HandleAccept(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	email, token := q.Get("email"), q.Get("token")
	if email == "" || token == "" {
		writeError(w, r, &service.ValidationError{Fields: missing(map[string]string{
			"email": email,
			"token": token,
		})})
		return
	}

	acc, err := h.Invitations.AcceptInvitation(r.Context(), email, token)
	if err != nil {
		writeError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, accountsdk.AcceptInvitationResponse{
		Email:     acc.Email,
		Ticket:    acc.Ticket,
		ExpiresAt: acc.ExpiresAt,
	})
}

// HandleComplete godoc
//
//	@Summary	Complete manager registration
//	@Tags		Invitations
//	@Accept		json
//	@Produce	json
//	@Param		request	body		accountsdk.CompleteRegistrationRequest	true	"Ticket and password"
//	@Success	200		{object}	accountsdk.SessionResponse
//	@Failure	401		{object}	accountsdk.ErrorResponse	"invalid_credentials"
//	@Failure	422		{object}	accountsdk.ErrorResponse	"validation_error"
//	@Router		/v1/invitations/complete [post].
func (h *InvitationHandler) HandleComplete(w http.ResponseWriter, r *http.Request) {
	var req accountsdk.CompleteRegistrationRequest
	if err := decode(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	s, err := h.Invitations.CompleteRegistration(r.Context(), service.CompleteInput{
		Email:           req.Email,
		Ticket:          req.Ticket,
		Password:        req.Password,
		PasswordConfirm: req.PasswordConfirm,
		FullName:        req.FullName,
		PhoneNo:         req.PhoneNo,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, sessionResponse(r.Context(), h.Profiles, s))
}

func missing(values map[string]string) map[string]string {
	out := map[string]string{}
	for k, v := range values {
		if v == "" {
			out[k] = "is required"
		}
	}
	return out
}
