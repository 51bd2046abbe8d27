package http

import (
	"net/http"

	"github.com/aussiebroadwan/spacehub/internal/accounts/service"
	"github.com/aussiebroadwan/spacehub/pkg/accountsdk"
	"github.com/aussiebroadwan/spacehub/pkg/httpx"
)

// MeHandler serves what an authenticated account does to itself.
type MeHandler struct {
	Profiles *service.ProfileService
}

// HandleGet godoc
//
//	@Summary	Current account
//	@Tags		Me
//	@Produce	json
//	@Success	200	{object}	accountsdk.Account
//	@Failure	401	{object}	accountsdk.ErrorResponse	"unauthenticated"
//	@Security	BearerAuth
//	@Router		/v1/me [get].
func (h *MeHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	p, err := principalFrom(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}

	acct, err := h.Profiles.Me(r.Context(), p.ID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, toAccount(acct))
}

// HandleUpdate godoc
//
//	@Summary		Update account
//	@Description	Change account-level fields. Passwords are changed through /v1/auth/password.
//	@Tags			Me
//	@Accept			json
//	@Produce		json
//	@Param			request	body		accountsdk.UpdateMeRequest	true	"Fields to change"
//	@Success		200		{object}	accountsdk.Account
//	@Failure		409		{object}	accountsdk.ErrorResponse	"duplicate_account"
//	@Failure		422		{object}	accountsdk.ErrorResponse	"validation_error"
//	@Security		BearerAuth
//	@Router			/v1/me [patch].
func (h *MeHandler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	p, err := principalFrom(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}

	var req accountsdk.UpdateMeRequest
	if err := decode(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	acct, err := h.Profiles.UpdateMe(r.Context(), p.ID, service.UpdateMeInput{
		Email:           req.Email,
		Password:        req.Password,
		PasswordConfirm: req.PasswordConfirm,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, toAccount(acct))
}

// HandleUpdateProfile godoc
//
//	@Summary		Update profile
//	@Description	Write role-specific profile fields. Fields the role may not write reject the whole patch.
//	@Tags			Me
//	@Accept			json
//	@Produce		json
//	@Param			request	body		accountsdk.ProfilePatch	true	"Profile fields"
//	@Success		200		{object}	accountsdk.Account
//	@Failure		422		{object}	accountsdk.ErrorResponse	"validation_error"
//	@Security		BearerAuth
//	@Router			/v1/me/profile [patch].
func (h *MeHandler) HandleUpdateProfile(w http.ResponseWriter, r *http.Request) {
	p, err := principalFrom(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}

	var patch accountsdk.ProfilePatch
	if err := decode(w, r, &patch); err != nil {
		writeError(w, r, err)
		return
	}

	acct, err := h.Profiles.UpdateProfile(r.Context(), p.ID, patch)
	if err != nil {
		writeError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, toAccount(acct))
}

// HandleDeactivate godoc
//
//	@Summary	Deactivate account
//	@Tags		Me
//	@Success	204
//	@Security	BearerAuth
//	@Router		/v1/me [delete].
func (h *MeHandler) HandleDeactivate(w http.ResponseWriter, r *http.Request) {
	p, err := principalFrom(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	if err := h.Profiles.DeactivateMe(r.Context(), p.ID); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// HandleAddCard godoc
//
//	@Summary	Add payment card
//	@Tags		Me
//	@Accept		json
//	@Produce	json
//	@Param		request	body		accountsdk.AddCardRequest	true	"Payment method"
//	@Success	201		{object}	accountsdk.Account
//	@Failure	502		{object}	accountsdk.ErrorResponse	"billing_unavailable"
//	@Security	BearerAuth
//	@Router		/v1/me/cards [post].
func (h *MeHandler) HandleAddCard(w http.ResponseWriter, r *http.Request) {
	p, err := principalFrom(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}

	var req accountsdk.AddCardRequest
	if err := decode(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	acct, err := h.Profiles.AddCard(r.Context(), p.ID, service.AddCardInput{PaymentMethodID: req.PaymentMethodID})
	if err != nil {
		writeError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusCreated, toAccount(acct))
}

// HandleRemoveCard godoc
//
//	@Summary	Remove payment card
//	@Tags		Me
//	@Produce	json
//	@Param		cardID	path		string	true	"Card ID"
//	@Success	200		{object}	accountsdk.Account
//	@Failure	404		{object}	accountsdk.ErrorResponse	"not_found"
//	@Security	BearerAuth
//	@Router		/v1/me/cards/{cardID} [delete].
func (h *MeHandler) HandleRemoveCard(w http.ResponseWriter, r *http.Request) {
	p, err := principalFrom(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}

	acct, err := h.Profiles.RemoveCard(r.Context(), p.ID, r.PathValue("cardID"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, toAccount(acct))
}
