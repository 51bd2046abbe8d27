package http

import (
	"net/http"
	"strconv"

	"github.com/aussiebroadwan/spacehub/internal/accounts/service"
	"github.com/aussiebroadwan/spacehub/pkg/accountsdk"
	"github.com/aussiebroadwan/spacehub/pkg/httpx"
)

// AccountsHandler serves the admin-only account management routes.
type AccountsHandler struct {
	Admin *service.AdminService
}

// HandleList godoc
//
//	@Summary	List accounts
//	@Tags		Admin
//	@Produce	json
//	@Param		role	query		string	false	"Filter by role"
//	@Param		active	query		bool	false	"Filter by active flag"
//	@Param		limit	query		int		false	"Page size (default 50, max 200)"
//	@Param		offset	query		int		false	"Page offset"
//	@Success	200		{object}	accountsdk.AccountList
//	@Failure	403		{object}	accountsdk.ErrorResponse	"forbidden"
//	@Security	BearerAuth
//	@Router		/v1/accounts [get].
func (h *AccountsHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filter := service.ListFilter{Role: q.Get("role")}
	fields := map[string]string{}

	if v := q.Get("active"); v != "" {
		active, err := strconv.ParseBool(v)
		if err != nil {
			fields["active"] = "must be true or false"
		}
		filter.Active = &active
	}
	if v := q.Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			fields["limit"] = "must be a number"
		}
		filter.Limit = n
	}
	if v := q.Get("offset"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			fields["offset"] = "must be a number"
		}
		filter.Offset = n
	}
	if len(fields) > 0 {
		writeError(w, r, &service.ValidationError{Fields: fields})
		return
	}

	list, err := h.Admin.ListAccounts(r.Context(), filter)
	if err != nil {
		writeError(w, r, err)
		return
	}

	limit := filter.Limit
	if limit <= 0 {
		limit = service.DefaultListLimit
	}
	httpx.WriteJSON(w, http.StatusOK, accountsdk.AccountList{
		Accounts: toAccounts(list),
		Limit:    min(limit, service.MaxListLimit),
		Offset:   filter.Offset,
	})
}

// HandleGet godoc
//
//	@Summary	Get an account
//	@Tags		Admin
//	@Produce	json
//	@Param		id	path		string	true	"Account ID"
//	@Success	200	{object}	accountsdk.Account
//	@Failure	403	{object}	accountsdk.ErrorResponse	"forbidden"
//	@Failure	404	{object}	accountsdk.ErrorResponse	"not_found"
//	@Security	BearerAuth
//	@Router		/v1/accounts/{id} [get].
func (h *AccountsHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	acct, err := h.Admin.GetAccount(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, toAccount(acct))
}

// HandleChangeRole godoc
//
//	@Summary	Change an account's role
//	@Tags		Admin
//	@Accept		json
//	@Produce	json
//	@Param		id		path		string						true	"Account ID"
//	@Param		request	body		accountsdk.ChangeRoleRequest	true	"New role"
//	@Success	200		{object}	accountsdk.Account
//	@Failure	403		{object}	accountsdk.ErrorResponse	"forbidden"
//	@Failure	404		{object}	accountsdk.ErrorResponse	"not_found"
//	@Security	BearerAuth
//	@Router		/v1/accounts/{id}/role [patch].
func (h *AccountsHandler) HandleChangeRole(w http.ResponseWriter, r *http.Request) {
	p, err := principalFrom(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}

	var req accountsdk.ChangeRoleRequest
	if err := decode(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	acct, err := h.Admin.ChangeRole(r.Context(), actor(p), r.PathValue("id"), req.Role)
	if err != nil {
		writeError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, toAccount(acct))
}

// HandleSetStatus godoc
//
//	@Summary	Activate or deactivate an account
//	@Tags		Admin
//	@Accept		json
//	@Produce	json
//	@Param		id		path		string						true	"Account ID"
//	@Param		request	body		accountsdk.SetStatusRequest	true	"Active flag"
//	@Success	200		{object}	accountsdk.Account
//	@Failure	403		{object}	accountsdk.ErrorResponse	"forbidden"
//	@Failure	404		{object}	accountsdk.ErrorResponse	"not_found"
//	@Security	BearerAuth
//	@Router		/v1/accounts/{id}/status [patch].
func (h *AccountsHandler) HandleSetStatus(w http.ResponseWriter, r *http.Request) {
	p, err := principalFrom(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}

	var req accountsdk.SetStatusRequest
	if err := decode(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	if req.Active == nil {
		writeError(w, r, &service.ValidationError{Fields: map[string]string{"active": "is required"}})
		return
	}

	acct, err := h.Admin.SetActive(r.Context(), actor(p), r.PathValue("id"), *req.Active)
	if err != nil {
		writeError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, toAccount(acct))
}
