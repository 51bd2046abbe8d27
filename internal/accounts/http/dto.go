package http

import (
	"encoding/json"

	"github.com/aussiebroadwan/spacehub/internal/accounts/domain"
	"github.com/aussiebroadwan/spacehub/internal/accounts/service"
	"github.com/aussiebroadwan/spacehub/pkg/accountsdk"
	"github.com/aussiebroadwan/spacehub/pkg/httpx"
)

// toAccount builds the public view of a. Credential fields have no
// counterpart in accountsdk.Account, so they cannot leak.
func toAccount(a domain.Account) accountsdk.Account {
	out := accountsdk.Account{
		ID:                a.ID,
		Email:             a.Email,
		Role:              string(a.Role),
		Verified:          a.Verified,
		Active:            a.Active,
		BillingCustomerID: a.BillingCustomerID,
		CardIDs:           a.CardIDs,
		PasswordChangedAt: a.PasswordChangedAt,
		Version:           a.Version,
		CreatedAt:         a.CreatedAt,
		UpdatedAt:         a.UpdatedAt,
	}
	if out.CardIDs == nil {
		out.CardIDs = []string{}
	}
	if a.Profile != nil {
		if raw, err := json.Marshal(a.Profile); err == nil {
			out.Profile = raw
		}
	}
	if inv := a.Invitation; inv != nil {
		out.Invitation = &accountsdk.Invitation{
			BranchID:  inv.BranchID,
			InvitedBy: inv.InvitedBy,
			State:     string(inv.State),
			ExpiresAt: inv.ExpiresAt,
		}
	}
	return out
}

func toAccounts(in []domain.Account) []accountsdk.Account {
	out := make([]accountsdk.Account, 0, len(in))
	for _, a := range in {
		out = append(out, toAccount(a))
	}
	return out
}

func toSession(s service.Session) accountsdk.SessionResponse {
	return accountsdk.SessionResponse{
		Token:     s.Token,
		TokenType: "Bearer",
		ExpiresAt: s.ExpiresAt,
	}
}

// actor rebuilds the caller from the principal AuthnMiddleware resolved.
func actor(p httpx.Principal) domain.Account {
	return domain.Account{ID: p.ID, Role: domain.Role(p.Role)}
}
