package service

import (
	"context"
	"errors"
	"slices"
	"time"

	"github.com/aussiebroadwan/spacehub/internal/accounts/domain"
	"github.com/aussiebroadwan/spacehub/internal/accounts/store"
)

// Authorizer resolves bearer tokens to live accounts.
type Authorizer struct {
	Store  store.Store
	Tokens *TokenIssuer
}

// Authenticate verifies raw and re-reads the account it names. It fails with
// ErrUnauthenticated when the token is missing or invalid, the account is
// gone or deactivated, or the token predates the last password change.
func (a *Authorizer) Authenticate(ctx context.Context, raw string) (domain.Account, error) {
	if raw == "" {
		return domain.Account{}, ErrUnauthenticated
	}
	claims, err := a.Tokens.Verify(raw)
	if err != nil {
		return domain.Account{}, ErrUnauthenticated
	}

	acct, err := a.Store.Accounts().GetAccountByID(ctx, claims.AccountID, store.Default)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return domain.Account{}, ErrUnauthenticated
		}
		return domain.Account{}, err
	}
	if !acct.Active {
		return domain.Account{}, ErrUnauthenticated
	}
	if issuedBeforePasswordChange(claims.IssuedAt, acct.PasswordChangedAt) {
		return domain.Account{}, ErrUnauthenticated
	}
	return acct, nil
}

// issuedBeforePasswordChange compares at millisecond resolution, the
// precision of both the iat_ms claim and the stored change time. The session
// issued by the change itself carries an equal or later instant and passes.
func issuedBeforePasswordChange(iat time.Time, changedAt *time.Time) bool {
	if changedAt == nil {
		return false
	}
	return iat.Before(changedAt.Truncate(time.Millisecond))
}

// RestrictTo returns ErrForbidden unless the account holds one of roles.
func RestrictTo(a domain.Account, roles ...domain.Role) error {
	if slices.Contains(roles, a.Role) {
		return nil
	}
	return ErrForbidden
}
