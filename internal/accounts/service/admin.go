package service

import (
	"context"
	"log/slog"

	"github.com/aussiebroadwan/spacehub/internal/accounts/domain"
	"github.com/aussiebroadwan/spacehub/internal/accounts/store"
	"github.com/aussiebroadwan/spacehub/pkg/slogx"
)

const (
	DefaultListLimit = 50
	MaxListLimit     = 200
)

// AdminService holds the privileged account operations.
type AdminService struct {
	Store store.Store
}

type ListFilter struct {
	Role   string
	Active *bool
	Limit  int
	Offset int
}

func (s *AdminService) ListAccounts(ctx context.Context, f ListFilter) ([]domain.Account, error) {
	filter := store.AccountFilter{Active: f.Active, Limit: f.Limit, Offset: f.Offset}
	if f.Role != "" {
		role, err := domain.ParseRole(f.Role)
		if err != nil {
			return nil, invalid("role", "is unknown")
		}
		filter.Role = role
	}
	switch {
	case filter.Limit <= 0:
		filter.Limit = DefaultListLimit
	case filter.Limit > MaxListLimit:
		filter.Limit = MaxListLimit
	}
	if filter.Offset < 0 {
		return nil, invalid("offset", "must not be negative")
	}

	out, err := s.Store.Accounts().ListAccounts(ctx, filter)
	if err != nil {
		return nil, err
	}
	if out == nil {
		out = []domain.Account{}
	}
	return out, nil
}

// GetAccount returns a single account by id, without secrets.
func (s *AdminService) GetAccount(ctx context.Context, accountID string) (domain.Account, error) {
	a, err := s.Store.Accounts().GetAccountByID(ctx, accountID, store.Default)
	if err != nil {
		return domain.Account{}, mapStoreErr(err)
	}
	return a, nil
}

// ChangeRole moves an account to role, converting its profile. Admins cannot
// change their own role.
func (s *AdminService) ChangeRole(ctx context.Context, actor domain.Account, accountID, role string) (domain.Account, error) {
	r, err := domain.ParseRole(role)
	if err != nil {
		return domain.Account{}, invalid("role", "is unknown")
	}
	if actor.ID == accountID {
		return domain.Account{}, ErrForbidden
	}

	a, err := s.Store.Accounts().GetAccountByID(ctx, accountID, store.Default)
	if err != nil {
		return domain.Account{}, mapStoreErr(err)
	}
	if a.Role == r {
		return a, nil
	}

	err = s.Store.Accounts().UpdateAccount(ctx, a.ID, store.AccountPatch{
		Role:          &r,
		Profile:       domain.ConvertProfile(a.Profile, r),
		ExpectVersion: &a.Version,
	})
	if err != nil {
		return domain.Account{}, mapStoreErr(err)
	}

	slogx.FromContext(ctx).Info("account role changed",
		slog.String("account_id", a.ID),
		slog.String("from", string(a.Role)),
		slog.String("to", string(r)),
		slog.String("by", actor.ID),
	)
	return s.get(ctx, a.ID)
}

// SetActive activates or deactivates an account. Admins cannot deactivate
// themselves.
func (s *AdminService) SetActive(ctx context.Context, actor domain.Account, accountID string, active bool) (domain.Account, error) {
	if actor.ID == accountID && !active {
		return domain.Account{}, ErrForbidden
	}
	if err := s.Store.Accounts().UpdateAccount(ctx, accountID, store.AccountPatch{Active: &active}); err != nil {
		return domain.Account{}, mapStoreErr(err)
	}

	slogx.FromContext(ctx).Info("account status changed",
		slog.String("account_id", accountID),
		slog.Bool("active", active),
		slog.String("by", actor.ID),
	)
	return s.get(ctx, accountID)
}

func (s *AdminService) get(ctx context.Context, id string) (domain.Account, error) {
	a, err := s.Store.Accounts().GetAccountByID(ctx, id, store.Default)
	return a, mapStoreErr(err)
}
