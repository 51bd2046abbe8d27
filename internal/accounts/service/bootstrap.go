package service

import (
	"context"
	"errors"
	"log/slog"

	"github.com/aussiebroadwan/spacehub/internal/accounts/domain"
	"github.com/aussiebroadwan/spacehub/internal/accounts/store"
	"github.com/aussiebroadwan/spacehub/pkg/cryptox"
	"github.com/aussiebroadwan/spacehub/pkg/idx"
	"github.com/aussiebroadwan/spacehub/pkg/slogx"
)

var ErrBootstrapIncomplete = errors.New("admin seed needs both email and password")

// BootstrapService seeds the first administrator on an empty deployment.
type BootstrapService struct {
	Store     store.Store
	Hasher    cryptox.Hasher
	Passwords PasswordPolicy
	Now       Clock
}

// IsBootstrapped reports whether any administrator exists.
func (s *BootstrapService) IsBootstrapped(ctx context.Context) (bool, error) {
	n, err := s.Store.Accounts().CountByRole(ctx, domain.RoleAdmin)
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// SeedAdmin creates a verified, active admin unless one already exists.
// It reports whether an account was created.
func (s *BootstrapService) SeedAdmin(ctx context.Context, email, password string) (bool, error) {
	l := slogx.FromContext(ctx)

	// 1. Check if already bootstrapped
	if done, err := s.IsBootstrapped(ctx); err != nil || done {
		return false, err
	}

	// 2. Validate the seed
	email = domain.NormalizeEmail(email)
	if email == "" || password == "" {
		return false, ErrBootstrapIncomplete
	}
	if reason := s.Passwords.check(password); reason != "" {
		return false, invalid("ADMIN_PASSWORD", reason)
	}

	// 3. Hash password
	hash, err := s.Hasher.Hash(password)
	if err != nil {
		l.Error("failed to hash admin password", slog.Any("error", err))
		return false, err
	}

	// 4. Create the admin
	now := s.Now.Now()
	admin := domain.Account{
		ID:           idx.NewAt(now).String(),
		Email:        email,
		PasswordHash: hash,
		Role:         domain.RoleAdmin,
		Verified:     true,
		Active:       true,
		Profile:      domain.NewProfile(domain.RoleAdmin),
		Version:      1,
		CreatedAt:    now,
	}
	if err := s.Store.Accounts().CreateAccount(ctx, admin); err != nil {
		if errors.Is(err, store.ErrAlreadyExists) {
			return false, ErrDuplicateAccount
		}
		return false, err
	}

	l.Info("seeded administrator", slog.String("account_id", admin.ID), slog.String("email", email))
	return true, nil
}
