package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/aussiebroadwan/spacehub/internal/accounts/domain"
	"github.com/aussiebroadwan/spacehub/internal/accounts/store"
	"github.com/aussiebroadwan/spacehub/pkg/cryptox"
	"github.com/aussiebroadwan/spacehub/pkg/idx"
	"github.com/aussiebroadwan/spacehub/pkg/slogx"
)

// AccountService runs the self-service account lifecycle: signup, email
// verification, login and password recovery.
type AccountService struct {
	Store     store.Store
	Hasher    cryptox.Hasher
	Tokens    *TokenIssuer
	Codes     CodeSource
	Mailer    Mailer
	Billing   Billing // optional
	Passwords PasswordPolicy
	Metrics   *Metrics
	Now       Clock

	// OptimisticLocking makes challenge and password writes conditional on
	// the version that was read, so a lost race yields ErrConflict.
	OptimisticLocking bool

	// ResetRequireOTP binds ResetPassword to an outstanding reset code.
	// When false the email address alone is enough.
	ResetRequireOTP bool
}

type SignupInput struct {
	Email           string      `json:"email" validate:"required,email,max=254"`
	Password        string      `json:"password" validate:"required,max=128"`
	PasswordConfirm string      `json:"password_confirm" validate:"required,eqfield=Password"`
	Role            domain.Role `json:"role" validate:"omitempty,oneof=customer storage_owner truck_driver"`
	FullName        string      `json:"full_name" validate:"max=200"`
	PhoneNo         string      `json:"phone_no" validate:"max=40"`
}

// Signup creates an unverified account and emails it a verification code.
//
// When the email cannot be delivered the account is kept but its challenge
// is cleared, and ErrDelivery is returned; ResendVerification is the retry.
func (s *AccountService) Signup(ctx context.Context, in SignupInput) (domain.Account, error) {
	log := slogx.FromContext(ctx)
	accounts := s.Store.Accounts()

	// 1. Validate input
	in.Email = domain.NormalizeEmail(in.Email)
	if in.Role == "" {
		in.Role = domain.RoleCustomer
	}
	if err := checkInput(in, s.Passwords.passwordFields("password", in.Password)); err != nil {
		return domain.Account{}, err
	}

	// 2. Reject taken emails
	_, err := accounts.GetAccountByEmail(ctx, in.Email, store.Default)
	if err == nil {
		return domain.Account{}, ErrDuplicateAccount
	}
	if !errors.Is(err, store.ErrNotFound) {
		log.Error("failed to check email availability", slog.Any("error", err))
		return domain.Account{}, err
	}

	// 3. Hash password
	hash, err := s.Hasher.Hash(in.Password)
	if err != nil {
		log.Error("failed to hash password", slog.Any("error", err))
		return domain.Account{}, err
	}

	// 4. Provision the billing customer. Optional: the reference stays
	// empty and is created on first card registration instead.
	var customerID string
	if s.Billing != nil {
		customerID, err = s.Billing.CreateCustomer(ctx, in.Email, in.FullName)
		if err != nil {
			log.Warn("billing customer not provisioned at signup", slog.Any("error", err))
			customerID = ""
		}
	}

	// 5. Issue the verification challenge
	code, challenge, err := newChallenge(s.Codes, s.Hasher, domain.PurposeVerify)
	if err != nil {
		log.Error("failed to issue verification code", slog.Any("error", err))
		return domain.Account{}, err
	}

	profile, _ := domain.PatchProfile(domain.NewProfile(in.Role), map[string]string{
		"full_name": in.FullName,
		"phone_no":  in.PhoneNo,
	})

	now := s.Now.Now()
	a := domain.Account{
		ID:                idx.NewAt(now).String(),
		Email:             in.Email,
		PasswordHash:      hash,
		Role:              in.Role,
		Active:            true,
		Challenge:         &challenge,
		Profile:           profile,
		BillingCustomerID: customerID,
		Version:           1,
		CreatedAt:         now,
		UpdatedAt:         now,
	}

	// 6. Persist
	if err := accounts.CreateAccount(ctx, a); err != nil {
		if errors.Is(err, store.ErrAlreadyExists) {
			return domain.Account{}, ErrDuplicateAccount
		}
		log.Error("failed to create account", slog.Any("error", err))
		return domain.Account{}, err
	}
	s.Metrics.signup()

	log.Info("account created",
		slog.String("account_id", a.ID),
		slog.String("role", string(a.Role)),
	)

	// 7. Email the code
	if err := sendCode(ctx, accounts, s.Mailer, s.Metrics, a, a.Version, code, domain.PurposeVerify); err != nil {
		return domain.Account{}, err
	}
	return a.Redacted(), nil
}

// ResendVerification replaces the verification code of an unverified account
// and emails it again.
func (s *AccountService) ResendVerification(ctx context.Context, email string) error {
	accounts := s.Store.Accounts()

	a, err := accounts.GetAccountByEmail(ctx, domain.NormalizeEmail(email), store.Default)
	if err != nil {
		return mapStoreErr(err)
	}
	if a.Verified {
		return invalid("email", "is already verified")
	}
	return s.issueAndSend(ctx, a, domain.PurposeVerify)
}

// VerifyOTP checks the outstanding code, marks the account verified and
// returns a session. Both verification and reset codes are accepted since
// they share the account's single challenge slot.
func (s *AccountService) VerifyOTP(ctx context.Context, email, code string) (Session, error) {
	log := slogx.FromContext(ctx)
	accounts := s.Store.Accounts()

	a, err := accounts.GetAccountByEmail(ctx, domain.NormalizeEmail(email), store.WithSecrets)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return Session{}, ErrAuth
		}
		return Session{}, err
	}
	if !a.Active {
		return Session{}, ErrAuth
	}
	if err := checkChallenge(s.Hasher, a.Challenge, code, s.Now, domain.PurposeVerify, domain.PurposeReset); err != nil {
		log.Info("one-time code rejected", slog.String("account_id", a.ID), slog.Any("reason", err))
		return Session{}, err
	}

	verified := true
	err = accounts.UpdateAccount(ctx, a.ID, store.AccountPatch{
		Verified:       &verified,
		ClearChallenge: true,
		ExpectVersion:  versionGuard(s.OptimisticLocking, a.Version),
	})
	if err != nil {
		return Session{}, mapStoreErr(err)
	}

	log.Info("account verified", slog.String("account_id", a.ID))
	return s.Tokens.Issue(a.ID, s.Now.Now())
}

// Login exchanges email and password for a session. Unknown emails and wrong
// passwords are indistinguishable.
func (s *AccountService) Login(ctx context.Context, email, password string) (Session, error) {
	log := slogx.FromContext(ctx)

	a, err := s.Store.Accounts().GetAccountByEmail(ctx, domain.NormalizeEmail(email), store.WithSecrets)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			s.Metrics.login("invalid")
			return Session{}, ErrAuth
		}
		return Session{}, err
	}

	// Invited managers have no password until registration completes.
	if a.PasswordHash == "" || !s.Hasher.Verify(password, a.PasswordHash) {
		s.Metrics.login("invalid")
		return Session{}, ErrAuth
	}
	if !a.Verified {
		s.Metrics.login("unverified")
		return Session{}, ErrNotVerified
	}
	if !a.Active {
		log.Info("login to deactivated account", slog.String("account_id", a.ID))
		s.Metrics.login("inactive")
		return Session{}, ErrAuth
	}

	s.Metrics.login("ok")
	return s.Tokens.Issue(a.ID, s.Now.Now())
}

// ForgotPassword emails a reset code. Unknown emails and accounts that cannot
// recover a password yield ErrNotFound.
func (s *AccountService) ForgotPassword(ctx context.Context, email string) error {
	a, err := s.Store.Accounts().GetAccountByEmail(ctx, domain.NormalizeEmail(email), store.WithSecrets)
	if err != nil {
		return mapStoreErr(err)
	}
	if !recoverable(a) {
		return ErrNotFound
	}
	return s.issueAndSend(ctx, a, domain.PurposeReset)
}

// recoverable reports whether a may go through password recovery. Deactivated
// accounts stay locked, and an invited manager sets a first password only by
// completing registration.
func recoverable(a domain.Account) bool {
	if !a.Active || a.PasswordHash == "" {
		return false
	}
	return a.Invitation == nil || a.Invitation.State == domain.InvitationRegistered
}

type ResetInput struct {
	Email           string `json:"email" validate:"required,email"`
	Code            string `json:"code" validate:"omitempty,numeric,max=8"`
	Password        string `json:"password" validate:"required,max=128"`
	PasswordConfirm string `json:"password_confirm" validate:"required,eqfield=Password"`
}

// ResetPassword overwrites the password and returns a fresh session. Tokens
// issued before the reset stop authenticating.
func (s *AccountService) ResetPassword(ctx context.Context, in ResetInput) (Session, error) {
	log := slogx.FromContext(ctx)
	accounts := s.Store.Accounts()

	in.Email = domain.NormalizeEmail(in.Email)
	if err := checkInput(in, s.Passwords.passwordFields("password", in.Password)); err != nil {
		return Session{}, err
	}

	a, err := accounts.GetAccountByEmail(ctx, in.Email, store.WithSecrets)
	if err != nil {
		return Session{}, mapStoreErr(err)
	}
	if !recoverable(a) {
		return Session{}, ErrNotFound
	}
	if s.ResetRequireOTP {
		if err := checkChallenge(s.Hasher, a.Challenge, in.Code, s.Now, domain.PurposeReset); err != nil {
			return Session{}, err
		}
	}

	if err := s.setPassword(ctx, a, in.Password); err != nil {
		return Session{}, err
	}

	log.Info("password reset", slog.String("account_id", a.ID))
	return s.Tokens.Issue(a.ID, s.Now.Now())
}

type UpdatePasswordInput struct {
	CurrentPassword string `json:"current_password" validate:"required"`
	Password        string `json:"password" validate:"required,max=128"`
	PasswordConfirm string `json:"password_confirm" validate:"required,eqfield=Password"`
}

// UpdatePassword rotates the password of an authenticated account and
// returns a new session; every older session stops authenticating.
func (s *AccountService) UpdatePassword(ctx context.Context, accountID string, in UpdatePasswordInput) (Session, error) {
	log := slogx.FromContext(ctx)

	if err := checkInput(in, s.Passwords.passwordFields("password", in.Password)); err != nil {
		return Session{}, err
	}

	a, err := s.Store.Accounts().GetAccountByID(ctx, accountID, store.WithSecrets)
	if err != nil {
		return Session{}, mapStoreErr(err)
	}
	if !s.Hasher.Verify(in.CurrentPassword, a.PasswordHash) {
		return Session{}, ErrAuth
	}

	if err := s.setPassword(ctx, a, in.Password); err != nil {
		return Session{}, err
	}

	log.Info("password changed", slog.String("account_id", a.ID))
	return s.Tokens.Issue(a.ID, s.Now.Now())
}

// setPassword stores a new hash, stamps PasswordChangedAt and drops any
// outstanding challenge.
func (s *AccountService) setPassword(ctx context.Context, a domain.Account, password string) error {
	hash, err := s.Hasher.Hash(password)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}
	changedAt := s.Now.Now()
	err = s.Store.Accounts().UpdateAccount(ctx, a.ID, store.AccountPatch{
		PasswordHash:      &hash,
		PasswordChangedAt: &changedAt,
		ClearChallenge:    true,
		ExpectVersion:     versionGuard(s.OptimisticLocking, a.Version),
	})
	return mapStoreErr(err)
}

// issueAndSend overwrites the challenge slot with a new purpose-tagged code
// and emails it.
func (s *AccountService) issueAndSend(ctx context.Context, a domain.Account, purpose domain.Purpose) error {
	accounts := s.Store.Accounts()

	code, challenge, err := newChallenge(s.Codes, s.Hasher, purpose)
	if err != nil {
		return err
	}
	err = accounts.UpdateAccount(ctx, a.ID, store.AccountPatch{
		Challenge:     &challenge,
		ExpectVersion: versionGuard(s.OptimisticLocking, a.Version),
	})
	if err != nil {
		return mapStoreErr(err)
	}
	return sendCode(ctx, accounts, s.Mailer, s.Metrics, a, a.Version+1, code, purpose)
}
