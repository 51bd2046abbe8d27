package service

import (
	"context"
	"errors"
	"log/slog"
	"net/url"
	"strings"
	"time"

	"github.com/aussiebroadwan/spacehub/internal/accounts/domain"
	"github.com/aussiebroadwan/spacehub/internal/accounts/mail"
	"github.com/aussiebroadwan/spacehub/internal/accounts/store"
	"github.com/aussiebroadwan/spacehub/pkg/cryptox"
	"github.com/aussiebroadwan/spacehub/pkg/idx"
	"github.com/aussiebroadwan/spacehub/pkg/slogx"
)

// DefaultInviteTTL is how long a manager invitation stays acceptable.
const DefaultInviteTTL = 72 * time.Hour

// InvitationService onboards managers in two steps: an emailed link that is
// accepted once, then registration with the ticket that acceptance returns.
type InvitationService struct {
	Store     store.Store
	Hasher    cryptox.Hasher
	Tokens    *TokenIssuer
	Codes     CodeSource
	Mailer    Mailer
	Passwords PasswordPolicy
	Metrics   *Metrics
	Now       Clock
	TTL       time.Duration
	BaseURL   string // public origin used in the emailed link
}

type InviteInput struct {
	Email    string `json:"email" validate:"required,email,max=254"`
	BranchID string `json:"branch_id" validate:"required,max=64"`
	FullName string `json:"full_name" validate:"max=200"`
	PhoneNo  string `json:"phone_no" validate:"max=40"`
}

// InviteManager creates (or refreshes) a pending manager account bound to a
// branch and emails the acceptance link.
func (s *InvitationService) InviteManager(ctx context.Context, inviter domain.Account, in InviteInput) (domain.Account, error) {
	log := slogx.FromContext(ctx)
	accounts := s.Store.Accounts()

	// 1. Only admins and storage owners invite
	if err := RestrictTo(inviter, domain.RoleAdmin, domain.RoleStorageOwner); err != nil {
		return domain.Account{}, err
	}

	// 2. Validate input
	in.Email = domain.NormalizeEmail(in.Email)
	if err := checkInput(in, nil); err != nil {
		return domain.Account{}, err
	}

	// 3. Only still-pending invitations may be re-sent to an existing email
	existing, err := accounts.GetAccountByEmail(ctx, in.Email, store.Default)
	switch {
	case err == nil:
		if existing.Invitation == nil || existing.Invitation.State != domain.InvitationInvited {
			return domain.Account{}, ErrDuplicateAccount
		}
	case !errors.Is(err, store.ErrNotFound):
		return domain.Account{}, err
	}

	// 4. Resolve the branch; storage owners are limited to their own spaces
	space, err := s.Store.Spaces().GetSpaceByID(ctx, in.BranchID)
	if err != nil {
		return domain.Account{}, mapStoreErr(err)
	}
	if inviter.Role == domain.RoleStorageOwner && space.OwnerID != inviter.ID {
		log.Warn("invite onto a space owned by someone else",
			slog.String("inviter_id", inviter.ID),
			slog.String("branch_id", space.ID),
		)
		return domain.Account{}, ErrForbidden
	}

	// 5. Generate the token. Only its fingerprint is kept, and the
	// fingerprint is what the link carries.
	token, err := cryptox.GenerateToken(cryptox.TokenSize256)
	if err != nil {
		log.Error("failed to generate invitation token", slog.Any("error", err))
		return domain.Account{}, err
	}
	fingerprint := cryptox.FingerprintToken(token)

	now := s.Now.Now()
	ttl := s.TTL
	if ttl <= 0 {
		ttl = DefaultInviteTTL
	}
	invitation := domain.Invitation{
		TokenHash: fingerprint,
		BranchID:  space.ID,
		InvitedBy: inviter.ID,
		State:     domain.InvitationInvited,
		ExpiresAt: now.Add(ttl),
	}

	// 6. Upsert the pending manager
	err = accounts.UpsertInvitedAccount(ctx, domain.Account{
		ID:     idx.NewAt(now).String(),
		Email:  in.Email,
		Role:   domain.RoleManager,
		Active: false,
		Profile: &domain.ManagerProfile{
			Personal: domain.Personal{FullName: in.FullName, PhoneNo: in.PhoneNo},
			BranchID: space.ID,
		},
		Invitation: &invitation,
		Version:    1,
		CreatedAt:  now,
	})
	if err != nil {
		if errors.Is(err, store.ErrAlreadyExists) {
			return domain.Account{}, ErrDuplicateAccount
		}
		log.Error("failed to store invitation", slog.Any("error", err))
		return domain.Account{}, err
	}

	pending, err := accounts.GetAccountByEmail(ctx, in.Email, store.Default)
	if err != nil {
		return domain.Account{}, mapStoreErr(err)
	}

	// 7. Email the link; an undelivered invitation is voided
	if err := s.sendInvitation(ctx, pending, in.FullName, fingerprint, invitation.ExpiresAt); err != nil {
		log.Error("failed to deliver invitation",
			slog.String("account_id", pending.ID),
			slog.Any("error", err),
		)
		s.Metrics.deliveryFailed("invitation")

		voided := invitation
		voided.TokenHash = ""
		if cerr := accounts.UpdateAccount(ctx, pending.ID, store.AccountPatch{Invitation: &voided}); cerr != nil {
			log.Error("failed to void undelivered invitation", slog.Any("error", cerr))
		}
		return domain.Account{}, ErrDelivery
	}

	s.Metrics.invitation("sent")
	log.Info("manager invited",
		slog.String("account_id", pending.ID),
		slog.String("branch_id", space.ID),
		slog.String("invited_by", inviter.ID),
	)
	return pending, nil
}

func (s *InvitationService) sendInvitation(ctx context.Context, a domain.Account, name, token string, expiresAt time.Time) error {
	link := strings.TrimRight(s.BaseURL, "/") + "/v1/invitations/accept?" + url.Values{
		"email": {a.Email},
		"token": {token},
	}.Encode()

	msg, err := mail.InvitationMessage(a.Email, name, link, expiresAt)
	if err != nil {
		return err
	}
	return s.Mailer.Send(ctx, msg)
}

// Acceptance hands the invitee over to registration.
type Acceptance struct {
	Email     string    `json:"email"`
	Ticket    string    `json:"ticket"`
	ExpiresAt time.Time `json:"expires_at"`
}

// AcceptInvitation consumes the emailed token. The token is single use: it
// is cleared on success and a second attempt fails with ErrAuth. The
// returned ticket is a one-time code bound to CompleteRegistration.
func (s *InvitationService) AcceptInvitation(ctx context.Context, email, token string) (Acceptance, error) {
	log := slogx.FromContext(ctx)
	accounts := s.Store.Accounts()

	a, err := accounts.GetAccountByEmail(ctx, domain.NormalizeEmail(email), store.WithSecrets)
	if err != nil {
		return Acceptance{}, mapStoreErr(err)
	}
	inv := a.Invitation
	if inv == nil {
		return Acceptance{}, ErrNotFound
	}

	// 1. Check token before expiry, like one-time codes
	switch {
	case inv.State != domain.InvitationInvited:
		return Acceptance{}, ErrAuth
	case inv.TokenHash != "" && !cryptox.EqualTokens(inv.TokenHash, token):
		return Acceptance{}, ErrAuth
	case s.Now.Now().After(inv.ExpiresAt):
		return Acceptance{}, ErrExpired
	case inv.TokenHash == "":
		return Acceptance{}, ErrAuth
	}

	// 2. Issue the registration ticket
	code, challenge, err := newChallenge(s.Codes, s.Hasher, domain.PurposeRegister)
	if err != nil {
		return Acceptance{}, err
	}

	// 3. Clear the token and move to accepted. Always version-guarded so two
	// concurrent accepts cannot both succeed.
	accepted := *inv
	accepted.TokenHash = ""
	accepted.State = domain.InvitationAccepted
	err = accounts.UpdateAccount(ctx, a.ID, store.AccountPatch{
		Invitation:    &accepted,
		Challenge:     &challenge,
		ExpectVersion: &a.Version,
	})
	if err != nil {
		if errors.Is(err, store.ErrConflict) {
			return Acceptance{}, ErrAuth
		}
		return Acceptance{}, mapStoreErr(err)
	}

	s.Metrics.invitation("accepted")
	log.Info("invitation accepted", slog.String("account_id", a.ID))
	return Acceptance{Email: a.Email, Ticket: code.Code, ExpiresAt: code.ExpiresAt}, nil
}

type CompleteInput struct {
	Email           string `json:"email" validate:"required,email"`
	Ticket          string `json:"ticket" validate:"required,numeric,max=8"`
	Password        string `json:"password" validate:"required,max=128"`
	PasswordConfirm string `json:"password_confirm" validate:"required,eqfield=Password"`
	FullName        string `json:"full_name" validate:"max=200"`
	PhoneNo         string `json:"phone_no" validate:"max=40"`
}

// CompleteRegistration sets the manager's password, activates the account
// and returns a session.
func (s *InvitationService) CompleteRegistration(ctx context.Context, in CompleteInput) (Session, error) {
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
	if a.Invitation == nil || a.Invitation.State != domain.InvitationAccepted {
		return Session{}, ErrAuth
	}
	if err := checkChallenge(s.Hasher, a.Challenge, in.Ticket, s.Now, domain.PurposeRegister); err != nil {
		return Session{}, err
	}

	hash, err := s.Hasher.Hash(in.Password)
	if err != nil {
		return Session{}, err
	}

	seed := map[string]string{}
	if in.FullName != "" {
		seed["full_name"] = in.FullName
	}
	if in.PhoneNo != "" {
		seed["phone_no"] = in.PhoneNo
	}
	profile, err := domain.PatchProfile(a.Profile, seed)
	if err != nil {
		return Session{}, err
	}

	registered := *a.Invitation
	registered.State = domain.InvitationRegistered
	yes := true
	err = accounts.UpdateAccount(ctx, a.ID, store.AccountPatch{
		PasswordHash:   &hash,
		Verified:       &yes,
		Active:         &yes,
		Profile:        profile,
		Invitation:     &registered,
		ClearChallenge: true,
		ExpectVersion:  &a.Version,
	})
	if err != nil {
		return Session{}, mapStoreErr(err)
	}

	s.Metrics.invitation("registered")
	log.Info("manager registered",
		slog.String("account_id", a.ID),
		slog.String("branch_id", registered.BranchID),
	)
	return s.Tokens.Issue(a.ID, s.Now.Now())
}
