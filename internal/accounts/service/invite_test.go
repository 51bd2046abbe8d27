package service

import (
	"context"
	"errors"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/aussiebroadwan/spacehub/internal/accounts/domain"
	"github.com/stretchr/testify/require"
)

// linkToken pulls the token query parameter out of the last invitation email.
func linkToken(t *testing.T, env *testEnv) string {
	t.Helper()
	body := env.mailer.last(t).Body
	start := strings.Index(body, "https://")
	require.GreaterOrEqual(t, start, 0)
	line, _, _ := strings.Cut(body[start:], "\n")

	u, err := url.Parse(line)
	require.NoError(t, err)
	require.Equal(t, "/v1/invitations/accept", u.Path)
	return u.Query().Get("token")
}

func TestInvitationScenario(t *testing.T) {
	ctx := context.Background()
	env := newEnv(t)
	admin := env.adminAccount(t)
	branch := env.space(t, admin)

	pending, err := env.invites.InviteManager(ctx, admin, InviteInput{
		Email: "m@x.com", BranchID: branch.ID, FullName: "Mo",
	})
	require.NoError(t, err)
	require.Equal(t, domain.RoleManager, pending.Role)
	require.False(t, pending.Active)
	require.False(t, pending.Verified)
	require.Equal(t, domain.InvitationInvited, pending.Invitation.State)
	require.Empty(t, pending.Invitation.TokenHash)

	// The link carries exactly the stored fingerprint.
	stored := env.secrets(t, "m@x.com")
	h := linkToken(t, env)
	require.Equal(t, stored.Invitation.TokenHash, h)
	require.True(t, stored.Invitation.ExpiresAt.Equal(env.clock.Now().Add(DefaultInviteTTL)))

	// A pending manager cannot log in.
	_, err = env.accounts.Login(ctx, "m@x.com", "")
	require.ErrorIs(t, err, ErrAuth)

	acc, err := env.invites.AcceptInvitation(ctx, "m@x.com", h)
	require.NoError(t, err)
	require.NotEmpty(t, acc.Ticket)

	// Single use.
	_, err = env.invites.AcceptInvitation(ctx, "m@x.com", h)
	require.ErrorIs(t, err, ErrAuth)

	sess, err := env.invites.CompleteRegistration(ctx, CompleteInput{
		Email: "m@x.com", Ticket: acc.Ticket, Password: "Manag3rPass", PasswordConfirm: "Manag3rPass", PhoneNo: "0400",
	})
	require.NoError(t, err)

	me, err := env.authz.Authenticate(ctx, sess.Token)
	require.NoError(t, err)
	require.True(t, me.Active)
	require.True(t, me.Verified)
	require.Equal(t, domain.InvitationRegistered, me.Invitation.State)

	profile := me.Profile.(*domain.ManagerProfile)
	require.Equal(t, branch.ID, profile.BranchID)
	require.Equal(t, "Mo", profile.FullName)
	require.Equal(t, "0400", profile.PhoneNo)

	_, err = env.accounts.Login(ctx, "m@x.com", "Manag3rPass")
	require.NoError(t, err)

	// The ticket was consumed by registration.
	_, err = env.invites.CompleteRegistration(ctx, CompleteInput{
		Email: "m@x.com", Ticket: acc.Ticket, Password: "Manag3rPass", PasswordConfirm: "Manag3rPass",
	})
	require.ErrorIs(t, err, ErrAuth)
}

func TestInviteManagerRules(t *testing.T) {
	ctx := context.Background()
	env := newEnv(t)
	admin := env.adminAccount(t)
	owner, _ := env.verifiedAccount(t, "owner@x.com", domain.RoleStorageOwner)
	customer, _ := env.verifiedAccount(t, "cust@x.com", domain.RoleCustomer)

	ownBranch := env.space(t, owner)
	adminBranch := env.space(t, admin)

	tests := []struct {
		name    string
		inviter domain.Account
		in      InviteInput
		want    error
	}{
		{"customer cannot invite", customer, InviteInput{Email: "m1@x.com", BranchID: ownBranch.ID}, ErrForbidden},
		{"owner on foreign space", owner, InviteInput{Email: "m2@x.com", BranchID: adminBranch.ID}, ErrForbidden},
		{"unknown branch", admin, InviteInput{Email: "m3@x.com", BranchID: "missing"}, ErrNotFound},
		{"existing account", admin, InviteInput{Email: "cust@x.com", BranchID: adminBranch.ID}, ErrDuplicateAccount},
		{"existing account on unknown branch", admin, InviteInput{Email: "cust@x.com", BranchID: "nope"}, ErrDuplicateAccount},
		{"existing account on foreign space", owner, InviteInput{Email: "cust@x.com", BranchID: adminBranch.ID}, ErrDuplicateAccount},
		{"bad email", admin, InviteInput{Email: "nope", BranchID: adminBranch.ID}, ErrValidation},
		{"owner on own space", owner, InviteInput{Email: "m4@x.com", BranchID: ownBranch.ID}, nil},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := env.invites.InviteManager(ctx, tc.inviter, tc.in)
			if tc.want == nil {
				require.NoError(t, err)
				return
			}
			require.ErrorIs(t, err, tc.want)
		})
	}
}

func TestReinviteReplacesToken(t *testing.T) {
	ctx := context.Background()
	env := newEnv(t)
	admin := env.adminAccount(t)
	branch := env.space(t, admin)

	in := InviteInput{Email: "m@x.com", BranchID: branch.ID}
	first, err := env.invites.InviteManager(ctx, admin, in)
	require.NoError(t, err)
	h1 := linkToken(t, env)

	second, err := env.invites.InviteManager(ctx, admin, in)
	require.NoError(t, err)
	h2 := linkToken(t, env)
	require.Equal(t, first.ID, second.ID)
	require.NotEqual(t, h1, h2)

	_, err = env.invites.AcceptInvitation(ctx, "m@x.com", h1)
	require.ErrorIs(t, err, ErrAuth)
	_, err = env.invites.AcceptInvitation(ctx, "m@x.com", h2)
	require.NoError(t, err)

	// Once accepted the email is no longer re-invitable.
	_, err = env.invites.InviteManager(ctx, admin, in)
	require.ErrorIs(t, err, ErrDuplicateAccount)
}

func TestAcceptInvitationFailures(t *testing.T) {
	ctx := context.Background()
	env := newEnv(t)
	admin := env.adminAccount(t)
	branch := env.space(t, admin)

	_, err := env.invites.InviteManager(ctx, admin, InviteInput{Email: "m@x.com", BranchID: branch.ID})
	require.NoError(t, err)
	h := linkToken(t, env)

	t.Run("unknown email", func(t *testing.T) {
		_, err := env.invites.AcceptInvitation(ctx, "nobody@x.com", h)
		require.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("not an invited account", func(t *testing.T) {
		_, err := env.invites.AcceptInvitation(ctx, admin.Email, h)
		require.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("wrong token", func(t *testing.T) {
		_, err := env.invites.AcceptInvitation(ctx, "m@x.com", "forged")
		require.ErrorIs(t, err, ErrAuth)
	})

	t.Run("registration before acceptance", func(t *testing.T) {
		_, err := env.invites.CompleteRegistration(ctx, CompleteInput{
			Email: "m@x.com", Ticket: "123456", Password: "Manag3rPass", PasswordConfirm: "Manag3rPass",
		})
		require.ErrorIs(t, err, ErrAuth)
	})

	t.Run("expired", func(t *testing.T) {
		env.clock.Advance(DefaultInviteTTL + time.Minute)
		_, err := env.invites.AcceptInvitation(ctx, "m@x.com", h)
		require.ErrorIs(t, err, ErrExpired)

		// Housekeeping voids the token; the answer stays "expired".
		(&HousekeepingService{Store: env.store, Logger: discardLogger(), Now: env.clock.Now}).Cleanup(ctx)
		require.Empty(t, env.secrets(t, "m@x.com").Invitation.TokenHash)
		_, err = env.invites.AcceptInvitation(ctx, "m@x.com", h)
		require.ErrorIs(t, err, ErrExpired)
	})
}

func TestInvitationDeliveryFailureVoidsToken(t *testing.T) {
	ctx := context.Background()
	env := newEnv(t)
	admin := env.adminAccount(t)
	branch := env.space(t, admin)
	env.mailer.fail = errors.New("broker down")

	_, err := env.invites.InviteManager(ctx, admin, InviteInput{Email: "m@x.com", BranchID: branch.ID})
	require.ErrorIs(t, err, ErrDelivery)

	stored := env.secrets(t, "m@x.com")
	require.Empty(t, stored.Invitation.TokenHash)
	require.Equal(t, domain.InvitationInvited, stored.Invitation.State)

	// A re-send is allowed and produces a working link.
	env.mailer.fail = nil
	_, err = env.invites.InviteManager(ctx, admin, InviteInput{Email: "m@x.com", BranchID: branch.ID})
	require.NoError(t, err)
	_, err = env.invites.AcceptInvitation(ctx, "m@x.com", linkToken(t, env))
	require.NoError(t, err)
}
