package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/aussiebroadwan/spacehub/internal/accounts/domain"
	"github.com/aussiebroadwan/spacehub/internal/accounts/mail"
	"github.com/aussiebroadwan/spacehub/internal/accounts/store"
	"github.com/aussiebroadwan/spacehub/internal/accounts/store/drivers/sqlite"
	"github.com/aussiebroadwan/spacehub/pkg/cryptox"
	"github.com/aussiebroadwan/spacehub/pkg/idx"
	"github.com/aussiebroadwan/spacehub/pkg/jwtx"
	"github.com/stretchr/testify/require"
)

type fakeClock struct {
	mu sync.Mutex
	t  time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.t = c.t.Add(d)
}

type fakeMailer struct {
	mu   sync.Mutex
	sent []mail.Message
	fail error
}

func (m *fakeMailer) Send(_ context.Context, msg mail.Message) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.fail != nil {
		return m.fail
	}
	m.sent = append(m.sent, msg)
	return nil
}

func (m *fakeMailer) last(t *testing.T) mail.Message {
	t.Helper()
	m.mu.Lock()
	defer m.mu.Unlock()
	require.NotEmpty(t, m.sent, "no mail sent")
	return m.sent[len(m.sent)-1]
}

type fakeBilling struct {
	customers int
	attached  map[string]string // card -> customer
	fail      error
}

func (b *fakeBilling) CreateCustomer(_ context.Context, email, _ string) (string, error) {
	if b.fail != nil {
		return "", b.fail
	}
	b.customers++
	return fmt.Sprintf("cus_%d", b.customers), nil
}

func (b *fakeBilling) AttachCard(_ context.Context, customerID, pm string) (string, error) {
	if b.fail != nil {
		return "", b.fail
	}
	if b.attached == nil {
		b.attached = map[string]string{}
	}
	b.attached[pm] = customerID
	return pm, nil
}

func (b *fakeBilling) DetachCard(_ context.Context, customerID, cardID string) error {
	if b.fail != nil {
		return b.fail
	}
	if b.attached[cardID] != customerID {
		return errors.New("not attached")
	}
	delete(b.attached, cardID)
	return nil
}

// seqCodes hands out predictable six-digit codes.
type seqCodes struct {
	n     int
	clock *fakeClock
	ttl   time.Duration
	codes []string
}

func (s *seqCodes) Generate() (OTP, error) {
	s.n++
	code := fmt.Sprintf("%06d", 100000+s.n)
	s.codes = append(s.codes, code)
	return OTP{Code: code, ExpiresAt: s.clock.Now().Add(s.ttl)}, nil
}

func (s *seqCodes) last() string { return s.codes[len(s.codes)-1] }

type testEnv struct {
	store   *sqlite.Store
	clock   *fakeClock
	mailer  *fakeMailer
	billing *fakeBilling
	codes   *seqCodes
	hasher  cryptox.Hasher
	tokens  *TokenIssuer

	accounts *AccountService
	authz    *Authorizer
	profiles *ProfileService
	invites  *InvitationService
	admin    *AdminService
	boot     *BootstrapService
}

func newEnv(t *testing.T) *testEnv {
	t.Helper()

	st, err := sqlite.NewStore(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })
	require.NoError(t, st.ApplyMigrations())

	clock := &fakeClock{t: time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)}
	st.Now = clock.Now

	signer, err := jwtx.NewSignerHS256("test", bytes.Repeat([]byte("k"), 32))
	require.NoError(t, err)

	env := &testEnv{
		store:   st,
		clock:   clock,
		mailer:  &fakeMailer{},
		billing: &fakeBilling{},
		codes:   &seqCodes{clock: clock, ttl: DefaultOTPTTL},
		hasher: cryptox.Hasher{
			Pepper: "pepper",
			Argon2: cryptox.Argon2Params{Memory: 1024, Iterations: 1, Parallelism: 1, KeyLength: 32, SaltLength: 16},
		},
		tokens: NewTokenIssuer(signer, "spacehub-test", time.Hour, clock.Now),
	}
	passwords := PasswordPolicy{MinLength: 8}

	env.accounts = &AccountService{
		Store: st, Hasher: env.hasher, Tokens: env.tokens, Codes: env.codes,
		Mailer: env.mailer, Billing: env.billing, Passwords: passwords, Now: clock.Now,
	}
	env.authz = &Authorizer{Store: st, Tokens: env.tokens}
	env.profiles = &ProfileService{Store: st, Billing: env.billing}
	env.invites = &InvitationService{
		Store: st, Hasher: env.hasher, Tokens: env.tokens, Codes: env.codes, Mailer: env.mailer,
		Passwords: passwords, Now: clock.Now, BaseURL: "https://spacehub.test/",
	}
	env.admin = &AdminService{Store: st}
	env.boot = &BootstrapService{Store: st, Hasher: env.hasher, Passwords: passwords, Now: clock.Now}
	return env
}

// verifiedAccount signs up and verifies an account, returning it with a session.
func (e *testEnv) verifiedAccount(t *testing.T, email string, role domain.Role) (domain.Account, Session) {
	t.Helper()
	ctx := context.Background()

	a, err := e.accounts.Signup(ctx, SignupInput{
		Email: email, Password: "P@ssw0rd", PasswordConfirm: "P@ssw0rd", Role: role,
	})
	require.NoError(t, err)

	sess, err := e.accounts.VerifyOTP(ctx, email, e.codes.last())
	require.NoError(t, err)
	return a, sess
}

// admin seeds an administrator account directly.
func (e *testEnv) adminAccount(t *testing.T) domain.Account {
	t.Helper()
	ctx := context.Background()

	_, err := e.boot.SeedAdmin(ctx, "root@spacehub.test", "Adm1nPassw0rd")
	require.NoError(t, err)
	a, err := e.store.Accounts().GetAccountByEmail(ctx, "root@spacehub.test", store.Default)
	require.NoError(t, err)
	return a
}

func (e *testEnv) space(t *testing.T, owner domain.Account) domain.Space {
	t.Helper()
	s := domain.Space{
		ID:        idx.New().String(),
		OwnerID:   owner.ID,
		Category:  domain.SpaceWarehouse,
		Name:      "Depot",
		CreatedAt: e.clock.Now(),
	}
	require.NoError(t, e.store.Spaces().CreateSpace(context.Background(), s))
	return s
}

func (e *testEnv) secrets(t *testing.T, email string) domain.Account {
	t.Helper()
	a, err := e.store.Accounts().GetAccountByEmail(context.Background(), email, store.WithSecrets)
	require.NoError(t, err)
	return a
}

func requireFields(t *testing.T, err error, fields ...string) {
	t.Helper()
	require.ErrorIs(t, err, ErrValidation)
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	for _, f := range fields {
		require.Contains(t, verr.Fields, f)
	}
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}
