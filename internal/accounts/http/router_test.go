package http_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/aussiebroadwan/spacehub/internal/accounts/domain"
	accountshttp "github.com/aussiebroadwan/spacehub/internal/accounts/http"
	"github.com/aussiebroadwan/spacehub/internal/accounts/mail"
	"github.com/aussiebroadwan/spacehub/internal/accounts/service"
	"github.com/aussiebroadwan/spacehub/internal/accounts/store/drivers/sqlite"
	"github.com/aussiebroadwan/spacehub/pkg/accountsdk"
	"github.com/aussiebroadwan/spacehub/pkg/cryptox"
	"github.com/aussiebroadwan/spacehub/pkg/httpx"
	"github.com/aussiebroadwan/spacehub/pkg/idx"
	"github.com/aussiebroadwan/spacehub/pkg/jwtx"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/require"
)

type outbox struct {
	mu   sync.Mutex
	sent []mail.Message
	fail bool
}

func (o *outbox) Send(_ context.Context, msg mail.Message) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.fail {
		return fmt.Errorf("smtp: connection refused")
	}
	o.sent = append(o.sent, msg)
	return nil
}

type codes struct {
	mu   sync.Mutex
	n    int
	last string
}

func (c *codes) Generate() (service.OTP, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.n++
	c.last = fmt.Sprintf("%06d", 200000+c.n)
	return service.OTP{Code: c.last, ExpiresAt: time.Now().Add(service.DefaultOTPTTL)}, nil
}

func (c *codes) Last() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.last
}

type server struct {
	*httptest.Server
	store  *sqlite.Store
	outbox *outbox
	codes  *codes
	boot   *service.BootstrapService
}

var generous = httpx.RateLimitConfig{Name: "test", RequestsPerWindow: 1000, Window: time.Minute, Burst: 1000}

func newServer(t *testing.T, limits accountshttp.RateLimits) *server {
	t.Helper()

	st, err := sqlite.NewStore(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })
	require.NoError(t, st.ApplyMigrations())

	signer, err := jwtx.NewSignerHS256("test", bytes.Repeat([]byte("s"), 32))
	require.NoError(t, err)
	tokens := service.NewTokenIssuer(signer, "spacehub-test", time.Hour, nil)

	hasher := cryptox.Hasher{
		Pepper: "pepper",
		Argon2: cryptox.Argon2Params{Memory: 1024, Iterations: 1, Parallelism: 1, KeyLength: 32, SaltLength: 16},
	}
	passwords := service.PasswordPolicy{MinLength: 8}
	box, seq := &outbox{}, &codes{}

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	router := accountshttp.NewRouter(tokens.Keys, "test", st, logger, nil, limits, prometheus.NewRegistry())
	router.AccountService = &service.AccountService{
		Store: st, Hasher: hasher, Tokens: tokens, Codes: seq, Mailer: box, Passwords: passwords,
	}
	router.ProfileService = &service.ProfileService{Store: st}
	router.InvitationService = &service.InvitationService{
		Store: st, Hasher: hasher, Tokens: tokens, Codes: seq, Mailer: box, Passwords: passwords,
		BaseURL: "https://spacehub.test",
	}
	router.AdminService = &service.AdminService{Store: st}
	router.Authorizer = &service.Authorizer{Store: st, Tokens: tokens}
	router.ApplyRoutes()

	srv := httptest.NewServer(router)
	t.Cleanup(srv.Close)

	return &server{
		Server: srv,
		store:  st,
		outbox: box,
		codes:  seq,
		boot:   &service.BootstrapService{Store: st, Hasher: hasher, Passwords: passwords},
	}
}

func newTestServer(t *testing.T) *server {
	return newServer(t, accountshttp.RateLimits{Strict: generous, Moderate: generous, Lenient: generous})
}

// call sends a JSON request and decodes the response into out when non-nil.
func (s *server) call(t *testing.T, method, path, token string, body, out any) *http.Response {
	t.Helper()

	var r io.Reader
	switch b := body.(type) {
	case nil:
	case string:
		r = strings.NewReader(b)
	default:
		buf, err := json.Marshal(b)
		require.NoError(t, err)
		r = bytes.NewReader(buf)
	}

	req, err := http.NewRequest(method, s.URL+path, r)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := s.Client().Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	if out != nil {
		require.NoError(t, json.NewDecoder(resp.Body).Decode(out))
	}
	return resp
}

func (s *server) signupVerified(t *testing.T, email, role string) accountsdk.SessionResponse {
	t.Helper()

	resp := s.call(t, http.MethodPost, "/v1/auth/signup", "", accountsdk.SignupRequest{
		Email: email, Password: "P@ssw0rd", PasswordConfirm: "P@ssw0rd", Role: role,
	}, nil)
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	var sess accountsdk.SessionResponse
	resp = s.call(t, http.MethodPost, "/v1/auth/verify-otp", "", accountsdk.VerifyOTPRequest{
		Email: email, Code: s.codes.Last(),
	}, &sess)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	return sess
}

func (s *server) adminSession(t *testing.T) accountsdk.SessionResponse {
	t.Helper()

	_, err := s.boot.SeedAdmin(context.Background(), "root@spacehub.test", "Adm1nPassw0rd")
	require.NoError(t, err)

	var sess accountsdk.SessionResponse
	resp := s.call(t, http.MethodPost, "/v1/auth/login", "", accountsdk.LoginRequest{
		Email: "root@spacehub.test", Password: "Adm1nPassw0rd",
	}, &sess)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	return sess
}

func TestSignupVerifyLogin(t *testing.T) {
	s := newTestServer(t)

	var acct accountsdk.Account
	resp := s.call(t, http.MethodPost, "/v1/auth/signup", "", accountsdk.SignupRequest{
		Email: " A@X.com ", Password: "P@ssw0rd", PasswordConfirm: "P@ssw0rd",
	}, &acct)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	require.Equal(t, "a@x.com", acct.Email)
	require.Equal(t, "customer", acct.Role)
	require.False(t, acct.Verified)

	// Login before verification
	var errBody accountsdk.ErrorResponse
	resp = s.call(t, http.MethodPost, "/v1/auth/login", "", accountsdk.LoginRequest{Email: "a@x.com", Password: "P@ssw0rd"}, &errBody)
	require.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	require.Equal(t, accountsdk.CodeNotVerified, errBody.Error)

	var sess accountsdk.SessionResponse
	resp = s.call(t, http.MethodPost, "/v1/auth/verify-otp", "", accountsdk.VerifyOTPRequest{Email: "a@x.com", Code: s.codes.Last()}, &sess)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.NotEmpty(t, sess.Token)
	require.Equal(t, "Bearer", sess.TokenType)
	require.NotNil(t, sess.Account)
	require.True(t, sess.Account.Verified)

	// The code is single use
	resp = s.call(t, http.MethodPost, "/v1/auth/verify-otp", "", accountsdk.VerifyOTPRequest{Email: "a@x.com", Code: s.codes.Last()}, &errBody)
	require.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	require.Equal(t, accountsdk.CodeInvalidCreds, errBody.Error)

	resp = s.call(t, http.MethodPost, "/v1/auth/login", "", accountsdk.LoginRequest{Email: "a@x.com", Password: "P@ssw0rd"}, &sess)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var me accountsdk.Account
	resp = s.call(t, http.MethodGet, "/v1/me", sess.Token, nil, &me)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Equal(t, acct.ID, me.ID)
	require.Equal(t, []string{}, me.CardIDs)
}

func TestResponsesNeverCarrySecrets(t *testing.T) {
	s := newTestServer(t)
	sess := s.signupVerified(t, "leak@x.com", "customer")

	req, err := http.NewRequest(http.MethodGet, s.URL+"/v1/me", nil)
	require.NoError(t, err)
	req.Header.Set("Authorization", "Bearer "+sess.Token)
	resp, err := s.Client().Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	for _, needle := range []string{"password_hash", "PasswordHash", "argon2", "code_hash", "token_hash", "Challenge"} {
		require.NotContains(t, string(raw), needle)
	}
}

func TestErrorMapping(t *testing.T) {
	s := newTestServer(t)
	s.signupVerified(t, "taken@x.com", "customer")

	tests := []struct {
		name   string
		method string
		path   string
		body   any
		status int
		code   string
	}{
		{"malformed json", http.MethodPost, "/v1/auth/signup", `{"email":`, http.StatusBadRequest, accountsdk.CodeMalformedRequest},
		{"unknown field", http.MethodPost, "/v1/auth/login", `{"email":"a@x.com","pw":"x"}`, http.StatusBadRequest, accountsdk.CodeMalformedRequest},
		{"validation", http.MethodPost, "/v1/auth/signup", accountsdk.SignupRequest{Email: "nope", Password: "short", PasswordConfirm: "other"}, http.StatusUnprocessableEntity, accountsdk.CodeValidation},
		{"duplicate", http.MethodPost, "/v1/auth/signup", accountsdk.SignupRequest{Email: "taken@x.com", Password: "P@ssw0rd", PasswordConfirm: "P@ssw0rd"}, http.StatusConflict, accountsdk.CodeDuplicateAccount},
		{"bad credentials", http.MethodPost, "/v1/auth/login", accountsdk.LoginRequest{Email: "taken@x.com", Password: "wrong"}, http.StatusUnauthorized, accountsdk.CodeInvalidCreds},
		{"unknown login", http.MethodPost, "/v1/auth/login", accountsdk.LoginRequest{Email: "ghost@x.com", Password: "P@ssw0rd"}, http.StatusUnauthorized, accountsdk.CodeInvalidCreds},
		{"forgot unknown", http.MethodPost, "/v1/auth/forgot-password", accountsdk.EmailRequest{Email: "ghost@x.com"}, http.StatusNotFound, accountsdk.CodeNotFound},
		{"accept missing params", http.MethodGet, "/v1/invitations/accept", nil, http.StatusUnprocessableEntity, accountsdk.CodeValidation},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var body accountsdk.ErrorResponse
			resp := s.call(t, tt.method, tt.path, "", tt.body, &body)
			require.Equal(t, tt.status, resp.StatusCode)
			require.Equal(t, tt.code, body.Error)
		})
	}
}

func TestValidationFieldsAreReported(t *testing.T) {
	s := newTestServer(t)

	var body accountsdk.ErrorResponse
	resp := s.call(t, http.MethodPost, "/v1/auth/signup", "", accountsdk.SignupRequest{
		Email: "a@x.com", Password: "P@ssw0rd", PasswordConfirm: "different1",
	}, &body)
	require.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
	require.Contains(t, body.Fields, "password_confirm")
}

func TestDeliveryFailureIsBadGateway(t *testing.T) {
	s := newTestServer(t)
	s.outbox.fail = true

	var body accountsdk.ErrorResponse
	resp := s.call(t, http.MethodPost, "/v1/auth/signup", "", accountsdk.SignupRequest{
		Email: "a@x.com", Password: "P@ssw0rd", PasswordConfirm: "P@ssw0rd",
	}, &body)
	require.Equal(t, http.StatusBadGateway, resp.StatusCode)
	require.Equal(t, accountsdk.CodeDeliveryFailed, body.Error)
}

func TestBearerAuthentication(t *testing.T) {
	s := newTestServer(t)
	sess := s.signupVerified(t, "a@x.com", "customer")

	tests := []struct {
		name   string
		token  string
		status int
	}{
		{"missing", "", http.StatusUnauthorized},
		{"garbage", "not-a-jwt", http.StatusUnauthorized},
		{"valid", sess.Token, http.StatusOK},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := s.call(t, http.MethodGet, "/v1/me", tt.token, nil, nil)
			require.Equal(t, tt.status, resp.StatusCode)
			if tt.status == http.StatusUnauthorized {
				require.Contains(t, resp.Header.Get("WWW-Authenticate"), "Bearer")
			}
		})
	}
}

func TestPasswordChangeRevokesOlderTokens(t *testing.T) {
	s := newTestServer(t)
	old := s.signupVerified(t, "a@x.com", "customer")

	// issued-at is compared to the millisecond
	time.Sleep(5 * time.Millisecond)

	var fresh accountsdk.SessionResponse
	resp := s.call(t, http.MethodPatch, "/v1/auth/password", old.Token, accountsdk.UpdatePasswordRequest{
		CurrentPassword: "P@ssw0rd", Password: "N3wPassword", PasswordConfirm: "N3wPassword",
	}, &fresh)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp = s.call(t, http.MethodGet, "/v1/me", old.Token, nil, nil)
	require.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	resp = s.call(t, http.MethodGet, "/v1/me", fresh.Token, nil, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestForgotAndResetPassword(t *testing.T) {
	s := newTestServer(t)
	s.signupVerified(t, "a@x.com", "customer")

	resp := s.call(t, http.MethodPost, "/v1/auth/forgot-password", "", accountsdk.EmailRequest{Email: "a@x.com"}, nil)
	require.Equal(t, http.StatusNoContent, resp.StatusCode)

	var sess accountsdk.SessionResponse
	resp = s.call(t, http.MethodPatch, "/v1/auth/reset-password", "", accountsdk.ResetPasswordRequest{
		Email: "a@x.com", Code: s.codes.Last(), Password: "Reset1234", PasswordConfirm: "Reset1234",
	}, &sess)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp = s.call(t, http.MethodPost, "/v1/auth/login", "", accountsdk.LoginRequest{Email: "a@x.com", Password: "Reset1234"}, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestProfileAndDeactivate(t *testing.T) {
	s := newTestServer(t)
	sess := s.signupVerified(t, "owner@x.com", "storage_owner")

	var acct accountsdk.Account
	resp := s.call(t, http.MethodPatch, "/v1/me/profile", sess.Token, accountsdk.ProfilePatch{
		"full_name": "Olive Owner", "company_name": "Boxes Pty",
	}, &acct)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var profile map[string]any
	require.NoError(t, json.Unmarshal(acct.Profile, &profile))
	require.Equal(t, "Olive Owner", profile["full_name"])

	var body accountsdk.ErrorResponse
	resp = s.call(t, http.MethodPatch, "/v1/me/profile", sess.Token, accountsdk.ProfilePatch{"truck_type": "ute"}, &body)
	require.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
	require.Contains(t, body.Fields, "truck_type")

	resp = s.call(t, http.MethodPatch, "/v1/me", sess.Token, accountsdk.UpdateMeRequest{Password: "x"}, &body)
	require.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
	require.Contains(t, body.Fields, "password")

	resp = s.call(t, http.MethodDelete, "/v1/me", sess.Token, nil, nil)
	require.Equal(t, http.StatusNoContent, resp.StatusCode)

	resp = s.call(t, http.MethodGet, "/v1/me", sess.Token, nil, nil)
	require.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestCardsWithoutBillingProvider(t *testing.T) {
	s := newTestServer(t)
	customer := s.signupVerified(t, "c@x.com", "customer")
	driver := s.signupVerified(t, "d@x.com", "truck_driver")

	var body accountsdk.ErrorResponse
	resp := s.call(t, http.MethodPost, "/v1/me/cards", customer.Token, accountsdk.AddCardRequest{PaymentMethodID: "pm_1"}, &body)
	require.Equal(t, http.StatusBadGateway, resp.StatusCode)
	require.Equal(t, accountsdk.CodeBilling, body.Error)

	resp = s.call(t, http.MethodPost, "/v1/me/cards", driver.Token, accountsdk.AddCardRequest{PaymentMethodID: "pm_1"}, &body)
	require.Equal(t, http.StatusForbidden, resp.StatusCode)
}

func TestInvitationFlow(t *testing.T) {
	s := newTestServer(t)
	admin := s.adminSession(t)
	customer := s.signupVerified(t, "c@x.com", "customer")

	space := domain.Space{
		ID: idx.New().String(), OwnerID: admin.Account.ID, Category: domain.SpaceWarehouse,
		Name: "Depot", CreatedAt: time.Now(),
	}
	require.NoError(t, s.store.Spaces().CreateSpace(context.Background(), space))

	invite := accountsdk.InviteRequest{Email: "m@x.com", BranchID: space.ID, FullName: "Max Manager"}

	resp := s.call(t, http.MethodPost, "/v1/invitations", customer.Token, invite, nil)
	require.Equal(t, http.StatusForbidden, resp.StatusCode)

	var pending accountsdk.Account
	resp = s.call(t, http.MethodPost, "/v1/invitations", admin.Token, invite, &pending)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	require.Equal(t, "manager", pending.Role)
	require.False(t, pending.Active)
	require.NotNil(t, pending.Invitation)
	require.Equal(t, "invited", pending.Invitation.State)

	token := linkToken(t, s.outbox)
	path := "/v1/invitations/accept?email=m%40x.com&token=" + token

	var acc accountsdk.AcceptInvitationResponse
	resp = s.call(t, http.MethodGet, path, "", nil, &acc)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.NotEmpty(t, acc.Ticket)

	// Single use
	var body accountsdk.ErrorResponse
	resp = s.call(t, http.MethodGet, path, "", nil, &body)
	require.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	require.Equal(t, accountsdk.CodeInvalidCreds, body.Error)

	var sess accountsdk.SessionResponse
	resp = s.call(t, http.MethodPost, "/v1/invitations/complete", "", accountsdk.CompleteRegistrationRequest{
		Email: "m@x.com", Ticket: acc.Ticket, Password: "Manag3rPass", PasswordConfirm: "Manag3rPass",
	}, &sess)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.NotNil(t, sess.Account)
	require.True(t, sess.Account.Active)
	require.Equal(t, "registered", sess.Account.Invitation.State)
}

func linkToken(t *testing.T, box *outbox) string {
	t.Helper()
	box.mu.Lock()
	defer box.mu.Unlock()
	require.NotEmpty(t, box.sent)

	for _, line := range strings.Split(box.sent[len(box.sent)-1].Body, "\n") {
		line = strings.TrimSpace(line)
		if !strings.HasPrefix(line, "https://") {
			continue
		}
		u, err := url.Parse(line)
		require.NoError(t, err)
		return u.Query().Get("token")
	}
	t.Fatal("no link in invitation email")
	return ""
}

func TestAdminRoutes(t *testing.T) {
	s := newTestServer(t)
	admin := s.adminSession(t)
	customer := s.signupVerified(t, "c@x.com", "customer")

	resp := s.call(t, http.MethodGet, "/v1/accounts", customer.Token, nil, nil)
	require.Equal(t, http.StatusForbidden, resp.StatusCode)

	var list accountsdk.AccountList
	resp = s.call(t, http.MethodGet, "/v1/accounts?role=customer", admin.Token, nil, &list)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Len(t, list.Accounts, 1)
	require.Equal(t, service.DefaultListLimit, list.Limit)

	var body accountsdk.ErrorResponse
	resp = s.call(t, http.MethodGet, "/v1/accounts?active=maybe", admin.Token, nil, &body)
	require.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
	require.Contains(t, body.Fields, "active")

	var acct accountsdk.Account
	resp = s.call(t, http.MethodGet, "/v1/accounts/"+customer.Account.ID, admin.Token, nil, &acct)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Equal(t, "c@x.com", acct.Email)
	require.Equal(t, "customer", acct.Role)

	resp = s.call(t, http.MethodGet, "/v1/accounts/"+customer.Account.ID, customer.Token, nil, nil)
	require.Equal(t, http.StatusForbidden, resp.StatusCode)

	resp = s.call(t, http.MethodGet, "/v1/accounts/"+idx.New().String(), admin.Token, nil, &body)
	require.Equal(t, http.StatusNotFound, resp.StatusCode)
	require.Equal(t, accountsdk.CodeNotFound, body.Error)

	resp = s.call(t, http.MethodPatch, "/v1/accounts/"+customer.Account.ID+"/role", admin.Token,
		accountsdk.ChangeRoleRequest{Role: "truck_driver"}, &acct)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Equal(t, "truck_driver", acct.Role)

	resp = s.call(t, http.MethodPatch, "/v1/accounts/"+admin.Account.ID+"/role", admin.Token,
		accountsdk.ChangeRoleRequest{Role: "customer"}, nil)
	require.Equal(t, http.StatusForbidden, resp.StatusCode)

	resp = s.call(t, http.MethodPatch, "/v1/accounts/"+customer.Account.ID+"/status", admin.Token,
		accountsdk.SetStatusRequest{}, &body)
	require.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)

	inactive := false
	resp = s.call(t, http.MethodPatch, "/v1/accounts/"+customer.Account.ID+"/status", admin.Token,
		accountsdk.SetStatusRequest{Active: &inactive}, &acct)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.False(t, acct.Active)

	resp = s.call(t, http.MethodGet, "/v1/me", customer.Token, nil, nil)
	require.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	resp = s.call(t, http.MethodPatch, "/v1/accounts/"+idx.New().String()+"/status", admin.Token,
		accountsdk.SetStatusRequest{Active: &inactive}, nil)
	require.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestSystemEndpoints(t *testing.T) {
	s := newTestServer(t)

	var health accountsdk.HealthResponse
	resp := s.call(t, http.MethodGet, "/livez", "", nil, &health)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Equal(t, "ok", health.Status)
	require.Equal(t, "test", health.Version)

	resp = s.call(t, http.MethodGet, "/readyz", "", nil, &health)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Equal(t, "ok", health.Checks.Database)

	// HS256 keys are never published
	var jwks accountsdk.JWKSResponse
	resp = s.call(t, http.MethodGet, "/.well-known/jwks.json", "", nil, &jwks)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Empty(t, jwks.Keys)

	resp = s.call(t, http.MethodGet, "/metrics", "", nil, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	_ = s.store.Close()
	resp = s.call(t, http.MethodGet, "/readyz", "", nil, &health)
	require.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
	require.Equal(t, "degraded", health.Status)
}

func TestStrictRateLimit(t *testing.T) {
	s := newServer(t, accountshttp.DefaultRateLimits())

	var last *http.Response
	for range httpx.StrictLimit.Burst + 1 {
		last = s.call(t, http.MethodPost, "/v1/auth/login", "", accountsdk.LoginRequest{Email: "a@x.com", Password: "x"}, nil)
	}
	require.Equal(t, http.StatusTooManyRequests, last.StatusCode)
	require.NotEmpty(t, last.Header.Get("Retry-After"))
}
