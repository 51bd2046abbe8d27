package accountsdk

import (
	"context"
	"net/http"
	"net/url"
	"strconv"
	"sync"
	"time"
)

// Session is a signed-in caller. Methods that rotate the password swap the
// session's token for the new one, since the old token stops working.
type Session struct {
	client *Client

	mu        sync.RWMutex
	token     string
	expiresAt time.Time
}

// Token returns the current bearer token.
func (s *Session) Token() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token
}

// ExpiresAt returns when the current token expires.
func (s *Session) ExpiresAt() time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.expiresAt
}

func (s *Session) replace(r SessionResponse) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.token = r.Token
	s.expiresAt = r.ExpiresAt
}

func (s *Session) account(ctx context.Context, method, path string, body any, expected int) (*Account, error) {
	resp, err := s.client.do(ctx, method, path, s.Token(), body)
	if err != nil {
		return nil, err
	}

	var acct Account
	if err := decodeJSON(resp, &acct, expected); err != nil {
		return nil, err
	}
	return &acct, nil
}

// Me returns the caller's account.
func (s *Session) Me(ctx context.Context) (*Account, error) {
	return s.account(ctx, http.MethodGet, "/v1/me", nil, http.StatusOK)
}

// UpdateMe changes account-level fields such as the email address.
func (s *Session) UpdateMe(ctx context.Context, req UpdateMeRequest) (*Account, error) {
	return s.account(ctx, http.MethodPatch, "/v1/me", req, http.StatusOK)
}

// UpdateProfile writes role-specific profile fields.
func (s *Session) UpdateProfile(ctx context.Context, patch ProfilePatch) (*Account, error) {
	return s.account(ctx, http.MethodPatch, "/v1/me/profile", patch, http.StatusOK)
}

// Deactivate soft-deletes the caller's account. The session is unusable
// afterwards.
func (s *Session) Deactivate(ctx context.Context) error {
	resp, err := s.client.do(ctx, http.MethodDelete, "/v1/me", s.Token(), nil)
	if err != nil {
		return err
	}
	return checkStatusNoContent(resp)
}

// UpdatePassword rotates the password and switches the session to the new
// token.
func (s *Session) UpdatePassword(ctx context.Context, req UpdatePasswordRequest) error {
	resp, err := s.client.do(ctx, http.MethodPatch, "/v1/auth/password", s.Token(), req)
	if err != nil {
		return err
	}

	var out SessionResponse
	if err := decodeJSON(resp, &out, http.StatusOK); err != nil {
		return err
	}
	s.replace(out)
	return nil
}

// AddCard registers a payment method with the billing provider.
func (s *Session) AddCard(ctx context.Context, paymentMethodID string) (*Account, error) {
	return s.account(ctx, http.MethodPost, "/v1/me/cards", AddCardRequest{PaymentMethodID: paymentMethodID}, http.StatusCreated)
}

// RemoveCard detaches a stored card.
func (s *Session) RemoveCard(ctx context.Context, cardID string) (*Account, error) {
	return s.account(ctx, http.MethodDelete, "/v1/me/cards/"+url.PathEscape(cardID), nil, http.StatusOK)
}

// InviteManager invites a manager onto a branch. Requires admin or
// storage_owner.
func (s *Session) InviteManager(ctx context.Context, req InviteRequest) (*Account, error) {
	return s.account(ctx, http.MethodPost, "/v1/invitations", req, http.StatusCreated)
}

// ListAccounts lists accounts. Requires admin.
func (s *Session) ListAccounts(ctx context.Context, opts ListAccountsOptions) (*AccountList, error) {
	q := url.Values{}
	if opts.Role != "" {
		q.Set("role", opts.Role)
	}
	if opts.Active != nil {
		q.Set("active", strconv.FormatBool(*opts.Active))
	}
	if opts.Limit > 0 {
		q.Set("limit", strconv.Itoa(opts.Limit))
	}
	if opts.Offset > 0 {
		q.Set("offset", strconv.Itoa(opts.Offset))
	}
	path := "/v1/accounts"
	if len(q) > 0 {
		path += "?" + q.Encode()
	}

	resp, err := s.client.do(ctx, http.MethodGet, path, s.Token(), nil)
	if err != nil {
		return nil, err
	}

	var list AccountList
	if err := decodeJSON(resp, &list, http.StatusOK); err != nil {
		return nil, err
	}
	return &list, nil
}

// GetAccount fetches a single account. Requires admin.
func (s *Session) GetAccount(ctx context.Context, accountID string) (*Account, error) {
	return s.account(ctx, http.MethodGet, "/v1/accounts/"+url.PathEscape(accountID), nil, http.StatusOK)
}

// ChangeRole moves an account to another role. Requires admin.
func (s *Session) ChangeRole(ctx context.Context, accountID, role string) (*Account, error) {
	return s.account(ctx, http.MethodPatch, "/v1/accounts/"+url.PathEscape(accountID)+"/role",
		ChangeRoleRequest{Role: role}, http.StatusOK)
}

// SetActive activates or deactivates an account. Requires admin.
func (s *Session) SetActive(ctx context.Context, accountID string, active bool) (*Account, error) {
	return s.account(ctx, http.MethodPatch, "/v1/accounts/"+url.PathEscape(accountID)+"/status",
		SetStatusRequest{Active: &active}, http.StatusOK)
}
