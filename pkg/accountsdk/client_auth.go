package accountsdk

import (
	"context"
	"net/http"
	"net/url"
)

// Signup registers a self-service account. The account starts unverified
// and a verification code is emailed to it.
func (c *Client) Signup(ctx context.Context, req SignupRequest) (*Account, error) {
	resp, err := c.do(ctx, http.MethodPost, "/v1/auth/signup", "", req)
	if err != nil {
		return nil, err
	}

	var acct Account
	if err := decodeJSON(resp, &acct, http.StatusCreated); err != nil {
		return nil, err
	}
	return &acct, nil
}

// ResendOTP emails a fresh verification code.
func (c *Client) ResendOTP(ctx context.Context, email string) error {
	resp, err := c.do(ctx, http.MethodPost, "/v1/auth/resend-otp", "", EmailRequest{Email: email})
	if err != nil {
		return err
	}
	return checkStatusNoContent(resp)
}

// VerifyOTP redeems an emailed code and signs the account in.
func (c *Client) VerifyOTP(ctx context.Context, email, code string) (*Session, error) {
	return c.signIn(ctx, http.MethodPost, "/v1/auth/verify-otp", VerifyOTPRequest{Email: email, Code: code})
}

// Login signs in with email and password.
func (c *Client) Login(ctx context.Context, email, password string) (*Session, error) {
	return c.signIn(ctx, http.MethodPost, "/v1/auth/login", LoginRequest{Email: email, Password: password})
}

// ForgotPassword emails a password reset code.
func (c *Client) ForgotPassword(ctx context.Context, email string) error {
	resp, err := c.do(ctx, http.MethodPost, "/v1/auth/forgot-password", "", EmailRequest{Email: email})
	if err != nil {
		return err
	}
	return checkStatusNoContent(resp)
}

// ResetPassword sets a new password and signs the account in.
func (c *Client) ResetPassword(ctx context.Context, req ResetPasswordRequest) (*Session, error) {
	return c.signIn(ctx, http.MethodPatch, "/v1/auth/reset-password", req)
}

// AcceptInvitation redeems the token from an invitation email.
func (c *Client) AcceptInvitation(ctx context.Context, email, token string) (*AcceptInvitationResponse, error) {
	q := url.Values{"email": {email}, "token": {token}}
	resp, err := c.do(ctx, http.MethodGet, "/v1/invitations/accept?"+q.Encode(), "", nil)
	if err != nil {
		return nil, err
	}

	var out AcceptInvitationResponse
	if err := decodeJSON(resp, &out, http.StatusOK); err != nil {
		return nil, err
	}
	return &out, nil
}

// CompleteRegistration finishes manager onboarding with the ticket returned
// by AcceptInvitation.
func (c *Client) CompleteRegistration(ctx context.Context, req CompleteRegistrationRequest) (*Session, error) {
	return c.signIn(ctx, http.MethodPost, "/v1/invitations/complete", req)
}

func (c *Client) signIn(ctx context.Context, method, path string, body any) (*Session, error) {
	resp, err := c.do(ctx, method, path, "", body)
	if err != nil {
		return nil, err
	}

	var out SessionResponse
	if err := decodeJSON(resp, &out, http.StatusOK); err != nil {
		return nil, err
	}
	return c.NewSession(out), nil
}
