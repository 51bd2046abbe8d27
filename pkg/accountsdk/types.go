package accountsdk

import (
	"encoding/json"
	"time"

	"github.com/aussiebroadwan/spacehub/pkg/jwtx"
)

// ============================================================================
// Error Response
// ============================================================================

// ErrorResponse is the JSON body of every non-2xx response.
type ErrorResponse struct {
	// Error is the machine readable error kind (e.g. "validation_error").
	Error string `json:"error"`

	// ErrorDescription is a human readable message.
	ErrorDescription string `json:"error_description,omitempty"`

	// Fields maps input fields to what is wrong with them. Only set for
	// validation errors.
	Fields map[string]string `json:"fields,omitempty"`
}

// ============================================================================
// Accounts
// ============================================================================

// Account is the public view of an account. It never carries credential
// material.
type Account struct {
	ID                string          `json:"id"`
	Email             string          `json:"email"`
	Role              string          `json:"role"`
	Verified          bool            `json:"verified"`
	Active            bool            `json:"active"`
	Profile           json.RawMessage `json:"profile,omitempty" swaggertype:"object"`
	BillingCustomerID string          `json:"billing_customer_id,omitempty"`
	CardIDs           []string        `json:"card_ids"`
	Invitation        *Invitation     `json:"invitation,omitempty"`
	PasswordChangedAt *time.Time      `json:"password_changed_at,omitempty"`
	Version           int64           `json:"version"`
	CreatedAt         time.Time       `json:"created_at"`
	UpdatedAt         time.Time       `json:"updated_at"`
}

// Invitation is the onboarding state of an invited manager.
type Invitation struct {
	BranchID  string    `json:"branch_id"`
	InvitedBy string    `json:"invited_by"`
	State     string    `json:"state"`
	ExpiresAt time.Time `json:"expires_at"`
}

// SessionResponse is returned by every endpoint that signs the caller in.
type SessionResponse struct {
	Token     string    `json:"token"`
	TokenType string    `json:"token_type"`
	ExpiresAt time.Time `json:"expires_at"`
	Account   *Account  `json:"account,omitempty"`
}

// ============================================================================
// Requests
// ============================================================================

type SignupRequest struct {
	Email           string `json:"email"`
	Password        string `json:"password"`
	PasswordConfirm string `json:"password_confirm"`
	Role            string `json:"role,omitempty"`
	FullName        string `json:"full_name,omitempty"`
	PhoneNo         string `json:"phone_no,omitempty"`
}

type VerifyOTPRequest struct {
	Email string `json:"email"`
	Code  string `json:"code"`
}

// EmailRequest is the body of the resend and forgot-password endpoints.
type EmailRequest struct {
	Email string `json:"email"`
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type ResetPasswordRequest struct {
	Email           string `json:"email"`
	Code            string `json:"code,omitempty"`
	Password        string `json:"password"`
	PasswordConfirm string `json:"password_confirm"`
}

type UpdatePasswordRequest struct {
	CurrentPassword string `json:"current_password"`
	Password        string `json:"password"`
	PasswordConfirm string `json:"password_confirm"`
}

type UpdateMeRequest struct {
	Email           string `json:"email,omitempty"`
	Password        string `json:"password,omitempty"`
	PasswordConfirm string `json:"password_confirm,omitempty"`
}

// ProfilePatch maps writable profile fields (e.g. "full_name",
// "company_name") to their new values.
type ProfilePatch map[string]string

type AddCardRequest struct {
	PaymentMethodID string `json:"payment_method_id"`
}

type InviteRequest struct {
	Email    string `json:"email"`
	BranchID string `json:"branch_id"`
	FullName string `json:"full_name,omitempty"`
	PhoneNo  string `json:"phone_no,omitempty"`
}

// AcceptInvitationResponse carries the ticket that completes registration.
type AcceptInvitationResponse struct {
	Email     string    `json:"email"`
	Ticket    string    `json:"ticket"`
	ExpiresAt time.Time `json:"expires_at"`
}

type CompleteRegistrationRequest struct {
	Email           string `json:"email"`
	Ticket          string `json:"ticket"`
	Password        string `json:"password"`
	PasswordConfirm string `json:"password_confirm"`
	FullName        string `json:"full_name,omitempty"`
	PhoneNo         string `json:"phone_no,omitempty"`
}

type ChangeRoleRequest struct {
	Role string `json:"role"`
}

type SetStatusRequest struct {
	Active *bool `json:"active"`
}

// ListAccountsOptions filters GET /v1/accounts. Zero values are omitted.
type ListAccountsOptions struct {
	Role   string
	Active *bool
	Limit  int
	Offset int
}

type AccountList struct {
	Accounts []Account `json:"accounts"`
	Limit    int       `json:"limit"`
	Offset   int       `json:"offset"`
}

// ============================================================================
// System
// ============================================================================

// HealthResponse is returned by the liveness and readiness probes.
type HealthResponse struct {
	Status  string        `json:"status"`
	Uptime  string        `json:"uptime"`
	Version string        `json:"version"`
	Checks  *HealthChecks `json:"checks,omitempty"`
}

type HealthChecks struct {
	Database string `json:"database"`
	Signer   string `json:"signer"`
}

// JWKSResponse is the public key set tokens are verified against.
type JWKSResponse jwtx.JWKS
