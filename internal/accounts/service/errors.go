package service

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// Error kinds returned by every service operation. The HTTP layer maps them
// to status codes with errors.Is; anything else is an internal error.
var (
	ErrValidation       = errors.New("validation_error")
	ErrAuth             = errors.New("invalid_credentials")
	ErrNotVerified      = errors.New("account_not_verified")
	ErrUnauthenticated  = errors.New("unauthenticated")
	ErrForbidden        = errors.New("forbidden")
	ErrNotFound         = errors.New("not_found")
	ErrDuplicateAccount = errors.New("duplicate_account")
	ErrConflict         = errors.New("conflict")
	ErrExpired          = errors.New("expired")
	ErrDelivery         = errors.New("delivery_failed")
	ErrBilling          = errors.New("billing_unavailable")

	// ErrInvalidToken is returned by TokenIssuer.Verify for any bad token.
	ErrInvalidToken = errors.New("invalid_token")
)

// ValidationError lists the offending input fields. It matches ErrValidation.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf("%s %s", k, e.Fields[k]))
	}
	return "validation_error: " + strings.Join(parts, "; ")
}

func (e *ValidationError) Unwrap() error { return ErrValidation }

func invalid(field, reason string) error {
	return &ValidationError{Fields: map[string]string{field: reason}}
}
