package domain

import (
	"log/slog"
	"slices"
	"strings"
	"time"
)

type Account struct {
	ID                string
	Email             string // always normalized, see NormalizeEmail
	PasswordHash      string // loaded only with store.WithSecrets
	Role              Role
	Verified          bool
	Active            bool
	Challenge         *Challenge // loaded only with store.WithSecrets
	PasswordChangedAt *time.Time
	Profile           Profile
	BillingCustomerID string
	CardIDs           []string
	Invitation        *Invitation // nil unless the account was created by an invitation
	Version           int64
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

// LogValue keeps credentials out of logs no matter how an Account is logged.
func (a Account) LogValue() slog.Value {
	return slog.GroupValue(
		slog.String("id", a.ID),
		slog.String("email", a.Email),
		slog.String("role", string(a.Role)),
		slog.Bool("verified", a.Verified),
		slog.Bool("active", a.Active),
	)
}

// HasCard reports whether cardID is one of the account's stored cards.
func (a Account) HasCard(cardID string) bool {
	return slices.Contains(a.CardIDs, cardID)
}

// NormalizeEmail is the canonical form used for storage and lookups.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Redacted returns a copy without credential material, for responses.
func (a Account) Redacted() Account {
	a.PasswordHash = ""
	a.Challenge = nil
	if a.Invitation != nil {
		inv := *a.Invitation
		inv.TokenHash = ""
		a.Invitation = &inv
	}
	return a
}
