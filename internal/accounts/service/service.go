package service

import (
	"context"
	"time"

	"github.com/aussiebroadwan/spacehub/internal/accounts/mail"
)

// Mailer delivers notification emails. Failures are reported synchronously.
type Mailer interface {
	Send(ctx context.Context, msg mail.Message) error
}

// Billing provisions payment-provider customers and card references.
type Billing interface {
	CreateCustomer(ctx context.Context, email, name string) (string, error)
	AttachCard(ctx context.Context, customerID, paymentMethodID string) (string, error)
	DetachCard(ctx context.Context, customerID, cardID string) error
}

// Clock returns the current time. Nil means time.Now.
type Clock func() time.Time

func (c Clock) Now() time.Time {
	if c == nil {
		return time.Now().UTC()
	}
	return c().UTC()
}

// versionGuard returns &version when optimistic locking is on.
func versionGuard(enabled bool, version int64) *int64 {
	if !enabled {
		return nil
	}
	return &version
}
