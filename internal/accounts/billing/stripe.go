// Package billing provisions payment-provider customers and stores card
// references for marketplace accounts.
package billing

import (
	"context"
	"errors"
	"fmt"

	"github.com/stripe/stripe-go/v76"
	"github.com/stripe/stripe-go/v76/client"
)

var ErrCardNotAttached = errors.New("billing: card not attached to customer")

// Stripe talks to the Stripe API. Card ids are Stripe PaymentMethod ids.
type Stripe struct {
	api *client.API
}

// NewStripe builds a client for key. backends may be nil to use the live API.
func NewStripe(key string, backends *stripe.Backends) *Stripe {
	api := &client.API{}
	api.Init(key, backends)
	return &Stripe{api: api}
}

// CreateCustomer registers a billing customer and returns its id.
func (s *Stripe) CreateCustomer(ctx context.Context, email, name string) (string, error) {
	params := &stripe.CustomerParams{Email: stripe.String(email)}
	if name != "" {
		params.Name = stripe.String(name)
	}
	params.Context = ctx

	c, err := s.api.Customers.New(params)
	if err != nil {
		return "", fmt.Errorf("billing: create customer: %w", err)
	}
	return c.ID, nil
}

// AttachCard attaches a payment method to the customer and returns the card id.
func (s *Stripe) AttachCard(ctx context.Context, customerID, paymentMethodID string) (string, error) {
	params := &stripe.PaymentMethodAttachParams{Customer: stripe.String(customerID)}
	params.Context = ctx

	pm, err := s.api.PaymentMethods.Attach(paymentMethodID, params)
	if err != nil {
		return "", fmt.Errorf("billing: attach card: %w", err)
	}
	return pm.ID, nil
}

// DetachCard removes a card from the customer. Cards held by another
// customer are refused.
func (s *Stripe) DetachCard(ctx context.Context, customerID, cardID string) error {
	get := &stripe.PaymentMethodParams{}
	get.Context = ctx
	pm, err := s.api.PaymentMethods.Get(cardID, get)
	if err != nil {
		return fmt.Errorf("billing: get card: %w", err)
	}
	if pm.Customer == nil || pm.Customer.ID != customerID {
		return ErrCardNotAttached
	}

	params := &stripe.PaymentMethodDetachParams{}
	params.Context = ctx
	if _, err := s.api.PaymentMethods.Detach(cardID, params); err != nil {
		return fmt.Errorf("billing: detach card: %w", err)
	}
	return nil
}
