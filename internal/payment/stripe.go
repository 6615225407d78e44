package payment

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/stripe/stripe-go/v82"
	"github.com/stripe/stripe-go/v82/client"
)

// StripeConfig configures the Stripe gateway.
type StripeConfig struct {
	SecretKey  string
	PriceID    string
	SuccessURL string
	// Backends overrides the API endpoints; nil uses Stripe's.
	Backends *stripe.Backends
}

// Stripe implements Gateway with Stripe customers and checkout sessions.
type Stripe struct {
	api        *client.API
	priceID    string
	successURL string
}

func NewStripe(cfg StripeConfig) (*Stripe, error) {
	switch {
	case strings.TrimSpace(cfg.SecretKey) == "":
		return nil, errors.New("payment: stripe secret key is required")
	case strings.TrimSpace(cfg.PriceID) == "":
		return nil, errors.New("payment: hint price id is required")
	case strings.TrimSpace(cfg.SuccessURL) == "":
		return nil, errors.New("payment: success url is required")
	}
	api := &client.API{}
	api.Init(cfg.SecretKey, cfg.Backends)
	return &Stripe{api: api, priceID: cfg.PriceID, successURL: cfg.SuccessURL}, nil
}

func (s *Stripe) FindCustomer(ctx context.Context, email string) (string, bool, error) {
	params := &stripe.CustomerListParams{Email: stripe.String(email)}
	params.Context = ctx
	it := s.api.Customers.List(params)
	for it.Next() {
		if c := it.Customer(); c.Email == email {
			return c.ID, true, nil
		}
	}
	if err := it.Err(); err != nil {
		return "", false, fmt.Errorf("payment: list customers: %w", err)
	}
	return "", false, nil
}

func (s *Stripe) CreateCustomer(ctx context.Context, email string) (string, error) {
	params := &stripe.CustomerParams{Email: stripe.String(email)}
	params.Context = ctx
	c, err := s.api.Customers.New(params)
	if err != nil {
		return "", fmt.Errorf("payment: create customer: %w", err)
	}
	return c.ID, nil
}

func (s *Stripe) CreateCheckout(ctx context.Context, customerID string) (Checkout, error) {
	params := &stripe.CheckoutSessionParams{
		Customer:   stripe.String(customerID),
		Mode:       stripe.String(string(stripe.CheckoutSessionModePayment)),
		SuccessURL: stripe.String(s.successURL),
		LineItems: []*stripe.CheckoutSessionLineItemParams{{
			Price:    stripe.String(s.priceID),
			Quantity: stripe.Int64(1),
		}},
	}
	params.Context = ctx
	cs, err := s.api.CheckoutSessions.New(params)
	if err != nil {
		return Checkout{}, fmt.Errorf("payment: create checkout: %w", err)
	}
	return Checkout{ID: cs.ID, URL: cs.URL}, nil
}

func (s *Stripe) CheckoutPaid(ctx context.Context, checkoutID string) (bool, error) {
	params := &stripe.CheckoutSessionParams{}
	params.Context = ctx
	cs, err := s.api.CheckoutSessions.Get(checkoutID, params)
	if err != nil {
		return false, fmt.Errorf("payment: retrieve checkout: %w", err)
	}
	return cs.PaymentStatus == stripe.CheckoutSessionPaymentStatusPaid, nil
}
