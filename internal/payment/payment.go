// internal/payment/payment.go
//
// Payment gateway used to gate hints behind a one-off checkout.
//
// The session actor resolves a customer for the user's email, creates a
// checkout for the configured price, and later asks whether that checkout
// was paid. Nothing here holds per-user state; the actor owns the
// customer id and the outstanding checkout id.

package payment

import (
	"context"
	"errors"
)

// ErrNotConfigured is returned by Disabled for every call.
var ErrNotConfigured = errors.New("payment: gateway not configured")

// Checkout is a created checkout session.
type Checkout struct {
	ID  string
	URL string
}

// Gateway is the subset of the payment provider the hint flow needs.
type Gateway interface {
	// FindCustomer returns the id of the customer whose email matches exactly.
	FindCustomer(ctx context.Context, email string) (id string, found bool, err error)
	CreateCustomer(ctx context.Context, email string) (string, error)
	CreateCheckout(ctx context.Context, customerID string) (Checkout, error)
	CheckoutPaid(ctx context.Context, checkoutID string) (bool, error)
}

// Disabled rejects every request. It is wired when no provider key is set,
// so hint requests fail as internal errors instead of granting hints for free.
type Disabled struct{}

func (Disabled) FindCustomer(context.Context, string) (string, bool, error) {
	return "", false, ErrNotConfigured
}

func (Disabled) CreateCustomer(context.Context, string) (string, error) {
	return "", ErrNotConfigured
}

func (Disabled) CreateCheckout(context.Context, string) (Checkout, error) {
	return Checkout{}, ErrNotConfigured
}

func (Disabled) CheckoutPaid(context.Context, string) (bool, error) {
	return false, ErrNotConfigured
}
