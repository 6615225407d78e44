package payment

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stripe/stripe-go/v82"
)

func newTestStripe(t *testing.T, h http.HandlerFunc) *Stripe {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)

	backend := stripe.GetBackendWithConfig(stripe.APIBackend, &stripe.BackendConfig{
		URL:               stripe.String(srv.URL),
		HTTPClient:        srv.Client(),
		MaxNetworkRetries: stripe.Int64(0),
	})
	s, err := NewStripe(StripeConfig{
		SecretKey:  "sk_test_123",
		PriceID:    "price_hint",
		SuccessURL: "https://example.com/hint/success",
		Backends:   &stripe.Backends{API: backend, Connect: backend, Uploads: backend},
	})
	if err != nil {
		t.Fatalf("NewStripe: %v", err)
	}
	return s
}

func TestNewStripeValidatesConfig(t *testing.T) {
	tests := []struct {
		name string
		cfg  StripeConfig
	}{
		{"missing key", StripeConfig{PriceID: "p", SuccessURL: "u"}},
		{"missing price", StripeConfig{SecretKey: "k", SuccessURL: "u"}},
		{"missing success url", StripeConfig{SecretKey: "k", PriceID: "p"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := NewStripe(tt.cfg); err == nil {
				t.Fatal("expected error")
			}
		})
	}
}

func TestFindCustomerRequiresExactEmail(t *testing.T) {
	s := newTestStripe(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/customers" {
			t.Errorf("path = %s", r.URL.Path)
		}
		if got := r.URL.Query().Get("email"); got != "ann@example.com" {
			t.Errorf("email filter = %q", got)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"object":"list","url":"/v1/customers","has_more":false,"data":[
			{"id":"cus_other","object":"customer","email":"ANN@example.com"},
			{"id":"cus_ann","object":"customer","email":"ann@example.com"}]}`))
	})

	id, found, err := s.FindCustomer(context.Background(), "ann@example.com")
	if err != nil {
		t.Fatalf("FindCustomer: %v", err)
	}
	if !found || id != "cus_ann" {
		t.Fatalf("got %q found=%v, want cus_ann", id, found)
	}
}

func TestCreateCheckout(t *testing.T) {
	s := newTestStripe(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/v1/checkout/sessions" {
			t.Errorf("unexpected %s %s", r.Method, r.URL.Path)
		}
		if err := r.ParseForm(); err != nil {
			t.Errorf("parse form: %v", err)
		}
		if r.PostForm.Get("customer") != "cus_ann" || r.PostForm.Get("mode") != "payment" {
			t.Errorf("form = %v", r.PostForm)
		}
		if r.PostForm.Get("line_items[0][price]") != "price_hint" {
			t.Errorf("price = %q", r.PostForm.Get("line_items[0][price]"))
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":"cs_1","object":"checkout.session","url":"https://checkout.example/cs_1","payment_status":"unpaid"}`))
	})

	co, err := s.CreateCheckout(context.Background(), "cus_ann")
	if err != nil {
		t.Fatalf("CreateCheckout: %v", err)
	}
	if co.ID != "cs_1" || co.URL != "https://checkout.example/cs_1" {
		t.Fatalf("checkout = %+v", co)
	}
}

func TestCheckoutPaid(t *testing.T) {
	status := "unpaid"
	s := newTestStripe(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/checkout/sessions/cs_1" {
			t.Errorf("path = %s", r.URL.Path)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":"cs_1","object":"checkout.session","payment_status":"` + status + `"}`))
	})

	paid, err := s.CheckoutPaid(context.Background(), "cs_1")
	if err != nil || paid {
		t.Fatalf("unpaid checkout: paid=%v err=%v", paid, err)
	}
	status = "paid"
	paid, err = s.CheckoutPaid(context.Background(), "cs_1")
	if err != nil || !paid {
		t.Fatalf("paid checkout: paid=%v err=%v", paid, err)
	}
}

func TestDisabledGateway(t *testing.T) {
	var g Gateway = Disabled{}
	if _, err := g.CreateCheckout(context.Background(), "c"); !errors.Is(err, ErrNotConfigured) {
		t.Fatalf("got %v", err)
	}
}
