package payment

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/bwmarrin/snowflake"
	"go.uber.org/zap"
)

func sessionRequest() CreateSessionRequest {
	return CreateSessionRequest{
		BookingID:    snowflake.ID(12345),
		TenantID:     snowflake.ID(67890),
		CustomerName: "Ada Lovelace",
		Email:        "ada@example.com",
		EventDate:    "2026-03-10",
		Lines: []CheckoutLine{
			{Title: "Full Day", Amount: 50000, Currency: "USD", Quantity: 1},
			{Title: "Photo Album", Amount: 10000, Currency: "USD", Quantity: 1},
		},
		SuccessURL: "https://shop.test/booked",
		CancelURL:  "https://shop.test/checkout",
	}
}

func TestStripeCreateCheckoutSession(t *testing.T) {
	var got *http.Request
	var form map[string][]string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseForm(); err != nil {
			t.Errorf("parse form: %v", err)
		}
		got = r
		form = r.PostForm
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":"cs_test_1","url":"https://checkout.stripe.com/pay/cs_test_1"}`))
	}))
	defer srv.Close()

	provider := NewStripeProvider("sk_test", srv.URL, zap.NewNop())
	session, err := provider.CreateCheckoutSession(context.Background(), sessionRequest())
	if err != nil {
		t.Fatalf("create session: %v", err)
	}
	if session.Ref != "cs_test_1" {
		t.Fatalf("expected session ref cs_test_1, got %s", session.Ref)
	}
	if session.URL != "https://checkout.stripe.com/pay/cs_test_1" {
		t.Fatalf("unexpected session url %s", session.URL)
	}

	if got.URL.Path != "/v1/checkout/sessions" {
		t.Fatalf("unexpected path %s", got.URL.Path)
	}
	if auth := got.Header.Get("Authorization"); auth != "Bearer sk_test" {
		t.Fatalf("unexpected authorization %q", auth)
	}
	if key := got.Header.Get("Idempotency-Key"); key != "booking_12345" {
		t.Fatalf("unexpected idempotency key %q", key)
	}

	checks := []struct {
		key  string
		want string
	}{
		{"mode", "payment"},
		{"customer_email", "ada@example.com"},
		{"metadata[booking_id]", "12345"},
		{"metadata[event_date]", "2026-03-10"},
		{"line_items[0][price_data][unit_amount]", "50000"},
		{"line_items[0][price_data][currency]", "usd"},
		{"line_items[1][price_data][product_data][name]", "Photo Album"},
		{"line_items[1][quantity]", "1"},
	}
	for _, check := range checks {
		values := form[check.key]
		if len(values) != 1 || values[0] != check.want {
			t.Fatalf("form[%s] = %v, want %s", check.key, values, check.want)
		}
	}
}

func TestStripeCreateCheckoutSessionGatewayError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	provider := NewStripeProvider("sk_test", srv.URL, zap.NewNop())
	_, err := provider.CreateCheckoutSession(context.Background(), sessionRequest())
	if !errors.Is(err, ErrGatewayUnavailable) {
		t.Fatalf("expected ErrGatewayUnavailable, got %v", err)
	}
}

func TestStripeCreateCheckoutSessionMalformedResponse(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"url":"https://checkout.stripe.com"}`))
	}))
	defer srv.Close()

	provider := NewStripeProvider("sk_test", srv.URL, zap.NewNop())
	_, err := provider.CreateCheckoutSession(context.Background(), sessionRequest())
	if !errors.Is(err, ErrGatewayUnavailable) {
		t.Fatalf("expected ErrGatewayUnavailable for missing session id, got %v", err)
	}
}

func TestNoOpProviderDeterministicRef(t *testing.T) {
	req := sessionRequest()
	first, err := NoOpProvider{}.CreateCheckoutSession(context.Background(), req)
	if err != nil {
		t.Fatalf("noop session: %v", err)
	}
	second, _ := NoOpProvider{}.CreateCheckoutSession(context.Background(), req)
	if first.Ref != second.Ref || first.Ref != "noop_12345" {
		t.Fatalf("expected stable ref noop_12345, got %s / %s", first.Ref, second.Ref)
	}
}
