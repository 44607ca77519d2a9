package payment

import (
	"context"
	"errors"
	"fmt"

	"github.com/bwmarrin/snowflake"
)

// ErrGatewayUnavailable wraps every transport or gateway-side failure
// so callers can map it to a retryable response.
var ErrGatewayUnavailable = errors.New("payment_gateway_unavailable")

// CheckoutLine is a single priced item on the hosted checkout page.
type CheckoutLine struct {
	Title    string
	Amount   int64
	Currency string
	Quantity int64
}

type CreateSessionRequest struct {
	BookingID    snowflake.ID
	TenantID     snowflake.ID
	CustomerName string
	Email        string
	EventDate    string
	Lines        []CheckoutLine
	SuccessURL   string
	CancelURL    string
}

// Session is a hosted checkout session at the gateway. Ref is the
// gateway's session identifier; URL is where the customer pays.
type Session struct {
	Ref string
	URL string
}

// CheckoutProvider creates hosted checkout sessions. Implementations
// must be idempotent on BookingID so a retried create never double
// charges.
type CheckoutProvider interface {
	CreateCheckoutSession(ctx context.Context, req CreateSessionRequest) (*Session, error)
}

// NoOpProvider returns a deterministic fake session. Used when no
// gateway is configured and in tests.
type NoOpProvider struct{}

func (NoOpProvider) CreateCheckoutSession(ctx context.Context, req CreateSessionRequest) (*Session, error) {
	ref := fmt.Sprintf("noop_%s", req.BookingID.String())
	return &Session{Ref: ref, URL: "https://checkout.invalid/" + ref}, nil
}
