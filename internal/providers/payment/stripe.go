package payment

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"
)

const (
	stripeAPIBase  = "https://api.stripe.com"
	requestTimeout = 12 * time.Second
)

// StripeProvider creates Stripe hosted Checkout sessions over the REST
// API. Requests carry an Idempotency-Key derived from the booking ID so
// gateway retries reuse the same session.
type StripeProvider struct {
	apiKey  string
	baseURL string
	client  *http.Client
	log     *zap.Logger
}

func NewStripeProvider(apiKey, baseURL string, log *zap.Logger) *StripeProvider {
	if strings.TrimSpace(baseURL) == "" {
		baseURL = stripeAPIBase
	}
	return &StripeProvider{
		apiKey:  apiKey,
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  &http.Client{Timeout: requestTimeout},
		log:     log.Named("providers.stripe"),
	}
}

type stripeSession struct {
	ID  string `json:"id"`
	URL string `json:"url"`
}

func (p *StripeProvider) CreateCheckoutSession(ctx context.Context, req CreateSessionRequest) (*Session, error) {
	form := url.Values{}
	form.Set("mode", "payment")
	form.Set("customer_email", req.Email)
	form.Set("success_url", req.SuccessURL)
	form.Set("cancel_url", req.CancelURL)
	form.Set("metadata[booking_id]", req.BookingID.String())
	form.Set("metadata[tenant_id]", req.TenantID.String())
	form.Set("metadata[event_date]", req.EventDate)

	for i, line := range req.Lines {
		prefix := fmt.Sprintf("line_items[%d]", i)
		form.Set(prefix+"[price_data][currency]", strings.ToLower(line.Currency))
		form.Set(prefix+"[price_data][unit_amount]", strconv.FormatInt(line.Amount, 10))
		form.Set(prefix+"[price_data][product_data][name]", line.Title)
		form.Set(prefix+"[quantity]", strconv.FormatInt(line.Quantity, 10))
	}

	endpoint := p.baseURL + "/v1/checkout/sessions"
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrGatewayUnavailable, err)
	}
	httpReq.Header.Set("Authorization", "Bearer "+p.apiKey)
	httpReq.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	httpReq.Header.Set("Idempotency-Key", "booking_"+req.BookingID.String())

	resp, err := p.client.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrGatewayUnavailable, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrGatewayUnavailable, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		p.log.Warn("stripe checkout session create failed",
			zap.Int("status", resp.StatusCode),
			zap.String("booking_id", req.BookingID.String()),
		)
		return nil, fmt.Errorf("%w: status %d", ErrGatewayUnavailable, resp.StatusCode)
	}

	var session stripeSession
	if err := json.Unmarshal(body, &session); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrGatewayUnavailable, err)
	}
	if strings.TrimSpace(session.ID) == "" {
		return nil, fmt.Errorf("%w: empty session id", ErrGatewayUnavailable)
	}

	return &Session{Ref: session.ID, URL: session.URL}, nil
}
