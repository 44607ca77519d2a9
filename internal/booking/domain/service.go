package domain

import (
	"context"
	"errors"
	"time"

	"github.com/smallbiznis/reservo/pkg/db/pagination"
)

type CreateCheckoutRequest struct {
	PackageID    string
	EventDate    string
	AddOnIDs     []string
	CustomerName string
	Email        string
}

type CreateCheckoutResponse struct {
	BookingID   string `json:"booking_id"`
	CheckoutURL string `json:"checkout_url"`
	Total       int64  `json:"total"`
	Currency    string `json:"currency"`
}

// PaymentNotification is the normalized form of an inbound payment
// webhook: the adapter layer has already verified the signature and
// mapped the provider's event shape onto these fields.
type PaymentNotification struct {
	EventID    string
	SessionRef string
	Succeeded  bool
}

type ListBookingsRequest struct {
	PageToken string
	PageSize  int32
	Status    string
	DateFrom  string
	DateTo    string
}

type ListBookingsResponse struct {
	pagination.PageInfo
	Bookings []Booking `json:"bookings"`
}

type Service interface {
	CreateCheckout(ctx context.Context, req CreateCheckoutRequest) (CreateCheckoutResponse, error)
	// HandlePaymentNotification applies a verified payment event exactly
	// once. Redelivery of an already-applied event returns
	// ErrEventAlreadyProcessed, which transports treat as success.
	HandlePaymentNotification(ctx context.Context, note PaymentNotification) error
	List(ctx context.Context, req ListBookingsRequest) (ListBookingsResponse, error)
	GetByID(ctx context.Context, id string) (Booking, error)
	// ExpirePending cancels pending_payment bookings older than the
	// cutoff. Returns how many rows were cancelled.
	ExpirePending(ctx context.Context, cutoff time.Time) (int64, error)
}

var (
	ErrInvalidTenant         = errors.New("invalid_tenant")
	ErrInvalidPackage        = errors.New("invalid_package")
	ErrInvalidDate           = errors.New("invalid_date")
	ErrInvalidEmail          = errors.New("invalid_email")
	ErrInvalidName           = errors.New("invalid_name")
	ErrInvalidAddOn          = errors.New("invalid_add_on")
	ErrInvalidID             = errors.New("invalid_id")
	ErrNotFound              = errors.New("not_found")
	ErrDateUnavailable       = errors.New("date_unavailable")
	ErrPaymentGateway        = errors.New("payment_gateway_error")
	ErrEventAlreadyProcessed = errors.New("event_already_processed")
	ErrWebhookConflict       = errors.New("webhook_conflict")
)
