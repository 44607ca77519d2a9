package webhook_test

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	bookingdomain "github.com/smallbiznis/reservo/internal/booking/domain"
	"github.com/smallbiznis/reservo/internal/clock"
	"github.com/smallbiznis/reservo/internal/observability"
	"github.com/smallbiznis/reservo/internal/payment/adapters"
	paymentdomain "github.com/smallbiznis/reservo/internal/payment/domain"
	paymentrepo "github.com/smallbiznis/reservo/internal/payment/repository"
	"github.com/smallbiznis/reservo/internal/payment/webhook"
)

type fakeAdapter struct {
	failVerify bool
}

func (a *fakeAdapter) Provider() string { return "fake" }

func (a *fakeAdapter) Verify(ctx context.Context, payload []byte, headers http.Header) error {
	if a.failVerify {
		return paymentdomain.ErrInvalidSignature
	}
	return nil
}

func (a *fakeAdapter) Parse(ctx context.Context, payload []byte) (*paymentdomain.WebhookEvent, error) {
	var body struct {
		ID         string `json:"id"`
		SessionRef string `json:"session_ref"`
		Type       string `json:"type"`
	}
	if err := json.Unmarshal(payload, &body); err != nil {
		return nil, paymentdomain.ErrInvalidPayload
	}
	var eventType string
	switch body.Type {
	case "completed":
		eventType = paymentdomain.EventTypeSessionCompleted
	case "expired":
		eventType = paymentdomain.EventTypeSessionExpired
	default:
		return nil, paymentdomain.ErrEventIgnored
	}
	return &paymentdomain.WebhookEvent{
		Provider:        "fake",
		ProviderEventID: body.ID,
		SessionRef:      body.SessionRef,
		Type:            eventType,
		RawPayload:      payload,
	}, nil
}

type fakeBookings struct {
	notes []bookingdomain.PaymentNotification
	err   error
}

func (b *fakeBookings) CreateCheckout(ctx context.Context, req bookingdomain.CreateCheckoutRequest) (bookingdomain.CreateCheckoutResponse, error) {
	return bookingdomain.CreateCheckoutResponse{}, errors.New("not implemented")
}

func (b *fakeBookings) HandlePaymentNotification(ctx context.Context, note bookingdomain.PaymentNotification) error {
	b.notes = append(b.notes, note)
	return b.err
}

func (b *fakeBookings) List(ctx context.Context, req bookingdomain.ListBookingsRequest) (bookingdomain.ListBookingsResponse, error) {
	return bookingdomain.ListBookingsResponse{}, errors.New("not implemented")
}

func (b *fakeBookings) GetByID(ctx context.Context, id string) (bookingdomain.Booking, error) {
	return bookingdomain.Booking{}, errors.New("not implemented")
}

func (b *fakeBookings) ExpirePending(ctx context.Context, cutoff time.Time) (int64, error) {
	return 0, errors.New("not implemented")
}

type fakeBookingRepo struct {
	bookingdomain.Repository
	bySessionRef map[string]*bookingdomain.Booking
}

func (r *fakeBookingRepo) FindBySessionRef(ctx context.Context, db *gorm.DB, sessionRef string) (*bookingdomain.Booking, error) {
	return r.bySessionRef[sessionRef], nil
}

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:memdb_%d?mode=memory&cache=shared", time.Now().UnixNano())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open db: %v", err)
	}

	stmts := []string{
		`CREATE TABLE payment_events (
			id BIGINT PRIMARY KEY,
			tenant_id BIGINT NOT NULL,
			provider TEXT NOT NULL,
			provider_event_id TEXT NOT NULL,
			event_type TEXT NOT NULL,
			session_ref TEXT NOT NULL,
			payload TEXT NOT NULL,
			received_at DATETIME NOT NULL,
			processed_at DATETIME
		)`,
		`CREATE UNIQUE INDEX ux_payment_events_provider_event ON payment_events(provider, provider_event_id)`,
	}
	for _, stmt := range stmts {
		if err := db.Exec(stmt).Error; err != nil {
			t.Fatalf("apply schema: %v", err)
		}
	}
	return db
}

func newWebhookService(t *testing.T, adapter *fakeAdapter, bookings *fakeBookings) (paymentdomain.Service, *gorm.DB) {
	return newWebhookServiceWithRepo(t, adapter, bookings, &fakeBookingRepo{})
}

func newWebhookServiceWithRepo(t *testing.T, adapter *fakeAdapter, bookings *fakeBookings, bookingRepo *fakeBookingRepo) (paymentdomain.Service, *gorm.DB) {
	t.Helper()

	db := setupTestDB(t)
	node, err := snowflake.NewNode(10)
	if err != nil {
		t.Fatalf("new node: %v", err)
	}
	metrics, err := observability.NewMetrics()
	if err != nil {
		t.Fatalf("new metrics: %v", err)
	}
	svc := webhook.NewService(webhook.Params{
		DB:          db,
		Log:         zap.NewNop(),
		GenID:       node,
		Clock:       clock.NewFakeClock(time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)),
		Repo:        paymentrepo.Provide(),
		Adapters:    adapters.NewRegistry(adapter),
		Bookings:    bookings,
		BookingRepo: bookingRepo,
		Metrics:     metrics,
	})
	return svc, db
}

func ledgerRow(t *testing.T, db *gorm.DB, eventID string) paymentdomain.EventRecord {
	t.Helper()
	var record paymentdomain.EventRecord
	err := db.Raw(
		`SELECT id, tenant_id, provider, provider_event_id, event_type, session_ref,
			payload, received_at, processed_at
		 FROM payment_events WHERE provider = 'fake' AND provider_event_id = ?`,
		eventID,
	).Scan(&record).Error
	if err != nil {
		t.Fatalf("load ledger row: %v", err)
	}
	if record.ID == 0 {
		t.Fatalf("ledger row %s missing", eventID)
	}
	return record
}

func TestIngestWebhookDeliversAndMarksProcessed(t *testing.T) {
	bookings := &fakeBookings{}
	svc, db := newWebhookService(t, &fakeAdapter{}, bookings)

	payload := []byte(`{"id":"evt_1","session_ref":"sess_1","type":"completed"}`)
	if err := svc.IngestWebhook(context.Background(), "fake", payload, http.Header{}); err != nil {
		t.Fatalf("ingest: %v", err)
	}

	if len(bookings.notes) != 1 {
		t.Fatalf("expected 1 notification, got %d", len(bookings.notes))
	}
	note := bookings.notes[0]
	if note.EventID != "evt_1" || note.SessionRef != "sess_1" || !note.Succeeded {
		t.Fatalf("unexpected notification: %+v", note)
	}

	record := ledgerRow(t, db, "evt_1")
	if record.ProcessedAt == nil {
		t.Fatalf("expected ledger row marked processed")
	}
}

func TestIngestWebhookLedgerCarriesBookingTenant(t *testing.T) {
	bookings := &fakeBookings{}
	bookingRepo := &fakeBookingRepo{bySessionRef: map[string]*bookingdomain.Booking{
		"sess_1": {ID: snowflake.ID(7001), TenantID: snowflake.ID(42)},
	}}
	svc, db := newWebhookServiceWithRepo(t, &fakeAdapter{}, bookings, bookingRepo)

	payload := []byte(`{"id":"evt_1","session_ref":"sess_1","type":"completed"}`)
	if err := svc.IngestWebhook(context.Background(), "fake", payload, http.Header{}); err != nil {
		t.Fatalf("ingest: %v", err)
	}

	record := ledgerRow(t, db, "evt_1")
	if record.TenantID != snowflake.ID(42) {
		t.Fatalf("expected ledger row attributed to tenant 42, got %d", record.TenantID)
	}
}

func TestIngestWebhookDuplicateDelivery(t *testing.T) {
	bookings := &fakeBookings{}
	svc, _ := newWebhookService(t, &fakeAdapter{}, bookings)

	payload := []byte(`{"id":"evt_1","session_ref":"sess_1","type":"completed"}`)
	if err := svc.IngestWebhook(context.Background(), "fake", payload, http.Header{}); err != nil {
		t.Fatalf("first delivery: %v", err)
	}

	err := svc.IngestWebhook(context.Background(), "fake", payload, http.Header{})
	if !errors.Is(err, bookingdomain.ErrEventAlreadyProcessed) {
		t.Fatalf("expected ErrEventAlreadyProcessed, got %v", err)
	}
	if len(bookings.notes) != 1 {
		t.Fatalf("duplicate delivery must not reach reconciliation, got %d calls", len(bookings.notes))
	}
}

func TestIngestWebhookResumesUnprocessedRow(t *testing.T) {
	bookings := &fakeBookings{err: errors.New("db down")}
	svc, db := newWebhookService(t, &fakeAdapter{}, bookings)

	payload := []byte(`{"id":"evt_1","session_ref":"sess_1","type":"completed"}`)
	if err := svc.IngestWebhook(context.Background(), "fake", payload, http.Header{}); err == nil {
		t.Fatalf("expected first delivery to fail")
	}
	record := ledgerRow(t, db, "evt_1")
	if record.ProcessedAt != nil {
		t.Fatalf("failed delivery must leave the row unprocessed")
	}

	// Redelivery resumes under the original row.
	bookings.err = nil
	if err := svc.IngestWebhook(context.Background(), "fake", payload, http.Header{}); err != nil {
		t.Fatalf("redelivery: %v", err)
	}
	if len(bookings.notes) != 2 {
		t.Fatalf("expected reconciliation retried, got %d calls", len(bookings.notes))
	}
	record = ledgerRow(t, db, "evt_1")
	if record.ProcessedAt == nil {
		t.Fatalf("expected ledger row marked processed after retry")
	}
}

func TestIngestWebhookInvalidSignature(t *testing.T) {
	bookings := &fakeBookings{}
	svc, _ := newWebhookService(t, &fakeAdapter{failVerify: true}, bookings)

	payload := []byte(`{"id":"evt_1","session_ref":"sess_1","type":"completed"}`)
	err := svc.IngestWebhook(context.Background(), "fake", payload, http.Header{})
	if !errors.Is(err, paymentdomain.ErrInvalidSignature) {
		t.Fatalf("expected ErrInvalidSignature, got %v", err)
	}
	if len(bookings.notes) != 0 {
		t.Fatalf("unverified payload must not reach reconciliation")
	}
}

func TestIngestWebhookIgnoredEventType(t *testing.T) {
	bookings := &fakeBookings{}
	svc, db := newWebhookService(t, &fakeAdapter{}, bookings)

	payload := []byte(`{"id":"evt_1","session_ref":"sess_1","type":"payment_intent.created"}`)
	if err := svc.IngestWebhook(context.Background(), "fake", payload, http.Header{}); err != nil {
		t.Fatalf("ignored event must be acknowledged, got %v", err)
	}
	if len(bookings.notes) != 0 {
		t.Fatalf("ignored event must not reach reconciliation")
	}

	var count int64
	if err := db.Raw(`SELECT COUNT(*) FROM payment_events`).Scan(&count).Error; err != nil {
		t.Fatalf("count ledger: %v", err)
	}
	if count != 0 {
		t.Fatalf("ignored events are not ledgered, got %d rows", count)
	}
}

func TestIngestWebhookUnknownProvider(t *testing.T) {
	svc, _ := newWebhookService(t, &fakeAdapter{}, &fakeBookings{})

	err := svc.IngestWebhook(context.Background(), "nope", []byte(`{}`), http.Header{})
	if !errors.Is(err, paymentdomain.ErrProviderNotFound) {
		t.Fatalf("expected ErrProviderNotFound, got %v", err)
	}
}

func TestIngestWebhookMalformedPayload(t *testing.T) {
	svc, _ := newWebhookService(t, &fakeAdapter{}, &fakeBookings{})

	err := svc.IngestWebhook(context.Background(), "fake", []byte(`{not json`), http.Header{})
	if !errors.Is(err, paymentdomain.ErrInvalidPayload) {
		t.Fatalf("expected ErrInvalidPayload, got %v", err)
	}
}

func TestIngestWebhookUnknownSessionStopsRedelivery(t *testing.T) {
	bookings := &fakeBookings{err: bookingdomain.ErrNotFound}
	svc, db := newWebhookService(t, &fakeAdapter{}, bookings)

	payload := []byte(`{"id":"evt_1","session_ref":"sess_missing","type":"completed"}`)
	if err := svc.IngestWebhook(context.Background(), "fake", payload, http.Header{}); err != nil {
		t.Fatalf("unknown session must be acknowledged, got %v", err)
	}

	record := ledgerRow(t, db, "evt_1")
	if record.ProcessedAt == nil {
		t.Fatalf("unknown session event must be marked processed")
	}
}
