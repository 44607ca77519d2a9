package webhook

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/bwmarrin/snowflake"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	bookingdomain "github.com/smallbiznis/reservo/internal/booking/domain"
	"github.com/smallbiznis/reservo/internal/clock"
	"github.com/smallbiznis/reservo/internal/observability"
	"github.com/smallbiznis/reservo/internal/payment/adapters"
	paymentdomain "github.com/smallbiznis/reservo/internal/payment/domain"
	"github.com/smallbiznis/reservo/internal/tenantctx"
)

type Params struct {
	fx.In

	DB       *gorm.DB
	Log      *zap.Logger
	GenID    *snowflake.Node
	Clock    clock.Clock
	Repo        paymentdomain.Repository
	Adapters    *adapters.Registry
	Bookings    bookingdomain.Service
	BookingRepo bookingdomain.Repository
	Metrics     *observability.Metrics
}

type Service struct {
	db          *gorm.DB
	log         *zap.Logger
	genID       *snowflake.Node
	clock       clock.Clock
	repo        paymentdomain.Repository
	adapters    *adapters.Registry
	bookings    bookingdomain.Service
	bookingRepo bookingdomain.Repository
	metrics     *observability.Metrics
}

func NewService(p Params) paymentdomain.Service {
	return &Service{
		db:          p.DB,
		log:         p.Log.Named("payment.webhook"),
		genID:       p.GenID,
		clock:       p.Clock,
		repo:        p.Repo,
		adapters:    p.Adapters,
		bookings:    p.Bookings,
		bookingRepo: p.BookingRepo,
		metrics:     p.Metrics,
	}
}

// IngestWebhook verifies and applies one provider webhook delivery.
// The ledger row is inserted before any effect and marked processed
// only after reconciliation commits, so a crash in between leaves a
// row the next delivery can resume.
func (s *Service) IngestWebhook(ctx context.Context, provider string, payload []byte, headers http.Header) error {
	provider = strings.ToLower(strings.TrimSpace(provider))
	if provider == "" {
		return paymentdomain.ErrInvalidProvider
	}

	adapter, err := s.adapters.Adapter(provider)
	if err != nil {
		return err
	}
	if !json.Valid(payload) {
		return paymentdomain.ErrInvalidPayload
	}

	if err := adapter.Verify(ctx, payload, headers); err != nil {
		s.metrics.WebhookEvents.WithLabelValues("invalid_signature").Inc()
		return err
	}

	event, err := adapter.Parse(ctx, payload)
	if err != nil {
		if errors.Is(err, paymentdomain.ErrEventIgnored) {
			s.metrics.WebhookEvents.WithLabelValues("ignored").Inc()
			return nil
		}
		return err
	}

	// Webhook routes carry no tenant header, so attribute the ledger
	// row to the booking the session belongs to.
	tenantID, ok := tenantctx.TenantIDFromContext(ctx)
	if !ok {
		if booking, err := s.bookingRepo.FindBySessionRef(ctx, s.db, event.SessionRef); err == nil && booking != nil {
			tenantID = booking.TenantID
		}
	}

	record := &paymentdomain.EventRecord{
		ID:              s.genID.Generate(),
		TenantID:        tenantID,
		Provider:        event.Provider,
		ProviderEventID: event.ProviderEventID,
		EventType:       event.Type,
		SessionRef:      event.SessionRef,
		Payload:         datatypes.JSON(event.RawPayload),
		ReceivedAt:      s.clock.Now(),
	}

	inserted, err := s.repo.InsertEvent(ctx, s.db, record)
	if err != nil {
		return err
	}
	if !inserted {
		existing, err := s.repo.FindEvent(ctx, s.db, event.Provider, event.ProviderEventID)
		if err != nil {
			return err
		}
		if existing == nil {
			// Lost the insert race and the row is gone; let the
			// provider redeliver.
			return fmt.Errorf("payment event %s/%s not visible after insert", event.Provider, event.ProviderEventID)
		}
		if existing.ProcessedAt != nil {
			s.metrics.WebhookEvents.WithLabelValues("duplicate").Inc()
			return bookingdomain.ErrEventAlreadyProcessed
		}
		// Redelivery of an event whose first attempt died before
		// completion. Resume under the original ledger row.
		record = existing
	}

	note := bookingdomain.PaymentNotification{
		EventID:    event.ProviderEventID,
		SessionRef: event.SessionRef,
		Succeeded:  event.Succeeded(),
	}

	if err := s.bookings.HandlePaymentNotification(ctx, note); err != nil {
		switch {
		case errors.Is(err, bookingdomain.ErrNotFound):
			// Unknown session: nothing to reconcile against. Mark
			// processed so the provider stops redelivering.
			s.log.Warn("webhook references unknown checkout session",
				zap.String("provider", event.Provider),
				zap.String("session_ref", event.SessionRef),
				zap.String("provider_event_id", event.ProviderEventID),
			)
			s.metrics.WebhookEvents.WithLabelValues("unknown_session").Inc()
		case errors.Is(err, bookingdomain.ErrEventAlreadyProcessed):
			s.metrics.WebhookEvents.WithLabelValues("duplicate").Inc()
		case errors.Is(err, bookingdomain.ErrWebhookConflict):
			// The booking lost its date. Recorded for manual
			// reconciliation; the delivery itself succeeded.
			s.metrics.WebhookEvents.WithLabelValues("conflict").Inc()
		default:
			s.metrics.WebhookEvents.WithLabelValues("error").Inc()
			return err
		}
	} else {
		s.metrics.WebhookEvents.WithLabelValues("processed").Inc()
	}

	if err := s.repo.MarkProcessed(ctx, s.db, record.ID, s.clock.Now()); err != nil {
		return err
	}
	return nil
}
