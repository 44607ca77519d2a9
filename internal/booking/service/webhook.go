package service

import (
	"context"
	"encoding/json"
	"strings"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/smallbiznis/reservo/internal/booking/domain"
	catalogdomain "github.com/smallbiznis/reservo/internal/catalog/domain"
	"github.com/smallbiznis/reservo/internal/events"
	"github.com/smallbiznis/reservo/internal/tenantctx"
	"github.com/smallbiznis/reservo/pkg/db"
)

// HandlePaymentNotification reconciles one verified payment event
// against its booking. Confirmation is a single conditional UPDATE
// guarded by the unique (tenant_id, confirmed_date) index, so two
// paid sessions for the same date can never both confirm: the loser
// is cancelled and recorded as a conflict.
func (s *bookingService) HandlePaymentNotification(ctx context.Context, note domain.PaymentNotification) error {
	sessionRef := strings.TrimSpace(note.SessionRef)
	if sessionRef == "" {
		return domain.ErrNotFound
	}

	booking, err := s.repo.FindBySessionRef(ctx, s.db, sessionRef)
	if err != nil {
		return err
	}
	if booking == nil {
		return domain.ErrNotFound
	}

	// Webhook routes are not tenant-scoped; the booking tells us whose
	// catalog to consult downstream.
	ctx = tenantctx.WithTenantID(ctx, booking.TenantID)

	if !note.Succeeded {
		return s.handlePaymentExpired(ctx, booking)
	}
	return s.handlePaymentSucceeded(ctx, booking, note)
}

func (s *bookingService) handlePaymentExpired(ctx context.Context, booking *domain.Booking) error {
	if booking.Status.IsTerminal() {
		return nil
	}
	cancelled, err := s.repo.Cancel(ctx, s.db, booking.ID, "payment_expired", s.clock.Now())
	if err != nil {
		return err
	}
	if cancelled {
		s.log.Info("booking cancelled on expired checkout session",
			zap.String("booking_id", booking.ID.String()),
			zap.String("tenant_id", booking.TenantID.String()),
		)
	}
	return nil
}

func (s *bookingService) handlePaymentSucceeded(ctx context.Context, booking *domain.Booking, note domain.PaymentNotification) error {
	switch booking.Status {
	case domain.StatusConfirmed:
		// Another delivery already confirmed this session.
		return domain.ErrEventAlreadyProcessed
	case domain.StatusCancelled:
		// Payment settled after the booking was already cancelled
		// (expired by housekeeping or it lost an earlier race). The
		// customer was charged, so record it for manual refund.
		if err := s.recordConflict(ctx, s.db, booking, note.EventID); err != nil {
			return err
		}
		s.metrics.BookingConflicts.Inc()
		return domain.ErrWebhookConflict
	}

	// The conditional UPDATE is atomic on its own; running it inside a
	// transaction would leave that transaction aborted on postgres once
	// the unique index fires, killing the cancel that has to follow.
	confirmed, err := s.repo.Confirm(ctx, s.db, booking.ID, booking.EventDate, s.clock.Now())
	if err != nil {
		if !db.IsDuplicateKeyErr(err) {
			return err
		}
		// Lost the race for the date: someone else's confirmed booking
		// holds it. Cancel and keep the paid event for reconciliation,
		// in a fresh transaction untouched by the failed update.
		err := s.db.Transaction(func(tx *gorm.DB) error {
			if _, err := s.repo.Cancel(ctx, tx, booking.ID, "date_taken", s.clock.Now()); err != nil {
				return err
			}
			return s.recordConflict(ctx, tx, booking, note.EventID)
		})
		if err != nil {
			return err
		}
		s.metrics.BookingConflicts.Inc()
		s.log.Warn("paid booking lost the date race",
			zap.String("booking_id", booking.ID.String()),
			zap.String("tenant_id", booking.TenantID.String()),
			zap.String("event_date", booking.EventDate.String()),
			zap.String("provider_event_id", note.EventID),
		)
		return domain.ErrWebhookConflict
	}
	if !confirmed {
		// The row left pending_payment between our read and the
		// update; whoever moved it owns the outcome.
		return domain.ErrEventAlreadyProcessed
	}

	s.publishBookingPaid(ctx, booking)
	return nil
}

func (s *bookingService) recordConflict(ctx context.Context, tx *gorm.DB, booking *domain.Booking, eventID string) error {
	return s.repo.InsertConflict(ctx, tx, &domain.Conflict{
		ID:         s.genID.Generate(),
		TenantID:   booking.TenantID,
		BookingID:  booking.ID,
		EventDate:  booking.EventDate,
		EventID:    eventID,
		RecordedAt: s.clock.Now(),
	})
}

// publishBookingPaid resolves display titles for the side-effect
// payload and fans out on the in-process bus. Failures here never fail
// the webhook: the booking is already confirmed.
func (s *bookingService) publishBookingPaid(ctx context.Context, booking *domain.Booking) {
	payload := events.BookingPaidPayload{
		BookingID:    booking.ID,
		TenantID:     booking.TenantID,
		CustomerName: booking.CustomerName,
		Email:        booking.Email,
		EventDate:    booking.EventDate,
		Total:        booking.Total,
		Currency:     booking.Currency,
	}

	if snapshot, err := s.catalog.GetSnapshot(ctx); err == nil {
		if pkg := snapshot.PackageByID(booking.PackageID); pkg != nil {
			payload.PackageTitle = pkg.Title
		}
		payload.AddOnTitles = s.addOnTitles(snapshot, booking)
	} else {
		s.log.Warn("catalog snapshot unavailable for booking_paid payload",
			zap.String("booking_id", booking.ID.String()),
			zap.Error(err),
		)
	}

	s.bus.PublishBookingPaid(ctx, payload)
}

func (s *bookingService) addOnTitles(snapshot *catalogdomain.Snapshot, booking *domain.Booking) []string {
	if len(booking.AddOnIDs) == 0 {
		return nil
	}
	var raw []string
	if err := json.Unmarshal(booking.AddOnIDs, &raw); err != nil {
		return nil
	}
	titles := make([]string, 0, len(raw))
	for _, value := range raw {
		for i := range snapshot.AddOns {
			if snapshot.AddOns[i].ID.String() == value {
				titles = append(titles, snapshot.AddOns[i].Title)
				break
			}
		}
	}
	return titles
}
