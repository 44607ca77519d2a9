package service_test

import (
	"context"
	"errors"
	"testing"
	"time"

	bookingdomain "github.com/smallbiznis/reservo/internal/booking/domain"
	"github.com/smallbiznis/reservo/internal/events"
)

func (h *harness) subscribePaidCounter() *[]events.BookingPaidPayload {
	published := &[]events.BookingPaidPayload{}
	h.bus.SubscribeBookingPaid(func(ctx context.Context, payload events.BookingPaidPayload) error {
		*published = append(*published, payload)
		return nil
	})
	return published
}

func TestPaymentSucceededConfirmsAndPublishesOnce(t *testing.T) {
	h := newHarness(t)
	published := h.subscribePaidCounter()

	res, err := h.bookings.CreateCheckout(h.ctx(), h.checkoutRequest("2026-03-10"))
	if err != nil {
		t.Fatalf("create checkout: %v", err)
	}
	booking, err := h.bookings.GetByID(h.ctx(), res.BookingID)
	if err != nil {
		t.Fatalf("get booking: %v", err)
	}

	note := bookingdomain.PaymentNotification{
		EventID:    "evt_1",
		SessionRef: booking.SessionRef,
		Succeeded:  true,
	}
	if err := h.bookings.HandlePaymentNotification(context.Background(), note); err != nil {
		t.Fatalf("handle notification: %v", err)
	}

	got, err := h.bookings.GetByID(h.ctx(), res.BookingID)
	if err != nil {
		t.Fatalf("get booking: %v", err)
	}
	if got.Status != bookingdomain.StatusConfirmed {
		t.Fatalf("expected confirmed, got %s", got.Status)
	}
	if got.ConfirmedDate == nil || got.ConfirmedDate.String() != "2026-03-10" {
		t.Fatalf("expected confirmed_date 2026-03-10, got %v", got.ConfirmedDate)
	}
	if len(*published) != 1 {
		t.Fatalf("expected 1 booking_paid event, got %d", len(*published))
	}
	payload := (*published)[0]
	if payload.Total != 60000 || payload.PackageTitle != "Full Day" {
		t.Fatalf("unexpected payload: %+v", payload)
	}
	if len(payload.AddOnTitles) != 1 || payload.AddOnTitles[0] != "Photo Album" {
		t.Fatalf("expected add-on titles resolved, got %v", payload.AddOnTitles)
	}

	// Redelivery of the same notification is a no-op.
	err = h.bookings.HandlePaymentNotification(context.Background(), note)
	if !errors.Is(err, bookingdomain.ErrEventAlreadyProcessed) {
		t.Fatalf("expected ErrEventAlreadyProcessed, got %v", err)
	}
	if len(*published) != 1 {
		t.Fatalf("redelivery must not publish again, got %d events", len(*published))
	}
}

func TestPaymentFailedCancelsPending(t *testing.T) {
	h := newHarness(t)
	published := h.subscribePaidCounter()

	res, err := h.bookings.CreateCheckout(h.ctx(), h.checkoutRequest("2026-03-10"))
	if err != nil {
		t.Fatalf("create checkout: %v", err)
	}
	booking, err := h.bookings.GetByID(h.ctx(), res.BookingID)
	if err != nil {
		t.Fatalf("get booking: %v", err)
	}

	err = h.bookings.HandlePaymentNotification(context.Background(), bookingdomain.PaymentNotification{
		EventID:    "evt_1",
		SessionRef: booking.SessionRef,
		Succeeded:  false,
	})
	if err != nil {
		t.Fatalf("handle notification: %v", err)
	}

	got, err := h.bookings.GetByID(h.ctx(), res.BookingID)
	if err != nil {
		t.Fatalf("get booking: %v", err)
	}
	if got.Status != bookingdomain.StatusCancelled {
		t.Fatalf("expected cancelled, got %s", got.Status)
	}
	if len(*published) != 0 {
		t.Fatalf("failed payment must not publish booking_paid")
	}
}

func TestPaymentRaceSecondPaidBookingLoses(t *testing.T) {
	h := newHarness(t)
	published := h.subscribePaidCounter()

	first, err := h.bookings.CreateCheckout(h.ctx(), h.checkoutRequest("2026-03-10"))
	if err != nil {
		t.Fatalf("first checkout: %v", err)
	}
	second, err := h.bookings.CreateCheckout(h.ctx(), h.checkoutRequest("2026-03-10"))
	if err != nil {
		t.Fatalf("second checkout: %v", err)
	}

	firstBooking, err := h.bookings.GetByID(h.ctx(), first.BookingID)
	if err != nil {
		t.Fatalf("get first: %v", err)
	}
	secondBooking, err := h.bookings.GetByID(h.ctx(), second.BookingID)
	if err != nil {
		t.Fatalf("get second: %v", err)
	}

	err = h.bookings.HandlePaymentNotification(context.Background(), bookingdomain.PaymentNotification{
		EventID:    "evt_first",
		SessionRef: firstBooking.SessionRef,
		Succeeded:  true,
	})
	if err != nil {
		t.Fatalf("first notification: %v", err)
	}

	err = h.bookings.HandlePaymentNotification(context.Background(), bookingdomain.PaymentNotification{
		EventID:    "evt_second",
		SessionRef: secondBooking.SessionRef,
		Succeeded:  true,
	})
	if !errors.Is(err, bookingdomain.ErrWebhookConflict) {
		t.Fatalf("expected ErrWebhookConflict, got %v", err)
	}

	winner, err := h.bookings.GetByID(h.ctx(), first.BookingID)
	if err != nil {
		t.Fatalf("get winner: %v", err)
	}
	if winner.Status != bookingdomain.StatusConfirmed {
		t.Fatalf("expected winner confirmed, got %s", winner.Status)
	}

	loser, err := h.bookings.GetByID(h.ctx(), second.BookingID)
	if err != nil {
		t.Fatalf("get loser: %v", err)
	}
	if loser.Status != bookingdomain.StatusCancelled {
		t.Fatalf("expected loser cancelled, got %s", loser.Status)
	}
	if loser.ConfirmedDate != nil {
		t.Fatalf("loser must not hold the date")
	}

	var conflicts int64
	if err := h.db.Raw(
		`SELECT COUNT(*) FROM booking_conflicts WHERE tenant_id = ? AND booking_id = ?`,
		h.tenantID, loser.ID,
	).Scan(&conflicts).Error; err != nil {
		t.Fatalf("count conflicts: %v", err)
	}
	if conflicts != 1 {
		t.Fatalf("expected 1 conflict record, got %d", conflicts)
	}

	if len(*published) != 1 {
		t.Fatalf("only the winner publishes booking_paid, got %d", len(*published))
	}
}

func TestPaymentNotificationUnknownSession(t *testing.T) {
	h := newHarness(t)

	err := h.bookings.HandlePaymentNotification(context.Background(), bookingdomain.PaymentNotification{
		EventID:    "evt_1",
		SessionRef: "sess_unknown",
		Succeeded:  true,
	})
	if !errors.Is(err, bookingdomain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestPaymentSucceededAfterCancellationRecordsConflict(t *testing.T) {
	h := newHarness(t)
	published := h.subscribePaidCounter()

	res, err := h.bookings.CreateCheckout(h.ctx(), h.checkoutRequest("2026-03-10"))
	if err != nil {
		t.Fatalf("create checkout: %v", err)
	}
	booking, err := h.bookings.GetByID(h.ctx(), res.BookingID)
	if err != nil {
		t.Fatalf("get booking: %v", err)
	}

	if _, err := h.bookings.ExpirePending(h.ctx(), h.clock.Now().Add(time.Hour)); err != nil {
		t.Fatalf("expire pending: %v", err)
	}

	err = h.bookings.HandlePaymentNotification(context.Background(), bookingdomain.PaymentNotification{
		EventID:    "evt_late",
		SessionRef: booking.SessionRef,
		Succeeded:  true,
	})
	if !errors.Is(err, bookingdomain.ErrWebhookConflict) {
		t.Fatalf("expected ErrWebhookConflict for paid-after-cancel, got %v", err)
	}

	var conflicts int64
	if err := h.db.Raw(
		`SELECT COUNT(*) FROM booking_conflicts WHERE booking_id = ?`, booking.ID,
	).Scan(&conflicts).Error; err != nil {
		t.Fatalf("count conflicts: %v", err)
	}
	if conflicts != 1 {
		t.Fatalf("expected conflict record, got %d", conflicts)
	}
	if len(*published) != 0 {
		t.Fatalf("cancelled booking must not publish booking_paid")
	}
}
