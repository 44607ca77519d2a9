package events

import (
	"context"
	"errors"
	"testing"

	"go.uber.org/zap"
)

func TestBusRunsHandlersInOrder(t *testing.T) {
	bus := NewBus(zap.NewNop())

	var order []string
	bus.SubscribeBookingPaid(func(ctx context.Context, payload BookingPaidPayload) error {
		order = append(order, "first")
		return nil
	})
	bus.SubscribeBookingPaid(func(ctx context.Context, payload BookingPaidPayload) error {
		order = append(order, "second")
		return nil
	})

	bus.PublishBookingPaid(context.Background(), BookingPaidPayload{})

	if len(order) != 2 || order[0] != "first" || order[1] != "second" {
		t.Fatalf("expected handlers in registration order, got %v", order)
	}
}

func TestBusFailingHandlerDoesNotBlockOthers(t *testing.T) {
	bus := NewBus(zap.NewNop())

	ran := false
	bus.SubscribeBookingPaid(func(ctx context.Context, payload BookingPaidPayload) error {
		return errors.New("smtp down")
	})
	bus.SubscribeBookingPaid(func(ctx context.Context, payload BookingPaidPayload) error {
		ran = true
		return nil
	})

	bus.PublishBookingPaid(context.Background(), BookingPaidPayload{})

	if !ran {
		t.Fatalf("handler after a failing one did not run")
	}
}

func TestBusRecoversPanickingHandler(t *testing.T) {
	bus := NewBus(zap.NewNop())

	ran := false
	bus.SubscribeBookingPaid(func(ctx context.Context, payload BookingPaidPayload) error {
		panic("boom")
	})
	bus.SubscribeBookingPaid(func(ctx context.Context, payload BookingPaidPayload) error {
		ran = true
		return nil
	})

	bus.PublishBookingPaid(context.Background(), BookingPaidPayload{})

	if !ran {
		t.Fatalf("handler after a panicking one did not run")
	}
}

func TestBusIgnoresNilHandler(t *testing.T) {
	bus := NewBus(zap.NewNop())
	bus.SubscribeBookingPaid(nil)
	bus.PublishBookingPaid(context.Background(), BookingPaidPayload{})
}
