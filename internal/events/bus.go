package events

import (
	"context"
	"fmt"
	"sync"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/reservo/pkg/dateonly"
	"go.uber.org/zap"
)

// BookingPaidPayload carries everything a post-confirmation side effect
// needs without reloading the booking.
type BookingPaidPayload struct {
	BookingID    snowflake.ID
	TenantID     snowflake.ID
	CustomerName string
	Email        string
	EventDate    dateonly.Date
	PackageTitle string
	AddOnTitles  []string
	Total        int64
	Currency     string
}

// BookingPaidHandler reacts to a confirmed booking. Handler errors are
// logged and never surfaced to the publisher.
type BookingPaidHandler func(ctx context.Context, payload BookingPaidPayload) error

// Bus is a synchronous in-process publish/subscribe registry. Handlers
// run in registration order; a failing or panicking handler never
// prevents the others from running.
type Bus struct {
	log *zap.Logger

	mu          sync.RWMutex
	bookingPaid []BookingPaidHandler
}

func NewBus(log *zap.Logger) *Bus {
	return &Bus{log: log.Named("events.bus")}
}

func (b *Bus) SubscribeBookingPaid(handler BookingPaidHandler) {
	if handler == nil {
		return
	}
	b.mu.Lock()
	b.bookingPaid = append(b.bookingPaid, handler)
	b.mu.Unlock()
}

func (b *Bus) PublishBookingPaid(ctx context.Context, payload BookingPaidPayload) {
	b.mu.RLock()
	handlers := make([]BookingPaidHandler, len(b.bookingPaid))
	copy(handlers, b.bookingPaid)
	b.mu.RUnlock()

	for _, handler := range handlers {
		b.invoke(ctx, handler, payload)
	}
}

func (b *Bus) invoke(ctx context.Context, handler BookingPaidHandler, payload BookingPaidPayload) {
	defer func() {
		if r := recover(); r != nil {
			b.log.Error("booking_paid handler panicked",
				zap.String("booking_id", payload.BookingID.String()),
				zap.String("panic", fmt.Sprint(r)),
			)
		}
	}()

	if err := handler(ctx, payload); err != nil {
		b.log.Warn("booking_paid handler failed",
			zap.String("booking_id", payload.BookingID.String()),
			zap.String("tenant_id", payload.TenantID.String()),
			zap.Error(err),
		)
	}
}
