package scheduler

import (
	"context"
	"errors"
	"testing"
	"time"

	"go.uber.org/zap"

	bookingdomain "github.com/smallbiznis/reservo/internal/booking/domain"
	"github.com/smallbiznis/reservo/internal/clock"
	"github.com/smallbiznis/reservo/internal/config"
)

type fakeBookings struct {
	bookingdomain.Service

	cutoffs []time.Time
	count   int64
	err     error
}

func (b *fakeBookings) ExpirePending(ctx context.Context, cutoff time.Time) (int64, error) {
	b.cutoffs = append(b.cutoffs, cutoff)
	return b.count, b.err
}

func newScheduler(t *testing.T, bookings *fakeBookings, fakeClock *clock.FakeClock) *Scheduler {
	t.Helper()
	s, err := New(Params{
		Log:      zap.NewNop(),
		Clock:    fakeClock,
		Holder:   config.NewStaticBookingConfigHolder(config.DefaultBookingConfig()),
		Bookings: bookings,
	})
	if err != nil {
		t.Fatalf("new scheduler: %v", err)
	}
	return s
}

func TestRunOnceUsesPendingTTLCutoff(t *testing.T) {
	fakeClock := clock.NewFakeClock(time.Date(2026, 3, 3, 12, 0, 0, 0, time.UTC))
	bookings := &fakeBookings{count: 3}
	s := newScheduler(t, bookings, fakeClock)

	if err := s.RunOnce(context.Background()); err != nil {
		t.Fatalf("run once: %v", err)
	}

	if len(bookings.cutoffs) != 1 {
		t.Fatalf("expected 1 sweep, got %d", len(bookings.cutoffs))
	}
	want := fakeClock.Now().Add(-48 * time.Hour)
	if !bookings.cutoffs[0].Equal(want) {
		t.Fatalf("cutoff = %v, want %v", bookings.cutoffs[0], want)
	}
}

func TestRunOncePropagatesSweepError(t *testing.T) {
	fakeClock := clock.NewFakeClock(time.Date(2026, 3, 3, 12, 0, 0, 0, time.UTC))
	bookings := &fakeBookings{err: errors.New("db down")}
	s := newScheduler(t, bookings, fakeClock)

	if err := s.RunOnce(context.Background()); err == nil {
		t.Fatalf("expected sweep error to propagate")
	}
}

func TestNewRejectsMissingDependencies(t *testing.T) {
	_, err := New(Params{Log: zap.NewNop()})
	if !errors.Is(err, ErrInvalidConfig) {
		t.Fatalf("expected ErrInvalidConfig, got %v", err)
	}
}

func TestConfigWithDefaults(t *testing.T) {
	cfg := Config{}.withDefaults()
	if cfg.RunInterval != 15*time.Minute || cfg.JobTimeout != 2*time.Minute || cfg.LockTTL != 5*time.Minute {
		t.Fatalf("unexpected defaults: %+v", cfg)
	}

	custom := Config{RunInterval: time.Minute}.withDefaults()
	if custom.RunInterval != time.Minute {
		t.Fatalf("explicit interval overridden: %+v", custom)
	}
	if custom.JobTimeout != 2*time.Minute {
		t.Fatalf("missing timeout not defaulted: %+v", custom)
	}
}
