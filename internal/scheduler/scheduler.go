package scheduler

import (
	"context"
	"errors"
	"time"

	"go.uber.org/fx"
	"go.uber.org/zap"

	bookingdomain "github.com/smallbiznis/reservo/internal/booking/domain"
	"github.com/smallbiznis/reservo/internal/clock"
	"github.com/smallbiznis/reservo/internal/config"
	"github.com/smallbiznis/reservo/internal/ratelimit"
)

const expireLockKey = "scheduler:expire_pending"

var ErrInvalidConfig = errors.New("invalid_scheduler_config")

type Params struct {
	fx.In

	Log      *zap.Logger
	Clock    clock.Clock
	Holder   *config.BookingConfigHolder
	Bookings bookingdomain.Service
	Locker   *ratelimit.Locker `optional:"true"`
	Config   Config            `optional:"true"`
}

// Scheduler runs periodic housekeeping: cancelling pending_payment
// bookings whose payment window has lapsed so abandoned checkouts do
// not accumulate.
type Scheduler struct {
	log      *zap.Logger
	cfg      Config
	clock    clock.Clock
	holder   *config.BookingConfigHolder
	bookings bookingdomain.Service
	locker   *ratelimit.Locker
}

func New(p Params) (*Scheduler, error) {
	if p.Log == nil || p.Clock == nil || p.Holder == nil || p.Bookings == nil {
		return nil, ErrInvalidConfig
	}
	return &Scheduler{
		log:      p.Log.Named("scheduler"),
		cfg:      p.Config.withDefaults(),
		clock:    p.Clock,
		holder:   p.Holder,
		bookings: p.Bookings,
		locker:   p.Locker,
	}, nil
}

func (s *Scheduler) RunOnce(parent context.Context) error {
	ctx, cancel := context.WithTimeout(parent, s.cfg.JobTimeout)
	defer cancel()

	// With multiple replicas only the lock holder sweeps. Without
	// Redis the sweep runs everywhere; CancelPendingBefore is
	// idempotent so the worst case is wasted work.
	if s.locker != nil {
		token, ok, err := s.locker.TryLock(ctx, expireLockKey, s.cfg.LockTTL)
		if err != nil {
			s.log.Warn("housekeeping lock unavailable, skipping run", zap.Error(err))
			return nil
		}
		if !ok {
			return nil
		}
		defer func() {
			if err := s.locker.Release(ctx, expireLockKey, token); err != nil {
				s.log.Warn("housekeeping lock release failed", zap.Error(err))
			}
		}()
	}

	pendingTTL := time.Duration(s.holder.Get().PendingTTLHours) * time.Hour
	cutoff := s.clock.Now().Add(-pendingTTL)

	count, err := s.bookings.ExpirePending(ctx, cutoff)
	if err != nil {
		return err
	}
	if count > 0 {
		s.log.Info("housekeeping cancelled stale pending bookings",
			zap.Int64("count", count),
			zap.Time("cutoff", cutoff),
		)
	}
	return nil
}

func (s *Scheduler) RunForever(ctx context.Context) {
	ticker := time.NewTicker(s.cfg.RunInterval)
	defer ticker.Stop()

	for {
		if err := s.RunOnce(ctx); err != nil {
			s.log.Warn("scheduler run failed", zap.Error(err))
		}

		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}
