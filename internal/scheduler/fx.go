package scheduler

import (
	"context"
	"time"

	"go.uber.org/fx"

	"github.com/smallbiznis/reservo/internal/config"
)

var Module = fx.Module("scheduler",
	fx.Provide(ProvideConfig),
	fx.Provide(New),
	fx.Invoke(NewScheduler),
)

func ProvideConfig(holder *config.BookingConfigHolder) Config {
	cfg := DefaultConfig()
	if minutes := holder.Get().SweepIntervalMinutes; minutes > 0 {
		cfg.RunInterval = time.Duration(minutes) * time.Minute
	}
	return cfg
}

func NewScheduler(lc fx.Lifecycle, sched *Scheduler) {
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			runCtx, cancel := context.WithCancel(context.Background())

			go sched.RunForever(runCtx)

			lc.Append(fx.Hook{
				OnStop: func(context.Context) error {
					cancel()
					return nil
				},
			})

			return nil
		},
	})
}
