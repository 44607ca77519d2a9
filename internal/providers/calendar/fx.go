package calendar

import (
	"github.com/smallbiznis/reservo/internal/config"
	"go.uber.org/fx"
)

var Module = fx.Module("providers.calendar",
	fx.Provide(NewFromConfig),
)

func NewFromConfig(cfg config.Config) Provider {
	switch cfg.Calendar.Provider {
	case "http":
		return NewHTTPProvider(cfg.Calendar.BaseURL, cfg.Calendar.APIToken)
	default:
		return NoOpProvider{}
	}
}
