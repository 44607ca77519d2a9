package payment

import (
	"go.uber.org/fx"
	"go.uber.org/zap"

	"github.com/smallbiznis/reservo/internal/config"
)

var Module = fx.Module("providers.payment",
	fx.Provide(NewFromConfig),
)

func NewFromConfig(cfg config.Config, log *zap.Logger) CheckoutProvider {
	switch cfg.Payment.Provider {
	case "stripe":
		if cfg.Payment.StripeAPIKey == "" {
			log.Warn("stripe selected but STRIPE_API_KEY is empty, using noop checkout provider")
			return NoOpProvider{}
		}
		return NewStripeProvider(cfg.Payment.StripeAPIKey, "", log)
	default:
		return NoOpProvider{}
	}
}
