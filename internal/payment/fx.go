package payment

import (
	"go.uber.org/fx"

	"github.com/smallbiznis/reservo/internal/config"
	"github.com/smallbiznis/reservo/internal/payment/adapters"
	"github.com/smallbiznis/reservo/internal/payment/adapters/stripe"
	"github.com/smallbiznis/reservo/internal/payment/repository"
	"github.com/smallbiznis/reservo/internal/payment/webhook"
)

var Module = fx.Module("payment.service",
	fx.Provide(repository.Provide),
	fx.Provide(func(cfg config.Config) *adapters.Registry {
		return adapters.NewRegistry(
			stripe.New(cfg.Payment.WebhookSecret),
		)
	}),
	fx.Provide(webhook.NewService),
)
