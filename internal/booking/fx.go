package booking

import (
	"go.uber.org/fx"

	"github.com/smallbiznis/reservo/internal/booking/repository"
	"github.com/smallbiznis/reservo/internal/booking/service"
)

var Module = fx.Module("booking.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
