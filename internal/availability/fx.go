package availability

import (
	"go.uber.org/fx"

	"github.com/smallbiznis/reservo/internal/availability/service"
)

var Module = fx.Module("availability",
	fx.Provide(
		service.New,
	),
)
