package blackout

import (
	"github.com/smallbiznis/reservo/internal/blackout/repository"
	"github.com/smallbiznis/reservo/internal/blackout/service"
	"go.uber.org/fx"
)

var Module = fx.Module("blackout.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
