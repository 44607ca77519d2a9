package catalog

import (
	"github.com/smallbiznis/reservo/internal/cache"
	"github.com/smallbiznis/reservo/internal/catalog/repository"
	"github.com/smallbiznis/reservo/internal/catalog/service"
	"go.uber.org/fx"
)

var Module = fx.Module("catalog.service",
	fx.Provide(cache.NewCatalogCache),
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
