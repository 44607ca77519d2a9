package migration

import (
	"go.uber.org/fx"
	"gorm.io/gorm"

	"github.com/smallbiznis/reservo/internal/config"
	"github.com/smallbiznis/reservo/internal/seed"
)

var Module = fx.Module("migrations",
	fx.Invoke(func(conn *gorm.DB, cfg config.Config) error {
		if cfg.DBType == "postgres" {
			sqlDB, err := conn.DB()
			if err != nil {
				return err
			}
			if err := RunMigrations(sqlDB); err != nil {
				return err
			}
		} else {
			if err := AutoMigrate(conn); err != nil {
				return err
			}
		}

		if cfg.DefaultTenantID != 0 {
			return seed.EnsureDefaultTenantWithID(conn, cfg.DefaultTenantID)
		}
		return seed.EnsureDefaultTenant(conn)
	}),
)
