package seed

import (
	"context"
	"errors"
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"

	tenantdomain "github.com/smallbiznis/reservo/internal/tenant/domain"
)

const (
	defaultTenantName = "Main"
	defaultTenantSlug = "main"
)

// EnsureDefaultTenant seeds the default tenant for startup bootstrap.
func EnsureDefaultTenant(db *gorm.DB) error {
	return ensure(db, 0)
}

// EnsureDefaultTenantWithID seeds the default tenant under a fixed ID,
// used when the deployment pins DEFAULT_TENANT.
func EnsureDefaultTenantWithID(db *gorm.DB, id int64) error {
	return ensure(db, snowflake.ID(id))
}

func ensure(db *gorm.DB, id snowflake.ID) error {
	if db == nil {
		return errors.New("seed database handle is required")
	}

	node, err := snowflake.NewNode(1)
	if err != nil {
		return err
	}

	ctx := context.Background()
	return db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var existing tenantdomain.Tenant
		err := tx.WithContext(ctx).
			Where("slug = ?", defaultTenantSlug).
			First(&existing).Error
		if err == nil {
			return nil
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}

		if id == 0 {
			id = node.Generate()
		}
		now := time.Now().UTC()
		return tx.WithContext(ctx).Create(&tenantdomain.Tenant{
			ID:        id,
			Slug:      defaultTenantSlug,
			Name:      defaultTenantName,
			Timezone:  "UTC",
			Currency:  "USD",
			CreatedAt: now,
			UpdatedAt: now,
		}).Error
	})
}
