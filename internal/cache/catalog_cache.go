package cache

import (
	"time"

	"github.com/bwmarrin/snowflake"
	catalogdomain "github.com/smallbiznis/reservo/internal/catalog/domain"
)

const defaultCatalogTTL = 15 * time.Minute

// CatalogCache stores per-tenant catalog snapshots for storefront reads.
// Keys are the tenant ID itself, so an entry can never be served across
// tenant boundaries.
type CatalogCache interface {
	Get(tenantID snowflake.ID) (*catalogdomain.Snapshot, bool)
	Set(tenantID snowflake.ID, snapshot *catalogdomain.Snapshot, ttl time.Duration)
	Invalidate(tenantID snowflake.ID)
}

type catalogCache struct {
	snapshots  Cache[snowflake.ID, *catalogdomain.Snapshot]
	defaultTTL time.Duration
}

// NewCatalogCache returns an in-memory catalog cache.
func NewCatalogCache() CatalogCache {
	return &catalogCache{
		snapshots:  NewTTLCache[snowflake.ID, *catalogdomain.Snapshot](),
		defaultTTL: defaultCatalogTTL,
	}
}

func (c *catalogCache) Get(tenantID snowflake.ID) (*catalogdomain.Snapshot, bool) {
	if tenantID == 0 {
		return nil, false
	}
	return c.snapshots.Get(tenantID)
}

func (c *catalogCache) Set(tenantID snowflake.ID, snapshot *catalogdomain.Snapshot, ttl time.Duration) {
	if tenantID == 0 || snapshot == nil {
		return
	}
	if ttl <= 0 {
		ttl = c.defaultTTL
	}
	c.snapshots.Set(tenantID, snapshot, ttl)
}

func (c *catalogCache) Invalidate(tenantID snowflake.ID) {
	if tenantID == 0 {
		return
	}
	c.snapshots.Delete(tenantID)
}
