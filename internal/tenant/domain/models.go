package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
)

type Tenant struct {
	ID        snowflake.ID `gorm:"primaryKey" json:"id"`
	Slug      string       `gorm:"not null;uniqueIndex" json:"slug"`
	Name      string       `gorm:"not null" json:"name"`
	Timezone  string       `gorm:"not null;default:UTC" json:"timezone"`
	Currency  string       `gorm:"not null;default:USD" json:"currency"`
	CreatedAt time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}

func (Tenant) TableName() string { return "tenants" }

// Location resolves the tenant timezone, falling back to UTC when the
// stored name is unknown.
func (t Tenant) Location() *time.Location {
	loc, err := time.LoadLocation(t.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}
