package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
)

type Package struct {
	ID          snowflake.ID  `gorm:"primaryKey" json:"id"`
	TenantID    snowflake.ID  `gorm:"not null;index" json:"tenant_id"`
	SegmentID   *snowflake.ID `gorm:"index" json:"segment_id,omitempty"`
	Slug        string        `gorm:"not null" json:"slug"`
	Title       string        `gorm:"not null" json:"title"`
	Description string        `json:"description,omitempty"`
	// Price is in minor currency units; it is read at checkout time and
	// copied onto the booking.
	Price     int64     `gorm:"not null" json:"price"`
	Active    bool      `gorm:"not null;default:true" json:"active"`
	CreatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}

func (Package) TableName() string { return "packages" }

type AddOn struct {
	ID       snowflake.ID `gorm:"primaryKey" json:"id"`
	TenantID snowflake.ID `gorm:"not null;index" json:"tenant_id"`
	// PackageID is nil for add-ons offered with every package of the
	// tenant.
	PackageID *snowflake.ID `gorm:"index" json:"package_id,omitempty"`
	Title     string        `gorm:"not null" json:"title"`
	Price     int64         `gorm:"not null" json:"price"`
	Active    bool          `gorm:"not null;default:true" json:"active"`
	CreatedAt time.Time     `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt time.Time     `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}

func (AddOn) TableName() string { return "add_ons" }

type Segment struct {
	ID        snowflake.ID `gorm:"primaryKey" json:"id"`
	TenantID  snowflake.ID `gorm:"not null;index" json:"tenant_id"`
	Name      string       `gorm:"not null" json:"name"`
	Position  int          `gorm:"not null;default:0" json:"position"`
	CreatedAt time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}

func (Segment) TableName() string { return "segments" }

// Snapshot is the cached read model served to storefronts.
type Snapshot struct {
	TenantID snowflake.ID `json:"tenant_id"`
	Packages []Package    `json:"packages"`
	AddOns   []AddOn      `json:"add_ons"`
	Segments []Segment    `json:"segments"`
	LoadedAt time.Time    `json:"loaded_at"`
}

// PackageBySlug returns the package with the given slug, or nil.
func (s *Snapshot) PackageBySlug(slug string) *Package {
	for i := range s.Packages {
		if s.Packages[i].Slug == slug {
			return &s.Packages[i]
		}
	}
	return nil
}

// PackageByID returns the package with the given id, or nil.
func (s *Snapshot) PackageByID(id snowflake.ID) *Package {
	for i := range s.Packages {
		if s.Packages[i].ID == id {
			return &s.Packages[i]
		}
	}
	return nil
}

// AddOnsForPackage returns active add-ons scoped to the package plus
// the tenant-global ones.
func (s *Snapshot) AddOnsForPackage(packageID snowflake.ID) []AddOn {
	out := make([]AddOn, 0, len(s.AddOns))
	for _, addOn := range s.AddOns {
		if !addOn.Active {
			continue
		}
		if addOn.PackageID == nil || *addOn.PackageID == packageID {
			out = append(out, addOn)
		}
	}
	return out
}
