package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

type Repository interface {
	ListPackages(ctx context.Context, db *gorm.DB, tenantID snowflake.ID) ([]Package, error)
	FindPackageByID(ctx context.Context, db *gorm.DB, tenantID, id snowflake.ID) (*Package, error)
	FindPackageBySlug(ctx context.Context, db *gorm.DB, tenantID snowflake.ID, slug string) (*Package, error)
	InsertPackage(ctx context.Context, db *gorm.DB, pkg *Package) error
	UpdatePackage(ctx context.Context, db *gorm.DB, pkg *Package) error
	DeletePackage(ctx context.Context, db *gorm.DB, tenantID, id snowflake.ID) error

	ListAddOns(ctx context.Context, db *gorm.DB, tenantID snowflake.ID) ([]AddOn, error)
	FindAddOnByID(ctx context.Context, db *gorm.DB, tenantID, id snowflake.ID) (*AddOn, error)
	InsertAddOn(ctx context.Context, db *gorm.DB, addOn *AddOn) error
	UpdateAddOn(ctx context.Context, db *gorm.DB, addOn *AddOn) error
	DeleteAddOn(ctx context.Context, db *gorm.DB, tenantID, id snowflake.ID) error

	ListSegments(ctx context.Context, db *gorm.DB, tenantID snowflake.ID) ([]Segment, error)
	FindSegmentByID(ctx context.Context, db *gorm.DB, tenantID, id snowflake.ID) (*Segment, error)
	InsertSegment(ctx context.Context, db *gorm.DB, segment *Segment) error
	UpdateSegment(ctx context.Context, db *gorm.DB, segment *Segment) error
	DeleteSegment(ctx context.Context, db *gorm.DB, tenantID, id snowflake.ID) error
	CountPackagesInSegment(ctx context.Context, db *gorm.DB, tenantID, segmentID snowflake.ID) (int64, error)
}
