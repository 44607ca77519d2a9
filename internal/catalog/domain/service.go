package domain

import (
	"context"
	"errors"

	"github.com/bwmarrin/snowflake"
)

type CreatePackageRequest struct {
	Title       string
	Description string
	Price       int64
	SegmentID   string
	Active      *bool
}

type UpdatePackageRequest struct {
	ID          string
	Title       *string
	Description *string
	Price       *int64
	SegmentID   *string
	Active      *bool
}

type CreateSegmentRequest struct {
	Name     string
	Position *int
}

type UpdateSegmentRequest struct {
	ID       string
	Name     *string
	Position *int
}

type CreateAddOnRequest struct {
	PackageID string // empty = tenant-global
	Title     string
	Price     int64
	Active    *bool
}

type UpdateAddOnRequest struct {
	ID     string
	Title  *string
	Price  *int64
	Active *bool
}

// Service is the catalog read model plus the admin write path. Reads
// go through the per-tenant snapshot cache; every write invalidates the
// tenant's snapshot before returning.
type Service interface {
	GetSnapshot(ctx context.Context) (*Snapshot, error)
	GetPackages(ctx context.Context) ([]Package, error)
	GetPackageBySlug(ctx context.Context, slug string) (Package, []AddOn, error)

	CreatePackage(ctx context.Context, req CreatePackageRequest) (Package, error)
	UpdatePackage(ctx context.Context, req UpdatePackageRequest) (Package, error)
	DeletePackage(ctx context.Context, id string) error

	CreateAddOn(ctx context.Context, req CreateAddOnRequest) (AddOn, error)
	UpdateAddOn(ctx context.Context, req UpdateAddOnRequest) (AddOn, error)
	DeleteAddOn(ctx context.Context, id string) error

	ListSegments(ctx context.Context) ([]Segment, error)
	CreateSegment(ctx context.Context, req CreateSegmentRequest) (Segment, error)
	UpdateSegment(ctx context.Context, req UpdateSegmentRequest) (Segment, error)
	DeleteSegment(ctx context.Context, id string) error

	Invalidate(tenantID snowflake.ID)
}

var (
	ErrInvalidTenant  = errors.New("invalid_tenant")
	ErrInvalidTitle   = errors.New("invalid_title")
	ErrInvalidName    = errors.New("invalid_name")
	ErrInvalidPrice   = errors.New("invalid_price")
	ErrInvalidID      = errors.New("invalid_id")
	ErrNotFound       = errors.New("not_found")
	ErrSlugTaken      = errors.New("slug_taken")
	ErrPackageInUse   = errors.New("package_in_use")
	ErrSegmentInUse   = errors.New("segment_in_use")
	ErrInvalidAddOn   = errors.New("invalid_add_on")
	ErrInvalidSegment = errors.New("invalid_segment")
)
