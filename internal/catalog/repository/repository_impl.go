package repository

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/reservo/internal/catalog/domain"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) ListPackages(ctx context.Context, db *gorm.DB, tenantID snowflake.ID) ([]domain.Package, error) {
	var packages []domain.Package
	err := db.WithContext(ctx).
		Model(&domain.Package{}).
		Where("tenant_id = ?", tenantID).
		Order("created_at asc, id asc").
		Find(&packages).Error
	if err != nil {
		return nil, err
	}
	return packages, nil
}

func (r *repo) FindPackageByID(ctx context.Context, db *gorm.DB, tenantID, id snowflake.ID) (*domain.Package, error) {
	var pkg domain.Package
	err := db.WithContext(ctx).Raw(
		`SELECT id, tenant_id, segment_id, slug, title, description, price, active, created_at, updated_at
		 FROM packages WHERE tenant_id = ? AND id = ?`,
		tenantID,
		id,
	).Scan(&pkg).Error
	if err != nil {
		return nil, err
	}
	if pkg.ID == 0 {
		return nil, nil
	}
	return &pkg, nil
}

func (r *repo) FindPackageBySlug(ctx context.Context, db *gorm.DB, tenantID snowflake.ID, slug string) (*domain.Package, error) {
	var pkg domain.Package
	err := db.WithContext(ctx).Raw(
		`SELECT id, tenant_id, segment_id, slug, title, description, price, active, created_at, updated_at
		 FROM packages WHERE tenant_id = ? AND slug = ?`,
		tenantID,
		slug,
	).Scan(&pkg).Error
	if err != nil {
		return nil, err
	}
	if pkg.ID == 0 {
		return nil, nil
	}
	return &pkg, nil
}

func (r *repo) InsertPackage(ctx context.Context, db *gorm.DB, pkg *domain.Package) error {
	return db.WithContext(ctx).Exec(
		`INSERT INTO packages (id, tenant_id, segment_id, slug, title, description, price, active, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		pkg.ID,
		pkg.TenantID,
		pkg.SegmentID,
		pkg.Slug,
		pkg.Title,
		pkg.Description,
		pkg.Price,
		pkg.Active,
		pkg.CreatedAt,
		pkg.UpdatedAt,
	).Error
}

func (r *repo) UpdatePackage(ctx context.Context, db *gorm.DB, pkg *domain.Package) error {
	return db.WithContext(ctx).Exec(
		`UPDATE packages
		 SET segment_id = ?, slug = ?, title = ?, description = ?, price = ?, active = ?, updated_at = ?
		 WHERE tenant_id = ? AND id = ?`,
		pkg.SegmentID,
		pkg.Slug,
		pkg.Title,
		pkg.Description,
		pkg.Price,
		pkg.Active,
		pkg.UpdatedAt,
		pkg.TenantID,
		pkg.ID,
	).Error
}

func (r *repo) DeletePackage(ctx context.Context, db *gorm.DB, tenantID, id snowflake.ID) error {
	return db.WithContext(ctx).Exec(
		`DELETE FROM packages WHERE tenant_id = ? AND id = ?`,
		tenantID,
		id,
	).Error
}

func (r *repo) ListAddOns(ctx context.Context, db *gorm.DB, tenantID snowflake.ID) ([]domain.AddOn, error) {
	var addOns []domain.AddOn
	err := db.WithContext(ctx).
		Model(&domain.AddOn{}).
		Where("tenant_id = ?", tenantID).
		Order("created_at asc, id asc").
		Find(&addOns).Error
	if err != nil {
		return nil, err
	}
	return addOns, nil
}

func (r *repo) FindAddOnByID(ctx context.Context, db *gorm.DB, tenantID, id snowflake.ID) (*domain.AddOn, error) {
	var addOn domain.AddOn
	err := db.WithContext(ctx).Raw(
		`SELECT id, tenant_id, package_id, title, price, active, created_at, updated_at
		 FROM add_ons WHERE tenant_id = ? AND id = ?`,
		tenantID,
		id,
	).Scan(&addOn).Error
	if err != nil {
		return nil, err
	}
	if addOn.ID == 0 {
		return nil, nil
	}
	return &addOn, nil
}

func (r *repo) InsertAddOn(ctx context.Context, db *gorm.DB, addOn *domain.AddOn) error {
	return db.WithContext(ctx).Exec(
		`INSERT INTO add_ons (id, tenant_id, package_id, title, price, active, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		addOn.ID,
		addOn.TenantID,
		addOn.PackageID,
		addOn.Title,
		addOn.Price,
		addOn.Active,
		addOn.CreatedAt,
		addOn.UpdatedAt,
	).Error
}

func (r *repo) UpdateAddOn(ctx context.Context, db *gorm.DB, addOn *domain.AddOn) error {
	return db.WithContext(ctx).Exec(
		`UPDATE add_ons
		 SET title = ?, price = ?, active = ?, updated_at = ?
		 WHERE tenant_id = ? AND id = ?`,
		addOn.Title,
		addOn.Price,
		addOn.Active,
		addOn.UpdatedAt,
		addOn.TenantID,
		addOn.ID,
	).Error
}

func (r *repo) DeleteAddOn(ctx context.Context, db *gorm.DB, tenantID, id snowflake.ID) error {
	return db.WithContext(ctx).Exec(
		`DELETE FROM add_ons WHERE tenant_id = ? AND id = ?`,
		tenantID,
		id,
	).Error
}

func (r *repo) ListSegments(ctx context.Context, db *gorm.DB, tenantID snowflake.ID) ([]domain.Segment, error) {
	var segments []domain.Segment
	err := db.WithContext(ctx).
		Model(&domain.Segment{}).
		Where("tenant_id = ?", tenantID).
		Order("position asc, id asc").
		Find(&segments).Error
	if err != nil {
		return nil, err
	}
	return segments, nil
}

func (r *repo) FindSegmentByID(ctx context.Context, db *gorm.DB, tenantID, id snowflake.ID) (*domain.Segment, error) {
	var segment domain.Segment
	err := db.WithContext(ctx).Raw(
		`SELECT id, tenant_id, name, position, created_at, updated_at
		 FROM segments WHERE tenant_id = ? AND id = ?`,
		tenantID,
		id,
	).Scan(&segment).Error
	if err != nil {
		return nil, err
	}
	if segment.ID == 0 {
		return nil, nil
	}
	return &segment, nil
}

func (r *repo) InsertSegment(ctx context.Context, db *gorm.DB, segment *domain.Segment) error {
	return db.WithContext(ctx).Exec(
		`INSERT INTO segments (id, tenant_id, name, position, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		segment.ID,
		segment.TenantID,
		segment.Name,
		segment.Position,
		segment.CreatedAt,
		segment.UpdatedAt,
	).Error
}

func (r *repo) UpdateSegment(ctx context.Context, db *gorm.DB, segment *domain.Segment) error {
	return db.WithContext(ctx).Exec(
		`UPDATE segments
		 SET name = ?, position = ?, updated_at = ?
		 WHERE tenant_id = ? AND id = ?`,
		segment.Name,
		segment.Position,
		segment.UpdatedAt,
		segment.TenantID,
		segment.ID,
	).Error
}

func (r *repo) DeleteSegment(ctx context.Context, db *gorm.DB, tenantID, id snowflake.ID) error {
	return db.WithContext(ctx).Exec(
		`DELETE FROM segments WHERE tenant_id = ? AND id = ?`,
		tenantID,
		id,
	).Error
}

func (r *repo) CountPackagesInSegment(ctx context.Context, db *gorm.DB, tenantID, segmentID snowflake.ID) (int64, error) {
	var count int64
	err := db.WithContext(ctx).Raw(
		`SELECT COUNT(*) FROM packages WHERE tenant_id = ? AND segment_id = ?`,
		tenantID,
		segmentID,
	).Scan(&count).Error
	if err != nil {
		return 0, err
	}
	return count, nil
}
