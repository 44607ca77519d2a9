package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/gosimple/slug"
	"github.com/smallbiznis/reservo/internal/cache"
	"github.com/smallbiznis/reservo/internal/catalog/domain"
	"github.com/smallbiznis/reservo/internal/config"
	"github.com/smallbiznis/reservo/internal/observability"
	"github.com/smallbiznis/reservo/internal/tenantctx"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB      *gorm.DB
	Log     *zap.Logger
	GenID   *snowflake.Node
	Repo    domain.Repository
	Cache   cache.CatalogCache
	Booking *config.BookingConfigHolder
	Metrics *observability.Metrics `optional:"true"`
}

type Service struct {
	db      *gorm.DB
	log     *zap.Logger
	genID   *snowflake.Node
	repo    domain.Repository
	cache   cache.CatalogCache
	booking *config.BookingConfigHolder
	metrics *observability.Metrics
}

func New(p Params) domain.Service {
	return &Service{
		db:      p.DB,
		log:     p.Log.Named("catalog.service"),
		genID:   p.GenID,
		repo:    p.Repo,
		cache:   p.Cache,
		booking: p.Booking,
		metrics: p.Metrics,
	}
}

func (s *Service) GetSnapshot(ctx context.Context) (*domain.Snapshot, error) {
	tenantID, ok := tenantctx.TenantIDFromContext(ctx)
	if !ok || tenantID == 0 {
		return nil, domain.ErrInvalidTenant
	}

	if snapshot, hit := s.cache.Get(tenantID); hit {
		s.recordCacheLookup("hit")
		return snapshot, nil
	}
	s.recordCacheLookup("miss")

	snapshot, err := s.loadSnapshot(ctx, tenantID)
	if err != nil {
		return nil, err
	}

	s.cache.Set(tenantID, snapshot, s.cacheTTL())
	return snapshot, nil
}

func (s *Service) GetPackages(ctx context.Context) ([]domain.Package, error) {
	snapshot, err := s.GetSnapshot(ctx)
	if err != nil {
		return nil, err
	}
	packages := make([]domain.Package, 0, len(snapshot.Packages))
	for _, pkg := range snapshot.Packages {
		if pkg.Active {
			packages = append(packages, pkg)
		}
	}
	return packages, nil
}

func (s *Service) GetPackageBySlug(ctx context.Context, slugValue string) (domain.Package, []domain.AddOn, error) {
	slugValue = strings.ToLower(strings.TrimSpace(slugValue))
	if slugValue == "" {
		return domain.Package{}, nil, domain.ErrInvalidID
	}

	snapshot, err := s.GetSnapshot(ctx)
	if err != nil {
		return domain.Package{}, nil, err
	}

	pkg := snapshot.PackageBySlug(slugValue)
	if pkg == nil || !pkg.Active {
		return domain.Package{}, nil, domain.ErrNotFound
	}

	return *pkg, snapshot.AddOnsForPackage(pkg.ID), nil
}

func (s *Service) CreatePackage(ctx context.Context, req domain.CreatePackageRequest) (domain.Package, error) {
	tenantID, ok := tenantctx.TenantIDFromContext(ctx)
	if !ok || tenantID == 0 {
		return domain.Package{}, domain.ErrInvalidTenant
	}

	title := strings.TrimSpace(req.Title)
	if title == "" {
		return domain.Package{}, domain.ErrInvalidTitle
	}
	if req.Price < 0 {
		return domain.Package{}, domain.ErrInvalidPrice
	}

	segmentID, err := s.resolveSegment(ctx, tenantID, req.SegmentID)
	if err != nil {
		return domain.Package{}, err
	}

	pkgSlug, err := s.uniqueSlug(ctx, tenantID, title)
	if err != nil {
		return domain.Package{}, err
	}

	active := true
	if req.Active != nil {
		active = *req.Active
	}

	now := time.Now().UTC()
	pkg := domain.Package{
		ID:          s.genID.Generate(),
		TenantID:    tenantID,
		SegmentID:   segmentID,
		Slug:        pkgSlug,
		Title:       title,
		Description: strings.TrimSpace(req.Description),
		Price:       req.Price,
		Active:      active,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := s.repo.InsertPackage(ctx, s.db, &pkg); err != nil {
		return domain.Package{}, err
	}

	s.cache.Invalidate(tenantID)
	return pkg, nil
}

func (s *Service) UpdatePackage(ctx context.Context, req domain.UpdatePackageRequest) (domain.Package, error) {
	tenantID, ok := tenantctx.TenantIDFromContext(ctx)
	if !ok || tenantID == 0 {
		return domain.Package{}, domain.ErrInvalidTenant
	}

	id, err := parseID(req.ID)
	if err != nil {
		return domain.Package{}, err
	}

	pkg, err := s.repo.FindPackageByID(ctx, s.db, tenantID, id)
	if err != nil {
		return domain.Package{}, err
	}
	if pkg == nil {
		return domain.Package{}, domain.ErrNotFound
	}

	if req.Title != nil {
		title := strings.TrimSpace(*req.Title)
		if title == "" {
			return domain.Package{}, domain.ErrInvalidTitle
		}
		pkg.Title = title
	}
	if req.Description != nil {
		pkg.Description = strings.TrimSpace(*req.Description)
	}
	if req.Price != nil {
		if *req.Price < 0 {
			return domain.Package{}, domain.ErrInvalidPrice
		}
		pkg.Price = *req.Price
	}
	if req.SegmentID != nil {
		segmentID, err := s.resolveSegment(ctx, tenantID, *req.SegmentID)
		if err != nil {
			return domain.Package{}, err
		}
		pkg.SegmentID = segmentID
	}
	if req.Active != nil {
		pkg.Active = *req.Active
	}
	pkg.UpdatedAt = time.Now().UTC()

	if err := s.repo.UpdatePackage(ctx, s.db, pkg); err != nil {
		return domain.Package{}, err
	}

	s.cache.Invalidate(tenantID)
	return *pkg, nil
}

func (s *Service) DeletePackage(ctx context.Context, rawID string) error {
	tenantID, ok := tenantctx.TenantIDFromContext(ctx)
	if !ok || tenantID == 0 {
		return domain.ErrInvalidTenant
	}

	id, err := parseID(rawID)
	if err != nil {
		return err
	}

	pkg, err := s.repo.FindPackageByID(ctx, s.db, tenantID, id)
	if err != nil {
		return err
	}
	if pkg == nil {
		return domain.ErrNotFound
	}

	if err := s.repo.DeletePackage(ctx, s.db, tenantID, id); err != nil {
		return err
	}

	s.cache.Invalidate(tenantID)
	return nil
}

func (s *Service) CreateAddOn(ctx context.Context, req domain.CreateAddOnRequest) (domain.AddOn, error) {
	tenantID, ok := tenantctx.TenantIDFromContext(ctx)
	if !ok || tenantID == 0 {
		return domain.AddOn{}, domain.ErrInvalidTenant
	}

	title := strings.TrimSpace(req.Title)
	if title == "" {
		return domain.AddOn{}, domain.ErrInvalidTitle
	}
	if req.Price < 0 {
		return domain.AddOn{}, domain.ErrInvalidPrice
	}

	packageID, err := s.parseOptionalID(req.PackageID)
	if err != nil {
		return domain.AddOn{}, domain.ErrInvalidAddOn
	}
	if packageID != nil {
		pkg, err := s.repo.FindPackageByID(ctx, s.db, tenantID, *packageID)
		if err != nil {
			return domain.AddOn{}, err
		}
		if pkg == nil {
			return domain.AddOn{}, domain.ErrNotFound
		}
	}

	active := true
	if req.Active != nil {
		active = *req.Active
	}

	now := time.Now().UTC()
	addOn := domain.AddOn{
		ID:        s.genID.Generate(),
		TenantID:  tenantID,
		PackageID: packageID,
		Title:     title,
		Price:     req.Price,
		Active:    active,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := s.repo.InsertAddOn(ctx, s.db, &addOn); err != nil {
		return domain.AddOn{}, err
	}

	s.cache.Invalidate(tenantID)
	return addOn, nil
}

func (s *Service) UpdateAddOn(ctx context.Context, req domain.UpdateAddOnRequest) (domain.AddOn, error) {
	tenantID, ok := tenantctx.TenantIDFromContext(ctx)
	if !ok || tenantID == 0 {
		return domain.AddOn{}, domain.ErrInvalidTenant
	}

	id, err := parseID(req.ID)
	if err != nil {
		return domain.AddOn{}, err
	}

	addOn, err := s.repo.FindAddOnByID(ctx, s.db, tenantID, id)
	if err != nil {
		return domain.AddOn{}, err
	}
	if addOn == nil {
		return domain.AddOn{}, domain.ErrNotFound
	}

	if req.Title != nil {
		title := strings.TrimSpace(*req.Title)
		if title == "" {
			return domain.AddOn{}, domain.ErrInvalidTitle
		}
		addOn.Title = title
	}
	if req.Price != nil {
		if *req.Price < 0 {
			return domain.AddOn{}, domain.ErrInvalidPrice
		}
		addOn.Price = *req.Price
	}
	if req.Active != nil {
		addOn.Active = *req.Active
	}
	addOn.UpdatedAt = time.Now().UTC()

	if err := s.repo.UpdateAddOn(ctx, s.db, addOn); err != nil {
		return domain.AddOn{}, err
	}

	s.cache.Invalidate(tenantID)
	return *addOn, nil
}

func (s *Service) DeleteAddOn(ctx context.Context, rawID string) error {
	tenantID, ok := tenantctx.TenantIDFromContext(ctx)
	if !ok || tenantID == 0 {
		return domain.ErrInvalidTenant
	}

	id, err := parseID(rawID)
	if err != nil {
		return err
	}

	addOn, err := s.repo.FindAddOnByID(ctx, s.db, tenantID, id)
	if err != nil {
		return err
	}
	if addOn == nil {
		return domain.ErrNotFound
	}

	if err := s.repo.DeleteAddOn(ctx, s.db, tenantID, id); err != nil {
		return err
	}

	s.cache.Invalidate(tenantID)
	return nil
}

func (s *Service) ListSegments(ctx context.Context) ([]domain.Segment, error) {
	snapshot, err := s.GetSnapshot(ctx)
	if err != nil {
		return nil, err
	}
	return snapshot.Segments, nil
}

func (s *Service) CreateSegment(ctx context.Context, req domain.CreateSegmentRequest) (domain.Segment, error) {
	tenantID, ok := tenantctx.TenantIDFromContext(ctx)
	if !ok || tenantID == 0 {
		return domain.Segment{}, domain.ErrInvalidTenant
	}

	name := strings.TrimSpace(req.Name)
	if name == "" {
		return domain.Segment{}, domain.ErrInvalidName
	}

	position := 0
	if req.Position != nil {
		position = *req.Position
	}

	now := time.Now().UTC()
	segment := domain.Segment{
		ID:        s.genID.Generate(),
		TenantID:  tenantID,
		Name:      name,
		Position:  position,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := s.repo.InsertSegment(ctx, s.db, &segment); err != nil {
		return domain.Segment{}, err
	}

	s.cache.Invalidate(tenantID)
	return segment, nil
}

func (s *Service) UpdateSegment(ctx context.Context, req domain.UpdateSegmentRequest) (domain.Segment, error) {
	tenantID, ok := tenantctx.TenantIDFromContext(ctx)
	if !ok || tenantID == 0 {
		return domain.Segment{}, domain.ErrInvalidTenant
	}

	id, err := parseID(req.ID)
	if err != nil {
		return domain.Segment{}, err
	}

	segment, err := s.repo.FindSegmentByID(ctx, s.db, tenantID, id)
	if err != nil {
		return domain.Segment{}, err
	}
	if segment == nil {
		return domain.Segment{}, domain.ErrNotFound
	}

	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		if name == "" {
			return domain.Segment{}, domain.ErrInvalidName
		}
		segment.Name = name
	}
	if req.Position != nil {
		segment.Position = *req.Position
	}
	segment.UpdatedAt = time.Now().UTC()

	if err := s.repo.UpdateSegment(ctx, s.db, segment); err != nil {
		return domain.Segment{}, err
	}

	s.cache.Invalidate(tenantID)
	return *segment, nil
}

func (s *Service) DeleteSegment(ctx context.Context, rawID string) error {
	tenantID, ok := tenantctx.TenantIDFromContext(ctx)
	if !ok || tenantID == 0 {
		return domain.ErrInvalidTenant
	}

	id, err := parseID(rawID)
	if err != nil {
		return err
	}

	segment, err := s.repo.FindSegmentByID(ctx, s.db, tenantID, id)
	if err != nil {
		return err
	}
	if segment == nil {
		return domain.ErrNotFound
	}

	// Packages keep pointing at their segment; the caller has to move
	// them first.
	count, err := s.repo.CountPackagesInSegment(ctx, s.db, tenantID, id)
	if err != nil {
		return err
	}
	if count > 0 {
		return domain.ErrSegmentInUse
	}

	if err := s.repo.DeleteSegment(ctx, s.db, tenantID, id); err != nil {
		return err
	}

	s.cache.Invalidate(tenantID)
	return nil
}

func (s *Service) Invalidate(tenantID snowflake.ID) {
	s.cache.Invalidate(tenantID)
}

func (s *Service) loadSnapshot(ctx context.Context, tenantID snowflake.ID) (*domain.Snapshot, error) {
	packages, err := s.repo.ListPackages(ctx, s.db, tenantID)
	if err != nil {
		return nil, err
	}
	addOns, err := s.repo.ListAddOns(ctx, s.db, tenantID)
	if err != nil {
		return nil, err
	}
	segments, err := s.repo.ListSegments(ctx, s.db, tenantID)
	if err != nil {
		return nil, err
	}

	return &domain.Snapshot{
		TenantID: tenantID,
		Packages: packages,
		AddOns:   addOns,
		Segments: segments,
		LoadedAt: time.Now().UTC(),
	}, nil
}

// uniqueSlug slugifies the title and appends a numeric suffix until the
// slug is free within the tenant.
func (s *Service) uniqueSlug(ctx context.Context, tenantID snowflake.ID, title string) (string, error) {
	base := slug.Make(title)
	if base == "" {
		return "", domain.ErrInvalidTitle
	}

	candidate := base
	for i := 2; ; i++ {
		existing, err := s.repo.FindPackageBySlug(ctx, s.db, tenantID, candidate)
		if err != nil {
			return "", err
		}
		if existing == nil {
			return candidate, nil
		}
		if i > 50 {
			return "", domain.ErrSlugTaken
		}
		candidate = fmt.Sprintf("%s-%d", base, i)
	}
}

func (s *Service) cacheTTL() time.Duration {
	if s.booking == nil {
		return 0
	}
	return time.Duration(s.booking.Get().CatalogCacheTTLSeconds) * time.Second
}

func (s *Service) recordCacheLookup(outcome string) {
	if s.metrics == nil {
		return
	}
	s.metrics.CatalogCacheLookups.WithLabelValues(outcome).Inc()
}

// resolveSegment parses an optional segment reference and checks it
// exists for the tenant. Empty means "no segment".
func (s *Service) resolveSegment(ctx context.Context, tenantID snowflake.ID, value string) (*snowflake.ID, error) {
	segmentID, err := s.parseOptionalID(value)
	if err != nil {
		return nil, domain.ErrInvalidSegment
	}
	if segmentID == nil {
		return nil, nil
	}
	segment, err := s.repo.FindSegmentByID(ctx, s.db, tenantID, *segmentID)
	if err != nil {
		return nil, err
	}
	if segment == nil {
		return nil, domain.ErrInvalidSegment
	}
	return segmentID, nil
}

func (s *Service) parseOptionalID(value string) (*snowflake.ID, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return nil, nil
	}
	id, err := parseID(value)
	if err != nil {
		return nil, err
	}
	return &id, nil
}

func parseID(value string) (snowflake.ID, error) {
	id, err := snowflake.ParseString(strings.TrimSpace(value))
	if err != nil || id == 0 {
		return 0, domain.ErrInvalidID
	}
	return id, nil
}
