package service

import (
	"context"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/reservo/internal/blackout/domain"
	"github.com/smallbiznis/reservo/internal/tenantctx"
	"github.com/smallbiznis/reservo/pkg/dateonly"
	"github.com/smallbiznis/reservo/pkg/db"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB    *gorm.DB
	Log   *zap.Logger
	GenID *snowflake.Node
	Repo  domain.Repository
}

type Service struct {
	db    *gorm.DB
	log   *zap.Logger
	genID *snowflake.Node
	repo  domain.Repository
}

func New(p Params) domain.Service {
	return &Service{
		db:    p.DB,
		log:   p.Log.Named("blackout.service"),
		genID: p.GenID,
		repo:  p.Repo,
	}
}

func (s *Service) List(ctx context.Context) ([]domain.Blackout, error) {
	tenantID, ok := tenantctx.TenantIDFromContext(ctx)
	if !ok || tenantID == 0 {
		return nil, domain.ErrInvalidTenant
	}
	return s.repo.List(ctx, s.db, tenantID)
}

func (s *Service) DatesInRange(ctx context.Context, start, end dateonly.Date) (map[dateonly.Date]struct{}, error) {
	tenantID, ok := tenantctx.TenantIDFromContext(ctx)
	if !ok || tenantID == 0 {
		return nil, domain.ErrInvalidTenant
	}
	if start.IsZero() || end.IsZero() || start.After(end) {
		return nil, domain.ErrInvalidDate
	}

	blackouts, err := s.repo.ListRange(ctx, s.db, tenantID, start, end)
	if err != nil {
		return nil, err
	}

	dates := make(map[dateonly.Date]struct{}, len(blackouts))
	for _, blackout := range blackouts {
		dates[blackout.Date] = struct{}{}
	}
	return dates, nil
}

func (s *Service) Create(ctx context.Context, req domain.CreateBlackoutRequest) (domain.Blackout, error) {
	tenantID, ok := tenantctx.TenantIDFromContext(ctx)
	if !ok || tenantID == 0 {
		return domain.Blackout{}, domain.ErrInvalidTenant
	}

	date, err := dateonly.Parse(strings.TrimSpace(req.Date))
	if err != nil {
		return domain.Blackout{}, domain.ErrInvalidDate
	}

	blackout := domain.Blackout{
		ID:        s.genID.Generate(),
		TenantID:  tenantID,
		Date:      date,
		Reason:    strings.TrimSpace(req.Reason),
		CreatedAt: time.Now().UTC(),
	}

	if err := s.repo.Insert(ctx, s.db, &blackout); err != nil {
		if db.IsDuplicateKeyErr(err) {
			return domain.Blackout{}, domain.ErrBlackoutExists
		}
		return domain.Blackout{}, err
	}

	return blackout, nil
}

func (s *Service) Delete(ctx context.Context, rawID string) error {
	tenantID, ok := tenantctx.TenantIDFromContext(ctx)
	if !ok || tenantID == 0 {
		return domain.ErrInvalidTenant
	}

	id, err := snowflake.ParseString(strings.TrimSpace(rawID))
	if err != nil || id == 0 {
		return domain.ErrInvalidID
	}

	blackout, err := s.repo.FindByID(ctx, s.db, tenantID, id)
	if err != nil {
		return err
	}
	if blackout == nil {
		return domain.ErrNotFound
	}

	return s.repo.Delete(ctx, s.db, tenantID, id)
}
