package repository

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/reservo/internal/blackout/domain"
	"github.com/smallbiznis/reservo/pkg/dateonly"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) List(ctx context.Context, db *gorm.DB, tenantID snowflake.ID) ([]domain.Blackout, error) {
	var blackouts []domain.Blackout
	err := db.WithContext(ctx).
		Model(&domain.Blackout{}).
		Where("tenant_id = ?", tenantID).
		Order("date asc").
		Find(&blackouts).Error
	if err != nil {
		return nil, err
	}
	return blackouts, nil
}

func (r *repo) ListRange(ctx context.Context, db *gorm.DB, tenantID snowflake.ID, start, end dateonly.Date) ([]domain.Blackout, error) {
	var blackouts []domain.Blackout
	err := db.WithContext(ctx).
		Model(&domain.Blackout{}).
		Where("tenant_id = ? AND date >= ? AND date <= ?", tenantID, start, end).
		Order("date asc").
		Find(&blackouts).Error
	if err != nil {
		return nil, err
	}
	return blackouts, nil
}

func (r *repo) FindByID(ctx context.Context, db *gorm.DB, tenantID, id snowflake.ID) (*domain.Blackout, error) {
	var blackout domain.Blackout
	err := db.WithContext(ctx).Raw(
		`SELECT id, tenant_id, date, reason, created_at
		 FROM blackouts WHERE tenant_id = ? AND id = ?`,
		tenantID,
		id,
	).Scan(&blackout).Error
	if err != nil {
		return nil, err
	}
	if blackout.ID == 0 {
		return nil, nil
	}
	return &blackout, nil
}

func (r *repo) Insert(ctx context.Context, db *gorm.DB, blackout *domain.Blackout) error {
	return db.WithContext(ctx).Exec(
		`INSERT INTO blackouts (id, tenant_id, date, reason, created_at)
		 VALUES (?, ?, ?, ?, ?)`,
		blackout.ID,
		blackout.TenantID,
		blackout.Date,
		blackout.Reason,
		blackout.CreatedAt,
	).Error
}

func (r *repo) Delete(ctx context.Context, db *gorm.DB, tenantID, id snowflake.ID) error {
	return db.WithContext(ctx).Exec(
		`DELETE FROM blackouts WHERE tenant_id = ? AND id = ?`,
		tenantID,
		id,
	).Error
}
