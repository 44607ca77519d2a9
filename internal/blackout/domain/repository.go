package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/reservo/pkg/dateonly"
	"gorm.io/gorm"
)

type Repository interface {
	List(ctx context.Context, db *gorm.DB, tenantID snowflake.ID) ([]Blackout, error)
	ListRange(ctx context.Context, db *gorm.DB, tenantID snowflake.ID, start, end dateonly.Date) ([]Blackout, error)
	FindByID(ctx context.Context, db *gorm.DB, tenantID, id snowflake.ID) (*Blackout, error)
	Insert(ctx context.Context, db *gorm.DB, blackout *Blackout) error
	Delete(ctx context.Context, db *gorm.DB, tenantID, id snowflake.ID) error
}
