package domain

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/reservo/pkg/dateonly"
	"github.com/smallbiznis/reservo/pkg/db/pagination"
	"gorm.io/gorm"
)

type ListFilter struct {
	Status   Status
	DateFrom dateonly.Date
	DateTo   dateonly.Date
}

type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, booking *Booking) error
	FindByID(ctx context.Context, db *gorm.DB, tenantID, id snowflake.ID) (*Booking, error)
	FindBySessionRef(ctx context.Context, db *gorm.DB, sessionRef string) (*Booking, error)
	List(ctx context.Context, db *gorm.DB, tenantID snowflake.ID, filter ListFilter, page pagination.Pagination) ([]*Booking, error)

	// ConfirmedDates returns the set of dates held by confirmed
	// bookings in [start, end].
	ConfirmedDates(ctx context.Context, db *gorm.DB, tenantID snowflake.ID, start, end dateonly.Date) (map[dateonly.Date]struct{}, error)
	HasConfirmedOnDate(ctx context.Context, db *gorm.DB, tenantID snowflake.ID, date dateonly.Date) (bool, error)

	UpdateSessionRef(ctx context.Context, db *gorm.DB, id snowflake.ID, sessionRef string, updatedAt time.Time) error

	// Confirm sets status=confirmed and confirmed_date=event_date for a
	// pending booking. The unique index on (tenant_id, confirmed_date)
	// turns a lost race into a duplicate-key error, which is returned
	// untranslated for the caller to classify.
	Confirm(ctx context.Context, db *gorm.DB, id snowflake.ID, date dateonly.Date, updatedAt time.Time) (bool, error)
	// Cancel moves a pending booking to cancelled. Returns false when
	// the row was not pending (terminal states stay terminal).
	Cancel(ctx context.Context, db *gorm.DB, id snowflake.ID, reason string, updatedAt time.Time) (bool, error)
	CancelPendingBefore(ctx context.Context, db *gorm.DB, cutoff time.Time, reason string, updatedAt time.Time) (int64, error)

	InsertConflict(ctx context.Context, db *gorm.DB, conflict *Conflict) error
}
