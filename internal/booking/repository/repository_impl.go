package repository

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/reservo/internal/booking/domain"
	"github.com/smallbiznis/reservo/pkg/dateonly"
	"github.com/smallbiznis/reservo/pkg/db/pagination"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) Insert(ctx context.Context, db *gorm.DB, booking *domain.Booking) error {
	return db.WithContext(ctx).Exec(
		`INSERT INTO bookings (
			id, tenant_id, package_id, event_date, confirmed_date, customer_name, email,
			add_on_ids, total, currency, status, session_ref, cancel_reason, created_at, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		booking.ID,
		booking.TenantID,
		booking.PackageID,
		booking.EventDate,
		booking.ConfirmedDate,
		booking.CustomerName,
		booking.Email,
		booking.AddOnIDs,
		booking.Total,
		booking.Currency,
		booking.Status,
		booking.SessionRef,
		booking.CancelReason,
		booking.CreatedAt,
		booking.UpdatedAt,
	).Error
}

func (r *repo) FindByID(ctx context.Context, db *gorm.DB, tenantID, id snowflake.ID) (*domain.Booking, error) {
	var booking domain.Booking
	err := db.WithContext(ctx).Raw(
		`SELECT id, tenant_id, package_id, event_date, confirmed_date, customer_name, email,
			add_on_ids, total, currency, status, session_ref, cancel_reason, created_at, updated_at
		 FROM bookings WHERE tenant_id = ? AND id = ?`,
		tenantID,
		id,
	).Scan(&booking).Error
	if err != nil {
		return nil, err
	}
	if booking.ID == 0 {
		return nil, nil
	}
	return &booking, nil
}

func (r *repo) FindBySessionRef(ctx context.Context, db *gorm.DB, sessionRef string) (*domain.Booking, error) {
	var booking domain.Booking
	err := db.WithContext(ctx).Raw(
		`SELECT id, tenant_id, package_id, event_date, confirmed_date, customer_name, email,
			add_on_ids, total, currency, status, session_ref, cancel_reason, created_at, updated_at
		 FROM bookings WHERE session_ref = ?
		 LIMIT 1`,
		sessionRef,
	).Scan(&booking).Error
	if err != nil {
		return nil, err
	}
	if booking.ID == 0 {
		return nil, nil
	}
	return &booking, nil
}

func (r *repo) List(ctx context.Context, db *gorm.DB, tenantID snowflake.ID, filter domain.ListFilter, page pagination.Pagination) ([]*domain.Booking, error) {
	var bookings []*domain.Booking
	stmt := db.WithContext(ctx).
		Model(&domain.Booking{}).
		Where("tenant_id = ?", tenantID)
	if filter.Status != "" {
		stmt = stmt.Where("status = ?", filter.Status)
	}
	if !filter.DateFrom.IsZero() {
		stmt = stmt.Where("event_date >= ?", filter.DateFrom)
	}
	if !filter.DateTo.IsZero() {
		stmt = stmt.Where("event_date <= ?", filter.DateTo)
	}
	if page.PageToken != "" {
		cursor, err := pagination.DecodeCursor(page.PageToken)
		if err == nil && cursor.ID != "" {
			stmt = stmt.Where("(created_at, id) < (?, ?)", cursor.CreatedAt, cursor.ID)
		}
	}
	if page.PageSize > 0 {
		stmt = stmt.Limit(page.PageSize + 1)
	}
	err := stmt.
		Order("created_at desc, id desc").
		Find(&bookings).Error
	if err != nil {
		return nil, err
	}
	return bookings, nil
}

func (r *repo) ConfirmedDates(ctx context.Context, db *gorm.DB, tenantID snowflake.ID, start, end dateonly.Date) (map[dateonly.Date]struct{}, error) {
	var dates []dateonly.Date
	err := db.WithContext(ctx).Raw(
		`SELECT event_date
		 FROM bookings
		 WHERE tenant_id = ? AND status = ? AND event_date >= ? AND event_date <= ?`,
		tenantID,
		domain.StatusConfirmed,
		start,
		end,
	).Scan(&dates).Error
	if err != nil {
		return nil, err
	}

	out := make(map[dateonly.Date]struct{}, len(dates))
	for _, date := range dates {
		out[date] = struct{}{}
	}
	return out, nil
}

func (r *repo) HasConfirmedOnDate(ctx context.Context, db *gorm.DB, tenantID snowflake.ID, date dateonly.Date) (bool, error) {
	var count int64
	err := db.WithContext(ctx).Raw(
		`SELECT COUNT(1) FROM bookings
		 WHERE tenant_id = ? AND status = ? AND event_date = ?`,
		tenantID,
		domain.StatusConfirmed,
		date,
	).Scan(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *repo) UpdateSessionRef(ctx context.Context, db *gorm.DB, id snowflake.ID, sessionRef string, updatedAt time.Time) error {
	return db.WithContext(ctx).Exec(
		`UPDATE bookings SET session_ref = ?, updated_at = ? WHERE id = ?`,
		sessionRef,
		updatedAt,
		id,
	).Error
}

func (r *repo) Confirm(ctx context.Context, db *gorm.DB, id snowflake.ID, date dateonly.Date, updatedAt time.Time) (bool, error) {
	res := db.WithContext(ctx).Exec(
		`UPDATE bookings
		 SET status = ?, confirmed_date = ?, updated_at = ?
		 WHERE id = ? AND status = ?`,
		domain.StatusConfirmed,
		date,
		updatedAt,
		id,
		domain.StatusPendingPayment,
	)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (r *repo) Cancel(ctx context.Context, db *gorm.DB, id snowflake.ID, reason string, updatedAt time.Time) (bool, error) {
	res := db.WithContext(ctx).Exec(
		`UPDATE bookings
		 SET status = ?, cancel_reason = ?, updated_at = ?
		 WHERE id = ? AND status = ?`,
		domain.StatusCancelled,
		reason,
		updatedAt,
		id,
		domain.StatusPendingPayment,
	)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (r *repo) CancelPendingBefore(ctx context.Context, db *gorm.DB, cutoff time.Time, reason string, updatedAt time.Time) (int64, error) {
	res := db.WithContext(ctx).Exec(
		`UPDATE bookings
		 SET status = ?, cancel_reason = ?, updated_at = ?
		 WHERE status = ? AND created_at < ?`,
		domain.StatusCancelled,
		reason,
		updatedAt,
		domain.StatusPendingPayment,
		cutoff,
	)
	if res.Error != nil {
		return 0, res.Error
	}
	return res.RowsAffected, nil
}

func (r *repo) InsertConflict(ctx context.Context, db *gorm.DB, conflict *domain.Conflict) error {
	return db.WithContext(ctx).Exec(
		`INSERT INTO booking_conflicts (id, tenant_id, booking_id, event_date, event_id, recorded_at, resolved_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		conflict.ID,
		conflict.TenantID,
		conflict.BookingID,
		conflict.EventDate,
		conflict.EventID,
		conflict.RecordedAt,
		conflict.ResolvedAt,
	).Error
}
