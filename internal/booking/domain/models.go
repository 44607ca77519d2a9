package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/reservo/pkg/dateonly"
	"gorm.io/datatypes"
)

type Status string

const (
	// StatusPendingPayment marks a checkout that has been started but
	// not reconciled. Pending rows never block a date.
	StatusPendingPayment Status = "pending_payment"
	// StatusConfirmed is the only status that blocks a calendar date.
	StatusConfirmed Status = "confirmed"
	StatusCancelled Status = "cancelled"
)

// IsTerminal reports whether no further transition is permitted.
func (s Status) IsTerminal() bool {
	return s == StatusConfirmed || s == StatusCancelled
}

type Booking struct {
	ID        snowflake.ID  `gorm:"primaryKey" json:"id"`
	TenantID  snowflake.ID  `gorm:"not null;index;uniqueIndex:ux_bookings_tenant_confirmed_date" json:"tenant_id"`
	PackageID snowflake.ID  `gorm:"not null" json:"package_id"`
	EventDate dateonly.Date `gorm:"not null" json:"event_date"`
	// ConfirmedDate mirrors EventDate while status is confirmed and is
	// NULL otherwise. The unique index on (tenant_id, confirmed_date)
	// is what makes confirm-if-not-taken atomic on engines without
	// partial indexes.
	ConfirmedDate *dateonly.Date `gorm:"uniqueIndex:ux_bookings_tenant_confirmed_date" json:"-"`
	CustomerName  string         `gorm:"not null" json:"customer_name"`
	Email         string         `gorm:"not null" json:"email"`
	AddOnIDs      datatypes.JSON `gorm:"type:jsonb" json:"add_on_ids,omitempty"`
	Total         int64          `gorm:"not null" json:"total"`
	Currency      string         `gorm:"not null" json:"currency"`
	Status        Status         `gorm:"not null;index" json:"status"`
	SessionRef    string         `gorm:"index" json:"session_ref,omitempty"`
	CancelReason  string         `json:"cancel_reason,omitempty"`
	CreatedAt     time.Time      `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt     time.Time      `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}

func (Booking) TableName() string { return "bookings" }

// Conflict records a paid confirmation that lost the race for its date
// and needs manual reconciliation (the customer was charged for a date
// someone else holds).
type Conflict struct {
	ID         snowflake.ID  `gorm:"primaryKey" json:"id"`
	TenantID   snowflake.ID  `gorm:"not null;index" json:"tenant_id"`
	BookingID  snowflake.ID  `gorm:"not null" json:"booking_id"`
	EventDate  dateonly.Date `gorm:"not null" json:"event_date"`
	EventID    string        `gorm:"not null" json:"event_id"`
	RecordedAt time.Time     `gorm:"not null" json:"recorded_at"`
	ResolvedAt *time.Time    `json:"resolved_at,omitempty"`
}

func (Conflict) TableName() string { return "booking_conflicts" }
