package domain

import (
	"context"
	"errors"

	"github.com/smallbiznis/reservo/pkg/dateonly"
)

// Reason explains why a date is not bookable.
type Reason string

const (
	ReasonPast     Reason = "past"
	ReasonBlackout Reason = "blackout"
	ReasonCalendar Reason = "calendar_busy"
	ReasonBooked   Reason = "booked"
)

type Availability struct {
	Date      dateonly.Date `json:"date"`
	Available bool          `json:"available"`
	Reasons   []Reason      `json:"reasons,omitempty"`
	// Degraded is set when the calendar provider could not be reached
	// and its contribution was skipped.
	Degraded bool `json:"degraded,omitempty"`
}

type RangeResult struct {
	Start       dateonly.Date              `json:"start"`
	End         dateonly.Date              `json:"end"`
	Unavailable map[dateonly.Date][]Reason `json:"unavailable"`
	Degraded    bool                       `json:"degraded,omitempty"`
}

// Service computes the availability verdict for single dates and
// bounded ranges. The single-date check is authoritative at checkout
// time; range results are advisory and may be briefly stale.
type Service interface {
	GetAvailability(ctx context.Context, date dateonly.Date) (Availability, error)
	UnavailableDates(ctx context.Context, start, end dateonly.Date) (RangeResult, error)
}

var (
	ErrInvalidTenant = errors.New("invalid_tenant")
	ErrInvalidDate   = errors.New("invalid_date")
	ErrInvalidRange  = errors.New("invalid_range")
)
