package domain

import (
	"context"
	"errors"

	"github.com/smallbiznis/reservo/pkg/dateonly"
)

type CreateBlackoutRequest struct {
	Date   string
	Reason string
}

type Service interface {
	List(ctx context.Context) ([]Blackout, error)
	// DatesInRange returns the blacked-out days between start and end
	// inclusive as a set.
	DatesInRange(ctx context.Context, start, end dateonly.Date) (map[dateonly.Date]struct{}, error)
	Create(ctx context.Context, req CreateBlackoutRequest) (Blackout, error)
	Delete(ctx context.Context, id string) error
}

var (
	ErrInvalidTenant  = errors.New("invalid_tenant")
	ErrInvalidDate    = errors.New("invalid_date")
	ErrInvalidID      = errors.New("invalid_id")
	ErrNotFound       = errors.New("not_found")
	ErrBlackoutExists = errors.New("blackout_exists")
)
