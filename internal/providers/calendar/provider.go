package calendar

import (
	"context"
	"errors"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/reservo/pkg/dateonly"
)

// Provider reports externally-booked days for a tenant, e.g. from the
// venue's own calendar. Callers must treat ErrProviderUnavailable as a
// degraded signal, never as "everything is busy".
type Provider interface {
	BusyDates(ctx context.Context, tenantID snowflake.ID, start, end dateonly.Date) (map[dateonly.Date]struct{}, error)
}

var ErrProviderUnavailable = errors.New("calendar_provider_unavailable")

type NoOpProvider struct{}

func (NoOpProvider) BusyDates(ctx context.Context, tenantID snowflake.ID, start, end dateonly.Date) (map[dateonly.Date]struct{}, error) {
	return map[dateonly.Date]struct{}{}, nil
}
