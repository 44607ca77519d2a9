package service

import (
	"context"
	"errors"
	"time"

	"github.com/bwmarrin/snowflake"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/smallbiznis/reservo/internal/availability/domain"
	blackoutdomain "github.com/smallbiznis/reservo/internal/blackout/domain"
	bookingdomain "github.com/smallbiznis/reservo/internal/booking/domain"
	"github.com/smallbiznis/reservo/internal/clock"
	"github.com/smallbiznis/reservo/internal/config"
	"github.com/smallbiznis/reservo/internal/observability"
	"github.com/smallbiznis/reservo/internal/providers/calendar"
	tenantdomain "github.com/smallbiznis/reservo/internal/tenant/domain"
	"github.com/smallbiznis/reservo/internal/tenantctx"
	"github.com/smallbiznis/reservo/pkg/dateonly"
)

type Params struct {
	fx.In

	DB       *gorm.DB
	Log      *zap.Logger
	Clock    clock.Clock
	Holder   *config.BookingConfigHolder
	Tenants  tenantdomain.Service
	Blackout blackoutdomain.Service
	Calendar calendar.Provider
	Bookings bookingdomain.Repository
	Metrics  *observability.Metrics
}

type availabilityService struct {
	db       *gorm.DB
	log      *zap.Logger
	clock    clock.Clock
	holder   *config.BookingConfigHolder
	tenants  tenantdomain.Service
	blackout blackoutdomain.Service
	calendar calendar.Provider
	bookings bookingdomain.Repository
	metrics  *observability.Metrics
}

func New(p Params) domain.Service {
	return &availabilityService{
		db:       p.DB,
		log:      p.Log.Named("availability.service"),
		clock:    p.Clock,
		holder:   p.Holder,
		tenants:  p.Tenants,
		blackout: p.Blackout,
		calendar: p.Calendar,
		bookings: p.Bookings,
		metrics:  p.Metrics,
	}
}

// today resolves the current civil date in the tenant's timezone.
// Today itself is still bookable, only strictly earlier dates are past.
func (s *availabilityService) today(ctx context.Context, tenantID snowflake.ID) dateonly.Date {
	loc := time.UTC
	if tenant, err := s.tenants.GetByID(ctx, tenantID); err == nil {
		loc = tenant.Location()
	}
	return dateonly.Today(s.clock.Now(), loc)
}

// busyDates queries the calendar provider, failing open when it is
// unreachable so an outage never blocks checkout.
func (s *availabilityService) busyDates(ctx context.Context, tenantID snowflake.ID, start, end dateonly.Date) (map[dateonly.Date]struct{}, bool, error) {
	busy, err := s.calendar.BusyDates(ctx, tenantID, start, end)
	if err == nil {
		return busy, false, nil
	}
	if !errors.Is(err, calendar.ErrProviderUnavailable) {
		return nil, false, err
	}
	s.log.Warn("calendar provider unavailable, skipping busy dates",
		zap.Int64("tenant_id", int64(tenantID)),
		zap.Error(err),
	)
	s.metrics.AvailabilityDegraded.Inc()
	return nil, true, nil
}

func (s *availabilityService) GetAvailability(ctx context.Context, date dateonly.Date) (domain.Availability, error) {
	tenantID, ok := tenantctx.TenantIDFromContext(ctx)
	if !ok {
		return domain.Availability{}, domain.ErrInvalidTenant
	}

	if !date.Valid() {
		return domain.Availability{}, domain.ErrInvalidDate
	}

	res := domain.Availability{Date: date}

	if date.Before(s.today(ctx, tenantID)) {
		res.Reasons = append(res.Reasons, domain.ReasonPast)
		return res, nil
	}

	blackouts, err := s.blackout.DatesInRange(ctx, date, date)
	if err != nil {
		return domain.Availability{}, err
	}
	if _, blocked := blackouts[date]; blocked {
		res.Reasons = append(res.Reasons, domain.ReasonBlackout)
	}

	busy, degraded, err := s.busyDates(ctx, tenantID, date, date)
	if err != nil {
		return domain.Availability{}, err
	}
	res.Degraded = degraded
	if _, taken := busy[date]; taken {
		res.Reasons = append(res.Reasons, domain.ReasonCalendar)
	}

	booked, err := s.bookings.HasConfirmedOnDate(ctx, s.db, tenantID, date)
	if err != nil {
		return domain.Availability{}, err
	}
	if booked {
		res.Reasons = append(res.Reasons, domain.ReasonBooked)
	}

	res.Available = len(res.Reasons) == 0
	return res, nil
}

func (s *availabilityService) UnavailableDates(ctx context.Context, start, end dateonly.Date) (domain.RangeResult, error) {
	tenantID, ok := tenantctx.TenantIDFromContext(ctx)
	if !ok {
		return domain.RangeResult{}, domain.ErrInvalidTenant
	}

	if !start.Valid() || !end.Valid() {
		return domain.RangeResult{}, domain.ErrInvalidDate
	}
	if end.Before(start) {
		return domain.RangeResult{}, domain.ErrInvalidRange
	}

	// Clamp to [today, today+horizon]; anything outside is implicitly
	// unavailable and not worth enumerating.
	today := s.today(ctx, tenantID)
	horizon := today.AddDays(s.holder.Get().AvailabilityHorizonDays)
	if start.Before(today) {
		start = today
	}
	if horizon.Before(end) {
		end = horizon
	}

	res := domain.RangeResult{
		Start:       start,
		End:         end,
		Unavailable: make(map[dateonly.Date][]domain.Reason),
	}
	if end.Before(start) {
		return res, nil
	}

	blackouts, err := s.blackout.DatesInRange(ctx, start, end)
	if err != nil {
		return domain.RangeResult{}, err
	}
	for d := range blackouts {
		res.Unavailable[d] = append(res.Unavailable[d], domain.ReasonBlackout)
	}

	busy, degraded, err := s.busyDates(ctx, tenantID, start, end)
	if err != nil {
		return domain.RangeResult{}, err
	}
	res.Degraded = degraded
	for d := range busy {
		res.Unavailable[d] = append(res.Unavailable[d], domain.ReasonCalendar)
	}

	confirmed, err := s.bookings.ConfirmedDates(ctx, s.db, tenantID, start, end)
	if err != nil {
		return domain.RangeResult{}, err
	}
	for d := range confirmed {
		res.Unavailable[d] = append(res.Unavailable[d], domain.ReasonBooked)
	}

	return res, nil
}
