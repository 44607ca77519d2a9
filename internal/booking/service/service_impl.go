package service

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	availabilitydomain "github.com/smallbiznis/reservo/internal/availability/domain"
	"github.com/smallbiznis/reservo/internal/booking/domain"
	catalogdomain "github.com/smallbiznis/reservo/internal/catalog/domain"
	"github.com/smallbiznis/reservo/internal/clock"
	"github.com/smallbiznis/reservo/internal/config"
	"github.com/smallbiznis/reservo/internal/events"
	"github.com/smallbiznis/reservo/internal/observability"
	paymentprovider "github.com/smallbiznis/reservo/internal/providers/payment"
	tenantdomain "github.com/smallbiznis/reservo/internal/tenant/domain"
	"github.com/smallbiznis/reservo/internal/tenantctx"
	"github.com/smallbiznis/reservo/pkg/dateonly"
	"github.com/smallbiznis/reservo/pkg/db/pagination"
)

type Params struct {
	fx.In

	DB           *gorm.DB
	Log          *zap.Logger
	GenID        *snowflake.Node
	Clock        clock.Clock
	Cfg          config.Config
	Holder       *config.BookingConfigHolder
	Repo         domain.Repository
	Catalog      catalogdomain.Service
	Availability availabilitydomain.Service
	Tenants      tenantdomain.Service
	Gateway      paymentprovider.CheckoutProvider
	Bus          *events.Bus
	Metrics      *observability.Metrics
}

type bookingService struct {
	db           *gorm.DB
	log          *zap.Logger
	genID        *snowflake.Node
	clock        clock.Clock
	cfg          config.Config
	holder       *config.BookingConfigHolder
	repo         domain.Repository
	catalog      catalogdomain.Service
	availability availabilitydomain.Service
	tenants      tenantdomain.Service
	gateway      paymentprovider.CheckoutProvider
	bus          *events.Bus
	metrics      *observability.Metrics
}

func New(p Params) domain.Service {
	return &bookingService{
		db:           p.DB,
		log:          p.Log.Named("booking.service"),
		genID:        p.GenID,
		clock:        p.Clock,
		cfg:          p.Cfg,
		holder:       p.Holder,
		repo:         p.Repo,
		catalog:      p.Catalog,
		availability: p.Availability,
		tenants:      p.Tenants,
		gateway:      p.Gateway,
		bus:          p.Bus,
		metrics:      p.Metrics,
	}
}

func (s *bookingService) CreateCheckout(ctx context.Context, req domain.CreateCheckoutRequest) (domain.CreateCheckoutResponse, error) {
	started := s.clock.Now()

	tenantID, ok := tenantctx.TenantIDFromContext(ctx)
	if !ok {
		return domain.CreateCheckoutResponse{}, domain.ErrInvalidTenant
	}

	name := strings.TrimSpace(req.CustomerName)
	if name == "" {
		return domain.CreateCheckoutResponse{}, domain.ErrInvalidName
	}
	email := strings.TrimSpace(req.Email)
	if email == "" || !strings.Contains(email, "@") {
		return domain.CreateCheckoutResponse{}, domain.ErrInvalidEmail
	}

	eventDate, err := dateonly.Parse(strings.TrimSpace(req.EventDate))
	if err != nil {
		return domain.CreateCheckoutResponse{}, domain.ErrInvalidDate
	}

	packageID, err := snowflake.ParseString(strings.TrimSpace(req.PackageID))
	if err != nil || packageID == 0 {
		return domain.CreateCheckoutResponse{}, domain.ErrInvalidPackage
	}

	addOnIDs := make([]snowflake.ID, 0, len(req.AddOnIDs))
	for _, raw := range req.AddOnIDs {
		id, err := snowflake.ParseString(strings.TrimSpace(raw))
		if err != nil || id == 0 {
			return domain.CreateCheckoutResponse{}, domain.ErrInvalidAddOn
		}
		addOnIDs = append(addOnIDs, id)
	}

	tenant, err := s.tenants.GetByID(ctx, tenantID)
	if err != nil {
		return domain.CreateCheckoutResponse{}, err
	}

	// Dates beyond the bookable horizon are rejected the same way a
	// taken date is.
	today := dateonly.Today(s.clock.Now(), tenant.Location())
	horizon := today.AddDays(s.holder.Get().AvailabilityHorizonDays)
	if horizon.Before(eventDate) {
		s.metrics.CheckoutResults.WithLabelValues("date_unavailable").Inc()
		return domain.CreateCheckoutResponse{}, domain.ErrDateUnavailable
	}

	verdict, err := s.availability.GetAvailability(ctx, eventDate)
	if err != nil {
		if errors.Is(err, availabilitydomain.ErrInvalidDate) {
			return domain.CreateCheckoutResponse{}, domain.ErrInvalidDate
		}
		return domain.CreateCheckoutResponse{}, err
	}
	if !verdict.Available {
		s.metrics.CheckoutResults.WithLabelValues("date_unavailable").Inc()
		return domain.CreateCheckoutResponse{}, domain.ErrDateUnavailable
	}

	snapshot, err := s.catalog.GetSnapshot(ctx)
	if err != nil {
		return domain.CreateCheckoutResponse{}, err
	}
	pkg := snapshot.PackageByID(packageID)
	if pkg == nil || !pkg.Active {
		return domain.CreateCheckoutResponse{}, domain.ErrInvalidPackage
	}

	// The total is computed from current catalog prices only; whatever
	// amount the client displayed is ignored.
	allowed := map[snowflake.ID]catalogdomain.AddOn{}
	for _, addOn := range snapshot.AddOnsForPackage(pkg.ID) {
		allowed[addOn.ID] = addOn
	}
	total := pkg.Price
	addOns := make([]catalogdomain.AddOn, 0, len(addOnIDs))
	seen := map[snowflake.ID]struct{}{}
	for _, id := range addOnIDs {
		if _, dup := seen[id]; dup {
			return domain.CreateCheckoutResponse{}, domain.ErrInvalidAddOn
		}
		seen[id] = struct{}{}
		addOn, ok := allowed[id]
		if !ok {
			return domain.CreateCheckoutResponse{}, domain.ErrInvalidAddOn
		}
		addOns = append(addOns, addOn)
		total += addOn.Price
	}

	rawAddOnIDs, err := json.Marshal(idStrings(addOnIDs))
	if err != nil {
		return domain.CreateCheckoutResponse{}, err
	}

	now := s.clock.Now()
	booking := &domain.Booking{
		ID:           s.genID.Generate(),
		TenantID:     tenantID,
		PackageID:    pkg.ID,
		EventDate:    eventDate,
		CustomerName: name,
		Email:        email,
		AddOnIDs:     datatypes.JSON(rawAddOnIDs),
		Total:        total,
		Currency:     tenant.Currency,
		Status:       domain.StatusPendingPayment,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	// The pending row exists before the gateway is called so a webhook
	// can never arrive for a booking we don't know about.
	if err := s.repo.Insert(ctx, s.db, booking); err != nil {
		return domain.CreateCheckoutResponse{}, err
	}

	lines := []paymentprovider.CheckoutLine{{
		Title:    pkg.Title,
		Amount:   pkg.Price,
		Currency: tenant.Currency,
		Quantity: 1,
	}}
	for _, addOn := range addOns {
		lines = append(lines, paymentprovider.CheckoutLine{
			Title:    addOn.Title,
			Amount:   addOn.Price,
			Currency: tenant.Currency,
			Quantity: 1,
		})
	}

	session, err := s.gateway.CreateCheckoutSession(ctx, paymentprovider.CreateSessionRequest{
		BookingID:    booking.ID,
		TenantID:     tenantID,
		CustomerName: name,
		Email:        email,
		EventDate:    eventDate.String(),
		Lines:        lines,
		SuccessURL:   s.cfg.Payment.SuccessURL,
		CancelURL:    s.cfg.Payment.CancelURL,
	})
	if err != nil {
		s.metrics.CheckoutResults.WithLabelValues("gateway_error").Inc()
		s.log.Error("checkout session create failed",
			zap.String("booking_id", booking.ID.String()),
			zap.String("tenant_id", tenantID.String()),
			zap.Error(err),
		)
		// The booking stays pending_payment so the customer can retry
		// checkout; housekeeping expires it if they never do.
		return domain.CreateCheckoutResponse{}, domain.ErrPaymentGateway
	}

	if err := s.repo.UpdateSessionRef(ctx, s.db, booking.ID, session.Ref, s.clock.Now()); err != nil {
		return domain.CreateCheckoutResponse{}, err
	}

	s.metrics.CheckoutResults.WithLabelValues("created").Inc()
	s.metrics.CheckoutDuration.Observe(s.clock.Now().Sub(started).Seconds())

	return domain.CreateCheckoutResponse{
		BookingID:   booking.ID.String(),
		CheckoutURL: session.URL,
		Total:       total,
		Currency:    tenant.Currency,
	}, nil
}

func (s *bookingService) List(ctx context.Context, req domain.ListBookingsRequest) (domain.ListBookingsResponse, error) {
	tenantID, ok := tenantctx.TenantIDFromContext(ctx)
	if !ok {
		return domain.ListBookingsResponse{}, domain.ErrInvalidTenant
	}

	filter := domain.ListFilter{}
	if status := strings.TrimSpace(req.Status); status != "" {
		filter.Status = domain.Status(status)
	}
	if from := strings.TrimSpace(req.DateFrom); from != "" {
		date, err := dateonly.Parse(from)
		if err != nil {
			return domain.ListBookingsResponse{}, domain.ErrInvalidDate
		}
		filter.DateFrom = date
	}
	if to := strings.TrimSpace(req.DateTo); to != "" {
		date, err := dateonly.Parse(to)
		if err != nil {
			return domain.ListBookingsResponse{}, domain.ErrInvalidDate
		}
		filter.DateTo = date
	}

	pageSize := req.PageSize
	if pageSize <= 0 {
		pageSize = 20
	}
	if pageSize > 250 {
		pageSize = 250
	}

	rows, err := s.repo.List(ctx, s.db, tenantID, filter, pagination.Pagination{
		PageToken: req.PageToken,
		PageSize:  int(pageSize),
	})
	if err != nil {
		return domain.ListBookingsResponse{}, err
	}

	pageInfo := pagination.BuildCursorPageInfo(rows, pageSize, func(b *domain.Booking) string {
		token, err := pagination.EncodeCursor(pagination.Cursor{
			ID:        b.ID.String(),
			CreatedAt: b.CreatedAt.UTC().Format(time.RFC3339Nano),
		})
		if err != nil {
			return ""
		}
		return token
	})

	if len(rows) > int(pageSize) {
		rows = rows[:pageSize]
	}
	bookings := make([]domain.Booking, 0, len(rows))
	for _, row := range rows {
		bookings = append(bookings, *row)
	}

	return domain.ListBookingsResponse{
		PageInfo: *pageInfo,
		Bookings: bookings,
	}, nil
}

func (s *bookingService) GetByID(ctx context.Context, id string) (domain.Booking, error) {
	tenantID, ok := tenantctx.TenantIDFromContext(ctx)
	if !ok {
		return domain.Booking{}, domain.ErrInvalidTenant
	}

	bookingID, err := snowflake.ParseString(strings.TrimSpace(id))
	if err != nil || bookingID == 0 {
		return domain.Booking{}, domain.ErrInvalidID
	}

	booking, err := s.repo.FindByID(ctx, s.db, tenantID, bookingID)
	if err != nil {
		return domain.Booking{}, err
	}
	if booking == nil {
		return domain.Booking{}, domain.ErrNotFound
	}
	return *booking, nil
}

func (s *bookingService) ExpirePending(ctx context.Context, cutoff time.Time) (int64, error) {
	count, err := s.repo.CancelPendingBefore(ctx, s.db, cutoff, "payment_window_expired", s.clock.Now())
	if err != nil {
		return 0, err
	}
	if count > 0 {
		s.metrics.PendingExpired.Add(float64(count))
		s.log.Info("expired stale pending bookings", zap.Int64("count", count))
	}
	return count, nil
}

func idStrings(ids []snowflake.ID) []string {
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		out = append(out, id.String())
	}
	return out
}
