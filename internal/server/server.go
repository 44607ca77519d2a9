package server

import (
	"context"
	"net/http"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/smallbiznis/reservo/internal/availability"
	availabilitydomain "github.com/smallbiznis/reservo/internal/availability/domain"
	"github.com/smallbiznis/reservo/internal/blackout"
	blackoutdomain "github.com/smallbiznis/reservo/internal/blackout/domain"
	"github.com/smallbiznis/reservo/internal/booking"
	bookingdomain "github.com/smallbiznis/reservo/internal/booking/domain"
	"github.com/smallbiznis/reservo/internal/catalog"
	catalogdomain "github.com/smallbiznis/reservo/internal/catalog/domain"
	"github.com/smallbiznis/reservo/internal/clock"
	"github.com/smallbiznis/reservo/internal/config"
	"github.com/smallbiznis/reservo/internal/events"
	"github.com/smallbiznis/reservo/internal/migration"
	"github.com/smallbiznis/reservo/internal/notification"
	"github.com/smallbiznis/reservo/internal/observability"
	"github.com/smallbiznis/reservo/internal/payment"
	paymentdomain "github.com/smallbiznis/reservo/internal/payment/domain"
	"github.com/smallbiznis/reservo/internal/providers/calendar"
	"github.com/smallbiznis/reservo/internal/providers/email"
	paymentprovider "github.com/smallbiznis/reservo/internal/providers/payment"
	"github.com/smallbiznis/reservo/internal/ratelimit"
	"github.com/smallbiznis/reservo/internal/scheduler"
	"github.com/smallbiznis/reservo/internal/tenant"
	tenantdomain "github.com/smallbiznis/reservo/internal/tenant/domain"
)

var Module = fx.Module("http.server",
	config.Module,
	clock.Module,
	observability.Module,
	events.Module,
	fx.Provide(registerGin),
	migration.Module,
	tenant.Module,
	catalog.Module,
	blackout.Module,
	calendar.Module,
	email.Module,
	paymentprovider.Module,
	availability.Module,
	booking.Module,
	payment.Module,
	notification.Module,
	ratelimit.Module,
	scheduler.Module,
	fx.Invoke(NewServer),
	fx.Invoke(run),
)

func NewEngine() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(ErrorHandlingMiddleware())

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	return r
}

func registerGin() *gin.Engine {
	return NewEngine()
}

func run(lc fx.Lifecycle, cfg config.Config, r *gin.Engine, log *zap.Logger) {
	srv := &http.Server{
		Addr:    cfg.HTTPAddr,
		Handler: r,
	}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			log.Info("http server listening", zap.String("addr", cfg.HTTPAddr))
			go func() {
				if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
					panic(err)
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
			defer cancel()
			return srv.Shutdown(shutdownCtx)
		},
	})
}

type Server struct {
	engine          *gin.Engine
	cfg             config.Config
	db              *gorm.DB
	log             *zap.Logger
	genID           *snowflake.Node
	tenantSvc       tenantdomain.Service
	catalogSvc      catalogdomain.Service
	blackoutSvc     blackoutdomain.Service
	availabilitySvc availabilitydomain.Service
	bookingSvc      bookingdomain.Service
	webhookSvc      paymentdomain.Service
	limiters        ratelimit.Limiters
}

type ServerParams struct {
	fx.In

	Gin             *gin.Engine
	Cfg             config.Config
	DB              *gorm.DB
	Log             *zap.Logger
	GenID           *snowflake.Node
	TenantSvc       tenantdomain.Service
	CatalogSvc      catalogdomain.Service
	BlackoutSvc     blackoutdomain.Service
	AvailabilitySvc availabilitydomain.Service
	BookingSvc      bookingdomain.Service
	WebhookSvc      paymentdomain.Service
	Limiters        ratelimit.Limiters
}

func NewServer(p ServerParams) *Server {
	svc := &Server{
		engine:          p.Gin,
		cfg:             p.Cfg,
		db:              p.DB,
		log:             p.Log.Named("server"),
		genID:           p.GenID,
		tenantSvc:       p.TenantSvc,
		catalogSvc:      p.CatalogSvc,
		blackoutSvc:     p.BlackoutSvc,
		availabilitySvc: p.AvailabilitySvc,
		bookingSvc:      p.BookingSvc,
		webhookSvc:      p.WebhookSvc,
		limiters:        p.Limiters,
	}

	svc.registerStorefrontRoutes()
	svc.registerWebhookRoutes()
	svc.registerAdminRoutes()

	return svc
}

func (s *Server) Engine() *gin.Engine {
	return s.engine
}

// registerStorefrontRoutes exposes the public booking surface. Tenants
// are addressed by slug so one deployment can serve many storefronts.
func (s *Server) registerStorefrontRoutes() {
	v1 := s.engine.Group("/v1/:tenant", s.TenantBySlug())

	v1.GET("/packages", s.ListPackages)
	v1.GET("/packages/:slug", s.GetPackage)
	v1.GET("/availability", s.GetAvailability)
	v1.POST("/checkout", s.CheckoutRateLimit(), s.CreateCheckout)
}

func (s *Server) registerWebhookRoutes() {
	webhooks := s.engine.Group("/webhooks")

	webhooks.POST("/payments/:provider", s.WebhookRateLimit(), s.HandlePaymentWebhook)
}

// registerAdminRoutes exposes the tenant back office. Tenants are
// addressed by the X-Tenant-ID header.
func (s *Server) registerAdminRoutes() {
	admin := s.engine.Group("/admin/v1", s.TenantByHeader())

	admin.GET("/packages", s.AdminListPackages)
	admin.POST("/packages", s.AdminCreatePackage)
	admin.PATCH("/packages/:id", s.AdminUpdatePackage)
	admin.DELETE("/packages/:id", s.AdminDeletePackage)

	admin.GET("/segments", s.AdminListSegments)
	admin.POST("/segments", s.AdminCreateSegment)
	admin.PATCH("/segments/:id", s.AdminUpdateSegment)
	admin.DELETE("/segments/:id", s.AdminDeleteSegment)

	admin.POST("/add-ons", s.AdminCreateAddOn)
	admin.PATCH("/add-ons/:id", s.AdminUpdateAddOn)
	admin.DELETE("/add-ons/:id", s.AdminDeleteAddOn)

	admin.GET("/blackouts", s.ListBlackouts)
	admin.POST("/blackouts", s.CreateBlackout)
	admin.DELETE("/blackouts/:id", s.DeleteBlackout)

	admin.GET("/bookings", s.ListBookings)
	admin.GET("/bookings/:id", s.GetBooking)
}
