package server

import (
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/smallbiznis/reservo/internal/ratelimit"
	"github.com/smallbiznis/reservo/internal/tenantctx"
)

const HeaderTenant = "X-Tenant-ID"

// TenantBySlug resolves the :tenant path segment into the request
// context for the public storefront routes.
func (s *Server) TenantBySlug() gin.HandlerFunc {
	return func(c *gin.Context) {
		slug := strings.TrimSpace(c.Param("tenant"))
		if slug == "" {
			AbortWithError(c, ErrInvalidRequest)
			return
		}

		tenant, err := s.tenantSvc.GetBySlug(c.Request.Context(), slug)
		if err != nil {
			AbortWithError(c, err)
			return
		}

		c.Request = c.Request.WithContext(tenantctx.WithTenantID(c.Request.Context(), tenant.ID))
		c.Next()
	}
}

// TenantByHeader resolves the X-Tenant-ID header for admin routes.
func (s *Server) TenantByHeader() gin.HandlerFunc {
	return func(c *gin.Context) {
		raw := strings.TrimSpace(c.GetHeader(HeaderTenant))
		if raw == "" {
			AbortWithError(c, ErrUnauthorized)
			return
		}

		tenantID, err := snowflake.ParseString(raw)
		if err != nil || tenantID == 0 {
			AbortWithError(c, ErrUnauthorized)
			return
		}

		if _, err := s.tenantSvc.GetByID(c.Request.Context(), tenantID); err != nil {
			AbortWithError(c, err)
			return
		}

		c.Request = c.Request.WithContext(tenantctx.WithTenantID(c.Request.Context(), tenantID))
		c.Next()
	}
}

func (s *Server) CheckoutRateLimit() gin.HandlerFunc {
	return s.rateLimit(s.limiters.Checkout)
}

func (s *Server) WebhookRateLimit() gin.HandlerFunc {
	return s.rateLimit(s.limiters.Webhook)
}

// rateLimit enforces a per-client token bucket. Limiter errors fail
// open: a Redis outage must not take checkout down with it.
func (s *Server) rateLimit(limiter *ratelimit.RouteLimiter) gin.HandlerFunc {
	return func(c *gin.Context) {
		if limiter == nil {
			c.Next()
			return
		}

		res, err := limiter.Allow(c.Request.Context(), c.ClientIP())
		if err != nil {
			s.log.Warn("rate limiter unavailable, allowing request", zap.Error(err))
			c.Next()
			return
		}
		if !res.Allowed {
			c.Header("Retry-After", res.RetryAfter.Round(time.Second).String())
			AbortWithError(c, ErrTooManyRequests)
			return
		}

		c.Next()
	}
}
