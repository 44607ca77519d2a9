package observability

import (
	"errors"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/fx"
)

// Metrics exposes Prometheus observability primitives for the booking engine.
type Metrics struct {
	WebhookEvents        *prometheus.CounterVec
	CheckoutResults      *prometheus.CounterVec
	CatalogCacheLookups  *prometheus.CounterVec
	AvailabilityDegraded prometheus.Counter
	BookingConflicts     prometheus.Counter
	PendingExpired       prometheus.Counter
	CheckoutDuration     prometheus.Histogram
}

// NewMetrics registers and returns Prometheus metrics.
func NewMetrics() (*Metrics, error) {
	m := &Metrics{
		WebhookEvents: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "reservo_webhook_events_total",
			Help: "Payment webhook outcomes by result.",
		}, []string{"result"}),
		CheckoutResults: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "reservo_checkout_total",
			Help: "Checkout creation outcomes by result.",
		}, []string{"result"}),
		CatalogCacheLookups: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "reservo_catalog_cache_lookups_total",
			Help: "Catalog cache lookups by outcome.",
		}, []string{"outcome"}),
		AvailabilityDegraded: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "reservo_availability_degraded_total",
			Help: "Availability checks that failed open on a calendar provider error.",
		}),
		BookingConflicts: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "reservo_booking_conflicts_total",
			Help: "Webhook confirmations that lost the date race.",
		}),
		PendingExpired: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "reservo_pending_expired_total",
			Help: "Stale pending bookings cancelled by housekeeping.",
		}),
		CheckoutDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "reservo_checkout_duration_seconds",
			Help:    "Checkout creation latency including the gateway call.",
			Buckets: prometheus.DefBuckets,
		}),
	}

	collectors := []prometheus.Collector{
		m.WebhookEvents,
		m.CheckoutResults,
		m.CatalogCacheLookups,
		m.AvailabilityDegraded,
		m.BookingConflicts,
		m.PendingExpired,
		m.CheckoutDuration,
	}
	for _, c := range collectors {
		if err := prometheus.Register(c); err != nil {
			if are := (prometheus.AlreadyRegisteredError{}); errors.As(err, &are) {
				continue
			}
			return nil, err
		}
	}
	return m, nil
}

var Module = fx.Module("observability",
	fx.Provide(NewMetrics),
)
