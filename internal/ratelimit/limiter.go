package ratelimit

import (
	"context"

	"github.com/smallbiznis/reservo/internal/config"
)

// RouteLimiter guards one route class with a token bucket keyed per
// caller. A nil limiter (rate limiting disabled or Redis missing)
// allows everything.
type RouteLimiter struct {
	bucket *TokenBucket
	prefix string
	rate   float64
	burst  int
}

func newRouteLimiter(bucket *TokenBucket, prefix string, rate float64, burst int) *RouteLimiter {
	if bucket == nil || rate <= 0 || burst <= 0 {
		return nil
	}
	return &RouteLimiter{bucket: bucket, prefix: prefix, rate: rate, burst: burst}
}

func (l *RouteLimiter) Allow(ctx context.Context, callerKey string) (*Result, error) {
	if l == nil {
		return &Result{Allowed: true}, nil
	}
	return l.bucket.Allow(ctx, l.prefix+":"+callerKey, l.rate, l.burst)
}

// Limiters groups the per-surface rate limiters.
type Limiters struct {
	Checkout *RouteLimiter
	Webhook  *RouteLimiter
}

func NewLimiters(cfg config.Config, bucket *TokenBucket) Limiters {
	if !cfg.RateLimit.Enabled {
		return Limiters{}
	}
	return Limiters{
		Checkout: newRouteLimiter(bucket, "ratelimit:checkout", cfg.RateLimit.CheckoutRate, cfg.RateLimit.CheckoutBurst),
		Webhook:  newRouteLimiter(bucket, "ratelimit:webhook", cfg.RateLimit.WebhookRate, cfg.RateLimit.WebhookBurst),
	}
}
