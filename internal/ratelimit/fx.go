package ratelimit

import (
	redis "github.com/redis/go-redis/v9"
	"go.uber.org/fx"
	"go.uber.org/zap"

	"github.com/smallbiznis/reservo/internal/config"
)

// NewRedisClient returns nil when no Redis address is configured; the
// limiters and locker degrade to no-ops in that case.
func NewRedisClient(cfg config.Config, log *zap.Logger) *redis.Client {
	if cfg.RateLimit.RedisAddr == "" {
		if cfg.RateLimit.Enabled {
			log.Warn("rate limiting enabled but REDIS_ADDR is empty, limiters disabled")
		}
		return nil
	}
	return redis.NewClient(&redis.Options{
		Addr:     cfg.RateLimit.RedisAddr,
		Password: cfg.RateLimit.RedisPassword,
		DB:       cfg.RateLimit.RedisDB,
	})
}

var Module = fx.Module("rate.limit",
	fx.Provide(
		NewRedisClient,
		NewTokenBucket,
		NewLocker,
		NewLimiters,
	),
)
