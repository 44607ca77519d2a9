package config

import (
	"errors"
	"log"
	"strings"
	"sync/atomic"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"
)

// BookingConfig holds operational tunables that admins adjust without a
// redeploy: cache lifetimes, the availability horizon shown to
// storefronts, and how long an unpaid checkout may linger before
// housekeeping cancels it.
type BookingConfig struct {
	CatalogCacheTTLSeconds  int `mapstructure:"catalogCacheTtlSeconds"`
	AvailabilityHorizonDays int `mapstructure:"availabilityHorizonDays"`
	PendingTTLHours         int `mapstructure:"pendingTtlHours"`
	SweepIntervalMinutes    int `mapstructure:"sweepIntervalMinutes"`
}

func DefaultBookingConfig() BookingConfig {
	return BookingConfig{
		CatalogCacheTTLSeconds:  900,
		AvailabilityHorizonDays: 60,
		PendingTTLHours:         48,
		SweepIntervalMinutes:    15,
	}
}

type BookingConfigHolder struct {
	current atomic.Value // holds BookingConfig
}

func NewBookingConfigHolder() (*BookingConfigHolder, error) {
	v := viper.New()

	v.SetConfigName("booking")
	v.SetConfigType("yml")
	v.AddConfigPath("/var/lib/reservo/config")
	v.AddConfigPath("/etc/reservo")
	v.AddConfigPath(".")

	v.SetEnvPrefix("RESERVO")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	defaults := DefaultBookingConfig()
	v.SetDefault("booking.catalogCacheTtlSeconds", defaults.CatalogCacheTTLSeconds)
	v.SetDefault("booking.availabilityHorizonDays", defaults.AvailabilityHorizonDays)
	v.SetDefault("booking.pendingTtlHours", defaults.PendingTTLHours)
	v.SetDefault("booking.sweepIntervalMinutes", defaults.SweepIntervalMinutes)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, err
		}
	}

	var cfg BookingConfig
	if err := v.UnmarshalKey("booking", &cfg); err != nil {
		return nil, err
	}
	if err := validateBookingConfig(cfg); err != nil {
		return nil, err
	}

	holder := &BookingConfigHolder{}
	holder.current.Store(cfg)

	v.WatchConfig()
	v.OnConfigChange(func(e fsnotify.Event) {
		var updated BookingConfig
		if err := v.UnmarshalKey("booking", &updated); err != nil {
			log.Printf("[booking-config] reload failed: %v", err)
			return
		}
		if err := validateBookingConfig(updated); err != nil {
			log.Printf("[booking-config] invalid config ignored: %v", err)
			return
		}
		holder.current.Store(updated)
		log.Printf("[booking-config] reloaded from %s", e.Name)
	})

	return holder, nil
}

// NewStaticBookingConfigHolder wraps a fixed config, for tests.
func NewStaticBookingConfigHolder(cfg BookingConfig) *BookingConfigHolder {
	holder := &BookingConfigHolder{}
	holder.current.Store(cfg)
	return holder
}

func (h *BookingConfigHolder) Get() BookingConfig {
	return h.current.Load().(BookingConfig)
}

func validateBookingConfig(cfg BookingConfig) error {
	if cfg.CatalogCacheTTLSeconds <= 0 {
		return errors.New("booking.catalogCacheTtlSeconds must be positive")
	}
	if cfg.AvailabilityHorizonDays <= 0 || cfg.AvailabilityHorizonDays > 366 {
		return errors.New("booking.availabilityHorizonDays must be in (0, 366]")
	}
	if cfg.PendingTTLHours <= 0 {
		return errors.New("booking.pendingTtlHours must be positive")
	}
	if cfg.SweepIntervalMinutes <= 0 {
		return errors.New("booking.sweepIntervalMinutes must be positive")
	}
	return nil
}
