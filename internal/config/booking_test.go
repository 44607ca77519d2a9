package config

import "testing"

func TestValidateBookingConfig(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*BookingConfig)
		wantErr bool
	}{
		{name: "defaults", mutate: func(c *BookingConfig) {}},
		{name: "zero cache ttl", mutate: func(c *BookingConfig) { c.CatalogCacheTTLSeconds = 0 }, wantErr: true},
		{name: "negative horizon", mutate: func(c *BookingConfig) { c.AvailabilityHorizonDays = -1 }, wantErr: true},
		{name: "horizon beyond a year", mutate: func(c *BookingConfig) { c.AvailabilityHorizonDays = 400 }, wantErr: true},
		{name: "zero pending ttl", mutate: func(c *BookingConfig) { c.PendingTTLHours = 0 }, wantErr: true},
		{name: "zero sweep interval", mutate: func(c *BookingConfig) { c.SweepIntervalMinutes = 0 }, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultBookingConfig()
			tt.mutate(&cfg)
			err := validateBookingConfig(cfg)
			if tt.wantErr && err == nil {
				t.Fatalf("expected validation error")
			}
			if !tt.wantErr && err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
		})
	}
}

func TestStaticHolderServesFixedConfig(t *testing.T) {
	cfg := DefaultBookingConfig()
	cfg.AvailabilityHorizonDays = 30

	holder := NewStaticBookingConfigHolder(cfg)
	if got := holder.Get().AvailabilityHorizonDays; got != 30 {
		t.Fatalf("expected horizon 30, got %d", got)
	}
}
