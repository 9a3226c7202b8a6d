package backtest

import "testing"

func TestWithTimeframe(t *testing.T) {
	tests := []struct {
		name     string
		explicit float64
		interval string
		want     float64
	}{
		{"unset hourly", 0, "1h", 24 * 365},
		{"unset daily", 0, "1day", 365},
		{"explicit 252 kept", 252, "1h", 252},
		{"explicit other kept", 100, "1day", 100},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			cfg.PeriodsPerYear = tt.explicit
			if got := cfg.WithTimeframe(tt.interval).PeriodsPerYear; got != tt.want {
				t.Errorf("WithTimeframe(%q).PeriodsPerYear = %v, want %v", tt.interval, got, tt.want)
			}
		})
	}
}

func TestConfigValidate(t *testing.T) {
	if err := DefaultConfig().Validate(); err != nil {
		t.Errorf("DefaultConfig().Validate() error = %v", err)
	}

	cfg := DefaultConfig()
	cfg.PeriodsPerYear = -1
	if err := cfg.Validate(); err == nil {
		t.Error("Validate() accepted a negative periodsPerYear")
	}
}
