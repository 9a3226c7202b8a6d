package backtest

import (
	"fmt"

	"github.com/Alias1177/SignalLab/internal/trading/risk"
	"github.com/Alias1177/SignalLab/models"
)

// DefaultDrawdownLookback is the trailing window, in periods, of the peak the
// drawdown guard measures against. A breach blocks entries until the old peak
// leaves the window.
const DefaultDrawdownLookback = 48

// Config is the flat backtest option set. Fee is charged per side as a
// fraction of the position value; PositionSizePct is the fraction of capital
// committed per trade. PeriodsPerYear 0 means unset; see WithTimeframe.
type Config struct {
	Fee                 float64 `yaml:"fee" json:"fee"`
	PositionSizePct     float64 `yaml:"positionSizePct" json:"positionSizePct"`
	MinHoldPeriods      int     `yaml:"minHoldPeriods" json:"minHoldPeriods"`
	MaxHoldPeriods      int     `yaml:"maxHoldPeriods" json:"maxHoldPeriods"`
	ConfirmationPeriods int     `yaml:"confirmationPeriods" json:"confirmationPeriods"`
	InitialCapital      float64 `yaml:"initialCapital" json:"initialCapital"`
	RiskFreeRate        float64 `yaml:"riskFreeRate" json:"riskFreeRate"`
	PeriodsPerYear      float64 `yaml:"periodsPerYear" json:"periodsPerYear"`
	LongOnly            bool    `yaml:"longOnly" json:"longOnly"`
	Compounding         bool    `yaml:"compounding" json:"compounding"`
	ExecNext            bool    `yaml:"execNext" json:"execNext"`
	SignalThreshold     float64 `yaml:"signalThreshold" json:"signalThreshold"`
	LegacyZeroAsMissing bool    `yaml:"legacyZeroAsMissing" json:"legacyZeroAsMissing"`

	risk.Config `yaml:",inline"`
}

// DefaultConfig returns the option set used when nothing is configured.
func DefaultConfig() Config {
	return Config{
		Fee:                 0.001,
		PositionSizePct:     1.0,
		MinHoldPeriods:      3,
		MaxHoldPeriods:      72,
		ConfirmationPeriods: 1,
		InitialCapital:      10000,
		RiskFreeRate:        0,
		LongOnly:            true,
		Compounding:         true,
		Config: risk.Config{
			StopLossPct:          0.05,
			TakeProfitPct:        0.10,
			CooldownPeriods:      2,
			MaxDailyTrades:       10,
			MaxConsecutiveLosses: 3,
			PauseAfterLosses:     12,
			MaxDrawdownLimit:     30,
			DrawdownLookback:     DefaultDrawdownLookback,
			MinCapital:           10,
			Dynamic: risk.DynamicConfig{
				Lookback:     20,
				SLMultiplier: 2,
				TPMultiplier: 3,
				SLClamp:      risk.Range{Min: 0.01, Max: 0.10},
				TPClamp:      risk.Range{Min: 0.02, Max: 0.30},
			},
		},
	}
}

// Validate rejects option values the engine cannot simulate.
func (c Config) Validate() error {
	if c.Fee < 0 || c.Fee >= 0.5 {
		return fmt.Errorf("fee must be within [0,0.5), got %g", c.Fee)
	}
	if c.PositionSizePct <= 0 || c.PositionSizePct > 1 {
		return fmt.Errorf("positionSizePct must be within (0,1], got %g", c.PositionSizePct)
	}
	if c.MinHoldPeriods < 0 || c.MaxHoldPeriods < 0 || c.ConfirmationPeriods < 0 {
		return fmt.Errorf("holding and confirmation periods must not be negative")
	}
	if c.InitialCapital <= 0 {
		return fmt.Errorf("initialCapital must be positive, got %g", c.InitialCapital)
	}
	if c.PeriodsPerYear < 0 {
		return fmt.Errorf("periodsPerYear must not be negative, got %g", c.PeriodsPerYear)
	}
	if c.SignalThreshold < 0 || c.SignalThreshold >= 1 {
		return fmt.Errorf("signalThreshold must be within [0,1), got %g", c.SignalThreshold)
	}
	if err := c.Config.Validate(); err != nil {
		return fmt.Errorf("risk: %w", err)
	}
	return nil
}

// WithTimeframe fills an unset PeriodsPerYear from the candle interval.
// An explicit value is kept.
func (c Config) WithTimeframe(interval string) Config {
	if c.PeriodsPerYear == 0 {
		c.PeriodsPerYear = models.PeriodsPerYear(interval)
	}
	return c
}
