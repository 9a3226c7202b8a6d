// Package risk holds the money-management rules applied by the backtest
// engine: effective stop-loss / take-profit levels and the entry guards.
package risk

import (
	"fmt"
	"math"
)

// Range is an inclusive clamp for a positive magnitude.
type Range struct {
	Min float64 `yaml:"min" json:"min"`
	Max float64 `yaml:"max" json:"max"`
}

func (r Range) clamp(v float64) float64 {
	return math.Min(math.Max(v, r.Min), r.Max)
}

// DynamicConfig scales stop-loss and take-profit with recent volatility.
type DynamicConfig struct {
	Enabled      bool    `yaml:"enabled" json:"enabled"`
	Lookback     int     `yaml:"lookback" json:"lookback"`
	SLMultiplier float64 `yaml:"slMultiplier" json:"slMultiplier"`
	TPMultiplier float64 `yaml:"tpMultiplier" json:"tpMultiplier"`
	SLClamp      Range   `yaml:"slClamp" json:"slClamp"`
	TPClamp      Range   `yaml:"tpClamp" json:"tpClamp"`
}

// Config is the risk part of the backtest option set. Stop-loss and
// take-profit are fractions of the entry price (0.05 = 5%), the drawdown
// limit is a percentage of peak capital.
type Config struct {
	StopLossPct          float64       `yaml:"stopLossPct" json:"stopLossPct"`
	TakeProfitPct        float64       `yaml:"takeProfitPct" json:"takeProfitPct"`
	CooldownPeriods      int           `yaml:"cooldownPeriods" json:"cooldownPeriods"`
	MaxDailyTrades       int           `yaml:"maxDailyTrades" json:"maxDailyTrades"`
	MaxConsecutiveLosses int           `yaml:"maxConsecutiveLosses" json:"maxConsecutiveLosses"`
	PauseAfterLosses     int           `yaml:"pauseAfterLosses" json:"pauseAfterLosses"`
	MaxDrawdownLimit     float64       `yaml:"maxDrawdownLimit" json:"maxDrawdownLimit"`
	DrawdownLookback     int           `yaml:"drawdownLookback" json:"drawdownLookback"`
	MinCapital           float64       `yaml:"minCapital" json:"minCapital"`
	Dynamic              DynamicConfig `yaml:"dynamicRisk" json:"dynamicRisk"`
}

// Validate checks value ranges.
func (c Config) Validate() error {
	if c.StopLossPct <= 0 {
		return fmt.Errorf("stopLossPct must be positive, got %g", c.StopLossPct)
	}
	if c.TakeProfitPct <= 0 {
		return fmt.Errorf("takeProfitPct must be positive, got %g", c.TakeProfitPct)
	}
	if c.CooldownPeriods < 0 || c.MaxDailyTrades < 0 || c.MaxConsecutiveLosses < 0 || c.PauseAfterLosses < 0 || c.DrawdownLookback < 0 {
		return fmt.Errorf("period counts must not be negative")
	}
	if c.MaxDrawdownLimit < 0 || c.MaxDrawdownLimit > 100 {
		return fmt.Errorf("maxDrawdownLimit must be within [0,100], got %g", c.MaxDrawdownLimit)
	}
	if c.MinCapital < 0 {
		return fmt.Errorf("minCapital must not be negative, got %g", c.MinCapital)
	}
	d := c.Dynamic
	if !d.Enabled {
		return nil
	}
	if d.Lookback < 2 {
		return fmt.Errorf("dynamicRisk.lookback must be at least 2, got %d", d.Lookback)
	}
	if d.SLMultiplier <= 0 || d.TPMultiplier <= 0 {
		return fmt.Errorf("dynamicRisk multipliers must be positive")
	}
	if d.SLClamp.Min < 0 || d.SLClamp.Min > d.SLClamp.Max {
		return fmt.Errorf("dynamicRisk.slClamp is invalid: %+v", d.SLClamp)
	}
	if d.TPClamp.Min < 0 || d.TPClamp.Min > d.TPClamp.Max {
		return fmt.Errorf("dynamicRisk.tpClamp is invalid: %+v", d.TPClamp)
	}
	return nil
}

// Volatility is the sample standard deviation of period-over-period returns
// over the lookback window ending at index end. ok is false when the window
// holds fewer than two returns.
func Volatility(closes []float64, end, lookback int) (vol float64, ok bool) {
	start := end - lookback
	if start < 0 {
		start = 0
	}
	returns := make([]float64, 0, end-start)
	for i := start + 1; i <= end && i < len(closes); i++ {
		if closes[i-1] == 0 {
			continue
		}
		returns = append(returns, (closes[i]-closes[i-1])/closes[i-1])
	}
	if len(returns) < 2 {
		return 0, false
	}

	var mean float64
	for _, r := range returns {
		mean += r
	}
	mean /= float64(len(returns))

	var sq float64
	for _, r := range returns {
		sq += (r - mean) * (r - mean)
	}
	return math.Sqrt(sq / float64(len(returns)-1)), true
}

// Thresholds returns the effective stop-loss (negative) and take-profit
// (positive) returns at index i.
func (c Config) Thresholds(closes []float64, i int) (stopLoss, takeProfit float64) {
	stopLoss, takeProfit = -c.StopLossPct, c.TakeProfitPct
	if !c.Dynamic.Enabled {
		return stopLoss, takeProfit
	}
	vol, ok := Volatility(closes, i, c.Dynamic.Lookback)
	if !ok {
		return stopLoss, takeProfit
	}
	stopLoss = -c.Dynamic.SLClamp.clamp(c.Dynamic.SLMultiplier * vol)
	takeProfit = math.Max(c.Dynamic.TPClamp.clamp(c.Dynamic.TPMultiplier*vol), c.TakeProfitPct)
	return stopLoss, takeProfit
}
