package backtest

import (
	"errors"
	"fmt"
	"math"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/Alias1177/SignalLab/internal/signal"
	"github.com/Alias1177/SignalLab/internal/trading/risk"
	"github.com/Alias1177/SignalLab/models"
)

// MinSamples is the smallest dataset a single backtest accepts.
const MinSamples = 2

var (
	ErrEmptyDataset     = errors.New("empty dataset")
	ErrInsufficientData = errors.New("insufficient data")
)

// Engine simulates a single position over a snapshot series. An Engine holds
// only its configuration, so one value may serve concurrent runs.
type Engine struct {
	cfg    Config
	agg    *signal.Aggregator
	logger zerolog.Logger
}

// NewEngine validates the configuration and returns an engine.
func NewEngine(cfg Config) (*Engine, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid backtest config: %w", err)
	}
	return &Engine{
		cfg:    cfg,
		agg:    signal.NewAggregator(cfg.LegacyZeroAsMissing),
		logger: log.With().Str("component", "backtest").Logger(),
	}, nil
}

// Config returns the engine configuration.
func (e *Engine) Config() Config {
	return e.cfg
}

// Signals evaluates the per-indicator signals of every snapshot. They do not
// depend on weights and can be shared between runs over the same data.
func (e *Engine) Signals(data []models.IndicatorSnapshot) []models.SignalVector {
	return e.agg.Series(data)
}

// Run executes a backtest of the weighting scheme over the dataset.
func (e *Engine) Run(data []models.IndicatorSnapshot, weights models.WeightVector) (*models.BacktestResult, error) {
	if err := CheckDataset(data, MinSamples); err != nil {
		return nil, err
	}
	return e.RunSignals(data, e.Signals(data), weights)
}

// RunSignals is Run with precomputed signals; signals[i] must belong to data[i].
func (e *Engine) RunSignals(data []models.IndicatorSnapshot, signals []models.SignalVector, weights models.WeightVector) (*models.BacktestResult, error) {
	if err := CheckDataset(data, MinSamples); err != nil {
		return nil, err
	}
	if len(signals) != len(data) {
		return nil, fmt.Errorf("got %d signal vectors for %d snapshots", len(signals), len(data))
	}
	if err := weights.Validate(); err != nil {
		return nil, err
	}

	trades, equity := e.simulate(data, signals, weights)
	res := Evaluate(trades, equity, e.cfg.InitialCapital, MetricOptions{
		RiskFreeRate:   e.cfg.RiskFreeRate,
		PeriodsPerYear: e.cfg.PeriodsPerYear,
	})

	e.logger.Debug().
		Int("periods", len(data)).
		Int("trades", res.TradeCount).
		Float64("roi", res.ROI).
		Msg("backtest finished")
	return &res, nil
}

// CheckDataset verifies the dataset is large enough and strictly ascending in time.
func CheckDataset(data []models.IndicatorSnapshot, minSamples int) error {
	if len(data) == 0 {
		return ErrEmptyDataset
	}
	if len(data) < minSamples {
		return fmt.Errorf("%w: got %d periods, need at least %d", ErrInsufficientData, len(data), minSamples)
	}
	for i := 1; i < len(data); i++ {
		if data[i].Time <= data[i-1].Time {
			return fmt.Errorf("timestamps not strictly increasing at index %d", i)
		}
	}
	return nil
}

type position struct {
	dir        models.Direction
	entryPrice float64
	entryIndex int
	entryTime  int64
	size       float64
	stopLoss   float64
	takeProfit float64
}

// rawReturn is the price return of the position at price, before fees.
func (p *position) rawReturn(price float64) float64 {
	if p.entryPrice == 0 {
		return 0
	}
	r := (price - p.entryPrice) / p.entryPrice
	if p.dir == models.Short {
		return -r
	}
	return r
}

func (e *Engine) simulate(data []models.IndicatorSnapshot, signals []models.SignalVector, weights models.WeightVector) ([]models.Trade, []float64) {
	n := len(data)
	closes := make([]float64, n)
	for i := range data {
		closes[i] = data[i].Close
	}

	var (
		capital = e.cfg.InitialCapital
		guard   = risk.NewGuard(e.cfg.Config)
		equity  = make([]float64, n)
		trades  []models.Trade
		pos     *position

		streakSignal models.Signal
		streak       int
	)
	confirmAfter := e.cfg.ConfirmationPeriods
	if confirmAfter < 1 {
		confirmAfter = 1
	}

	closePosition := func(i int, reason models.ExitReason) {
		t := e.closeTrade(pos, i, data[i], reason)
		capital = math.Max(capital+t.Profit, 0)
		trades = append(trades, t)
		guard.Closed(i, t.IsWin)
		pos = nil
	}

	for i := 0; i < n; i++ {
		cons := signal.Combine(signals[i], weights, e.cfg.SignalThreshold)
		if cons.Signal != models.Neutral && cons.Signal == streakSignal {
			streak++
		} else {
			streakSignal = cons.Signal
			streak = 0
			if cons.Signal != models.Neutral {
				streak = 1
			}
		}
		confirmed := models.Neutral
		if streak >= confirmAfter {
			confirmed = streakSignal
		}

		justClosed := false
		if pos != nil && i > pos.entryIndex {
			if reason, ok := e.exitReason(pos, i, closes[i], confirmed); ok {
				closePosition(i, reason)
				justClosed = true
			}
		}

		if pos == nil && !justClosed && confirmed != models.Neutral {
			pos = e.tryOpen(i, data, closes, confirmed, capital, guard)
		}

		equity[i] = e.markToMarket(capital, pos, i, closes[i])
		guard.Observe(i, capital)
	}

	if pos != nil {
		closePosition(n-1, models.ExitEndOfData)
		equity[n-1] = capital
	}
	return trades, equity
}

// tryOpen opens a position in the direction of sig when every guard allows it.
func (e *Engine) tryOpen(i int, data []models.IndicatorSnapshot, closes []float64, sig models.Signal, capital float64, guard *risk.Guard) *position {
	dir := models.Long
	if sig == models.Sell {
		if e.cfg.LongOnly {
			return nil
		}
		dir = models.Short
	}

	entry := i
	if e.cfg.ExecNext {
		entry = i + 1
	}
	// the position must be able to exit on a later period
	if entry >= len(data)-1 {
		return nil
	}
	if guard.CanEnter(i, data[entry].Time, capital) != risk.Allowed {
		return nil
	}
	guard.Entered(data[entry].Time)

	base := capital
	if !e.cfg.Compounding {
		base = math.Min(e.cfg.InitialCapital, capital)
	}
	sl, tp := e.cfg.Thresholds(closes, entry)
	return &position{
		dir:        dir,
		entryPrice: closes[entry],
		entryIndex: entry,
		entryTime:  data[entry].Time,
		size:       base * e.cfg.PositionSizePct,
		stopLoss:   sl,
		takeProfit: tp,
	}
}

// exitReason evaluates the exit rules in priority order.
func (e *Engine) exitReason(p *position, i int, price float64, confirmed models.Signal) (models.ExitReason, bool) {
	ret := p.rawReturn(price)
	held := i - p.entryIndex
	switch {
	case ret <= p.stopLoss:
		return models.ExitStopLoss, true
	case ret >= p.takeProfit:
		return models.ExitTakeProfit, true
	case e.cfg.MaxHoldPeriods > 0 && held >= e.cfg.MaxHoldPeriods:
		return models.ExitMaxHold, true
	case confirmed.Opposite(p.dir) && held >= e.cfg.MinHoldPeriods:
		return models.ExitSignalReversal, true
	}
	return "", false
}

func (e *Engine) closeTrade(p *position, i int, snap models.IndicatorSnapshot, reason models.ExitReason) models.Trade {
	net := p.rawReturn(snap.Close) - 2*e.cfg.Fee
	return models.Trade{
		Direction:  p.dir,
		EntryPrice: p.entryPrice,
		ExitPrice:  snap.Close,
		EntryIndex: p.entryIndex,
		ExitIndex:  i,
		EntryTime:  p.entryTime,
		ExitTime:   snap.Time,
		NetReturn:  net,
		Profit:     p.size * net,
		Fees:       p.size * 2 * e.cfg.Fee,
		IsWin:      net > 0,
		ExitReason: reason,
	}
}

// markToMarket values capital plus the open position net of round-trip fees.
func (e *Engine) markToMarket(capital float64, p *position, i int, price float64) float64 {
	if p == nil || i < p.entryIndex {
		return capital
	}
	return math.Max(capital+p.size*(p.rawReturn(price)-2*e.cfg.Fee), 0)
}
