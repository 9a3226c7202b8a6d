package scheduler

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/Alias1177/SignalLab/internal/database"
	"github.com/Alias1177/SignalLab/internal/notify"
	"github.com/Alias1177/SignalLab/internal/trading/optimizer"
	"github.com/Alias1177/SignalLab/models"
)

// Runner optimizes a symbol list, persists the winners and reports the batch.
type Runner struct {
	Optimizer  *optimizer.Optimizer
	Store      database.WeightStore
	Notifier   notify.Notifier
	Load       optimizer.Loader
	Candidates []optimizer.Candidate
	Timeframe  string
	// Force re-optimizes symbols that already have stored weights.
	Force bool

	logger zerolog.Logger
}

func NewRunner(opt *optimizer.Optimizer, store database.WeightStore, n notify.Notifier, load optimizer.Loader, candidates []optimizer.Candidate, timeframe string) *Runner {
	if n == nil {
		n = notify.Noop{}
	}
	return &Runner{
		Optimizer:  opt,
		Store:      store,
		Notifier:   n,
		Load:       load,
		Candidates: candidates,
		Timeframe:  timeframe,
		logger:     log.With().Str("component", "runner").Logger(),
	}
}

func (r *Runner) key(symbol string) database.Key {
	return database.Key{
		Symbol:         symbol,
		Timeframe:      r.Timeframe,
		TrainingWindow: r.Optimizer.Config().TrainingWindow,
	}
}

// RunOnce processes every symbol. Symbols with a stored record are answered
// from the store unless Force is set. The returned slice follows symbols.
func (r *Runner) RunOnce(ctx context.Context, symbols []string) ([]optimizer.SymbolResult, error) {
	start := time.Now()
	results := make([]optimizer.SymbolResult, len(symbols))

	var (
		pending []string
		slots   []int
	)
	for i, sym := range symbols {
		results[i].Symbol = sym
		if !r.Force && r.Store != nil {
			rec, err := r.Store.Get(ctx, r.key(sym))
			if err == nil {
				results[i].Result = recordResult(rec)
				r.logger.Info().Str("symbol", sym).Str("combo", rec.ComboLabel).Msg("Reusing stored weights")
				continue
			}
			if !errors.Is(err, database.ErrNotFound) {
				r.logger.Warn().Err(err).Str("symbol", sym).Msg("Stored weights lookup failed")
			}
		}
		pending = append(pending, sym)
		slots = append(slots, i)
	}

	for j, res := range r.Optimizer.OptimizeBatch(ctx, pending, r.Load, r.Candidates) {
		if !res.Failed() && r.Store != nil {
			if err := r.Store.Save(ctx, database.NewWeightRecord(r.key(res.Symbol), res.Result)); err != nil {
				r.logger.Error().Err(err).Str("symbol", res.Symbol).Msg("Failed to store weights")
				res.Error = "store: " + err.Error()
			}
		}
		results[slots[j]] = res
	}

	failed := 0
	for _, res := range results {
		if res.Failed() {
			failed++
		}
	}
	r.logger.Info().
		Int("symbols", len(symbols)).
		Int("optimized", len(pending)).
		Int("failed", failed).
		Dur("took", time.Since(start)).
		Msg("Batch finished")

	if err := r.Notifier.NotifyBatch(ctx, r.Timeframe, results); err != nil {
		return results, err
	}
	return results, nil
}

// recordResult rebuilds the summary part of an optimization result from a
// stored record. Candidate details are not persisted.
func recordResult(rec *database.WeightRecord) *models.OptimizationResult {
	return &models.OptimizationResult{
		BestWeights:    rec.Weights,
		BestComboLabel: rec.ComboLabel,
		Performance: models.BacktestResult{
			ROI:          rec.ROI,
			WinRate:      rec.WinRate,
			MaxDrawdown:  rec.MaxDrawdown,
			SharpeRatio:  rec.SharpeRatio,
			SortinoRatio: rec.SortinoRatio,
			ProfitFactor: rec.ProfitFactor,
			TradeCount:   rec.TradeCount,
		},
	}
}
