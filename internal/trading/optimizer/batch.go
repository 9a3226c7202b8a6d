package optimizer

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/Alias1177/SignalLab/models"
)

// Loader fetches the snapshot series of one symbol.
type Loader func(ctx context.Context, symbol string) ([]models.IndicatorSnapshot, error)

// SymbolResult is the outcome of optimizing one symbol. Error is set instead
// of Result when the symbol failed.
type SymbolResult struct {
	Symbol   string                     `json:"symbol"`
	Result   *models.OptimizationResult `json:"result,omitempty"`
	Error    string                     `json:"error,omitempty"`
	Duration time.Duration              `json:"duration"`
}

func (r SymbolResult) Failed() bool {
	return r.Error != ""
}

// OptimizeBatch optimizes every symbol with bounded concurrency. A failing
// symbol is recorded in its entry and does not stop the others. Symbols not
// started before ctx is cancelled are recorded with the context error.
func (o *Optimizer) OptimizeBatch(ctx context.Context, symbols []string, load Loader, candidates []Candidate) []SymbolResult {
	results := make([]SymbolResult, len(symbols))

	var g errgroup.Group
	g.SetLimit(o.cfg.BatchConcurrency)

	for i, sym := range symbols {
		i, sym := i, sym
		g.Go(func() error {
			start := time.Now()
			results[i] = SymbolResult{Symbol: sym}

			res, err := o.optimizeSymbol(ctx, sym, load, candidates)
			results[i].Duration = time.Since(start)
			if err != nil {
				results[i].Error = err.Error()
				o.logger.Warn().Err(err).Str("symbol", sym).Msg("symbol optimization failed")
				return nil
			}
			results[i].Result = res
			return nil
		})
	}
	_ = g.Wait()

	return results
}

func (o *Optimizer) optimizeSymbol(ctx context.Context, symbol string, load Loader, candidates []Candidate) (res *models.OptimizationResult, err error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic: %v", r)
		}
	}()

	data, err := load(ctx, symbol)
	if err != nil {
		return nil, fmt.Errorf("loading data: %w", err)
	}
	return o.Optimize(ctx, data, candidates)
}
