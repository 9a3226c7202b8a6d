package notify

import (
	"context"
	"fmt"
	"strings"

	"github.com/Alias1177/SignalLab/internal/trading/optimizer"
)

// Notifier reports finished optimization batches.
type Notifier interface {
	NotifyBatch(ctx context.Context, timeframe string, results []optimizer.SymbolResult) error
}

// Noop is used when no notification channel is configured.
type Noop struct{}

func (Noop) NotifyBatch(context.Context, string, []optimizer.SymbolResult) error { return nil }

// FormatBatch renders a plain-text summary with one line per symbol.
func FormatBatch(timeframe string, results []optimizer.SymbolResult) string {
	var b strings.Builder
	failed := 0
	for _, r := range results {
		if r.Failed() {
			failed++
		}
	}
	fmt.Fprintf(&b, "Weight optimization %s: %d symbols, %d failed\n", timeframe, len(results), failed)

	for _, r := range results {
		if r.Failed() {
			fmt.Fprintf(&b, "\n❌ %s: %s", r.Symbol, r.Error)
			continue
		}
		p := r.Result.Performance
		fmt.Fprintf(&b, "\n✅ %s [%s] ROI %.2f%%, win %.1f%%, DD %.2f%%, trades %d",
			r.Symbol, r.Result.BestComboLabel, p.ROI, p.WinRate, p.MaxDrawdown, p.TradeCount)
	}
	return b.String()
}
