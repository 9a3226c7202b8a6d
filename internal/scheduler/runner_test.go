package scheduler

import (
	"context"
	"errors"
	"path/filepath"
	"sync"
	"testing"

	"github.com/Alias1177/SignalLab/internal/database"
	"github.com/Alias1177/SignalLab/internal/trading/backtest"
	"github.com/Alias1177/SignalLab/internal/trading/optimizer"
	"github.com/Alias1177/SignalLab/models"
)

type countingLoader struct {
	mu    sync.Mutex
	calls map[string]int
}

func (l *countingLoader) load(_ context.Context, symbol string) ([]models.IndicatorSnapshot, error) {
	l.mu.Lock()
	l.calls[symbol]++
	l.mu.Unlock()
	if symbol == "BAD" {
		return nil, errors.New("no data")
	}
	out := make([]models.IndicatorSnapshot, 150)
	for i := range out {
		out[i] = models.NewSnapshot(models.PricePoint{Time: 1704067200 + int64(i)*3600, Close: 100 + float64(i)})
		out[i].RSI = 10
	}
	return out, nil
}

type recordingNotifier struct {
	batches [][]optimizer.SymbolResult
}

func (n *recordingNotifier) NotifyBatch(_ context.Context, _ string, results []optimizer.SymbolResult) error {
	n.batches = append(n.batches, results)
	return nil
}

func newRunner(t *testing.T) (*Runner, *countingLoader, *recordingNotifier, database.WeightStore) {
	t.Helper()
	store, err := database.NewSQLite(filepath.Join(t.TempDir(), "w.db"))
	if err != nil {
		t.Fatalf("NewSQLite() error = %v", err)
	}
	t.Cleanup(func() { store.Close() })

	opt, err := optimizer.New(backtest.DefaultConfig(), optimizer.DefaultConfig())
	if err != nil {
		t.Fatalf("optimizer.New() error = %v", err)
	}
	loader := &countingLoader{calls: map[string]int{}}
	n := &recordingNotifier{}
	return NewRunner(opt, store, n, loader.load, optimizer.Combos(), "1h"), loader, n, store
}

func TestRunOnceStoresAndReuses(t *testing.T) {
	ctx := context.Background()
	r, loader, n, store := newRunner(t)
	symbols := []string{"EUR/USD", "BAD", "GBP/USD"}

	first, err := r.RunOnce(ctx, symbols)
	if err != nil {
		t.Fatalf("RunOnce() error = %v", err)
	}
	for i, res := range first {
		if res.Symbol != symbols[i] {
			t.Errorf("results[%d] = %s, want %s", i, res.Symbol, symbols[i])
		}
	}
	if !first[1].Failed() || first[0].Failed() || first[2].Failed() {
		t.Fatalf("failures = %v/%v/%v, want only BAD", first[0].Error, first[1].Error, first[2].Error)
	}

	rec, err := store.Get(ctx, database.Key{Symbol: "EUR/USD", Timeframe: "1h"})
	if err != nil {
		t.Fatalf("stored record missing: %v", err)
	}
	if rec.ComboLabel != first[0].Result.BestComboLabel {
		t.Errorf("stored combo = %q, want %q", rec.ComboLabel, first[0].Result.BestComboLabel)
	}

	second, err := r.RunOnce(ctx, symbols)
	if err != nil {
		t.Fatalf("RunOnce() error = %v", err)
	}
	if loader.calls["EUR/USD"] != 1 || loader.calls["BAD"] != 2 {
		t.Errorf("loader calls = %v, want EUR/USD reused and BAD retried", loader.calls)
	}
	if second[0].Result.BestWeights != first[0].Result.BestWeights {
		t.Errorf("reused weights = %v, want %v", second[0].Result.BestWeights, first[0].Result.BestWeights)
	}

	r.Force = true
	if _, err := r.RunOnce(ctx, symbols[:1]); err != nil {
		t.Fatal(err)
	}
	if loader.calls["EUR/USD"] != 2 {
		t.Errorf("forced run did not reload EUR/USD: %v", loader.calls)
	}
	if len(n.batches) != 3 {
		t.Errorf("notified %d batches, want 3", len(n.batches))
	}
}

func TestSchedulerRegister(t *testing.T) {
	r, _, _, _ := newRunner(t)
	s := NewScheduler(context.Background(), r, []string{"EUR/USD"})
	if err := s.Register("0 0 2 * * *"); err != nil {
		t.Errorf("Register() error = %v", err)
	}
	if err := s.Register("not a cron"); err == nil {
		t.Error("Register() accepted an invalid spec")
	}

	s.RunNow()
	if _, err := r.Store.Get(context.Background(), database.Key{Symbol: "EUR/USD", Timeframe: "1h"}); err != nil {
		t.Errorf("RunNow() did not store weights: %v", err)
	}
}
