package source

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/Alias1177/SignalLab/internal/calculate"
	"github.com/Alias1177/SignalLab/models"
)

type fakeFetcher struct {
	calls int
	err   error
}

func (f *fakeFetcher) GetHistoricalCandles(_ context.Context, _, _ string, days int) ([]models.Candle, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	out := make([]models.Candle, days*24)
	for i := range out {
		p := 100 + float64(i%17)
		out[i] = models.Candle{Time: 1704067200 + int64(i)*3600, Open: p, High: p + 1, Low: p - 1, Close: p}
	}
	return out, nil
}

func TestLoadComputesSnapshots(t *testing.T) {
	f := &fakeFetcher{}
	s := New(f, calculate.DefaultParams(), "1h", 5)

	data, err := s.Load(context.Background(), "EUR/USD")
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if len(data) != 120 {
		t.Fatalf("len = %d, want 120", len(data))
	}
	if !data[len(data)-1].Complete() {
		t.Error("last snapshot should carry every indicator")
	}
}

func TestLoadUsesParquetCache(t *testing.T) {
	f := &fakeFetcher{}
	s := New(f, calculate.DefaultParams(), "1h", 3)
	s.CacheDir = t.TempDir()

	for i := 0; i < 2; i++ {
		if _, err := s.Load(context.Background(), "EUR/USD"); err != nil {
			t.Fatalf("Load() error = %v", err)
		}
	}
	if f.calls != 1 {
		t.Errorf("fetcher calls = %d, want 1", f.calls)
	}
	if _, err := os.Stat(filepath.Join(s.CacheDir, "1h", "EUR_USD.parquet")); err != nil {
		t.Errorf("cache file missing: %v", err)
	}

	s.Refresh = true
	if _, err := s.Load(context.Background(), "EUR/USD"); err != nil {
		t.Fatal(err)
	}
	if f.calls != 2 {
		t.Errorf("fetcher calls after refresh = %d, want 2", f.calls)
	}
}

func TestLoadPropagatesFetchErrors(t *testing.T) {
	s := New(&fakeFetcher{err: errors.New("quota exceeded")}, calculate.DefaultParams(), "1h", 3)
	if _, err := s.Load(context.Background(), "EUR/USD"); err == nil {
		t.Error("Load() swallowed the fetch error")
	}
	if _, err := New(nil, calculate.DefaultParams(), "1h", 3).Load(context.Background(), "X"); err == nil {
		t.Error("Load() without fetcher succeeded")
	}
}
