package source

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/Alias1177/SignalLab/internal/calculate"
	"github.com/Alias1177/SignalLab/internal/dataset"
	"github.com/Alias1177/SignalLab/models"
)

// Fetcher downloads candles for a symbol.
type Fetcher interface {
	GetHistoricalCandles(ctx context.Context, symbol, interval string, days int) ([]models.Candle, error)
}

var _ Fetcher = models.CandleClient(nil)

// Source turns downloaded candles into snapshot series. When CacheDir is set,
// candles are cached there as Parquet and reused on later loads.
type Source struct {
	Fetcher   Fetcher
	Params    calculate.Params
	Timeframe string
	Days      int
	CacheDir  string
	Refresh   bool

	logger zerolog.Logger
}

func New(f Fetcher, params calculate.Params, timeframe string, days int) *Source {
	return &Source{
		Fetcher:   f,
		Params:    params,
		Timeframe: timeframe,
		Days:      days,
		logger:    log.With().Str("component", "source").Logger(),
	}
}

// Load returns the snapshot series of symbol. Its signature matches
// optimizer.Loader.
func (s *Source) Load(ctx context.Context, symbol string) ([]models.IndicatorSnapshot, error) {
	candles, err := s.candles(ctx, symbol)
	if err != nil {
		return nil, err
	}
	return calculate.Snapshots(candles, s.Params)
}

func (s *Source) candles(ctx context.Context, symbol string) ([]models.Candle, error) {
	path := s.cachePath(symbol)
	if path != "" && !s.Refresh {
		if candles, err := dataset.ReadCandlesParquet(path); err == nil && len(candles) > 0 {
			s.logger.Debug().Str("symbol", symbol).Str("path", path).Msg("Using cached candles")
			return candles, nil
		}
	}

	if s.Fetcher == nil {
		return nil, fmt.Errorf("no candle fetcher configured for %s", symbol)
	}
	candles, err := s.Fetcher.GetHistoricalCandles(ctx, symbol, s.Timeframe, s.Days)
	if err != nil {
		return nil, err
	}

	if path != "" {
		if err := dataset.WriteCandlesParquet(path, candles); err != nil {
			s.logger.Warn().Err(err).Str("path", path).Msg("Failed to cache candles")
		}
	}
	return candles, nil
}

func (s *Source) cachePath(symbol string) string {
	if s.CacheDir == "" {
		return ""
	}
	name := strings.NewReplacer("/", "_", " ", "_").Replace(symbol)
	return filepath.Join(s.CacheDir, s.Timeframe, name+".parquet")
}

// LoadFile reads a snapshot series from disk. With candles set the file holds
// raw candles and the indicators are computed from them.
func LoadFile(path string, candles bool, params calculate.Params) ([]models.IndicatorSnapshot, error) {
	if !candles {
		return dataset.LoadSnapshots(path)
	}
	c, err := dataset.LoadCandles(path)
	if err != nil {
		return nil, err
	}
	return calculate.Snapshots(c, params)
}
