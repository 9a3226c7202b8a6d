package models

import "context"

// CandleClient is implemented by market data providers.
type CandleClient interface {
	GetCandles(ctx context.Context, symbol, interval string, count int) ([]Candle, error)
	GetHistoricalCandles(ctx context.Context, symbol, interval string, days int) ([]Candle, error)
}
