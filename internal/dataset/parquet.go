package dataset

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/parquet-go/parquet-go"

	"github.com/Alias1177/SignalLab/models"
)

// CandleRecord is the Parquet schema for candles.
type CandleRecord struct {
	Timestamp int64   `parquet:"timestamp"` // Unix seconds
	Open      float64 `parquet:"open"`
	High      float64 `parquet:"high"`
	Low       float64 `parquet:"low"`
	Close     float64 `parquet:"close"`
	Volume    int64   `parquet:"volume"`
}

// SnapshotRecord is the Parquet schema for merged snapshots. Absent values
// are stored as NaN.
type SnapshotRecord struct {
	Timestamp  int64   `parquet:"timestamp"`
	Close      float64 `parquet:"close"`
	SMAShort   float64 `parquet:"sma_short"`
	SMALong    float64 `parquet:"sma_long"`
	EMAShort   float64 `parquet:"ema_short"`
	EMALong    float64 `parquet:"ema_long"`
	RSI        float64 `parquet:"rsi"`
	MACD       float64 `parquet:"macd"`
	MACDSignal float64 `parquet:"macd_signal"`
	MACDHist   float64 `parquet:"macd_hist"`
	BBUpper    float64 `parquet:"bb_upper"`
	BBMiddle   float64 `parquet:"bb_middle"`
	BBLower    float64 `parquet:"bb_lower"`
	StochK     float64 `parquet:"stoch_k"`
	StochD     float64 `parquet:"stoch_d"`
	StochRSIK  float64 `parquet:"stoch_rsi_k"`
	StochRSID  float64 `parquet:"stoch_rsi_d"`
	PSAR       float64 `parquet:"psar"`
}

func snapshotRecord(s models.IndicatorSnapshot) SnapshotRecord {
	return SnapshotRecord{
		Timestamp:  s.Time,
		Close:      s.Close,
		SMAShort:   s.SMAShort,
		SMALong:    s.SMALong,
		EMAShort:   s.EMAShort,
		EMALong:    s.EMALong,
		RSI:        s.RSI,
		MACD:       s.MACD,
		MACDSignal: s.MACDSignal,
		MACDHist:   s.MACDHist,
		BBUpper:    s.BBUpper,
		BBMiddle:   s.BBMiddle,
		BBLower:    s.BBLower,
		StochK:     s.StochK,
		StochD:     s.StochD,
		StochRSIK:  s.StochRSIK,
		StochRSID:  s.StochRSID,
		PSAR:       s.PSAR,
	}
}

func (r SnapshotRecord) snapshot() models.IndicatorSnapshot {
	return models.IndicatorSnapshot{
		PricePoint: models.PricePoint{Time: r.Timestamp, Close: r.Close},
		SMAShort:   r.SMAShort,
		SMALong:    r.SMALong,
		EMAShort:   r.EMAShort,
		EMALong:    r.EMALong,
		RSI:        r.RSI,
		MACD:       r.MACD,
		MACDSignal: r.MACDSignal,
		MACDHist:   r.MACDHist,
		BBUpper:    r.BBUpper,
		BBMiddle:   r.BBMiddle,
		BBLower:    r.BBLower,
		StochK:     r.StochK,
		StochD:     r.StochD,
		StochRSIK:  r.StochRSIK,
		StochRSID:  r.StochRSID,
		PSAR:       r.PSAR,
	}
}

// WriteSnapshotsParquet writes snapshots to path, creating parent directories.
func WriteSnapshotsParquet(path string, data []models.IndicatorSnapshot) error {
	records := make([]SnapshotRecord, len(data))
	for i, s := range data {
		records[i] = snapshotRecord(s)
	}
	if err := writeParquetFile(path, records); err != nil {
		return fmt.Errorf("writing snapshots to %s: %w", path, err)
	}
	return nil
}

func ReadSnapshotsParquet(path string) ([]models.IndicatorSnapshot, error) {
	records, err := parquet.ReadFile[SnapshotRecord](path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	out := make([]models.IndicatorSnapshot, len(records))
	for i, r := range records {
		out[i] = r.snapshot()
	}
	return out, nil
}

// WriteCandlesParquet writes candles to path, creating parent directories.
func WriteCandlesParquet(path string, candles []models.Candle) error {
	records := make([]CandleRecord, len(candles))
	for i, c := range candles {
		records[i] = CandleRecord{
			Timestamp: c.Time,
			Open:      c.Open,
			High:      c.High,
			Low:       c.Low,
			Close:     c.Close,
			Volume:    c.Volume,
		}
	}
	if err := writeParquetFile(path, records); err != nil {
		return fmt.Errorf("writing candles to %s: %w", path, err)
	}
	return nil
}

func ReadCandlesParquet(path string) ([]models.Candle, error) {
	records, err := parquet.ReadFile[CandleRecord](path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	out := make([]models.Candle, len(records))
	for i, r := range records {
		out[i] = models.Candle{
			Time:   r.Timestamp,
			Open:   r.Open,
			High:   r.High,
			Low:    r.Low,
			Close:  r.Close,
			Volume: r.Volume,
		}
	}
	return out, nil
}

func writeParquetFile[T any](path string, records []T) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	return parquet.WriteFile(path, records)
}
