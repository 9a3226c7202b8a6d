package dataset

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/Alias1177/SignalLab/models"
)

// LoadCandles reads candles from a .csv or .parquet file, sorted by time.
func LoadCandles(path string) ([]models.Candle, error) {
	var (
		candles []models.Candle
		err     error
	)
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".csv":
		candles, err = withFile(path, ReadCandlesCSV)
	case ".parquet":
		candles, err = ReadCandlesParquet(path)
	default:
		return nil, fmt.Errorf("unsupported candle file %q", ext)
	}
	if err != nil {
		return nil, err
	}
	sort.SliceStable(candles, func(i, j int) bool { return candles[i].Time < candles[j].Time })
	return candles, nil
}

// LoadSnapshots reads merged snapshots from a .csv or .parquet file, sorted by time.
func LoadSnapshots(path string) ([]models.IndicatorSnapshot, error) {
	var (
		data []models.IndicatorSnapshot
		err  error
	)
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".csv":
		data, err = withFile(path, ReadSnapshotsCSV)
	case ".parquet":
		data, err = ReadSnapshotsParquet(path)
	default:
		return nil, fmt.Errorf("unsupported snapshot file %q", ext)
	}
	if err != nil {
		return nil, err
	}
	sort.SliceStable(data, func(i, j int) bool { return data[i].Time < data[j].Time })
	return data, nil
}

// SaveSnapshots writes snapshots as .csv or .parquet depending on the extension.
func SaveSnapshots(path string, data []models.IndicatorSnapshot) error {
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".csv":
		f, err := os.Create(path)
		if err != nil {
			return err
		}
		if err := WriteSnapshotsCSV(f, data); err != nil {
			f.Close()
			return err
		}
		return f.Close()
	case ".parquet":
		return WriteSnapshotsParquet(path, data)
	default:
		return fmt.Errorf("unsupported snapshot file %q", ext)
	}
}

func withFile[T any](path string, read func(io.Reader) (T, error)) (T, error) {
	f, err := os.Open(path)
	if err != nil {
		var zero T
		return zero, err
	}
	defer f.Close()
	return read(f)
}
