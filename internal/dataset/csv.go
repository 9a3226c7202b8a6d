package dataset

import (
	"encoding/csv"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/Alias1177/SignalLab/models"
)

var timeLayouts = []string{time.RFC3339, time.DateTime, time.DateOnly}

// ParseTime accepts epoch seconds, RFC3339, "2006-01-02 15:04:05" or a bare
// date. Zoneless values are UTC.
func ParseTime(s string) (int64, error) {
	s = strings.TrimSpace(s)
	if n, err := strconv.ParseInt(s, 10, 64); err == nil {
		return n, nil
	}
	for _, layout := range timeLayouts {
		if t, err := time.ParseInLocation(layout, s, time.UTC); err == nil {
			return t.Unix(), nil
		}
	}
	return 0, fmt.Errorf("unrecognized time %q", s)
}

type header map[string]int

func readHeader(r *csv.Reader) (header, error) {
	row, err := r.Read()
	if err != nil {
		return nil, fmt.Errorf("reading header: %w", err)
	}
	h := make(header, len(row))
	for i, name := range row {
		h[strings.ToLower(strings.TrimSpace(name))] = i
	}
	if _, ok := h["datetime"]; ok {
		if _, hasTime := h["time"]; !hasTime {
			h["time"] = h["datetime"]
		}
	}
	for _, col := range []string{"time", "close"} {
		if _, ok := h[col]; !ok {
			return nil, fmt.Errorf("missing %q column", col)
		}
	}
	return h, nil
}

// float returns the named column, NaN when the column is absent or empty.
func (h header) float(row []string, col string, line int) (float64, error) {
	i, ok := h[col]
	if !ok || i >= len(row) || strings.TrimSpace(row[i]) == "" {
		return math.NaN(), nil
	}
	v, err := strconv.ParseFloat(strings.TrimSpace(row[i]), 64)
	if err != nil {
		return 0, fmt.Errorf("line %d column %s: %w", line, col, err)
	}
	return v, nil
}

func (h header) time(row []string, line int) (int64, error) {
	ts, err := ParseTime(row[h["time"]])
	if err != nil {
		return 0, fmt.Errorf("line %d: %w", line, err)
	}
	return ts, nil
}

// ReadCandlesCSV reads candles from a CSV with a header row containing at
// least time and close. Missing open, high or low columns default to close.
func ReadCandlesCSV(r io.Reader) ([]models.Candle, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	h, err := readHeader(cr)
	if err != nil {
		return nil, err
	}

	var out []models.Candle
	for line := 2; ; line++ {
		row, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		c := models.Candle{}
		if c.Time, err = h.time(row, line); err != nil {
			return nil, err
		}
		vals := make(map[string]float64, 5)
		for _, col := range []string{"open", "high", "low", "close", "volume"} {
			if vals[col], err = h.float(row, col, line); err != nil {
				return nil, err
			}
		}
		if math.IsNaN(vals["close"]) {
			return nil, fmt.Errorf("line %d: empty close", line)
		}
		c.Close = vals["close"]
		c.Open = orDefault(vals["open"], c.Close)
		c.High = orDefault(vals["high"], c.Close)
		c.Low = orDefault(vals["low"], c.Close)
		if !math.IsNaN(vals["volume"]) {
			c.Volume = int64(vals["volume"])
		}
		out = append(out, c)
	}
	return out, nil
}

// ReadSnapshotsCSV reads merged snapshots. Indicator columns are named as in
// models.ValueColumns; absent columns and empty cells are NaN.
func ReadSnapshotsCSV(r io.Reader) ([]models.IndicatorSnapshot, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	h, err := readHeader(cr)
	if err != nil {
		return nil, err
	}

	var out []models.IndicatorSnapshot
	for line := 2; ; line++ {
		row, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		ts, err := h.time(row, line)
		if err != nil {
			return nil, err
		}
		closePrice, err := h.float(row, "close", line)
		if err != nil {
			return nil, err
		}
		s := models.NewSnapshot(models.PricePoint{Time: ts, Close: closePrice})
		for i, v := range s.Values() {
			if *v, err = h.float(row, models.ValueColumns[i], line); err != nil {
				return nil, err
			}
		}
		out = append(out, s)
	}
	return out, nil
}

// WriteSnapshotsCSV writes snapshots with a header row. NaN values are empty.
func WriteSnapshotsCSV(w io.Writer, data []models.IndicatorSnapshot) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(append([]string{"time", "close"}, models.ValueColumns...)); err != nil {
		return err
	}
	row := make([]string, 2+len(models.ValueColumns))
	for i := range data {
		row[0] = strconv.FormatInt(data[i].Time, 10)
		row[1] = formatF(data[i].Close)
		for j, v := range data[i].Values() {
			row[2+j] = formatF(*v)
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

func formatF(f float64) string {
	if math.IsNaN(f) {
		return ""
	}
	return strconv.FormatFloat(f, 'f', -1, 64)
}

func orDefault(v, def float64) float64 {
	if math.IsNaN(v) {
		return def
	}
	return v
}
