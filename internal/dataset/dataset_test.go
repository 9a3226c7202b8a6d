package dataset

import (
	"bytes"
	"math"
	"path/filepath"
	"strings"
	"testing"

	"github.com/Alias1177/SignalLab/models"
)

func sampleSnapshots() []models.IndicatorSnapshot {
	out := make([]models.IndicatorSnapshot, 3)
	for i := range out {
		out[i] = models.NewSnapshot(models.PricePoint{Time: 1704067200 + int64(i)*3600, Close: 100 + float64(i)})
	}
	out[1].RSI = 28.5
	out[2].MACD = 0
	out[2].MACDSignal = -0.25
	return out
}

func sameSnapshots(t *testing.T, got, want []models.IndicatorSnapshot) {
	t.Helper()
	if len(got) != len(want) {
		t.Fatalf("len = %d, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i].PricePoint != want[i].PricePoint {
			t.Errorf("[%d] price = %+v, want %+v", i, got[i].PricePoint, want[i].PricePoint)
		}
		gv, wv := got[i].Values(), want[i].Values()
		for j := range wv {
			if math.IsNaN(*wv[j]) != math.IsNaN(*gv[j]) || (!math.IsNaN(*wv[j]) && *gv[j] != *wv[j]) {
				t.Errorf("[%d] %s = %v, want %v", i, models.ValueColumns[j], *gv[j], *wv[j])
			}
		}
	}
}

func TestParseTime(t *testing.T) {
	tests := []struct {
		in      string
		want    int64
		wantErr bool
	}{
		{in: "1704067200", want: 1704067200},
		{in: "2024-01-01T00:00:00Z", want: 1704067200},
		{in: "2024-01-01T02:00:00+02:00", want: 1704067200},
		{in: "2024-01-01 01:00:00", want: 1704070800},
		{in: "2024-01-02", want: 1704153600},
		{in: "yesterday", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseTime(tt.in)
			if (err != nil) != tt.wantErr || got != tt.want {
				t.Errorf("ParseTime(%q) = %d, %v, want %d", tt.in, got, err, tt.want)
			}
		})
	}
}

func TestReadCandlesCSV(t *testing.T) {
	in := "datetime,open,high,low,close,volume\n" +
		"2024-01-01 00:00:00,1,2,0.5,1.5,100\n" +
		"2024-01-01 01:00:00,,,,1.6,\n"
	candles, err := ReadCandlesCSV(strings.NewReader(in))
	if err != nil {
		t.Fatalf("ReadCandlesCSV() error = %v", err)
	}
	if len(candles) != 2 {
		t.Fatalf("len = %d, want 2", len(candles))
	}
	want := models.Candle{Time: 1704067200, Open: 1, High: 2, Low: 0.5, Close: 1.5, Volume: 100}
	if candles[0] != want {
		t.Errorf("candles[0] = %+v, want %+v", candles[0], want)
	}
	if c := candles[1]; c.Open != 1.6 || c.High != 1.6 || c.Low != 1.6 || c.Volume != 0 {
		t.Errorf("candles[1] = %+v, want OHL defaulted to close", c)
	}

	if _, err := ReadCandlesCSV(strings.NewReader("open,high\n1,2\n")); err == nil {
		t.Error("ReadCandlesCSV() accepted a header without time and close")
	}
	if _, err := ReadCandlesCSV(strings.NewReader("time,close\n1704067200,abc\n")); err == nil {
		t.Error("ReadCandlesCSV() accepted a non-numeric close")
	}
}

func TestSnapshotsCSVRoundTrip(t *testing.T) {
	want := sampleSnapshots()
	var buf bytes.Buffer
	if err := WriteSnapshotsCSV(&buf, want); err != nil {
		t.Fatalf("WriteSnapshotsCSV() error = %v", err)
	}
	got, err := ReadSnapshotsCSV(&buf)
	if err != nil {
		t.Fatalf("ReadSnapshotsCSV() error = %v", err)
	}
	sameSnapshots(t, got, want)
}

func TestReadSnapshotsCSVPartialColumns(t *testing.T) {
	got, err := ReadSnapshotsCSV(strings.NewReader("time,close,rsi\n1704067200,100,25\n"))
	if err != nil {
		t.Fatalf("ReadSnapshotsCSV() error = %v", err)
	}
	if got[0].RSI != 25 || !math.IsNaN(got[0].MACD) {
		t.Errorf("got %+v, want RSI 25 and MACD absent", got[0])
	}
}

func TestParquetRoundTrip(t *testing.T) {
	dir := t.TempDir()

	path := filepath.Join(dir, "nested", "snapshots.parquet")
	want := sampleSnapshots()
	if err := SaveSnapshots(path, want); err != nil {
		t.Fatalf("SaveSnapshots() error = %v", err)
	}
	got, err := LoadSnapshots(path)
	if err != nil {
		t.Fatalf("LoadSnapshots() error = %v", err)
	}
	sameSnapshots(t, got, want)

	candles := []models.Candle{
		{Time: 1704070800, Open: 2, High: 3, Low: 1, Close: 2.5, Volume: 7},
		{Time: 1704067200, Open: 1, High: 2, Low: 0.5, Close: 1.5, Volume: 5},
	}
	cpath := filepath.Join(dir, "candles.parquet")
	if err := WriteCandlesParquet(cpath, candles); err != nil {
		t.Fatalf("WriteCandlesParquet() error = %v", err)
	}
	loaded, err := LoadCandles(cpath)
	if err != nil {
		t.Fatalf("LoadCandles() error = %v", err)
	}
	if len(loaded) != 2 || loaded[0] != candles[1] || loaded[1] != candles[0] {
		t.Errorf("LoadCandles() = %+v, want sorted input", loaded)
	}
}

func TestLoadRejectsUnknownExtension(t *testing.T) {
	if _, err := LoadSnapshots("data.json"); err == nil {
		t.Error("LoadSnapshots() accepted .json")
	}
	if _, err := LoadCandles("data.xlsx"); err == nil {
		t.Error("LoadCandles() accepted .xlsx")
	}
}
