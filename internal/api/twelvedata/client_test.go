package twelvedata

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func newTestClient(url string) *Client {
	return NewClient(ClientOptions{
		APIKey:          "test",
		BaseURL:         url,
		RequestsPerSec:  100,
		MaxRetries:      1,
		MaxRetryTimeout: time.Second,
	})
}

func TestGetCandles(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/time_series" {
			t.Errorf("path = %s, want /time_series", r.URL.Path)
		}
		q := r.URL.Query()
		if q.Get("symbol") != "EUR/USD" || q.Get("interval") != "1h" || q.Get("outputsize") != "2" {
			t.Errorf("query = %v", q)
		}
		w.Write([]byte(`{"meta":{"symbol":"EUR/USD","interval":"1h"},"values":[
			{"datetime":"2024-01-01 01:00:00","open":"1.1","high":"1.2","low":"1.0","close":"1.15"},
			{"datetime":"2024-01-01 00:00:00","open":"1.0","high":"1.1","low":"0.9","close":"1.05"}
		],"status":"ok"}`))
	}))
	defer srv.Close()

	candles, err := newTestClient(srv.URL).GetCandles(context.Background(), "EUR/USD", "1h", 2)
	if err != nil {
		t.Fatalf("GetCandles() error = %v", err)
	}
	if len(candles) != 2 {
		t.Fatalf("len(candles) = %d, want 2", len(candles))
	}
	if candles[0].Time != 1704067200 || candles[1].Time != 1704070800 {
		t.Errorf("times = %d, %d, want ascending from 1704067200", candles[0].Time, candles[1].Time)
	}
	if candles[1].Close != 1.15 {
		t.Errorf("Close = %v, want 1.15", candles[1].Close)
	}
}

func TestGetCandlesAPIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"code":400,"message":"invalid symbol","status":"error"}`))
	}))
	defer srv.Close()

	if _, err := newTestClient(srv.URL).GetCandles(context.Background(), "NOPE", "1h", 10); err == nil {
		t.Error("GetCandles() accepted an error response")
	}
}

func TestParseDatetime(t *testing.T) {
	tests := []struct {
		in      string
		want    int64
		wantErr bool
	}{
		{in: "2024-01-01 00:00:00", want: 1704067200},
		{in: "2024-01-02", want: 1704153600},
		{in: "01/02/2024", wantErr: true},
	}
	for _, tt := range tests {
		got, err := ParseDatetime(tt.in)
		if (err != nil) != tt.wantErr || got != tt.want {
			t.Errorf("ParseDatetime(%q) = %d, %v, want %d", tt.in, got, err, tt.want)
		}
	}
}
