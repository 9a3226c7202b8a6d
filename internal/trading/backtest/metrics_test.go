package backtest

import (
	"math"
	"testing"

	"github.com/Alias1177/SignalLab/models"
)

func TestEvaluate(t *testing.T) {
	trades := []models.Trade{
		{EntryIndex: 0, ExitIndex: 2, NetReturn: 0.10, Profit: 1000, IsWin: true, ExitReason: models.ExitTakeProfit},
		{EntryIndex: 3, ExitIndex: 4, NetReturn: -0.05, Profit: -550, ExitReason: models.ExitStopLoss},
		{EntryIndex: 5, ExitIndex: 7, NetReturn: -0.01, Profit: -104.5, ExitReason: models.ExitSignalReversal},
	}
	equity := []float64{10000, 10500, 11000, 11000, 10450, 10450, 10400, 10345.5}

	res := Evaluate(trades, equity, 10000, MetricOptions{PeriodsPerYear: 252})

	if res.FinalCapital != 10345.5 {
		t.Errorf("FinalCapital = %v, want 10345.5", res.FinalCapital)
	}
	if want := (10345.5 - 10000) / 10000.0 * 100; res.ROI != want {
		t.Errorf("ROI = %v, want %v", res.ROI, want)
	}
	if math.Abs(res.WinRate-100.0/3) > 1e-12 {
		t.Errorf("WinRate = %v, want 33.33", res.WinRate)
	}
	if want := 1000 / (550 + 104.5); math.Abs(res.ProfitFactor-want) > 1e-12 {
		t.Errorf("ProfitFactor = %v, want %v", res.ProfitFactor, want)
	}
	if want := (11000 - 10345.5) / 11000 * 100; math.Abs(res.MaxDrawdown-want) > 1e-9 {
		t.Errorf("MaxDrawdown = %v, want %v", res.MaxDrawdown, want)
	}
	if res.MaxConsecutiveWins != 1 || res.MaxConsecutiveLosses != 2 {
		t.Errorf("consecutive = %d/%d, want 1/2", res.MaxConsecutiveWins, res.MaxConsecutiveLosses)
	}
	if res.ExitReasons[models.ExitStopLoss] != 1 || res.ExitReasons[models.ExitTakeProfit] != 1 {
		t.Errorf("ExitReasons = %v", res.ExitReasons)
	}
	if math.Abs(res.AverageHold-5.0/3) > 1e-12 {
		t.Errorf("AverageHold = %v, want 1.67", res.AverageHold)
	}

	returns := periodReturns(equity)
	m := mean(returns)
	sd := stdDev(returns, m)
	if want := m / sd * math.Sqrt(252); math.Abs(res.SharpeRatio-want) > 1e-12 {
		t.Errorf("SharpeRatio = %v, want %v", res.SharpeRatio, want)
	}
	if res.SortinoRatio == 0 {
		t.Error("SortinoRatio = 0, want non-zero with negative returns")
	}
}

func TestEvaluateEdgeCases(t *testing.T) {
	tests := []struct {
		name   string
		trades []models.Trade
		equity []float64
		check  func(t *testing.T, res models.BacktestResult)
	}{
		{
			name:   "no trades flat equity",
			equity: []float64{1000, 1000, 1000},
			check: func(t *testing.T, res models.BacktestResult) {
				if res.WinRate != 0 || res.ProfitFactor != 0 || res.SharpeRatio != 0 || res.SortinoRatio != 0 {
					t.Errorf("got %+v, want zero metrics", res)
				}
				if res.MaxDrawdown != MinDrawdown {
					t.Errorf("MaxDrawdown = %v, want %v", res.MaxDrawdown, MinDrawdown)
				}
			},
		},
		{
			name:   "only winners",
			trades: []models.Trade{{Profit: 10, NetReturn: 0.01, IsWin: true, ExitIndex: 1}},
			equity: []float64{1000, 1005, 1010},
			check: func(t *testing.T, res models.BacktestResult) {
				if res.ProfitFactor != 0 {
					t.Errorf("ProfitFactor = %v, want 0 without losses", res.ProfitFactor)
				}
				if res.SortinoRatio != 0 {
					t.Errorf("SortinoRatio = %v, want 0 without negative returns", res.SortinoRatio)
				}
				if res.SharpeRatio <= 0 {
					t.Errorf("SharpeRatio = %v, want positive", res.SharpeRatio)
				}
			},
		},
		{
			name:   "blown account",
			equity: []float64{1000, 0, 0},
			check: func(t *testing.T, res models.BacktestResult) {
				if res.MaxDrawdown != 100 {
					t.Errorf("MaxDrawdown = %v, want 100", res.MaxDrawdown)
				}
				if math.IsNaN(res.SharpeRatio) || math.IsInf(res.SharpeRatio, 0) {
					t.Errorf("SharpeRatio = %v, want finite", res.SharpeRatio)
				}
			},
		},
		{
			name: "empty equity",
			check: func(t *testing.T, res models.BacktestResult) {
				if res.FinalCapital != 1000 || res.ROI != 0 {
					t.Errorf("got final=%v roi=%v, want 1000/0", res.FinalCapital, res.ROI)
				}
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.check(t, Evaluate(tt.trades, tt.equity, 1000, MetricOptions{}))
		})
	}
}

func TestRiskFreeRateLowersSharpe(t *testing.T) {
	equity := []float64{100, 101, 100.5, 102, 101.5, 103}
	base := Evaluate(nil, equity, 100, MetricOptions{PeriodsPerYear: 252})
	withRF := Evaluate(nil, equity, 100, MetricOptions{PeriodsPerYear: 252, RiskFreeRate: 0.5})
	if withRF.SharpeRatio >= base.SharpeRatio {
		t.Errorf("Sharpe with risk-free %v >= without %v", withRF.SharpeRatio, base.SharpeRatio)
	}
}
