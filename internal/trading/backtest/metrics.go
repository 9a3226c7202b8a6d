package backtest

import (
	"math"

	"github.com/Alias1177/SignalLab/models"
)

// MinDrawdown is the floor applied to the reported maximum drawdown.
const MinDrawdown = 0.01

// MetricOptions configures the risk-adjusted ratios.
type MetricOptions struct {
	RiskFreeRate   float64 // annual, as a fraction
	PeriodsPerYear float64
}

// Evaluate computes the performance report from the trade log and the equity
// curve. The final capital is the last equity value.
func Evaluate(trades []models.Trade, equity []float64, initialCapital float64, opts MetricOptions) models.BacktestResult {
	if opts.PeriodsPerYear <= 0 {
		opts.PeriodsPerYear = 252
	}

	res := models.BacktestResult{
		TradeCount:     len(trades),
		InitialCapital: initialCapital,
		FinalCapital:   initialCapital,
		ExitReasons:    make(map[models.ExitReason]int),
		Trades:         trades,
		EquityCurve:    equity,
	}
	if res.Trades == nil {
		res.Trades = []models.Trade{}
	}
	if len(equity) > 0 {
		res.FinalCapital = equity[len(equity)-1]
	}
	if initialCapital != 0 {
		res.ROI = (res.FinalCapital - initialCapital) / initialCapital * 100
	}

	calculateTradeStats(&res, trades)
	res.MaxDrawdown = maxDrawdown(equity)

	returns := periodReturns(equity)
	rf := opts.RiskFreeRate / opts.PeriodsPerYear
	res.SharpeRatio = sharpeRatio(returns, rf, opts.PeriodsPerYear)
	res.SortinoRatio = sortinoRatio(returns, rf, opts.PeriodsPerYear)

	return res
}

func calculateTradeStats(res *models.BacktestResult, trades []models.Trade) {
	var grossProfit, grossLoss, winPct, lossPct float64
	var held, wins, losses int

	for _, t := range trades {
		res.ExitReasons[t.ExitReason]++
		res.TotalFees += t.Fees
		held += t.HoldingPeriods()

		if t.IsWin {
			res.WinningTrades++
			grossProfit += t.Profit
			winPct += t.NetReturn * 100
			wins++
			losses = 0
		} else {
			res.LosingTrades++
			grossLoss += -t.Profit
			lossPct += t.NetReturn * 100
			losses++
			wins = 0
		}
		if wins > res.MaxConsecutiveWins {
			res.MaxConsecutiveWins = wins
		}
		if losses > res.MaxConsecutiveLosses {
			res.MaxConsecutiveLosses = losses
		}
	}

	if len(trades) > 0 {
		res.WinRate = float64(res.WinningTrades) / float64(len(trades)) * 100
		res.AverageHold = float64(held) / float64(len(trades))
	}
	if res.WinningTrades > 0 {
		res.AverageWinPct = winPct / float64(res.WinningTrades)
	}
	if res.LosingTrades > 0 {
		res.AverageLossPct = lossPct / float64(res.LosingTrades)
	}
	if grossLoss > 0 {
		res.ProfitFactor = grossProfit / grossLoss
	}
}

// maxDrawdown is the largest decline from a running peak, in percent.
func maxDrawdown(equity []float64) float64 {
	var peak, worst float64
	for _, v := range equity {
		if v > peak {
			peak = v
		}
		if peak <= 0 {
			continue
		}
		if dd := (peak - v) / peak * 100; dd > worst {
			worst = dd
		}
	}
	return math.Min(math.Max(worst, MinDrawdown), 100)
}

// periodReturns converts an equity curve into simple period returns. A period
// that starts from zero capital contributes a zero return.
func periodReturns(equity []float64) []float64 {
	if len(equity) < 2 {
		return nil
	}
	out := make([]float64, len(equity)-1)
	for i := 1; i < len(equity); i++ {
		if equity[i-1] != 0 {
			out[i-1] = (equity[i] - equity[i-1]) / equity[i-1]
		}
	}
	return out
}

func sharpeRatio(returns []float64, rf, periodsPerYear float64) float64 {
	m := mean(returns)
	sd := stdDev(returns, m)
	if sd == 0 {
		return 0
	}
	return (m - rf) / sd * math.Sqrt(periodsPerYear)
}

func sortinoRatio(returns []float64, rf, periodsPerYear float64) float64 {
	var negative []float64
	for _, r := range returns {
		if r < 0 {
			negative = append(negative, r)
		}
	}
	if len(negative) == 0 {
		return 0
	}
	sd := stdDev(negative, mean(negative))
	if sd == 0 {
		return 0
	}
	return (mean(returns) - rf) / sd * math.Sqrt(periodsPerYear)
}

// Helper functions
func mean(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}

	var sum float64
	for _, v := range values {
		sum += v
	}

	return sum / float64(len(values))
}

func stdDev(values []float64, mean float64) float64 {
	if len(values) < 2 {
		return 0
	}

	var sumSquaredDiff float64
	for _, v := range values {
		diff := v - mean
		sumSquaredDiff += diff * diff
	}

	return math.Sqrt(sumSquaredDiff / float64(len(values)-1))
}
