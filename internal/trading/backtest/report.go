package backtest

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/Alias1177/SignalLab/models"
)

// FormatResults creates a human-readable summary of backtest results
func FormatResults(results *models.BacktestResult) string {
	if results == nil {
		return "No backtest results available"
	}

	output := "\n===== BACKTEST RESULTS =====\n"
	output += fmt.Sprintf("Initial capital: %.2f\n", results.InitialCapital)
	output += fmt.Sprintf("Final capital: %.2f\n", results.FinalCapital)
	output += fmt.Sprintf("ROI: %.2f%%\n", results.ROI)
	output += fmt.Sprintf("Total trades: %d\n", results.TradeCount)
	output += fmt.Sprintf("Winning trades: %d (%.2f%%)\n", results.WinningTrades, results.WinRate)
	output += fmt.Sprintf("Average win: %.2f%%\n", results.AverageWinPct)
	output += fmt.Sprintf("Average loss: %.2f%%\n", results.AverageLossPct)
	output += fmt.Sprintf("Average holding periods: %.1f\n", results.AverageHold)
	output += fmt.Sprintf("Total fees: %.2f\n", results.TotalFees)

	output += fmt.Sprintf("Profit factor: %.2f\n", results.ProfitFactor)
	output += fmt.Sprintf("Maximum drawdown: %.2f%%\n", results.MaxDrawdown)
	output += fmt.Sprintf("Sharpe ratio: %.3f\n", results.SharpeRatio)
	output += fmt.Sprintf("Sortino ratio: %.3f\n", results.SortinoRatio)
	output += fmt.Sprintf("Max consecutive wins: %d\n", results.MaxConsecutiveWins)
	output += fmt.Sprintf("Max consecutive losses: %d\n", results.MaxConsecutiveLosses)

	if len(results.ExitReasons) > 0 {
		output += "\nExits by reason:\n"
		for _, reason := range models.SortedExitReasons(results.ExitReasons) {
			output += fmt.Sprintf("- %s: %d\n", reason, results.ExitReasons[reason])
		}
	}

	return output
}

// WriteTradesCSV writes the trade log with a header row.
func WriteTradesCSV(w io.Writer, trades []models.Trade) error {
	cw := csv.NewWriter(w)

	if err := cw.Write([]string{
		"direction", "entry_time", "exit_time", "entry_index", "exit_index",
		"entry_price", "exit_price", "net_return", "profit", "fees", "win", "exit_reason",
	}); err != nil {
		return err
	}
	for _, t := range trades {
		if err := cw.Write([]string{
			string(t.Direction),
			time.Unix(t.EntryTime, 0).UTC().Format(time.RFC3339),
			time.Unix(t.ExitTime, 0).UTC().Format(time.RFC3339),
			strconv.Itoa(t.EntryIndex), strconv.Itoa(t.ExitIndex),
			formatF(t.EntryPrice), formatF(t.ExitPrice),
			formatF(t.NetReturn), formatF(t.Profit), formatF(t.Fees),
			strconv.FormatBool(t.IsWin), string(t.ExitReason),
		}); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

func formatF(f float64) string { return strconv.FormatFloat(f, 'f', -1, 64) }
