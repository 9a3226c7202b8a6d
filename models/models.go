package models

import (
	"math"
	"time"
)

// PricePoint is one closing price per period. Time is a unix epoch in seconds.
type PricePoint struct {
	Time  int64   `json:"time"`
	Close float64 `json:"close"`
}

// IndicatorSnapshot is a PricePoint joined with every indicator value computed
// for the same timestamp. Values that could not be computed are NaN.
type IndicatorSnapshot struct {
	PricePoint

	SMAShort float64 `json:"sma_short"`
	SMALong  float64 `json:"sma_long"`
	EMAShort float64 `json:"ema_short"`
	EMALong  float64 `json:"ema_long"`

	RSI float64 `json:"rsi"`

	MACD       float64 `json:"macd"`
	MACDSignal float64 `json:"macd_signal"`
	MACDHist   float64 `json:"macd_hist"`

	BBUpper  float64 `json:"bb_upper"`
	BBMiddle float64 `json:"bb_middle"`
	BBLower  float64 `json:"bb_lower"`

	StochK    float64 `json:"stoch_k"`
	StochD    float64 `json:"stoch_d"`
	StochRSIK float64 `json:"stoch_rsi_k"`
	StochRSID float64 `json:"stoch_rsi_d"`

	PSAR float64 `json:"psar"`
}

// ValueColumns names the indicator fields in the order returned by Values.
var ValueColumns = []string{
	"sma_short", "sma_long", "ema_short", "ema_long",
	"rsi",
	"macd", "macd_signal", "macd_hist",
	"bb_upper", "bb_middle", "bb_lower",
	"stoch_k", "stoch_d", "stoch_rsi_k", "stoch_rsi_d",
	"psar",
}

// Values returns pointers to the indicator fields in ValueColumns order.
func (s *IndicatorSnapshot) Values() []*float64 {
	return []*float64{
		&s.SMAShort, &s.SMALong, &s.EMAShort, &s.EMALong,
		&s.RSI,
		&s.MACD, &s.MACDSignal, &s.MACDHist,
		&s.BBUpper, &s.BBMiddle, &s.BBLower,
		&s.StochK, &s.StochD, &s.StochRSIK, &s.StochRSID,
		&s.PSAR,
	}
}

// Complete reports whether every indicator value is present.
func (s *IndicatorSnapshot) Complete() bool {
	for _, v := range s.Values() {
		if math.IsNaN(*v) {
			return false
		}
	}
	return true
}

// NewSnapshot returns a snapshot for the price point with every indicator
// value marked absent.
func NewSnapshot(p PricePoint) IndicatorSnapshot {
	s := IndicatorSnapshot{PricePoint: p}
	for _, v := range s.Values() {
		*v = math.NaN()
	}
	return s
}

// Timestamp converts the epoch to UTC time.
func (p PricePoint) Timestamp() time.Time {
	return time.Unix(p.Time, 0).UTC()
}

// Candle represents a single price candle
type Candle struct {
	Time   int64   `json:"time"`
	Open   float64 `json:"open"`
	High   float64 `json:"high"`
	Low    float64 `json:"low"`
	Close  float64 `json:"close"`
	Volume int64   `json:"volume,omitempty"`
}

// TwelveResponse represents the API response from Twelve Data
type TwelveResponse struct {
	Meta struct {
		Symbol   string `json:"symbol"`
		Interval string `json:"interval"`
	} `json:"meta"`
	Values []struct {
		Datetime string  `json:"datetime"`
		Open     float64 `json:"open,string"`
		High     float64 `json:"high,string"`
		Low      float64 `json:"low,string"`
		Close    float64 `json:"close,string"`
		Volume   int64   `json:"volume,string,omitempty"`
	} `json:"values"`
	Status  string `json:"status"`
	Message string `json:"message,omitempty"`
}

// Trade is one closed simulated position.
type Trade struct {
	Direction  Direction  `json:"direction"`
	EntryPrice float64    `json:"entry_price"`
	ExitPrice  float64    `json:"exit_price"`
	EntryIndex int        `json:"entry_index"`
	ExitIndex  int        `json:"exit_index"`
	EntryTime  int64      `json:"entry_time"`
	ExitTime   int64      `json:"exit_time"`
	NetReturn  float64    `json:"net_return"` // fraction, fees deducted
	Profit     float64    `json:"profit"`     // capital change
	Fees       float64    `json:"fees"`
	IsWin      bool       `json:"is_win"`
	ExitReason ExitReason `json:"exit_reason"`
}

// HoldingPeriods is the number of periods the position stayed open.
func (t Trade) HoldingPeriods() int {
	return t.ExitIndex - t.EntryIndex
}

// BacktestResult is the performance report of one simulation.
type BacktestResult struct {
	ROI            float64 `json:"roi"`
	WinRate        float64 `json:"win_rate"`
	MaxDrawdown    float64 `json:"max_drawdown"`
	SharpeRatio    float64 `json:"sharpe_ratio"`
	SortinoRatio   float64 `json:"sortino_ratio"`
	ProfitFactor   float64 `json:"profit_factor"`
	TradeCount     int     `json:"trade_count"`
	WinningTrades  int     `json:"winning_trades"`
	LosingTrades   int     `json:"losing_trades"`
	InitialCapital float64 `json:"initial_capital"`
	FinalCapital   float64 `json:"final_capital"`

	AverageWinPct  float64 `json:"average_win_pct"`
	AverageLossPct float64 `json:"average_loss_pct"`
	AverageHold    float64 `json:"average_hold"`
	TotalFees      float64 `json:"total_fees"`

	MaxConsecutiveWins   int `json:"max_consecutive_wins"`
	MaxConsecutiveLosses int `json:"max_consecutive_losses"`

	ExitReasons map[ExitReason]int `json:"exit_reasons"`
	Trades      []Trade            `json:"trades"`
	EquityCurve []float64          `json:"equity_curve"`
}

// CandidateResult is the outcome of one weight candidate in an optimization.
type CandidateResult struct {
	Label   string         `json:"label"`
	Weights WeightVector   `json:"weights"`
	Result  BacktestResult `json:"result"`
}

// OptimizationResult holds the winning weight vector and every evaluated candidate.
type OptimizationResult struct {
	BestWeights         WeightVector      `json:"best_weights"`
	BestComboLabel      string            `json:"best_combo_label"`
	Performance         BacktestResult    `json:"performance"`
	AllCandidateResults []CandidateResult `json:"all_candidate_results"`
}
