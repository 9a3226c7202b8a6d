// Package signal turns indicator snapshots into categorical signals and
// reduces them to one weighted consensus.
package signal

import (
	"math"

	"github.com/Alias1177/SignalLab/models"
)

// Fixed oscillator thresholds.
const (
	rsiOversold     = 30
	rsiOverbought   = 70
	stochOversold   = 20
	stochOverbought = 80
)

// Absent reports whether any of the given inputs is missing.
type Absent func(values ...float64) bool

// MissingNaN treats only NaN as missing.
func MissingNaN(values ...float64) bool {
	for _, v := range values {
		if math.IsNaN(v) {
			return true
		}
	}
	return false
}

// MissingNaNOrZero also treats 0 as missing. It reproduces results stored by
// older runs where a zero indicator value was read as "not computed".
func MissingNaNOrZero(values ...float64) bool {
	for _, v := range values {
		if v == 0 || math.IsNaN(v) {
			return true
		}
	}
	return false
}

// Evaluator produces the signal of a single indicator. prev may be nil on the
// first period.
type Evaluator interface {
	Indicator() models.Indicator
	Evaluate(cur, prev *models.IndicatorSnapshot, absent Absent) models.Signal
}

// evaluators is indexed by indicator; the array length forces one entry per
// supported indicator.
var evaluators = [models.NumIndicators]Evaluator{
	models.SMA:            movingAverage{ind: models.SMA, pair: func(s *models.IndicatorSnapshot) (float64, float64) { return s.SMAShort, s.SMALong }},
	models.EMA:            movingAverage{ind: models.EMA, pair: func(s *models.IndicatorSnapshot) (float64, float64) { return s.EMAShort, s.EMALong }},
	models.PSAR:           parabolicSAR{},
	models.RSI:            rsi{},
	models.MACD:           macd{},
	models.Stochastic:     stochastic{ind: models.Stochastic, kd: func(s *models.IndicatorSnapshot) (float64, float64) { return s.StochK, s.StochD }},
	models.StochasticRSI:  stochastic{ind: models.StochasticRSI, kd: func(s *models.IndicatorSnapshot) (float64, float64) { return s.StochRSIK, s.StochRSID }},
	models.BollingerBands: bollinger{},
}

// Evaluators returns the evaluator for every supported indicator.
func Evaluators() [models.NumIndicators]Evaluator {
	return evaluators
}

type rsi struct{}

func (rsi) Indicator() models.Indicator { return models.RSI }

func (rsi) Evaluate(cur, _ *models.IndicatorSnapshot, absent Absent) models.Signal {
	if absent(cur.RSI) {
		return models.Neutral
	}
	switch {
	case cur.RSI < rsiOversold:
		return models.Buy
	case cur.RSI > rsiOverbought:
		return models.Sell
	}
	return models.Neutral
}

type macd struct{}

func (macd) Indicator() models.Indicator { return models.MACD }

func (macd) Evaluate(cur, _ *models.IndicatorSnapshot, absent Absent) models.Signal {
	if absent(cur.MACD, cur.MACDSignal) {
		return models.Neutral
	}
	switch {
	case cur.MACD > cur.MACDSignal:
		return models.Buy
	case cur.MACD < cur.MACDSignal:
		return models.Sell
	}
	return models.Neutral
}

// stochastic covers both the price stochastic and the stochastic RSI.
type stochastic struct {
	ind models.Indicator
	kd  func(*models.IndicatorSnapshot) (float64, float64)
}

func (s stochastic) Indicator() models.Indicator { return s.ind }

func (s stochastic) Evaluate(cur, _ *models.IndicatorSnapshot, absent Absent) models.Signal {
	k, d := s.kd(cur)
	if absent(k, d) {
		return models.Neutral
	}
	switch {
	case k < stochOversold && d < stochOversold:
		return models.Buy
	case k > stochOverbought && d > stochOverbought:
		return models.Sell
	case k > d:
		return models.Buy
	case k < d:
		return models.Sell
	}
	return models.Neutral
}

// movingAverage compares price with a short and a long average.
type movingAverage struct {
	ind  models.Indicator
	pair func(*models.IndicatorSnapshot) (float64, float64)
}

func (m movingAverage) Indicator() models.Indicator { return m.ind }

func (m movingAverage) Evaluate(cur, _ *models.IndicatorSnapshot, absent Absent) models.Signal {
	short, long := m.pair(cur)
	price := cur.Close
	if absent(price, short, long) {
		return models.Neutral
	}
	switch {
	case price > short && short > long:
		return models.Buy
	case price < short && short < long:
		return models.Sell
	}
	return models.Neutral
}

type parabolicSAR struct{}

func (parabolicSAR) Indicator() models.Indicator { return models.PSAR }

func (parabolicSAR) Evaluate(cur, _ *models.IndicatorSnapshot, absent Absent) models.Signal {
	if absent(cur.Close, cur.PSAR) {
		return models.Neutral
	}
	switch {
	case cur.Close > cur.PSAR:
		return models.Buy
	case cur.Close < cur.PSAR:
		return models.Sell
	}
	return models.Neutral
}

type bollinger struct{}

func (bollinger) Indicator() models.Indicator { return models.BollingerBands }

func (bollinger) Evaluate(cur, _ *models.IndicatorSnapshot, absent Absent) models.Signal {
	if absent(cur.Close, cur.BBUpper, cur.BBLower) {
		return models.Neutral
	}
	switch {
	case cur.Close < cur.BBLower:
		return models.Buy
	case cur.Close > cur.BBUpper:
		return models.Sell
	}
	return models.Neutral
}

// Aggregator evaluates every indicator of a snapshot.
type Aggregator struct {
	absent Absent
}

// NewAggregator returns an aggregator. With legacyZeroAsMissing a zero
// indicator value is treated as not computed.
func NewAggregator(legacyZeroAsMissing bool) *Aggregator {
	if legacyZeroAsMissing {
		return &Aggregator{absent: MissingNaNOrZero}
	}
	return &Aggregator{absent: MissingNaN}
}

// Signals evaluates one snapshot. prev may be nil.
func (a *Aggregator) Signals(cur, prev *models.IndicatorSnapshot) models.SignalVector {
	var out models.SignalVector
	for i, e := range evaluators {
		out[i] = e.Evaluate(cur, prev, a.absent)
	}
	return out
}

// Series evaluates every snapshot of a dataset in order.
func (a *Aggregator) Series(data []models.IndicatorSnapshot) []models.SignalVector {
	out := make([]models.SignalVector, len(data))
	for i := range data {
		var prev *models.IndicatorSnapshot
		if i > 0 {
			prev = &data[i-1]
		}
		out[i] = a.Signals(&data[i], prev)
	}
	return out
}
