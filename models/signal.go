package models

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"
)

// Signal is a categorical per-indicator or consensus recommendation.
type Signal int8

const (
	Neutral Signal = 0
	Buy     Signal = 1
	Sell    Signal = -1
)

// Score maps buy to +1, sell to -1 and neutral to 0.
func (s Signal) Score() float64 {
	return float64(s)
}

// Opposite reports whether s points the other way from d.
func (s Signal) Opposite(d Direction) bool {
	return (d == Long && s == Sell) || (d == Short && s == Buy)
}

func (s Signal) String() string {
	switch s {
	case Buy:
		return "BUY"
	case Sell:
		return "SELL"
	default:
		return "NEUTRAL"
	}
}

// Direction of an open position.
type Direction string

const (
	Long  Direction = "LONG"
	Short Direction = "SHORT"
)

// ExitReason explains why a position was closed.
type ExitReason string

const (
	ExitStopLoss       ExitReason = "StopLoss"
	ExitTakeProfit     ExitReason = "TakeProfit"
	ExitSignalReversal ExitReason = "SignalReversal"
	ExitMaxHold        ExitReason = "MaxHoldExceeded"
	ExitEndOfData      ExitReason = "EndOfData"
)

// ExitReasons lists every exit reason in reporting order.
var ExitReasons = []ExitReason{ExitStopLoss, ExitTakeProfit, ExitSignalReversal, ExitMaxHold, ExitEndOfData}

// Indicator identifies one of the supported technical indicators.
type Indicator uint8

const (
	SMA Indicator = iota
	EMA
	PSAR
	RSI
	MACD
	Stochastic
	StochasticRSI
	BollingerBands

	NumIndicators = int(BollingerBands) + 1
)

// AllIndicators is the supported set in canonical order.
var AllIndicators = [NumIndicators]Indicator{SMA, EMA, PSAR, RSI, MACD, Stochastic, StochasticRSI, BollingerBands}

var indicatorNames = [NumIndicators]string{
	SMA:            "SMA",
	EMA:            "EMA",
	PSAR:           "PSAR",
	RSI:            "RSI",
	MACD:           "MACD",
	Stochastic:     "Stochastic",
	StochasticRSI:  "StochasticRSI",
	BollingerBands: "BollingerBands",
}

func (i Indicator) String() string {
	if int(i) < NumIndicators {
		return indicatorNames[i]
	}
	return fmt.Sprintf("Indicator(%d)", i)
}

// ParseIndicator resolves a case-insensitive indicator name.
func ParseIndicator(name string) (Indicator, error) {
	for i, n := range indicatorNames {
		if strings.EqualFold(n, name) {
			return Indicator(i), nil
		}
	}
	return 0, fmt.Errorf("unknown indicator %q", name)
}

// SignalVector holds one signal per indicator.
type SignalVector [NumIndicators]Signal

// WeightVector holds one non-negative weight per indicator. A zero weight
// removes the indicator from the consensus.
type WeightVector [NumIndicators]float64

// Sum returns the total weight.
func (w WeightVector) Sum() float64 {
	var s float64
	for _, v := range w {
		s += v
	}
	return s
}

// Validate rejects negative weights.
func (w WeightVector) Validate() error {
	for i, v := range w {
		if v < 0 {
			return fmt.Errorf("weight for %s is negative: %g", Indicator(i), v)
		}
	}
	return nil
}

// Normalized scales the weights so they sum to total. A zero vector is
// returned unchanged.
func (w WeightVector) Normalized(total float64) WeightVector {
	sum := w.Sum()
	if sum == 0 || total <= 0 {
		return w
	}
	var out WeightVector
	for i, v := range w {
		out[i] = v / sum * total
	}
	return out
}

// Map returns the weights keyed by indicator name.
func (w WeightVector) Map() map[string]float64 {
	m := make(map[string]float64, NumIndicators)
	for i, v := range w {
		m[Indicator(i).String()] = v
	}
	return m
}

// WeightsFromMap builds a vector from name keyed weights. Missing indicators get 0.
func WeightsFromMap(m map[string]float64) (WeightVector, error) {
	var w WeightVector
	for name, v := range m {
		ind, err := ParseIndicator(name)
		if err != nil {
			return w, err
		}
		w[ind] = v
	}
	return w, w.Validate()
}

// ParseWeights reads "SMA=1.5,EMA=1.5,RSI=1" style weight lists.
func ParseWeights(s string) (WeightVector, error) {
	m := make(map[string]float64)
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		name, val, ok := strings.Cut(part, "=")
		if !ok {
			return WeightVector{}, fmt.Errorf("weight %q: expected NAME=VALUE", part)
		}
		var f float64
		if _, err := fmt.Sscanf(strings.TrimSpace(val), "%g", &f); err != nil {
			return WeightVector{}, fmt.Errorf("weight %q: %w", part, err)
		}
		m[strings.TrimSpace(name)] = f
	}
	return WeightsFromMap(m)
}

func (w WeightVector) String() string {
	parts := make([]string, 0, NumIndicators)
	for i, v := range w {
		parts = append(parts, fmt.Sprintf("%s=%.2f", Indicator(i), v))
	}
	return strings.Join(parts, ",")
}

// MarshalJSON encodes the vector as a name keyed object.
func (w WeightVector) MarshalJSON() ([]byte, error) {
	return json.Marshal(w.Map())
}

// UnmarshalJSON decodes a name keyed object.
func (w *WeightVector) UnmarshalJSON(data []byte) error {
	var m map[string]float64
	if err := json.Unmarshal(data, &m); err != nil {
		return err
	}
	v, err := WeightsFromMap(m)
	if err != nil {
		return err
	}
	*w = v
	return nil
}

// SortedExitReasons returns the keys of counts in reporting order.
func SortedExitReasons(counts map[ExitReason]int) []ExitReason {
	out := make([]ExitReason, 0, len(counts))
	for r := range counts {
		out = append(out, r)
	}
	order := make(map[ExitReason]int, len(ExitReasons))
	for i, r := range ExitReasons {
		order[r] = i
	}
	sort.Slice(out, func(i, j int) bool { return order[out[i]] < order[out[j]] })
	return out
}
