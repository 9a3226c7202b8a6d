package signal

import (
	"math"

	"github.com/Alias1177/SignalLab/models"
)

// DeadZoneThreshold is the alternative activation threshold that ignores
// weak consensus scores. The default threshold is 0 (pure sign).
const DeadZoneThreshold = 0.15

// Consensus is the weighted reduction of a signal vector.
type Consensus struct {
	Score    float64
	Signal   models.Signal
	Strength float64
}

// Combine computes sum(w*score)/sum(w) and maps it to a directional signal
// using the activation threshold. A zero weight sum yields a neutral consensus.
func Combine(signals models.SignalVector, weights models.WeightVector, threshold float64) Consensus {
	var num, den float64
	for i, s := range signals {
		num += weights[i] * s.Score()
		den += weights[i]
	}
	if den == 0 {
		return Consensus{}
	}
	score := num / den

	c := Consensus{Score: score}
	switch {
	case score > threshold:
		c.Signal = models.Buy
	case score < -threshold:
		c.Signal = models.Sell
	}
	if c.Signal != models.Neutral {
		c.Strength = math.Abs(score)
	}
	return c
}

// CombineSeries combines a precomputed signal series with one weight vector.
func CombineSeries(signals []models.SignalVector, weights models.WeightVector, threshold float64) []Consensus {
	out := make([]Consensus, len(signals))
	for i, s := range signals {
		out[i] = Combine(s, weights, threshold)
	}
	return out
}
