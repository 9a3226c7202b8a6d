package calculate

import (
	"math"

	"github.com/Alias1177/SignalLab/models"
)

// ParabolicSAR calculates Wilder's parabolic stop-and-reverse series. The
// first candle has no value.
func ParabolicSAR(candles []models.Candle, step, maxStep float64) []float64 {
	out := nanSeries(len(candles))
	if len(candles) < 2 {
		return out
	}

	long := candles[1].Close >= candles[0].Close
	sar, ep := candles[0].Low, candles[0].High
	if !long {
		sar, ep = candles[0].High, candles[0].Low
	}
	af := step

	for i := 1; i < len(candles); i++ {
		c := candles[i]
		sar += af * (ep - sar)

		if long {
			// never above the two prior lows
			sar = math.Min(sar, candles[i-1].Low)
			if i > 1 {
				sar = math.Min(sar, candles[i-2].Low)
			}
			switch {
			case c.Low < sar:
				long, sar, ep, af = false, ep, c.Low, step
			case c.High > ep:
				ep, af = c.High, math.Min(af+step, maxStep)
			}
		} else {
			sar = math.Max(sar, candles[i-1].High)
			if i > 1 {
				sar = math.Max(sar, candles[i-2].High)
			}
			switch {
			case c.High > sar:
				long, sar, ep, af = true, ep, c.High, step
			case c.Low < ep:
				ep, af = c.Low, math.Min(af+step, maxStep)
			}
		}
		out[i] = sar
	}
	return out
}
