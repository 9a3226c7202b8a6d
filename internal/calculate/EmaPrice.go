package calculate

import "math"

// EMA calculates the exponential moving average series. Leading NaNs are
// skipped and the first value is seeded with the SMA of the first period
// valid prices.
func EMA(prices []float64, period int) []float64 {
	out := nanSeries(len(prices))
	if period <= 0 {
		return out
	}

	start := 0
	for start < len(prices) && math.IsNaN(prices[start]) {
		start++
	}
	if len(prices)-start < period {
		return out
	}

	// Calculate simple moving average for the initial value
	var sum float64
	for i := start; i < start+period; i++ {
		sum += prices[i]
	}
	ema := sum / float64(period)
	out[start+period-1] = ema

	// Multiplier for weighting the EMA
	multiplier := 2.0 / float64(period+1)

	for i := start + period; i < len(prices); i++ {
		ema = (prices[i]-ema)*multiplier + ema
		out[i] = ema
	}

	return out
}
