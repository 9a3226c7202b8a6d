package calculate

import (
	"math"

	"github.com/Alias1177/SignalLab/models"
)

// Stochastic calculates %K over kPeriod candles and %D as its dPeriod SMA.
// A window without a price range yields 50.
func Stochastic(candles []models.Candle, kPeriod, dPeriod int) (k, d []float64) {
	k = nanSeries(len(candles))
	if kPeriod > 0 {
		for i := kPeriod - 1; i < len(candles); i++ {
			highest, lowest := math.Inf(-1), math.Inf(1)
			for _, c := range candles[i-kPeriod+1 : i+1] {
				highest = math.Max(highest, c.High)
				lowest = math.Min(lowest, c.Low)
			}
			k[i] = percentOfRange(candles[i].Close, lowest, highest)
		}
	}
	return k, SMA(k, dPeriod)
}

// StochasticRSI applies the stochastic oscillator to the RSI series and
// smooths it into %K and %D.
func StochasticRSI(prices []float64, rsiPeriod, stochPeriod, kSmooth, dSmooth int) (k, d []float64) {
	rsi := RSI(prices, rsiPeriod)
	raw := nanSeries(len(prices))
	if stochPeriod > 0 {
		for i := stochPeriod - 1; i < len(prices); i++ {
			highest, lowest := math.Inf(-1), math.Inf(1)
			for _, v := range rsi[i-stochPeriod+1 : i+1] {
				highest = math.Max(highest, v)
				lowest = math.Min(lowest, v)
			}
			if math.IsNaN(highest) || math.IsNaN(lowest) {
				continue
			}
			raw[i] = percentOfRange(rsi[i], lowest, highest)
		}
	}
	k = SMA(raw, kSmooth)
	return k, SMA(k, dSmooth)
}

func percentOfRange(v, lowest, highest float64) float64 {
	if highest-lowest <= 0 {
		return 50.0
	}
	return (v - lowest) / (highest - lowest) * 100
}
