package calculate

import "math"

// BollingerBands calculates the upper, middle and lower bands using the
// population standard deviation of the window.
func BollingerBands(prices []float64, period int, stdDev float64) (upper, middle, lower []float64) {
	middle = SMA(prices, period)
	upper = nanSeries(len(prices))
	lower = nanSeries(len(prices))

	for i := period - 1; i >= 0 && i < len(prices); i++ {
		if math.IsNaN(middle[i]) {
			continue
		}
		var variance float64
		for _, p := range prices[i-period+1 : i+1] {
			variance += math.Pow(p-middle[i], 2)
		}
		sd := math.Sqrt(variance / float64(period))

		upper[i] = middle[i] + sd*stdDev
		lower[i] = middle[i] - sd*stdDev
	}
	return upper, middle, lower
}
