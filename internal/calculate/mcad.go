package calculate

// MACD calculates the MACD line, its signal line and the histogram.
func MACD(prices []float64, fastPeriod, slowPeriod, signalPeriod int) (line, signal, hist []float64) {
	fast := EMA(prices, fastPeriod)
	slow := EMA(prices, slowPeriod)

	line = nanSeries(len(prices))
	for i := range prices {
		// NaN propagates through the subtraction
		line[i] = fast[i] - slow[i]
	}

	signal = EMA(line, signalPeriod)
	hist = make([]float64, len(prices))
	for i := range prices {
		hist[i] = line[i] - signal[i]
	}
	return line, signal, hist
}
