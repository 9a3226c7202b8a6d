package models

// candlesPerDay returns how many candles of the given interval fit in a day.
// Weekly and monthly intervals return a fractional count.
func candlesPerDay(interval string) float64 {
	switch interval {
	case "1min":
		return 24 * 60
	case "5min":
		return 24 * 12
	case "15min":
		return 24 * 4
	case "30min":
		return 24 * 2
	case "45min":
		return 24 * 60 / 45
	case "1h":
		return 24
	case "2h":
		return 12
	case "4h":
		return 6
	case "8h":
		return 3
	case "1day":
		return 1
	case "1week":
		return 1.0 / 7
	case "1month":
		return 1.0 / 30
	}
	return 0
}

// CandlesForDays estimates how many candles cover the given number of days,
// with a 10% buffer for gaps.
func CandlesForDays(interval string, days int) int {
	n := int(candlesPerDay(interval) * float64(days) * 1.1)
	if n < 1 {
		n = 1
	}
	return n
}

// PeriodsPerYear is the annualization factor for an interval on a market
// that trades around the clock. Unknown intervals fall back to hourly.
func PeriodsPerYear(interval string) float64 {
	if c := candlesPerDay(interval); c > 0 {
		return c * 365
	}
	return 24 * 365
}
