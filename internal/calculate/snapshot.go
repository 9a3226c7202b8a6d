package calculate

import (
	"fmt"
	"sort"

	"github.com/Alias1177/SignalLab/models"
)

// Params holds the indicator periods used to build snapshots.
type Params struct {
	SMAShort       int     `yaml:"smaShort"`
	SMALong        int     `yaml:"smaLong"`
	EMAShort       int     `yaml:"emaShort"`
	EMALong        int     `yaml:"emaLong"`
	RSIPeriod      int     `yaml:"rsiPeriod"`
	MACDFast       int     `yaml:"macdFast"`
	MACDSlow       int     `yaml:"macdSlow"`
	MACDSignal     int     `yaml:"macdSignal"`
	BBPeriod       int     `yaml:"bbPeriod"`
	BBStdDev       float64 `yaml:"bbStdDev"`
	StochK         int     `yaml:"stochK"`
	StochD         int     `yaml:"stochD"`
	StochRSIPeriod int     `yaml:"stochRsiPeriod"`
	StochRSIK      int     `yaml:"stochRsiK"`
	StochRSID      int     `yaml:"stochRsiD"`
	PSARStep       float64 `yaml:"psarStep"`
	PSARMax        float64 `yaml:"psarMax"`
}

func DefaultParams() Params {
	return Params{
		SMAShort:       20,
		SMALong:        50,
		EMAShort:       12,
		EMALong:        26,
		RSIPeriod:      14,
		MACDFast:       12,
		MACDSlow:       26,
		MACDSignal:     9,
		BBPeriod:       20,
		BBStdDev:       2.0,
		StochK:         14,
		StochD:         3,
		StochRSIPeriod: 14,
		StochRSIK:      3,
		StochRSID:      3,
		PSARStep:       0.02,
		PSARMax:        0.2,
	}
}

func (p Params) Validate() error {
	if p.SMAShort <= 0 || p.SMALong <= p.SMAShort {
		return fmt.Errorf("sma periods must satisfy 0 < short < long")
	}
	if p.EMAShort <= 0 || p.EMALong <= p.EMAShort {
		return fmt.Errorf("ema periods must satisfy 0 < short < long")
	}
	if p.MACDFast <= 0 || p.MACDSlow <= p.MACDFast || p.MACDSignal <= 0 {
		return fmt.Errorf("invalid macd periods %d/%d/%d", p.MACDFast, p.MACDSlow, p.MACDSignal)
	}
	for _, v := range []int{p.RSIPeriod, p.BBPeriod, p.StochK, p.StochD, p.StochRSIPeriod, p.StochRSIK, p.StochRSID} {
		if v <= 0 {
			return fmt.Errorf("indicator periods must be positive")
		}
	}
	if p.BBStdDev <= 0 || p.PSARStep <= 0 || p.PSARMax < p.PSARStep {
		return fmt.Errorf("invalid bollinger or parabolic sar parameters")
	}
	return nil
}

// Snapshots computes every indicator over the candles and returns one
// snapshot per candle. Values still inside an indicator's warm-up are NaN.
func Snapshots(candles []models.Candle, p Params) ([]models.IndicatorSnapshot, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	prices := make([]float64, len(candles))
	for i, c := range candles {
		prices[i] = c.Close
	}

	smaShort, smaLong := SMA(prices, p.SMAShort), SMA(prices, p.SMALong)
	emaShort, emaLong := EMA(prices, p.EMAShort), EMA(prices, p.EMALong)
	rsi := RSI(prices, p.RSIPeriod)
	macd, macdSignal, macdHist := MACD(prices, p.MACDFast, p.MACDSlow, p.MACDSignal)
	bbUpper, bbMiddle, bbLower := BollingerBands(prices, p.BBPeriod, p.BBStdDev)
	stochK, stochD := Stochastic(candles, p.StochK, p.StochD)
	stochRSIK, stochRSID := StochasticRSI(prices, p.RSIPeriod, p.StochRSIPeriod, p.StochRSIK, p.StochRSID)
	psar := ParabolicSAR(candles, p.PSARStep, p.PSARMax)

	out := make([]models.IndicatorSnapshot, len(candles))
	for i, c := range candles {
		out[i] = models.IndicatorSnapshot{
			PricePoint: models.PricePoint{Time: c.Time, Close: c.Close},
			SMAShort:   smaShort[i],
			SMALong:    smaLong[i],
			EMAShort:   emaShort[i],
			EMALong:    emaLong[i],
			RSI:        rsi[i],
			MACD:       macd[i],
			MACDSignal: macdSignal[i],
			MACDHist:   macdHist[i],
			BBUpper:    bbUpper[i],
			BBMiddle:   bbMiddle[i],
			BBLower:    bbLower[i],
			StochK:     stochK[i],
			StochD:     stochD[i],
			StochRSIK:  stochRSIK[i],
			StochRSID:  stochRSID[i],
			PSAR:       psar[i],
		}
	}
	return out, nil
}

// Merge joins prices with indicator rows by timestamp. Prices without an
// indicator row and indicator rows without a price are dropped, duplicates
// keep their first occurrence, and the result is sorted by time.
func Merge(prices []models.PricePoint, indicators []models.IndicatorSnapshot) []models.IndicatorSnapshot {
	byTime := make(map[int64]models.IndicatorSnapshot, len(indicators))
	for _, ind := range indicators {
		if _, ok := byTime[ind.Time]; !ok {
			byTime[ind.Time] = ind
		}
	}

	out := make([]models.IndicatorSnapshot, 0, len(prices))
	seen := make(map[int64]bool, len(prices))
	for _, p := range prices {
		ind, ok := byTime[p.Time]
		if !ok || seen[p.Time] {
			continue
		}
		seen[p.Time] = true
		ind.PricePoint = p
		out = append(out, ind)
	}

	sort.Slice(out, func(i, j int) bool { return out[i].Time < out[j].Time })
	return out
}

// TrimWarmup drops leading snapshots until every indicator carries a value.
func TrimWarmup(data []models.IndicatorSnapshot) []models.IndicatorSnapshot {
	for i := range data {
		if data[i].Complete() {
			return data[i:]
		}
	}
	return nil
}
