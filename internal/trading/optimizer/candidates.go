package optimizer

import (
	"fmt"
	"strings"

	"github.com/Alias1177/SignalLab/models"
)

// Mode selects how candidate weight vectors are generated.
type Mode string

const (
	ModeCombos Mode = "combos"
	ModeGrid   Mode = "grid"
)

// Candidate is one weighting scheme to evaluate.
type Candidate struct {
	Label   string
	Weights models.WeightVector
}

// DefaultWeights is the baseline weighting used by the curated combinations.
var DefaultWeights = models.WeightVector{
	models.SMA:            1.5,
	models.EMA:            1.5,
	models.PSAR:           1.0,
	models.RSI:            1.0,
	models.MACD:           1.0,
	models.Stochastic:     0.8,
	models.StochasticRSI:  0.8,
	models.BollingerBands: 1.2,
}

// Category groups indicators that measure the same market property.
type Category struct {
	Name       string
	Indicators []models.Indicator
}

var Categories = []Category{
	{Name: "trend", Indicators: []models.Indicator{models.SMA, models.EMA, models.PSAR}},
	{Name: "momentum", Indicators: []models.Indicator{models.RSI, models.MACD, models.Stochastic, models.StochasticRSI}},
	{Name: "volatility", Indicators: []models.Indicator{models.BollingerBands}},
}

// Combos returns every non-empty combination of indicator categories, each
// weighted with DefaultWeights, followed by an equal-weight candidate.
func Combos() []Candidate {
	var out []Candidate
	for mask := 1; mask < 1<<len(Categories); mask++ {
		var (
			w     models.WeightVector
			names []string
		)
		for c, cat := range Categories {
			if mask&(1<<c) == 0 {
				continue
			}
			names = append(names, cat.Name)
			for _, ind := range cat.Indicators {
				w[ind] = DefaultWeights[ind]
			}
		}
		out = append(out, Candidate{Label: strings.Join(names, "+"), Weights: w})
	}

	var equal models.WeightVector
	for i := range equal {
		equal[i] = 1
	}
	return append(out, Candidate{Label: "equal", Weights: equal})
}

// Grid returns the Cartesian product of levels over every indicator, skipping
// the all-zero vector. limit > 0 caps the number of candidates.
func Grid(levels []float64, limit int) ([]Candidate, error) {
	if len(levels) == 0 {
		return nil, fmt.Errorf("grid needs at least one weight level")
	}
	for _, l := range levels {
		if l < 0 {
			return nil, fmt.Errorf("grid level %v is negative", l)
		}
	}

	var (
		out []Candidate
		idx [models.NumIndicators]int
	)
	for {
		var w models.WeightVector
		for i, li := range idx {
			w[i] = levels[li]
		}
		if w.Sum() > 0 {
			out = append(out, Candidate{Label: w.String(), Weights: w})
			if limit > 0 && len(out) >= limit {
				return out, nil
			}
		}

		// odometer increment, last indicator fastest
		pos := models.NumIndicators - 1
		for pos >= 0 {
			idx[pos]++
			if idx[pos] < len(levels) {
				break
			}
			idx[pos] = 0
			pos--
		}
		if pos < 0 {
			return out, nil
		}
	}
}

// Candidates generates the candidate set for the configured mode.
func Candidates(cfg Config) ([]Candidate, error) {
	switch cfg.Mode {
	case ModeCombos, "":
		c := Combos()
		if cfg.MaxCandidates > 0 && len(c) > cfg.MaxCandidates {
			c = c[:cfg.MaxCandidates]
		}
		return c, nil
	case ModeGrid:
		return Grid(cfg.GridLevels, cfg.MaxCandidates)
	}
	return nil, fmt.Errorf("unknown candidate mode %q", cfg.Mode)
}
