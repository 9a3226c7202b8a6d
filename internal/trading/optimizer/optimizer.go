package optimizer

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"github.com/Alias1177/SignalLab/internal/trading/backtest"
	"github.com/Alias1177/SignalLab/models"
)

// MinSamples is the smallest dataset a weight optimization accepts.
const MinSamples = 100

var ErrNoCandidates = errors.New("no candidate weight vectors")

// Config controls candidate generation and evaluation.
type Config struct {
	Mode             Mode      `yaml:"mode" json:"mode"`
	Workers          int       `yaml:"workers" json:"workers"`
	GridLevels       []float64 `yaml:"gridLevels" json:"gridLevels"`
	MaxCandidates    int       `yaml:"maxCandidates" json:"maxCandidates"`
	NormalizeTo      float64   `yaml:"normalizeTo" json:"normalizeTo"` // 0 keeps the raw winner
	MinSamples       int       `yaml:"minSamples" json:"minSamples"`
	TrainingWindow   int       `yaml:"trainingWindow" json:"trainingWindow"` // trailing periods, 0 = all
	BatchConcurrency int       `yaml:"batchConcurrency" json:"batchConcurrency"`
}

func DefaultConfig() Config {
	return Config{
		Mode:             ModeCombos,
		Workers:          runtime.NumCPU(),
		GridLevels:       []float64{0, 0.5, 1, 1.5},
		NormalizeTo:      10,
		MinSamples:       MinSamples,
		BatchConcurrency: 2,
	}
}

func (c Config) Validate() error {
	switch c.Mode {
	case ModeCombos, ModeGrid, "":
	default:
		return fmt.Errorf("unknown candidate mode %q", c.Mode)
	}
	if c.Workers < 0 || c.BatchConcurrency < 0 {
		return fmt.Errorf("workers and batchConcurrency must not be negative")
	}
	if c.NormalizeTo < 0 {
		return fmt.Errorf("normalizeTo must not be negative")
	}
	if c.MinSamples < 0 || c.TrainingWindow < 0 || c.MaxCandidates < 0 {
		return fmt.Errorf("minSamples, trainingWindow and maxCandidates must not be negative")
	}
	if c.TrainingWindow > 0 && c.TrainingWindow < c.MinSamples {
		return fmt.Errorf("trainingWindow %d is below minSamples %d", c.TrainingWindow, c.MinSamples)
	}
	return nil
}

// Optimizer evaluates candidate weightings against one backtest configuration.
type Optimizer struct {
	cfg    Config
	engine *backtest.Engine
	logger zerolog.Logger
}

func New(btCfg backtest.Config, cfg Config) (*Optimizer, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid optimizer config: %w", err)
	}
	engine, err := backtest.NewEngine(btCfg)
	if err != nil {
		return nil, err
	}
	if cfg.Workers == 0 {
		cfg.Workers = runtime.NumCPU()
	}
	if cfg.BatchConcurrency == 0 {
		cfg.BatchConcurrency = 1
	}
	return &Optimizer{
		cfg:    cfg,
		engine: engine,
		logger: log.With().Str("component", "optimizer").Logger(),
	}, nil
}

func (o *Optimizer) Config() Config {
	return o.cfg
}

// Window returns the trailing training window of data.
func (o *Optimizer) Window(data []models.IndicatorSnapshot) []models.IndicatorSnapshot {
	if o.cfg.TrainingWindow > 0 && len(data) > o.cfg.TrainingWindow {
		return data[len(data)-o.cfg.TrainingWindow:]
	}
	return data
}

// Optimize backtests every candidate over data and returns the one with the
// highest ROI. On equal ROI the earlier candidate wins. Cancelling ctx aborts
// the candidates that have not started yet.
func (o *Optimizer) Optimize(ctx context.Context, data []models.IndicatorSnapshot, candidates []Candidate) (*models.OptimizationResult, error) {
	if len(candidates) == 0 {
		return nil, ErrNoCandidates
	}
	data = o.Window(data)
	if err := backtest.CheckDataset(data, o.cfg.MinSamples); err != nil {
		return nil, err
	}

	start := time.Now()
	signals := o.engine.Signals(data)
	results := make([]models.CandidateResult, len(candidates))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(o.cfg.Workers)

	for i, c := range candidates {
		i, c := i, c
		if gctx.Err() != nil {
			break
		}
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			res, err := o.engine.RunSignals(data, signals, c.Weights)
			if err != nil {
				return fmt.Errorf("candidate %s: %w", c.Label, err)
			}
			results[i] = models.CandidateResult{Label: c.Label, Weights: c.Weights, Result: *res}
			o.logger.Debug().
				Str("candidate", c.Label).
				Float64("roi", res.ROI).
				Int("trades", res.TradeCount).
				Msg("candidate evaluated")
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	best := SelectBest(results)
	winner := results[best]
	out := &models.OptimizationResult{
		BestWeights:         winner.Weights.Normalized(o.cfg.NormalizeTo),
		BestComboLabel:      winner.Label,
		Performance:         winner.Result,
		AllCandidateResults: results,
	}

	o.logger.Info().
		Int("candidates", len(candidates)).
		Int("periods", len(data)).
		Str("best", winner.Label).
		Float64("roi", winner.Result.ROI).
		Dur("took", time.Since(start)).
		Msg("optimization finished")
	return out, nil
}

// SelectBest returns the index of the candidate with the strictly highest ROI,
// keeping the first one on ties. It returns -1 for an empty slice.
func SelectBest(results []models.CandidateResult) int {
	best := -1
	for i := range results {
		if best < 0 || results[i].Result.ROI > results[best].Result.ROI {
			best = i
		}
	}
	return best
}
