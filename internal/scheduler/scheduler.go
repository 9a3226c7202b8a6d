package scheduler

import (
	"context"
	"fmt"
	"sync"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog/log"
)

// Scheduler re-runs the optimization batch on a cron schedule.
type Scheduler struct {
	Cron    *cron.Cron
	Runner  *Runner
	Symbols []string
	Ctx     context.Context

	// mu keeps a slow batch from overlapping the next tick.
	mu sync.Mutex
}

func NewScheduler(ctx context.Context, r *Runner, symbols []string) *Scheduler {
	return &Scheduler{
		Cron:    cron.New(cron.WithSeconds()),
		Runner:  r,
		Symbols: symbols,
		Ctx:     ctx,
	}
}

// Register adds the optimization task with a six-field (seconds first) spec.
func (s *Scheduler) Register(spec string) error {
	if _, err := s.Cron.AddFunc(spec, s.RunNow); err != nil {
		return fmt.Errorf("register optimize task: %w", err)
	}
	return nil
}

// RunNow executes one batch unless another is still running.
func (s *Scheduler) RunNow() {
	if !s.mu.TryLock() {
		log.Warn().Msg("previous optimization still running, skipping tick")
		return
	}
	defer s.mu.Unlock()

	if _, err := s.Runner.RunOnce(s.Ctx, s.Symbols); err != nil {
		log.Error().Err(err).Msg("optimization batch failed")
	}
}

func (s *Scheduler) Start() {
	s.Cron.Start()
	log.Info().Msg("scheduler started")
}

// Stop stops the cron scheduler and waits for a running batch.
func (s *Scheduler) Stop() {
	<-s.Cron.Stop().Done()
	log.Info().Msg("scheduler stopped")
}
