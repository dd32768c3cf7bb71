package maintenance

import (
	"context"
	"fmt"
	"sync"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// Config contains maintenance service configuration
type Config struct {
	// SweepSchedule is a cron expression or descriptor such as "@every 1h"
	SweepSchedule string
}

// DefaultConfig returns default maintenance configuration
func DefaultConfig() *Config {
	return &Config{
		SweepSchedule: "@every 1h",
	}
}

// Sweeper removes expired share links and reports how many went away
type Sweeper interface {
	SweepExpired(ctx context.Context) int
}

// Pruner drops stale rate limiter state
type Pruner interface {
	Prune() int
}

// Service runs periodic housekeeping on a cron schedule
type Service struct {
	config  *Config
	sweeper Sweeper
	pruner  Pruner
	logger  *zap.Logger

	mu      sync.Mutex
	running bool
	cron    *cron.Cron
	cancel  context.CancelFunc
}

// New creates a new maintenance Service. pruner may be nil.
func New(cfg *Config, sweeper Sweeper, pruner Pruner, logger *zap.Logger) *Service {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	if cfg.SweepSchedule == "" {
		cfg.SweepSchedule = DefaultConfig().SweepSchedule
	}

	return &Service{
		config:  cfg,
		sweeper: sweeper,
		pruner:  pruner,
		logger:  logger,
	}
}

// Start runs one sweep, then schedules further sweeps and blocks until ctx
// is done or Stop is called.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		return fmt.Errorf("maintenance service already running")
	}

	c := cron.New()
	ctx, cancel := context.WithCancel(ctx)
	if _, err := c.AddFunc(s.config.SweepSchedule, func() { s.runOnce(ctx) }); err != nil {
		s.mu.Unlock()
		cancel()
		return fmt.Errorf("invalid sweep schedule %q: %w", s.config.SweepSchedule, err)
	}
	s.running = true
	s.cron = c
	s.cancel = cancel
	s.mu.Unlock()

	s.logger.Info("maintenance service started",
		zap.String("sweep_schedule", s.config.SweepSchedule))

	s.runOnce(ctx)
	c.Start()

	<-ctx.Done()
	<-c.Stop().Done()
	s.logger.Info("maintenance service stopped")
	return nil
}

// Stop stops the maintenance service
func (s *Service) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cancel != nil {
		s.cancel()
	}
	s.running = false
}

// runOnce sweeps expired links and prunes the password guard
func (s *Service) runOnce(ctx context.Context) {
	if ctx.Err() != nil {
		return
	}

	swept := s.sweeper.SweepExpired(ctx)

	pruned := 0
	if s.pruner != nil {
		pruned = s.pruner.Prune()
	}

	if swept > 0 || pruned > 0 {
		s.logger.Info("maintenance run finished",
			zap.Int("swept_links", swept),
			zap.Int("pruned_keys", pruned))
	}
}
