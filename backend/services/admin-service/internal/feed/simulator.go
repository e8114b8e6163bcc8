package feed

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
)

// SourceSimulator tags updates produced by the simulator.
const SourceSimulator = "simulator"

// MutateFunc changes up to n random records and returns their ids.
type MutateFunc func(ctx context.Context, n int) ([]string, error)

// Target is one entity the simulator churns.
type Target struct {
	Entity string
	Mutate MutateFunc
}

// Simulator replaces live telemetry in memory mode: on every tick it mutates
// a small random batch of each target and publishes the change.
type Simulator struct {
	targets   []Target
	interval  time.Duration
	batch     int
	publisher Publisher
	logger    *zap.Logger
}

// NewSimulator builds a simulator.
func NewSimulator(targets []Target, interval time.Duration, batch int, publisher Publisher, logger *zap.Logger) *Simulator {
	if interval <= 0 {
		interval = 3 * time.Second
	}
	if batch <= 0 {
		batch = 5
	}
	return &Simulator{
		targets:   targets,
		interval:  interval,
		batch:     batch,
		publisher: publisher,
		logger:    logger,
	}
}

// Run starts one ticker per target and blocks until ctx is done.
func (s *Simulator) Run(ctx context.Context) {
	var wg sync.WaitGroup
	for _, target := range s.targets {
		wg.Add(1)
		go func(t Target) {
			defer wg.Done()
			s.loop(ctx, t)
		}(target)
	}
	s.logger.Info("simulator started", zap.Int("targets", len(s.targets)), zap.Duration("interval", s.interval))
	wg.Wait()
}

func (s *Simulator) loop(ctx context.Context, t Target) {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.Tick(ctx, t)
		}
	}
}

// Tick mutates one batch of t and publishes the result.
func (s *Simulator) Tick(ctx context.Context, t Target) {
	ids, err := t.Mutate(ctx, s.batch)
	if err != nil {
		s.logger.Warn("simulated mutation failed", zap.String("entity", t.Entity), zap.Error(err))
		return
	}
	if len(ids) == 0 {
		return
	}
	s.publisher.Publish(ctx, Update{Entity: t.Entity, IDs: ids, Source: SourceSimulator})
}
