// Package scheduler runs the background reconciliation loop.
package scheduler

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/vedlang/shabd/internal/connectivity"
	"github.com/vedlang/shabd/internal/pipeline"
)

// DefaultInterval is the cadence of automatic reconciliation passes.
const DefaultInterval = 300 * time.Second

// Scheduler drains the pending backlog on a fixed interval whenever the
// connectivity probe reports the provider as reachable. Pass failures and
// panics are logged and the loop keeps running.
type Scheduler struct {
	pipeline *pipeline.Pipeline
	prober   connectivity.Prober
	interval time.Duration
	logger   *zap.Logger

	mu      sync.Mutex
	done    chan struct{}
	wg      sync.WaitGroup
	running bool
}

// New creates a scheduler. A non-positive interval falls back to
// DefaultInterval.
func New(p *pipeline.Pipeline, prober connectivity.Prober, interval time.Duration, logger *zap.Logger) *Scheduler {
	if interval <= 0 {
		interval = DefaultInterval
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Scheduler{
		pipeline: p,
		prober:   prober,
		interval: interval,
		logger:   logger,
	}
}

// Start launches the background loop. Calling Start on a running scheduler is
// a no-op.
func (s *Scheduler) Start() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.running {
		return
	}
	s.running = true
	s.done = make(chan struct{})
	s.wg.Add(1)
	go s.run(s.done)
	s.logger.Info("background reconciliation started",
		zap.Duration("interval", s.interval))
}

// Stop signals the loop to exit and waits for an in-flight pass to finish.
// Stopping a stopped scheduler is a no-op.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return
	}
	s.running = false
	close(s.done)
	s.mu.Unlock()

	s.wg.Wait()
	s.logger.Info("background reconciliation stopped")
}

func (s *Scheduler) run(done chan struct{}) {
	defer s.wg.Done()

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-done:
			return
		case <-ticker.C:
			s.runOnce(done)
		}
	}
}

// runOnce executes a single guarded pass. The pipeline's context is cancelled
// when the scheduler stops, so a long pass does not block shutdown forever.
func (s *Scheduler) runOnce(done chan struct{}) {
	defer func() {
		if r := recover(); r != nil {
			s.logger.Error("reconciliation pass panicked", zap.Any("panic", r))
		}
	}()

	if !s.prober.Online() {
		s.logger.Debug("skipping reconciliation pass, provider unreachable")
		return
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() {
		select {
		case <-done:
			cancel()
		case <-ctx.Done():
		}
	}()

	s.pipeline.Drain(ctx)
}
