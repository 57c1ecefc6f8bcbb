// Package scheduler runs named jobs on fixed intervals. Jobs are
// addressed by name so operator controls can start and stop exactly the
// jobs they mean and nothing else.
package scheduler

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"
)

// Job is one scheduled unit of work. Jobs receive the scheduler's
// context and must return when it is canceled.
type Job func(ctx context.Context)

type job struct {
	name     string
	interval time.Duration
	fn       Job

	mu      sync.Mutex // guards cancel
	cancel  context.CancelFunc
	running sync.Mutex // overlap guard: held while fn executes
}

// Scheduler owns a set of named ticker jobs.
type Scheduler struct {
	mu     sync.Mutex
	jobs   map[string]*job
	wg     sync.WaitGroup
	logger *zap.Logger
}

func New(logger *zap.Logger) *Scheduler {
	return &Scheduler{
		jobs:   make(map[string]*job),
		logger: logger,
	}
}

// Register adds a job under name. Registering does not start it.
func (s *Scheduler) Register(name string, interval time.Duration, fn Job) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.jobs[name] = &job{name: name, interval: interval, fn: fn}
}

// Start launches the named job's ticker loop. Starting an already-running
// job is a no-op.
func (s *Scheduler) Start(ctx context.Context, name string) error {
	s.mu.Lock()
	j, ok := s.jobs[name]
	s.mu.Unlock()
	if !ok {
		return fmt.Errorf("unknown job: %s", name)
	}

	j.mu.Lock()
	defer j.mu.Unlock()
	if j.cancel != nil {
		return nil
	}

	jobCtx, cancel := context.WithCancel(ctx)
	j.cancel = cancel

	s.wg.Add(1)
	go s.runLoop(jobCtx, j)

	s.logger.Info("Job started", zap.String("job", name), zap.Duration("interval", j.interval))
	return nil
}

// Stop cancels the named job's loop. Stopping a stopped job is a no-op.
func (s *Scheduler) Stop(name string) error {
	s.mu.Lock()
	j, ok := s.jobs[name]
	s.mu.Unlock()
	if !ok {
		return fmt.Errorf("unknown job: %s", name)
	}

	j.mu.Lock()
	defer j.mu.Unlock()
	if j.cancel == nil {
		return nil
	}
	j.cancel()
	j.cancel = nil

	s.logger.Info("Job stopped", zap.String("job", name))
	return nil
}

// Running reports whether the named job's loop is active.
func (s *Scheduler) Running(name string) bool {
	s.mu.Lock()
	j, ok := s.jobs[name]
	s.mu.Unlock()
	if !ok {
		return false
	}
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.cancel != nil
}

// Trigger runs the named job once, immediately, honoring the overlap
// guard. It blocks until the run finishes.
func (s *Scheduler) Trigger(ctx context.Context, name string) error {
	s.mu.Lock()
	j, ok := s.jobs[name]
	s.mu.Unlock()
	if !ok {
		return fmt.Errorf("unknown job: %s", name)
	}
	s.runOnce(ctx, j)
	return nil
}

// Wait blocks until all job loops have exited.
func (s *Scheduler) Wait() {
	s.wg.Wait()
}

func (s *Scheduler) runLoop(ctx context.Context, j *job) {
	defer s.wg.Done()

	ticker := time.NewTicker(j.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.logger.Info("Job loop exiting", zap.String("job", j.name))
			return
		case <-ticker.C:
			s.runOnce(ctx, j)
		}
	}
}

// runOnce executes the job body unless the previous run is still active,
// in which case the tick is skipped.
func (s *Scheduler) runOnce(ctx context.Context, j *job) {
	if !j.running.TryLock() {
		s.logger.Warn("Previous run still active, skipping tick", zap.String("job", j.name))
		return
	}
	defer j.running.Unlock()
	j.fn(ctx)
}
