package scheduler

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

// Job represents a function to be executed by the scheduler
type Job func(ctx context.Context)

// Scheduler runs a job periodically and on manual triggers.
// Executions never overlap: a tick or trigger that arrives while a run is
// in progress is dropped.
type Scheduler struct {
	logger    *slog.Logger
	interval  time.Duration
	job       Job
	ticker    *time.Ticker
	done      chan struct{}
	triggerCh chan struct{}
	stopOnce  sync.Once
	running   sync.Mutex
	wg        sync.WaitGroup
}

// New creates a new scheduler instance
func New(logger *slog.Logger, interval time.Duration, job Job) *Scheduler {
	return &Scheduler{
		logger:    logger,
		interval:  interval,
		job:       job,
		done:      make(chan struct{}),
		triggerCh: make(chan struct{}, 1),
	}
}

// Start runs the job once immediately and then on every tick
func (s *Scheduler) Start(ctx context.Context) {
	s.logger.Info("Starting scheduler", "interval", s.interval)

	s.ticker = time.NewTicker(s.interval)

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		s.logger.Info("Running initial release check")
		s.executeJob(ctx)
	}()

	s.wg.Add(1)
	go s.run(ctx)
}

// Stop stops the loop and waits for an in-flight job to return
func (s *Scheduler) Stop() {
	s.stopOnce.Do(func() {
		s.logger.Info("Stopping scheduler")
		if s.ticker != nil {
			s.ticker.Stop()
		}
		close(s.done)
	})
	s.wg.Wait()
}

// TriggerCheck schedules an extra run. A trigger that is already pending absorbs this one.
func (s *Scheduler) TriggerCheck(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	select {
	case s.triggerCh <- struct{}{}:
		s.logger.Info("Manual trigger scheduled")
	default:
		s.logger.Warn("Manual trigger ignored - already pending")
	}
	return nil
}

func (s *Scheduler) run(ctx context.Context) {
	defer s.wg.Done()
	for {
		select {
		case <-ctx.Done():
			s.logger.Info("Scheduler stopped due to context cancellation")
			return
		case <-s.done:
			s.logger.Info("Scheduler stopped")
			return
		case <-s.ticker.C:
			s.logger.Debug("Scheduler tick - executing job")
			s.spawn(ctx)
		case <-s.triggerCh:
			s.logger.Info("Manual trigger - executing job")
			s.spawn(ctx)
		}
	}
}

func (s *Scheduler) spawn(ctx context.Context) {
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		s.executeJob(ctx)
	}()
}

// executeJob runs the job with panic recovery and logging
func (s *Scheduler) executeJob(ctx context.Context) {
	if !s.running.TryLock() {
		s.logger.Warn("Previous job still running, skipping")
		return
	}
	defer s.running.Unlock()

	start := time.Now()

	defer func() {
		if r := recover(); r != nil {
			s.logger.Error("Job panicked", "panic", r, "duration", time.Since(start))
		}
	}()

	s.logger.Debug("Job execution started")
	s.job(ctx)

	s.logger.Debug("Job execution completed", "duration", time.Since(start))
}
