package orchestrator

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
)

// FlushScheduler flushes the orchestrator's pending batches on a cron
// schedule. It guarantees forward progress for timed-out batches even when
// no caller flushes explicitly.
type FlushScheduler struct {
	orch    *Orchestrator
	sink    ResultSink
	cron    *cron.Cron
	mu      sync.Mutex
	logger  *slog.Logger
	running bool
}

// NewFlushScheduler creates a flush scheduler. sink may be nil.
func NewFlushScheduler(orch *Orchestrator, sink ResultSink) *FlushScheduler {
	return &FlushScheduler{
		orch:   orch,
		sink:   sink,
		cron:   cron.New(),
		logger: slog.Default().With("component", "policy.flush_scheduler"),
	}
}

// Start begins scheduled flushing based on the orchestrator's configured
// cron expression. An empty schedule disables the scheduler.
//
// Common expressions:
//   - "* * * * *"    - Every minute
//   - "*/5 * * * *"  - Every 5 minutes
func (s *FlushScheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	schedule := s.orch.config.FlushSchedule
	if schedule == "" {
		s.logger.Info("flush schedule not configured, skipping scheduler")
		return nil
	}

	if _, err := cron.ParseStandard(schedule); err != nil {
		return fmt.Errorf("invalid cron schedule %q: %w", schedule, err)
	}

	if _, err := s.cron.AddFunc(schedule, func() {
		s.runFlush(ctx)
	}); err != nil {
		return fmt.Errorf("failed to schedule flush: %w", err)
	}

	s.cron.Start()
	s.running = true

	s.logger.Info("flush scheduler started", "schedule", schedule)

	go func() {
		<-ctx.Done()
		s.Stop()
	}()

	return nil
}

// runFlush executes one flush cycle.
func (s *FlushScheduler) runFlush(ctx context.Context) {
	pending := s.orch.PendingBatchCount()
	if pending == 0 {
		s.logger.Debug("scheduled flush skipped, no pending batches")
		return
	}

	results, err := s.orch.ExecutePendingBatches(ctx, s.sink)
	if err != nil {
		s.logger.Error("scheduled flush interrupted",
			"flushed", len(results),
			"error", err,
		)
		return
	}

	s.logger.Info("scheduled flush completed", "batches", len(results))
}

// Stop stops the scheduler and waits for a running flush to complete.
func (s *FlushScheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.cron != nil && s.running {
		ctx := s.cron.Stop()
		<-ctx.Done()
		s.running = false
		s.logger.Info("flush scheduler stopped")
	}
}

// IsRunning reports whether the scheduler is active.
func (s *FlushScheduler) IsRunning() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.running
}

// NextRun returns the next scheduled flush time, or nil if none.
func (s *FlushScheduler) NextRun() *time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.cron == nil {
		return nil
	}
	entries := s.cron.Entries()
	if len(entries) == 0 {
		return nil
	}
	next := entries[0].Next
	return &next
}
