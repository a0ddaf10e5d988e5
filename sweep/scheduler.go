package sweep

import (
	"context"
	"sync"
	"time"

	"github.com/AntonStoeckl/library-circulation/circulation"
)

const (
	// DefaultInterval is the time between two scheduled sweeps.
	DefaultInterval = time.Hour

	LogMsgSchedulerStarted = "sweep scheduler started"
	LogMsgSchedulerStopped = "sweep scheduler stopped"
	LogMsgScheduledFailed  = "scheduled sweep failed, waiting for next tick"
	LogAttrInterval        = "interval"
)

// Runner runs one sweep. *Engine implements it.
type Runner interface {
	RunSweep(ctx context.Context) (Result, error)
}

// Scheduler triggers a Runner on a fixed interval from a single goroutine.
// A failing sweep is logged and the next tick runs as usual.
type Scheduler struct {
	runner     Runner
	interval   time.Duration
	runOnStart bool
	logger     circulation.Logger
	stopCh     chan struct{}
	wg         sync.WaitGroup
	mu         sync.Mutex
	isRunning  bool
}

// SchedulerOption defines a functional option for configuring Scheduler.
type SchedulerOption func(*Scheduler) error

// WithInterval sets the time between two sweeps.
func WithInterval(interval time.Duration) SchedulerOption {
	return func(s *Scheduler) error {
		if interval <= 0 {
			return ErrInvalidSweepInterval
		}

		s.interval = interval

		return nil
	}
}

// WithRunOnStart makes the scheduler sweep once right after Start instead of waiting for the first tick.
func WithRunOnStart() SchedulerOption {
	return func(s *Scheduler) error {
		s.runOnStart = true
		return nil
	}
}

// WithSchedulerLogger sets the logger for the Scheduler.
func WithSchedulerLogger(logger circulation.Logger) SchedulerOption {
	return func(s *Scheduler) error {
		s.logger = logger
		return nil
	}
}

// NewScheduler creates a stopped Scheduler.
func NewScheduler(runner Runner, options ...SchedulerOption) (*Scheduler, error) {
	if runner == nil {
		return nil, ErrNilRunner
	}

	s := &Scheduler{
		runner:   runner,
		interval: DefaultInterval,
	}

	for _, option := range options {
		if err := option(s); err != nil {
			return nil, err
		}
	}

	return s, nil
}

// Start launches the ticker goroutine. Starting a running scheduler does nothing.
// The goroutine ends on Stop or when ctx is done.
func (s *Scheduler) Start(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.isRunning {
		return
	}

	s.isRunning = true
	s.stopCh = make(chan struct{})
	s.wg.Add(1)

	go s.loop(ctx, s.stopCh)

	if s.logger != nil {
		s.logger.Info(LogMsgSchedulerStarted, LogAttrInterval, s.interval.String())
	}
}

// Stop ends the ticker goroutine and waits for a running sweep to return.
// Stopping a stopped scheduler does nothing.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	if !s.isRunning {
		s.mu.Unlock()
		return
	}

	s.isRunning = false
	close(s.stopCh)
	s.mu.Unlock()

	s.wg.Wait()

	if s.logger != nil {
		s.logger.Info(LogMsgSchedulerStopped)
	}
}

// IsRunning reports whether the ticker goroutine is active.
func (s *Scheduler) IsRunning() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.isRunning
}

func (s *Scheduler) loop(ctx context.Context, stopCh <-chan struct{}) {
	defer s.wg.Done()

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	if s.runOnStart {
		s.runOnce(ctx)
	}

	for {
		select {
		case <-ctx.Done():
			s.markStopped(stopCh)
			return
		case <-stopCh:
			return
		case <-ticker.C:
			s.runOnce(ctx)
		}
	}
}

// markStopped clears isRunning after ctx ended, unless Stop or a newer Start already took over.
func (s *Scheduler) markStopped(stopCh <-chan struct{}) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.isRunning && s.stopCh == stopCh {
		s.isRunning = false

		if s.logger != nil {
			s.logger.Info(LogMsgSchedulerStopped)
		}
	}
}

func (s *Scheduler) runOnce(ctx context.Context) {
	if _, err := s.runner.RunSweep(ctx); err != nil && s.logger != nil {
		s.logger.Warn(LogMsgScheduledFailed, LogAttrError, err.Error())
	}
}
