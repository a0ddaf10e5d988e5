package sweep

import (
	"errors"
	"time"

	"github.com/AntonStoeckl/library-circulation/circulation"
)

var (
	// ErrInvalidSweepTimeout is returned when a non-positive sweep timeout is configured.
	ErrInvalidSweepTimeout = errors.New("sweep timeout must be positive")

	// ErrInvalidSweepInterval is returned when a non-positive scheduler interval is configured.
	ErrInvalidSweepInterval = errors.New("sweep interval must be positive")

	// ErrNilClock is returned when a nil clock is configured.
	ErrNilClock = errors.New("clock must not be nil")

	// ErrNilStore is returned when the engine is built without a store.
	ErrNilStore = errors.New("store must not be nil")

	// ErrNilRunner is returned when the scheduler is built without a runner.
	ErrNilRunner = errors.New("runner must not be nil")
)

// Option defines a functional option for configuring Engine.
type Option func(*Engine) error

// WithClock sets the clock the engine uses as "now".
func WithClock(clock circulation.Clock) Option {
	return func(e *Engine) error {
		if clock == nil {
			return ErrNilClock
		}

		e.clock = clock

		return nil
	}
}

// WithTimeout bounds the duration of a single sweep. An expired sweep is rolled back.
func WithTimeout(timeout time.Duration) Option {
	return func(e *Engine) error {
		if timeout <= 0 {
			return ErrInvalidSweepTimeout
		}

		e.timeout = timeout

		return nil
	}
}

// WithLogger sets the logger for the Engine.
//
// Info level: sweep outcome with counts, skipped sweeps
// Error level: failed sweeps with candidate count and the failing loan.
func WithLogger(logger circulation.Logger) Option {
	return func(e *Engine) error {
		e.logger = logger
		return nil
	}
}

// WithContextualLogger sets the contextual logger for the Engine.
// When set, it is used instead of the basic logger and receives trace correlation through the context.
func WithContextualLogger(logger circulation.ContextualLogger) Option {
	return func(e *Engine) error {
		e.contextualLogger = logger
		return nil
	}
}

// WithMetrics sets the metrics collector for the Engine.
func WithMetrics(collector circulation.MetricsCollector) Option {
	return func(e *Engine) error {
		e.metricsCollector = collector
		return nil
	}
}

// WithTracing sets the tracing collector for the Engine.
func WithTracing(collector circulation.TracingCollector) Option {
	return func(e *Engine) error {
		e.tracingCollector = collector
		return nil
	}
}
