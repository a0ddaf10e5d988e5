package postgresengine

import (
	"github.com/AntonStoeckl/library-circulation/circulation"
)

// Option defines a functional option for configuring Store.
type Option func(*Store) error

// WithTableNames overrides the five table names. Empty names are rejected.
func WithTableNames(loans, accounts, books, reservations, notifications string) Option {
	return func(s *Store) error {
		s.tables.Loans = loans
		s.tables.Accounts = accounts
		s.tables.Books = books
		s.tables.Reservations = reservations
		s.tables.Notifications = notifications

		return s.tables.Validate()
	}
}

// WithSweepLockKey sets the advisory lock key used to serialize sweeps.
// Deployments sharing one database must agree on it.
func WithSweepLockKey(key int64) Option {
	return func(s *Store) error {
		s.sweepLockKey = key
		return nil
	}
}

// WithLogger sets the logger for the Store.
// The logger will receive messages at different levels based on the logger's configured level:
//
// Debug level: SQL statements with execution timing, unit of work outcome (development use)
// Info level: concurrency conflicts, migrations (production-safe)
// Warn level: non-critical issues like cleanup failures
// Error level: critical failures that cause operation failures.
func WithLogger(logger circulation.Logger) Option {
	return func(s *Store) error {
		s.observability.Logger = logger
		return nil
	}
}

// WithContextualLogger sets the contextual logger for the Store.
// When set, it is preferred over the basic logger and receives trace correlation through the context.
func WithContextualLogger(logger circulation.ContextualLogger) Option {
	return func(s *Store) error {
		s.observability.ContextualLogger = logger
		return nil
	}
}

// WithMetrics sets the metrics collector for the Store.
// It receives unit of work durations and counts by status, plus concurrency conflict counts.
func WithMetrics(collector circulation.MetricsCollector) Option {
	return func(s *Store) error {
		s.observability.MetricsCollector = collector
		return nil
	}
}

// WithTracing sets the tracing collector for the Store.
func WithTracing(collector circulation.TracingCollector) Option {
	return func(s *Store) error {
		s.observability.TracingCollector = collector
		return nil
	}
}
