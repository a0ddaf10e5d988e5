package sqliteengine

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

// WithLogger sets the logger for the Store.
func WithLogger(logger circulation.Logger) Option {
	return func(s *Store) error {
		s.observability.Logger = logger
		return nil
	}
}

// WithContextualLogger sets the contextual logger, preferred over the basic logger when both are set.
func WithContextualLogger(logger circulation.ContextualLogger) Option {
	return func(s *Store) error {
		s.observability.ContextualLogger = logger
		return nil
	}
}

// WithMetrics sets the metrics collector for the Store.
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
