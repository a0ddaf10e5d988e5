package runsweep

import (
	"context"

	"github.com/AntonStoeckl/library-circulation/shell"
	"github.com/AntonStoeckl/library-circulation/sweep"
)

// ResultReporter receives the Result of every completed or skipped sweep.
type ResultReporter func(ctx context.Context, result sweep.Result)

// CommandHandler runs sweeps through a sweep.Runner.
type CommandHandler struct {
	runner       sweep.Runner
	report       ResultReporter
	retryOptions []shell.RetryOption
}

// Option configures a CommandHandler.
type Option func(*CommandHandler)

// WithRetryOptions sets a custom retry configuration for the handler.
func WithRetryOptions(opts ...shell.RetryOption) Option {
	return func(h *CommandHandler) {
		h.retryOptions = opts
	}
}

// WithResultReporter registers a callback for the sweep Result.
func WithResultReporter(report ResultReporter) Option {
	return func(h *CommandHandler) {
		h.report = report
	}
}

// NewCommandHandler creates a new CommandHandler with optional configuration.
func NewCommandHandler(runner sweep.Runner, opts ...Option) CommandHandler {
	handler := CommandHandler{runner: runner}

	for _, opt := range opts {
		opt(&handler)
	}

	return handler
}

// Handle runs the sweep. A skipped sweep, or one that found nothing to do, is reported as idempotent.
func (h CommandHandler) Handle(ctx context.Context, _ Command) (shell.HandlerResult, error) {
	var result sweep.Result

	retryMetrics, err := shell.RetryWithExponentialBackoff(ctx, func(retryCtx context.Context) error {
		var runErr error
		result, runErr = h.runner.RunSweep(retryCtx)

		return runErr
	}, h.retryOptions...)

	if err != nil {
		return shell.NewErrorResult(retryMetrics), err
	}

	if h.report != nil {
		h.report(ctx, result)
	}

	if result.Skipped || !changedAnything(result) {
		return shell.NewIdempotentResult(retryMetrics), nil
	}

	return shell.NewSuccessResult(retryMetrics), nil
}

func changedAnything(result sweep.Result) bool {
	return result.NewlyOverdue > 0 ||
		result.AccountsLocked > 0 ||
		result.NotificationsCreated > 0 ||
		result.ReservationsExpired > 0
}
