package sweep

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/google/uuid"

	"github.com/AntonStoeckl/library-circulation/circulation"
)

const (
	// MetricSweepDuration tracks sweep duration in seconds, labeled by status.
	MetricSweepDuration = "sweep_run_duration_seconds"

	// MetricSweepRuns counts sweeps, labeled by status (success, skipped, error).
	MetricSweepRuns = "sweep_runs_total"

	// MetricLoansProcessed records the number of loans a committed sweep transitioned.
	MetricLoansProcessed = "sweep_loans_processed"

	// MetricNotificationsCreated records the number of overdue notifications a committed sweep wrote.
	MetricNotificationsCreated = "sweep_notifications_created"

	// MetricReservationsExpired records the number of holds a committed sweep expired.
	MetricReservationsExpired = "sweep_reservations_expired"

	// SpanNameSweepRun is the tracing span name of a sweep.
	SpanNameSweepRun = "sweep.run"

	StatusSuccess = "success"
	StatusSkipped = "skipped"
	StatusError   = "error"

	LogMsgSweepStarted   = "overdue sweep started"
	LogMsgSweepCompleted = "overdue sweep completed"
	LogMsgSweepSkipped   = "overdue sweep skipped: another sweep holds the lock"
	LogMsgSweepFailed    = "overdue sweep failed, all changes rolled back"

	LogAttrStatus                  = "status"
	LogAttrDurationMS              = "duration_ms"
	LogAttrError                   = "error"
	LogAttrCandidates              = "candidates"
	LogAttrFailedLoanID            = "failed_loan_id"
	LogAttrLoansProcessed          = "loans_processed"
	LogAttrNewlyOverdue            = "newly_overdue"
	LogAttrAccountsLocked          = "accounts_locked"
	LogAttrNotificationsCreated    = "notifications_created"
	LogAttrNotificationsSuppressed = "notifications_suppressed"
	LogAttrReservationsExpired     = "reservations_expired"
	LogAttrReservationsHandedOff   = "reservations_handed_off"
)

// toMilliseconds converts a time.Duration to float64 milliseconds with 3 decimal places.
func toMilliseconds(d time.Duration) float64 {
	return math.Round(float64(d.Nanoseconds())/1e6*1000) / 1000
}

func (e *Engine) logInfo(ctx context.Context, msg string, args ...any) {
	if e.contextualLogger != nil {
		e.contextualLogger.InfoContext(ctx, msg, args...)
	} else if e.logger != nil {
		e.logger.Info(msg, args...)
	}
}

func (e *Engine) logError(ctx context.Context, msg string, args ...any) {
	if e.contextualLogger != nil {
		e.contextualLogger.ErrorContext(ctx, msg, args...)
	} else if e.logger != nil {
		e.logger.Error(msg, args...)
	}
}

func (e *Engine) logSweepStarted(ctx context.Context) {
	if e.contextualLogger != nil {
		e.contextualLogger.DebugContext(ctx, LogMsgSweepStarted)
	} else if e.logger != nil {
		e.logger.Debug(LogMsgSweepStarted)
	}
}

func resultAttrs(result Result) []any {
	return []any{
		LogAttrDurationMS, toMilliseconds(result.Duration),
		LogAttrLoansProcessed, result.LoansProcessed,
		LogAttrNewlyOverdue, result.NewlyOverdue,
		LogAttrAccountsLocked, result.AccountsLocked,
		LogAttrNotificationsCreated, result.NotificationsCreated,
		LogAttrNotificationsSuppressed, result.NotificationsSuppressed,
		LogAttrReservationsExpired, result.ReservationsExpired,
		LogAttrReservationsHandedOff, result.ReservationsHandedOff,
	}
}

func (e *Engine) recordSweepCompleted(ctx context.Context, result Result, span circulation.SpanContext) {
	e.logInfo(ctx, LogMsgSweepCompleted, resultAttrs(result)...)
	e.recordRunMetrics(ctx, StatusSuccess, result.Duration)
	e.recordValue(ctx, MetricLoansProcessed, float64(result.LoansProcessed))
	e.recordValue(ctx, MetricNotificationsCreated, float64(result.NotificationsCreated))
	e.recordValue(ctx, MetricReservationsExpired, float64(result.ReservationsExpired))
	e.finishSweepSpan(span, StatusSuccess, map[string]string{
		LogAttrLoansProcessed:       fmt.Sprintf("%d", result.LoansProcessed),
		LogAttrNotificationsCreated: fmt.Sprintf("%d", result.NotificationsCreated),
		LogAttrDurationMS:           fmt.Sprintf("%.2f", toMilliseconds(result.Duration)),
	})
}

func (e *Engine) recordSweepSkipped(ctx context.Context, result Result, span circulation.SpanContext) {
	e.logInfo(ctx, LogMsgSweepSkipped, LogAttrDurationMS, toMilliseconds(result.Duration))
	e.recordRunMetrics(ctx, StatusSkipped, result.Duration)
	e.finishSweepSpan(span, StatusSkipped, nil)
}

func (e *Engine) recordSweepFailed(
	ctx context.Context,
	err error,
	run sweepRun,
	result Result,
	span circulation.SpanContext,
) {

	args := []any{
		LogAttrError, err.Error(),
		LogAttrCandidates, run.candidates,
		LogAttrDurationMS, toMilliseconds(result.Duration),
	}

	attrs := map[string]string{LogAttrError: err.Error()}

	if run.failedLoanID != uuid.Nil {
		args = append(args, LogAttrFailedLoanID, run.failedLoanID.String())
		attrs[LogAttrFailedLoanID] = run.failedLoanID.String()
	}

	e.logError(ctx, LogMsgSweepFailed, args...)
	e.recordRunMetrics(ctx, StatusError, result.Duration)
	e.finishSweepSpan(span, StatusError, attrs)
}

func (e *Engine) recordRunMetrics(ctx context.Context, status string, duration time.Duration) {
	if e.metricsCollector == nil {
		return
	}

	labels := map[string]string{LogAttrStatus: status}

	if contextualCollector, ok := e.metricsCollector.(circulation.ContextualMetricsCollector); ok {
		contextualCollector.RecordDurationContext(ctx, MetricSweepDuration, duration, labels)
		contextualCollector.IncrementCounterContext(ctx, MetricSweepRuns, labels)
	} else {
		e.metricsCollector.RecordDuration(MetricSweepDuration, duration, labels)
		e.metricsCollector.IncrementCounter(MetricSweepRuns, labels)
	}
}

func (e *Engine) recordValue(ctx context.Context, metric string, value float64) {
	if e.metricsCollector == nil {
		return
	}

	labels := map[string]string{LogAttrStatus: StatusSuccess}

	if contextualCollector, ok := e.metricsCollector.(circulation.ContextualMetricsCollector); ok {
		contextualCollector.RecordValueContext(ctx, metric, value, labels)
	} else {
		e.metricsCollector.RecordValue(metric, value, labels)
	}
}

func (e *Engine) startSweepSpan(ctx context.Context) (context.Context, circulation.SpanContext) {
	if e.tracingCollector == nil {
		return ctx, nil
	}

	return e.tracingCollector.StartSpan(ctx, SpanNameSweepRun, nil)
}

func (e *Engine) finishSweepSpan(span circulation.SpanContext, status string, attrs map[string]string) {
	if e.tracingCollector == nil || span == nil {
		return
	}

	e.tracingCollector.FinishSpan(span, status, attrs)
}
