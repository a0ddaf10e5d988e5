package sqlstore

import (
	"context"
	"math"
	"time"

	"github.com/AntonStoeckl/library-circulation/circulation"
)

const (
	// MetricUnitOfWorkDuration tracks unit of work duration in seconds, labeled by status.
	MetricUnitOfWorkDuration = "store_unit_of_work_duration_seconds"

	// MetricUnitOfWorkTotal counts units of work, labeled by status (committed, rolled_back, error).
	MetricUnitOfWorkTotal = "store_unit_of_work_total"

	// MetricConcurrencyConflicts counts units of work that lost a race against a concurrent one.
	MetricConcurrencyConflicts = "store_concurrency_conflicts_total"

	// SpanNameUnitOfWork is the tracing span name of a unit of work.
	SpanNameUnitOfWork = "store.unit_of_work"

	StatusCommitted  = "committed"
	StatusRolledBack = "rolled_back"
	StatusError      = "error"

	logMsgBuildQueryFailed    = "failed to build sql statement"
	logMsgDBQueryFailed       = "database query execution failed"
	logMsgDBExecFailed        = "database statement execution failed"
	logMsgRowsAffectedFailed  = "failed to get rows affected count"
	logMsgScanRowFailed       = "failed to scan database row"
	logMsgCloseRowsFailed     = "failed to close database rows"
	logMsgBeginFailed         = "failed to begin transaction"
	logMsgCommitFailed        = "failed to commit transaction"
	logMsgRollbackFailed      = "failed to roll back transaction"
	logMsgConcurrencyConflict = "concurrency conflict detected"
	logMsgUnitOfWorkDone      = "unit of work finished"
	logMsgMigrated            = "schema migrated"
	logMsgSQLExecuted         = "executed sql for: "

	logAttrError      = "error"
	logAttrQuery      = "query"
	logAttrAction     = "action"
	logAttrStatus     = "status"
	logAttrDurationMS = "duration_ms"
	logAttrStatements = "statements"
	logAttrDialect    = "dialect"

	actionSweepLock               = "try_acquire_sweep_lock"
	actionFindOverdueLoans        = "find_overdue_loans"
	actionFindReengageableLoans   = "find_reengageable_overdue_loans"
	actionGetLoan                 = "get_loan"
	actionCreateLoan              = "create_loan"
	actionMarkLoanOverdue         = "mark_loan_overdue"
	actionMarkLoanReturned        = "mark_loan_returned"
	actionListOpenLoans           = "list_open_loans_by_user"
	actionCountLoans              = "count_loans_by_status"
	actionGetAccount              = "get_account"
	actionCreateAccount           = "create_account"
	actionLockAccount             = "lock_account"
	actionUnlockAccount           = "unlock_account"
	actionListAccounts            = "list_accounts"
	actionGetBook                 = "get_book"
	actionCreateBook              = "create_book"
	actionDecrementAvailable      = "decrement_available"
	actionIncrementAvailable      = "increment_available"
	actionListBooks               = "list_books"
	actionUpdateBook              = "update_book"
	actionListPendingReservations = "list_pending_reservations"
	actionGetReservation          = "get_reservation"
	actionCreateReservation       = "create_reservation"
	actionMarkReservationNotified = "mark_reservation_notified"
	actionSetReservationStatus    = "set_reservation_status"
	actionExpireReservations      = "expire_reservations"
	actionHasUnreadNotification   = "has_unread_notification"
	actionCreateNotification      = "create_notification"
	actionListNotifications       = "list_notifications"
	actionMarkNotificationRead    = "mark_notification_read"
	actionMigrate                 = "migrate"
)

// Observability bundles the optional logging, metrics and tracing collaborators of a SQL store.
type Observability struct {
	Logger           circulation.Logger
	ContextualLogger circulation.ContextualLogger
	MetricsCollector circulation.MetricsCollector
	TracingCollector circulation.TracingCollector
}

type observer struct {
	Observability
	dialect string
}

func toMilliseconds(d time.Duration) float64 {
	return math.Round(float64(d.Nanoseconds())/1e6*1000) / 1000
}

// logQueryWithDuration logs the SQL with its duration at debug level.
func (o *observer) logQueryWithDuration(ctx context.Context, sqlQuery, action string, duration time.Duration) {
	msg := logMsgSQLExecuted + action

	if o.ContextualLogger != nil {
		o.ContextualLogger.DebugContext(ctx, msg, logAttrDurationMS, toMilliseconds(duration), logAttrQuery, sqlQuery)
	} else if o.Logger != nil {
		o.Logger.Debug(msg, logAttrDurationMS, toMilliseconds(duration), logAttrQuery, sqlQuery)
	}
}

func (o *observer) logOperation(ctx context.Context, msg string, args ...any) {
	if o.ContextualLogger != nil {
		o.ContextualLogger.InfoContext(ctx, msg, args...)
	} else if o.Logger != nil {
		o.Logger.Info(msg, args...)
	}
}

func (o *observer) logWarn(ctx context.Context, msg string, args ...any) {
	if o.ContextualLogger != nil {
		o.ContextualLogger.WarnContext(ctx, msg, args...)
	} else if o.Logger != nil {
		o.Logger.Warn(msg, args...)
	}
}

func (o *observer) logError(ctx context.Context, msg string, err error, args ...any) {
	args = append([]any{logAttrError, err.Error()}, args...)

	if o.ContextualLogger != nil {
		o.ContextualLogger.ErrorContext(ctx, msg, args...)
	} else if o.Logger != nil {
		o.Logger.Error(msg, args...)
	}
}

func (o *observer) logDebug(ctx context.Context, msg string, args ...any) {
	if o.ContextualLogger != nil {
		o.ContextualLogger.DebugContext(ctx, msg, args...)
	} else if o.Logger != nil {
		o.Logger.Debug(msg, args...)
	}
}

func (o *observer) recordUnitOfWork(ctx context.Context, status string, duration time.Duration) {
	if o.MetricsCollector == nil {
		return
	}

	labels := map[string]string{logAttrStatus: status, logAttrDialect: o.dialect}

	if contextualCollector, ok := o.MetricsCollector.(circulation.ContextualMetricsCollector); ok {
		contextualCollector.RecordDurationContext(ctx, MetricUnitOfWorkDuration, duration, labels)
		contextualCollector.IncrementCounterContext(ctx, MetricUnitOfWorkTotal, labels)
	} else {
		o.MetricsCollector.RecordDuration(MetricUnitOfWorkDuration, duration, labels)
		o.MetricsCollector.IncrementCounter(MetricUnitOfWorkTotal, labels)
	}
}

func (o *observer) recordConcurrencyConflict(ctx context.Context) {
	if o.MetricsCollector == nil {
		return
	}

	labels := map[string]string{logAttrDialect: o.dialect}

	if contextualCollector, ok := o.MetricsCollector.(circulation.ContextualMetricsCollector); ok {
		contextualCollector.IncrementCounterContext(ctx, MetricConcurrencyConflicts, labels)
	} else {
		o.MetricsCollector.IncrementCounter(MetricConcurrencyConflicts, labels)
	}
}

func (o *observer) startSpan(ctx context.Context) (context.Context, circulation.SpanContext) {
	if o.TracingCollector == nil {
		return ctx, nil
	}

	return o.TracingCollector.StartSpan(ctx, SpanNameUnitOfWork, map[string]string{logAttrDialect: o.dialect})
}

func (o *observer) finishSpan(span circulation.SpanContext, status string, attrs map[string]string) {
	if o.TracingCollector == nil || span == nil {
		return
	}

	o.TracingCollector.FinishSpan(span, status, attrs)
}
