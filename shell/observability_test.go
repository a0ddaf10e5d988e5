package shell

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/AntonStoeckl/library-circulation/circulation"
	. "github.com/AntonStoeckl/library-circulation/testutil/observability/testdoubles" //nolint:revive
)

func Test_StatusFor(t *testing.T) {
	assert.Equal(t, StatusSuccess, StatusFor(nil))
	assert.Equal(t, StatusCanceled, StatusFor(context.Canceled))
	assert.Equal(t, StatusTimeout, StatusFor(context.DeadlineExceeded))
	assert.Equal(t, StatusConcurrencyConflict, StatusFor(errors.Join(circulation.ErrConcurrencyConflict, errors.New("40001"))))
	assert.Equal(t, StatusError, StatusFor(circulation.ErrBookUnavailable))
}

func Test_RecordCommandMetrics_RecordsStatusCounters(t *testing.T) {
	metricsCollector := NewMetricsCollectorSpy(true)

	RecordCommandMetrics(context.Background(), metricsCollector, "LendBook", StatusIdempotent, time.Millisecond)
	RecordCommandMetrics(context.Background(), metricsCollector, "LendBook", StatusConcurrencyConflict, time.Millisecond)
	RecordCommandMetrics(context.Background(), metricsCollector, "LendBook", StatusSuccess, time.Millisecond)

	assert.Equal(t, 3, metricsCollector.CountCounterRecordsForMetric(CommandHandlerCallsMetric))
	assert.Equal(t, 1, metricsCollector.CountCounterRecordsForMetric(CommandHandlerIdempotentMetric))
	assert.Equal(t, 1, metricsCollector.CountCounterRecordsForMetric(CommandHandlerConcurrencyConflictMetric))
	assert.Equal(t, 0, metricsCollector.CountCounterRecordsForMetric(CommandHandlerCanceledMetric))
	assert.True(t, metricsCollector.HasDurationRecordForMetric(CommandHandlerDurationMetric).
		WithLabel(LogAttrCommandType, "LendBook").
		WithStatus(StatusSuccess).
		Assert())
}

func Test_RecordQueryMetrics_RecordsTimeouts(t *testing.T) {
	metricsCollector := NewMetricsCollectorSpy(true)

	RecordQueryMetrics(context.Background(), metricsCollector, "CirculationReport", StatusTimeout, time.Second)

	assert.True(t, metricsCollector.HasCounterRecordForMetric(QueryHandlerTimeoutMetric).
		WithLabel(LogAttrQueryType, "CirculationReport").
		Assert())
	assert.True(t, metricsCollector.HasDurationRecordForMetric(QueryHandlerDurationMetric).
		WithStatus(StatusTimeout).
		Assert())
}

func Test_Helpers_AreNilSafe(t *testing.T) {
	ctx, span := StartCommandSpan(context.Background(), nil, "LendBook")

	assert.Nil(t, span)
	assert.NotPanics(t, func() {
		RecordCommandMetrics(ctx, nil, "LendBook", StatusSuccess, time.Millisecond)
		FinishSpan(nil, span, StatusSuccess, time.Millisecond, nil)
		LogCommandStart(ctx, nil, nil, "LendBook")
		LogCommandError(ctx, nil, nil, "LendBook", StatusError, errors.New("boom"))
	})
}

func Test_FinishSpan_AddsErrorAttribute(t *testing.T) {
	tracingCollector := NewTracingCollectorSpy(true)

	ctx, span := StartQuerySpan(context.Background(), tracingCollector, "BorrowedBooks")
	assert.NotNil(t, ctx)
	FinishSpan(tracingCollector, span, StatusError, 1500*time.Microsecond, circulation.ErrAccountNotFound)

	assert.True(t, tracingCollector.HasSpanRecordForName(SpanNameQueryHandle).
		WithStartAttribute(LogAttrQueryType, "BorrowedBooks").
		WithStatus(StatusError).
		WithEndAttribute(LogAttrDurationMS, "1.50").
		WithEndAttribute(LogAttrError, circulation.ErrAccountNotFound.Error()).
		Assert())
}
