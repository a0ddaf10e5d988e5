package oteladapters_test

import (
	"bytes"
	"context"
	"log/slog"
	"sync"
	"testing"

	jsoniter "github.com/json-iterator/go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/log"
	"go.opentelemetry.io/otel/log/embedded"

	"github.com/AntonStoeckl/library-circulation/circulation/oteladapters"
)

type recordingLogger struct {
	embedded.Logger
	mu      sync.Mutex
	records []log.Record
}

func (l *recordingLogger) Emit(_ context.Context, record log.Record) {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.records = append(l.records, record.Clone())
}

func (l *recordingLogger) Enabled(context.Context, log.EnabledParameters) bool {
	return true
}

func attributesOf(record log.Record) map[string]log.Value {
	attrs := make(map[string]log.Value)
	record.WalkAttributes(func(kv log.KeyValue) bool {
		attrs[kv.Key] = kv.Value
		return true
	})

	return attrs
}

func Test_SlogBridgeLoggerWithHandler_WritesAllLevels(t *testing.T) {
	// arrange
	var buf bytes.Buffer
	logger := oteladapters.NewSlogBridgeLoggerWithHandler(slog.NewJSONHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
	ctx := context.Background()

	// act
	logger.DebugContext(ctx, "executed sql for: get_loan", "duration_ms", 1.5)
	logger.InfoContext(ctx, "overdue sweep completed", "loans_processed", 2)
	logger.WarnContext(ctx, "failed to close database rows")
	logger.ErrorContext(ctx, "overdue sweep failed, all changes rolled back", "error", "boom")

	// assert
	lines := bytes.Split(bytes.TrimSpace(buf.Bytes()), []byte("\n"))
	require.Len(t, lines, 4)

	var first map[string]any
	require.NoError(t, jsoniter.Unmarshal(lines[0], &first))
	assert.Equal(t, "DEBUG", first["level"])
	assert.Equal(t, 1.5, first["duration_ms"])

	var last map[string]any
	require.NoError(t, jsoniter.Unmarshal(lines[3], &last))
	assert.Equal(t, "ERROR", last["level"])
	assert.Equal(t, "boom", last["error"])
}

func Test_SlogBridgeLogger_DoesNotPanicWithoutProvider(t *testing.T) {
	logger := oteladapters.NewSlogBridgeLogger("circulation")

	assert.NotPanics(t, func() {
		logger.InfoContext(context.Background(), "overdue sweep started")
	})
}

func Test_OTelLogger_EmitsSeverityBodyAndTypedAttributes(t *testing.T) {
	// arrange
	recorder := &recordingLogger{}
	logger := oteladapters.NewOTelLogger(recorder)

	// act
	logger.InfoContext(context.Background(), "overdue sweep completed",
		"loans_processed", 3,
		"duration_ms", 12.5,
		"skipped", false,
		"status", "success",
	)
	logger.ErrorContext(context.Background(), "overdue sweep failed, all changes rolled back", "error")

	// assert
	require.Len(t, recorder.records, 2)

	info := recorder.records[0]
	assert.Equal(t, log.SeverityInfo, info.Severity())
	assert.Equal(t, "overdue sweep completed", info.Body().AsString())

	attrs := attributesOf(info)
	assert.Equal(t, int64(3), attrs["loans_processed"].AsInt64())
	assert.Equal(t, 12.5, attrs["duration_ms"].AsFloat64())
	assert.False(t, attrs["skipped"].AsBool())
	assert.Equal(t, "success", attrs["status"].AsString())

	failed := recorder.records[1]
	assert.Equal(t, log.SeverityError, failed.Severity())
	assert.Empty(t, attributesOf(failed), "a key without value is dropped")
}
