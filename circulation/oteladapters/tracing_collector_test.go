package oteladapters_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"

	"github.com/AntonStoeckl/library-circulation/circulation/oteladapters"
)

func newTracing() (*oteladapters.TracingCollector, *tracetest.InMemoryExporter) {
	exporter := tracetest.NewInMemoryExporter()
	provider := sdktrace.NewTracerProvider(sdktrace.WithSyncer(exporter))

	return oteladapters.NewTracingCollector(provider.Tracer("test")), exporter
}

func Test_TracingCollector_StartAndFinishSpan(t *testing.T) {
	// arrange
	collector, exporter := newTracing()

	// act
	ctx, spanCtx := collector.StartSpan(context.Background(), "sweep.run", map[string]string{"dialect": "postgres"})
	collector.FinishSpan(spanCtx, "success", map[string]string{"loans_processed": "3"})

	// assert
	assert.NotNil(t, ctx)
	spans := exporter.GetSpans()
	require.Len(t, spans, 1)
	assert.Equal(t, "sweep.run", spans[0].Name)
	assertSpanHasAttribute(t, spans[0], "dialect", "postgres")
	assertSpanHasAttribute(t, spans[0], "loans_processed", "3")
	assert.Equal(t, codes.Ok, spans[0].Status.Code)
}

func Test_TracingCollector_StatusMapping(t *testing.T) {
	testCases := []struct {
		status string
		code   codes.Code
	}{
		{status: "success", code: codes.Ok},
		{status: "committed", code: codes.Ok},
		{status: "skipped", code: codes.Ok},
		{status: "idempotent", code: codes.Ok},
		{status: "error", code: codes.Error},
		{status: "rolled_back", code: codes.Error},
		{status: "canceled", code: codes.Error},
		{status: "timeout", code: codes.Error},
		{status: "conflict", code: codes.Error},
		{status: "something_else", code: codes.Unset},
	}

	for _, tc := range testCases {
		t.Run(tc.status, func(t *testing.T) {
			// arrange
			collector, exporter := newTracing()

			// act
			_, spanCtx := collector.StartSpan(context.Background(), "op", nil)
			collector.FinishSpan(spanCtx, tc.status, nil)

			// assert
			spans := exporter.GetSpans()
			require.Len(t, spans, 1)
			assert.Equal(t, tc.code, spans[0].Status.Code)
		})
	}
}

func Test_TracingCollector_UnknownStatus_IsRecordedAsAttribute(t *testing.T) {
	// arrange
	collector, exporter := newTracing()

	// act
	_, spanCtx := collector.StartSpan(context.Background(), "op", nil)
	collector.FinishSpan(spanCtx, "partially_done", nil)

	// assert
	spans := exporter.GetSpans()
	require.Len(t, spans, 1)
	assertSpanHasAttribute(t, spans[0], "status", "partially_done")
}

func Test_TracingCollector_ChildSpans_ShareTheTrace(t *testing.T) {
	// arrange
	collector, exporter := newTracing()

	// act
	ctx, parent := collector.StartSpan(context.Background(), "command.run_sweep", nil)
	_, child := collector.StartSpan(ctx, "store.unit_of_work", nil)
	collector.FinishSpan(child, "committed", nil)
	collector.FinishSpan(parent, "success", nil)

	// assert
	spans := exporter.GetSpans()
	require.Len(t, spans, 2)
	assert.Equal(t, spans[1].SpanContext.TraceID(), spans[0].SpanContext.TraceID())
	assert.Equal(t, spans[1].SpanContext.SpanID(), spans[0].Parent.SpanID())
}

func Test_TracingCollector_FinishSpan_IgnoresForeignSpanContexts(t *testing.T) {
	// arrange
	collector, exporter := newTracing()

	// act
	collector.FinishSpan(foreignSpanContext{}, "success", nil)

	// assert
	assert.Empty(t, exporter.GetSpans())
}

func Test_OTelSpanContext_SetStatusAndAddAttribute(t *testing.T) {
	// arrange
	collector, exporter := newTracing()
	_, spanCtx := collector.StartSpan(context.Background(), "op", nil)

	// act
	spanCtx.AddAttribute("book_id", "b-1")
	spanCtx.SetStatus("error")
	collector.FinishSpan(spanCtx, "error", nil)

	// assert
	spans := exporter.GetSpans()
	require.Len(t, spans, 1)
	assertSpanHasAttribute(t, spans[0], "book_id", "b-1")
	assert.Equal(t, codes.Error, spans[0].Status.Code)
}

type foreignSpanContext struct{}

func (foreignSpanContext) SetStatus(string)            {}
func (foreignSpanContext) AddAttribute(string, string) {}

func assertSpanHasAttribute(t *testing.T, span tracetest.SpanStub, key, expectedValue string) {
	t.Helper()

	for _, attr := range span.Attributes {
		if string(attr.Key) == key {
			assert.Equal(t, expectedValue, attr.Value.AsString(), "attribute %s", key)
			return
		}
	}

	t.Errorf("span %s has no attribute %s", span.Name, key)
}
