// Package testdoubles provides spies for the observability interfaces of the circulation packages.
//
//   - LogHandlerSpy: a slog.Handler that captures records, for slog.Logger based logging
//   - ContextualLoggerSpy: captures context-aware log calls
//   - MetricsCollectorSpy: captures duration, counter and value recordings
//   - TracingCollectorSpy: captures started and finished spans
//
// The spies let tests assert on sweep and command instrumentation without telemetry backends.
package testdoubles
