// Package oteladapters provides OpenTelemetry implementations of the circulation observability
// interfaces: a contextual logger (slog bridge or the log API directly), a metrics collector
// creating instruments on demand, and a tracing collector.
package oteladapters
