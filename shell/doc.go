// Package shell holds the infrastructure shared by the circulation command and query handlers:
// handler contracts, retry with exponential backoff for concurrency conflicts, and the metrics,
// tracing and logging helpers used by the observable wrappers.
package shell
