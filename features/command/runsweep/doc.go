// Package runsweep triggers one overdue sweep on demand, the same sweep the scheduler runs.
// A sweep that lost a concurrency conflict is retried as a whole.
package runsweep
