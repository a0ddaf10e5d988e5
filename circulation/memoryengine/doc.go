// Package memoryengine provides an in-process implementation of circulation.Store.
//
// Units of work are serialized and run on a copy of the state which replaces the
// committed state only when the unit of work succeeds, so a failing unit of work leaves
// no trace. The same uniqueness rules as the SQL schemas are enforced and reported as
// circulation.ErrConcurrencyConflict.
//
// Faults can be injected per operation to exercise rollback paths in tests.
package memoryengine
