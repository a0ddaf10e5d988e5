package circulation

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound is the base error for entities that do not exist.
	ErrNotFound = errors.New("not found")

	// ErrInvalidState is the base error for operations that are not allowed in the current state of an entity.
	ErrInvalidState = errors.New("invalid state")

	// ErrTransientStore is joined with every error that originates from the underlying database.
	ErrTransientStore = errors.New("transient store error")

	// ErrConcurrencyConflict is returned when a unit of work lost a race against a concurrent one
	// (serialization failure, deadlock, unique violation of a dedup index).
	ErrConcurrencyConflict = errors.New("concurrency conflict")

	// ErrSweepInProgress is returned when another sweep holds the sweep lock.
	ErrSweepInProgress = errors.New("sweep already in progress")

	// ErrNilDatabaseConnection is returned when a store is built from a nil database connection.
	ErrNilDatabaseConnection = errors.New("database connection must not be nil")

	// ErrEmptyTableName is returned when an empty table name is configured.
	ErrEmptyTableName = errors.New("table name must not be empty")

	// ErrBuildingQueryFailed is returned when a SQL statement could not be built.
	ErrBuildingQueryFailed = errors.New("building the sql query failed")

	// ErrScanningDBRowFailed is returned when a database row could not be scanned.
	ErrScanningDBRowFailed = errors.New("scanning the database row failed")
)

var (
	ErrLoanNotFound        = fmt.Errorf("loan %w", ErrNotFound)
	ErrAccountNotFound     = fmt.Errorf("account %w", ErrNotFound)
	ErrBookNotFound        = fmt.Errorf("book %w", ErrNotFound)
	ErrReservationNotFound = fmt.Errorf("reservation %w", ErrNotFound)
	ErrNotificationMissing = fmt.Errorf("notification %w", ErrNotFound)
)

var (
	ErrLoanAlreadyReturned   = fmt.Errorf("%w: loan is already returned", ErrInvalidState)
	ErrLoanNotOpen           = fmt.Errorf("%w: loan is neither borrowed nor overdue", ErrInvalidState)
	ErrAccountBlocked        = fmt.Errorf("%w: account is blocked", ErrInvalidState)
	ErrBookUnavailable       = fmt.Errorf("%w: no copy of the book is available", ErrInvalidState)
	ErrBookAvailable         = fmt.Errorf("%w: book has available copies, reserve is not needed", ErrInvalidState)
	ErrInventoryExceeded     = fmt.Errorf("%w: available quantity would exceed quantity", ErrInvalidState)
	ErrReservationNotPending = fmt.Errorf("%w: reservation is not pending", ErrInvalidState)
	ErrEmptyBlockReason      = fmt.Errorf("%w: a blocked account needs a block reason", ErrInvalidState)
	ErrReturnDateMismatch    = fmt.Errorf("%w: return date must be set exactly when the loan is returned", ErrInvalidState)
	ErrInvalidQuantity       = fmt.Errorf("%w: available quantity must be between zero and quantity", ErrInvalidState)
)

// IsTransient reports whether err is a store error that may succeed when retried later.
func IsTransient(err error) bool {
	return errors.Is(err, ErrTransientStore) || errors.Is(err, ErrConcurrencyConflict)
}
