package postgresengine

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/lib/pq"

	"github.com/AntonStoeckl/library-circulation/circulation"
)

const (
	codeSerializationFailure = "40001"
	codeDeadlockDetected     = "40P01"
	codeUniqueViolation      = "23505"
	codeForeignKeyViolation  = "23503"
	codeLockNotAvailable     = "55P03"
)

// ClassifyError maps a PostgreSQL driver error onto the circulation error kinds.
// Serialization failures, deadlocks and unique violations are concurrency conflicts.
// Foreign key violations mean a referenced entity does not exist. Context errors pass through
// and everything else is transient.
func ClassifyError(err error) error {
	if err == nil {
		return nil
	}

	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}

	switch sqlState(err) {
	case codeSerializationFailure, codeDeadlockDetected, codeUniqueViolation, codeLockNotAvailable:
		return errors.Join(circulation.ErrConcurrencyConflict, err)
	case codeForeignKeyViolation:
		return errors.Join(circulation.ErrNotFound, err)
	}

	return errors.Join(circulation.ErrTransientStore, err)
}

// sqlState extracts the SQLSTATE from pgx and lib/pq errors.
func sqlState(err error) string {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code
	}

	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return string(pqErr.Code)
	}

	return ""
}
