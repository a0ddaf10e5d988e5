package sqliteengine

import (
	"context"
	"errors"

	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"

	"github.com/AntonStoeckl/library-circulation/circulation"
)

// ClassifyError maps a SQLite error onto the circulation error kinds.
// BUSY and LOCKED mean another connection holds the database. A failed foreign key means a
// referenced entity is missing, any other constraint failure is a conflict with committed data.
func ClassifyError(err error) error {
	if err == nil {
		return nil
	}

	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}

	var sqliteErr *sqlite.Error
	if !errors.As(err, &sqliteErr) {
		return errors.Join(circulation.ErrTransientStore, err)
	}

	code := sqliteErr.Code()

	switch code & 0xff {
	case sqlite3.SQLITE_BUSY, sqlite3.SQLITE_LOCKED:
		return errors.Join(circulation.ErrConcurrencyConflict, err)

	case sqlite3.SQLITE_CONSTRAINT:
		if code == sqlite3.SQLITE_CONSTRAINT_FOREIGNKEY {
			return errors.Join(circulation.ErrNotFound, err)
		}

		if code == sqlite3.SQLITE_CONSTRAINT_CHECK {
			return errors.Join(circulation.ErrTransientStore, err)
		}

		return errors.Join(circulation.ErrConcurrencyConflict, err)
	}

	return errors.Join(circulation.ErrTransientStore, err)
}
