package sqlstore

import (
	"github.com/doug-martin/goqu/v9"

	"github.com/AntonStoeckl/library-circulation/circulation"
)

const (
	defaultLoansTable         = "loans"
	defaultAccountsTable      = "accounts"
	defaultBooksTable         = "books"
	defaultReservationsTable  = "reservations"
	defaultNotificationsTable = "notifications"
)

// Tables names the five circulation tables.
type Tables struct {
	Loans         string
	Accounts      string
	Books         string
	Reservations  string
	Notifications string
}

// DefaultTables returns the table names Migrate creates when nothing else is configured.
func DefaultTables() Tables {
	return Tables{
		Loans:         defaultLoansTable,
		Accounts:      defaultAccountsTable,
		Books:         defaultBooksTable,
		Reservations:  defaultReservationsTable,
		Notifications: defaultNotificationsTable,
	}
}

// Validate rejects empty table names.
func (t Tables) Validate() error {
	for _, name := range []string{t.Loans, t.Accounts, t.Books, t.Reservations, t.Notifications} {
		if name == "" {
			return circulation.ErrEmptyTableName
		}
	}

	return nil
}

// Dialect describes a database flavor.
type Dialect struct {
	// Name is the goqu dialect, "postgres" or "sqlite3".
	Name string

	// RowLocking adds FOR UPDATE to the selects that precede updates.
	RowLocking bool

	// SweepLock builds a select returning one boolean: true when the transaction got the sweep lock.
	// Nil means the transaction itself already excludes other writers.
	SweepLock func(builder goqu.DialectWrapper) *goqu.SelectDataset

	// ClassifyError maps a driver error onto ErrConcurrencyConflict, ErrNotFound or ErrTransientStore.
	ClassifyError func(err error) error
}
