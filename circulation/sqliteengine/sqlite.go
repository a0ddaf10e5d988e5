package sqliteengine

import (
	"context"
	"database/sql"
	"fmt"
	"net/url"
	"strings"

	_ "github.com/doug-martin/goqu/v9/dialect/sqlite3" // dialect registration
	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite" // registers the "sqlite" driver

	"github.com/AntonStoeckl/library-circulation/circulation"
	"github.com/AntonStoeckl/library-circulation/circulation/internal/adapters"
	"github.com/AntonStoeckl/library-circulation/circulation/internal/sqlstore"
)

const (
	// DriverName is the database/sql driver name registered by modernc.org/sqlite.
	DriverName = "sqlite"

	// MemoryPath opens a private in-memory database.
	MemoryPath = ":memory:"

	dialectSQLite = "sqlite3"

	defaultBusyTimeoutMS = 5000
)

// Store is the SQLite circulation.Store.
type Store struct {
	runner        sqlstore.Runner
	tables        sqlstore.Tables
	observability sqlstore.Observability
}

// DSN returns the connection string OpenDB uses for path.
func DSN(path string) string {
	query := url.Values{}
	query.Add("_pragma", "foreign_keys(1)")
	query.Add("_pragma", fmt.Sprintf("busy_timeout(%d)", defaultBusyTimeoutMS))
	query.Set("_txlock", "immediate")
	query.Set("_time_format", "sqlite")

	if path == "" || path == MemoryPath {
		return "file::memory:?" + query.Encode()
	}

	return "file:" + strings.TrimPrefix(path, "file:") + "?" + query.Encode()
}

// OpenDB opens and pings the database at path. An empty path or MemoryPath gives an
// in-memory database, which is bound to a single connection so every unit of work sees it.
func OpenDB(ctx context.Context, path string) (*sql.DB, error) {
	db, err := sql.Open(DriverName, DSN(path))
	if err != nil {
		return nil, err
	}

	if path == "" || path == MemoryPath {
		db.SetMaxOpenConns(1)
	}

	if pingErr := db.PingContext(ctx); pingErr != nil {
		_ = db.Close()
		return nil, pingErr
	}

	return db, nil
}

// NewStoreFromSQLDB creates a Store on a database opened with OpenDB or an equivalent DSN.
func NewStoreFromSQLDB(db *sql.DB, options ...Option) (Store, error) {
	if db == nil {
		return Store{}, circulation.ErrNilDatabaseConnection
	}

	return newStore(adapters.NewSQLAdapter(db), options...)
}

// NewStoreFromSQLX creates a Store on a sqlx handle.
func NewStoreFromSQLX(db *sqlx.DB, options ...Option) (Store, error) {
	if db == nil {
		return Store{}, circulation.ErrNilDatabaseConnection
	}

	return newStore(adapters.NewSQLXAdapter(db), options...)
}

func newStore(db adapters.DBAdapter, options ...Option) (Store, error) {
	s := Store{tables: sqlstore.DefaultTables()}

	for _, option := range options {
		if err := option(&s); err != nil {
			return Store{}, err
		}
	}

	dialect := sqlstore.Dialect{
		Name:          dialectSQLite,
		RowLocking:    false,
		SweepLock:     nil,
		ClassifyError: ClassifyError,
	}

	runner, err := sqlstore.NewRunner(db, dialect, s.tables, s.observability)
	if err != nil {
		return Store{}, err
	}

	s.runner = runner

	return s, nil
}

// WithinTx runs fn in one BEGIN IMMEDIATE transaction, committing when fn returns nil.
func (s Store) WithinTx(ctx context.Context, fn circulation.UnitOfWorkFunc) error {
	return s.runner.WithinTx(ctx, fn)
}

// Migrate creates the tables and indexes if they do not exist.
func (s Store) Migrate(ctx context.Context) error {
	return s.runner.Migrate(ctx, SchemaStatements(s.tables))
}

var _ circulation.Store = Store{}
