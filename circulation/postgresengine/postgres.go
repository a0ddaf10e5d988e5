package postgresengine

import (
	"context"
	"database/sql"

	"github.com/doug-martin/goqu/v9"
	_ "github.com/doug-martin/goqu/v9/dialect/postgres" // dialect registration
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jmoiron/sqlx"

	"github.com/AntonStoeckl/library-circulation/circulation"
	"github.com/AntonStoeckl/library-circulation/circulation/internal/adapters"
	"github.com/AntonStoeckl/library-circulation/circulation/internal/sqlstore"
)

const (
	dialectPostgres = "postgres"

	// DefaultSweepLockKey is the advisory lock key used when WithSweepLockKey is not given.
	DefaultSweepLockKey int64 = 0x636972635f7377 // "circ_sw"
)

// Store is the PostgreSQL circulation.Store.
type Store struct {
	runner        sqlstore.Runner
	tables        sqlstore.Tables
	sweepLockKey  int64
	observability sqlstore.Observability
}

// NewStoreFromPGXPool creates a Store on a pgx connection pool.
func NewStoreFromPGXPool(db *pgxpool.Pool, options ...Option) (Store, error) {
	if db == nil {
		return Store{}, circulation.ErrNilDatabaseConnection
	}

	return newStore(adapters.NewPGXAdapter(db), options...)
}

// NewStoreFromSQLDB creates a Store on a database/sql handle, typically opened with the lib/pq or pgx stdlib driver.
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
	s := Store{
		tables:       sqlstore.DefaultTables(),
		sweepLockKey: DefaultSweepLockKey,
	}

	for _, option := range options {
		if err := option(&s); err != nil {
			return Store{}, err
		}
	}

	runner, err := sqlstore.NewRunner(db, s.dialect(), s.tables, s.observability)
	if err != nil {
		return Store{}, err
	}

	s.runner = runner

	return s, nil
}

func (s Store) dialect() sqlstore.Dialect {
	key := s.sweepLockKey

	return sqlstore.Dialect{
		Name:       dialectPostgres,
		RowLocking: true,
		SweepLock: func(builder goqu.DialectWrapper) *goqu.SelectDataset {
			return builder.Select(goqu.Func("pg_try_advisory_xact_lock", key))
		},
		ClassifyError: ClassifyError,
	}
}

// WithinTx runs fn in one transaction, committing when fn returns nil.
func (s Store) WithinTx(ctx context.Context, fn circulation.UnitOfWorkFunc) error {
	return s.runner.WithinTx(ctx, fn)
}

// Migrate creates the tables and indexes if they do not exist.
func (s Store) Migrate(ctx context.Context) error {
	return s.runner.Migrate(ctx, SchemaStatements(s.tables))
}

var _ circulation.Store = Store{}
