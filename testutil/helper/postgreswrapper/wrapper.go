// Package postgreswrapper builds PostgreSQL stores for integration tests on the adapter named by
// CIRCULATION_DB_ADAPTER. Tests are skipped when CIRCULATION_POSTGRES_TEST_DSN is not set.
package postgreswrapper

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"strings"
	"testing"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/require"

	"github.com/AntonStoeckl/library-circulation/circulation/postgresengine"
	"github.com/AntonStoeckl/library-circulation/shell/config"
)

const truncateAll = "TRUNCATE TABLE notifications, reservations, loans, accounts, books CASCADE"

// Wrapper abstracts over the three database handles a Store can run on.
type Wrapper interface {
	GetStore() postgresengine.Store
	Close()
}

// PGXPoolWrapper wraps pgxpool-based testing
type PGXPoolWrapper struct {
	pool  *pgxpool.Pool
	store postgresengine.Store
}

func (w *PGXPoolWrapper) GetStore() postgresengine.Store {
	return w.store
}

func (w *PGXPoolWrapper) Close() {
	w.pool.Close()
}

// SQLDBWrapper wraps sql.DB-based testing
type SQLDBWrapper struct {
	db    *sql.DB
	store postgresengine.Store
}

func (w *SQLDBWrapper) GetStore() postgresengine.Store {
	return w.store
}

func (w *SQLDBWrapper) Close() {
	_ = w.db.Close() // ignore error
}

// SQLXWrapper wraps sqlx-based testing
type SQLXWrapper struct {
	db    *sqlx.DB
	store postgresengine.Store
}

func (w *SQLXWrapper) GetStore() postgresengine.Store {
	return w.store
}

func (w *SQLXWrapper) Close() {
	_ = w.db.Close() // ignore error
}

// CreateWrapperWithTestConfig connects to the test database, migrates it and returns the wrapper.
func CreateWrapperWithTestConfig(t testing.TB, options ...postgresengine.Option) Wrapper {
	t.Helper()

	dsn := config.PostgresTestDSN()
	if dsn == "" {
		t.Skipf("%s is not set", config.EnvPostgresTestDSN)
	}

	ctx := context.Background()
	adapterFromEnv := strings.ToLower(os.Getenv(config.EnvDBAdapter))

	var wrapper Wrapper

	switch adapterFromEnv {
	case config.AdapterPGX, "":
		poolConfig, err := config.PostgresPGXPoolConfig(dsn)
		require.NoError(t, err, "error building the pool config in test setup")
		pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
		require.NoError(t, err, "error connecting to DB pool in test setup")
		store, err := postgresengine.NewStoreFromPGXPool(pool, options...)
		require.NoError(t, err)
		wrapper = &PGXPoolWrapper{pool: pool, store: store}

	case config.AdapterSQL:
		db, err := config.PostgresSQLDB(ctx, dsn)
		require.NoError(t, err, "error connecting to DB in test setup")
		store, err := postgresengine.NewStoreFromSQLDB(db, options...)
		require.NoError(t, err)
		wrapper = &SQLDBWrapper{db: db, store: store}

	case config.AdapterSQLX:
		db, err := config.PostgresSQLX(ctx, dsn)
		require.NoError(t, err, "error connecting to DB in test setup")
		store, err := postgresengine.NewStoreFromSQLX(db, options...)
		require.NoError(t, err)
		wrapper = &SQLXWrapper{db: db, store: store}

	default: // neither one of the known types nor empty
		panic(fmt.Sprintf("unsupported wrapper type from env: %s", adapterFromEnv))
	}

	require.NoError(t, wrapper.GetStore().Migrate(ctx), "error migrating the test database")

	return wrapper
}

// CleanUp empties all circulation tables.
func CleanUp(t testing.TB, wrapper Wrapper) {
	t.Helper()

	var err error

	switch w := wrapper.(type) {
	case *PGXPoolWrapper:
		_, err = w.pool.Exec(context.Background(), truncateAll)

	case *SQLDBWrapper:
		_, err = w.db.Exec(truncateAll)

	case *SQLXWrapper:
		_, err = w.db.Exec(truncateAll)

	default:
		panic(fmt.Sprintf("unsupported wrapper type: %T", w))
	}

	require.NoError(t, err, "error cleaning up the circulation tables")
}

// CountRows returns the number of rows in table.
func CountRows(t testing.TB, wrapper Wrapper, table string) int {
	t.Helper()

	query := fmt.Sprintf("SELECT count(*) FROM %s", table)

	var cnt int
	var err error

	switch w := wrapper.(type) {
	case *PGXPoolWrapper:
		err = w.pool.QueryRow(context.Background(), query).Scan(&cnt)

	case *SQLDBWrapper:
		err = w.db.QueryRow(query).Scan(&cnt)

	case *SQLXWrapper:
		err = w.db.Get(&cnt, query)

	default:
		panic(fmt.Sprintf("unsupported wrapper type: %T", w))
	}

	require.NoError(t, err, "error counting rows")

	return cnt
}
