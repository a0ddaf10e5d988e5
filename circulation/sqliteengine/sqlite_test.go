package sqliteengine_test

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"testing"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"

	"github.com/AntonStoeckl/library-circulation/circulation"
	. "github.com/AntonStoeckl/library-circulation/circulation/sqliteengine"
	"github.com/AntonStoeckl/library-circulation/sweep"
	"github.com/AntonStoeckl/library-circulation/testutil/helper"
	"github.com/AntonStoeckl/library-circulation/testutil/observability/testdoubles"
	"github.com/AntonStoeckl/library-circulation/testutil/storetest"
)

const day = 24 * time.Hour

func newStore(t *testing.T, path string, options ...Option) Store {
	t.Helper()

	db, err := OpenDB(context.Background(), path)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	store, err := NewStoreFromSQLDB(db, options...)
	require.NoError(t, err)
	require.NoError(t, store.Migrate(context.Background()))

	return store
}

func Test_Store_FulfillsTheStoreContract_InMemory(t *testing.T) {
	storetest.Run(t, func(t *testing.T) circulation.Store {
		return newStore(t, MemoryPath)
	})
}

func Test_Store_FulfillsTheStoreContract_OnFile(t *testing.T) {
	storetest.Run(t, func(t *testing.T) circulation.Store {
		return newStore(t, filepath.Join(t.TempDir(), "circulation.db"))
	})
}

func Test_Store_WorksOnSQLX(t *testing.T) {
	// setup
	ctx := context.Background()
	db, err := OpenDB(ctx, MemoryPath)
	require.NoError(t, err)
	defer db.Close()

	store, err := NewStoreFromSQLX(sqlx.NewDb(db, DriverName))
	require.NoError(t, err)
	require.NoError(t, store.Migrate(ctx))

	// arrange
	book := helper.GivenBookWasAdded(t, ctx, store, 2)

	// act
	var found circulation.Book
	err = store.WithinTx(ctx, func(ctx context.Context, uow circulation.UnitOfWork) error {
		var getErr error
		found, getErr = uow.GetBook(ctx, book.ID)
		return getErr
	})

	// assert
	require.NoError(t, err)
	assert.Equal(t, book, found)
}

func Test_Store_Migrate_IsIdempotent(t *testing.T) {
	// setup
	store := newStore(t, MemoryPath)

	// act
	err := store.Migrate(context.Background())

	// assert
	assert.NoError(t, err)
}

func Test_Store_WithCustomTableNames(t *testing.T) {
	// setup
	ctx := context.Background()
	store := newStore(t, MemoryPath, WithTableNames("c_loans", "c_accounts", "c_books", "c_reservations", "c_notifications"))
	now := helper.FakeClock()

	// arrange
	book := helper.GivenBookWasAdded(t, ctx, store, 1)
	reader := helper.GivenAccountWasOpened(t, ctx, store)
	loan := helper.GivenBookWasLent(t, ctx, store, book.ID, reader.ID, now.Add(-3*day), now.Add(-day))

	engine, err := sweep.NewEngine(store, sweep.WithClock(helper.ClockAt(now)))
	require.NoError(t, err)

	// act
	result, err := engine.RunSweep(ctx)

	// assert
	require.NoError(t, err)
	assert.Equal(t, 1, result.NotificationsCreated)
	assert.Equal(t, circulation.LoanOverdue, storetest.ReadState(t, ctx, store, loan.ID, reader.ID).Loan.Status)
}

func Test_NewStore_RejectsInvalidInput(t *testing.T) {
	_, err := NewStoreFromSQLDB(nil)
	assert.ErrorIs(t, err, circulation.ErrNilDatabaseConnection)

	_, err = NewStoreFromSQLX(nil)
	assert.ErrorIs(t, err, circulation.ErrNilDatabaseConnection)

	db, err := OpenDB(context.Background(), MemoryPath)
	require.NoError(t, err)
	defer db.Close()

	_, err = NewStoreFromSQLDB(db, WithTableNames("loans", "", "books", "reservations", "notifications"))
	assert.ErrorIs(t, err, circulation.ErrEmptyTableName)
}

func Test_Store_ReportsForeignKeyViolationsAsNotFound(t *testing.T) {
	// setup
	ctx := context.Background()
	store := newStore(t, MemoryPath)
	now := helper.FakeClock()

	// act
	err := store.WithinTx(ctx, func(ctx context.Context, uow circulation.UnitOfWork) error {
		return uow.CreateLoan(ctx, circulation.BuildLoan(
			helper.GivenUniqueID(t), helper.GivenUniqueID(t), helper.GivenUniqueID(t), now, now.Add(14*day)))
	})

	// assert
	assert.ErrorIs(t, err, circulation.ErrNotFound)
	assert.False(t, circulation.IsTransient(err))
}

func Test_Store_LogsSQLAndUnitOfWorkOutcome(t *testing.T) {
	// setup
	ctx := context.Background()
	logHandler := testdoubles.NewLogHandlerSpy(false)
	metrics := testdoubles.NewMetricsCollectorSpy(true)
	tracing := testdoubles.NewTracingCollectorSpy(true)
	store := newStore(t, MemoryPath, WithLogger(slog.New(logHandler)), WithMetrics(metrics), WithTracing(tracing))
	logHandler.Reset()
	metrics.Reset()

	// act
	helper.GivenBookWasAdded(t, ctx, store, 1)

	// assert
	assert.True(t, logHandler.HasDebugLogWithMessage("executed sql for: create_book").WithDurationMS().Assert())
	assert.True(t, logHandler.HasDebugLogWithMessage("unit of work finished").
		WithStringAttr("status", "committed").
		WithIntAttr("statements", 1).
		Assert())
	assert.True(t, metrics.HasDurationRecordForMetric("store_unit_of_work_duration_seconds").
		WithStatus("committed").
		WithLabel("dialect", "sqlite3").
		Assert())
	assert.True(t, tracing.HasSpanRecordForName("store.unit_of_work").WithStatus("committed").Assert())
}

func Test_Store_CountsConcurrencyConflicts(t *testing.T) {
	// setup
	ctx := context.Background()
	metrics := testdoubles.NewMetricsCollectorSpy(true)
	store := newStore(t, MemoryPath, WithMetrics(metrics))
	reader := helper.GivenAccountWasOpened(t, ctx, store)
	helper.GivenNotificationWasSent(t, ctx, store, reader.ID, circulation.NotificationOverdue, helper.FakeClock())

	// act
	err := store.WithinTx(ctx, func(ctx context.Context, uow circulation.UnitOfWork) error {
		return uow.CreateNotification(ctx, circulation.BuildNotification(
			helper.GivenUniqueID(t), reader.ID, circulation.NotificationOverdue, "t", "m", helper.FakeClock()))
	})

	// assert
	require.ErrorIs(t, err, circulation.ErrConcurrencyConflict)
	assert.Equal(t, 1, metrics.CountCounterRecordsForMetric("store_concurrency_conflicts_total"))
	assert.True(t, metrics.HasCounterRecordForMetric("store_unit_of_work_total").WithStatus("rolled_back").Assert())
}

func Test_Store_CancelledContext_RollsBack(t *testing.T) {
	// setup
	store := newStore(t, MemoryPath)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	// act
	err := store.WithinTx(ctx, func(ctx context.Context, uow circulation.UnitOfWork) error {
		return uow.CreateBook(ctx, helper.FixtureBook(helper.GivenUniqueID(t), 1))
	})

	// assert
	assert.ErrorIs(t, err, context.Canceled)

	books := make(circulation.Books, 0)
	require.NoError(t, store.WithinTx(context.Background(), func(ctx context.Context, uow circulation.UnitOfWork) error {
		var listErr error
		books, listErr = uow.ListBooks(ctx)
		return listErr
	}))
	assert.Empty(t, books)
}

func Test_ClassifyError(t *testing.T) {
	testCases := []struct {
		name     string
		err      error
		expected error
	}{
		{name: "context canceled passes through", err: context.Canceled, expected: context.Canceled},
		{name: "plain error is transient", err: errors.New("disk I/O"), expected: circulation.ErrTransientStore},
		{name: "wrapped context deadline passes through", err: fmt.Errorf("query: %w", context.DeadlineExceeded), expected: context.DeadlineExceeded},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.ErrorIs(t, ClassifyError(tc.err), tc.expected)
		})
	}

	assert.NoError(t, ClassifyError(nil))
}

func Test_ClassifyError_SQLiteCodes(t *testing.T) {
	// setup
	ctx := context.Background()
	db, err := OpenDB(ctx, MemoryPath)
	require.NoError(t, err)
	defer db.Close()

	_, err = db.ExecContext(ctx, `CREATE TABLE parent (id TEXT PRIMARY KEY)`)
	require.NoError(t, err)
	_, err = db.ExecContext(ctx, `CREATE TABLE child (id TEXT PRIMARY KEY, parent_id TEXT REFERENCES parent (id), n INTEGER CHECK (n > 0))`)
	require.NoError(t, err)
	_, err = db.ExecContext(ctx, `INSERT INTO parent (id) VALUES ('p')`)
	require.NoError(t, err)

	// act
	_, uniqueErr := db.ExecContext(ctx, `INSERT INTO parent (id) VALUES ('p')`)
	_, foreignKeyErr := db.ExecContext(ctx, `INSERT INTO child (id, parent_id, n) VALUES ('c', 'missing', 1)`)
	_, checkErr := db.ExecContext(ctx, `INSERT INTO child (id, parent_id, n) VALUES ('c', 'p', 0)`)

	// assert
	var sqliteErr *sqlite.Error
	require.ErrorAs(t, foreignKeyErr, &sqliteErr)
	assert.Equal(t, sqlite3.SQLITE_CONSTRAINT, sqliteErr.Code()&0xff)

	assert.ErrorIs(t, ClassifyError(uniqueErr), circulation.ErrConcurrencyConflict)
	assert.ErrorIs(t, ClassifyError(foreignKeyErr), circulation.ErrNotFound)
	assert.ErrorIs(t, ClassifyError(checkErr), circulation.ErrTransientStore)
}

func Test_DSN(t *testing.T) {
	assert.Contains(t, DSN(MemoryPath), "file::memory:?")
	assert.Contains(t, DSN(""), "file::memory:?")
	assert.Contains(t, DSN("/var/lib/circulation.db"), "file:/var/lib/circulation.db?")
	assert.Contains(t, DSN("/tmp/x.db"), "_txlock=immediate")
	assert.Contains(t, DSN("/tmp/x.db"), "_time_format=sqlite")
	assert.Contains(t, DSN("/tmp/x.db"), "foreign_keys%281%29")
}
