package postgresengine_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AntonStoeckl/library-circulation/circulation"
	. "github.com/AntonStoeckl/library-circulation/circulation/postgresengine"
	"github.com/AntonStoeckl/library-circulation/sweep"
	"github.com/AntonStoeckl/library-circulation/testutil/helper"
	. "github.com/AntonStoeckl/library-circulation/testutil/helper/postgreswrapper" //nolint:revive
	"github.com/AntonStoeckl/library-circulation/testutil/observability/testdoubles"
	"github.com/AntonStoeckl/library-circulation/testutil/storetest"
)

const day = 24 * time.Hour

func Test_Store_FulfillsTheStoreContract(t *testing.T) {
	wrapper := CreateWrapperWithTestConfig(t)
	defer wrapper.Close()

	storetest.Run(t, func(t *testing.T) circulation.Store {
		CleanUp(t, wrapper)
		return wrapper.GetStore()
	})
}

func Test_NewStore_RejectsNilConnections(t *testing.T) {
	_, err := NewStoreFromPGXPool(nil)
	assert.ErrorIs(t, err, circulation.ErrNilDatabaseConnection)

	_, err = NewStoreFromSQLDB(nil)
	assert.ErrorIs(t, err, circulation.ErrNilDatabaseConnection)

	_, err = NewStoreFromSQLX(nil)
	assert.ErrorIs(t, err, circulation.ErrNilDatabaseConnection)
}

func Test_Store_AdvisoryLock_SkipsTheSecondSweep(t *testing.T) {
	// setup
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	wrapper := CreateWrapperWithTestConfig(t)
	defer wrapper.Close()
	store := wrapper.GetStore()
	CleanUp(t, wrapper)
	now := helper.FakeClock()

	// arrange
	book := helper.GivenBookWasAdded(t, ctx, store, 1)
	reader := helper.GivenAccountWasOpened(t, ctx, store)
	helper.GivenBookWasLent(t, ctx, store, book.ID, reader.ID, now.Add(-20*day), now.Add(-6*day))

	held := make(chan struct{})
	release := make(chan struct{})
	var wg sync.WaitGroup
	wg.Add(1)

	go func() {
		defer wg.Done()
		_ = store.WithinTx(ctx, func(ctx context.Context, uow circulation.UnitOfWork) error {
			acquired, err := uow.TryAcquireSweepLock(ctx)
			assert.NoError(t, err)
			assert.True(t, acquired)
			close(held)
			<-release

			return nil
		})
	}()

	<-held
	engine, err := sweep.NewEngine(store, sweep.WithClock(helper.ClockAt(now)))
	require.NoError(t, err)

	// act
	result, err := engine.RunSweep(ctx)
	close(release)
	wg.Wait()

	// assert
	require.NoError(t, err)
	assert.True(t, result.Skipped)
	assert.Zero(t, CountRows(t, wrapper, "notifications"))
}

func Test_Store_RecordsUnitOfWorkMetrics(t *testing.T) {
	// setup
	ctx := context.Background()
	metrics := testdoubles.NewMetricsCollectorSpy(true)
	wrapper := CreateWrapperWithTestConfig(t, WithMetrics(metrics))
	defer wrapper.Close()
	CleanUp(t, wrapper)
	metrics.Reset()

	// act
	helper.GivenAccountWasOpened(t, ctx, wrapper.GetStore())

	// assert
	assert.True(t, metrics.HasDurationRecordForMetric("store_unit_of_work_duration_seconds").
		WithStatus("committed").
		WithLabel("dialect", "postgres").
		Assert())
	assert.Equal(t, 1, CountRows(t, wrapper, "accounts"))
}
