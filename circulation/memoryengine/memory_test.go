package memoryengine_test

import (
	"context"
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AntonStoeckl/library-circulation/circulation"
	. "github.com/AntonStoeckl/library-circulation/circulation/memoryengine"
	"github.com/AntonStoeckl/library-circulation/testutil/helper"
	"github.com/AntonStoeckl/library-circulation/testutil/observability/testdoubles"
)

const day = 24 * time.Hour

func newStore(t *testing.T, options ...Option) *Store {
	store, err := NewStore(options...)
	require.NoError(t, err)

	return store
}

func Test_WithinTx_CommitsOnSuccess_AndRollsBackOnError(t *testing.T) {
	// setup
	ctx := context.Background()
	logHandlerSpy := testdoubles.NewLogHandlerSpy(false)
	store := newStore(t, WithLogger(slog.New(logHandlerSpy)))
	book := helper.FixtureBook(uuid.New(), 1)
	failure := errors.New("abort")

	// act
	err := store.WithinTx(ctx, func(ctx context.Context, uow circulation.UnitOfWork) error {
		if err := uow.CreateBook(ctx, book); err != nil {
			return err
		}

		return failure
	})

	// assert
	assert.ErrorIs(t, err, failure)
	assert.Empty(t, store.Snapshot().Books)
	assert.True(t, logHandlerSpy.HasDebugLogWithMessage("unit of work rolled back").Assert())

	// act
	err = store.WithinTx(ctx, func(ctx context.Context, uow circulation.UnitOfWork) error {
		return uow.CreateBook(ctx, book)
	})

	// assert
	require.NoError(t, err)
	assert.Equal(t, book, store.Snapshot().Books[book.ID])
	assert.True(t, logHandlerSpy.HasDebugLogWithMessage("unit of work committed").WithIntAttr("mutations", 1).Assert())
}

func Test_TryAcquireSweepLock(t *testing.T) {
	// setup
	ctx := context.Background()
	store := newStore(t)

	// act + assert: reentrant within one unit of work, released on commit
	for i := 0; i < 2; i++ {
		err := store.WithinTx(ctx, func(ctx context.Context, uow circulation.UnitOfWork) error {
			acquired, err := uow.TryAcquireSweepLock(ctx)
			require.NoError(t, err)
			assert.True(t, acquired)

			acquired, err = uow.TryAcquireSweepLock(ctx)
			require.NoError(t, err)
			assert.True(t, acquired)

			return nil
		})
		require.NoError(t, err)
	}

	// act + assert: held elsewhere
	release := store.HoldSweepLock()
	err := store.WithinTx(ctx, func(ctx context.Context, uow circulation.UnitOfWork) error {
		acquired, err := uow.TryAcquireSweepLock(ctx)
		require.NoError(t, err)
		assert.False(t, acquired)

		return nil
	})
	release()
	require.NoError(t, err)
}

func Test_CreateNotification_RejectsASecondUnreadOverdueNotification(t *testing.T) {
	// setup
	ctx := context.Background()
	now := helper.FakeClock()
	store := newStore(t)
	userID := uuid.New()

	// arrange
	helper.GivenNotificationWasSent(t, ctx, store, userID, circulation.NotificationOverdue, now)

	// act
	err := store.WithinTx(ctx, func(ctx context.Context, uow circulation.UnitOfWork) error {
		if err := uow.CreateNotification(ctx, circulation.BuildNotification(
			uuid.New(), userID, circulation.NotificationBookAvailable, "t", "m", now,
		)); err != nil {
			return err
		}

		return uow.CreateNotification(ctx, circulation.BuildNotification(
			uuid.New(), userID, circulation.NotificationOverdue, "t", "m", now,
		))
	})

	// assert
	assert.ErrorIs(t, err, circulation.ErrConcurrencyConflict)
	assert.Len(t, store.Snapshot().Notifications, 1)
}

func Test_CreateReservation_RejectsADuplicatePendingPriority(t *testing.T) {
	// setup
	ctx := context.Background()
	now := helper.FakeClock()
	store := newStore(t)
	book := helper.GivenBookWasAdded(t, ctx, store, 1)

	// arrange
	helper.GivenReservationWasPlaced(t, ctx, store, book.ID, uuid.New(), now, now.Add(7*day), 1, false)

	// act
	err := store.WithinTx(ctx, func(ctx context.Context, uow circulation.UnitOfWork) error {
		return uow.CreateReservation(ctx, circulation.BuildReservation(uuid.New(), book.ID, uuid.New(), now, now.Add(7*day), 1))
	})

	// assert
	assert.ErrorIs(t, err, circulation.ErrConcurrencyConflict)
}

func Test_Availability_StaysWithinInventory(t *testing.T) {
	// setup
	ctx := context.Background()
	store := newStore(t)
	book := helper.GivenBookWasAdded(t, ctx, store, 1)

	err := store.WithinTx(ctx, func(ctx context.Context, uow circulation.UnitOfWork) error {
		return uow.IncrementAvailable(ctx, book.ID)
	})
	assert.ErrorIs(t, err, circulation.ErrInventoryExceeded)

	err = store.WithinTx(ctx, func(ctx context.Context, uow circulation.UnitOfWork) error {
		if err := uow.DecrementAvailable(ctx, book.ID); err != nil {
			return err
		}

		return uow.DecrementAvailable(ctx, book.ID)
	})
	assert.ErrorIs(t, err, circulation.ErrBookUnavailable)
	assert.Equal(t, 1, store.Snapshot().Books[book.ID].AvailableQuantity)
}

func Test_MarkLoanReturned_And_Queries(t *testing.T) {
	// setup
	ctx := context.Background()
	now := helper.FakeClock()
	store := newStore(t)

	// arrange
	book := helper.GivenBookWasAdded(t, ctx, store, 2)
	reader := helper.GivenAccountWasOpened(t, ctx, store)
	returned := helper.GivenBookWasLent(t, ctx, store, book.ID, reader.ID, now.Add(-10*day), now.Add(4*day))
	open := helper.GivenBookWasLent(t, ctx, store, book.ID, reader.ID, now.Add(-20*day), now.Add(-6*day))

	// act
	err := store.WithinTx(ctx, func(ctx context.Context, uow circulation.UnitOfWork) error {
		if err := uow.MarkLoanReturned(ctx, returned.ID, now); err != nil {
			return err
		}

		// a second return is rejected
		assert.ErrorIs(t, uow.MarkLoanReturned(ctx, returned.ID, now), circulation.ErrLoanAlreadyReturned)

		openLoans, err := uow.ListOpenLoansByUser(ctx, reader.ID)
		require.NoError(t, err)
		require.Len(t, openLoans, 1)
		assert.Equal(t, open.ID, openLoans[0].ID)

		pastDue, err := uow.FindOverdueLoans(ctx, now)
		require.NoError(t, err)
		require.Len(t, pastDue, 1)
		assert.Equal(t, open.ID, pastDue[0].ID)

		counts, err := uow.CountLoansByStatus(ctx)
		require.NoError(t, err)
		assert.Equal(t, map[circulation.LoanStatus]int{circulation.LoanBorrowed: 1, circulation.LoanReturned: 1}, counts)

		return nil
	})

	// assert
	require.NoError(t, err)
	stored := store.Snapshot().Loans[returned.ID]
	assert.Equal(t, circulation.LoanReturned, stored.Status)
	require.NotNil(t, stored.ReturnDate)
	assert.Equal(t, now, *stored.ReturnDate)
}

func Test_InjectFault_FailsTheNamedOperationUntilCleared(t *testing.T) {
	// setup
	ctx := context.Background()
	store := newStore(t)
	failure := errors.New("disk full")
	store.InjectFault("CreateAccount", failure)

	// act
	err := store.WithinTx(ctx, func(ctx context.Context, uow circulation.UnitOfWork) error {
		return uow.CreateAccount(ctx, helper.FixtureAccount(uuid.New()))
	})

	// assert
	assert.ErrorIs(t, err, failure)

	store.ClearFaults()
	helper.GivenAccountWasOpened(t, ctx, store)
	assert.Len(t, store.Snapshot().Accounts, 1)
}

func Test_ExpireReservations_ReturnsTheExpiredHoldsAsTheyWere(t *testing.T) {
	// setup
	ctx := context.Background()
	now := helper.FakeClock()
	store := newStore(t)
	book := helper.GivenBookWasAdded(t, ctx, store, 1)

	// arrange
	lapsed := helper.GivenReservationWasPlaced(t, ctx, store, book.ID, uuid.New(), now.Add(-9*day), now.Add(-2*day), 1, true)
	current := helper.GivenReservationWasPlaced(t, ctx, store, book.ID, uuid.New(), now.Add(-day), now.Add(6*day), 2, false)
	waiting := helper.GivenReservationWasPlaced(t, ctx, store, book.ID, uuid.New(), now.Add(-20*day), now.Add(-20*day), 3, false)

	// act
	var expired circulation.Reservations
	err := store.WithinTx(ctx, func(ctx context.Context, uow circulation.UnitOfWork) error {
		var expireErr error
		expired, expireErr = uow.ExpireReservations(ctx, now)
		return expireErr
	})

	// assert
	require.NoError(t, err)
	require.Len(t, expired, 1)
	assert.Equal(t, lapsed.ID, expired[0].ID)
	assert.Equal(t, circulation.ReservationPending, expired[0].Status)
	assert.True(t, expired[0].NotificationSent)

	snapshot := store.Snapshot()
	assert.Equal(t, circulation.ReservationExpired, snapshot.Reservations[lapsed.ID].Status)
	assert.Equal(t, circulation.ReservationPending, snapshot.Reservations[current.ID].Status)
	assert.Equal(t, circulation.ReservationPending, snapshot.Reservations[waiting.ID].Status)
}
