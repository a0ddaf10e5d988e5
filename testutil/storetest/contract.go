// Package storetest holds the behavior every circulation.Store engine must show. Engine test
// packages run it with a factory returning an empty, migrated store.
package storetest

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AntonStoeckl/library-circulation/circulation"
	"github.com/AntonStoeckl/library-circulation/sweep"
	"github.com/AntonStoeckl/library-circulation/testutil/helper"
)

const day = 24 * time.Hour

// Factory returns an empty store that is ready to use.
type Factory func(t *testing.T) circulation.Store

// Run executes the contract as subtests.
func Run(t *testing.T, factory Factory) {
	t.Run("sweep locks the account of a past due loan and notifies once", func(t *testing.T) {
		sweepLocksAndNotifies(t, factory(t))
	})
	t.Run("second sweep changes nothing", func(t *testing.T) {
		secondSweepChangesNothing(t, factory(t))
	})
	t.Run("sweep tolerates an account that is already blocked", func(t *testing.T) {
		sweepToleratesBlockedAccount(t, factory(t))
	})
	t.Run("concurrent sweeps write one notification", func(t *testing.T) {
		concurrentSweepsWriteOneNotification(t, factory(t))
	})
	t.Run("returned copy is offered to the first reservation in the queue", func(t *testing.T) {
		returnedCopyIsOffered(t, factory(t))
	})
	t.Run("unread overdue notifications are unique per patron", func(t *testing.T) {
		unreadOverdueIsUnique(t, factory(t))
	})
	t.Run("pending priorities are unique per book", func(t *testing.T) {
		pendingPrioritiesAreUnique(t, factory(t))
	})
	t.Run("availability stays within inventory", func(t *testing.T) {
		availabilityStaysWithinInventory(t, factory(t))
	})
	t.Run("missing entities are reported as not found", func(t *testing.T) {
		missingEntitiesAreNotFound(t, factory(t))
	})
	t.Run("failed unit of work leaves no trace", func(t *testing.T) {
		failedUnitOfWorkLeavesNoTrace(t, factory(t))
	})
	t.Run("loan lifecycle and read models", func(t *testing.T) {
		loanLifecycleAndReadModels(t, factory(t))
	})
	t.Run("expiring reservations returns them as they were", func(t *testing.T) {
		expiringReservations(t, factory(t))
	})
	t.Run("notifying a reservation starts its hold", func(t *testing.T) {
		notifyingStartsTheHold(t, factory(t))
	})
	t.Run("updating a book keeps the copies on loan", func(t *testing.T) {
		updatingABook(t, factory(t))
	})
}

// State is a read of the persisted entities of one patron and one loan.
type State struct {
	Loan          circulation.Loan
	Account       circulation.Account
	Notifications circulation.Notifications
}

// ReadState loads the loan, its patron account and the patron's notifications.
func ReadState(t *testing.T, ctx context.Context, store circulation.Store, loanID, userID uuid.UUID) State {
	t.Helper()

	var state State
	err := store.WithinTx(ctx, func(ctx context.Context, uow circulation.UnitOfWork) error {
		var err error
		if state.Loan, err = uow.GetLoan(ctx, loanID); err != nil {
			return err
		}

		if state.Account, err = uow.GetAccount(ctx, userID); err != nil {
			return err
		}

		state.Notifications, err = uow.ListNotifications(ctx, userID)

		return err
	})
	require.NoError(t, err)

	return state
}

func ofType(notifications circulation.Notifications, notificationType circulation.NotificationType) circulation.Notifications {
	found := make(circulation.Notifications, 0)
	for _, notification := range notifications {
		if notification.Type == notificationType {
			found = append(found, notification)
		}
	}

	return found
}

func newEngine(t *testing.T, store circulation.Store, now time.Time) *sweep.Engine {
	engine, err := sweep.NewEngine(store, sweep.WithClock(helper.ClockAt(now)))
	require.NoError(t, err)

	return engine
}

func sweepLocksAndNotifies(t *testing.T, store circulation.Store) {
	// setup
	ctx := context.Background()
	now := helper.FakeClock()

	// arrange
	book := helper.GivenBookWasAdded(t, ctx, store, 2)
	reader := helper.GivenAccountWasOpened(t, ctx, store)
	loan := helper.GivenBookWasLent(t, ctx, store, book.ID, reader.ID, now.Add(-15*day), now.Add(-1*day))
	notDue := helper.GivenBookWasLent(t, ctx, store, book.ID, helper.GivenAccountWasOpened(t, ctx, store).ID, now, now.Add(14*day))

	// act
	result, err := newEngine(t, store, now).RunSweep(ctx)

	// assert
	require.NoError(t, err)
	assert.Equal(t, 1, result.LoansProcessed)
	assert.Equal(t, 1, result.NotificationsCreated)

	state := ReadState(t, ctx, store, loan.ID, reader.ID)
	assert.Equal(t, circulation.LoanOverdue, state.Loan.Status)
	assert.Equal(t, loan.DueDate, state.Loan.DueDate)
	assert.True(t, state.Account.IsBlocked)
	assert.Contains(t, state.Account.BlockReason, book.ID.String())

	overdue := ofType(state.Notifications, circulation.NotificationOverdue)
	require.Len(t, overdue, 1)
	assert.False(t, overdue[0].Read)
	assert.Equal(t, now, overdue[0].Date)

	assert.Equal(t, circulation.LoanBorrowed, ReadState(t, ctx, store, notDue.ID, notDue.UserID).Loan.Status)
}

func secondSweepChangesNothing(t *testing.T, store circulation.Store) {
	// setup
	ctx := context.Background()
	now := helper.FakeClock()

	// arrange
	book := helper.GivenBookWasAdded(t, ctx, store, 1)
	reader := helper.GivenAccountWasOpened(t, ctx, store)
	loan := helper.GivenBookWasLent(t, ctx, store, book.ID, reader.ID, now.Add(-15*day), now.Add(-1*day))
	_, err := newEngine(t, store, now).RunSweep(ctx)
	require.NoError(t, err)
	before := ReadState(t, ctx, store, loan.ID, reader.ID)

	// act
	result, err := newEngine(t, store, now.Add(time.Hour)).RunSweep(ctx)

	// assert
	require.NoError(t, err)
	assert.Equal(t, 0, result.LoansProcessed)
	assert.Equal(t, 0, result.NotificationsCreated)
	assert.Equal(t, before, ReadState(t, ctx, store, loan.ID, reader.ID))
}

func sweepToleratesBlockedAccount(t *testing.T, store circulation.Store) {
	// setup
	ctx := context.Background()
	now := helper.FakeClock()

	// arrange
	book := helper.GivenBookWasAdded(t, ctx, store, 2)
	reader := helper.GivenAccountWasOpened(t, ctx, store)
	first := helper.GivenBookWasLent(t, ctx, store, book.ID, reader.ID, now.Add(-30*day), now.Add(-10*day))
	helper.GivenLoanWasMarkedOverdue(t, ctx, store, first.ID)
	helper.GivenAccountWasLocked(t, ctx, store, reader.ID, circulation.BlockReasonFor(first))
	helper.GivenNotificationWasSent(t, ctx, store, reader.ID, circulation.NotificationOverdue, now.Add(-9*day))
	second := helper.GivenBookWasLent(t, ctx, store, book.ID, reader.ID, now.Add(-20*day), now.Add(-2*day))

	// act
	result, err := newEngine(t, store, now).RunSweep(ctx)

	// assert
	require.NoError(t, err)
	assert.Equal(t, 1, result.NewlyOverdue)
	assert.Equal(t, 1, result.NotificationsSuppressed)

	state := ReadState(t, ctx, store, second.ID, reader.ID)
	assert.Equal(t, circulation.LoanOverdue, state.Loan.Status)
	assert.True(t, state.Account.IsBlocked)
	assert.Len(t, ofType(state.Notifications, circulation.NotificationOverdue), 1)
}

func concurrentSweepsWriteOneNotification(t *testing.T, store circulation.Store) {
	// setup
	ctx := context.Background()
	now := helper.FakeClock()

	// arrange
	book := helper.GivenBookWasAdded(t, ctx, store, 3)
	reader := helper.GivenAccountWasOpened(t, ctx, store)
	loan := helper.GivenBookWasLent(t, ctx, store, book.ID, reader.ID, now.Add(-15*day), now.Add(-1*day))
	helper.GivenBookWasLent(t, ctx, store, book.ID, reader.ID, now.Add(-15*day), now.Add(-3*day))

	engines := []*sweep.Engine{newEngine(t, store, now), newEngine(t, store, now)}
	errs := make([]error, len(engines))
	var wg sync.WaitGroup

	// act
	for i, engine := range engines {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, errs[i] = engine.RunSweep(ctx)
		}()
	}
	wg.Wait()

	// assert
	for _, err := range errs {
		if err != nil {
			assert.ErrorIs(t, err, circulation.ErrConcurrencyConflict)
		}
	}

	state := ReadState(t, ctx, store, loan.ID, reader.ID)
	assert.Equal(t, circulation.LoanOverdue, state.Loan.Status)
	assert.Len(t, ofType(state.Notifications, circulation.NotificationOverdue), 1)
}

func returnedCopyIsOffered(t *testing.T, store circulation.Store) {
	// setup
	ctx := context.Background()
	now := helper.FakeClock()

	// arrange
	book := helper.GivenBookWasAdded(t, ctx, store, 1)
	borrower := helper.GivenAccountWasOpened(t, ctx, store)
	loan := helper.GivenBookWasLent(t, ctx, store, book.ID, borrower.ID, now.Add(-5*day), now.Add(9*day))
	first := helper.GivenAccountWasOpened(t, ctx, store)
	second := helper.GivenAccountWasOpened(t, ctx, store)
	reservation := helper.GivenReservationWasPlaced(t, ctx, store, book.ID, first.ID, now.Add(-4*day), now.Add(3*day), 1, false)
	helper.GivenReservationWasPlaced(t, ctx, store, book.ID, second.ID, now.Add(-3*day), now.Add(3*day), 2, false)

	// act
	var outcome circulation.HandoffOutcome
	err := store.WithinTx(ctx, func(ctx context.Context, uow circulation.UnitOfWork) error {
		if err := uow.MarkLoanReturned(ctx, loan.ID, now); err != nil {
			return err
		}

		if err := uow.IncrementAvailable(ctx, book.ID); err != nil {
			return err
		}

		var err error
		outcome, err = circulation.FulfillNextReservation(ctx, uow, book.ID, now)

		return err
	})

	// assert
	require.NoError(t, err)
	assert.True(t, outcome.Notified)
	assert.Equal(t, reservation.ID, outcome.Reservation.ID)

	returned := ReadState(t, ctx, store, loan.ID, borrower.ID)
	assert.Equal(t, circulation.LoanReturned, returned.Loan.Status)
	require.NotNil(t, returned.Loan.ReturnDate)
	assert.Equal(t, now, *returned.Loan.ReturnDate)

	var notifiedFirst, notifiedSecond circulation.Notifications
	var shelf circulation.Book
	err = store.WithinTx(ctx, func(ctx context.Context, uow circulation.UnitOfWork) error {
		var err error
		if notifiedFirst, err = uow.ListNotifications(ctx, first.ID); err != nil {
			return err
		}

		if notifiedSecond, err = uow.ListNotifications(ctx, second.ID); err != nil {
			return err
		}

		shelf, err = uow.GetBook(ctx, book.ID)

		return err
	})
	require.NoError(t, err)
	assert.Equal(t, 1, shelf.AvailableQuantity)
	assert.Len(t, ofType(notifiedFirst, circulation.NotificationBookAvailable), 1)
	assert.Empty(t, notifiedSecond)
}

func unreadOverdueIsUnique(t *testing.T, store circulation.Store) {
	// setup
	ctx := context.Background()
	now := helper.FakeClock()

	// arrange
	reader := helper.GivenAccountWasOpened(t, ctx, store)
	sent := helper.GivenNotificationWasSent(t, ctx, store, reader.ID, circulation.NotificationOverdue, now)

	// act
	err := store.WithinTx(ctx, func(ctx context.Context, uow circulation.UnitOfWork) error {
		return uow.CreateNotification(ctx, circulation.BuildNotification(
			helper.GivenUniqueID(t), reader.ID, circulation.NotificationOverdue, "again", "again", now))
	})

	// assert
	assert.ErrorIs(t, err, circulation.ErrConcurrencyConflict)

	helper.GivenNotificationWasRead(t, ctx, store, sent.ID)
	helper.GivenNotificationWasSent(t, ctx, store, reader.ID, circulation.NotificationOverdue, now.Add(day))

	var hasUnread bool
	err = store.WithinTx(ctx, func(ctx context.Context, uow circulation.UnitOfWork) error {
		var err error
		hasUnread, err = uow.HasUnreadNotification(ctx, reader.ID, circulation.NotificationOverdue)
		return err
	})
	require.NoError(t, err)
	assert.True(t, hasUnread)
}

func pendingPrioritiesAreUnique(t *testing.T, store circulation.Store) {
	// setup
	ctx := context.Background()
	now := helper.FakeClock()

	// arrange
	book := helper.GivenBookWasAdded(t, ctx, store, 1)
	first := helper.GivenAccountWasOpened(t, ctx, store)
	second := helper.GivenAccountWasOpened(t, ctx, store)
	helper.GivenReservationWasPlaced(t, ctx, store, book.ID, first.ID, now, now.Add(7*day), 1, false)

	// act
	err := store.WithinTx(ctx, func(ctx context.Context, uow circulation.UnitOfWork) error {
		return uow.CreateReservation(ctx, circulation.BuildReservation(
			helper.GivenUniqueID(t), book.ID, second.ID, now, now.Add(7*day), 1))
	})

	// assert
	assert.ErrorIs(t, err, circulation.ErrConcurrencyConflict)
}

func availabilityStaysWithinInventory(t *testing.T, store circulation.Store) {
	// setup
	ctx := context.Background()

	// arrange
	book := helper.GivenBookWasAdded(t, ctx, store, 1)

	// act
	incrementErr := store.WithinTx(ctx, func(ctx context.Context, uow circulation.UnitOfWork) error {
		return uow.IncrementAvailable(ctx, book.ID)
	})
	decrementErr := store.WithinTx(ctx, func(ctx context.Context, uow circulation.UnitOfWork) error {
		if err := uow.DecrementAvailable(ctx, book.ID); err != nil {
			return err
		}

		return uow.DecrementAvailable(ctx, book.ID)
	})

	// assert
	assert.ErrorIs(t, incrementErr, circulation.ErrInventoryExceeded)
	assert.ErrorIs(t, decrementErr, circulation.ErrBookUnavailable)

	var shelf circulation.Book
	require.NoError(t, store.WithinTx(ctx, func(ctx context.Context, uow circulation.UnitOfWork) error {
		var err error
		shelf, err = uow.GetBook(ctx, book.ID)
		return err
	}))
	assert.Equal(t, 1, shelf.AvailableQuantity, "the first decrement was rolled back with the second")
}

func missingEntitiesAreNotFound(t *testing.T, store circulation.Store) {
	// setup
	ctx := context.Background()
	missing := helper.GivenUniqueID(t)

	// act
	err := store.WithinTx(ctx, func(ctx context.Context, uow circulation.UnitOfWork) error {
		_, getLoanErr := uow.GetLoan(ctx, missing)
		assert.ErrorIs(t, getLoanErr, circulation.ErrLoanNotFound)

		_, getAccountErr := uow.GetAccount(ctx, missing)
		assert.ErrorIs(t, getAccountErr, circulation.ErrAccountNotFound)

		_, getBookErr := uow.GetBook(ctx, missing)
		assert.ErrorIs(t, getBookErr, circulation.ErrBookNotFound)

		_, getReservationErr := uow.GetReservation(ctx, missing)
		assert.ErrorIs(t, getReservationErr, circulation.ErrReservationNotFound)

		assert.ErrorIs(t, uow.MarkLoanOverdue(ctx, missing), circulation.ErrLoanNotFound)
		assert.ErrorIs(t, uow.LockAccount(ctx, missing, "reason"), circulation.ErrAccountNotFound)
		assert.ErrorIs(t, uow.MarkNotificationRead(ctx, missing), circulation.ErrNotificationMissing)

		return nil
	})

	// assert
	require.NoError(t, err)
}

func failedUnitOfWorkLeavesNoTrace(t *testing.T, store circulation.Store) {
	// setup
	ctx := context.Background()
	now := helper.FakeClock()

	// arrange
	book := helper.GivenBookWasAdded(t, ctx, store, 1)
	reader := helper.GivenAccountWasOpened(t, ctx, store)
	loan := helper.GivenBookWasLent(t, ctx, store, book.ID, reader.ID, now.Add(-15*day), now.Add(-1*day))

	// act
	err := store.WithinTx(ctx, func(ctx context.Context, uow circulation.UnitOfWork) error {
		if _, err := circulation.ApplyOverdueTransition(ctx, uow, loan, now); err != nil {
			return err
		}

		return uow.MarkLoanOverdue(ctx, helper.GivenUniqueID(t))
	})

	// assert
	require.ErrorIs(t, err, circulation.ErrLoanNotFound)

	state := ReadState(t, ctx, store, loan.ID, reader.ID)
	assert.Equal(t, circulation.LoanBorrowed, state.Loan.Status)
	assert.False(t, state.Account.IsBlocked)
	assert.Empty(t, state.Notifications)
}

func loanLifecycleAndReadModels(t *testing.T, store circulation.Store) {
	// setup
	ctx := context.Background()
	now := helper.FakeClock()

	// arrange
	book := helper.GivenBookWasAdded(t, ctx, store, 3)
	reader := helper.GivenAccountWasOpened(t, ctx, store)
	returned := helper.GivenBookWasLent(t, ctx, store, book.ID, reader.ID, now.Add(-9*day), now.Add(5*day))
	open := helper.GivenBookWasLent(t, ctx, store, book.ID, reader.ID, now.Add(-8*day), now.Add(6*day))
	overdue := helper.GivenBookWasLent(t, ctx, store, book.ID, reader.ID, now.Add(-30*day), now.Add(-16*day))
	helper.GivenLoanWasMarkedOverdue(t, ctx, store, overdue.ID)

	// act
	var openLoans circulation.Loans
	var counts map[circulation.LoanStatus]int
	var returnAgainErr error
	err := store.WithinTx(ctx, func(ctx context.Context, uow circulation.UnitOfWork) error {
		if err := uow.MarkLoanReturned(ctx, returned.ID, now); err != nil {
			return err
		}

		returnAgainErr = uow.MarkLoanReturned(ctx, returned.ID, now)

		var err error
		if openLoans, err = uow.ListOpenLoansByUser(ctx, reader.ID); err != nil {
			return err
		}

		counts, err = uow.CountLoansByStatus(ctx)

		return err
	})

	// assert
	require.NoError(t, err)
	assert.ErrorIs(t, returnAgainErr, circulation.ErrLoanAlreadyReturned)
	require.Len(t, openLoans, 2)
	assert.Equal(t, overdue.ID, openLoans[0].ID, "ordered by due date")
	assert.Equal(t, open.ID, openLoans[1].ID)
	assert.Equal(t, 1, counts[circulation.LoanReturned])
	assert.Equal(t, 1, counts[circulation.LoanBorrowed])
	assert.Equal(t, 1, counts[circulation.LoanOverdue])
}

func expiringReservations(t *testing.T, store circulation.Store) {
	// setup
	ctx := context.Background()
	now := helper.FakeClock()

	// arrange
	book := helper.GivenBookWasAdded(t, ctx, store, 1)
	lapsed := helper.GivenReservationWasPlaced(t, ctx, store, book.ID,
		helper.GivenAccountWasOpened(t, ctx, store).ID, now.Add(-10*day), now.Add(-1*day), 1, true)
	current := helper.GivenReservationWasPlaced(t, ctx, store, book.ID,
		helper.GivenAccountWasOpened(t, ctx, store).ID, now.Add(-2*day), now.Add(5*day), 2, false)
	waitingLong := helper.GivenReservationWasPlaced(t, ctx, store, book.ID,
		helper.GivenAccountWasOpened(t, ctx, store).ID, now.Add(-30*day), now.Add(-30*day), 3, false)

	// act
	var expired, pending circulation.Reservations
	err := store.WithinTx(ctx, func(ctx context.Context, uow circulation.UnitOfWork) error {
		var err error
		if expired, err = uow.ExpireReservations(ctx, now); err != nil {
			return err
		}

		pending, err = uow.ListPendingReservations(ctx, book.ID)

		return err
	})

	// assert
	require.NoError(t, err)
	require.Len(t, expired, 1)
	assert.Equal(t, lapsed.ID, expired[0].ID)
	assert.Equal(t, circulation.ReservationPending, expired[0].Status)
	assert.True(t, expired[0].NotificationSent)
	require.Len(t, pending, 2, "reservations waiting for a copy never expire")
	assert.Equal(t, current.ID, pending[0].ID)
	assert.Equal(t, waitingLong.ID, pending[1].ID)
}

func notifyingStartsTheHold(t *testing.T, store circulation.Store) {
	// setup
	ctx := context.Background()
	now := helper.FakeClock()
	holdUntil := now.Add(circulation.DefaultHoldPeriod)

	// arrange
	book := helper.GivenBookWasAdded(t, ctx, store, 1)
	reservation := helper.GivenReservationWasPlaced(t, ctx, store, book.ID,
		helper.GivenAccountWasOpened(t, ctx, store).ID, now.Add(-20*day), now.Add(-20*day), 1, false)

	// act
	var reloaded circulation.Reservation
	err := store.WithinTx(ctx, func(ctx context.Context, uow circulation.UnitOfWork) error {
		if err := uow.MarkReservationNotified(ctx, reservation.ID, holdUntil); err != nil {
			return err
		}

		var err error
		reloaded, err = uow.GetReservation(ctx, reservation.ID)

		return err
	})

	// assert
	require.NoError(t, err)
	assert.True(t, reloaded.NotificationSent)
	assert.Equal(t, holdUntil, reloaded.DueDate)
	assert.Equal(t, circulation.ReservationPending, reloaded.Status)
}

func updatingABook(t *testing.T, store circulation.Store) {
	// setup
	ctx := context.Background()

	// arrange
	book := helper.GivenBookWasAdded(t, ctx, store, 3)
	require.NoError(t, store.WithinTx(ctx, func(ctx context.Context, uow circulation.UnitOfWork) error {
		return uow.DecrementAvailable(ctx, book.ID)
	}))

	grown := book
	grown.Title = "Second Edition"
	grown.Quantity = 5

	shrunk := book
	shrunk.Quantity = 0

	unknown := book
	unknown.ID = helper.GivenUniqueID(t)

	// act
	var updated circulation.Book
	err := store.WithinTx(ctx, func(ctx context.Context, uow circulation.UnitOfWork) error {
		var err error
		updated, err = uow.UpdateBook(ctx, grown)
		return err
	})
	shrinkErr := store.WithinTx(ctx, func(ctx context.Context, uow circulation.UnitOfWork) error {
		_, err := uow.UpdateBook(ctx, shrunk)
		return err
	})
	unknownErr := store.WithinTx(ctx, func(ctx context.Context, uow circulation.UnitOfWork) error {
		_, err := uow.UpdateBook(ctx, unknown)
		return err
	})

	// assert
	require.NoError(t, err)
	assert.Equal(t, "Second Edition", updated.Title)
	assert.Equal(t, 5, updated.Quantity)
	assert.Equal(t, 4, updated.AvailableQuantity)
	assert.ErrorIs(t, shrinkErr, circulation.ErrInvalidQuantity)
	assert.ErrorIs(t, unknownErr, circulation.ErrBookNotFound)
}
