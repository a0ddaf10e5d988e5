package circulation_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	. "github.com/AntonStoeckl/library-circulation/circulation"
	"github.com/AntonStoeckl/library-circulation/circulation/memoryengine"
	"github.com/AntonStoeckl/library-circulation/testutil/helper"
)

const day = 24 * time.Hour

func Test_DecideOverdueTransition_ForABorrowedLoan(t *testing.T) {
	now := helper.FakeClock()
	loan := BuildLoan(uuid.New(), uuid.New(), uuid.New(), now.Add(-20*day), now.Add(-6*day))
	notificationID := uuid.New()

	transition := DecideOverdueTransition(loan, notificationID, now)

	assert.True(t, transition.MarkOverdue)
	assert.Equal(t, "overdue loan "+loan.ID.String()+" for book "+loan.BookID.String(), transition.BlockReason)
	assert.Equal(t, notificationID, transition.Notification.ID)
	assert.Equal(t, loan.UserID, transition.Notification.UserID)
	assert.Equal(t, NotificationOverdue, transition.Notification.Type)
	assert.False(t, transition.Notification.Read)
	assert.Equal(t, now, transition.Notification.Date)
	assert.Contains(t, transition.Notification.Message, loan.DueDate.Format(time.DateOnly))
}

func Test_DecideOverdueTransition_ForAnAlreadyOverdueLoan(t *testing.T) {
	now := helper.FakeClock()
	loan := BuildLoan(uuid.New(), uuid.New(), uuid.New(), now.Add(-20*day), now.Add(-6*day))
	loan.Status = LoanOverdue

	transition := DecideOverdueTransition(loan, uuid.New(), now)

	assert.False(t, transition.MarkOverdue)
	assert.Equal(t, BlockReasonFor(loan), transition.BlockReason)
}

func Test_ApplyOverdueTransition(t *testing.T) {
	// setup
	ctx := context.Background()
	now := helper.FakeClock()
	store, err := memoryengine.NewStore()
	require.NoError(t, err)

	// arrange
	book := helper.GivenBookWasAdded(t, ctx, store, 1)
	reader := helper.GivenAccountWasOpened(t, ctx, store)
	loan := helper.GivenBookWasLent(t, ctx, store, book.ID, reader.ID, now.Add(-20*day), now.Add(-6*day))

	// act
	var first, second OverdueOutcome
	err = store.WithinTx(ctx, func(ctx context.Context, uow UnitOfWork) error {
		var applyErr error
		if first, applyErr = ApplyOverdueTransition(ctx, uow, loan, now); applyErr != nil {
			return applyErr
		}

		loan.Status = LoanOverdue
		second, applyErr = ApplyOverdueTransition(ctx, uow, loan, now)

		return applyErr
	})

	// assert
	require.NoError(t, err)
	assert.Equal(t, OverdueOutcome{NewlyOverdue: true, Notification: NotificationCreated}, first)
	assert.Equal(t, OverdueOutcome{NewlyOverdue: false, Notification: NotificationSuppressed}, second)

	snapshot := store.Snapshot()
	assert.Equal(t, LoanOverdue, snapshot.Loans[loan.ID].Status)
	assert.True(t, snapshot.Accounts[reader.ID].IsBlocked)
	assert.Len(t, snapshot.Notifications, 1)
}

func Test_ApplyOverdueTransition_FailsForAnUnknownAccount(t *testing.T) {
	// setup
	ctx := context.Background()
	now := helper.FakeClock()
	store, err := memoryengine.NewStore()
	require.NoError(t, err)

	// arrange
	loan := BuildLoan(uuid.New(), uuid.New(), uuid.New(), now.Add(-20*day), now.Add(-6*day))
	loan.Status = LoanOverdue

	// act
	err = store.WithinTx(ctx, func(ctx context.Context, uow UnitOfWork) error {
		_, applyErr := ApplyOverdueTransition(ctx, uow, loan, now)
		return applyErr
	})

	// assert
	assert.ErrorIs(t, err, ErrAccountNotFound)
	assert.ErrorIs(t, err, ErrNotFound)
}
