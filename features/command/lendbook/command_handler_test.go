package lendbook_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AntonStoeckl/library-circulation/circulation"
	"github.com/AntonStoeckl/library-circulation/circulation/memoryengine"
	"github.com/AntonStoeckl/library-circulation/features/command/lendbook"
	. "github.com/AntonStoeckl/library-circulation/testutil/helper" //nolint:revive
)

const day = 24 * time.Hour

func setupTestEnvironment(t *testing.T) (context.Context, *memoryengine.Store, lendbook.CommandHandler) {
	t.Helper()

	store, err := memoryengine.NewStore()
	require.NoError(t, err)

	return context.Background(), store, lendbook.NewCommandHandler(store)
}

func Test_CommandHandler_Handle_Success(t *testing.T) {
	// setup
	ctx, store, handler := setupTestEnvironment(t)
	now := FakeClock()

	// arrange
	book := GivenBookWasAdded(t, ctx, store, 2)
	reader := GivenAccountWasOpened(t, ctx, store)
	command := lendbook.BuildCommand(GivenUniqueID(t), book.ID, reader.ID, now, lendbook.DefaultLoanPeriod)

	// act
	result, err := handler.Handle(ctx, command)

	// assert
	require.NoError(t, err)
	assert.False(t, result.Idempotent)

	snapshot := store.Snapshot()
	loan := snapshot.Loans[command.LoanID]
	assert.Equal(t, circulation.LoanBorrowed, loan.Status)
	assert.Equal(t, now.Add(14*day), loan.DueDate)
	assert.Nil(t, loan.ReturnDate)
	assert.Equal(t, 1, snapshot.Books[book.ID].AvailableQuantity)
}

func Test_CommandHandler_Handle_IsIdempotent_ForTheSameLoan(t *testing.T) {
	// setup
	ctx, store, handler := setupTestEnvironment(t)

	// arrange
	book := GivenBookWasAdded(t, ctx, store, 2)
	reader := GivenAccountWasOpened(t, ctx, store)
	command := lendbook.BuildCommand(GivenUniqueID(t), book.ID, reader.ID, FakeClock(), lendbook.DefaultLoanPeriod)
	_, err := handler.Handle(ctx, command)
	require.NoError(t, err)

	// act
	result, err := handler.Handle(ctx, command)

	// assert
	require.NoError(t, err)
	assert.True(t, result.Idempotent)
	assert.Equal(t, 1, store.Snapshot().Books[book.ID].AvailableQuantity)
}

func Test_CommandHandler_Handle_FulfillsTheBorrowersReservation(t *testing.T) {
	// setup
	ctx, store, handler := setupTestEnvironment(t)
	now := FakeClock()

	// arrange
	book := GivenBookWasAdded(t, ctx, store, 1)
	reader := GivenAccountWasOpened(t, ctx, store)
	other := GivenAccountWasOpened(t, ctx, store)
	own := GivenReservationWasPlaced(t, ctx, store, book.ID, reader.ID, now.Add(-3*day), now.Add(4*day), 1, true)
	others := GivenReservationWasPlaced(t, ctx, store, book.ID, other.ID, now.Add(-2*day), now.Add(5*day), 2, false)

	// act
	_, err := handler.Handle(ctx, lendbook.BuildCommand(GivenUniqueID(t), book.ID, reader.ID, now, lendbook.DefaultLoanPeriod))

	// assert
	require.NoError(t, err)
	snapshot := store.Snapshot()
	assert.Equal(t, circulation.ReservationFulfilled, snapshot.Reservations[own.ID].Status)
	assert.Equal(t, circulation.ReservationPending, snapshot.Reservations[others.ID].Status)
}

func Test_CommandHandler_Handle_Errors(t *testing.T) {
	// setup
	ctx, store, handler := setupTestEnvironment(t)
	now := FakeClock()

	// arrange
	book := GivenBookWasAdded(t, ctx, store, 1)
	emptyShelf := GivenBookWasAdded(t, ctx, store, 1)
	reader := GivenAccountWasOpened(t, ctx, store)
	blocked := GivenAccountWasOpened(t, ctx, store)
	GivenAccountWasLocked(t, ctx, store, blocked.ID, "overdue loan")
	GivenBookWasLent(t, ctx, store, emptyShelf.ID, reader.ID, now.Add(-day), now.Add(13*day))

	testCases := []struct {
		name     string
		command  lendbook.Command
		expected error
	}{
		{
			name:     "blocked account",
			command:  lendbook.BuildCommand(GivenUniqueID(t), book.ID, blocked.ID, now, lendbook.DefaultLoanPeriod),
			expected: circulation.ErrAccountBlocked,
		},
		{
			name:     "no copy available",
			command:  lendbook.BuildCommand(GivenUniqueID(t), emptyShelf.ID, reader.ID, now, lendbook.DefaultLoanPeriod),
			expected: circulation.ErrBookUnavailable,
		},
		{
			name:     "unknown account",
			command:  lendbook.BuildCommand(GivenUniqueID(t), book.ID, GivenUniqueID(t), now, lendbook.DefaultLoanPeriod),
			expected: circulation.ErrAccountNotFound,
		},
		{
			name:     "unknown book",
			command:  lendbook.BuildCommand(GivenUniqueID(t), GivenUniqueID(t), reader.ID, now, lendbook.DefaultLoanPeriod),
			expected: circulation.ErrBookNotFound,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			// act
			result, err := handler.Handle(ctx, tc.command)

			// assert
			assert.ErrorIs(t, err, tc.expected)
			assert.Equal(t, 1, result.RetryAttempts)
			assert.NotContains(t, store.Snapshot().Loans, tc.command.LoanID)
		})
	}

	assert.Equal(t, 1, store.Snapshot().Books[book.ID].AvailableQuantity)
}
