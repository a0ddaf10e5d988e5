package borrowedbooks_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AntonStoeckl/library-circulation/circulation"
	"github.com/AntonStoeckl/library-circulation/circulation/memoryengine"
	"github.com/AntonStoeckl/library-circulation/features/query/borrowedbooks"
	. "github.com/AntonStoeckl/library-circulation/testutil/helper" //nolint:revive
)

const day = 24 * time.Hour

func Test_QueryHandler_Handle_ReturnsOpenLoansWithBookData(t *testing.T) {
	// setup
	ctx := context.Background()
	store, err := memoryengine.NewStore()
	require.NoError(t, err)
	handler := borrowedbooks.NewQueryHandler(store)
	now := FakeClock()

	// arrange
	reader := GivenAccountWasOpened(t, ctx, store)
	first := GivenBookWasAdded(t, ctx, store, 1)
	second := GivenBookWasAdded(t, ctx, store, 1)
	third := GivenBookWasAdded(t, ctx, store, 1)

	current := GivenBookWasLent(t, ctx, store, first.ID, reader.ID, now.Add(-2*day), now.Add(12*day))
	late := GivenBookWasLent(t, ctx, store, second.ID, reader.ID, now.Add(-20*day), now.Add(-6*day))
	GivenLoanWasMarkedOverdue(t, ctx, store, late.ID)
	returned := GivenBookWasLent(t, ctx, store, third.ID, reader.ID, now.Add(-4*day), now.Add(10*day))
	require.NoError(t, store.WithinTx(ctx, func(ctx context.Context, uow circulation.UnitOfWork) error {
		return uow.MarkLoanReturned(ctx, returned.ID, now.Add(-day))
	}))

	// act
	result, err := handler.Handle(ctx, borrowedbooks.BuildQuery(reader.ID, now))

	// assert
	require.NoError(t, err)
	assert.Equal(t, reader.ID, result.UserID)
	assert.Equal(t, reader.Username, result.Username)
	assert.Equal(t, 2, result.Count)
	assert.Equal(t, 1, result.OverdueCount)

	require.Len(t, result.Books, 2)
	assert.Equal(t, late.ID, result.Books[0].LoanID, "soonest due first")
	assert.True(t, result.Books[0].IsOverdue)
	assert.Equal(t, 6, result.Books[0].DaysOverdue)
	assert.Equal(t, circulation.LoanOverdue, result.Books[0].Status)
	assert.Equal(t, second.Title, result.Books[0].Title)

	assert.Equal(t, current.ID, result.Books[1].LoanID)
	assert.False(t, result.Books[1].IsOverdue)
	assert.Zero(t, result.Books[1].DaysOverdue)
}

func Test_QueryHandler_Handle_FlagsPastDueLoansTheSweepHasNotSeenYet(t *testing.T) {
	// setup
	ctx := context.Background()
	store, err := memoryengine.NewStore()
	require.NoError(t, err)
	handler := borrowedbooks.NewQueryHandler(store)
	now := FakeClock()

	// arrange
	reader := GivenAccountWasOpened(t, ctx, store)
	book := GivenBookWasAdded(t, ctx, store, 1)
	GivenBookWasLent(t, ctx, store, book.ID, reader.ID, now.Add(-15*day), now.Add(-time.Hour))

	// act
	result, err := handler.Handle(ctx, borrowedbooks.BuildQuery(reader.ID, now))

	// assert
	require.NoError(t, err)
	require.Len(t, result.Books, 1)
	assert.True(t, result.Books[0].IsOverdue)
	assert.Equal(t, circulation.LoanBorrowed, result.Books[0].Status)
	assert.Zero(t, result.Books[0].DaysOverdue)
}

func Test_QueryHandler_Handle_UnknownPatron(t *testing.T) {
	// setup
	store, err := memoryengine.NewStore()
	require.NoError(t, err)
	handler := borrowedbooks.NewQueryHandler(store)

	// act
	_, err = handler.Handle(context.Background(), borrowedbooks.BuildQuery(GivenUniqueID(t), FakeClock()))

	// assert
	assert.ErrorIs(t, err, circulation.ErrAccountNotFound)
}
