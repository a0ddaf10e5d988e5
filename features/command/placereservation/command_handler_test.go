package placereservation_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AntonStoeckl/library-circulation/circulation"
	"github.com/AntonStoeckl/library-circulation/circulation/memoryengine"
	"github.com/AntonStoeckl/library-circulation/features/command/placereservation"
	. "github.com/AntonStoeckl/library-circulation/testutil/helper" //nolint:revive
)

const day = 24 * time.Hour

func Test_CommandHandler_Handle_QueuesPatronsInOrder(t *testing.T) {
	// setup
	ctx := context.Background()
	store, err := memoryengine.NewStore()
	require.NoError(t, err)
	handler := placereservation.NewCommandHandler(store)
	now := FakeClock()

	// arrange
	book := GivenBookWasAdded(t, ctx, store, 1)
	holder := GivenAccountWasOpened(t, ctx, store)
	GivenBookWasLent(t, ctx, store, book.ID, holder.ID, now.Add(-day), now.Add(13*day))
	first := GivenAccountWasOpened(t, ctx, store)
	second := GivenAccountWasOpened(t, ctx, store)

	firstCommand := placereservation.BuildCommand(GivenUniqueID(t), book.ID, first.ID, now)
	secondCommand := placereservation.BuildCommand(GivenUniqueID(t), book.ID, second.ID, now.Add(time.Minute))

	// act
	_, err = handler.Handle(ctx, firstCommand)
	require.NoError(t, err)
	_, err = handler.Handle(ctx, secondCommand)
	require.NoError(t, err)
	again, err := handler.Handle(ctx, placereservation.BuildCommand(GivenUniqueID(t), book.ID, first.ID, now.Add(time.Hour)))

	// assert
	require.NoError(t, err)
	assert.True(t, again.Idempotent)

	snapshot := store.Snapshot()
	assert.Len(t, snapshot.Reservations, 2)

	firstReservation := snapshot.Reservations[firstCommand.ReservationID]
	assert.Equal(t, 1, firstReservation.Priority)
	assert.Equal(t, now, firstReservation.DueDate, "the hold starts with the notification")
	assert.Equal(t, circulation.ReservationPending, firstReservation.Status)
	assert.False(t, firstReservation.NotificationSent)
	assert.Equal(t, 2, snapshot.Reservations[secondCommand.ReservationID].Priority)
}

func Test_CommandHandler_Handle_RejectsABookOnTheShelf(t *testing.T) {
	// setup
	ctx := context.Background()
	store, err := memoryengine.NewStore()
	require.NoError(t, err)
	handler := placereservation.NewCommandHandler(store)

	// arrange
	book := GivenBookWasAdded(t, ctx, store, 1)
	reader := GivenAccountWasOpened(t, ctx, store)

	// act
	_, err = handler.Handle(ctx, placereservation.BuildCommand(GivenUniqueID(t), book.ID, reader.ID, FakeClock()))

	// assert
	assert.ErrorIs(t, err, circulation.ErrBookAvailable)
	assert.Empty(t, store.Snapshot().Reservations)
}
