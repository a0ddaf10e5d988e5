package cancelreservation_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AntonStoeckl/library-circulation/circulation"
	"github.com/AntonStoeckl/library-circulation/circulation/memoryengine"
	"github.com/AntonStoeckl/library-circulation/features/command/cancelreservation"
	"github.com/AntonStoeckl/library-circulation/features/command/lendbook"
	. "github.com/AntonStoeckl/library-circulation/testutil/helper" //nolint:revive
)

const day = 24 * time.Hour

func Test_CommandHandler_Handle(t *testing.T) {
	// setup
	ctx := context.Background()
	store, err := memoryengine.NewStore()
	require.NoError(t, err)
	handler := cancelreservation.NewCommandHandler(store)
	now := FakeClock()

	// arrange
	book := GivenBookWasAdded(t, ctx, store, 1)
	offered := GivenAccountWasOpened(t, ctx, store)
	next := GivenAccountWasOpened(t, ctx, store)
	offeredReservation := GivenReservationWasPlaced(t, ctx, store, book.ID, offered.ID, now.Add(-3*day), now.Add(4*day), 1, true)
	nextReservation := GivenReservationWasPlaced(t, ctx, store, book.ID, next.ID, now.Add(-2*day), now.Add(5*day), 2, false)

	// act
	result, err := handler.Handle(ctx, cancelreservation.BuildCommand(offeredReservation.ID, now))
	require.NoError(t, err)
	again, againErr := handler.Handle(ctx, cancelreservation.BuildCommand(offeredReservation.ID, now))

	// assert
	assert.False(t, result.Idempotent)
	require.NoError(t, againErr)
	assert.True(t, again.Idempotent)

	snapshot := store.Snapshot()
	assert.Equal(t, circulation.ReservationCancelled, snapshot.Reservations[offeredReservation.ID].Status)
	assert.True(t, snapshot.Reservations[nextReservation.ID].NotificationSent)

	var offeredTo []circulation.Notification
	for _, notification := range snapshot.Notifications {
		if notification.Type == circulation.NotificationBookAvailable {
			offeredTo = append(offeredTo, notification)
		}
	}
	require.Len(t, offeredTo, 1)
	assert.Equal(t, next.ID, offeredTo[0].UserID)
}

func Test_CommandHandler_Handle_DoesNotOfferACopyThatAWalkInBorrowed(t *testing.T) {
	// setup
	ctx := context.Background()
	store, err := memoryengine.NewStore()
	require.NoError(t, err)
	handler := cancelreservation.NewCommandHandler(store)
	now := FakeClock()

	// arrange
	book := GivenBookWasAdded(t, ctx, store, 1)
	offered := GivenAccountWasOpened(t, ctx, store)
	next := GivenAccountWasOpened(t, ctx, store)
	walkIn := GivenAccountWasOpened(t, ctx, store)
	offeredReservation := GivenReservationWasPlaced(t, ctx, store, book.ID, offered.ID, now.Add(-3*day), now.Add(4*day), 1, true)
	nextReservation := GivenReservationWasPlaced(t, ctx, store, book.ID, next.ID, now.Add(-2*day), now.Add(-2*day), 2, false)

	lend := lendbook.BuildCommand(GivenUniqueID(t), book.ID, walkIn.ID, now.Add(-time.Hour), lendbook.DefaultLoanPeriod)
	_, err = lendbook.NewCommandHandler(store).Handle(ctx, lend)
	require.NoError(t, err)

	// act
	result, err := handler.Handle(ctx, cancelreservation.BuildCommand(offeredReservation.ID, now))

	// assert
	require.NoError(t, err)
	assert.False(t, result.Idempotent)

	snapshot := store.Snapshot()
	assert.Equal(t, 0, snapshot.Books[book.ID].AvailableQuantity)
	assert.Equal(t, circulation.ReservationCancelled, snapshot.Reservations[offeredReservation.ID].Status)
	assert.False(t, snapshot.Reservations[nextReservation.ID].NotificationSent, "stays queued for the next returned copy")

	for _, notification := range snapshot.Notifications {
		assert.NotEqual(t, circulation.NotificationBookAvailable, notification.Type)
	}
}

func Test_CommandHandler_Handle_Errors(t *testing.T) {
	// setup
	ctx := context.Background()
	store, err := memoryengine.NewStore()
	require.NoError(t, err)
	handler := cancelreservation.NewCommandHandler(store)
	now := FakeClock()

	// arrange
	book := GivenBookWasAdded(t, ctx, store, 1)
	reader := GivenAccountWasOpened(t, ctx, store)
	reservation := GivenReservationWasPlaced(t, ctx, store, book.ID, reader.ID, now.Add(-9*day), now.Add(-2*day), 1, true)
	require.NoError(t, store.WithinTx(ctx, func(ctx context.Context, uow circulation.UnitOfWork) error {
		_, expireErr := uow.ExpireReservations(ctx, now)
		return expireErr
	}))

	// act
	_, expiredErr := handler.Handle(ctx, cancelreservation.BuildCommand(reservation.ID, now))
	_, missingErr := handler.Handle(ctx, cancelreservation.BuildCommand(GivenUniqueID(t), now))

	// assert
	assert.ErrorIs(t, expiredErr, circulation.ErrReservationNotPending)
	assert.ErrorIs(t, missingErr, circulation.ErrReservationNotFound)
}
