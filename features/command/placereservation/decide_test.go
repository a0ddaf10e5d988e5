package placereservation_test

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AntonStoeckl/library-circulation/circulation"
	"github.com/AntonStoeckl/library-circulation/features/command/placereservation"
)

func Test_Decide(t *testing.T) {
	now := time.Date(2025, time.March, 10, 9, 0, 0, 0, time.UTC)
	account := circulation.BuildAccount(uuid.New(), "reader", "Reader")
	book := circulation.BuildBook(uuid.New(), "978-0-13-468599-1", "The Go Programming Language", "Donovan", "Programming", 1)
	book.AvailableQuantity = 0

	queued := circulation.Reservations{
		circulation.BuildReservation(uuid.New(), book.ID, uuid.New(), now, now.Add(time.Hour), 1),
		circulation.BuildReservation(uuid.New(), book.ID, uuid.New(), now, now.Add(time.Hour), 3),
	}

	t.Run("next priority is one above the highest pending priority", func(t *testing.T) {
		decision, err := placereservation.Decide(account, book, queued)

		require.NoError(t, err)
		assert.False(t, decision.AlreadyQueued)
		assert.Equal(t, 4, decision.Priority)
	})

	t.Run("empty queue starts at one", func(t *testing.T) {
		decision, err := placereservation.Decide(account, book, nil)

		require.NoError(t, err)
		assert.Equal(t, 1, decision.Priority)
	})

	t.Run("patron already waiting", func(t *testing.T) {
		own := circulation.BuildReservation(uuid.New(), book.ID, account.ID, now, now.Add(time.Hour), 4)

		decision, err := placereservation.Decide(account, book, append(queued, own))

		require.NoError(t, err)
		assert.True(t, decision.AlreadyQueued)
	})

	t.Run("copy on the shelf", func(t *testing.T) {
		available := book
		available.AvailableQuantity = 1

		_, err := placereservation.Decide(account, available, nil)

		assert.ErrorIs(t, err, circulation.ErrBookAvailable)
	})

	t.Run("blocked account", func(t *testing.T) {
		blocked := account
		blocked.IsBlocked = true
		blocked.BlockReason = "overdue"

		_, err := placereservation.Decide(blocked, book, nil)

		assert.ErrorIs(t, err, circulation.ErrAccountBlocked)
	})
}
