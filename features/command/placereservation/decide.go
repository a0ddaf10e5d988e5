package placereservation

import (
	"github.com/google/uuid"

	"github.com/AntonStoeckl/library-circulation/circulation"
)

// Decision is the outcome of Decide.
type Decision struct {
	// AlreadyQueued is true when the patron already waits for the book.
	AlreadyQueued bool
	Priority      int
}

// Decide checks whether userID may join the pending queue of book and picks the priority.
func Decide(account circulation.Account, book circulation.Book, pending circulation.Reservations) (Decision, error) {
	if account.IsBlocked {
		return Decision{}, circulation.ErrAccountBlocked
	}

	if book.AvailableQuantity > 0 {
		return Decision{}, circulation.ErrBookAvailable
	}

	if isQueued(account.ID, pending) {
		return Decision{AlreadyQueued: true}, nil
	}

	return Decision{Priority: circulation.NextPriority(pending)}, nil
}

func isQueued(userID uuid.UUID, pending circulation.Reservations) bool {
	for _, reservation := range pending {
		if reservation.UserID == userID && reservation.IsPending() {
			return true
		}
	}

	return false
}
