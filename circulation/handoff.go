package circulation

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
)

const (
	bookAvailableTitle         = "Reserved book available"
	bookAvailableMessageFormat = "A copy of %q is available for you. Please pick it up before %s."
)

// HandoffOutcome reports which reservation, if any, was notified about a freed copy.
type HandoffOutcome struct {
	Reservation Reservation
	Notified    bool
}

// FulfillNextReservation notifies the first pending reservation of bookID that has not been
// notified yet and starts its hold of DefaultHoldPeriod. The reservation stays pending until its
// patron borrows the book or the hold expires.
// An empty queue leaves the copy on the shelf.
func FulfillNextReservation(ctx context.Context, uow UnitOfWork, bookID uuid.UUID, now time.Time) (HandoffOutcome, error) {
	pending, err := uow.ListPendingReservations(ctx, bookID)
	if err != nil {
		return HandoffOutcome{}, err
	}

	SortQueue(pending)

	for _, reservation := range pending {
		// already offered a copy of its own
		if reservation.NotificationSent {
			continue
		}

		book, getErr := uow.GetBook(ctx, bookID)
		if getErr != nil {
			return HandoffOutcome{}, getErr
		}

		holdUntil := ToTimestamp(now.Add(DefaultHoldPeriod))

		notification := BuildNotification(
			uuid.New(),
			reservation.UserID,
			NotificationBookAvailable,
			bookAvailableTitle,
			fmt.Sprintf(bookAvailableMessageFormat, book.Title, holdUntil.Format(time.DateOnly)),
			now,
		)

		if err = uow.CreateNotification(ctx, notification); err != nil {
			return HandoffOutcome{}, err
		}

		if err = uow.MarkReservationNotified(ctx, reservation.ID, holdUntil); err != nil {
			return HandoffOutcome{}, err
		}

		reservation.NotificationSent = true
		reservation.DueDate = holdUntil

		return HandoffOutcome{Reservation: reservation, Notified: true}, nil
	}

	return HandoffOutcome{}, nil
}
