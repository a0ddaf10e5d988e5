package circulation

import (
	"sort"
	"time"

	"github.com/google/uuid"
)

// ReservationStatus is the lifecycle state of a Reservation.
type ReservationStatus string

const (
	ReservationPending   ReservationStatus = "pending"
	ReservationFulfilled ReservationStatus = "fulfilled"
	ReservationCancelled ReservationStatus = "cancelled"
	ReservationExpired   ReservationStatus = "expired"
)

// DefaultHoldPeriod is how long a notified patron has to pick up the offered copy.
const DefaultHoldPeriod = 7 * 24 * time.Hour

// Reservation is a patron's place in the waiting queue of a book.
// DueDate is the hold expiry. The hold starts when the patron is notified about a free copy,
// only a notified pending reservation past its DueDate is expired by the sweep.
type Reservation struct {
	ID               uuid.UUID
	BookID           uuid.UUID
	UserID           uuid.UUID
	ReservationDate  time.Time
	DueDate          time.Time
	Priority         int
	Status           ReservationStatus
	NotificationSent bool
}

// BuildReservation creates a pending Reservation.
func BuildReservation(
	id, bookID, userID uuid.UUID,
	reservationDate, dueDate time.Time,
	priority int,
) Reservation {
	return Reservation{
		ID:              id,
		BookID:          bookID,
		UserID:          userID,
		ReservationDate: ToTimestamp(reservationDate),
		DueDate:         ToTimestamp(dueDate),
		Priority:        priority,
		Status:          ReservationPending,
	}
}

// IsPending reports whether the reservation still waits in the queue.
func (r Reservation) IsPending() bool {
	return r.Status == ReservationPending
}

// Reservations is a list of Reservation.
type Reservations []Reservation

// SortQueue orders reservations FIFO: priority ascending, then reservation date ascending.
func SortQueue(reservations Reservations) {
	sort.SliceStable(reservations, func(i, j int) bool {
		if reservations[i].Priority != reservations[j].Priority {
			return reservations[i].Priority < reservations[j].Priority
		}

		return reservations[i].ReservationDate.Before(reservations[j].ReservationDate)
	})
}

// NextPriority returns the priority for a reservation appended to the queue.
// It is one above the highest pending priority, which equals count+1 as long as
// nobody left the queue and stays unique when somebody did.
func NextPriority(pending Reservations) int {
	highest := 0
	count := 0

	for _, r := range pending {
		if !r.IsPending() {
			continue
		}

		count++

		if r.Priority > highest {
			highest = r.Priority
		}
	}

	if count > highest {
		highest = count
	}

	return highest + 1
}
