package placereservation

import (
	"time"

	"github.com/google/uuid"

	"github.com/AntonStoeckl/library-circulation/circulation"
)

const (
	commandType = "PlaceReservation"
)

// Command represents the intent to join the waiting queue of a book.
type Command struct {
	ReservationID   uuid.UUID
	BookID          uuid.UUID
	UserID          uuid.UUID
	ReservationDate time.Time
}

// CommandType returns the type identifier for this command, used for observability and routing.
func (c Command) CommandType() string {
	return commandType
}

// BuildCommand creates a new Command with the provided parameters.
func BuildCommand(reservationID, bookID, userID uuid.UUID, reservationDate time.Time) Command {
	return Command{
		ReservationID:   reservationID,
		BookID:          bookID,
		UserID:          userID,
		ReservationDate: circulation.ToTimestamp(reservationDate),
	}
}
