package memoryengine

import (
	"maps"

	"github.com/google/uuid"

	"github.com/AntonStoeckl/library-circulation/circulation"
)

type state struct {
	loans         map[uuid.UUID]circulation.Loan
	accounts      map[uuid.UUID]circulation.Account
	books         map[uuid.UUID]circulation.Book
	reservations  map[uuid.UUID]circulation.Reservation
	notifications map[uuid.UUID]circulation.Notification
}

func newState() *state {
	return &state{
		loans:         make(map[uuid.UUID]circulation.Loan),
		accounts:      make(map[uuid.UUID]circulation.Account),
		books:         make(map[uuid.UUID]circulation.Book),
		reservations:  make(map[uuid.UUID]circulation.Reservation),
		notifications: make(map[uuid.UUID]circulation.Notification),
	}
}

// clone copies all maps. Entity values are copied by value; ReturnDate pointers are
// only ever replaced, never written through, so sharing them is safe.
func (s *state) clone() *state {
	return &state{
		loans:         maps.Clone(s.loans),
		accounts:      maps.Clone(s.accounts),
		books:         maps.Clone(s.books),
		reservations:  maps.Clone(s.reservations),
		notifications: maps.Clone(s.notifications),
	}
}
