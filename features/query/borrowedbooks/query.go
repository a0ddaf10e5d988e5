package borrowedbooks

import (
	"time"

	"github.com/google/uuid"

	"github.com/AntonStoeckl/library-circulation/circulation"
)

const (
	queryType = "BorrowedBooks"
)

// Query represents the intent to list the books a patron currently holds.
type Query struct {
	UserID uuid.UUID
	AsOf   time.Time
}

// BuildQuery creates a new Query. AsOf decides which loans count as overdue.
func BuildQuery(userID uuid.UUID, asOf time.Time) Query {
	return Query{
		UserID: userID,
		AsOf:   circulation.ToTimestamp(asOf),
	}
}

// QueryType returns the query type.
func (q Query) QueryType() string {
	return queryType
}
