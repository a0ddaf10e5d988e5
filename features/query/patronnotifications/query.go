package patronnotifications

import "github.com/google/uuid"

const (
	queryType = "PatronNotifications"
)

// Query represents the intent to read a patron's notifications.
type Query struct {
	UserID     uuid.UUID
	UnreadOnly bool
}

// BuildQuery creates a new Query.
func BuildQuery(userID uuid.UUID, unreadOnly bool) Query {
	return Query{
		UserID:     userID,
		UnreadOnly: unreadOnly,
	}
}

// QueryType returns the query type.
func (q Query) QueryType() string {
	return queryType
}
