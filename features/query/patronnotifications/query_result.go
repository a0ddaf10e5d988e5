package patronnotifications

import (
	"time"

	"github.com/google/uuid"

	"github.com/AntonStoeckl/library-circulation/circulation"
)

// Item is one notification.
type Item struct {
	ID      uuid.UUID                    `json:"id"`
	Type    circulation.NotificationType `json:"type"`
	Title   string                       `json:"title"`
	Message string                       `json:"message"`
	Date    time.Time                    `json:"date"`
	Read    bool                         `json:"read"`
}

// PatronNotifications is the query result. Unread counts all unread notifications,
// also when the query returns only those.
type PatronNotifications struct {
	UserID uuid.UUID `json:"userId"`
	Items  []Item    `json:"items"`
	Count  int       `json:"count"`
	Unread int       `json:"unread"`
}
