package circulation

import (
	"time"

	"github.com/google/uuid"
)

// NotificationType classifies a patron notification.
type NotificationType string

const (
	NotificationReturnReminder NotificationType = "return_reminder"
	NotificationBookAvailable  NotificationType = "book_available"
	NotificationOverdue        NotificationType = "overdue"
	NotificationSystem         NotificationType = "system"
)

// Notification is a message for a patron.
type Notification struct {
	ID      uuid.UUID
	UserID  uuid.UUID
	Title   string
	Message string
	Date    time.Time
	Read    bool
	Type    NotificationType
}

// BuildNotification creates an unread Notification.
func BuildNotification(
	id, userID uuid.UUID,
	notificationType NotificationType,
	title, message string,
	date time.Time,
) Notification {
	return Notification{
		ID:      id,
		UserID:  userID,
		Title:   title,
		Message: message,
		Date:    ToTimestamp(date),
		Type:    notificationType,
	}
}

// Notifications is a list of Notification.
type Notifications []Notification
