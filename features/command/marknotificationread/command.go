package marknotificationread

import "github.com/google/uuid"

const (
	commandType = "MarkNotificationRead"
)

// Command represents the intent to mark a notification as read.
type Command struct {
	NotificationID uuid.UUID
}

// CommandType returns the type identifier for this command, used for observability and routing.
func (c Command) CommandType() string {
	return commandType
}

// BuildCommand creates a new Command with the provided parameters.
func BuildCommand(notificationID uuid.UUID) Command {
	return Command{NotificationID: notificationID}
}
