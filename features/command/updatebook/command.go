package updatebook

import (
	"time"

	"github.com/google/uuid"

	"github.com/AntonStoeckl/library-circulation/circulation"
)

const (
	commandType = "UpdateBook"
)

// Command represents the intent to edit a catalog entry.
type Command struct {
	BookID    uuid.UUID
	ISBN      string
	Title     string
	Author    string
	Category  string
	Quantity  int
	UpdatedAt time.Time
}

// CommandType returns the type identifier for this command, used for observability and routing.
func (c Command) CommandType() string {
	return commandType
}

// BuildCommand creates a new Command with the provided parameters.
func BuildCommand(
	bookID uuid.UUID,
	isbn, title, author, category string,
	quantity int,
	updatedAt time.Time,
) Command {

	return Command{
		BookID:    bookID,
		ISBN:      isbn,
		Title:     title,
		Author:    author,
		Category:  category,
		Quantity:  quantity,
		UpdatedAt: circulation.ToTimestamp(updatedAt),
	}
}
