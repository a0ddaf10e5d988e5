package addbook

import (
	"github.com/google/uuid"

	"github.com/AntonStoeckl/library-circulation/circulation"
)

const (
	commandType = "AddBook"
)

// Command represents the intent to catalog a new book.
type Command struct {
	Book circulation.Book
}

// CommandType returns the type identifier for this command, used for observability and routing.
func (c Command) CommandType() string {
	return commandType
}

// BuildCommand creates a new Command with the provided parameters.
func BuildCommand(bookID uuid.UUID, isbn, title, author, category string, quantity int) Command {
	return Command{
		Book: circulation.BuildBook(bookID, isbn, title, author, category, quantity),
	}
}
