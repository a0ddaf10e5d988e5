package circulation

import (
	"github.com/google/uuid"
)

// Book is a catalog entry with its copy inventory.
type Book struct {
	ID                uuid.UUID
	ISBN              string
	Title             string
	Author            string
	Category          string
	Quantity          int
	AvailableQuantity int
}

// BuildBook creates a Book with all copies available.
func BuildBook(id uuid.UUID, isbn, title, author, category string, quantity int) Book {
	return Book{
		ID:                id,
		ISBN:              isbn,
		Title:             title,
		Author:            author,
		Category:          category,
		Quantity:          quantity,
		AvailableQuantity: quantity,
	}
}

// Validate checks 0 <= AvailableQuantity <= Quantity.
func (b Book) Validate() error {
	if b.AvailableQuantity < 0 || b.AvailableQuantity > b.Quantity {
		return ErrInvalidQuantity
	}

	return nil
}

// Books is a list of Book.
type Books []Book
