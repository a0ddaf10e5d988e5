package lendbook

import "github.com/AntonStoeckl/library-circulation/circulation"

// Decide checks whether account may borrow a copy of book.
func Decide(account circulation.Account, book circulation.Book) error {
	if account.IsBlocked {
		return circulation.ErrAccountBlocked
	}

	if book.AvailableQuantity <= 0 {
		return circulation.ErrBookUnavailable
	}

	return nil
}
