package borrowedbooks

import (
	"slices"
	"time"

	"github.com/google/uuid"

	"github.com/AntonStoeckl/library-circulation/circulation"
)

const day = 24 * time.Hour

// ProjectBorrowedBooks builds the result from the patron's account, their open loans and the
// books those loans refer to. Loans whose book is missing from books keep empty book fields.
// The books are ordered by due date, soonest first.
func ProjectBorrowedBooks(
	account circulation.Account,
	loans circulation.Loans,
	books map[uuid.UUID]circulation.Book,
	asOf time.Time,
) BorrowedBooks {

	result := BorrowedBooks{
		UserID:      account.ID,
		Username:    account.Username,
		IsBlocked:   account.IsBlocked,
		BlockReason: account.BlockReason,
		Books:       make([]BorrowedBook, 0, len(loans)),
	}

	for _, loan := range loans {
		if !loan.IsOpen() {
			continue
		}

		book := books[loan.BookID]
		borrowed := BorrowedBook{
			LoanID:     loan.ID,
			BookID:     loan.BookID,
			Title:      book.Title,
			Author:     book.Author,
			ISBN:       book.ISBN,
			BorrowDate: loan.BorrowDate,
			DueDate:    loan.DueDate,
			Status:     loan.Status,
			IsOverdue:  loan.IsPastDue(asOf),
		}

		if borrowed.IsOverdue {
			borrowed.DaysOverdue = int(asOf.Sub(loan.DueDate) / day)
			result.OverdueCount++
		}

		result.Books = append(result.Books, borrowed)
	}

	slices.SortFunc(result.Books, func(a, b BorrowedBook) int {
		return a.DueDate.Compare(b.DueDate)
	})

	result.Count = len(result.Books)

	return result
}
