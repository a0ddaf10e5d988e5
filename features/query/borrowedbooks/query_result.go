package borrowedbooks

import (
	"time"

	"github.com/google/uuid"

	"github.com/AntonStoeckl/library-circulation/circulation"
)

// BorrowedBook is one open loan of the patron.
type BorrowedBook struct {
	LoanID      uuid.UUID              `json:"loanId"`
	BookID      uuid.UUID              `json:"bookId"`
	Title       string                 `json:"title"`
	Author      string                 `json:"author"`
	ISBN        string                 `json:"isbn"`
	BorrowDate  time.Time              `json:"borrowDate"`
	DueDate     time.Time              `json:"dueDate"`
	Status      circulation.LoanStatus `json:"status"`
	IsOverdue   bool                   `json:"isOverdue"`
	DaysOverdue int                    `json:"daysOverdue"`
}

// BorrowedBooks is the query result.
type BorrowedBooks struct {
	UserID       uuid.UUID      `json:"userId"`
	Username     string         `json:"username"`
	IsBlocked    bool           `json:"isBlocked"`
	BlockReason  string         `json:"blockReason,omitempty"`
	Books        []BorrowedBook `json:"books"`
	Count        int            `json:"count"`
	OverdueCount int            `json:"overdueCount"`
}
