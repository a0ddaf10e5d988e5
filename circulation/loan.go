package circulation

import (
	"time"

	"github.com/google/uuid"
)

// LoanStatus is the lifecycle state of a Loan.
type LoanStatus string

const (
	LoanBorrowed LoanStatus = "borrowed"
	LoanOverdue  LoanStatus = "overdue"
	LoanReturned LoanStatus = "returned"
	LoanReserved LoanStatus = "reserved"
)

// Loan records that a patron holds a copy of a book.
// Loans are never deleted, a returned loan keeps its history.
type Loan struct {
	ID         uuid.UUID
	BookID     uuid.UUID
	UserID     uuid.UUID
	BorrowDate time.Time
	DueDate    time.Time
	ReturnDate *time.Time
	Status     LoanStatus
}

// BuildLoan creates a new borrowed Loan.
func BuildLoan(id, bookID, userID uuid.UUID, borrowDate, dueDate time.Time) Loan {
	return Loan{
		ID:         id,
		BookID:     bookID,
		UserID:     userID,
		BorrowDate: ToTimestamp(borrowDate),
		DueDate:    ToTimestamp(dueDate),
		Status:     LoanBorrowed,
	}
}

// IsOpen reports whether the copy is still with the patron.
func (l Loan) IsOpen() bool {
	return l.ReturnDate == nil
}

// IsPastDue reports whether an open loan passed its due date at asOf.
func (l Loan) IsPastDue(asOf time.Time) bool {
	return l.IsOpen() && l.DueDate.Before(asOf)
}

// Validate checks that the return date is set exactly when the loan is returned.
func (l Loan) Validate() error {
	if (l.ReturnDate != nil) != (l.Status == LoanReturned) {
		return ErrReturnDateMismatch
	}

	return nil
}

// Loans is a list of Loan.
type Loans []Loan
