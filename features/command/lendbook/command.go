package lendbook

import (
	"time"

	"github.com/google/uuid"

	"github.com/AntonStoeckl/library-circulation/circulation"
)

const (
	commandType = "LendBook"

	// DefaultLoanPeriod is the time a patron may keep a copy.
	DefaultLoanPeriod = 14 * 24 * time.Hour
)

// Command represents the intent to lend a copy of a book to a patron.
// LoanID is chosen by the caller, which makes retries of the same command idempotent.
type Command struct {
	LoanID     uuid.UUID
	BookID     uuid.UUID
	UserID     uuid.UUID
	BorrowDate time.Time
	DueDate    time.Time
}

// CommandType returns the type identifier for this command, used for observability and routing.
func (c Command) CommandType() string {
	return commandType
}

// BuildCommand creates a new Command. The loan is due loanPeriod after borrowDate.
func BuildCommand(loanID, bookID, userID uuid.UUID, borrowDate time.Time, loanPeriod time.Duration) Command {
	return Command{
		LoanID:     loanID,
		BookID:     bookID,
		UserID:     userID,
		BorrowDate: circulation.ToTimestamp(borrowDate),
		DueDate:    circulation.ToTimestamp(borrowDate.Add(loanPeriod)),
	}
}
