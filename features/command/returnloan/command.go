package returnloan

import (
	"time"

	"github.com/google/uuid"

	"github.com/AntonStoeckl/library-circulation/circulation"
)

const (
	commandType = "ReturnLoan"
)

// Command represents the intent to return the copy of a loan.
type Command struct {
	LoanID     uuid.UUID
	ReturnDate time.Time
}

// CommandType returns the type identifier for this command, used for observability and routing.
func (c Command) CommandType() string {
	return commandType
}

// BuildCommand creates a new Command with the provided parameters.
func BuildCommand(loanID uuid.UUID, returnDate time.Time) Command {
	return Command{
		LoanID:     loanID,
		ReturnDate: circulation.ToTimestamp(returnDate),
	}
}
