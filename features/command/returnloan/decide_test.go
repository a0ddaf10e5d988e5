package returnloan_test

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"

	"github.com/AntonStoeckl/library-circulation/circulation"
	"github.com/AntonStoeckl/library-circulation/features/command/returnloan"
)

func Test_Decide(t *testing.T) {
	now := time.Date(2025, time.March, 10, 9, 0, 0, 0, time.UTC)
	loan := circulation.BuildLoan(uuid.New(), uuid.New(), uuid.New(), now.Add(-48*time.Hour), now.Add(-24*time.Hour))

	overdue := loan
	overdue.Status = circulation.LoanOverdue

	returned := loan
	returned.Status = circulation.LoanReturned
	returned.ReturnDate = &now

	reserved := loan
	reserved.Status = circulation.LoanReserved

	assert.NoError(t, returnloan.Decide(loan))
	assert.NoError(t, returnloan.Decide(overdue))
	assert.ErrorIs(t, returnloan.Decide(returned), circulation.ErrLoanAlreadyReturned)
	assert.ErrorIs(t, returnloan.Decide(reserved), circulation.ErrLoanNotOpen)
	assert.ErrorIs(t, returnloan.Decide(reserved), circulation.ErrInvalidState)
}
