package circulation_test

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"

	. "github.com/AntonStoeckl/library-circulation/circulation"
	"github.com/AntonStoeckl/library-circulation/testutil/helper"
)

func Test_Loan_Validate(t *testing.T) {
	now := helper.FakeClock()
	loan := BuildLoan(uuid.New(), uuid.New(), uuid.New(), now.Add(-day), now.Add(13*day))
	assert.NoError(t, loan.Validate())
	assert.True(t, loan.IsOpen())
	assert.False(t, loan.IsPastDue(now))
	assert.True(t, loan.IsPastDue(now.Add(14*day)))

	loan.Status = LoanReturned
	assert.ErrorIs(t, loan.Validate(), ErrReturnDateMismatch)

	loan.ReturnDate = &now
	assert.NoError(t, loan.Validate())
	assert.False(t, loan.IsPastDue(now.Add(30*day)))

	loan.Status = LoanOverdue
	assert.ErrorIs(t, loan.Validate(), ErrInvalidState)
}

func Test_Account_Validate(t *testing.T) {
	account := BuildAccount(uuid.New(), "jdoe", "Jane Doe")
	assert.NoError(t, account.Validate())

	account.IsBlocked = true
	assert.ErrorIs(t, account.Validate(), ErrEmptyBlockReason)

	account.BlockReason = "overdue"
	assert.NoError(t, account.Validate())
}

func Test_Book_Validate(t *testing.T) {
	book := BuildBook(uuid.New(), "978-0-13-468599-1", "The Go Programming Language", "Donovan, Kernighan", "Programming", 2)
	assert.NoError(t, book.Validate())
	assert.Equal(t, 2, book.AvailableQuantity)

	book.AvailableQuantity = 3
	assert.ErrorIs(t, book.Validate(), ErrInvalidQuantity)

	book.AvailableQuantity = -1
	assert.ErrorIs(t, book.Validate(), ErrInvalidQuantity)
}

func Test_ToTimestamp_NormalizesToUTCMicroseconds(t *testing.T) {
	ts := helper.FakeClock().Add(1234567) // +1.234567ms

	normalized := ToTimestamp(ts)

	assert.Equal(t, 0, normalized.Nanosecond()%1000)
	assert.Equal(t, "UTC", normalized.Location().String())
}

func Test_IsTransient(t *testing.T) {
	assert.True(t, IsTransient(ErrConcurrencyConflict))
	assert.True(t, IsTransient(ErrTransientStore))
	assert.False(t, IsTransient(ErrLoanNotFound))
	assert.False(t, IsTransient(nil))
}
