package circulationreport_test

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"

	"github.com/AntonStoeckl/library-circulation/circulation"
	"github.com/AntonStoeckl/library-circulation/features/query/circulationreport"
	. "github.com/AntonStoeckl/library-circulation/testutil/helper" //nolint:revive
)

func Test_ProjectReport(t *testing.T) {
	// arrange
	blocked := circulation.BuildAccount(uuid.New(), "late", "Late Reader")
	blocked.IsBlocked = true
	blocked.BlockReason = "overdue"
	accounts := []circulation.Account{
		circulation.BuildAccount(uuid.New(), "a", "A"),
		circulation.BuildAccount(uuid.New(), "b", "B"),
		blocked,
	}

	novel := circulation.BuildBook(uuid.New(), "1", "Novel", "X", "Fiction", 3)
	novel.AvailableQuantity = 1
	books := circulation.Books{
		novel,
		circulation.BuildBook(uuid.New(), "2", "Poems", "Y", "Fiction", 2),
		circulation.BuildBook(uuid.New(), "3", "Atlas", "Z", "Geography", 1),
	}

	loanCounts := map[circulation.LoanStatus]int{
		circulation.LoanBorrowed: 1,
		circulation.LoanOverdue:  1,
		circulation.LoanReturned: 5,
	}

	// act
	report := circulationreport.ProjectReport(FakeClock(), loanCounts, accounts, books)

	// assert
	assert.Equal(t, FakeClock(), report.GeneratedAt)
	assert.Equal(t, circulationreport.LoanCounts{Borrowed: 1, Overdue: 1, Returned: 5, Total: 7}, report.Loans)
	assert.Equal(t, circulationreport.AccountCounts{Active: 2, Blocked: 1, Total: 3}, report.Accounts)
	assert.Equal(t, []circulationreport.CategoryStock{
		{Category: "Fiction", Titles: 2, Copies: 5, Available: 3, Lent: 2},
		{Category: "Geography", Titles: 1, Copies: 1, Available: 1},
	}, report.Categories)
}
