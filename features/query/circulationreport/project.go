package circulationreport

import (
	"slices"
	"strings"
	"time"

	"github.com/AntonStoeckl/library-circulation/circulation"
)

// ProjectReport aggregates the raw store reads into a Report. Categories are sorted by name.
func ProjectReport(
	generatedAt time.Time,
	loanCounts map[circulation.LoanStatus]int,
	accounts []circulation.Account,
	books circulation.Books,
) Report {

	report := Report{
		GeneratedAt: generatedAt,
		Loans: LoanCounts{
			Borrowed: loanCounts[circulation.LoanBorrowed],
			Overdue:  loanCounts[circulation.LoanOverdue],
			Returned: loanCounts[circulation.LoanReturned],
			Reserved: loanCounts[circulation.LoanReserved],
		},
	}

	for _, count := range loanCounts {
		report.Loans.Total += count
	}

	for _, account := range accounts {
		if account.IsBlocked {
			report.Accounts.Blocked++
		} else {
			report.Accounts.Active++
		}
	}

	report.Accounts.Total = len(accounts)

	stock := make(map[string]*CategoryStock)
	for _, book := range books {
		category, found := stock[book.Category]
		if !found {
			category = &CategoryStock{Category: book.Category}
			stock[book.Category] = category
		}

		category.Titles++
		category.Copies += book.Quantity
		category.Available += book.AvailableQuantity
		category.Lent += book.Quantity - book.AvailableQuantity
	}

	report.Categories = make([]CategoryStock, 0, len(stock))
	for _, category := range stock {
		report.Categories = append(report.Categories, *category)
	}

	slices.SortFunc(report.Categories, func(a, b CategoryStock) int {
		return strings.Compare(a.Category, b.Category)
	})

	return report
}
