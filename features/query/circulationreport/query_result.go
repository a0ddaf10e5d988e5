package circulationreport

import "time"

// LoanCounts counts loans per status.
type LoanCounts struct {
	Borrowed int `json:"borrowed"`
	Overdue  int `json:"overdue"`
	Returned int `json:"returned"`
	Reserved int `json:"reserved"`
	Total    int `json:"total"`
}

// AccountCounts counts patron accounts.
type AccountCounts struct {
	Active  int `json:"active"`
	Blocked int `json:"blocked"`
	Total   int `json:"total"`
}

// CategoryStock is the copy inventory of one category.
type CategoryStock struct {
	Category  string `json:"category"`
	Titles    int    `json:"titles"`
	Copies    int    `json:"copies"`
	Available int    `json:"available"`
	Lent      int    `json:"lent"`
}

// Report is the query result.
type Report struct {
	GeneratedAt time.Time       `json:"generatedAt"`
	Loans       LoanCounts      `json:"loans"`
	Accounts    AccountCounts   `json:"accounts"`
	Categories  []CategoryStock `json:"categories"`
}
