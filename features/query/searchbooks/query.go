package searchbooks

import "strings"

const (
	queryType = "SearchBooks"
)

// Query represents the intent to search the catalog.
type Query struct {
	Term string
}

// BuildQuery creates a new Query with a trimmed search term.
func BuildQuery(term string) Query {
	return Query{Term: strings.TrimSpace(term)}
}

// QueryType returns the query type.
func (q Query) QueryType() string {
	return queryType
}
