package searchbooks

import "github.com/google/uuid"

// FoundBook is one catalog entry matching the search term.
type FoundBook struct {
	BookID            uuid.UUID `json:"bookId"`
	ISBN              string    `json:"isbn"`
	Title             string    `json:"title"`
	Author            string    `json:"author"`
	Category          string    `json:"category"`
	Quantity          int       `json:"quantity"`
	AvailableQuantity int       `json:"availableQuantity"`
}

// SearchResult is the query result.
type SearchResult struct {
	Term  string      `json:"term"`
	Books []FoundBook `json:"books"`
	Count int         `json:"count"`
}
