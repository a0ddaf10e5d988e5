package searchbooks

import (
	"slices"
	"strings"

	"github.com/AntonStoeckl/library-circulation/circulation"
)

// ProjectSearchResult keeps the books matching term, ordered by title and then ISBN.
func ProjectSearchResult(books circulation.Books, term string) SearchResult {
	needle := strings.ToLower(term)
	result := SearchResult{
		Term:  term,
		Books: make([]FoundBook, 0),
	}

	for _, book := range books {
		if !matches(book, needle) {
			continue
		}

		result.Books = append(result.Books, FoundBook{
			BookID:            book.ID,
			ISBN:              book.ISBN,
			Title:             book.Title,
			Author:            book.Author,
			Category:          book.Category,
			Quantity:          book.Quantity,
			AvailableQuantity: book.AvailableQuantity,
		})
	}

	slices.SortFunc(result.Books, func(a, b FoundBook) int {
		if byTitle := strings.Compare(a.Title, b.Title); byTitle != 0 {
			return byTitle
		}

		return strings.Compare(a.ISBN, b.ISBN)
	})

	result.Count = len(result.Books)

	return result
}

func matches(book circulation.Book, needle string) bool {
	if needle == "" {
		return true
	}

	for _, field := range []string{book.Title, book.Author, book.ISBN, book.Category} {
		if strings.Contains(strings.ToLower(field), needle) {
			return true
		}
	}

	return false
}
