// Package searchbooks implements the catalog search: books whose title, author, ISBN or category
// contain the search term, ignoring case. An empty term lists the whole catalog.
package searchbooks
