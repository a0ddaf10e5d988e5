// Package addbook adds a title to the catalog with all of its copies on the shelf.
// Adding a book id that is already cataloged again is idempotent, the stored entry is kept.
package addbook
