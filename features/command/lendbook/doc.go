// Package lendbook lends a copy of a book to a patron. Blocked patrons and books without a copy
// on the shelf are rejected. When the patron was waiting for the book, the reservation is fulfilled.
package lendbook
