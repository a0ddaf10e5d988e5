// Package placereservation queues a patron for a book that has no copy on the shelf.
//
// The reservation gets the next free priority of the book's queue. It waits without a hold
// until a returned copy is offered to it. A patron can wait only once per book.
package placereservation
