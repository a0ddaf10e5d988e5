// Package returnloan implements the return of a borrowed copy: the loan is closed, the copy goes
// back on the shelf and the first waiting reservation of the book is offered the copy.
//
// An overdue loan can be returned like a borrowed one. The patron account stays locked until a
// librarian unlocks it, see unlockaccount.
package returnloan
