// Package borrowedbooks implements the Borrowed Books query use case.
//
// It lists the open loans of one patron together with the book data, flags every loan that
// is past its due date at the query's AsOf time and reports whether the account is blocked.
// The query reads one consistent unit of work and never modifies data.
package borrowedbooks
