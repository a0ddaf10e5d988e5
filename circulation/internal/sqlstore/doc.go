// Package sqlstore implements circulation.UnitOfWork on top of a SQL transaction.
//
// Statements are built with goqu as prepared statements, so the same code serves PostgreSQL and
// SQLite. A Dialect carries what differs between the databases: the goqu dialect, whether rows
// can be locked with FOR UPDATE, how the sweep lock is taken and how driver errors map onto the
// circulation error kinds.
package sqlstore
