// Package sqliteengine provides an embedded SQLite implementation of circulation.Store on the
// pure Go driver modernc.org/sqlite.
//
// Transactions start with BEGIN IMMEDIATE, which takes the database write lock up front. Units
// of work therefore run one after the other, and the transaction itself is the sweep lock.
// OpenDB builds a DSN with that locking mode, foreign keys, a busy timeout and a sortable time format.
package sqliteengine
