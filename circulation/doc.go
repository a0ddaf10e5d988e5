// Package circulation contains the core model of the library circulation manager:
// loans, patron accounts, catalog books, reservations and patron notifications,
// plus the storage ports the engines implement and the pure state transitions
// that the overdue sweep and the return path apply inside one unit of work.
//
// Storage engines live in the sub-packages postgresengine, sqliteengine and memoryengine.
// All of them implement Store, so the sweep and the command handlers never depend on a
// concrete database.
package circulation
