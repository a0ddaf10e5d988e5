package postgresengine

import (
	"fmt"

	"github.com/AntonStoeckl/library-circulation/circulation/internal/sqlstore"
)

// SchemaStatements returns the DDL for the circulation tables. Every statement is idempotent.
//
// Two partial unique indexes back the store's conflict detection: at most one unread overdue
// notification per patron, and unique priorities among the pending reservations of a book.
func SchemaStatements(t sqlstore.Tables) []string {
	return []string{
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
	id UUID PRIMARY KEY,
	isbn TEXT NOT NULL,
	title TEXT NOT NULL,
	author TEXT NOT NULL,
	category TEXT NOT NULL DEFAULT '',
	quantity INTEGER NOT NULL CHECK (quantity >= 0),
	available_quantity INTEGER NOT NULL,
	CHECK (available_quantity >= 0 AND available_quantity <= quantity)
)`, t.Books),

		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
	id UUID PRIMARY KEY,
	username TEXT NOT NULL UNIQUE,
	full_name TEXT NOT NULL DEFAULT '',
	is_blocked BOOLEAN NOT NULL DEFAULT FALSE,
	block_reason TEXT,
	CHECK (NOT is_blocked OR COALESCE(block_reason, '') <> '')
)`, t.Accounts),

		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
	id UUID PRIMARY KEY,
	book_id UUID NOT NULL REFERENCES %s (id),
	user_id UUID NOT NULL REFERENCES %s (id),
	borrow_date TIMESTAMPTZ NOT NULL,
	due_date TIMESTAMPTZ NOT NULL,
	return_date TIMESTAMPTZ,
	status TEXT NOT NULL CHECK (status IN ('borrowed', 'overdue', 'returned', 'reserved')),
	CHECK ((status = 'returned') = (return_date IS NOT NULL))
)`, t.Loans, t.Books, t.Accounts),

		fmt.Sprintf(`CREATE INDEX IF NOT EXISTS %s_open_due_idx ON %s (due_date) WHERE return_date IS NULL`,
			t.Loans, t.Loans),

		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
	id UUID PRIMARY KEY,
	book_id UUID NOT NULL REFERENCES %s (id),
	user_id UUID NOT NULL REFERENCES %s (id),
	reservation_date TIMESTAMPTZ NOT NULL,
	due_date TIMESTAMPTZ NOT NULL,
	priority INTEGER NOT NULL CHECK (priority >= 1),
	status TEXT NOT NULL CHECK (status IN ('pending', 'fulfilled', 'cancelled', 'expired')),
	notification_sent BOOLEAN NOT NULL DEFAULT FALSE
)`, t.Reservations, t.Books, t.Accounts),

		fmt.Sprintf(`CREATE UNIQUE INDEX IF NOT EXISTS %s_pending_priority_uidx ON %s (book_id, priority) WHERE status = 'pending'`,
			t.Reservations, t.Reservations),

		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
	id UUID PRIMARY KEY,
	user_id UUID NOT NULL REFERENCES %s (id),
	title TEXT NOT NULL,
	message TEXT NOT NULL,
	date TIMESTAMPTZ NOT NULL,
	read BOOLEAN NOT NULL DEFAULT FALSE,
	type TEXT NOT NULL CHECK (type IN ('return_reminder', 'book_available', 'overdue', 'system'))
)`, t.Notifications, t.Accounts),

		fmt.Sprintf(`CREATE UNIQUE INDEX IF NOT EXISTS %s_unread_overdue_uidx ON %s (user_id) WHERE type = 'overdue' AND NOT read`,
			t.Notifications, t.Notifications),
	}
}
