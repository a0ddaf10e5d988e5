// Package adapters provide transactional database adapters for the SQL circulation stores.
//
// The adapter pattern supports three database libraries: pgx.Pool, sql.DB, and sqlx.DB.
// All of them open a DBTx through the common DBAdapter interface, so the stores run their
// units of work the same way whichever connection type the application hands in.
package adapters
