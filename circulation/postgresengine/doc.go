// Package postgresengine provides the PostgreSQL implementation of circulation.Store.
//
// It supports three database adapters (pgx, sql.DB, sqlx). Every unit of work runs in one
// read committed transaction; rows that are read before being updated are locked with
// SELECT ... FOR UPDATE and the sweep lock is a transaction-scoped advisory lock, so a
// second sweep in another process skips instead of waiting.
//
// Usage examples:
//
//	db, _ := pgxpool.New(context.Background(), dsn)
//	store, _ := postgresengine.NewStoreFromPGXPool(db, postgresengine.WithLogger(logger))
//	_ = store.Migrate(ctx)
//
//	err := store.WithinTx(ctx, func(ctx context.Context, uow circulation.UnitOfWork) error {
//		return uow.MarkLoanOverdue(ctx, loanID)
//	})
package postgresengine
