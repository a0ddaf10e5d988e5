package sqlstore

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/AntonStoeckl/library-circulation/circulation"
	"github.com/AntonStoeckl/library-circulation/circulation/internal/adapters"
)

// Runner runs units of work and migrations against one database.
type Runner struct {
	db      adapters.DBAdapter
	dialect Dialect
	tables  Tables
	obs     *observer
}

// NewRunner creates a Runner. Tables must be valid.
func NewRunner(db adapters.DBAdapter, dialect Dialect, tables Tables, observability Observability) (Runner, error) {
	if db == nil {
		return Runner{}, circulation.ErrNilDatabaseConnection
	}

	if err := tables.Validate(); err != nil {
		return Runner{}, err
	}

	return Runner{
		db:      db,
		dialect: dialect,
		tables:  tables,
		obs:     &observer{Observability: observability, dialect: dialect.Name},
	}, nil
}

// WithinTx opens a transaction, runs fn on it and commits when fn returns nil.
// Any error from fn, from the database or from ctx rolls the transaction back.
func (r Runner) WithinTx(ctx context.Context, fn circulation.UnitOfWorkFunc) (err error) {
	start := time.Now()
	ctx, span := r.obs.startSpan(ctx)

	tx, beginErr := r.db.BeginTx(ctx)
	if beginErr != nil {
		err = r.classify(beginErr)
		r.obs.logError(ctx, logMsgBeginFailed, beginErr)
		r.finish(ctx, span, StatusError, 0, time.Since(start), err)

		return err
	}

	uow := newUnitOfWork(tx, r.dialect, r.tables, r.obs)

	if fnErr := fn(ctx, uow); fnErr != nil {
		r.rollback(ctx, tx)
		r.finish(ctx, span, StatusRolledBack, uow.statements, time.Since(start), fnErr)

		return fnErr
	}

	if commitErr := tx.Commit(ctx); commitErr != nil {
		err = r.classify(commitErr)
		r.obs.logError(ctx, logMsgCommitFailed, commitErr)
		r.rollback(ctx, tx)
		r.finish(ctx, span, StatusError, uow.statements, time.Since(start), err)

		return err
	}

	r.finish(ctx, span, StatusCommitted, uow.statements, time.Since(start), nil)

	return nil
}

func (r Runner) classify(err error) error {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}

	return r.dialect.ClassifyError(err)
}

// rollback uses a context that outlives a cancelled ctx, so the connection is released cleanly.
func (r Runner) rollback(ctx context.Context, tx adapters.DBTx) {
	rollbackCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
	defer cancel()

	if err := tx.Rollback(rollbackCtx); err != nil {
		r.obs.logWarn(ctx, logMsgRollbackFailed, logAttrError, err.Error())
	}
}

func (r Runner) finish(
	ctx context.Context,
	span circulation.SpanContext,
	status string,
	statements int,
	duration time.Duration,
	err error,
) {

	r.obs.logDebug(ctx, logMsgUnitOfWorkDone,
		logAttrStatus, status,
		logAttrStatements, statements,
		logAttrDurationMS, toMilliseconds(duration),
	)

	r.obs.recordUnitOfWork(ctx, status, duration)

	attrs := map[string]string{
		logAttrStatements: fmt.Sprintf("%d", statements),
		logAttrDurationMS: fmt.Sprintf("%.2f", toMilliseconds(duration)),
	}

	if err != nil {
		attrs[logAttrError] = err.Error()

		if errors.Is(err, circulation.ErrConcurrencyConflict) {
			r.obs.recordConcurrencyConflict(ctx)
		}
	}

	r.obs.finishSpan(span, status, attrs)
}

// Migrate executes the DDL statements in one transaction.
func (r Runner) Migrate(ctx context.Context, statements []string) error {
	tx, err := r.db.BeginTx(ctx)
	if err != nil {
		return r.classify(err)
	}

	for _, statement := range statements {
		start := time.Now()
		_, execErr := tx.Exec(ctx, statement)
		r.obs.logQueryWithDuration(ctx, statement, actionMigrate, time.Since(start))

		if execErr != nil {
			r.obs.logError(ctx, logMsgDBExecFailed, execErr, logAttrQuery, statement)
			r.rollback(ctx, tx)

			return r.classify(execErr)
		}
	}

	if err = tx.Commit(ctx); err != nil {
		return r.classify(err)
	}

	r.obs.logOperation(ctx, logMsgMigrated, logAttrDialect, r.dialect.Name, logAttrStatements, len(statements))

	return nil
}

// Tables returns the configured table names.
func (r Runner) Tables() Tables {
	return r.tables
}
