package sqlstore

import (
	"context"
	"errors"
	"time"

	"github.com/doug-martin/goqu/v9"
	"github.com/doug-martin/goqu/v9/exp"

	"github.com/AntonStoeckl/library-circulation/circulation"
	"github.com/AntonStoeckl/library-circulation/circulation/internal/adapters"
)

const (
	colID                = "id"
	colBookID            = "book_id"
	colUserID            = "user_id"
	colBorrowDate        = "borrow_date"
	colDueDate           = "due_date"
	colReturnDate        = "return_date"
	colStatus            = "status"
	colUsername          = "username"
	colFullName          = "full_name"
	colIsBlocked         = "is_blocked"
	colBlockReason       = "block_reason"
	colISBN              = "isbn"
	colTitle             = "title"
	colAuthor            = "author"
	colCategory          = "category"
	colQuantity          = "quantity"
	colAvailableQuantity = "available_quantity"
	colReservationDate   = "reservation_date"
	colPriority          = "priority"
	colNotificationSent  = "notification_sent"
	colMessage           = "message"
	colDate              = "date"
	colRead              = "read"
	colType              = "type"
	aliasCount           = "cnt"
)

type sqlBuilder interface {
	ToSQL() (string, []any, error)
}

// unitOfWork implements circulation.UnitOfWork on one open transaction.
type unitOfWork struct {
	tx         adapters.DBTx
	dialect    Dialect
	tables     Tables
	builder    goqu.DialectWrapper
	obs        *observer
	statements int
}

func newUnitOfWork(tx adapters.DBTx, dialect Dialect, tables Tables, obs *observer) *unitOfWork {
	return &unitOfWork{
		tx:      tx,
		dialect: dialect,
		tables:  tables,
		builder: goqu.Dialect(dialect.Name),
		obs:     obs,
	}
}

func (u *unitOfWork) from(table string) *goqu.SelectDataset {
	return u.builder.From(table).Prepared(true)
}

func (u *unitOfWork) update(table string) *goqu.UpdateDataset {
	return u.builder.Update(table).Prepared(true)
}

func (u *unitOfWork) insert(table string) *goqu.InsertDataset {
	return u.builder.Insert(table).Prepared(true)
}

// forUpdate locks the selected rows until the transaction ends, where the database supports it.
func (u *unitOfWork) forUpdate(stmt *goqu.SelectDataset) *goqu.SelectDataset {
	if u.dialect.RowLocking {
		return stmt.ForUpdate(exp.Wait)
	}

	return stmt
}

func (u *unitOfWork) query(ctx context.Context, action string, stmt sqlBuilder) (adapters.DBRows, error) {
	sqlQuery, args, buildErr := stmt.ToSQL()
	if buildErr != nil {
		u.obs.logError(ctx, logMsgBuildQueryFailed, buildErr, logAttrAction, action)
		return nil, errors.Join(circulation.ErrBuildingQueryFailed, buildErr)
	}

	start := time.Now()
	rows, queryErr := u.tx.Query(ctx, sqlQuery, args...)
	u.obs.logQueryWithDuration(ctx, sqlQuery, action, time.Since(start))
	u.statements++

	if queryErr != nil {
		return nil, u.dbError(ctx, logMsgDBQueryFailed, action, sqlQuery, queryErr)
	}

	return rows, nil
}

func (u *unitOfWork) exec(ctx context.Context, action string, stmt sqlBuilder) (int64, error) {
	sqlQuery, args, buildErr := stmt.ToSQL()
	if buildErr != nil {
		u.obs.logError(ctx, logMsgBuildQueryFailed, buildErr, logAttrAction, action)
		return 0, errors.Join(circulation.ErrBuildingQueryFailed, buildErr)
	}

	start := time.Now()
	result, execErr := u.tx.Exec(ctx, sqlQuery, args...)
	u.obs.logQueryWithDuration(ctx, sqlQuery, action, time.Since(start))
	u.statements++

	if execErr != nil {
		return 0, u.dbError(ctx, logMsgDBExecFailed, action, sqlQuery, execErr)
	}

	rowsAffected, rowsAffectedErr := result.RowsAffected()
	if rowsAffectedErr != nil {
		return 0, u.dbError(ctx, logMsgRowsAffectedFailed, action, sqlQuery, rowsAffectedErr)
	}

	return rowsAffected, nil
}

func (u *unitOfWork) dbError(ctx context.Context, msg, action, sqlQuery string, err error) error {
	classified := u.dialect.ClassifyError(err)

	if errors.Is(classified, circulation.ErrConcurrencyConflict) {
		u.obs.logOperation(ctx, logMsgConcurrencyConflict, logAttrAction, action, logAttrError, err.Error())
		return classified
	}

	u.obs.logError(ctx, msg, err, logAttrAction, action, logAttrQuery, sqlQuery)

	return classified
}

// collect scans all rows and closes them.
func collect[T any](ctx context.Context, u *unitOfWork, rows adapters.DBRows, scan func(adapters.DBRows) (T, error)) ([]T, error) {
	defer u.closeRows(ctx, rows)

	items := make([]T, 0)
	for rows.Next() {
		item, scanErr := scan(rows)
		if scanErr != nil {
			u.obs.logError(ctx, logMsgScanRowFailed, scanErr)
			return nil, errors.Join(circulation.ErrScanningDBRowFailed, scanErr)
		}

		items = append(items, item)
	}

	if err := rows.Err(); err != nil {
		return nil, u.dialect.ClassifyError(err)
	}

	return items, nil
}

func (u *unitOfWork) closeRows(ctx context.Context, rows adapters.DBRows) {
	if closeErr := rows.Close(); closeErr != nil {
		u.obs.logWarn(ctx, logMsgCloseRowsFailed, logAttrError, closeErr.Error())
	}
}

// TryAcquireSweepLock takes the transaction-scoped sweep lock without waiting.
func (u *unitOfWork) TryAcquireSweepLock(ctx context.Context) (bool, error) {
	if u.dialect.SweepLock == nil {
		return true, nil
	}

	rows, err := u.query(ctx, actionSweepLock, u.dialect.SweepLock(u.builder).Prepared(true))
	if err != nil {
		return false, err
	}

	acquired, err := collect(ctx, u, rows, func(r adapters.DBRows) (bool, error) {
		var ok bool
		err := r.Scan(&ok)
		return ok, err
	})
	if err != nil {
		return false, err
	}

	return len(acquired) == 1 && acquired[0], nil
}

func nullable[T comparable](value T) any {
	var zero T
	if value == zero {
		return nil
	}

	return value
}

func nullableTime(t *time.Time) any {
	if t == nil {
		return nil
	}

	return circulation.ToTimestamp(*t)
}

var _ circulation.UnitOfWork = (*unitOfWork)(nil)
