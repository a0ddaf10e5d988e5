package sqlstore

import (
	"context"
	"database/sql"

	"github.com/doug-martin/goqu/v9"
	"github.com/google/uuid"

	"github.com/AntonStoeckl/library-circulation/circulation"
	"github.com/AntonStoeckl/library-circulation/circulation/internal/adapters"
)

func scanAccount(rows adapters.DBRows) (circulation.Account, error) {
	var account circulation.Account
	var blockReason sql.NullString

	if err := rows.Scan(&account.ID, &account.Username, &account.FullName, &account.IsBlocked, &blockReason); err != nil {
		return circulation.Account{}, err
	}

	account.BlockReason = blockReason.String

	return account, nil
}

func (u *unitOfWork) selectAccounts(ctx context.Context, action string, stmt *goqu.SelectDataset) ([]circulation.Account, error) {
	rows, err := u.query(ctx, action, stmt)
	if err != nil {
		return nil, err
	}

	return collect(ctx, u, rows, scanAccount)
}

func (u *unitOfWork) accountSelect() *goqu.SelectDataset {
	return u.from(u.tables.Accounts).Select(colID, colUsername, colFullName, colIsBlocked, colBlockReason)
}

func (u *unitOfWork) GetAccount(ctx context.Context, userID uuid.UUID) (circulation.Account, error) {
	accounts, err := u.selectAccounts(ctx, actionGetAccount, u.forUpdate(u.accountSelect().Where(goqu.C(colID).Eq(userID))))
	if err != nil {
		return circulation.Account{}, err
	}

	if len(accounts) == 0 {
		return circulation.Account{}, circulation.ErrAccountNotFound
	}

	return accounts[0], nil
}

func (u *unitOfWork) CreateAccount(ctx context.Context, account circulation.Account) error {
	if err := account.Validate(); err != nil {
		return err
	}

	stmt := u.insert(u.tables.Accounts).Rows(goqu.Record{
		colID:          account.ID,
		colUsername:    account.Username,
		colFullName:    account.FullName,
		colIsBlocked:   account.IsBlocked,
		colBlockReason: nullable(account.BlockReason),
	})

	_, err := u.exec(ctx, actionCreateAccount, stmt)

	return err
}

func (u *unitOfWork) setBlocked(ctx context.Context, action string, userID uuid.UUID, blocked bool, reason string) error {
	stmt := u.update(u.tables.Accounts).
		Set(goqu.Record{colIsBlocked: blocked, colBlockReason: nullable(reason)}).
		Where(goqu.C(colID).Eq(userID))

	rowsAffected, err := u.exec(ctx, action, stmt)
	if err != nil {
		return err
	}

	if rowsAffected == 0 {
		return circulation.ErrAccountNotFound
	}

	return nil
}

func (u *unitOfWork) LockAccount(ctx context.Context, userID uuid.UUID, reason string) error {
	if reason == "" {
		return circulation.ErrEmptyBlockReason
	}

	return u.setBlocked(ctx, actionLockAccount, userID, true, reason)
}

func (u *unitOfWork) UnlockAccount(ctx context.Context, userID uuid.UUID) error {
	return u.setBlocked(ctx, actionUnlockAccount, userID, false, "")
}

func (u *unitOfWork) ListAccounts(ctx context.Context) ([]circulation.Account, error) {
	return u.selectAccounts(ctx, actionListAccounts, u.accountSelect().Order(goqu.C(colUsername).Asc()))
}
