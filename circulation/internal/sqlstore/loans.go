package sqlstore

import (
	"context"
	"database/sql"
	"time"

	"github.com/doug-martin/goqu/v9"
	"github.com/google/uuid"

	"github.com/AntonStoeckl/library-circulation/circulation"
	"github.com/AntonStoeckl/library-circulation/circulation/internal/adapters"
)

func (u *unitOfWork) loanColumns() []any {
	t := goqu.T(u.tables.Loans)

	return []any{
		t.Col(colID), t.Col(colBookID), t.Col(colUserID), t.Col(colBorrowDate),
		t.Col(colDueDate), t.Col(colReturnDate), t.Col(colStatus),
	}
}

func scanLoan(rows adapters.DBRows) (circulation.Loan, error) {
	var loan circulation.Loan
	var returnDate sql.NullTime
	var status string

	err := rows.Scan(&loan.ID, &loan.BookID, &loan.UserID, &loan.BorrowDate, &loan.DueDate, &returnDate, &status)
	if err != nil {
		return circulation.Loan{}, err
	}

	loan.BorrowDate = circulation.ToTimestamp(loan.BorrowDate)
	loan.DueDate = circulation.ToTimestamp(loan.DueDate)
	loan.Status = circulation.LoanStatus(status)

	if returnDate.Valid {
		returnedAt := circulation.ToTimestamp(returnDate.Time)
		loan.ReturnDate = &returnedAt
	}

	return loan, nil
}

func (u *unitOfWork) selectLoans(ctx context.Context, action string, stmt *goqu.SelectDataset) (circulation.Loans, error) {
	rows, err := u.query(ctx, action, stmt)
	if err != nil {
		return nil, err
	}

	return collect(ctx, u, rows, scanLoan)
}

func (u *unitOfWork) orderLoans(stmt *goqu.SelectDataset) *goqu.SelectDataset {
	t := goqu.T(u.tables.Loans)
	return stmt.Order(t.Col(colDueDate).Asc(), t.Col(colID).Asc())
}

func (u *unitOfWork) FindOverdueLoans(ctx context.Context, asOf time.Time) (circulation.Loans, error) {
	stmt := u.from(u.tables.Loans).
		Select(u.loanColumns()...).
		Where(
			goqu.C(colStatus).Eq(string(circulation.LoanBorrowed)),
			goqu.C(colReturnDate).IsNull(),
			goqu.C(colDueDate).Lt(circulation.ToTimestamp(asOf)),
		)

	return u.selectLoans(ctx, actionFindOverdueLoans, u.forUpdate(u.orderLoans(stmt)))
}

func (u *unitOfWork) FindReengageableOverdueLoans(ctx context.Context) (circulation.Loans, error) {
	loans := goqu.T(u.tables.Loans)
	accounts := goqu.T(u.tables.Accounts)

	stmt := u.from(u.tables.Loans).
		Select(u.loanColumns()...).
		Join(accounts, goqu.On(accounts.Col(colID).Eq(loans.Col(colUserID)))).
		Where(
			loans.Col(colStatus).Eq(string(circulation.LoanOverdue)),
			loans.Col(colReturnDate).IsNull(),
			accounts.Col(colIsBlocked).Eq(false),
		)

	return u.selectLoans(ctx, actionFindReengageableLoans, u.forUpdate(u.orderLoans(stmt)))
}

func (u *unitOfWork) GetLoan(ctx context.Context, loanID uuid.UUID) (circulation.Loan, error) {
	stmt := u.from(u.tables.Loans).
		Select(u.loanColumns()...).
		Where(goqu.C(colID).Eq(loanID))

	loans, err := u.selectLoans(ctx, actionGetLoan, u.forUpdate(stmt))
	if err != nil {
		return circulation.Loan{}, err
	}

	if len(loans) == 0 {
		return circulation.Loan{}, circulation.ErrLoanNotFound
	}

	return loans[0], nil
}

func (u *unitOfWork) CreateLoan(ctx context.Context, loan circulation.Loan) error {
	if err := loan.Validate(); err != nil {
		return err
	}

	stmt := u.insert(u.tables.Loans).Rows(goqu.Record{
		colID:         loan.ID,
		colBookID:     loan.BookID,
		colUserID:     loan.UserID,
		colBorrowDate: circulation.ToTimestamp(loan.BorrowDate),
		colDueDate:    circulation.ToTimestamp(loan.DueDate),
		colReturnDate: nullableTime(loan.ReturnDate),
		colStatus:     string(loan.Status),
	})

	_, err := u.exec(ctx, actionCreateLoan, stmt)

	return err
}

// updateOpenLoan applies record to an open loan and tells a missing loan from a returned one.
func (u *unitOfWork) updateOpenLoan(ctx context.Context, action string, loanID uuid.UUID, record goqu.Record) error {
	stmt := u.update(u.tables.Loans).
		Set(record).
		Where(goqu.C(colID).Eq(loanID), goqu.C(colReturnDate).IsNull())

	rowsAffected, err := u.exec(ctx, action, stmt)
	if err != nil {
		return err
	}

	if rowsAffected > 0 {
		return nil
	}

	if _, err = u.GetLoan(ctx, loanID); err != nil {
		return err
	}

	return circulation.ErrLoanAlreadyReturned
}

func (u *unitOfWork) MarkLoanOverdue(ctx context.Context, loanID uuid.UUID) error {
	return u.updateOpenLoan(ctx, actionMarkLoanOverdue, loanID, goqu.Record{
		colStatus: string(circulation.LoanOverdue),
	})
}

func (u *unitOfWork) MarkLoanReturned(ctx context.Context, loanID uuid.UUID, returnDate time.Time) error {
	return u.updateOpenLoan(ctx, actionMarkLoanReturned, loanID, goqu.Record{
		colStatus:     string(circulation.LoanReturned),
		colReturnDate: circulation.ToTimestamp(returnDate),
	})
}

func (u *unitOfWork) ListOpenLoansByUser(ctx context.Context, userID uuid.UUID) (circulation.Loans, error) {
	stmt := u.from(u.tables.Loans).
		Select(u.loanColumns()...).
		Where(goqu.C(colUserID).Eq(userID), goqu.C(colReturnDate).IsNull())

	return u.selectLoans(ctx, actionListOpenLoans, u.orderLoans(stmt))
}

func (u *unitOfWork) CountLoansByStatus(ctx context.Context) (map[circulation.LoanStatus]int, error) {
	stmt := u.from(u.tables.Loans).
		Select(goqu.C(colStatus), goqu.COUNT(goqu.Star()).As(aliasCount)).
		GroupBy(goqu.C(colStatus))

	rows, err := u.query(ctx, actionCountLoans, stmt)
	if err != nil {
		return nil, err
	}

	type statusCount struct {
		status string
		count  int64
	}

	counted, err := collect(ctx, u, rows, func(r adapters.DBRows) (statusCount, error) {
		var sc statusCount
		err := r.Scan(&sc.status, &sc.count)
		return sc, err
	})
	if err != nil {
		return nil, err
	}

	counts := make(map[circulation.LoanStatus]int, len(counted))
	for _, sc := range counted {
		counts[circulation.LoanStatus(sc.status)] = int(sc.count)
	}

	return counts, nil
}
