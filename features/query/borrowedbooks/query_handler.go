package borrowedbooks

import (
	"context"

	"github.com/google/uuid"

	"github.com/AntonStoeckl/library-circulation/circulation"
)

// Store defines the interface needed by the QueryHandler.
type Store interface {
	WithinTx(ctx context.Context, fn circulation.UnitOfWorkFunc) error
}

// QueryHandler reads the patron's loans and delegates to ProjectBorrowedBooks.
// Observability is added by wrapping it with an observable.QueryWrapper.
type QueryHandler struct {
	store Store
}

// NewQueryHandler creates a new QueryHandler.
func NewQueryHandler(store Store) QueryHandler {
	return QueryHandler{store: store}
}

// Handle fails with circulation.ErrAccountNotFound for an unknown patron.
func (h QueryHandler) Handle(ctx context.Context, query Query) (BorrowedBooks, error) {
	var result BorrowedBooks

	err := h.store.WithinTx(ctx, func(ctx context.Context, uow circulation.UnitOfWork) error {
		account, err := uow.GetAccount(ctx, query.UserID)
		if err != nil {
			return err
		}

		loans, err := uow.ListOpenLoansByUser(ctx, account.ID)
		if err != nil {
			return err
		}

		books := make(map[uuid.UUID]circulation.Book, len(loans))
		for _, loan := range loans {
			if _, seen := books[loan.BookID]; seen {
				continue
			}

			book, getErr := uow.GetBook(ctx, loan.BookID)
			if getErr != nil {
				return getErr
			}

			books[book.ID] = book
		}

		result = ProjectBorrowedBooks(account, loans, books, query.AsOf)

		return nil
	})
	if err != nil {
		return BorrowedBooks{}, err
	}

	return result, nil
}
