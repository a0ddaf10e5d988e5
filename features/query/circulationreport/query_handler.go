package circulationreport

import (
	"context"

	"github.com/AntonStoeckl/library-circulation/circulation"
)

// Store defines the interface needed by the QueryHandler.
type Store interface {
	WithinTx(ctx context.Context, fn circulation.UnitOfWorkFunc) error
}

// QueryHandler reads loans, accounts and books in one unit of work and delegates to ProjectReport.
type QueryHandler struct {
	store Store
}

// NewQueryHandler creates a new QueryHandler.
func NewQueryHandler(store Store) QueryHandler {
	return QueryHandler{store: store}
}

func (h QueryHandler) Handle(ctx context.Context, query Query) (Report, error) {
	var report Report

	err := h.store.WithinTx(ctx, func(ctx context.Context, uow circulation.UnitOfWork) error {
		loanCounts, err := uow.CountLoansByStatus(ctx)
		if err != nil {
			return err
		}

		accounts, err := uow.ListAccounts(ctx)
		if err != nil {
			return err
		}

		books, err := uow.ListBooks(ctx)
		if err != nil {
			return err
		}

		report = ProjectReport(query.GeneratedAt, loanCounts, accounts, books)

		return nil
	})
	if err != nil {
		return Report{}, err
	}

	return report, nil
}
