package searchbooks

import (
	"context"

	"github.com/AntonStoeckl/library-circulation/circulation"
)

// Store defines the interface needed by the QueryHandler.
type Store interface {
	WithinTx(ctx context.Context, fn circulation.UnitOfWorkFunc) error
}

// QueryHandler reads the catalog and delegates to ProjectSearchResult.
type QueryHandler struct {
	store Store
}

// NewQueryHandler creates a new QueryHandler.
func NewQueryHandler(store Store) QueryHandler {
	return QueryHandler{store: store}
}

// Handle searches the catalog.
func (h QueryHandler) Handle(ctx context.Context, query Query) (SearchResult, error) {
	var books circulation.Books

	err := h.store.WithinTx(ctx, func(ctx context.Context, uow circulation.UnitOfWork) error {
		var err error
		books, err = uow.ListBooks(ctx)

		return err
	})
	if err != nil {
		return SearchResult{}, err
	}

	return ProjectSearchResult(books, query.Term), nil
}
