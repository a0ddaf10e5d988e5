package addbook

import (
	"context"
	"errors"

	"github.com/AntonStoeckl/library-circulation/circulation"
	"github.com/AntonStoeckl/library-circulation/shell"
)

// Store defines the interface needed by the CommandHandler.
type Store interface {
	WithinTx(ctx context.Context, fn circulation.UnitOfWorkFunc) error
}

// CommandHandler catalogs books.
type CommandHandler struct {
	store        Store
	retryOptions []shell.RetryOption
}

// Option configures a CommandHandler.
type Option func(*CommandHandler)

// WithRetryOptions sets a custom retry configuration for the handler.
func WithRetryOptions(opts ...shell.RetryOption) Option {
	return func(h *CommandHandler) {
		h.retryOptions = opts
	}
}

// NewCommandHandler creates a new CommandHandler with optional configuration.
func NewCommandHandler(store Store, opts ...Option) CommandHandler {
	handler := CommandHandler{store: store}

	for _, opt := range opts {
		opt(&handler)
	}

	return handler
}

// Handle adds the book to the catalog.
func (h CommandHandler) Handle(ctx context.Context, command Command) (shell.HandlerResult, error) {
	var isIdempotent bool

	retryMetrics, err := shell.RetryWithExponentialBackoff(ctx, func(retryCtx context.Context) error {
		return h.store.WithinTx(retryCtx, func(ctx context.Context, uow circulation.UnitOfWork) error {
			var execErr error
			isIdempotent, execErr = h.executeCommand(ctx, uow, command)

			return execErr
		})
	}, h.retryOptions...)

	if err != nil {
		return shell.NewErrorResult(retryMetrics), err
	}

	if isIdempotent {
		return shell.NewIdempotentResult(retryMetrics), nil
	}

	return shell.NewSuccessResult(retryMetrics), nil
}

func (h CommandHandler) executeCommand(
	ctx context.Context,
	uow circulation.UnitOfWork,
	command Command,
) (bool, error) {

	_, err := uow.GetBook(ctx, command.Book.ID)
	switch {
	case err == nil:
		return true, nil
	case !errors.Is(err, circulation.ErrBookNotFound):
		return false, err
	}

	return false, uow.CreateBook(ctx, command.Book)
}
