package updatebook

import (
	"context"

	"github.com/AntonStoeckl/library-circulation/circulation"
	"github.com/AntonStoeckl/library-circulation/shell"
)

// Store defines the interface needed by the CommandHandler.
type Store interface {
	WithinTx(ctx context.Context, fn circulation.UnitOfWorkFunc) error
}

// CommandHandler edits catalog entries.
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

// Handle updates the book and offers added copies to waiting patrons in the same unit of work.
func (h CommandHandler) Handle(ctx context.Context, command Command) (shell.HandlerResult, error) {
	retryMetrics, err := shell.RetryWithExponentialBackoff(ctx, func(retryCtx context.Context) error {
		return h.store.WithinTx(retryCtx, func(ctx context.Context, uow circulation.UnitOfWork) error {
			_, execErr := h.executeCommand(ctx, uow, command)
			return execErr
		})
	}, h.retryOptions...)

	if err != nil {
		return shell.NewErrorResult(retryMetrics), err
	}

	return shell.NewSuccessResult(retryMetrics), nil
}

func (h CommandHandler) executeCommand(
	ctx context.Context,
	uow circulation.UnitOfWork,
	command Command,
) ([]circulation.HandoffOutcome, error) {

	stored, err := uow.GetBook(ctx, command.BookID)
	if err != nil {
		return nil, err
	}

	edited := stored
	edited.ISBN = keepIfEmpty(command.ISBN, stored.ISBN)
	edited.Title = keepIfEmpty(command.Title, stored.Title)
	edited.Author = keepIfEmpty(command.Author, stored.Author)
	edited.Category = keepIfEmpty(command.Category, stored.Category)
	edited.Quantity = command.Quantity

	updated, err := uow.UpdateBook(ctx, edited)
	if err != nil {
		return nil, err
	}

	var outcomes []circulation.HandoffOutcome
	for added := updated.AvailableQuantity - stored.AvailableQuantity; added > 0; added-- {
		outcome, handoffErr := circulation.FulfillNextReservation(ctx, uow, updated.ID, command.UpdatedAt)
		if handoffErr != nil {
			return nil, handoffErr
		}

		if !outcome.Notified {
			break
		}

		outcomes = append(outcomes, outcome)
	}

	return outcomes, nil
}

func keepIfEmpty(value, stored string) string {
	if value == "" {
		return stored
	}

	return value
}
