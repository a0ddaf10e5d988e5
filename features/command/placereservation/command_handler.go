package placereservation

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

// CommandHandler places reservations.
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

// Handle places the reservation. Two patrons racing for the same priority collide on the
// unique pending priority of the book, the loser is retried with the next priority.
func (h CommandHandler) Handle(ctx context.Context, command Command) (shell.HandlerResult, error) {
	var isIdempotent bool

	retryMetrics, err := shell.RetryWithExponentialBackoff(ctx, func(retryCtx context.Context) error {
		return h.store.WithinTx(retryCtx, func(ctx context.Context, uow circulation.UnitOfWork) error {
			idempotent, execErr := h.executeCommand(ctx, uow, command)
			isIdempotent = idempotent

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

func (h CommandHandler) executeCommand(ctx context.Context, uow circulation.UnitOfWork, command Command) (bool, error) {
	_, err := uow.GetReservation(ctx, command.ReservationID)
	switch {
	case err == nil:
		return true, nil
	case !errors.Is(err, circulation.ErrReservationNotFound):
		return false, err
	}

	account, err := uow.GetAccount(ctx, command.UserID)
	if err != nil {
		return false, err
	}

	book, err := uow.GetBook(ctx, command.BookID)
	if err != nil {
		return false, err
	}

	pending, err := uow.ListPendingReservations(ctx, book.ID)
	if err != nil {
		return false, err
	}

	decision, err := Decide(account, book, pending)
	if err != nil {
		return false, err
	}

	if decision.AlreadyQueued {
		return true, nil
	}

	// no hold yet, it starts when a copy is offered
	reservation := circulation.BuildReservation(
		command.ReservationID,
		book.ID,
		account.ID,
		command.ReservationDate,
		command.ReservationDate,
		decision.Priority,
	)

	return false, uow.CreateReservation(ctx, reservation)
}
