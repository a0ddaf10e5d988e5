package lendbook

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

// CommandHandler lends books in one unit of work per command.
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

// Handle lends the book. A command whose loan already exists is reported as idempotent.
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
	_, err := uow.GetLoan(ctx, command.LoanID)
	switch {
	case err == nil:
		return true, nil
	case !errors.Is(err, circulation.ErrLoanNotFound):
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

	if err = Decide(account, book); err != nil {
		return false, err
	}

	if err = uow.DecrementAvailable(ctx, book.ID); err != nil {
		return false, err
	}

	loan := circulation.BuildLoan(command.LoanID, book.ID, account.ID, command.BorrowDate, command.DueDate)
	if err = uow.CreateLoan(ctx, loan); err != nil {
		return false, err
	}

	return false, fulfillOwnReservation(ctx, uow, command)
}

// fulfillOwnReservation closes the pending reservation the borrower held for the book, if any.
func fulfillOwnReservation(ctx context.Context, uow circulation.UnitOfWork, command Command) error {
	pending, err := uow.ListPendingReservations(ctx, command.BookID)
	if err != nil {
		return err
	}

	for _, reservation := range pending {
		if reservation.UserID == command.UserID {
			return uow.SetReservationStatus(ctx, reservation.ID, circulation.ReservationFulfilled)
		}
	}

	return nil
}
