package returnloan

import (
	"context"

	"github.com/AntonStoeckl/library-circulation/circulation"
	"github.com/AntonStoeckl/library-circulation/shell"
)

// Store defines the interface needed by the CommandHandler.
type Store interface {
	WithinTx(ctx context.Context, fn circulation.UnitOfWorkFunc) error
}

// CommandHandler returns loans and hands the freed copy to the reservation queue, all in one unit of work.
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

// Handle returns the loan, retrying when the unit of work lost a race against a concurrent one.
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
) (circulation.HandoffOutcome, error) {

	loan, err := uow.GetLoan(ctx, command.LoanID)
	if err != nil {
		return circulation.HandoffOutcome{}, err
	}

	if err = Decide(loan); err != nil {
		return circulation.HandoffOutcome{}, err
	}

	if err = uow.MarkLoanReturned(ctx, loan.ID, command.ReturnDate); err != nil {
		return circulation.HandoffOutcome{}, err
	}

	if err = uow.IncrementAvailable(ctx, loan.BookID); err != nil {
		return circulation.HandoffOutcome{}, err
	}

	return circulation.FulfillNextReservation(ctx, uow, loan.BookID, command.ReturnDate)
}
