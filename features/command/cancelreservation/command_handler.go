package cancelreservation

import (
	"context"

	"github.com/AntonStoeckl/library-circulation/circulation"
	"github.com/AntonStoeckl/library-circulation/shell"
)

// Store defines the interface needed by the CommandHandler.
type Store interface {
	WithinTx(ctx context.Context, fn circulation.UnitOfWorkFunc) error
}

// CommandHandler cancels reservations.
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

// Handle cancels a pending reservation. Cancelling a cancelled reservation is idempotent,
// any other state fails with circulation.ErrReservationNotPending.
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
	reservation, err := uow.GetReservation(ctx, command.ReservationID)
	if err != nil {
		return false, err
	}

	switch reservation.Status {
	case circulation.ReservationCancelled:
		return true, nil
	case circulation.ReservationPending:
	default:
		return false, circulation.ErrReservationNotPending
	}

	if err = uow.SetReservationStatus(ctx, reservation.ID, circulation.ReservationCancelled); err != nil {
		return false, err
	}

	if !reservation.NotificationSent {
		return false, nil
	}

	book, err := uow.GetBook(ctx, reservation.BookID)
	if err != nil {
		return false, err
	}

	// a walk-in may have borrowed the offered copy already
	if book.AvailableQuantity == 0 {
		return false, nil
	}

	_, err = circulation.FulfillNextReservation(ctx, uow, reservation.BookID, command.OccurredAt)

	return false, err
}
