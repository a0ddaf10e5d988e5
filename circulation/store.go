package circulation

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// LoanLedger reads and mutates loans.
type LoanLedger interface {
	// FindOverdueLoans returns borrowed loans without a return date whose due date is before asOf.
	FindOverdueLoans(ctx context.Context, asOf time.Time) (Loans, error)

	// FindReengageableOverdueLoans returns overdue loans without a return date whose account is not blocked.
	FindReengageableOverdueLoans(ctx context.Context) (Loans, error)

	GetLoan(ctx context.Context, loanID uuid.UUID) (Loan, error)
	CreateLoan(ctx context.Context, loan Loan) error
	MarkLoanOverdue(ctx context.Context, loanID uuid.UUID) error
	MarkLoanReturned(ctx context.Context, loanID uuid.UUID, returnDate time.Time) error
	ListOpenLoansByUser(ctx context.Context, userID uuid.UUID) (Loans, error)
	CountLoansByStatus(ctx context.Context) (map[LoanStatus]int, error)
}

// AccountDirectory reads and mutates patron accounts.
type AccountDirectory interface {
	GetAccount(ctx context.Context, userID uuid.UUID) (Account, error)
	CreateAccount(ctx context.Context, account Account) error

	// LockAccount blocks the account with the given reason. Locking a blocked account overwrites the reason.
	LockAccount(ctx context.Context, userID uuid.UUID, reason string) error

	UnlockAccount(ctx context.Context, userID uuid.UUID) error
	ListAccounts(ctx context.Context) ([]Account, error)
}

// CatalogStore reads books and adjusts their availability.
type CatalogStore interface {
	GetBook(ctx context.Context, bookID uuid.UUID) (Book, error)
	CreateBook(ctx context.Context, book Book) error

	// DecrementAvailable fails with ErrBookUnavailable when no copy is left.
	DecrementAvailable(ctx context.Context, bookID uuid.UUID) error

	// IncrementAvailable fails with ErrInventoryExceeded when all copies are already on the shelf.
	IncrementAvailable(ctx context.Context, bookID uuid.UUID) error

	// UpdateBook replaces the catalog data and the copy count of a book and returns the stored book.
	// AvailableQuantity moves with Quantity, so copies on loan stay on loan. Removing more copies
	// than are on the shelf fails with ErrInvalidQuantity.
	UpdateBook(ctx context.Context, book Book) (Book, error)

	ListBooks(ctx context.Context) (Books, error)
}

// ReservationQueue reads and mutates the per-book waiting queues.
type ReservationQueue interface {
	// ListPendingReservations returns the pending reservations of a book ordered by priority, then reservation date.
	ListPendingReservations(ctx context.Context, bookID uuid.UUID) (Reservations, error)

	GetReservation(ctx context.Context, reservationID uuid.UUID) (Reservation, error)
	CreateReservation(ctx context.Context, reservation Reservation) error

	// MarkReservationNotified sets NotificationSent and starts the hold: DueDate becomes holdUntil.
	MarkReservationNotified(ctx context.Context, reservationID uuid.UUID, holdUntil time.Time) error

	SetReservationStatus(ctx context.Context, reservationID uuid.UUID, status ReservationStatus) error

	// ExpireReservations sets every notified pending reservation with a due date before asOf to
	// expired and returns them as they were before expiry. Reservations still waiting for a copy
	// never expire.
	ExpireReservations(ctx context.Context, asOf time.Time) (Reservations, error)
}

// NotificationSink stores patron notifications.
type NotificationSink interface {
	HasUnreadNotification(ctx context.Context, userID uuid.UUID, notificationType NotificationType) (bool, error)
	CreateNotification(ctx context.Context, notification Notification) error
	ListNotifications(ctx context.Context, userID uuid.UUID) (Notifications, error)
	MarkNotificationRead(ctx context.Context, notificationID uuid.UUID) error
}

// SweepLocker serializes sweeps across processes.
// The lock is scoped to the unit of work and released on commit or rollback.
type SweepLocker interface {
	TryAcquireSweepLock(ctx context.Context) (bool, error)
}

// UnitOfWork is the transactional view on all stores. Every mutation done through it
// commits or rolls back together.
type UnitOfWork interface {
	LoanLedger
	AccountDirectory
	CatalogStore
	ReservationQueue
	NotificationSink
	SweepLocker
}

// UnitOfWorkFunc is the body of a transaction.
type UnitOfWorkFunc func(ctx context.Context, uow UnitOfWork) error

// Store runs units of work. WithinTx commits when fn returns nil and rolls back otherwise.
type Store interface {
	WithinTx(ctx context.Context, fn UnitOfWorkFunc) error
}
