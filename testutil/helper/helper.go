package helper

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"

	"github.com/AntonStoeckl/library-circulation/circulation"
)

// FakeClock is the "now" most tests are arranged around.
func FakeClock() time.Time {
	return time.Date(2025, time.March, 10, 9, 0, 0, 0, time.UTC)
}

func ClockAt(t time.Time) circulation.Clock {
	return func() time.Time { return t }
}

func GivenUniqueID(t testing.TB) uuid.UUID {
	id, err := uuid.NewV7()
	assert.NoError(t, err, "error in arranging test data")

	return id
}

func FixtureBook(bookID uuid.UUID, quantity int) circulation.Book {
	return circulation.BuildBook(
		bookID,
		"978-1-098-10013-1",
		"Learning Domain-Driven Design",
		"Vlad Khononov",
		"Software Architecture",
		quantity,
	)
}

func FixtureAccount(userID uuid.UUID) circulation.Account {
	return circulation.BuildAccount(userID, "reader-"+userID.String(), "Test Reader")
}

func within(t testing.TB, ctx context.Context, store circulation.Store, fn circulation.UnitOfWorkFunc) {
	err := store.WithinTx(ctx, fn)
	assert.NoError(t, err, "error in arranging test data")
}

func GivenBookWasAdded(t testing.TB, ctx context.Context, store circulation.Store, quantity int) circulation.Book {
	book := FixtureBook(GivenUniqueID(t), quantity)
	within(t, ctx, store, func(ctx context.Context, uow circulation.UnitOfWork) error {
		return uow.CreateBook(ctx, book)
	})

	return book
}

func GivenAccountWasOpened(t testing.TB, ctx context.Context, store circulation.Store) circulation.Account {
	account := FixtureAccount(GivenUniqueID(t))
	within(t, ctx, store, func(ctx context.Context, uow circulation.UnitOfWork) error {
		return uow.CreateAccount(ctx, account)
	})

	return account
}

// GivenBookWasLent creates a borrowed loan and takes one copy off the shelf.
func GivenBookWasLent(
	t testing.TB,
	ctx context.Context,
	store circulation.Store,
	bookID, userID uuid.UUID,
	borrowDate, dueDate time.Time,
) circulation.Loan {

	loan := circulation.BuildLoan(GivenUniqueID(t), bookID, userID, borrowDate, dueDate)
	within(t, ctx, store, func(ctx context.Context, uow circulation.UnitOfWork) error {
		if err := uow.DecrementAvailable(ctx, bookID); err != nil {
			return err
		}

		return uow.CreateLoan(ctx, loan)
	})

	return loan
}

func GivenLoanWasMarkedOverdue(t testing.TB, ctx context.Context, store circulation.Store, loanID uuid.UUID) {
	within(t, ctx, store, func(ctx context.Context, uow circulation.UnitOfWork) error {
		return uow.MarkLoanOverdue(ctx, loanID)
	})
}

func GivenAccountWasLocked(t testing.TB, ctx context.Context, store circulation.Store, userID uuid.UUID, reason string) {
	within(t, ctx, store, func(ctx context.Context, uow circulation.UnitOfWork) error {
		return uow.LockAccount(ctx, userID, reason)
	})
}

func GivenAccountWasUnlocked(t testing.TB, ctx context.Context, store circulation.Store, userID uuid.UUID) {
	within(t, ctx, store, func(ctx context.Context, uow circulation.UnitOfWork) error {
		return uow.UnlockAccount(ctx, userID)
	})
}

func GivenNotificationWasSent(
	t testing.TB,
	ctx context.Context,
	store circulation.Store,
	userID uuid.UUID,
	notificationType circulation.NotificationType,
	date time.Time,
) circulation.Notification {

	notification := circulation.BuildNotification(
		GivenUniqueID(t),
		userID,
		notificationType,
		"Earlier notification",
		"sent before the test",
		date,
	)
	within(t, ctx, store, func(ctx context.Context, uow circulation.UnitOfWork) error {
		return uow.CreateNotification(ctx, notification)
	})

	return notification
}

func GivenNotificationWasRead(t testing.TB, ctx context.Context, store circulation.Store, notificationID uuid.UUID) {
	within(t, ctx, store, func(ctx context.Context, uow circulation.UnitOfWork) error {
		return uow.MarkNotificationRead(ctx, notificationID)
	})
}

// GivenReservationWasPlaced queues a pending reservation. A notified reservation already got its book_available message.
func GivenReservationWasPlaced(
	t testing.TB,
	ctx context.Context,
	store circulation.Store,
	bookID, userID uuid.UUID,
	reservationDate, dueDate time.Time,
	priority int,
	notified bool,
) circulation.Reservation {

	reservation := circulation.BuildReservation(GivenUniqueID(t), bookID, userID, reservationDate, dueDate, priority)
	reservation.NotificationSent = notified
	within(t, ctx, store, func(ctx context.Context, uow circulation.UnitOfWork) error {
		return uow.CreateReservation(ctx, reservation)
	})

	return reservation
}
