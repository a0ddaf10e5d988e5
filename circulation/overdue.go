package circulation

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
)

const (
	overdueNotificationTitle = "Overdue book"
	overdueMessageFormat     = "The loan %s of book %s was due on %s. Your account is locked until the book is returned."
	blockReasonFormat        = "overdue loan %s for book %s"
)

// NotificationOutcome tells whether an overdue notification was written.
type NotificationOutcome string

const (
	NotificationCreated    NotificationOutcome = "created"
	NotificationSuppressed NotificationOutcome = "suppressed"
)

// OverdueTransition is the complete set of changes one overdue loan causes.
// It is built by DecideOverdueTransition and applied by ApplyOverdueTransition.
type OverdueTransition struct {
	Loan         Loan
	MarkOverdue  bool
	BlockReason  string
	Notification Notification
}

// OverdueOutcome reports what applying an OverdueTransition changed.
type OverdueOutcome struct {
	NewlyOverdue bool
	Notification NotificationOutcome
}

// BlockReasonFor returns the block reason for an account locked because of loan.
func BlockReasonFor(loan Loan) string {
	return fmt.Sprintf(blockReasonFormat, loan.ID, loan.BookID)
}

// DecideOverdueTransition is a pure function: it derives loan status, account lock and the
// notification draft for an open loan that is past due or already overdue.
func DecideOverdueTransition(loan Loan, notificationID uuid.UUID, now time.Time) OverdueTransition {
	return OverdueTransition{
		Loan:        loan,
		MarkOverdue: loan.Status != LoanOverdue,
		BlockReason: BlockReasonFor(loan),
		Notification: BuildNotification(
			notificationID,
			loan.UserID,
			NotificationOverdue,
			overdueNotificationTitle,
			fmt.Sprintf(overdueMessageFormat, loan.ID, loan.BookID, loan.DueDate.Format(time.DateOnly)),
			now,
		),
	}
}

// ApplyOverdueTransition writes the transition for loan into uow.
// The notification is skipped when the patron already has an unread overdue notification,
// which is reported as NotificationSuppressed and is not an error.
func ApplyOverdueTransition(ctx context.Context, uow UnitOfWork, loan Loan, now time.Time) (OverdueOutcome, error) {
	transition := DecideOverdueTransition(loan, uuid.New(), now)
	outcome := OverdueOutcome{}

	if transition.MarkOverdue {
		if err := uow.MarkLoanOverdue(ctx, loan.ID); err != nil {
			return OverdueOutcome{}, err
		}

		outcome.NewlyOverdue = true
	}

	if err := uow.LockAccount(ctx, loan.UserID, transition.BlockReason); err != nil {
		return OverdueOutcome{}, err
	}

	hasUnread, err := uow.HasUnreadNotification(ctx, loan.UserID, NotificationOverdue)
	if err != nil {
		return OverdueOutcome{}, err
	}

	if hasUnread {
		outcome.Notification = NotificationSuppressed
		return outcome, nil
	}

	if err = uow.CreateNotification(ctx, transition.Notification); err != nil {
		return OverdueOutcome{}, err
	}

	outcome.Notification = NotificationCreated

	return outcome, nil
}
