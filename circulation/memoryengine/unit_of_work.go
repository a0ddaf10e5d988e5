package memoryengine

import (
	"context"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/AntonStoeckl/library-circulation/circulation"
)

type unitOfWork struct {
	store          *Store
	state          *state
	holdsSweepLock bool
	mutations      int
}

func (u *unitOfWork) check(operation string) error {
	return u.store.fault(operation)
}

func (u *unitOfWork) releaseSweepLock() {
	if u.holdsSweepLock {
		u.holdsSweepLock = false
		u.store.sweepMu.Unlock()
	}
}

// TryAcquireSweepLock takes the sweep lock until the unit of work ends.
func (u *unitOfWork) TryAcquireSweepLock(_ context.Context) (bool, error) {
	if err := u.check("TryAcquireSweepLock"); err != nil {
		return false, err
	}

	if u.holdsSweepLock {
		return true, nil
	}

	if !u.store.sweepMu.TryLock() {
		return false, nil
	}

	u.holdsSweepLock = true

	return true, nil
}

/*** LoanLedger ***/

func (u *unitOfWork) FindOverdueLoans(_ context.Context, asOf time.Time) (circulation.Loans, error) {
	if err := u.check("FindOverdueLoans"); err != nil {
		return nil, err
	}

	loans := make(circulation.Loans, 0)
	for _, loan := range u.state.loans {
		if loan.Status == circulation.LoanBorrowed && loan.IsPastDue(asOf) {
			loans = append(loans, loan)
		}
	}

	sortLoans(loans)

	return loans, nil
}

func (u *unitOfWork) FindReengageableOverdueLoans(_ context.Context) (circulation.Loans, error) {
	if err := u.check("FindReengageableOverdueLoans"); err != nil {
		return nil, err
	}

	loans := make(circulation.Loans, 0)
	for _, loan := range u.state.loans {
		if loan.Status != circulation.LoanOverdue || !loan.IsOpen() {
			continue
		}

		account, found := u.state.accounts[loan.UserID]
		if found && !account.IsBlocked {
			loans = append(loans, loan)
		}
	}

	sortLoans(loans)

	return loans, nil
}

func (u *unitOfWork) GetLoan(_ context.Context, loanID uuid.UUID) (circulation.Loan, error) {
	if err := u.check("GetLoan"); err != nil {
		return circulation.Loan{}, err
	}

	loan, found := u.state.loans[loanID]
	if !found {
		return circulation.Loan{}, circulation.ErrLoanNotFound
	}

	return loan, nil
}

func (u *unitOfWork) CreateLoan(_ context.Context, loan circulation.Loan) error {
	if err := u.check("CreateLoan"); err != nil {
		return err
	}

	if _, exists := u.state.loans[loan.ID]; exists {
		return circulation.ErrConcurrencyConflict
	}

	if _, found := u.state.books[loan.BookID]; !found {
		return circulation.ErrBookNotFound
	}

	if _, found := u.state.accounts[loan.UserID]; !found {
		return circulation.ErrAccountNotFound
	}

	if err := loan.Validate(); err != nil {
		return err
	}

	u.state.loans[loan.ID] = loan
	u.mutations++

	return nil
}

func (u *unitOfWork) MarkLoanOverdue(_ context.Context, loanID uuid.UUID) error {
	if err := u.check("MarkLoanOverdue"); err != nil {
		return err
	}

	loan, found := u.state.loans[loanID]
	if !found {
		return circulation.ErrLoanNotFound
	}

	if !loan.IsOpen() {
		return circulation.ErrLoanAlreadyReturned
	}

	loan.Status = circulation.LoanOverdue
	u.state.loans[loanID] = loan
	u.mutations++

	return nil
}

func (u *unitOfWork) MarkLoanReturned(_ context.Context, loanID uuid.UUID, returnDate time.Time) error {
	if err := u.check("MarkLoanReturned"); err != nil {
		return err
	}

	loan, found := u.state.loans[loanID]
	if !found {
		return circulation.ErrLoanNotFound
	}

	if !loan.IsOpen() {
		return circulation.ErrLoanAlreadyReturned
	}

	returnedAt := circulation.ToTimestamp(returnDate)
	loan.ReturnDate = &returnedAt
	loan.Status = circulation.LoanReturned
	u.state.loans[loanID] = loan
	u.mutations++

	return nil
}

func (u *unitOfWork) ListOpenLoansByUser(_ context.Context, userID uuid.UUID) (circulation.Loans, error) {
	if err := u.check("ListOpenLoansByUser"); err != nil {
		return nil, err
	}

	loans := make(circulation.Loans, 0)
	for _, loan := range u.state.loans {
		if loan.UserID == userID && loan.IsOpen() {
			loans = append(loans, loan)
		}
	}

	sortLoans(loans)

	return loans, nil
}

func (u *unitOfWork) CountLoansByStatus(_ context.Context) (map[circulation.LoanStatus]int, error) {
	if err := u.check("CountLoansByStatus"); err != nil {
		return nil, err
	}

	counts := make(map[circulation.LoanStatus]int)
	for _, loan := range u.state.loans {
		counts[loan.Status]++
	}

	return counts, nil
}

func sortLoans(loans circulation.Loans) {
	sort.Slice(loans, func(i, j int) bool {
		if !loans[i].DueDate.Equal(loans[j].DueDate) {
			return loans[i].DueDate.Before(loans[j].DueDate)
		}

		return loans[i].ID.String() < loans[j].ID.String()
	})
}

/*** AccountDirectory ***/

func (u *unitOfWork) GetAccount(_ context.Context, userID uuid.UUID) (circulation.Account, error) {
	if err := u.check("GetAccount"); err != nil {
		return circulation.Account{}, err
	}

	account, found := u.state.accounts[userID]
	if !found {
		return circulation.Account{}, circulation.ErrAccountNotFound
	}

	return account, nil
}

func (u *unitOfWork) CreateAccount(_ context.Context, account circulation.Account) error {
	if err := u.check("CreateAccount"); err != nil {
		return err
	}

	if _, exists := u.state.accounts[account.ID]; exists {
		return circulation.ErrConcurrencyConflict
	}

	if err := account.Validate(); err != nil {
		return err
	}

	u.state.accounts[account.ID] = account
	u.mutations++

	return nil
}

func (u *unitOfWork) LockAccount(_ context.Context, userID uuid.UUID, reason string) error {
	if err := u.check("LockAccount"); err != nil {
		return err
	}

	if reason == "" {
		return circulation.ErrEmptyBlockReason
	}

	account, found := u.state.accounts[userID]
	if !found {
		return circulation.ErrAccountNotFound
	}

	account.IsBlocked = true
	account.BlockReason = reason
	u.state.accounts[userID] = account
	u.mutations++

	return nil
}

func (u *unitOfWork) UnlockAccount(_ context.Context, userID uuid.UUID) error {
	if err := u.check("UnlockAccount"); err != nil {
		return err
	}

	account, found := u.state.accounts[userID]
	if !found {
		return circulation.ErrAccountNotFound
	}

	account.IsBlocked = false
	account.BlockReason = ""
	u.state.accounts[userID] = account
	u.mutations++

	return nil
}

func (u *unitOfWork) ListAccounts(_ context.Context) ([]circulation.Account, error) {
	if err := u.check("ListAccounts"); err != nil {
		return nil, err
	}

	accounts := make([]circulation.Account, 0, len(u.state.accounts))
	for _, account := range u.state.accounts {
		accounts = append(accounts, account)
	}

	sort.Slice(accounts, func(i, j int) bool {
		return accounts[i].Username < accounts[j].Username
	})

	return accounts, nil
}

/*** CatalogStore ***/

func (u *unitOfWork) GetBook(_ context.Context, bookID uuid.UUID) (circulation.Book, error) {
	if err := u.check("GetBook"); err != nil {
		return circulation.Book{}, err
	}

	book, found := u.state.books[bookID]
	if !found {
		return circulation.Book{}, circulation.ErrBookNotFound
	}

	return book, nil
}

func (u *unitOfWork) CreateBook(_ context.Context, book circulation.Book) error {
	if err := u.check("CreateBook"); err != nil {
		return err
	}

	if _, exists := u.state.books[book.ID]; exists {
		return circulation.ErrConcurrencyConflict
	}

	if err := book.Validate(); err != nil {
		return err
	}

	u.state.books[book.ID] = book
	u.mutations++

	return nil
}

func (u *unitOfWork) DecrementAvailable(_ context.Context, bookID uuid.UUID) error {
	if err := u.check("DecrementAvailable"); err != nil {
		return err
	}

	book, found := u.state.books[bookID]
	if !found {
		return circulation.ErrBookNotFound
	}

	if book.AvailableQuantity <= 0 {
		return circulation.ErrBookUnavailable
	}

	book.AvailableQuantity--
	u.state.books[bookID] = book
	u.mutations++

	return nil
}

func (u *unitOfWork) IncrementAvailable(_ context.Context, bookID uuid.UUID) error {
	if err := u.check("IncrementAvailable"); err != nil {
		return err
	}

	book, found := u.state.books[bookID]
	if !found {
		return circulation.ErrBookNotFound
	}

	if book.AvailableQuantity >= book.Quantity {
		return circulation.ErrInventoryExceeded
	}

	book.AvailableQuantity++
	u.state.books[bookID] = book
	u.mutations++

	return nil
}

func (u *unitOfWork) UpdateBook(_ context.Context, book circulation.Book) (circulation.Book, error) {
	if err := u.check("UpdateBook"); err != nil {
		return circulation.Book{}, err
	}

	stored, found := u.state.books[book.ID]
	if !found {
		return circulation.Book{}, circulation.ErrBookNotFound
	}

	book.AvailableQuantity = stored.AvailableQuantity + book.Quantity - stored.Quantity
	if err := book.Validate(); err != nil {
		return circulation.Book{}, err
	}

	u.state.books[book.ID] = book
	u.mutations++

	return book, nil
}

func (u *unitOfWork) ListBooks(_ context.Context) (circulation.Books, error) {
	if err := u.check("ListBooks"); err != nil {
		return nil, err
	}

	books := make(circulation.Books, 0, len(u.state.books))
	for _, book := range u.state.books {
		books = append(books, book)
	}

	sort.Slice(books, func(i, j int) bool {
		if books[i].Category != books[j].Category {
			return books[i].Category < books[j].Category
		}

		return books[i].Title < books[j].Title
	})

	return books, nil
}

/*** ReservationQueue ***/

func (u *unitOfWork) ListPendingReservations(_ context.Context, bookID uuid.UUID) (circulation.Reservations, error) {
	if err := u.check("ListPendingReservations"); err != nil {
		return nil, err
	}

	reservations := make(circulation.Reservations, 0)
	for _, reservation := range u.state.reservations {
		if reservation.BookID == bookID && reservation.IsPending() {
			reservations = append(reservations, reservation)
		}
	}

	circulation.SortQueue(reservations)

	return reservations, nil
}

func (u *unitOfWork) GetReservation(_ context.Context, reservationID uuid.UUID) (circulation.Reservation, error) {
	if err := u.check("GetReservation"); err != nil {
		return circulation.Reservation{}, err
	}

	reservation, found := u.state.reservations[reservationID]
	if !found {
		return circulation.Reservation{}, circulation.ErrReservationNotFound
	}

	return reservation, nil
}

func (u *unitOfWork) CreateReservation(_ context.Context, reservation circulation.Reservation) error {
	if err := u.check("CreateReservation"); err != nil {
		return err
	}

	if _, exists := u.state.reservations[reservation.ID]; exists {
		return circulation.ErrConcurrencyConflict
	}

	if reservation.IsPending() {
		for _, other := range u.state.reservations {
			if other.BookID == reservation.BookID && other.IsPending() && other.Priority == reservation.Priority {
				return circulation.ErrConcurrencyConflict
			}
		}
	}

	u.state.reservations[reservation.ID] = reservation
	u.mutations++

	return nil
}

func (u *unitOfWork) MarkReservationNotified(_ context.Context, reservationID uuid.UUID, holdUntil time.Time) error {
	if err := u.check("MarkReservationNotified"); err != nil {
		return err
	}

	reservation, found := u.state.reservations[reservationID]
	if !found {
		return circulation.ErrReservationNotFound
	}

	reservation.NotificationSent = true
	reservation.DueDate = circulation.ToTimestamp(holdUntil)
	u.state.reservations[reservationID] = reservation
	u.mutations++

	return nil
}

func (u *unitOfWork) SetReservationStatus(
	_ context.Context,
	reservationID uuid.UUID,
	status circulation.ReservationStatus,
) error {

	if err := u.check("SetReservationStatus"); err != nil {
		return err
	}

	reservation, found := u.state.reservations[reservationID]
	if !found {
		return circulation.ErrReservationNotFound
	}

	reservation.Status = status
	u.state.reservations[reservationID] = reservation
	u.mutations++

	return nil
}

func (u *unitOfWork) ExpireReservations(_ context.Context, asOf time.Time) (circulation.Reservations, error) {
	if err := u.check("ExpireReservations"); err != nil {
		return nil, err
	}

	expired := make(circulation.Reservations, 0)
	for id, reservation := range u.state.reservations {
		if reservation.IsPending() && reservation.NotificationSent && reservation.DueDate.Before(asOf) {
			expired = append(expired, reservation)
			reservation.Status = circulation.ReservationExpired
			u.state.reservations[id] = reservation
		}
	}

	circulation.SortQueue(expired)
	u.mutations += len(expired)

	return expired, nil
}

/*** NotificationSink ***/

func (u *unitOfWork) HasUnreadNotification(
	_ context.Context,
	userID uuid.UUID,
	notificationType circulation.NotificationType,
) (bool, error) {

	if err := u.check("HasUnreadNotification"); err != nil {
		return false, err
	}

	for _, notification := range u.state.notifications {
		if notification.UserID == userID && notification.Type == notificationType && !notification.Read {
			return true, nil
		}
	}

	return false, nil
}

func (u *unitOfWork) CreateNotification(ctx context.Context, notification circulation.Notification) error {
	if err := u.check("CreateNotification"); err != nil {
		return err
	}

	if _, exists := u.state.notifications[notification.ID]; exists {
		return circulation.ErrConcurrencyConflict
	}

	if notification.Type == circulation.NotificationOverdue && !notification.Read {
		hasUnread, _ := u.HasUnreadNotification(ctx, notification.UserID, circulation.NotificationOverdue)
		if hasUnread {
			return circulation.ErrConcurrencyConflict
		}
	}

	u.state.notifications[notification.ID] = notification
	u.mutations++

	return nil
}

func (u *unitOfWork) ListNotifications(_ context.Context, userID uuid.UUID) (circulation.Notifications, error) {
	if err := u.check("ListNotifications"); err != nil {
		return nil, err
	}

	notifications := make(circulation.Notifications, 0)
	for _, notification := range u.state.notifications {
		if notification.UserID == userID {
			notifications = append(notifications, notification)
		}
	}

	sort.Slice(notifications, func(i, j int) bool {
		if !notifications[i].Date.Equal(notifications[j].Date) {
			return notifications[i].Date.Before(notifications[j].Date)
		}

		return notifications[i].ID.String() < notifications[j].ID.String()
	})

	return notifications, nil
}

func (u *unitOfWork) MarkNotificationRead(_ context.Context, notificationID uuid.UUID) error {
	if err := u.check("MarkNotificationRead"); err != nil {
		return err
	}

	notification, found := u.state.notifications[notificationID]
	if !found {
		return circulation.ErrNotificationMissing
	}

	notification.Read = true
	u.state.notifications[notificationID] = notification
	u.mutations++

	return nil
}

var _ circulation.UnitOfWork = (*unitOfWork)(nil)
