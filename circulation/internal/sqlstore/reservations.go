package sqlstore

import (
	"context"
	"time"

	"github.com/doug-martin/goqu/v9"
	"github.com/google/uuid"

	"github.com/AntonStoeckl/library-circulation/circulation"
	"github.com/AntonStoeckl/library-circulation/circulation/internal/adapters"
)

func scanReservation(rows adapters.DBRows) (circulation.Reservation, error) {
	var reservation circulation.Reservation
	var status string

	err := rows.Scan(
		&reservation.ID, &reservation.BookID, &reservation.UserID, &reservation.ReservationDate,
		&reservation.DueDate, &reservation.Priority, &status, &reservation.NotificationSent,
	)
	if err != nil {
		return circulation.Reservation{}, err
	}

	reservation.ReservationDate = circulation.ToTimestamp(reservation.ReservationDate)
	reservation.DueDate = circulation.ToTimestamp(reservation.DueDate)
	reservation.Status = circulation.ReservationStatus(status)

	return reservation, nil
}

func (u *unitOfWork) reservationSelect() *goqu.SelectDataset {
	return u.from(u.tables.Reservations).
		Select(colID, colBookID, colUserID, colReservationDate, colDueDate, colPriority, colStatus, colNotificationSent)
}

func (u *unitOfWork) selectReservations(
	ctx context.Context,
	action string,
	stmt *goqu.SelectDataset,
) (circulation.Reservations, error) {

	rows, err := u.query(ctx, action, stmt)
	if err != nil {
		return nil, err
	}

	return collect(ctx, u, rows, scanReservation)
}

func queueOrder(stmt *goqu.SelectDataset) *goqu.SelectDataset {
	return stmt.Order(goqu.C(colPriority).Asc(), goqu.C(colReservationDate).Asc(), goqu.C(colID).Asc())
}

func (u *unitOfWork) ListPendingReservations(ctx context.Context, bookID uuid.UUID) (circulation.Reservations, error) {
	stmt := u.reservationSelect().Where(
		goqu.C(colBookID).Eq(bookID),
		goqu.C(colStatus).Eq(string(circulation.ReservationPending)),
	)

	return u.selectReservations(ctx, actionListPendingReservations, u.forUpdate(queueOrder(stmt)))
}

func (u *unitOfWork) GetReservation(ctx context.Context, reservationID uuid.UUID) (circulation.Reservation, error) {
	stmt := u.reservationSelect().Where(goqu.C(colID).Eq(reservationID))

	reservations, err := u.selectReservations(ctx, actionGetReservation, u.forUpdate(stmt))
	if err != nil {
		return circulation.Reservation{}, err
	}

	if len(reservations) == 0 {
		return circulation.Reservation{}, circulation.ErrReservationNotFound
	}

	return reservations[0], nil
}

func (u *unitOfWork) CreateReservation(ctx context.Context, reservation circulation.Reservation) error {
	stmt := u.insert(u.tables.Reservations).Rows(goqu.Record{
		colID:               reservation.ID,
		colBookID:           reservation.BookID,
		colUserID:           reservation.UserID,
		colReservationDate:  circulation.ToTimestamp(reservation.ReservationDate),
		colDueDate:          circulation.ToTimestamp(reservation.DueDate),
		colPriority:         reservation.Priority,
		colStatus:           string(reservation.Status),
		colNotificationSent: reservation.NotificationSent,
	})

	_, err := u.exec(ctx, actionCreateReservation, stmt)

	return err
}

func (u *unitOfWork) updateReservation(ctx context.Context, action string, reservationID uuid.UUID, record goqu.Record) error {
	stmt := u.update(u.tables.Reservations).Set(record).Where(goqu.C(colID).Eq(reservationID))

	rowsAffected, err := u.exec(ctx, action, stmt)
	if err != nil {
		return err
	}

	if rowsAffected == 0 {
		return circulation.ErrReservationNotFound
	}

	return nil
}

func (u *unitOfWork) MarkReservationNotified(ctx context.Context, reservationID uuid.UUID, holdUntil time.Time) error {
	return u.updateReservation(ctx, actionMarkReservationNotified, reservationID, goqu.Record{
		colNotificationSent: true,
		colDueDate:          circulation.ToTimestamp(holdUntil),
	})
}

func (u *unitOfWork) SetReservationStatus(
	ctx context.Context,
	reservationID uuid.UUID,
	status circulation.ReservationStatus,
) error {

	return u.updateReservation(ctx, actionSetReservationStatus, reservationID, goqu.Record{colStatus: string(status)})
}

// ExpireReservations selects the lapsed holds of notified patrons first, so it can return them unchanged, and then
// expires exactly those ids.
func (u *unitOfWork) ExpireReservations(ctx context.Context, asOf time.Time) (circulation.Reservations, error) {
	selectStmt := u.reservationSelect().Where(
		goqu.C(colStatus).Eq(string(circulation.ReservationPending)),
		goqu.C(colNotificationSent).Eq(true),
		goqu.C(colDueDate).Lt(circulation.ToTimestamp(asOf)),
	)

	expired, err := u.selectReservations(ctx, actionExpireReservations, u.forUpdate(queueOrder(selectStmt)))
	if err != nil {
		return nil, err
	}

	if len(expired) == 0 {
		return expired, nil
	}

	ids := make([]any, 0, len(expired))
	for _, reservation := range expired {
		ids = append(ids, reservation.ID)
	}

	updateStmt := u.update(u.tables.Reservations).
		Set(goqu.Record{colStatus: string(circulation.ReservationExpired)}).
		Where(goqu.C(colID).In(ids...))

	if _, err = u.exec(ctx, actionExpireReservations, updateStmt); err != nil {
		return nil, err
	}

	circulation.SortQueue(expired)

	return expired, nil
}
