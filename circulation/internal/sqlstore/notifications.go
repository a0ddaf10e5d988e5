package sqlstore

import (
	"context"

	"github.com/doug-martin/goqu/v9"
	"github.com/google/uuid"

	"github.com/AntonStoeckl/library-circulation/circulation"
	"github.com/AntonStoeckl/library-circulation/circulation/internal/adapters"
)

func scanNotification(rows adapters.DBRows) (circulation.Notification, error) {
	var notification circulation.Notification
	var notificationType string

	err := rows.Scan(
		&notification.ID, &notification.UserID, &notification.Title, &notification.Message,
		&notification.Date, &notification.Read, &notificationType,
	)
	if err != nil {
		return circulation.Notification{}, err
	}

	notification.Date = circulation.ToTimestamp(notification.Date)
	notification.Type = circulation.NotificationType(notificationType)

	return notification, nil
}

func (u *unitOfWork) HasUnreadNotification(
	ctx context.Context,
	userID uuid.UUID,
	notificationType circulation.NotificationType,
) (bool, error) {

	stmt := u.from(u.tables.Notifications).
		Select(colID).
		Where(
			goqu.C(colUserID).Eq(userID),
			goqu.C(colType).Eq(string(notificationType)),
			goqu.C(colRead).Eq(false),
		).
		Limit(1)

	rows, err := u.query(ctx, actionHasUnreadNotification, stmt)
	if err != nil {
		return false, err
	}

	found, err := collect(ctx, u, rows, func(r adapters.DBRows) (uuid.UUID, error) {
		var id uuid.UUID
		err := r.Scan(&id)
		return id, err
	})
	if err != nil {
		return false, err
	}

	return len(found) > 0, nil
}

// CreateNotification fails with ErrConcurrencyConflict when the patron already has an unread
// overdue notification, which a partial unique index enforces.
func (u *unitOfWork) CreateNotification(ctx context.Context, notification circulation.Notification) error {
	stmt := u.insert(u.tables.Notifications).Rows(goqu.Record{
		colID:      notification.ID,
		colUserID:  notification.UserID,
		colTitle:   notification.Title,
		colMessage: notification.Message,
		colDate:    circulation.ToTimestamp(notification.Date),
		colRead:    notification.Read,
		colType:    string(notification.Type),
	})

	_, err := u.exec(ctx, actionCreateNotification, stmt)

	return err
}

func (u *unitOfWork) ListNotifications(ctx context.Context, userID uuid.UUID) (circulation.Notifications, error) {
	stmt := u.from(u.tables.Notifications).
		Select(colID, colUserID, colTitle, colMessage, colDate, colRead, colType).
		Where(goqu.C(colUserID).Eq(userID)).
		Order(goqu.C(colDate).Asc(), goqu.C(colID).Asc())

	rows, err := u.query(ctx, actionListNotifications, stmt)
	if err != nil {
		return nil, err
	}

	return collect(ctx, u, rows, scanNotification)
}

func (u *unitOfWork) MarkNotificationRead(ctx context.Context, notificationID uuid.UUID) error {
	stmt := u.update(u.tables.Notifications).
		Set(goqu.Record{colRead: true}).
		Where(goqu.C(colID).Eq(notificationID))

	rowsAffected, err := u.exec(ctx, actionMarkNotificationRead, stmt)
	if err != nil {
		return err
	}

	if rowsAffected == 0 {
		return circulation.ErrNotificationMissing
	}

	return nil
}
