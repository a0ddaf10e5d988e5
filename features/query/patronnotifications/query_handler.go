package patronnotifications

import (
	"context"

	"github.com/AntonStoeckl/library-circulation/circulation"
)

// Store defines the interface needed by the QueryHandler.
type Store interface {
	WithinTx(ctx context.Context, fn circulation.UnitOfWorkFunc) error
}

// QueryHandler lists notifications.
type QueryHandler struct {
	store Store
}

// NewQueryHandler creates a new QueryHandler.
func NewQueryHandler(store Store) QueryHandler {
	return QueryHandler{store: store}
}

// Handle fails with circulation.ErrAccountNotFound for an unknown patron.
func (h QueryHandler) Handle(ctx context.Context, query Query) (PatronNotifications, error) {
	var notifications circulation.Notifications

	err := h.store.WithinTx(ctx, func(ctx context.Context, uow circulation.UnitOfWork) error {
		if _, err := uow.GetAccount(ctx, query.UserID); err != nil {
			return err
		}

		var err error
		notifications, err = uow.ListNotifications(ctx, query.UserID)

		return err
	})
	if err != nil {
		return PatronNotifications{}, err
	}

	return project(query, notifications), nil
}

func project(query Query, notifications circulation.Notifications) PatronNotifications {
	result := PatronNotifications{
		UserID: query.UserID,
		Items:  make([]Item, 0, len(notifications)),
	}

	for _, notification := range notifications {
		if !notification.Read {
			result.Unread++
		}

		if query.UnreadOnly && notification.Read {
			continue
		}

		result.Items = append(result.Items, Item{
			ID:      notification.ID,
			Type:    notification.Type,
			Title:   notification.Title,
			Message: notification.Message,
			Date:    notification.Date,
			Read:    notification.Read,
		})
	}

	result.Count = len(result.Items)

	return result
}
