package notification

import (
	"context"
	"errors"

	"cropconnect/database/repository"
	"cropconnect/utils"
)

const (
	defaultPageSize = 20
	maxPageSize     = 100
)

func (d *Dispatcher) List(ctx context.Context, userID string, unreadOnly bool, limit, offset int64) (*Inbox, error) {
	if limit <= 0 {
		limit = defaultPageSize
	}
	if limit > maxPageSize {
		limit = maxPageSize
	}
	if offset < 0 {
		offset = 0
	}

	list, err := d.repo.List(ctx, userID, unreadOnly, limit, offset)
	if err != nil {
		return nil, utils.Internal("failed to list notifications", err)
	}
	unread, err := d.repo.CountUnread(ctx, userID)
	if err != nil {
		return nil, utils.Internal("failed to count notifications", err)
	}
	return &Inbox{Notifications: list, UnreadCount: unread}, nil
}

func (d *Dispatcher) MarkRead(ctx context.Context, userID, id string) error {
	return inboxError(d.repo.MarkRead(ctx, userID, id))
}

func (d *Dispatcher) MarkAllRead(ctx context.Context, userID string) (int64, error) {
	n, err := d.repo.MarkAllRead(ctx, userID)
	if err != nil {
		return 0, utils.Internal("failed to mark notifications read", err)
	}
	return n, nil
}

func (d *Dispatcher) Delete(ctx context.Context, userID, id string) error {
	return inboxError(d.repo.Delete(ctx, userID, id))
}

func inboxError(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, repository.ErrNotFound):
		return utils.NotFound("notification not found")
	default:
		return utils.Internal("notification update failed", err)
	}
}
