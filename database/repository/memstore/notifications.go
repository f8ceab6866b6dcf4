package memstore

import (
	"context"
	"fmt"

	"cropconnect/database/repository"
	notificationRepo "cropconnect/database/repository/notification"
	"cropconnect/models"
)

type notifications struct{ s *Store }

func (s *Store) Notifications() notificationRepo.NotificationRepository { return notifications{s} }

func (r notifications) Create(_ context.Context, n *models.Notification) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	r.s.notifications = append(r.s.notifications, *n)
	return nil
}

func (r notifications) List(_ context.Context, recipientID string, unreadOnly bool, limit, offset int64) ([]models.Notification, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	var matched []models.Notification
	for i := len(r.s.notifications) - 1; i >= 0; i-- {
		n := r.s.notifications[i]
		if n.RecipientID != recipientID || (unreadOnly && n.Read) {
			continue
		}
		matched = append(matched, n)
	}
	if offset >= int64(len(matched)) {
		return nil, nil
	}
	matched = matched[offset:]
	if limit > 0 && limit < int64(len(matched)) {
		matched = matched[:limit]
	}
	return matched, nil
}

func (r notifications) CountUnread(_ context.Context, recipientID string) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	var n int64
	for _, x := range r.s.notifications {
		if x.RecipientID == recipientID && !x.Read {
			n++
		}
	}
	return n, nil
}

func (r notifications) MarkRead(_ context.Context, recipientID, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	for i := range r.s.notifications {
		x := &r.s.notifications[i]
		if x.ID == id && x.RecipientID == recipientID {
			x.Read = true
			return nil
		}
	}
	return fmt.Errorf("notification %s: %w", id, repository.ErrNotFound)
}

func (r notifications) MarkAllRead(_ context.Context, recipientID string) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	var n int64
	for i := range r.s.notifications {
		x := &r.s.notifications[i]
		if x.RecipientID == recipientID && !x.Read {
			x.Read = true
			n++
		}
	}
	return n, nil
}

func (r notifications) Delete(_ context.Context, recipientID, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	for i, x := range r.s.notifications {
		if x.ID == id && x.RecipientID == recipientID {
			r.s.notifications = append(r.s.notifications[:i:i], r.s.notifications[i+1:]...)
			return nil
		}
	}
	return fmt.Errorf("notification %s: %w", id, repository.ErrNotFound)
}
