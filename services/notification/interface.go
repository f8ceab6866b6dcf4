package notification

import (
	"context"

	"cropconnect/models"
)

// Emitter hands a notification to the dispatcher. Emit never blocks on delivery and never fails
// the caller: a state change that already committed stays committed.
type Emitter interface {
	Emit(ctx context.Context, in models.NotificationInput)
}

// NotificationService is the emitter plus the recipient's inbox.
type NotificationService interface {
	Emitter
	List(ctx context.Context, userID string, unreadOnly bool, limit, offset int64) (*Inbox, error)
	MarkRead(ctx context.Context, userID, id string) error
	MarkAllRead(ctx context.Context, userID string) (int64, error)
	Delete(ctx context.Context, userID, id string) error
}

// Inbox is one page of a user's notifications.
type Inbox struct {
	Notifications []models.Notification `json:"notifications"`
	UnreadCount   int64                 `json:"unreadCount"`
}

// RealtimeSink pushes an event to the sockets a user has open.
type RealtimeSink interface {
	SendToUser(userID string, event any) bool
}

// PushSender delivers a mobile push notification to a device token.
type PushSender interface {
	SendPush(ctx context.Context, token, title, body string, data map[string]string) error
}

// EmailQueue schedules an outgoing email for asynchronous delivery.
type EmailQueue interface {
	EnqueueEmail(ctx context.Context, payload models.EmailPayload) error
}

// RecipientLookup resolves the contact details of a recipient.
type RecipientLookup interface {
	GetByID(ctx context.Context, id string) (*models.User, error)
}
