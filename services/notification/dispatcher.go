package notification

import (
	"context"
	"sync"
	"time"

	notificationRepo "cropconnect/database/repository/notification"
	"cropconnect/models"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

const deliveryTimeout = 10 * time.Second

// emailTypes are the notifications worth an email on top of the in-app record.
var emailTypes = map[models.NotificationType]bool{
	models.NotifyBidAccepted:      true,
	models.NotifyBookingCreated:   true,
	models.NotifyBookingCompleted: true,
	models.NotifyBookingCancelled: true,
	models.NotifyPaymentCompleted: true,
}

// Channels are the optional delivery paths next to the persisted record. Nil channels are skipped.
type Channels struct {
	Realtime RealtimeSink
	Push     PushSender
	Email    EmailQueue
}

type DispatcherConfig struct {
	QueueSize int
	Workers   int
}

// Dispatcher persists and fans out notifications on a pool of background workers.
type Dispatcher struct {
	repo     notificationRepo.NotificationRepository
	users    RecipientLookup
	channels Channels
	logger   *zap.Logger

	queue  chan models.Notification
	wg     sync.WaitGroup
	mu     sync.RWMutex
	closed bool
}

func NewDispatcher(
	repo notificationRepo.NotificationRepository,
	users RecipientLookup,
	channels Channels,
	cfg DispatcherConfig,
	logger *zap.Logger,
) *Dispatcher {
	if cfg.QueueSize <= 0 {
		cfg.QueueSize = 256
	}
	if cfg.Workers <= 0 {
		cfg.Workers = 4
	}
	d := &Dispatcher{
		repo:     repo,
		users:    users,
		channels: channels,
		logger:   logger,
		queue:    make(chan models.Notification, cfg.QueueSize),
	}
	for i := 0; i < cfg.Workers; i++ {
		d.wg.Add(1)
		go d.work()
	}
	return d
}

// Emit queues the notification. A full or closed queue drops it with a log line.
func (d *Dispatcher) Emit(_ context.Context, in models.NotificationInput) {
	if in.RecipientID == "" {
		return
	}
	n := models.Notification{
		ID:          uuid.New().String(),
		RecipientID: in.RecipientID,
		Type:        in.Type,
		Title:       in.Title,
		Message:     in.Message,
		Refs:        in.Refs,
		Data:        in.Data,
		CreatedAt:   time.Now(),
	}

	d.mu.RLock()
	defer d.mu.RUnlock()
	if d.closed {
		d.logger.Warn("notification dropped after shutdown",
			zap.String("recipientId", n.RecipientID), zap.String("type", string(n.Type)))
		return
	}
	select {
	case d.queue <- n:
	default:
		d.logger.Warn("notification queue full, dropping",
			zap.String("recipientId", n.RecipientID), zap.String("type", string(n.Type)))
	}
}

// Close stops accepting notifications and waits for the queue to drain.
func (d *Dispatcher) Close() {
	d.mu.Lock()
	if d.closed {
		d.mu.Unlock()
		return
	}
	d.closed = true
	close(d.queue)
	d.mu.Unlock()
	d.wg.Wait()
}

func (d *Dispatcher) work() {
	defer d.wg.Done()
	for n := range d.queue {
		d.deliver(n)
	}
}

func (d *Dispatcher) deliver(n models.Notification) {
	ctx, cancel := context.WithTimeout(context.Background(), deliveryTimeout)
	defer cancel()

	log := d.logger.With(
		zap.String("notificationId", n.ID),
		zap.String("recipientId", n.RecipientID),
		zap.String("type", string(n.Type)))

	if err := d.repo.Create(ctx, &n); err != nil {
		log.Error("failed to persist notification", zap.Error(err))
	}

	if d.channels.Realtime != nil {
		d.channels.Realtime.SendToUser(n.RecipientID, RealtimeEvent{Event: "notification", Data: n})
	}

	wantsEmail := emailTypes[n.Type] && d.channels.Email != nil
	if d.channels.Push == nil && !wantsEmail {
		return
	}
	recipient, err := d.users.GetByID(ctx, n.RecipientID)
	if err != nil {
		log.Warn("recipient lookup failed, skipping push and email", zap.Error(err))
		return
	}

	if d.channels.Push != nil && recipient.FCMToken != "" {
		data := map[string]string{
			"notificationId": n.ID,
			"type":           string(n.Type),
			"role":           string(recipient.Role),
		}
		if err := d.channels.Push.SendPush(ctx, recipient.FCMToken, n.Title, n.Message, data); err != nil {
			log.Warn("push delivery failed", zap.Error(err))
		}
	}

	if wantsEmail && recipient.Email != "" {
		payload := models.EmailPayload{
			To:      recipient.Email,
			Subject: n.Title,
			Body:    emailBody(recipient.Name, n),
		}
		if err := d.channels.Email.EnqueueEmail(ctx, payload); err != nil {
			log.Warn("failed to enqueue email", zap.Error(err))
		}
	}
}

// RealtimeEvent is the frame written to a user's sockets.
type RealtimeEvent struct {
	Event string `json:"event"`
	Data  any    `json:"data"`
}
