package cron

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"cropconnect/config"
	"cropconnect/models"
	"cropconnect/services/mailer"
	"cropconnect/services/notification"
	"cropconnect/services/tasks"

	"github.com/hibiken/asynq"
	"go.uber.org/zap"
)

// BookingLookup loads the booking a reminder refers to.
type BookingLookup interface {
	GetByID(ctx context.Context, id string) (*models.Booking, error)
}

// Handlers process the queued background tasks.
type Handlers struct {
	Mailer   mailer.Mailer
	Bookings BookingLookup
	Notifier notification.Emitter
	Logger   *zap.Logger
}

// HandleEmail delivers one queued email. Failures are retried by asynq.
func (h *Handlers) HandleEmail(ctx context.Context, task *asynq.Task) error {
	var p models.EmailPayload
	if err := json.Unmarshal(task.Payload(), &p); err != nil {
		h.Logger.Error("invalid email payload", zap.Error(err))
		return fmt.Errorf("invalid email payload: %v: %w", err, asynq.SkipRetry)
	}
	if err := h.Mailer.Send(ctx, p.To, p.Subject, p.Body); err != nil {
		h.Logger.Warn("email delivery failed", zap.String("to", p.To), zap.Error(err))
		return err
	}
	return nil
}

// HandleReminder reminds both parties of a booking that is still confirmed.
func (h *Handlers) HandleReminder(ctx context.Context, task *asynq.Task) error {
	var p models.ReminderPayload
	if err := json.Unmarshal(task.Payload(), &p); err != nil {
		h.Logger.Error("invalid reminder payload", zap.Error(err))
		return fmt.Errorf("invalid reminder payload: %v: %w", err, asynq.SkipRetry)
	}

	booking, err := h.Bookings.GetByID(ctx, p.BookingID)
	if err != nil {
		return fmt.Errorf("failed to load booking %s: %w", p.BookingID, err)
	}
	if booking.Status != models.BookingConfirmed {
		h.Logger.Info("skipping reminder", zap.String("bookingId", booking.ID), zap.String("status", string(booking.Status)))
		return nil
	}

	when := booking.Date.Format("Mon, 02 Jan 2006")
	for _, recipient := range []string{booking.FarmerID, booking.ProviderID} {
		h.Notifier.Emit(ctx, models.NotificationInput{
			RecipientID: recipient,
			Type:        models.NotifyBookingReminder,
			Title:       "Upcoming booking",
			Message:     fmt.Sprintf("Your %s booking is scheduled for %s.", booking.ServiceType, when),
			Refs:        models.NotificationRefs{BookingID: booking.ID},
		})
	}
	return nil
}

// Worker runs the asynq server that drains the email and reminder queues.
type Worker struct {
	srv    *asynq.Server
	mux    *asynq.ServeMux
	logger *zap.Logger
}

func RedisOpt(cfg *config.Config) asynq.RedisClientOpt {
	return asynq.RedisClientOpt{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisQueueDB,
	}
}

func NewWorker(cfg *config.Config, h *Handlers) *Worker {
	srv := asynq.NewServer(
		RedisOpt(cfg),
		asynq.Config{
			Concurrency: 10,
			Queues: map[string]int{
				"default": 1,
			},
			ShutdownTimeout: 10 * time.Second,
		},
	)

	mux := asynq.NewServeMux()
	mux.HandleFunc(tasks.TypeSendEmail, h.HandleEmail)
	mux.HandleFunc(tasks.TypeSendReminder, h.HandleReminder)

	return &Worker{srv: srv, mux: mux, logger: h.Logger}
}

// Start runs the worker in the background.
func (w *Worker) Start() error {
	if err := w.srv.Start(w.mux); err != nil {
		return fmt.Errorf("failed to start task worker: %w", err)
	}
	w.logger.Info("task worker started")
	return nil
}

func (w *Worker) Shutdown() {
	w.srv.Shutdown()
}
