package tasks

import (
	"context"
	"errors"
	"fmt"
	"time"

	"cropconnect/models"

	"github.com/hibiken/asynq"
)

// Enqueuer is the part of *asynq.Client the queue uses.
type Enqueuer interface {
	EnqueueContext(ctx context.Context, task *asynq.Task, opts ...asynq.Option) (*asynq.TaskInfo, error)
}

// Queue schedules emails and booking reminders on the asynq queue.
type Queue struct {
	client Enqueuer
	now    func() time.Time
}

func NewQueue(client Enqueuer) *Queue {
	return &Queue{client: client, now: time.Now}
}

func (q *Queue) EnqueueEmail(ctx context.Context, payload models.EmailPayload) error {
	task, opts, err := NewEmailTask(payload)
	if err != nil {
		return fmt.Errorf("failed to build email task: %w", err)
	}
	if _, err := q.client.EnqueueContext(ctx, task, opts...); err != nil {
		return fmt.Errorf("failed to enqueue email: %w", err)
	}
	return nil
}

// ScheduleBookingReminder queues a reminder ReminderLead before the booking date.
// Bookings too close to start get none.
func (q *Queue) ScheduleBookingReminder(ctx context.Context, booking *models.Booking) error {
	fireAt := booking.Date.Add(-ReminderLead)
	if !fireAt.After(q.now()) {
		return nil
	}
	payload := models.ReminderPayload{
		BookingID: booking.ID,
		FireDate:  fireAt.Format(time.RFC3339),
	}
	task, opts, err := NewReminderTask(payload, fireAt)
	if err != nil {
		return fmt.Errorf("failed to build reminder task: %w", err)
	}
	_, err = q.client.EnqueueContext(ctx, task, opts...)
	if errors.Is(err, asynq.ErrTaskIDConflict) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to schedule reminder: %w", err)
	}
	return nil
}
