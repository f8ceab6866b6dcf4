package tasks

import (
	"encoding/json"
	"fmt"
	"time"

	"cropconnect/models"

	"github.com/hibiken/asynq"
)

// Task type names routed by the cron worker.
const (
	TypeSendEmail    = "email:send"
	TypeSendReminder = "reminder:send"
)

// ReminderLead is how long before the booking date the reminder fires.
const ReminderLead = 24 * time.Hour

func newTask(typeName string, payload any, opts ...asynq.Option) (*asynq.Task, []asynq.Option, error) {
	b, err := json.Marshal(payload)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to encode %s payload: %w", typeName, err)
	}
	return asynq.NewTask(typeName, b), opts, nil
}

// NewEmailTask builds a delivery task retried up to five times.
func NewEmailTask(payload models.EmailPayload) (*asynq.Task, []asynq.Option, error) {
	return newTask(TypeSendEmail, payload, asynq.MaxRetry(5), asynq.Timeout(time.Minute))
}

// NewReminderTask builds a reminder processed at fireAt. The task id is derived from the booking,
// so scheduling the same booking twice is rejected by the queue.
func NewReminderTask(payload models.ReminderPayload, fireAt time.Time) (*asynq.Task, []asynq.Option, error) {
	return newTask(TypeSendReminder, payload,
		asynq.ProcessAt(fireAt),
		asynq.TaskID("reminder:"+payload.BookingID),
		asynq.MaxRetry(3),
	)
}
