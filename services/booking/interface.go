package booking

import (
	"context"

	"cropconnect/models"
)

// BookingService manages the lifecycle of agreed work:
// pending -> confirmed -> completed, with cancelled reachable before completion.
type BookingService interface {
	CreateDirect(ctx context.Context, farmer models.Actor, in models.DirectBookingInput) (*models.Booking, error)
	MarkComplete(ctx context.Context, id string, actor models.Actor) (*models.Booking, error)
	Cancel(ctx context.Context, id string, actor models.Actor) (*models.Booking, error)
	Get(ctx context.Context, id string, actor models.Actor) (*models.Booking, error)
	ListForUser(ctx context.Context, actor models.Actor) ([]models.Booking, error)
}

// ReminderScheduler queues the pre-booking reminder.
type ReminderScheduler interface {
	ScheduleBookingReminder(ctx context.Context, booking *models.Booking) error
}
