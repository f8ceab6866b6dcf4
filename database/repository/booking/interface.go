package bookingRepo

import (
	"context"
	"time"

	"cropconnect/models"
)

// BookingRepository defines persistence for bookings. Bookings are never deleted; they only move
// through status and payment-status transitions.
type BookingRepository interface {
	Create(ctx context.Context, booking *models.Booking) error
	GetByID(ctx context.Context, id string) (*models.Booking, error)
	ListByFarmer(ctx context.Context, farmerID string) ([]models.Booking, error)
	ListByProvider(ctx context.Context, providerID string) ([]models.Booking, error)
	ListByRequirement(ctx context.Context, requirementID string) ([]models.Booking, error)

	// TransitionStatus moves the booking to status to when it is currently in one of from.
	// Completing stamps completedAt; cancelling stamps cancelledAt and cancelledBy with actorID.
	// It returns the updated booking, or repository.ErrStateChanged.
	TransitionStatus(ctx context.Context, id string, from []models.BookingStatus, to models.BookingStatus, actorID string, at time.Time) (*models.Booking, error)
	// MarkPaid flips paymentStatus pending -> paid on a completed booking.
	MarkPaid(ctx context.Context, id string) (*models.Booking, error)
}
