package memstore

import (
	"context"
	"fmt"
	"time"

	"cropconnect/database/repository"
	bookingRepo "cropconnect/database/repository/booking"
	"cropconnect/models"
)

type bookings struct{ s *Store }

func (s *Store) Bookings() bookingRepo.BookingRepository { return bookings{s} }

func (r bookings) Create(_ context.Context, booking *models.Booking) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	for _, b := range r.s.bookings {
		if b.ID == booking.ID || (booking.BidID != "" && b.BidID == booking.BidID) {
			return fmt.Errorf("booking %s: %w", booking.ID, repository.ErrDuplicate)
		}
	}
	now := time.Now()
	booking.CreatedAt, booking.UpdatedAt = now, now
	r.s.bookings = append(r.s.bookings, *booking)
	return nil
}

func (r bookings) GetByID(_ context.Context, id string) (*models.Booking, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	for _, b := range r.s.bookings {
		if b.ID == id {
			out := b
			return &out, nil
		}
	}
	return nil, fmt.Errorf("booking %s: %w", id, repository.ErrNotFound)
}

func (r bookings) list(match func(models.Booking) bool) []models.Booking {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	var out []models.Booking
	for i := len(r.s.bookings) - 1; i >= 0; i-- {
		if match(r.s.bookings[i]) {
			out = append(out, r.s.bookings[i])
		}
	}
	return out
}

func (r bookings) ListByFarmer(_ context.Context, farmerID string) ([]models.Booking, error) {
	return r.list(func(b models.Booking) bool { return b.FarmerID == farmerID }), nil
}

func (r bookings) ListByProvider(_ context.Context, providerID string) ([]models.Booking, error) {
	return r.list(func(b models.Booking) bool { return b.ProviderID == providerID }), nil
}

func (r bookings) ListByRequirement(_ context.Context, requirementID string) ([]models.Booking, error) {
	return r.list(func(b models.Booking) bool { return b.RequirementID == requirementID }), nil
}

func (r bookings) update(id string, cond func(*models.Booking) bool, fn func(*models.Booking)) (*models.Booking, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	for i := range r.s.bookings {
		b := &r.s.bookings[i]
		if b.ID != id {
			continue
		}
		if !cond(b) {
			break
		}
		fn(b)
		out := *b
		return &out, nil
	}
	return nil, fmt.Errorf("booking %s: %w", id, repository.ErrStateChanged)
}

func (r bookings) TransitionStatus(_ context.Context, id string, from []models.BookingStatus, to models.BookingStatus, actorID string, at time.Time) (*models.Booking, error) {
	return r.update(id,
		func(b *models.Booking) bool {
			for _, st := range from {
				if b.Status == st {
					return true
				}
			}
			return false
		},
		func(b *models.Booking) {
			b.Status = to
			b.UpdatedAt = at
			stamp := at
			switch to {
			case models.BookingCompleted:
				b.CompletedAt = &stamp
			case models.BookingCancelled:
				b.CancelledAt = &stamp
				b.CancelledBy = actorID
			}
		})
}

func (r bookings) MarkPaid(_ context.Context, id string) (*models.Booking, error) {
	return r.update(id,
		func(b *models.Booking) bool {
			return b.Status == models.BookingCompleted && b.PaymentStatus == models.PaymentPending
		},
		func(b *models.Booking) {
			b.PaymentStatus = models.PaymentPaid
			b.UpdatedAt = time.Now()
		})
}
