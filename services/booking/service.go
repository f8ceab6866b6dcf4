package booking

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"cropconnect/database/repository"
	bookingRepo "cropconnect/database/repository/booking"
	requirementRepo "cropconnect/database/repository/requirement"
	"cropconnect/models"
	"cropconnect/services/notification"
	"cropconnect/utils"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// DefaultBookingService implements BookingService.
type DefaultBookingService struct {
	Bookings     bookingRepo.BookingRepository
	Requirements requirementRepo.RequirementRepository
	Catalogs     Catalogs
	Tx           repository.TxRunner
	Notifier     notification.Emitter
	Reminders    ReminderScheduler // optional
	Logger       *zap.Logger
	Now          func() time.Time
}

func (s *DefaultBookingService) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

// Cost prices a booking: rate x land size for tractors, rate x days for workers, rounded.
func Cost(kind models.ServiceType, rate, landSize, duration float64) float64 {
	if kind == models.ServiceTractor {
		return math.Round(rate * landSize)
	}
	return math.Round(rate * duration)
}

func (s *DefaultBookingService) CreateDirect(ctx context.Context, farmer models.Actor, in models.DirectBookingInput) (*models.Booking, error) {
	if farmer.Role != models.RoleFarmer {
		return nil, utils.Forbidden("only farmers can book services")
	}
	catalog, ok := s.Catalogs[in.ServiceType]
	if !ok {
		return nil, utils.Validation("serviceType must be tractor or worker")
	}
	if in.Date.IsZero() {
		return nil, utils.Validation("date is required")
	}

	svc, err := catalog.Resolve(ctx, in.ServiceID)
	if err != nil {
		return nil, mapError(err, "service")
	}
	if svc.ProviderID == farmer.ID {
		return nil, utils.Validation("you cannot book your own service")
	}
	if !svc.Available {
		return nil, utils.InvalidState("service is not available")
	}

	switch in.ServiceType {
	case models.ServiceTractor:
		if in.LandSize <= 0 {
			return nil, utils.Validation("landSize must be greater than zero")
		}
	case models.ServiceWorker:
		if in.Duration <= 0 {
			in.Duration = 1
		}
	}
	location := in.Location
	if location.District == "" {
		location = svc.Location
	}

	ref := svc.Ref
	bk := &models.Booking{
		ID:            uuid.New().String(),
		FarmerID:      farmer.ID,
		ProviderID:    svc.ProviderID,
		ServiceType:   in.ServiceType,
		Service:       &ref,
		WorkType:      in.WorkType,
		Date:          in.Date,
		Duration:      in.Duration,
		LandSize:      in.LandSize,
		TotalCost:     Cost(in.ServiceType, svc.Rate, in.LandSize, in.Duration),
		Location:      location,
		Notes:         in.Notes,
		Status:        models.BookingConfirmed,
		PaymentStatus: models.PaymentPending,
	}

	err = s.Tx.WithTransaction(ctx, func(ctx context.Context) error {
		if err := catalog.SetAvailability(ctx, svc.Ref.ID, true, false); err != nil {
			return err
		}
		return s.Bookings.Create(ctx, bk)
	})
	if errors.Is(err, repository.ErrStateChanged) {
		return nil, utils.InvalidState("service is not available")
	}
	if err != nil {
		return nil, mapError(err, "booking")
	}

	s.Logger.Info("direct booking created",
		zap.String("bookingId", bk.ID),
		zap.String("serviceId", svc.Ref.ID),
		zap.Float64("totalCost", bk.TotalCost))

	s.Notifier.Emit(ctx, models.NotificationInput{
		RecipientID: bk.ProviderID,
		Type:        models.NotifyBookingCreated,
		Title:       "New booking",
		Message:     fmt.Sprintf("Your %s service was booked for %s (₹%.0f).", bk.ServiceType, bk.Date.Format("02 Jan 2006"), bk.TotalCost),
		Refs:        models.NotificationRefs{BookingID: bk.ID, ServiceID: svc.Ref.ID, UserID: farmer.ID},
	})
	s.scheduleReminder(ctx, bk)
	return bk, nil
}

func (s *DefaultBookingService) scheduleReminder(ctx context.Context, bk *models.Booking) {
	if s.Reminders == nil {
		return
	}
	if err := s.Reminders.ScheduleBookingReminder(ctx, bk); err != nil {
		s.Logger.Warn("failed to schedule reminder", zap.String("bookingId", bk.ID), zap.Error(err))
	}
}

// loadForParty fetches a booking that actor is party to.
func (s *DefaultBookingService) loadForParty(ctx context.Context, id string, actor models.Actor) (*models.Booking, error) {
	bk, err := s.Bookings.GetByID(ctx, id)
	if err != nil {
		return nil, mapError(err, "booking")
	}
	if !bk.IsParty(actor.ID) {
		return nil, utils.Forbidden("you are not a party to this booking")
	}
	return bk, nil
}

func (s *DefaultBookingService) MarkComplete(ctx context.Context, id string, actor models.Actor) (*models.Booking, error) {
	bk, err := s.loadForParty(ctx, id, actor)
	if err != nil {
		return nil, err
	}
	switch bk.Status {
	case models.BookingCompleted:
		return nil, utils.InvalidState("booking is already completed")
	case models.BookingCancelled:
		return nil, utils.InvalidState("booking was cancelled")
	}

	var updated *models.Booking
	err = s.Tx.WithTransaction(ctx, func(ctx context.Context) error {
		var err error
		updated, err = s.Bookings.TransitionStatus(ctx, bk.ID,
			[]models.BookingStatus{models.BookingPending, models.BookingConfirmed},
			models.BookingCompleted, actor.ID, s.now())
		if err != nil {
			return err
		}
		if err := s.releaseService(ctx, bk); err != nil {
			return err
		}
		return s.settleRequirement(ctx, bk)
	})
	if err != nil {
		return nil, mapError(err, "booking")
	}

	s.Notifier.Emit(ctx, models.NotificationInput{
		RecipientID: bk.FarmerID,
		Type:        models.NotifyBookingCompleted,
		Title:       "Work completed",
		Message:     fmt.Sprintf("The %s booking on %s is complete. Amount due: ₹%.0f.", bk.ServiceType, bk.Date.Format("02 Jan 2006"), bk.TotalCost),
		Refs:        models.NotificationRefs{BookingID: bk.ID, UserID: actor.ID},
	})
	if actor.ID == bk.FarmerID {
		s.Notifier.Emit(ctx, models.NotificationInput{
			RecipientID: bk.ProviderID,
			Type:        models.NotifyBookingCompleted,
			Title:       "Work marked complete",
			Message:     "The farmer marked your booking as complete.",
			Refs:        models.NotificationRefs{BookingID: bk.ID, UserID: actor.ID},
		})
	}
	return updated, nil
}

// Cancel cancels a booking that has not been completed or paid.
func (s *DefaultBookingService) Cancel(ctx context.Context, id string, actor models.Actor) (*models.Booking, error) {
	bk, err := s.loadForParty(ctx, id, actor)
	if err != nil {
		return nil, err
	}
	switch {
	case bk.PaymentStatus == models.PaymentPaid:
		return nil, utils.InvalidState("paid bookings cannot be cancelled")
	case bk.Status == models.BookingCompleted:
		return nil, utils.InvalidState("completed bookings cannot be cancelled")
	case bk.Status == models.BookingCancelled:
		return nil, utils.InvalidState("booking is already cancelled")
	}

	var updated *models.Booking
	err = s.Tx.WithTransaction(ctx, func(ctx context.Context) error {
		var err error
		updated, err = s.Bookings.TransitionStatus(ctx, bk.ID,
			[]models.BookingStatus{models.BookingPending, models.BookingConfirmed},
			models.BookingCancelled, actor.ID, s.now())
		if err != nil {
			return err
		}
		if err := s.releaseService(ctx, bk); err != nil {
			return err
		}
		return s.settleRequirement(ctx, bk)
	})
	if err != nil {
		return nil, mapError(err, "booking")
	}

	s.Notifier.Emit(ctx, models.NotificationInput{
		RecipientID: bk.Counterparty(actor.ID),
		Type:        models.NotifyBookingCancelled,
		Title:       "Booking cancelled",
		Message:     fmt.Sprintf("The %s booking on %s was cancelled.", bk.ServiceType, bk.Date.Format("02 Jan 2006")),
		Refs:        models.NotificationRefs{BookingID: bk.ID, UserID: actor.ID},
	})
	return updated, nil
}

// releaseService makes the backing listing bookable again. It runs only on the transition that
// ended the booking, so the flag flips once.
func (s *DefaultBookingService) releaseService(ctx context.Context, bk *models.Booking) error {
	if bk.Service == nil {
		return nil
	}
	catalog, ok := s.Catalogs[bk.Service.Kind]
	if !ok {
		return nil
	}
	err := catalog.SetAvailability(ctx, bk.Service.ID, false, true)
	if errors.Is(err, repository.ErrStateChanged) {
		// listing already available or removed
		s.Logger.Debug("service availability unchanged", zap.String("serviceId", bk.Service.ID))
		return nil
	}
	return err
}

// settleRequirement closes the requirement behind bk once none of its bookings is still live.
// It completes when any of them completed and is cancelled otherwise.
func (s *DefaultBookingService) settleRequirement(ctx context.Context, bk *models.Booking) error {
	if bk.RequirementID == "" || s.Requirements == nil {
		return nil
	}
	siblings, err := s.Bookings.ListByRequirement(ctx, bk.RequirementID)
	if err != nil {
		return err
	}
	to := models.RequirementCancelled
	for _, other := range siblings {
		switch other.Status {
		case models.BookingPending, models.BookingConfirmed:
			return nil
		case models.BookingCompleted:
			to = models.RequirementCompleted
		}
	}
	err = s.Requirements.SetStatus(ctx, bk.RequirementID,
		[]models.RequirementStatus{models.RequirementAccepted, models.RequirementInProgress}, to)
	if errors.Is(err, repository.ErrStateChanged) {
		return nil
	}
	return err
}

func (s *DefaultBookingService) Get(ctx context.Context, id string, actor models.Actor) (*models.Booking, error) {
	return s.loadForParty(ctx, id, actor)
}

func (s *DefaultBookingService) ListForUser(ctx context.Context, actor models.Actor) ([]models.Booking, error) {
	var (
		list []models.Booking
		err  error
	)
	switch actor.Role {
	case models.RoleFarmer:
		list, err = s.Bookings.ListByFarmer(ctx, actor.ID)
	case models.RoleTractorOwner, models.RoleWorker:
		list, err = s.Bookings.ListByProvider(ctx, actor.ID)
	default:
		return []models.Booking{}, nil
	}
	if err != nil {
		return nil, utils.Internal("failed to list bookings", err)
	}
	return list, nil
}

func mapError(err error, what string) error {
	var appErr *utils.AppError
	switch {
	case errors.As(err, &appErr):
		return err
	case errors.Is(err, repository.ErrNotFound):
		return utils.NotFound("%s not found", what)
	case errors.Is(err, repository.ErrStateChanged):
		return utils.InvalidState("%s was changed by another request", what)
	case errors.Is(err, repository.ErrDuplicate):
		return utils.Conflict("%s already exists", what)
	default:
		return utils.Internal(what+" update failed", err)
	}
}
