package bid

import (
	"context"
	"errors"
	"fmt"
	"time"

	"cropconnect/database/repository"
	bidRepo "cropconnect/database/repository/bid"
	bookingRepo "cropconnect/database/repository/booking"
	requirementRepo "cropconnect/database/repository/requirement"
	"cropconnect/models"
	"cropconnect/services/booking"
	"cropconnect/services/notification"
	"cropconnect/utils"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// DefaultBidService implements BidService.
type DefaultBidService struct {
	Bids         bidRepo.BidRepository
	Requirements requirementRepo.RequirementRepository
	Bookings     bookingRepo.BookingRepository
	Tx           repository.TxRunner
	Notifier     notification.Emitter
	Reminders    booking.ReminderScheduler // optional
	Logger       *zap.Logger
	Now          func() time.Time
}

func (s *DefaultBidService) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

func (s *DefaultBidService) Place(ctx context.Context, bidder models.Actor, terms models.BidTerms) (*models.Bid, error) {
	if bidder.Role != models.RoleTractorOwner {
		return nil, utils.Forbidden("only tractor owners can bid")
	}
	if terms.ProposedAmount <= 0 {
		return nil, utils.Validation("proposedAmount must be greater than zero")
	}

	req, err := s.Requirements.GetByID(ctx, terms.RequirementID)
	if err != nil {
		return nil, mapError(err, "requirement")
	}
	if req.Kind != models.ServiceTractor {
		return nil, utils.InvalidState("requirement does not accept bids")
	}
	if req.Status != models.RequirementOpen {
		return nil, utils.InvalidState("requirement is no longer open for bids")
	}
	if req.FarmerID == bidder.ID {
		return nil, utils.Validation("you cannot bid on your own requirement")
	}
	if _, err := s.Bids.FindByRequirementAndBidder(ctx, req.ID, bidder.ID); err == nil {
		return nil, utils.Conflict("you have already placed a bid on this requirement")
	} else if !errors.Is(err, repository.ErrNotFound) {
		return nil, utils.Internal("failed to check existing bids", err)
	}

	proposedDate := terms.ProposedDate
	if proposedDate.IsZero() {
		proposedDate = req.Date
	}
	b := &models.Bid{
		ID:               uuid.New().String(),
		RequirementID:    req.ID,
		FarmerID:         req.FarmerID,
		BidderID:         bidder.ID,
		ProposedAmount:   terms.ProposedAmount,
		ProposedDuration: terms.ProposedDuration,
		ProposedDate:     proposedDate,
		Message:          terms.Message,
		Status:           models.BidPending,
	}
	// ReserveBid matches only an open requirement, so a bid cannot land on a closed one.
	err = s.Tx.WithTransaction(ctx, func(ctx context.Context) error {
		if err := s.Requirements.ReserveBid(ctx, req.ID); err != nil {
			return err
		}
		return s.Bids.Create(ctx, b)
	})
	switch {
	case errors.Is(err, repository.ErrStateChanged):
		return nil, utils.InvalidState("requirement is no longer open for bids")
	case errors.Is(err, repository.ErrDuplicate):
		return nil, utils.Conflict("you have already placed a bid on this requirement")
	case err != nil:
		return nil, utils.Internal("failed to save bid", err)
	}

	s.Notifier.Emit(ctx, models.NotificationInput{
		RecipientID: req.FarmerID,
		Type:        models.NotifyBidReceived,
		Title:       "New bid received",
		Message:     fmt.Sprintf("A tractor owner bid ₹%.0f for your %s requirement.", b.ProposedAmount, req.WorkType),
		Refs:        models.NotificationRefs{RequirementID: req.ID, BidID: b.ID, UserID: bidder.ID},
	})
	return b, nil
}

// loadForFarmer fetches a pending bid with its requirement and checks that farmer owns it.
func (s *DefaultBidService) loadForFarmer(ctx context.Context, bidID string, farmer models.Actor) (*models.Bid, *models.Requirement, error) {
	b, err := s.Bids.GetByID(ctx, bidID)
	if err != nil {
		return nil, nil, mapError(err, "bid")
	}
	req, err := s.Requirements.GetByID(ctx, b.RequirementID)
	if err != nil {
		return nil, nil, mapError(err, "requirement")
	}
	if req.FarmerID != farmer.ID {
		return nil, nil, utils.Forbidden("only the requirement owner can decide on its bids")
	}
	if b.Status != models.BidPending {
		return nil, nil, utils.InvalidState("bid has already been %s", b.Status)
	}
	return b, req, nil
}

// Accept turns the bid into a booking. The requirement's open -> accepted transition is the
// first write, so of two concurrent accepts on one requirement only one commits.
func (s *DefaultBidService) Accept(ctx context.Context, bidID string, farmer models.Actor) (*AcceptResult, error) {
	b, req, err := s.loadForFarmer(ctx, bidID, farmer)
	if err != nil {
		return nil, err
	}
	if req.Status != models.RequirementOpen {
		return nil, utils.InvalidState("requirement is no longer open")
	}

	now := s.now()
	date := b.ProposedDate
	if date.IsZero() {
		date = req.Date
	}
	bk := &models.Booking{
		ID:            uuid.New().String(),
		FarmerID:      req.FarmerID,
		ProviderID:    b.BidderID,
		ServiceType:   models.ServiceTractor,
		RequirementID: req.ID,
		BidID:         b.ID,
		WorkType:      req.WorkType,
		Date:          date,
		Duration:      b.ProposedDuration,
		LandSize:      req.LandSize,
		TotalCost:     b.ProposedAmount,
		Location:      req.Location,
		Notes:         b.Message,
		Status:        models.BookingConfirmed,
		PaymentStatus: models.PaymentPending,
	}

	var rejected []models.Bid
	err = s.Tx.WithTransaction(ctx, func(ctx context.Context) error {
		if err := s.Requirements.Accept(ctx, req.ID, b.BidderID, now); err != nil {
			return err
		}
		if err := s.Bids.TransitionStatus(ctx, b.ID, models.BidPending, models.BidAccepted); err != nil {
			return err
		}
		if err := s.Bookings.Create(ctx, bk); err != nil {
			return err
		}
		var err error
		rejected, err = s.Bids.ResolvePending(ctx, req.ID, b.ID, models.BidRejected)
		return err
	})
	if errors.Is(err, repository.ErrStateChanged) {
		return nil, utils.InvalidState("requirement is no longer open")
	}
	if err != nil {
		return nil, mapError(err, "bid")
	}

	b.Status = models.BidAccepted
	b.UpdatedAt = now
	s.Logger.Info("bid accepted",
		zap.String("bidId", b.ID),
		zap.String("requirementId", req.ID),
		zap.String("bookingId", bk.ID))

	s.Notifier.Emit(ctx, models.NotificationInput{
		RecipientID: b.BidderID,
		Type:        models.NotifyBidAccepted,
		Title:       "Your bid was accepted",
		Message:     fmt.Sprintf("Your ₹%.0f bid for %s on %s was accepted.", b.ProposedAmount, req.WorkType, date.Format("02 Jan 2006")),
		Refs:        models.NotificationRefs{RequirementID: req.ID, BidID: b.ID, BookingID: bk.ID, UserID: farmer.ID},
	})
	for _, sib := range rejected {
		s.Notifier.Emit(ctx, models.NotificationInput{
			RecipientID: sib.BidderID,
			Type:        models.NotifyBidRejected,
			Title:       "Bid not selected",
			Message:     fmt.Sprintf("The farmer accepted another bid for %s.", req.WorkType),
			Refs:        models.NotificationRefs{RequirementID: req.ID, BidID: sib.ID},
		})
	}
	if s.Reminders != nil {
		if err := s.Reminders.ScheduleBookingReminder(ctx, bk); err != nil {
			s.Logger.Warn("failed to schedule reminder", zap.String("bookingId", bk.ID), zap.Error(err))
		}
	}
	return &AcceptResult{Bid: b, Booking: bk}, nil
}

func (s *DefaultBidService) Reject(ctx context.Context, bidID string, farmer models.Actor) (*models.Bid, error) {
	b, req, err := s.loadForFarmer(ctx, bidID, farmer)
	if err != nil {
		return nil, err
	}
	if err := s.Bids.TransitionStatus(ctx, b.ID, models.BidPending, models.BidRejected); err != nil {
		return nil, mapError(err, "bid")
	}
	b.Status = models.BidRejected
	b.UpdatedAt = s.now()

	s.Notifier.Emit(ctx, models.NotificationInput{
		RecipientID: b.BidderID,
		Type:        models.NotifyBidRejected,
		Title:       "Bid declined",
		Message:     fmt.Sprintf("Your bid for %s was declined.", req.WorkType),
		Refs:        models.NotificationRefs{RequirementID: req.ID, BidID: b.ID, UserID: farmer.ID},
	})
	return b, nil
}

func (s *DefaultBidService) Withdraw(ctx context.Context, bidID string, bidder models.Actor) (*models.Bid, error) {
	b, err := s.Bids.GetByID(ctx, bidID)
	if err != nil {
		return nil, mapError(err, "bid")
	}
	if b.BidderID != bidder.ID {
		return nil, utils.Forbidden("you can only withdraw your own bids")
	}
	if b.Status != models.BidPending {
		return nil, utils.InvalidState("bid has already been %s", b.Status)
	}
	if err := s.Bids.TransitionStatus(ctx, b.ID, models.BidPending, models.BidCancelled); err != nil {
		return nil, mapError(err, "bid")
	}
	b.Status = models.BidCancelled
	b.UpdatedAt = s.now()

	s.Notifier.Emit(ctx, models.NotificationInput{
		RecipientID: b.FarmerID,
		Type:        models.NotifyBidCancelled,
		Title:       "Bid withdrawn",
		Message:     fmt.Sprintf("A ₹%.0f bid on your requirement was withdrawn.", b.ProposedAmount),
		Refs:        models.NotificationRefs{RequirementID: b.RequirementID, BidID: b.ID, UserID: bidder.ID},
	})
	return b, nil
}

func (s *DefaultBidService) ListForFarmer(ctx context.Context, farmer models.Actor) ([]models.Bid, error) {
	bids, err := s.Bids.ListByFarmer(ctx, farmer.ID)
	if err != nil {
		return nil, utils.Internal("failed to list bids", err)
	}
	return bids, nil
}

func (s *DefaultBidService) ListMine(ctx context.Context, bidder models.Actor) ([]models.Bid, error) {
	bids, err := s.Bids.ListByBidder(ctx, bidder.ID)
	if err != nil {
		return nil, utils.Internal("failed to list bids", err)
	}
	return bids, nil
}

func (s *DefaultBidService) ListForRequirement(ctx context.Context, requirementID string, farmer models.Actor) ([]models.Bid, error) {
	req, err := s.Requirements.GetByID(ctx, requirementID)
	if err != nil {
		return nil, mapError(err, "requirement")
	}
	if req.FarmerID != farmer.ID {
		return nil, utils.Forbidden("only the requirement owner can see its bids")
	}
	bids, err := s.Bids.ListByRequirement(ctx, requirementID)
	if err != nil {
		return nil, utils.Internal("failed to list bids", err)
	}
	return bids, nil
}

func mapError(err error, what string) error {
	var appErr *utils.AppError
	switch {
	case errors.As(err, &appErr):
		return err
	case errors.Is(err, repository.ErrNotFound):
		return utils.NotFound("%s not found", what)
	case errors.Is(err, repository.ErrStateChanged):
		return utils.InvalidState("%s has already been processed", what)
	case errors.Is(err, repository.ErrDuplicate):
		return utils.Conflict("%s already exists", what)
	default:
		return utils.Internal(what+" update failed", err)
	}
}
