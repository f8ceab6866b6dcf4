package review

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"

	"cropconnect/database/repository"
	bookingRepo "cropconnect/database/repository/booking"
	listingRepo "cropconnect/database/repository/listing"
	reviewRepo "cropconnect/database/repository/review"
	userRepo "cropconnect/database/repository/user"
	"cropconnect/models"
	"cropconnect/services/notification"
	"cropconnect/utils"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ReviewService lets the parties of a completed booking rate each other.
type ReviewService interface {
	Create(ctx context.Context, reviewer models.Actor, in models.ReviewInput) (*models.Review, error)
	ListForUser(ctx context.Context, userID string) ([]models.Review, error)
}

// DefaultReviewService implements ReviewService.
type DefaultReviewService struct {
	Reviews  reviewRepo.ReviewRepository
	Bookings bookingRepo.BookingRepository
	Users    userRepo.UserRepository
	Tractors listingRepo.TractorRepository
	Workers  listingRepo.WorkerRepository
	Notifier notification.Emitter
	Logger   *zap.Logger
}

func (s *DefaultReviewService) Create(ctx context.Context, reviewer models.Actor, in models.ReviewInput) (*models.Review, error) {
	if in.Rating < 1 || in.Rating > 5 {
		return nil, utils.Validation("rating must be between 1 and 5")
	}
	bk, err := s.Bookings.GetByID(ctx, in.BookingID)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, utils.NotFound("booking not found")
	}
	if err != nil {
		return nil, utils.Internal("failed to load booking", err)
	}
	if !bk.IsParty(reviewer.ID) {
		return nil, utils.Forbidden("only the parties of a booking can review it")
	}
	if bk.Status != models.BookingCompleted {
		return nil, utils.InvalidState("only completed bookings can be reviewed")
	}

	r := &models.Review{
		ID:         uuid.New().String(),
		BookingID:  bk.ID,
		ReviewerID: reviewer.ID,
		RevieweeID: bk.Counterparty(reviewer.ID),
		Rating:     in.Rating,
		Comment:    strings.TrimSpace(in.Comment),
	}
	if err := s.Reviews.Create(ctx, r); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, utils.Conflict("you have already reviewed this booking")
		}
		return nil, utils.Internal("failed to save review", err)
	}

	s.refreshRating(ctx, bk, r.RevieweeID)
	s.Notifier.Emit(ctx, models.NotificationInput{
		RecipientID: r.RevieweeID,
		Type:        models.NotifyReviewReceived,
		Title:       "New review",
		Message:     fmt.Sprintf("You received a %d-star review.", r.Rating),
		Refs:        models.NotificationRefs{BookingID: bk.ID, UserID: reviewer.ID},
	})
	return r, nil
}

// refreshRating recomputes the reviewee's average and copies it onto their listings.
// Failures are logged; the review itself is already stored.
func (s *DefaultReviewService) refreshRating(ctx context.Context, bk *models.Booking, revieweeID string) {
	avg, count, err := s.Reviews.AverageForReviewee(ctx, revieweeID)
	if err != nil {
		s.Logger.Warn("rating not recomputed", zap.String("userId", revieweeID), zap.Error(err))
		return
	}
	avg = math.Round(avg*10) / 10
	if err := s.Users.UpdateRating(ctx, revieweeID, avg, count); err != nil {
		s.Logger.Warn("user rating not updated", zap.String("userId", revieweeID), zap.Error(err))
	}
	if revieweeID != bk.ProviderID {
		return
	}
	switch bk.ServiceType {
	case models.ServiceTractor:
		err = s.Tractors.UpdateRatingByOwner(ctx, revieweeID, avg, count)
	case models.ServiceWorker:
		err = s.Workers.UpdateRatingByWorker(ctx, revieweeID, avg, count)
	}
	if err != nil {
		s.Logger.Warn("listing rating not updated", zap.String("userId", revieweeID), zap.Error(err))
	}
}

func (s *DefaultReviewService) ListForUser(ctx context.Context, userID string) ([]models.Review, error) {
	list, err := s.Reviews.ListByReviewee(ctx, userID)
	if err != nil {
		return nil, utils.Internal("failed to list reviews", err)
	}
	return list, nil
}
