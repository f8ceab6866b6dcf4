package memstore

import (
	"context"
	"fmt"
	"time"

	"cropconnect/database/repository"
	reviewRepo "cropconnect/database/repository/review"
	"cropconnect/models"
)

type reviews struct{ s *Store }

func (s *Store) Reviews() reviewRepo.ReviewRepository { return reviews{s} }

func (r reviews) Create(_ context.Context, review *models.Review) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	for _, x := range r.s.reviews {
		if x.BookingID == review.BookingID && x.ReviewerID == review.ReviewerID {
			return fmt.Errorf("review of booking %s: %w", review.BookingID, repository.ErrDuplicate)
		}
	}
	review.CreatedAt = time.Now()
	r.s.reviews = append(r.s.reviews, *review)
	return nil
}

func (r reviews) ListByReviewee(_ context.Context, revieweeID string) ([]models.Review, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	var out []models.Review
	for i := len(r.s.reviews) - 1; i >= 0; i-- {
		if r.s.reviews[i].RevieweeID == revieweeID {
			out = append(out, r.s.reviews[i])
		}
	}
	return out, nil
}

func (r reviews) AverageForReviewee(_ context.Context, revieweeID string) (float64, int, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	sum, count := 0, 0
	for _, x := range r.s.reviews {
		if x.RevieweeID == revieweeID {
			sum += x.Rating
			count++
		}
	}
	if count == 0 {
		return 0, 0, nil
	}
	return float64(sum) / float64(count), count, nil
}
