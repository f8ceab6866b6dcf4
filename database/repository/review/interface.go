package reviewRepo

import (
	"context"

	"cropconnect/models"
)

// ReviewRepository defines persistence for booking reviews. A reviewer may review a booking once.
type ReviewRepository interface {
	Create(ctx context.Context, review *models.Review) error
	ListByReviewee(ctx context.Context, revieweeID string) ([]models.Review, error)
	// AverageForReviewee returns the mean rating and the number of reviews received.
	AverageForReviewee(ctx context.Context, revieweeID string) (float64, int, error)
}
