package listingRepo

import (
	"context"

	"cropconnect/models"
)

// TractorRepository defines persistence for tractor service listings.
type TractorRepository interface {
	Create(ctx context.Context, svc *models.TractorService) error
	GetByID(ctx context.Context, id string) (*models.TractorService, error)
	Update(ctx context.Context, id string, in models.TractorInput) (*models.TractorService, error)
	// DeleteIfAvailable removes a listing that is not tied up in a booking.
	DeleteIfAvailable(ctx context.Context, id string) error
	List(ctx context.Context, filter models.ListingFilter) ([]models.TractorService, error)
	// SetAvailability flips the availability flag from one value to the other, or fails with
	// repository.ErrStateChanged.
	SetAvailability(ctx context.Context, id string, from, to bool) error
	AddImage(ctx context.Context, id, url string) error
	UpdateRatingByOwner(ctx context.Context, ownerID string, rating float64, count int) error
}

// WorkerRepository defines persistence for worker profile listings, one per worker.
type WorkerRepository interface {
	Upsert(ctx context.Context, svc *models.WorkerService) (*models.WorkerService, error)
	GetByID(ctx context.Context, id string) (*models.WorkerService, error)
	GetByWorkerID(ctx context.Context, workerID string) (*models.WorkerService, error)
	List(ctx context.Context, filter models.ListingFilter) ([]models.WorkerService, error)
	SetAvailability(ctx context.Context, id string, from, to bool) error
	AddImage(ctx context.Context, id, url string) error
	UpdateRatingByWorker(ctx context.Context, workerID string, rating float64, count int) error
}
