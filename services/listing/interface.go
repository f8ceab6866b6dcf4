package listing

import (
	"context"
	"io"

	"cropconnect/models"
)

// ListingService manages the standing tractor and worker listings farmers book directly.
type ListingService interface {
	CreateTractor(ctx context.Context, owner models.Actor, in models.TractorInput) (*models.TractorService, error)
	UpdateTractor(ctx context.Context, id string, owner models.Actor, in models.TractorInput) (*models.TractorService, error)
	DeleteTractor(ctx context.Context, id string, owner models.Actor) error
	GetTractor(ctx context.Context, id string) (*models.TractorService, error)
	ListTractors(ctx context.Context, filter models.ListingFilter) ([]models.TractorService, error)
	AddTractorImage(ctx context.Context, id string, owner models.Actor, image io.Reader) (*models.TractorService, error)

	UpsertWorkerProfile(ctx context.Context, worker models.Actor, in models.WorkerInput) (*models.WorkerService, error)
	GetWorker(ctx context.Context, id string) (*models.WorkerService, error)
	ListWorkers(ctx context.Context, filter models.ListingFilter) ([]models.WorkerService, error)
	AddWorkerImage(ctx context.Context, worker models.Actor, image io.Reader) (*models.WorkerService, error)
}
