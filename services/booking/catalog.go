package booking

import (
	"context"

	listingRepo "cropconnect/database/repository/listing"
	"cropconnect/models"
)

// BookableService is a listing seen through the booking lens.
type BookableService struct {
	Ref        models.ServiceRef
	ProviderID string
	Rate       float64 // per acre for tractors, per day for workers
	Available  bool
	Location   models.Location
}

// ServiceCatalog resolves and reserves the listings of one service kind.
type ServiceCatalog interface {
	Resolve(ctx context.Context, id string) (*BookableService, error)
	SetAvailability(ctx context.Context, id string, from, to bool) error
}

type TractorCatalog struct {
	Repo listingRepo.TractorRepository
}

func (c TractorCatalog) Resolve(ctx context.Context, id string) (*BookableService, error) {
	svc, err := c.Repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return &BookableService{
		Ref:        models.ServiceRef{Kind: models.ServiceTractor, ID: svc.ID},
		ProviderID: svc.OwnerID,
		Rate:       svc.RatePerAcre,
		Available:  svc.Available,
		Location:   svc.Location,
	}, nil
}

func (c TractorCatalog) SetAvailability(ctx context.Context, id string, from, to bool) error {
	return c.Repo.SetAvailability(ctx, id, from, to)
}

type WorkerCatalog struct {
	Repo listingRepo.WorkerRepository
}

func (c WorkerCatalog) Resolve(ctx context.Context, id string) (*BookableService, error) {
	svc, err := c.Repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return &BookableService{
		Ref:        models.ServiceRef{Kind: models.ServiceWorker, ID: svc.ID},
		ProviderID: svc.WorkerID,
		Rate:       svc.WagePerDay,
		Available:  svc.Available,
		Location:   svc.Location,
	}, nil
}

func (c WorkerCatalog) SetAvailability(ctx context.Context, id string, from, to bool) error {
	return c.Repo.SetAvailability(ctx, id, from, to)
}

// Catalogs indexes the catalog of every service kind.
type Catalogs map[models.ServiceType]ServiceCatalog

func NewCatalogs(tractors listingRepo.TractorRepository, workers listingRepo.WorkerRepository) Catalogs {
	return Catalogs{
		models.ServiceTractor: TractorCatalog{Repo: tractors},
		models.ServiceWorker:  WorkerCatalog{Repo: workers},
	}
}
