package listing

import (
	"context"
	"errors"
	"io"
	"strings"

	"cropconnect/database/repository"
	listingRepo "cropconnect/database/repository/listing"
	userRepo "cropconnect/database/repository/user"
	"cropconnect/models"
	"cropconnect/services/storage"
	"cropconnect/utils"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// DefaultListingService implements ListingService.
type DefaultListingService struct {
	Tractors listingRepo.TractorRepository
	Workers  listingRepo.WorkerRepository
	Users    userRepo.UserRepository
	Storage  storage.StorageService
	Logger   *zap.Logger
}

func validateTractor(in *models.TractorInput) error {
	in.Name = strings.TrimSpace(in.Name)
	if in.Name == "" {
		return utils.Validation("name is required")
	}
	if in.RatePerAcre <= 0 {
		return utils.Validation("ratePerAcre must be greater than zero")
	}
	if in.HorsePower < 0 {
		return utils.Validation("horsePower cannot be negative")
	}
	return nil
}

func (s *DefaultListingService) CreateTractor(ctx context.Context, owner models.Actor, in models.TractorInput) (*models.TractorService, error) {
	if owner.Role != models.RoleTractorOwner {
		return nil, utils.Forbidden("only tractor owners can list tractors")
	}
	if err := validateTractor(&in); err != nil {
		return nil, err
	}
	location := in.Location
	if location.District == "" {
		u, err := s.Users.GetByID(ctx, owner.ID)
		if err != nil {
			return nil, mapError(err, "user")
		}
		location = u.Location
	}

	svc := &models.TractorService{
		ID:          uuid.New().String(),
		OwnerID:     owner.ID,
		Name:        in.Name,
		Model:       in.Model,
		HorsePower:  in.HorsePower,
		WorkTypes:   in.WorkTypes,
		RatePerAcre: in.RatePerAcre,
		Location:    location,
		Available:   true,
	}
	if err := s.Tractors.Create(ctx, svc); err != nil {
		return nil, utils.Internal("failed to save tractor listing", err)
	}
	s.Logger.Info("tractor listed", zap.String("serviceId", svc.ID), zap.String("ownerId", owner.ID))
	return svc, nil
}

// loadOwnTractor fetches a tractor listing and checks that owner owns it.
func (s *DefaultListingService) loadOwnTractor(ctx context.Context, id string, owner models.Actor) (*models.TractorService, error) {
	svc, err := s.GetTractor(ctx, id)
	if err != nil {
		return nil, err
	}
	if svc.OwnerID != owner.ID {
		return nil, utils.Forbidden("you can only change your own listings")
	}
	return svc, nil
}

func (s *DefaultListingService) UpdateTractor(ctx context.Context, id string, owner models.Actor, in models.TractorInput) (*models.TractorService, error) {
	if _, err := s.loadOwnTractor(ctx, id, owner); err != nil {
		return nil, err
	}
	if err := validateTractor(&in); err != nil {
		return nil, err
	}
	svc, err := s.Tractors.Update(ctx, id, in)
	if err != nil {
		return nil, mapError(err, "tractor listing")
	}
	return svc, nil
}

// DeleteTractor removes a listing unless it is currently booked.
func (s *DefaultListingService) DeleteTractor(ctx context.Context, id string, owner models.Actor) error {
	if _, err := s.loadOwnTractor(ctx, id, owner); err != nil {
		return err
	}
	err := s.Tractors.DeleteIfAvailable(ctx, id)
	if errors.Is(err, repository.ErrStateChanged) {
		return utils.InvalidState("a booked tractor cannot be removed")
	}
	if err != nil {
		return mapError(err, "tractor listing")
	}
	return nil
}

func (s *DefaultListingService) GetTractor(ctx context.Context, id string) (*models.TractorService, error) {
	svc, err := s.Tractors.GetByID(ctx, id)
	if err != nil {
		return nil, mapError(err, "tractor listing")
	}
	return svc, nil
}

func (s *DefaultListingService) ListTractors(ctx context.Context, filter models.ListingFilter) ([]models.TractorService, error) {
	list, err := s.Tractors.List(ctx, filter)
	if err != nil {
		return nil, utils.Internal("failed to list tractors", err)
	}
	return list, nil
}

func (s *DefaultListingService) AddTractorImage(ctx context.Context, id string, owner models.Actor, image io.Reader) (*models.TractorService, error) {
	if _, err := s.loadOwnTractor(ctx, id, owner); err != nil {
		return nil, err
	}
	res, err := s.Storage.UploadImage(ctx, image, "tractors")
	if err != nil {
		return nil, err
	}
	if err := s.Tractors.AddImage(ctx, id, res.URL); err != nil {
		return nil, mapError(err, "tractor listing")
	}
	return s.GetTractor(ctx, id)
}

// UpsertWorkerProfile creates or replaces the caller's worker listing. Gender comes from the
// user profile; availability is kept unless the worker sets it.
func (s *DefaultListingService) UpsertWorkerProfile(ctx context.Context, worker models.Actor, in models.WorkerInput) (*models.WorkerService, error) {
	if worker.Role != models.RoleWorker {
		return nil, utils.Forbidden("only workers can publish a worker profile")
	}
	if in.WagePerDay <= 0 {
		return nil, utils.Validation("wagePerDay must be greater than zero")
	}
	if in.ExperienceYears < 0 {
		return nil, utils.Validation("experienceYears cannot be negative")
	}
	u, err := s.Users.GetByID(ctx, worker.ID)
	if err != nil {
		return nil, mapError(err, "user")
	}

	available := true
	existing, err := s.Workers.GetByWorkerID(ctx, worker.ID)
	switch {
	case err == nil:
		available = existing.Available
	case !errors.Is(err, repository.ErrNotFound):
		return nil, utils.Internal("failed to load worker profile", err)
	}
	if in.Available != nil {
		available = *in.Available
	}
	location := in.Location
	if location.District == "" {
		location = u.Location
	}

	svc, err := s.Workers.Upsert(ctx, &models.WorkerService{
		ID:              uuid.New().String(),
		WorkerID:        worker.ID,
		Skills:          in.Skills,
		WagePerDay:      in.WagePerDay,
		Gender:          u.Gender,
		ExperienceYears: in.ExperienceYears,
		Location:        location,
		Available:       available,
	})
	if err != nil {
		return nil, utils.Internal("failed to save worker profile", err)
	}
	return svc, nil
}

func (s *DefaultListingService) GetWorker(ctx context.Context, id string) (*models.WorkerService, error) {
	svc, err := s.Workers.GetByID(ctx, id)
	if err != nil {
		return nil, mapError(err, "worker listing")
	}
	return svc, nil
}

func (s *DefaultListingService) ListWorkers(ctx context.Context, filter models.ListingFilter) ([]models.WorkerService, error) {
	list, err := s.Workers.List(ctx, filter)
	if err != nil {
		return nil, utils.Internal("failed to list workers", err)
	}
	return list, nil
}

func (s *DefaultListingService) AddWorkerImage(ctx context.Context, worker models.Actor, image io.Reader) (*models.WorkerService, error) {
	svc, err := s.Workers.GetByWorkerID(ctx, worker.ID)
	if err != nil {
		return nil, mapError(err, "worker listing")
	}
	res, err := s.Storage.UploadImage(ctx, image, "workers")
	if err != nil {
		return nil, err
	}
	if err := s.Workers.AddImage(ctx, svc.ID, res.URL); err != nil {
		return nil, mapError(err, "worker listing")
	}
	return s.GetWorker(ctx, svc.ID)
}

func mapError(err error, what string) error {
	switch {
	case errors.Is(err, repository.ErrNotFound):
		return utils.NotFound("%s not found", what)
	case errors.Is(err, repository.ErrStateChanged):
		return utils.InvalidState("%s was changed by another request", what)
	default:
		return utils.Internal(what+" update failed", err)
	}
}
