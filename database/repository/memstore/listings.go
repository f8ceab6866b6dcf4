package memstore

import (
	"context"
	"fmt"
	"time"

	"cropconnect/database/repository"
	listingRepo "cropconnect/database/repository/listing"
	"cropconnect/models"
)

type tractors struct{ s *Store }

func (s *Store) Tractors() listingRepo.TractorRepository { return tractors{s} }

func (r tractors) Create(_ context.Context, svc *models.TractorService) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	now := time.Now()
	svc.CreatedAt, svc.UpdatedAt = now, now
	r.s.tractors = append(r.s.tractors, *svc)
	return nil
}

func (r tractors) GetByID(_ context.Context, id string) (*models.TractorService, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	for _, t := range r.s.tractors {
		if t.ID == id {
			out := t
			return &out, nil
		}
	}
	return nil, fmt.Errorf("tractor listing %s: %w", id, repository.ErrNotFound)
}

func (r tractors) Update(_ context.Context, id string, in models.TractorInput) (*models.TractorService, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	for i := range r.s.tractors {
		t := &r.s.tractors[i]
		if t.ID != id {
			continue
		}
		t.Name, t.Model, t.HorsePower = in.Name, in.Model, in.HorsePower
		t.WorkTypes, t.RatePerAcre = in.WorkTypes, in.RatePerAcre
		if in.Location.District != "" {
			t.Location = in.Location
		}
		t.UpdatedAt = time.Now()
		out := *t
		return &out, nil
	}
	return nil, fmt.Errorf("tractor listing %s: %w", id, repository.ErrNotFound)
}

func (r tractors) DeleteIfAvailable(_ context.Context, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	for i, t := range r.s.tractors {
		if t.ID == id && t.Available {
			r.s.tractors = append(r.s.tractors[:i:i], r.s.tractors[i+1:]...)
			return nil
		}
	}
	return fmt.Errorf("tractor listing %s: %w", id, repository.ErrStateChanged)
}

func (r tractors) List(_ context.Context, f models.ListingFilter) ([]models.TractorService, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	var out []models.TractorService
	for i := len(r.s.tractors) - 1; i >= 0; i-- {
		t := r.s.tractors[i]
		if f.District != "" && !containsFold(t.Location.District, f.District) {
			continue
		}
		if f.WorkType != "" && !anyContainsFold(t.WorkTypes, f.WorkType) {
			continue
		}
		if f.Available != nil && t.Available != *f.Available {
			continue
		}
		out = append(out, t)
	}
	return out, nil
}

func (r tractors) SetAvailability(_ context.Context, id string, from, to bool) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	for i := range r.s.tractors {
		if r.s.tractors[i].ID == id && r.s.tractors[i].Available == from {
			r.s.tractors[i].Available = to
			return nil
		}
	}
	return fmt.Errorf("tractor listing %s: %w", id, repository.ErrStateChanged)
}

func (r tractors) AddImage(_ context.Context, id, url string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	for i := range r.s.tractors {
		if r.s.tractors[i].ID == id {
			r.s.tractors[i].Images = append(r.s.tractors[i].Images, url)
			return nil
		}
	}
	return fmt.Errorf("tractor listing %s: %w", id, repository.ErrNotFound)
}

func (r tractors) UpdateRatingByOwner(_ context.Context, ownerID string, rating float64, count int) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	for i := range r.s.tractors {
		if r.s.tractors[i].OwnerID == ownerID {
			r.s.tractors[i].Rating = rating
			r.s.tractors[i].RatingCount = count
		}
	}
	return nil
}

type workers struct{ s *Store }

func (s *Store) Workers() listingRepo.WorkerRepository { return workers{s} }

func (r workers) Upsert(_ context.Context, svc *models.WorkerService) (*models.WorkerService, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	now := time.Now()
	for i := range r.s.workers {
		w := &r.s.workers[i]
		if w.WorkerID != svc.WorkerID {
			continue
		}
		w.Skills, w.WagePerDay, w.Gender = svc.Skills, svc.WagePerDay, svc.Gender
		w.ExperienceYears, w.Location, w.Available = svc.ExperienceYears, svc.Location, svc.Available
		w.UpdatedAt = now
		out := *w
		return &out, nil
	}
	created := *svc
	created.Rating, created.RatingCount = 0, 0
	created.CreatedAt, created.UpdatedAt = now, now
	r.s.workers = append(r.s.workers, created)
	return &created, nil
}

func (r workers) find(match func(models.WorkerService) bool) (*models.WorkerService, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	for _, w := range r.s.workers {
		if match(w) {
			out := w
			return &out, nil
		}
	}
	return nil, fmt.Errorf("worker listing: %w", repository.ErrNotFound)
}

func (r workers) GetByID(_ context.Context, id string) (*models.WorkerService, error) {
	return r.find(func(w models.WorkerService) bool { return w.ID == id })
}

func (r workers) GetByWorkerID(_ context.Context, workerID string) (*models.WorkerService, error) {
	return r.find(func(w models.WorkerService) bool { return w.WorkerID == workerID })
}

func (r workers) List(_ context.Context, f models.ListingFilter) ([]models.WorkerService, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	var out []models.WorkerService
	for i := len(r.s.workers) - 1; i >= 0; i-- {
		w := r.s.workers[i]
		if f.District != "" && !containsFold(w.Location.District, f.District) {
			continue
		}
		if f.Skill != "" && !anyContainsFold(w.Skills, f.Skill) {
			continue
		}
		if f.Gender != "" && w.Gender != f.Gender {
			continue
		}
		if f.Available != nil && w.Available != *f.Available {
			continue
		}
		out = append(out, w)
	}
	return out, nil
}

func (r workers) SetAvailability(_ context.Context, id string, from, to bool) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	for i := range r.s.workers {
		if r.s.workers[i].ID == id && r.s.workers[i].Available == from {
			r.s.workers[i].Available = to
			return nil
		}
	}
	return fmt.Errorf("worker listing %s: %w", id, repository.ErrStateChanged)
}

func (r workers) AddImage(_ context.Context, id, url string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	for i := range r.s.workers {
		if r.s.workers[i].ID == id {
			r.s.workers[i].Images = append(r.s.workers[i].Images, url)
			return nil
		}
	}
	return fmt.Errorf("worker listing %s: %w", id, repository.ErrNotFound)
}

func (r workers) UpdateRatingByWorker(_ context.Context, workerID string, rating float64, count int) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	for i := range r.s.workers {
		if r.s.workers[i].WorkerID == workerID {
			r.s.workers[i].Rating = rating
			r.s.workers[i].RatingCount = count
		}
	}
	return nil
}
