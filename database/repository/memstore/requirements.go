package memstore

import (
	"context"
	"fmt"
	"time"

	"cropconnect/database/repository"
	requirementRepo "cropconnect/database/repository/requirement"
	"cropconnect/models"
)

type requirements struct{ s *Store }

func (s *Store) Requirements() requirementRepo.RequirementRepository { return requirements{s} }

func (r requirements) Create(_ context.Context, req *models.Requirement) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	for _, x := range r.s.requirements {
		if x.ID == req.ID {
			return fmt.Errorf("requirement %s: %w", req.ID, repository.ErrDuplicate)
		}
	}
	now := time.Now()
	req.CreatedAt, req.UpdatedAt = now, now
	r.s.requirements = append(r.s.requirements, copyRequirement(*req))
	return nil
}

func (r requirements) GetByID(_ context.Context, id string) (*models.Requirement, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	for _, x := range r.s.requirements {
		if x.ID == id {
			out := copyRequirement(x)
			return &out, nil
		}
	}
	return nil, fmt.Errorf("requirement %s: %w", id, repository.ErrNotFound)
}

func (r requirements) List(_ context.Context, f models.RequirementFilter) ([]models.Requirement, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	var out []models.Requirement
	for i := len(r.s.requirements) - 1; i >= 0; i-- {
		x := r.s.requirements[i]
		if f.Kind != "" && x.Kind != f.Kind {
			continue
		}
		if f.WorkType != "" && !containsFold(x.WorkType, f.WorkType) {
			continue
		}
		if f.District != "" && !containsFold(x.Location.District, f.District) {
			continue
		}
		if f.State != "" && !containsFold(x.Location.State, f.State) {
			continue
		}
		if f.Status != "" && x.Status != f.Status {
			continue
		}
		if f.FarmerID != "" && x.FarmerID != f.FarmerID {
			continue
		}
		if len(f.Genders) > 0 && !preferenceIn(x.PreferredGender, f.Genders) {
			continue
		}
		out = append(out, copyRequirement(x))
	}
	return out, nil
}

func preferenceIn(p models.GenderPreference, list []models.GenderPreference) bool {
	for _, x := range list {
		if x == p {
			return true
		}
	}
	return false
}

// update applies fn to the requirement with id when cond holds.
func (r requirements) update(id string, cond func(*models.Requirement) bool, fn func(*models.Requirement)) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	for i := range r.s.requirements {
		x := &r.s.requirements[i]
		if x.ID != id {
			continue
		}
		if !cond(x) {
			break
		}
		fn(x)
		x.UpdatedAt = time.Now()
		return nil
	}
	return fmt.Errorf("requirement %s: %w", id, repository.ErrStateChanged)
}

func (r requirements) ReserveBid(_ context.Context, id string) error {
	return r.update(id,
		func(x *models.Requirement) bool { return x.Status == models.RequirementOpen },
		func(x *models.Requirement) { x.BidCount++ })
}

func (r requirements) Accept(_ context.Context, id, acceptedBy string, at time.Time) error {
	return r.update(id,
		func(x *models.Requirement) bool { return x.Status == models.RequirementOpen },
		func(x *models.Requirement) {
			x.Status = models.RequirementAccepted
			x.AcceptedBy = acceptedBy
			accepted := at
			x.AcceptedAt = &accepted
		})
}

func (r requirements) SetStatus(_ context.Context, id string, from []models.RequirementStatus, to models.RequirementStatus) error {
	return r.update(id,
		func(x *models.Requirement) bool {
			for _, st := range from {
				if x.Status == st {
					return true
				}
			}
			return false
		},
		func(x *models.Requirement) { x.Status = to })
}

func (r requirements) DeleteIfOpen(_ context.Context, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	for i, x := range r.s.requirements {
		if x.ID == id && x.Status == models.RequirementOpen && x.HiredCount == 0 {
			r.s.requirements = append(r.s.requirements[:i:i], r.s.requirements[i+1:]...)
			return nil
		}
	}
	return fmt.Errorf("requirement %s: %w", id, repository.ErrStateChanged)
}

func (r requirements) AddApplicant(_ context.Context, id string, applicant models.Applicant) error {
	return r.update(id,
		func(x *models.Requirement) bool {
			return x.Status == models.RequirementOpen && x.Applicant(applicant.WorkerID) == nil
		},
		func(x *models.Requirement) { x.Applicants = append(x.Applicants, applicant) })
}

func (r requirements) SetApplicantStatus(_ context.Context, id, workerID string, from, to models.ApplicationStatus, bookingID string) error {
	return r.update(id,
		func(x *models.Requirement) bool {
			a := x.Applicant(workerID)
			return a != nil && a.Status == from
		},
		func(x *models.Requirement) {
			a := x.Applicant(workerID)
			a.Status = to
			if bookingID != "" {
				a.BookingID = bookingID
			}
		})
}

func (r requirements) HireApplicant(_ context.Context, id, workerID, bookingID string) (*models.Requirement, error) {
	var out models.Requirement
	err := r.update(id,
		func(x *models.Requirement) bool {
			a := x.Applicant(workerID)
			return x.Status == models.RequirementOpen && a != nil &&
				a.Status == models.ApplicationPending && x.HiredCount < x.Slots()
		},
		func(x *models.Requirement) {
			a := x.Applicant(workerID)
			a.Status = models.ApplicationAccepted
			a.BookingID = bookingID
			x.HiredCount++
			out = copyRequirement(*x)
		})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (r requirements) RejectPendingApplicants(_ context.Context, id, exceptWorkerID string) ([]string, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	for i := range r.s.requirements {
		x := &r.s.requirements[i]
		if x.ID != id {
			continue
		}
		var rejected []string
		for j := range x.Applicants {
			a := &x.Applicants[j]
			if a.Status == models.ApplicationPending && a.WorkerID != exceptWorkerID {
				a.Status = models.ApplicationRejected
				rejected = append(rejected, a.WorkerID)
			}
		}
		return rejected, nil
	}
	return nil, fmt.Errorf("requirement %s: %w", id, repository.ErrNotFound)
}
