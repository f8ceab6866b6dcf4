package requirementRepo

import (
	"context"
	"time"

	"cropconnect/models"
)

// RequirementRepository defines persistence for farmer requirements and their embedded applicants.
// State transitions are conditional on the expected prior status and return
// repository.ErrStateChanged when nothing matched.
type RequirementRepository interface {
	Create(ctx context.Context, req *models.Requirement) error
	GetByID(ctx context.Context, id string) (*models.Requirement, error)
	List(ctx context.Context, filter models.RequirementFilter) ([]models.Requirement, error)

	// ReserveBid counts a new bid against an open requirement. Inside a transaction it conflicts
	// with any concurrent close of the same requirement.
	ReserveBid(ctx context.Context, id string) error
	// Accept moves an open requirement to accepted and records who won it.
	Accept(ctx context.Context, id, acceptedBy string, at time.Time) error
	SetStatus(ctx context.Context, id string, from []models.RequirementStatus, to models.RequirementStatus) error
	// DeleteIfOpen removes a requirement that is open and has hired nobody.
	DeleteIfOpen(ctx context.Context, id string) error

	// AddApplicant appends an application while the requirement is open and the worker has not applied.
	AddApplicant(ctx context.Context, id string, applicant models.Applicant) error
	SetApplicantStatus(ctx context.Context, id, workerID string, from, to models.ApplicationStatus, bookingID string) error
	// HireApplicant accepts a pending applicant while the requirement is open and has a free slot,
	// and returns the requirement as updated.
	HireApplicant(ctx context.Context, id, workerID, bookingID string) (*models.Requirement, error)
	// RejectPendingApplicants rejects every pending applicant except exceptWorkerID and returns
	// the rejected worker ids.
	RejectPendingApplicants(ctx context.Context, id, exceptWorkerID string) ([]string, error)
}
