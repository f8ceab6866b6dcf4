package requirement

import (
	"context"

	"cropconnect/models"
)

// RequirementService is the registry of farmer-posted tractor and labour requirements,
// including the worker applications embedded in labour requirements.
type RequirementService interface {
	Post(ctx context.Context, farmer models.Actor, in models.RequirementInput) (*models.Requirement, error)
	// List returns requirements matching filter; viewer may be nil for anonymous callers.
	List(ctx context.Context, viewer *models.Actor, filter models.RequirementFilter) ([]models.RequirementView, error)
	Get(ctx context.Context, id string) (*models.Requirement, error)
	ListMine(ctx context.Context, farmer models.Actor) ([]models.Requirement, error)
	Withdraw(ctx context.Context, id string, actor models.Actor) error
	Cancel(ctx context.Context, id string, actor models.Actor) (*models.Requirement, error)

	Apply(ctx context.Context, id string, worker models.Actor) (*models.Requirement, error)
	AcceptApplicant(ctx context.Context, id, workerID string, farmer models.Actor) (*models.Booking, error)
	RejectApplicant(ctx context.Context, id, workerID string, farmer models.Actor) (*models.Requirement, error)
}
