package bidRepo

import (
	"context"

	"cropconnect/models"
)

// BidRepository defines persistence for tractor bids. A bidder holds at most one bid per
// requirement; Create reports repository.ErrDuplicate otherwise.
type BidRepository interface {
	Create(ctx context.Context, bid *models.Bid) error
	GetByID(ctx context.Context, id string) (*models.Bid, error)
	FindByRequirementAndBidder(ctx context.Context, requirementID, bidderID string) (*models.Bid, error)
	ListByRequirement(ctx context.Context, requirementID string) ([]models.Bid, error)
	ListByFarmer(ctx context.Context, farmerID string) ([]models.Bid, error)
	ListByBidder(ctx context.Context, bidderID string) ([]models.Bid, error)

	// TransitionStatus moves a bid from one status to another, or fails with repository.ErrStateChanged.
	TransitionStatus(ctx context.Context, id string, from, to models.BidStatus) error
	// ResolvePending moves every pending bid of a requirement except exceptBidID to status to and
	// returns the bids it moved.
	ResolvePending(ctx context.Context, requirementID, exceptBidID string, to models.BidStatus) ([]models.Bid, error)
}
