package bid

import (
	"context"

	"cropconnect/models"
)

// BidService is the ledger of tractor owners' proposals. Accepting a bid is the only way a
// tractor requirement turns into a booking.
type BidService interface {
	Place(ctx context.Context, bidder models.Actor, terms models.BidTerms) (*models.Bid, error)
	Accept(ctx context.Context, bidID string, farmer models.Actor) (*AcceptResult, error)
	Reject(ctx context.Context, bidID string, farmer models.Actor) (*models.Bid, error)
	Withdraw(ctx context.Context, bidID string, bidder models.Actor) (*models.Bid, error)

	ListForFarmer(ctx context.Context, farmer models.Actor) ([]models.Bid, error)
	ListMine(ctx context.Context, bidder models.Actor) ([]models.Bid, error)
	ListForRequirement(ctx context.Context, requirementID string, farmer models.Actor) ([]models.Bid, error)
}

// AcceptResult is the accepted bid and the booking it produced.
type AcceptResult struct {
	Bid     *models.Bid     `json:"bid"`
	Booking *models.Booking `json:"booking"`
}
