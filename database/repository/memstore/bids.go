package memstore

import (
	"context"
	"fmt"
	"time"

	"cropconnect/database/repository"
	bidRepo "cropconnect/database/repository/bid"
	"cropconnect/models"
)

type bids struct{ s *Store }

func (s *Store) Bids() bidRepo.BidRepository { return bids{s} }

func (r bids) Create(_ context.Context, bid *models.Bid) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	for _, b := range r.s.bids {
		if b.ID == bid.ID || (b.RequirementID == bid.RequirementID && b.BidderID == bid.BidderID) {
			return fmt.Errorf("bid of %s on %s: %w", bid.BidderID, bid.RequirementID, repository.ErrDuplicate)
		}
	}
	now := time.Now()
	bid.CreatedAt, bid.UpdatedAt = now, now
	r.s.bids = append(r.s.bids, *bid)
	return nil
}

func (r bids) find(match func(models.Bid) bool) (*models.Bid, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	for _, b := range r.s.bids {
		if match(b) {
			out := b
			return &out, nil
		}
	}
	return nil, fmt.Errorf("bid: %w", repository.ErrNotFound)
}

func (r bids) GetByID(_ context.Context, id string) (*models.Bid, error) {
	return r.find(func(b models.Bid) bool { return b.ID == id })
}

func (r bids) FindByRequirementAndBidder(_ context.Context, requirementID, bidderID string) (*models.Bid, error) {
	return r.find(func(b models.Bid) bool {
		return b.RequirementID == requirementID && b.BidderID == bidderID
	})
}

func (r bids) list(match func(models.Bid) bool) []models.Bid {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	var out []models.Bid
	for i := len(r.s.bids) - 1; i >= 0; i-- {
		if match(r.s.bids[i]) {
			out = append(out, r.s.bids[i])
		}
	}
	return out
}

func (r bids) ListByRequirement(_ context.Context, requirementID string) ([]models.Bid, error) {
	return r.list(func(b models.Bid) bool { return b.RequirementID == requirementID }), nil
}

func (r bids) ListByFarmer(_ context.Context, farmerID string) ([]models.Bid, error) {
	return r.list(func(b models.Bid) bool { return b.FarmerID == farmerID }), nil
}

func (r bids) ListByBidder(_ context.Context, bidderID string) ([]models.Bid, error) {
	return r.list(func(b models.Bid) bool { return b.BidderID == bidderID }), nil
}

func (r bids) TransitionStatus(_ context.Context, id string, from, to models.BidStatus) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	for i := range r.s.bids {
		b := &r.s.bids[i]
		if b.ID == id && b.Status == from {
			b.Status = to
			b.UpdatedAt = time.Now()
			return nil
		}
	}
	return fmt.Errorf("bid %s is no longer %s: %w", id, from, repository.ErrStateChanged)
}

func (r bids) ResolvePending(_ context.Context, requirementID, exceptBidID string, to models.BidStatus) ([]models.Bid, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	var moved []models.Bid
	for i := range r.s.bids {
		b := &r.s.bids[i]
		if b.RequirementID == requirementID && b.Status == models.BidPending && b.ID != exceptBidID {
			b.Status = to
			b.UpdatedAt = time.Now()
			moved = append(moved, *b)
		}
	}
	return moved, nil
}
