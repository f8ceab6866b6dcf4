package bidRepo

import (
	"context"
	"fmt"
	"time"

	"cropconnect/database/repository"
	"cropconnect/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type MongoBidRepo struct {
	coll *mongo.Collection
}

func NewMongoBidRepo(db *mongo.Database) (BidRepository, error) {
	repo := &MongoBidRepo{coll: db.Collection("bids")}
	if err := repo.ensureIndexes(); err != nil {
		return nil, err
	}
	return repo, nil
}

func (r *MongoBidRepo) Create(ctx context.Context, bid *models.Bid) error {
	ctx, cancel := repository.NewContext(ctx)
	defer cancel()

	now := time.Now()
	bid.CreatedAt = now
	bid.UpdatedAt = now
	_, err := r.coll.InsertOne(ctx, bid)
	return repository.MapError(err, "failed to create bid")
}

func (r *MongoBidRepo) GetByID(ctx context.Context, id string) (*models.Bid, error) {
	return r.findOne(ctx, bson.M{"id": id}, "bid "+id)
}

func (r *MongoBidRepo) FindByRequirementAndBidder(ctx context.Context, requirementID, bidderID string) (*models.Bid, error) {
	filter := bson.M{"requirementId": requirementID, "bidderId": bidderID}
	return r.findOne(ctx, filter, "bid of "+bidderID+" on "+requirementID)
}

func (r *MongoBidRepo) findOne(ctx context.Context, filter bson.M, what string) (*models.Bid, error) {
	ctx, cancel := repository.NewContext(ctx)
	defer cancel()

	var bid models.Bid
	if err := r.coll.FindOne(ctx, filter).Decode(&bid); err != nil {
		return nil, repository.MapError(err, "failed to fetch "+what)
	}
	return &bid, nil
}

func (r *MongoBidRepo) ListByRequirement(ctx context.Context, requirementID string) ([]models.Bid, error) {
	return r.list(ctx, bson.M{"requirementId": requirementID})
}

func (r *MongoBidRepo) ListByFarmer(ctx context.Context, farmerID string) ([]models.Bid, error) {
	return r.list(ctx, bson.M{"farmerId": farmerID})
}

func (r *MongoBidRepo) ListByBidder(ctx context.Context, bidderID string) ([]models.Bid, error) {
	return r.list(ctx, bson.M{"bidderId": bidderID})
}

func (r *MongoBidRepo) list(ctx context.Context, filter bson.M) ([]models.Bid, error) {
	ctx, cancel := repository.NewContext(ctx)
	defer cancel()

	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})
	cursor, err := r.coll.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to list bids: %w", err)
	}
	var bids []models.Bid
	if err := cursor.All(ctx, &bids); err != nil {
		return nil, fmt.Errorf("failed to decode bids: %w", err)
	}
	return bids, nil
}

func (r *MongoBidRepo) TransitionStatus(ctx context.Context, id string, from, to models.BidStatus) error {
	ctx, cancel := repository.NewContext(ctx)
	defer cancel()

	filter := bson.M{"id": id, "status": from}
	update := bson.M{"$set": bson.M{"status": to, "updatedAt": time.Now()}}
	res, err := r.coll.UpdateOne(ctx, filter, update)
	if err != nil {
		return fmt.Errorf("failed to update bid %s: %w", id, err)
	}
	if res.MatchedCount == 0 {
		return fmt.Errorf("bid %s is no longer %s: %w", id, from, repository.ErrStateChanged)
	}
	return nil
}

func (r *MongoBidRepo) ResolvePending(ctx context.Context, requirementID, exceptBidID string, to models.BidStatus) ([]models.Bid, error) {
	ctx, cancel := repository.NewContext(ctx)
	defer cancel()

	filter := bson.M{
		"requirementId": requirementID,
		"status":        models.BidPending,
	}
	if exceptBidID != "" {
		filter["id"] = bson.M{"$ne": exceptBidID}
	}
	cursor, err := r.coll.Find(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to load pending bids of %s: %w", requirementID, err)
	}
	var pending []models.Bid
	if err := cursor.All(ctx, &pending); err != nil {
		return nil, fmt.Errorf("failed to decode pending bids of %s: %w", requirementID, err)
	}
	if len(pending) == 0 {
		return nil, nil
	}

	ids := make([]string, len(pending))
	for i, b := range pending {
		ids[i] = b.ID
	}
	now := time.Now()
	update := bson.M{"$set": bson.M{"status": to, "updatedAt": now}}
	_, err = r.coll.UpdateMany(ctx, bson.M{"id": bson.M{"$in": ids}, "status": models.BidPending}, update)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve pending bids of %s: %w", requirementID, err)
	}
	for i := range pending {
		pending[i].Status = to
		pending[i].UpdatedAt = now
	}
	return pending, nil
}
