package listingRepo

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

type MongoTractorRepo struct {
	coll *mongo.Collection
}

func NewMongoTractorRepo(db *mongo.Database) (TractorRepository, error) {
	repo := &MongoTractorRepo{coll: db.Collection("tractor_services")}
	if err := ensureListingIndexes(repo.coll, "ownerId"); err != nil {
		return nil, err
	}
	return repo, nil
}

func (r *MongoTractorRepo) Create(ctx context.Context, svc *models.TractorService) error {
	ctx, cancel := repository.NewContext(ctx)
	defer cancel()

	now := time.Now()
	svc.CreatedAt = now
	svc.UpdatedAt = now
	_, err := r.coll.InsertOne(ctx, svc)
	return repository.MapError(err, "failed to create tractor listing")
}

func (r *MongoTractorRepo) GetByID(ctx context.Context, id string) (*models.TractorService, error) {
	ctx, cancel := repository.NewContext(ctx)
	defer cancel()

	var svc models.TractorService
	if err := r.coll.FindOne(ctx, bson.M{"id": id}).Decode(&svc); err != nil {
		return nil, repository.MapError(err, fmt.Sprintf("failed to fetch tractor listing %s", id))
	}
	return &svc, nil
}

func (r *MongoTractorRepo) Update(ctx context.Context, id string, in models.TractorInput) (*models.TractorService, error) {
	ctx, cancel := repository.NewContext(ctx)
	defer cancel()

	set := bson.M{
		"name":        in.Name,
		"model":       in.Model,
		"horsePower":  in.HorsePower,
		"workTypes":   in.WorkTypes,
		"ratePerAcre": in.RatePerAcre,
		"updatedAt":   time.Now(),
	}
	if in.Location.District != "" {
		set["location"] = in.Location
	}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var svc models.TractorService
	err := r.coll.FindOneAndUpdate(ctx, bson.M{"id": id}, bson.M{"$set": set}, opts).Decode(&svc)
	if err != nil {
		return nil, repository.MapError(err, fmt.Sprintf("failed to update tractor listing %s", id))
	}
	return &svc, nil
}

func (r *MongoTractorRepo) DeleteIfAvailable(ctx context.Context, id string) error {
	ctx, cancel := repository.NewContext(ctx)
	defer cancel()

	res, err := r.coll.DeleteOne(ctx, bson.M{"id": id, "available": true})
	if err != nil {
		return fmt.Errorf("failed to delete tractor listing %s: %w", id, err)
	}
	if res.DeletedCount == 0 {
		return fmt.Errorf("tractor listing %s: %w", id, repository.ErrStateChanged)
	}
	return nil
}

func (r *MongoTractorRepo) List(ctx context.Context, f models.ListingFilter) ([]models.TractorService, error) {
	ctx, cancel := repository.NewContext(ctx)
	defer cancel()

	filter := bson.M{}
	if f.District != "" {
		filter["location.district"] = repository.CaseInsensitiveContains(f.District)
	}
	if f.WorkType != "" {
		filter["workTypes"] = repository.CaseInsensitiveContains(f.WorkType)
	}
	if f.Available != nil {
		filter["available"] = *f.Available
	}
	opts := options.Find().SetSort(bson.D{{Key: "rating", Value: -1}, {Key: "createdAt", Value: -1}})

	cursor, err := r.coll.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to list tractor listings: %w", err)
	}
	var list []models.TractorService
	if err := cursor.All(ctx, &list); err != nil {
		return nil, fmt.Errorf("failed to decode tractor listings: %w", err)
	}
	return list, nil
}

func (r *MongoTractorRepo) SetAvailability(ctx context.Context, id string, from, to bool) error {
	return setAvailability(ctx, r.coll, id, from, to)
}

func (r *MongoTractorRepo) AddImage(ctx context.Context, id, url string) error {
	return addImage(ctx, r.coll, id, url)
}

func (r *MongoTractorRepo) UpdateRatingByOwner(ctx context.Context, ownerID string, rating float64, count int) error {
	return updateRating(ctx, r.coll, bson.M{"ownerId": ownerID}, rating, count)
}
