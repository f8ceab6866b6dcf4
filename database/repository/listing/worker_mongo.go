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

type MongoWorkerRepo struct {
	coll *mongo.Collection
}

func NewMongoWorkerRepo(db *mongo.Database) (WorkerRepository, error) {
	repo := &MongoWorkerRepo{coll: db.Collection("worker_services")}
	if err := ensureListingIndexes(repo.coll, "workerId"); err != nil {
		return nil, err
	}
	return repo, nil
}

// Upsert creates the worker's listing on first call and updates its editable fields afterwards.
func (r *MongoWorkerRepo) Upsert(ctx context.Context, svc *models.WorkerService) (*models.WorkerService, error) {
	ctx, cancel := repository.NewContext(ctx)
	defer cancel()

	now := time.Now()
	set := bson.M{
		"skills":          svc.Skills,
		"wagePerDay":      svc.WagePerDay,
		"gender":          svc.Gender,
		"experienceYears": svc.ExperienceYears,
		"location":        svc.Location,
		"available":       svc.Available,
		"updatedAt":       now,
	}
	update := bson.M{
		"$set": set,
		"$setOnInsert": bson.M{
			"id":          svc.ID,
			"rating":      0.0,
			"ratingCount": 0,
			"createdAt":   now,
		},
	}
	opts := options.FindOneAndUpdate().SetUpsert(true).SetReturnDocument(options.After)

	var out models.WorkerService
	err := r.coll.FindOneAndUpdate(ctx, bson.M{"workerId": svc.WorkerID}, update, opts).Decode(&out)
	if err != nil {
		return nil, repository.MapError(err, "failed to save worker listing")
	}
	return &out, nil
}

func (r *MongoWorkerRepo) GetByID(ctx context.Context, id string) (*models.WorkerService, error) {
	return r.findOne(ctx, bson.M{"id": id}, "worker listing "+id)
}

func (r *MongoWorkerRepo) GetByWorkerID(ctx context.Context, workerID string) (*models.WorkerService, error) {
	return r.findOne(ctx, bson.M{"workerId": workerID}, "worker listing of "+workerID)
}

func (r *MongoWorkerRepo) findOne(ctx context.Context, filter bson.M, what string) (*models.WorkerService, error) {
	ctx, cancel := repository.NewContext(ctx)
	defer cancel()

	var svc models.WorkerService
	if err := r.coll.FindOne(ctx, filter).Decode(&svc); err != nil {
		return nil, repository.MapError(err, "failed to fetch "+what)
	}
	return &svc, nil
}

func (r *MongoWorkerRepo) List(ctx context.Context, f models.ListingFilter) ([]models.WorkerService, error) {
	ctx, cancel := repository.NewContext(ctx)
	defer cancel()

	filter := bson.M{}
	if f.District != "" {
		filter["location.district"] = repository.CaseInsensitiveContains(f.District)
	}
	if f.Skill != "" {
		filter["skills"] = repository.CaseInsensitiveContains(f.Skill)
	}
	if f.Gender != "" {
		filter["gender"] = f.Gender
	}
	if f.Available != nil {
		filter["available"] = *f.Available
	}
	opts := options.Find().SetSort(bson.D{{Key: "rating", Value: -1}, {Key: "createdAt", Value: -1}})

	cursor, err := r.coll.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to list worker listings: %w", err)
	}
	var list []models.WorkerService
	if err := cursor.All(ctx, &list); err != nil {
		return nil, fmt.Errorf("failed to decode worker listings: %w", err)
	}
	return list, nil
}

func (r *MongoWorkerRepo) SetAvailability(ctx context.Context, id string, from, to bool) error {
	return setAvailability(ctx, r.coll, id, from, to)
}

func (r *MongoWorkerRepo) AddImage(ctx context.Context, id, url string) error {
	return addImage(ctx, r.coll, id, url)
}

func (r *MongoWorkerRepo) UpdateRatingByWorker(ctx context.Context, workerID string, rating float64, count int) error {
	return updateRating(ctx, r.coll, bson.M{"workerId": workerID}, rating, count)
}
