package requirementRepo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"cropconnect/database/repository"
	"cropconnect/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type MongoRequirementRepo struct {
	coll *mongo.Collection
}

func NewMongoRequirementRepo(db *mongo.Database) (RequirementRepository, error) {
	repo := &MongoRequirementRepo{coll: db.Collection("requirements")}
	if err := repo.ensureIndexes(); err != nil {
		return nil, err
	}
	return repo, nil
}

func (r *MongoRequirementRepo) Create(ctx context.Context, req *models.Requirement) error {
	ctx, cancel := repository.NewContext(ctx)
	defer cancel()

	now := time.Now()
	req.CreatedAt = now
	req.UpdatedAt = now
	_, err := r.coll.InsertOne(ctx, req)
	return repository.MapError(err, "failed to create requirement")
}

func (r *MongoRequirementRepo) GetByID(ctx context.Context, id string) (*models.Requirement, error) {
	ctx, cancel := repository.NewContext(ctx)
	defer cancel()

	var req models.Requirement
	if err := r.coll.FindOne(ctx, bson.M{"id": id}).Decode(&req); err != nil {
		return nil, repository.MapError(err, fmt.Sprintf("failed to fetch requirement %s", id))
	}
	return &req, nil
}

func (r *MongoRequirementRepo) List(ctx context.Context, f models.RequirementFilter) ([]models.Requirement, error) {
	ctx, cancel := repository.NewContext(ctx)
	defer cancel()

	filter := bson.M{}
	if f.Kind != "" {
		filter["kind"] = f.Kind
	}
	if f.WorkType != "" {
		filter["workType"] = repository.CaseInsensitiveContains(f.WorkType)
	}
	if f.District != "" {
		filter["location.district"] = repository.CaseInsensitiveContains(f.District)
	}
	if f.State != "" {
		filter["location.state"] = repository.CaseInsensitiveContains(f.State)
	}
	if f.Status != "" {
		filter["status"] = f.Status
	}
	if f.FarmerID != "" {
		filter["farmerId"] = f.FarmerID
	}
	if len(f.Genders) > 0 {
		filter["preferredGender"] = bson.M{"$in": f.Genders}
	}

	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})
	cursor, err := r.coll.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to list requirements: %w", err)
	}
	var reqs []models.Requirement
	if err := cursor.All(ctx, &reqs); err != nil {
		return nil, fmt.Errorf("failed to decode requirements: %w", err)
	}
	return reqs, nil
}

func (r *MongoRequirementRepo) ReserveBid(ctx context.Context, id string) error {
	filter := bson.M{"id": id, "status": models.RequirementOpen}
	update := bson.M{
		"$inc": bson.M{"bidCount": 1},
		"$set": bson.M{"updatedAt": time.Now()},
	}
	return r.conditionalUpdate(ctx, filter, update, id)
}

func (r *MongoRequirementRepo) Accept(ctx context.Context, id, acceptedBy string, at time.Time) error {
	filter := bson.M{"id": id, "status": models.RequirementOpen}
	update := bson.M{"$set": bson.M{
		"status":     models.RequirementAccepted,
		"acceptedBy": acceptedBy,
		"acceptedAt": at,
		"updatedAt":  at,
	}}
	return r.conditionalUpdate(ctx, filter, update, id)
}

func (r *MongoRequirementRepo) SetStatus(ctx context.Context, id string, from []models.RequirementStatus, to models.RequirementStatus) error {
	filter := bson.M{"id": id, "status": bson.M{"$in": from}}
	update := bson.M{"$set": bson.M{"status": to, "updatedAt": time.Now()}}
	return r.conditionalUpdate(ctx, filter, update, id)
}

func (r *MongoRequirementRepo) DeleteIfOpen(ctx context.Context, id string) error {
	ctx, cancel := repository.NewContext(ctx)
	defer cancel()

	filter := bson.M{
		"id":         id,
		"status":     models.RequirementOpen,
		"hiredCount": bson.M{"$in": bson.A{nil, 0}},
	}
	res, err := r.coll.DeleteOne(ctx, filter)
	if err != nil {
		return fmt.Errorf("failed to delete requirement %s: %w", id, err)
	}
	if res.DeletedCount == 0 {
		return fmt.Errorf("requirement %s: %w", id, repository.ErrStateChanged)
	}
	return nil
}

func (r *MongoRequirementRepo) AddApplicant(ctx context.Context, id string, applicant models.Applicant) error {
	filter := bson.M{
		"id":                  id,
		"status":              models.RequirementOpen,
		"applicants.workerId": bson.M{"$ne": applicant.WorkerID},
	}
	update := bson.M{
		"$push": bson.M{"applicants": applicant},
		"$set":  bson.M{"updatedAt": time.Now()},
	}
	return r.conditionalUpdate(ctx, filter, update, id)
}

func (r *MongoRequirementRepo) SetApplicantStatus(ctx context.Context, id, workerID string, from, to models.ApplicationStatus, bookingID string) error {
	filter := bson.M{
		"id": id,
		"applicants": bson.M{"$elemMatch": bson.M{
			"workerId": workerID,
			"status":   from,
		}},
	}
	set := bson.M{"applicants.$.status": to, "updatedAt": time.Now()}
	if bookingID != "" {
		set["applicants.$.bookingId"] = bookingID
	}
	return r.conditionalUpdate(ctx, filter, bson.M{"$set": set}, id)
}

func (r *MongoRequirementRepo) HireApplicant(ctx context.Context, id, workerID, bookingID string) (*models.Requirement, error) {
	ctx, cancel := repository.NewContext(ctx)
	defer cancel()

	filter := bson.M{
		"id":     id,
		"status": models.RequirementOpen,
		"applicants": bson.M{"$elemMatch": bson.M{
			"workerId": workerID,
			"status":   models.ApplicationPending,
		}},
		"$expr": bson.M{"$lt": bson.A{
			bson.M{"$ifNull": bson.A{"$hiredCount", 0}},
			bson.M{"$max": bson.A{"$workersNeeded", 1}},
		}},
	}
	update := bson.M{
		"$set": bson.M{
			"applicants.$.status":    models.ApplicationAccepted,
			"applicants.$.bookingId": bookingID,
			"updatedAt":              time.Now(),
		},
		"$inc": bson.M{"hiredCount": 1},
	}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var req models.Requirement
	err := r.coll.FindOneAndUpdate(ctx, filter, update, opts).Decode(&req)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, fmt.Errorf("requirement %s: %w", id, repository.ErrStateChanged)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to hire applicant on requirement %s: %w", id, err)
	}
	return &req, nil
}

func (r *MongoRequirementRepo) RejectPendingApplicants(ctx context.Context, id, exceptWorkerID string) ([]string, error) {
	ctx, cancel := repository.NewContext(ctx)
	defer cancel()

	update := bson.M{"$set": bson.M{"applicants.$[a].status": models.ApplicationRejected}}
	opts := options.FindOneAndUpdate().
		SetReturnDocument(options.Before).
		SetArrayFilters(options.ArrayFilters{
			Filters: []interface{}{bson.M{
				"a.status":   models.ApplicationPending,
				"a.workerId": bson.M{"$ne": exceptWorkerID},
			}},
		})

	var before models.Requirement
	if err := r.coll.FindOneAndUpdate(ctx, bson.M{"id": id}, update, opts).Decode(&before); err != nil {
		return nil, repository.MapError(err, fmt.Sprintf("failed to reject applicants of requirement %s", id))
	}
	var rejected []string
	for _, a := range before.Applicants {
		if a.Status == models.ApplicationPending && a.WorkerID != exceptWorkerID {
			rejected = append(rejected, a.WorkerID)
		}
	}
	return rejected, nil
}

func (r *MongoRequirementRepo) conditionalUpdate(ctx context.Context, filter, update bson.M, id string) error {
	ctx, cancel := repository.NewContext(ctx)
	defer cancel()

	res, err := r.coll.UpdateOne(ctx, filter, update)
	if err != nil {
		return repository.MapError(err, fmt.Sprintf("failed to update requirement %s", id))
	}
	if res.MatchedCount == 0 {
		return fmt.Errorf("requirement %s: %w", id, repository.ErrStateChanged)
	}
	return nil
}
