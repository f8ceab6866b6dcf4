package bookingRepo

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

type MongoBookingRepo struct {
	coll *mongo.Collection
}

func NewMongoBookingRepo(db *mongo.Database) (BookingRepository, error) {
	repo := &MongoBookingRepo{coll: db.Collection("bookings")}
	if err := repo.ensureIndexes(); err != nil {
		return nil, err
	}
	return repo, nil
}

func (r *MongoBookingRepo) Create(ctx context.Context, booking *models.Booking) error {
	ctx, cancel := repository.NewContext(ctx)
	defer cancel()

	now := time.Now()
	booking.CreatedAt = now
	booking.UpdatedAt = now
	_, err := r.coll.InsertOne(ctx, booking)
	return repository.MapError(err, "failed to create booking")
}

func (r *MongoBookingRepo) GetByID(ctx context.Context, id string) (*models.Booking, error) {
	ctx, cancel := repository.NewContext(ctx)
	defer cancel()

	var booking models.Booking
	if err := r.coll.FindOne(ctx, bson.M{"id": id}).Decode(&booking); err != nil {
		return nil, repository.MapError(err, fmt.Sprintf("failed to fetch booking %s", id))
	}
	return &booking, nil
}

func (r *MongoBookingRepo) ListByFarmer(ctx context.Context, farmerID string) ([]models.Booking, error) {
	return r.list(ctx, bson.M{"farmerId": farmerID})
}

func (r *MongoBookingRepo) ListByProvider(ctx context.Context, providerID string) ([]models.Booking, error) {
	return r.list(ctx, bson.M{"providerId": providerID})
}

func (r *MongoBookingRepo) ListByRequirement(ctx context.Context, requirementID string) ([]models.Booking, error) {
	return r.list(ctx, bson.M{"requirementId": requirementID})
}

func (r *MongoBookingRepo) list(ctx context.Context, filter bson.M) ([]models.Booking, error) {
	ctx, cancel := repository.NewContext(ctx)
	defer cancel()

	opts := options.Find().SetSort(bson.D{{Key: "date", Value: -1}})
	cursor, err := r.coll.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to list bookings: %w", err)
	}
	var bookings []models.Booking
	if err := cursor.All(ctx, &bookings); err != nil {
		return nil, fmt.Errorf("failed to decode bookings: %w", err)
	}
	return bookings, nil
}

func (r *MongoBookingRepo) TransitionStatus(ctx context.Context, id string, from []models.BookingStatus, to models.BookingStatus, actorID string, at time.Time) (*models.Booking, error) {
	set := bson.M{"status": to, "updatedAt": at}
	switch to {
	case models.BookingCompleted:
		set["completedAt"] = at
	case models.BookingCancelled:
		set["cancelledAt"] = at
		set["cancelledBy"] = actorID
	}
	filter := bson.M{"id": id, "status": bson.M{"$in": from}}
	return r.findAndUpdate(ctx, filter, bson.M{"$set": set}, id)
}

func (r *MongoBookingRepo) MarkPaid(ctx context.Context, id string) (*models.Booking, error) {
	filter := bson.M{
		"id":            id,
		"status":        models.BookingCompleted,
		"paymentStatus": models.PaymentPending,
	}
	update := bson.M{"$set": bson.M{"paymentStatus": models.PaymentPaid, "updatedAt": time.Now()}}
	return r.findAndUpdate(ctx, filter, update, id)
}

func (r *MongoBookingRepo) findAndUpdate(ctx context.Context, filter, update bson.M, id string) (*models.Booking, error) {
	ctx, cancel := repository.NewContext(ctx)
	defer cancel()

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var booking models.Booking
	err := r.coll.FindOneAndUpdate(ctx, filter, update, opts).Decode(&booking)
	if err == mongo.ErrNoDocuments {
		return nil, fmt.Errorf("booking %s: %w", id, repository.ErrStateChanged)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to update booking %s: %w", id, err)
	}
	return &booking, nil
}
