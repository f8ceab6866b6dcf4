package notificationRepo

import (
	"context"
	"fmt"

	"cropconnect/database/repository"
	"cropconnect/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type MongoNotificationRepo struct {
	coll *mongo.Collection
}

func NewMongoNotificationRepo(db *mongo.Database) (NotificationRepository, error) {
	repo := &MongoNotificationRepo{coll: db.Collection("notifications")}
	if err := repo.ensureIndexes(); err != nil {
		return nil, err
	}
	return repo, nil
}

func (r *MongoNotificationRepo) Create(ctx context.Context, n *models.Notification) error {
	ctx, cancel := repository.NewContext(ctx)
	defer cancel()

	_, err := r.coll.InsertOne(ctx, n)
	return repository.MapError(err, "failed to create notification")
}

func (r *MongoNotificationRepo) List(ctx context.Context, recipientID string, unreadOnly bool, limit, offset int64) ([]models.Notification, error) {
	ctx, cancel := repository.NewContext(ctx)
	defer cancel()

	filter := bson.M{"recipientId": recipientID}
	if unreadOnly {
		filter["read"] = false
	}
	opts := options.Find().
		SetSort(bson.D{{Key: "createdAt", Value: -1}}).
		SetSkip(offset).
		SetLimit(limit)

	cursor, err := r.coll.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to list notifications: %w", err)
	}
	var list []models.Notification
	if err := cursor.All(ctx, &list); err != nil {
		return nil, fmt.Errorf("failed to decode notifications: %w", err)
	}
	return list, nil
}

func (r *MongoNotificationRepo) CountUnread(ctx context.Context, recipientID string) (int64, error) {
	ctx, cancel := repository.NewContext(ctx)
	defer cancel()

	n, err := r.coll.CountDocuments(ctx, bson.M{"recipientId": recipientID, "read": false})
	if err != nil {
		return 0, fmt.Errorf("failed to count unread notifications: %w", err)
	}
	return n, nil
}

func (r *MongoNotificationRepo) MarkRead(ctx context.Context, recipientID, id string) error {
	ctx, cancel := repository.NewContext(ctx)
	defer cancel()

	res, err := r.coll.UpdateOne(ctx,
		bson.M{"id": id, "recipientId": recipientID},
		bson.M{"$set": bson.M{"read": true}})
	if err != nil {
		return fmt.Errorf("failed to mark notification %s read: %w", id, err)
	}
	if res.MatchedCount == 0 {
		return fmt.Errorf("notification %s: %w", id, repository.ErrNotFound)
	}
	return nil
}

func (r *MongoNotificationRepo) MarkAllRead(ctx context.Context, recipientID string) (int64, error) {
	ctx, cancel := repository.NewContext(ctx)
	defer cancel()

	res, err := r.coll.UpdateMany(ctx,
		bson.M{"recipientId": recipientID, "read": false},
		bson.M{"$set": bson.M{"read": true}})
	if err != nil {
		return 0, fmt.Errorf("failed to mark notifications read: %w", err)
	}
	return res.ModifiedCount, nil
}

func (r *MongoNotificationRepo) Delete(ctx context.Context, recipientID, id string) error {
	ctx, cancel := repository.NewContext(ctx)
	defer cancel()

	res, err := r.coll.DeleteOne(ctx, bson.M{"id": id, "recipientId": recipientID})
	if err != nil {
		return fmt.Errorf("failed to delete notification %s: %w", id, err)
	}
	if res.DeletedCount == 0 {
		return fmt.Errorf("notification %s: %w", id, repository.ErrNotFound)
	}
	return nil
}
