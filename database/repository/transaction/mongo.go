package transactionRepo

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

type MongoTransactionRepo struct {
	coll *mongo.Collection
}

func NewMongoTransactionRepo(db *mongo.Database) (TransactionRepository, error) {
	repo := &MongoTransactionRepo{coll: db.Collection("transactions")}
	if err := repo.ensureIndexes(); err != nil {
		return nil, err
	}
	return repo, nil
}

func (r *MongoTransactionRepo) Create(ctx context.Context, txn *models.Transaction) error {
	ctx, cancel := repository.NewContext(ctx)
	defer cancel()

	now := time.Now()
	txn.CreatedAt = now
	txn.UpdatedAt = now
	_, err := r.coll.InsertOne(ctx, txn)
	return repository.MapError(err, "failed to create transaction")
}

func (r *MongoTransactionRepo) GetByID(ctx context.Context, id string) (*models.Transaction, error) {
	return r.findOne(ctx, bson.M{"id": id}, "transaction "+id)
}

func (r *MongoTransactionRepo) GetByOrderID(ctx context.Context, orderID string) (*models.Transaction, error) {
	return r.findOne(ctx, bson.M{"gatewayOrderId": orderID}, "transaction for order "+orderID)
}

func (r *MongoTransactionRepo) findOne(ctx context.Context, filter bson.M, what string) (*models.Transaction, error) {
	ctx, cancel := repository.NewContext(ctx)
	defer cancel()

	var txn models.Transaction
	if err := r.coll.FindOne(ctx, filter).Decode(&txn); err != nil {
		return nil, repository.MapError(err, "failed to fetch "+what)
	}
	return &txn, nil
}

func (r *MongoTransactionRepo) ListByUser(ctx context.Context, userID string) ([]models.Transaction, error) {
	filter := bson.M{"$or": []bson.M{{"payerId": userID}, {"payeeId": userID}}}
	return r.list(ctx, filter)
}

func (r *MongoTransactionRepo) ListByBooking(ctx context.Context, bookingID string) ([]models.Transaction, error) {
	return r.list(ctx, bson.M{"bookingId": bookingID})
}

func (r *MongoTransactionRepo) list(ctx context.Context, filter bson.M) ([]models.Transaction, error) {
	ctx, cancel := repository.NewContext(ctx)
	defer cancel()

	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})
	cursor, err := r.coll.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to list transactions: %w", err)
	}
	var txns []models.Transaction
	if err := cursor.All(ctx, &txns); err != nil {
		return nil, fmt.Errorf("failed to decode transactions: %w", err)
	}
	return txns, nil
}

func (r *MongoTransactionRepo) Complete(ctx context.Context, id, paymentID, signature string, at time.Time) (*models.Transaction, error) {
	ctx, cancel := repository.NewContext(ctx)
	defer cancel()

	filter := bson.M{"id": id, "status": models.TransactionPending}
	update := bson.M{"$set": bson.M{
		"status":           models.TransactionCompleted,
		"gatewayPaymentId": paymentID,
		"gatewaySignature": signature,
		"completedAt":      at,
		"updatedAt":        at,
	}}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var txn models.Transaction
	err := r.coll.FindOneAndUpdate(ctx, filter, update, opts).Decode(&txn)
	if err == mongo.ErrNoDocuments {
		return nil, fmt.Errorf("transaction %s: %w", id, repository.ErrStateChanged)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to complete transaction %s: %w", id, err)
	}
	return &txn, nil
}
