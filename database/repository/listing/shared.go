package listingRepo

import (
	"context"
	"fmt"
	"time"

	"cropconnect/database/repository"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

func setAvailability(ctx context.Context, coll *mongo.Collection, id string, from, to bool) error {
	ctx, cancel := repository.NewContext(ctx)
	defer cancel()

	res, err := coll.UpdateOne(ctx,
		bson.M{"id": id, "available": from},
		bson.M{"$set": bson.M{"available": to, "updatedAt": time.Now()}})
	if err != nil {
		return fmt.Errorf("failed to set availability of %s: %w", id, err)
	}
	if res.MatchedCount == 0 {
		return fmt.Errorf("listing %s availability is not %t: %w", id, from, repository.ErrStateChanged)
	}
	return nil
}

func addImage(ctx context.Context, coll *mongo.Collection, id, url string) error {
	ctx, cancel := repository.NewContext(ctx)
	defer cancel()

	res, err := coll.UpdateOne(ctx,
		bson.M{"id": id},
		bson.M{"$push": bson.M{"images": url}, "$set": bson.M{"updatedAt": time.Now()}})
	if err != nil {
		return fmt.Errorf("failed to add image to %s: %w", id, err)
	}
	if res.MatchedCount == 0 {
		return fmt.Errorf("listing %s: %w", id, repository.ErrNotFound)
	}
	return nil
}

func updateRating(ctx context.Context, coll *mongo.Collection, filter bson.M, rating float64, count int) error {
	ctx, cancel := repository.NewContext(ctx)
	defer cancel()

	_, err := coll.UpdateMany(ctx, filter,
		bson.M{"$set": bson.M{"rating": rating, "ratingCount": count}})
	if err != nil {
		return fmt.Errorf("failed to update listing rating: %w", err)
	}
	return nil
}

func ensureListingIndexes(coll *mongo.Collection, ownerField string) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	ownerIndex := options.Index()
	if ownerField == "workerId" {
		ownerIndex.SetUnique(true)
	}
	indexModels := []mongo.IndexModel{
		{Keys: bson.D{{Key: "id", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: ownerField, Value: 1}}, Options: ownerIndex},
		{Keys: bson.D{{Key: "location.district", Value: 1}, {Key: "available", Value: 1}}},
	}
	if _, err := coll.Indexes().CreateMany(ctx, indexModels); err != nil {
		return fmt.Errorf("failed to create %s indexes: %w", coll.Name(), err)
	}
	return nil
}
