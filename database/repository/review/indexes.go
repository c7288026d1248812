package reviewRepo

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// EnsureIndexes creates the necessary indexes on the reviews and aggregates
// collections. The partial unique indexes enforce at most one review per
// (user, provider) and per (user, service) pair at the storage layer.
func (repo *MongoReviewRepo) EnsureIndexes() error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	reviewIndexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "id", Value: 1}},
			Options: options.Index().SetUnique(true).SetName("unique_id"),
		},
		{
			Keys: bson.D{{Key: "user_id", Value: 1}, {Key: "provider_id", Value: 1}},
			Options: options.Index().SetUnique(true).SetName("unique_user_provider").
				SetPartialFilterExpression(bson.M{"provider_id": bson.M{"$exists": true}}),
		},
		{
			Keys: bson.D{{Key: "user_id", Value: 1}, {Key: "service_id", Value: 1}},
			Options: options.Index().SetUnique(true).SetName("unique_user_service").
				SetPartialFilterExpression(bson.M{"service_id": bson.M{"$exists": true}}),
		},
		{
			Keys:    bson.D{{Key: "provider_id", Value: 1}, {Key: "created_at", Value: -1}},
			Options: options.Index().SetName("provider_created_idx"),
		},
		{
			Keys:    bson.D{{Key: "service_id", Value: 1}, {Key: "created_at", Value: -1}},
			Options: options.Index().SetName("service_created_idx"),
		},
	}
	if _, err := repo.reviewColl.Indexes().CreateMany(ctx, reviewIndexes); err != nil {
		return fmt.Errorf("failed to create review indexes: %w", err)
	}

	aggregateIndexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "target_kind", Value: 1}, {Key: "target_id", Value: 1}},
			Options: options.Index().SetUnique(true).SetName("unique_target"),
		},
	}
	if _, err := repo.aggregateColl.Indexes().CreateMany(ctx, aggregateIndexes); err != nil {
		return fmt.Errorf("failed to create rating aggregate indexes: %w", err)
	}
	return nil
}
