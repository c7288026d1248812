package reviewRepo

import (
	"context"
	"errors"
	"fmt"

	"eventra/database"
	"eventra/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// ErrNotFound is returned when no review exists for an id.
var ErrNotFound = errors.New("review not found")

// ErrDuplicate is returned when the (user, target) pair already has a review.
var ErrDuplicate = errors.New("review already exists for this target")

// MongoReviewRepo implements ReviewRepository using MongoDB.
type MongoReviewRepo struct {
	reviewColl    *mongo.Collection
	aggregateColl *mongo.Collection
}

// NewMongoReviewRepo constructs a new instance of MongoReviewRepo.
func NewMongoReviewRepo() *MongoReviewRepo {
	db := database.DB()
	return &MongoReviewRepo{
		reviewColl:    db.Collection("reviews"),
		aggregateColl: db.Collection("rating_aggregates"),
	}
}

func (repo *MongoReviewRepo) GetByID(ctx context.Context, id string) (*models.Review, error) {
	var review models.Review
	if err := repo.reviewColl.FindOne(ctx, bson.M{"id": id}).Decode(&review); err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("error fetching review %s: %w", id, err)
	}
	return &review, nil
}

func (repo *MongoReviewRepo) ListByTarget(ctx context.Context, kind models.RatingTarget, targetID string) ([]models.Review, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})
	cursor, err := repo.reviewColl.Find(ctx, targetFilter(kind, targetID), opts)
	if err != nil {
		return nil, fmt.Errorf("error finding reviews: %w", err)
	}
	defer cursor.Close(ctx)

	var reviews []models.Review
	if err := cursor.All(ctx, &reviews); err != nil {
		return nil, fmt.Errorf("error decoding reviews: %w", err)
	}
	return reviews, nil
}

func targetFilter(kind models.RatingTarget, targetID string) bson.M {
	if kind == models.TargetService {
		return bson.M{"service_id": targetID}
	}
	return bson.M{"provider_id": targetID}
}

func (repo *MongoReviewRepo) HasUserReview(ctx context.Context, userID string, kind models.RatingTarget, targetID string) (bool, error) {
	filter := targetFilter(kind, targetID)
	filter["user_id"] = userID
	count, err := repo.reviewColl.CountDocuments(ctx, filter, options.Count().SetLimit(1))
	if err != nil {
		return false, fmt.Errorf("error checking for existing review: %w", err)
	}
	return count > 0, nil
}

func (repo *MongoReviewRepo) GetAggregate(ctx context.Context, kind models.RatingTarget, targetID string) (*models.RatingAggregate, error) {
	filter := bson.M{"target_kind": kind, "target_id": targetID}
	var agg models.RatingAggregate
	if err := repo.aggregateColl.FindOne(ctx, filter).Decode(&agg); err != nil {
		if err == mongo.ErrNoDocuments {
			// No reviews yet: the aggregate is defined as (null, 0).
			return &models.RatingAggregate{TargetID: targetID, TargetKind: kind}, nil
		}
		return nil, fmt.Errorf("error fetching rating aggregate for %s %s: %w", kind, targetID, err)
	}
	return &agg, nil
}
