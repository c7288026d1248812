package reviewRepo

import (
	"context"
	"fmt"
	"math"
	"time"

	"eventra/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// CreateWithAggregates inserts the review and recomputes the aggregates for
// its targets in one transaction.
func (repo *MongoReviewRepo) CreateWithAggregates(ctx context.Context, review *models.Review) error {
	return repo.withAggregates(ctx, review, func(sc mongo.SessionContext) error {
		if _, err := repo.reviewColl.InsertOne(sc, review); err != nil {
			if mongo.IsDuplicateKeyError(err) {
				return ErrDuplicate
			}
			return fmt.Errorf("insert review failed: %w", err)
		}
		return nil
	})
}

// UpdateWithAggregates replaces the review's mutable fields and recomputes
// the aggregates for its targets in one transaction.
func (repo *MongoReviewRepo) UpdateWithAggregates(ctx context.Context, review *models.Review) error {
	return repo.withAggregates(ctx, review, func(sc mongo.SessionContext) error {
		update := bson.M{"$set": bson.M{
			"rating":     review.Rating,
			"comment":    review.Comment,
			"updated_at": review.UpdatedAt,
		}}
		res, err := repo.reviewColl.UpdateOne(sc, bson.M{"id": review.ID}, update)
		if err != nil {
			return fmt.Errorf("update review failed: %w", err)
		}
		if res.MatchedCount == 0 {
			return ErrNotFound
		}
		return nil
	})
}

// DeleteWithAggregates removes the review and recomputes the aggregates for
// its targets in one transaction.
func (repo *MongoReviewRepo) DeleteWithAggregates(ctx context.Context, review *models.Review) error {
	return repo.withAggregates(ctx, review, func(sc mongo.SessionContext) error {
		res, err := repo.reviewColl.DeleteOne(sc, bson.M{"id": review.ID})
		if err != nil {
			return fmt.Errorf("delete review failed: %w", err)
		}
		if res.DeletedCount == 0 {
			return ErrNotFound
		}
		return nil
	})
}

// withAggregates runs the review mutation and the aggregate recomputation
// for every affected target as a single transaction.
func (repo *MongoReviewRepo) withAggregates(ctx context.Context, review *models.Review, mutate func(mongo.SessionContext) error) error {
	client := repo.reviewColl.Database().Client()
	sess, err := client.StartSession()
	if err != nil {
		return fmt.Errorf("could not start mongo session: %w", err)
	}
	defer sess.EndSession(ctx)

	var sentinel error

	txnFn := func(sc mongo.SessionContext) error {
		if err := mutate(sc); err != nil {
			if err == ErrDuplicate || err == ErrNotFound {
				sentinel = err
			}
			return err
		}
		if review.ProviderID != "" {
			if err := repo.recomputeAggregate(sc, models.TargetProvider, review.ProviderID); err != nil {
				return err
			}
		}
		if review.ServiceID != "" {
			if err := repo.recomputeAggregate(sc, models.TargetService, review.ServiceID); err != nil {
				return err
			}
		}
		return nil
	}

	if err := mongo.WithSession(ctx, sess, func(sc mongo.SessionContext) error {
		if err := sc.StartTransaction(); err != nil {
			return err
		}
		if err := txnFn(sc); err != nil {
			_ = sc.AbortTransaction(sc)
			return err
		}
		return sc.CommitTransaction(sc)
	}); err != nil {
		if sentinel != nil {
			return sentinel
		}
		return fmt.Errorf("review transaction failed: %w", err)
	}

	return nil
}

// recomputeAggregate refetches the full rating set for the target and
// rewrites the stored aggregate. Zero reviews resets to (null, 0).
func (repo *MongoReviewRepo) recomputeAggregate(sc mongo.SessionContext, kind models.RatingTarget, targetID string) error {
	pipeline := mongo.Pipeline{
		bson.D{{Key: "$match", Value: targetFilter(kind, targetID)}},
		bson.D{{Key: "$group", Value: bson.D{
			{Key: "_id", Value: nil},
			{Key: "avg", Value: bson.D{{Key: "$avg", Value: "$rating"}}},
			{Key: "count", Value: bson.D{{Key: "$sum", Value: 1}}},
		}}},
	}
	cursor, err := repo.reviewColl.Aggregate(sc, pipeline)
	if err != nil {
		return fmt.Errorf("aggregate ratings failed: %w", err)
	}
	defer cursor.Close(sc)

	agg := models.RatingAggregate{
		TargetID:   targetID,
		TargetKind: kind,
		UpdatedAt:  time.Now().UTC(),
	}
	if cursor.Next(sc) {
		var row struct {
			Avg   float64 `bson:"avg"`
			Count int64   `bson:"count"`
		}
		if err := cursor.Decode(&row); err != nil {
			return fmt.Errorf("decode rating aggregate failed: %w", err)
		}
		if row.Count > 0 {
			rounded := math.Round(row.Avg*10) / 10
			agg.AverageRating = &rounded
			agg.ReviewCount = row.Count
		}
	}

	filter := bson.M{"target_kind": kind, "target_id": targetID}
	opts := options.Replace().SetUpsert(true)
	if _, err := repo.aggregateColl.ReplaceOne(sc, filter, agg, opts); err != nil {
		return fmt.Errorf("store rating aggregate failed: %w", err)
	}
	return nil
}
