package reviewRepo

import (
	"context"

	"eventra/models"
)

// ReviewRepository persists reviews together with the derived rating
// aggregates. Every mutating call recomputes the aggregate for each affected
// target inside the same transaction, so readers never observe a review set
// and an aggregate that disagree.
type ReviewRepository interface {
	GetByID(ctx context.Context, id string) (*models.Review, error)
	ListByTarget(ctx context.Context, kind models.RatingTarget, targetID string) ([]models.Review, error)
	// CreateWithAggregates inserts the review; the uniqueness constraint on
	// (user, provider) and (user, service) surfaces as ErrDuplicate.
	CreateWithAggregates(ctx context.Context, review *models.Review) error
	UpdateWithAggregates(ctx context.Context, review *models.Review) error
	DeleteWithAggregates(ctx context.Context, review *models.Review) error
	GetAggregate(ctx context.Context, kind models.RatingTarget, targetID string) (*models.RatingAggregate, error)
	// HasUserReview reports whether the user already reviewed the target.
	HasUserReview(ctx context.Context, userID string, kind models.RatingTarget, targetID string) (bool, error)
	EnsureIndexes() error
}
