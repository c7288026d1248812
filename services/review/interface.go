package review

import (
	"context"

	bookingRepo "eventra/database/repository/booking"
	reviewRepo "eventra/database/repository/review"
	"eventra/models"
	"eventra/utils"

	"github.com/go-redis/redis/v8"
)

// Service is the rating aggregator: it owns review admission (verification
// gated on delivered bookings, per-target uniqueness) and keeps each
// target's RatingAggregate equal to the mean of its current reviews.
type Service interface {
	SubmitReview(ctx context.Context, input models.ReviewInput) (*models.Review, error)
	EditReview(ctx context.Context, reviewID, actorID string, isAdmin bool, rating int, comment string) (*models.Review, error)
	DeleteReview(ctx context.Context, reviewID, actorID string, isAdmin bool) error
	GetRating(ctx context.Context, kind models.RatingTarget, targetID string) (*models.RatingAggregate, error)
	ListByTarget(ctx context.Context, kind models.RatingTarget, targetID string) ([]models.Review, error)
}

// DefaultReviewService implements Service. Review writes for a given target
// are serialized through Locks; the repository transaction keeps the review
// set and the stored aggregate consistent. Cache, when configured, holds
// warm aggregate reads and is invalidated on every mutation.
type DefaultReviewService struct {
	Repo     reviewRepo.ReviewRepository
	Bookings bookingRepo.BookingRepository
	Locks    *utils.KeyedMutex
	Cache    *redis.Client
}
