package review

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	reviewRepo "eventra/database/repository/review"
	"eventra/models"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

const aggregateCacheTTL = 5 * time.Minute

// SubmitReview validates and persists a new review, recomputing the
// aggregates for every named target in the same transaction.
func (s *DefaultReviewService) SubmitReview(ctx context.Context, input models.ReviewInput) (*models.Review, error) {
	if input.Rating < 1 || input.Rating > 5 {
		return nil, &ReviewError{Code: CodeInvalidRating, Field: "rating", Message: "rating must be between 1 and 5"}
	}
	if input.ProviderID == "" && input.ServiceID == "" {
		return nil, &ReviewError{Code: CodeMissingTarget, Field: "providerId", Message: "a provider or service target is required"}
	}

	now := time.Now().UTC()
	r := &models.Review{
		ID:         uuid.New().String(),
		UserID:     input.UserID,
		ProviderID: input.ProviderID,
		ServiceID:  input.ServiceID,
		BookingID:  input.BookingID,
		Rating:     input.Rating,
		Comment:    input.Comment,
		IsVerified: s.isVerified(ctx, input),
		CreatedAt:  now,
		UpdatedAt:  now,
	}

	keys := targetKeys(r)
	s.Locks.LockAll(keys)
	defer s.Locks.UnlockAll(keys)

	if err := s.Repo.CreateWithAggregates(ctx, r); err != nil {
		if err == reviewRepo.ErrDuplicate {
			return nil, &ReviewError{
				Code:     CodeDuplicateReview,
				Message:  "a review for this target already exists",
				Conflict: true,
			}
		}
		return nil, fmt.Errorf("failed to create review: %w", err)
	}
	s.invalidateAggregates(ctx, r)
	return r, nil
}

// isVerified reports whether the supplied booking proves a delivered
// engagement between this user and the review's target. A booking that does
// not qualify silently yields an unverified review, not an error.
func (s *DefaultReviewService) isVerified(ctx context.Context, input models.ReviewInput) bool {
	if input.BookingID == "" || s.Bookings == nil {
		return false
	}
	b, err := s.Bookings.GetByID(ctx, input.BookingID)
	if err != nil {
		return false
	}
	if b.Status != models.BookingDelivered || b.UserID != input.UserID {
		return false
	}
	if input.ProviderID != "" && b.ProviderID != input.ProviderID {
		return false
	}
	if input.ServiceID != "" && b.ServiceID != input.ServiceID {
		return false
	}
	return true
}

// EditReview updates rating/comment. Only the author or an admin may edit.
func (s *DefaultReviewService) EditReview(ctx context.Context, reviewID, actorID string, isAdmin bool, rating int, comment string) (*models.Review, error) {
	if rating < 1 || rating > 5 {
		return nil, &ReviewError{Code: CodeInvalidRating, Field: "rating", Message: "rating must be between 1 and 5"}
	}
	r, err := s.Repo.GetByID(ctx, reviewID)
	if err != nil {
		return nil, err
	}
	if r.UserID != actorID && !isAdmin {
		return nil, &ReviewError{Code: CodeForbidden, Message: "only the author or an admin may edit a review"}
	}

	r.Rating = rating
	r.Comment = comment
	r.UpdatedAt = time.Now().UTC()

	keys := targetKeys(r)
	s.Locks.LockAll(keys)
	defer s.Locks.UnlockAll(keys)

	if err := s.Repo.UpdateWithAggregates(ctx, r); err != nil {
		return nil, fmt.Errorf("failed to update review: %w", err)
	}
	s.invalidateAggregates(ctx, r)
	return r, nil
}

// DeleteReview removes the review. Only the author or an admin may delete.
func (s *DefaultReviewService) DeleteReview(ctx context.Context, reviewID, actorID string, isAdmin bool) error {
	r, err := s.Repo.GetByID(ctx, reviewID)
	if err != nil {
		return err
	}
	if r.UserID != actorID && !isAdmin {
		return &ReviewError{Code: CodeForbidden, Message: "only the author or an admin may delete a review"}
	}

	keys := targetKeys(r)
	s.Locks.LockAll(keys)
	defer s.Locks.UnlockAll(keys)

	if err := s.Repo.DeleteWithAggregates(ctx, r); err != nil {
		return fmt.Errorf("failed to delete review: %w", err)
	}
	s.invalidateAggregates(ctx, r)
	return nil
}

// GetRating serves the aggregate, preferring the cache when configured.
func (s *DefaultReviewService) GetRating(ctx context.Context, kind models.RatingTarget, targetID string) (*models.RatingAggregate, error) {
	key := aggregateCacheKey(kind, targetID)
	if s.Cache != nil {
		if data, err := s.Cache.Get(ctx, key).Result(); err == nil {
			var agg models.RatingAggregate
			if err := json.Unmarshal([]byte(data), &agg); err == nil {
				return &agg, nil
			}
		}
	}

	agg, err := s.Repo.GetAggregate(ctx, kind, targetID)
	if err != nil {
		return nil, err
	}
	if s.Cache != nil {
		if data, err := json.Marshal(agg); err == nil {
			if err := s.Cache.Set(ctx, key, data, aggregateCacheTTL).Err(); err != nil {
				zap.L().Warn("failed to cache rating aggregate", zap.String("key", key), zap.Error(err))
			}
		}
	}
	return agg, nil
}

func (s *DefaultReviewService) ListByTarget(ctx context.Context, kind models.RatingTarget, targetID string) ([]models.Review, error) {
	return s.Repo.ListByTarget(ctx, kind, targetID)
}

func (s *DefaultReviewService) invalidateAggregates(ctx context.Context, r *models.Review) {
	if s.Cache == nil {
		return
	}
	var keys []string
	if r.ProviderID != "" {
		keys = append(keys, aggregateCacheKey(models.TargetProvider, r.ProviderID))
	}
	if r.ServiceID != "" {
		keys = append(keys, aggregateCacheKey(models.TargetService, r.ServiceID))
	}
	if len(keys) > 0 {
		if err := s.Cache.Del(ctx, keys...).Err(); err != nil {
			zap.L().Warn("failed to invalidate rating cache", zap.Strings("keys", keys), zap.Error(err))
		}
	}
}

func aggregateCacheKey(kind models.RatingTarget, targetID string) string {
	return fmt.Sprintf("rating:%s:%s", kind, targetID)
}

// targetKeys is the lock set for a review's targets. Lock acquisition is
// ordered inside KeyedMutex so two-target reviews cannot deadlock.
func targetKeys(r *models.Review) []string {
	var keys []string
	if r.ProviderID != "" {
		keys = append(keys, "provider:"+r.ProviderID)
	}
	if r.ServiceID != "" {
		keys = append(keys, "service:"+r.ServiceID)
	}
	return keys
}
