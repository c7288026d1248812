package review

import (
	"context"
	"errors"
	"math"
	"sync"
	"testing"
	"time"

	bookingRepo "eventra/database/repository/booking"
	reviewRepo "eventra/database/repository/review"
	"eventra/models"
	"eventra/utils"
)

// fakeReviewRepo stores reviews in memory and recomputes aggregates on every
// mutation, like the transactional store does.
type fakeReviewRepo struct {
	mu      sync.Mutex
	reviews map[string]*models.Review
	aggs    map[string]*models.RatingAggregate
}

func newFakeReviewRepo() *fakeReviewRepo {
	return &fakeReviewRepo{
		reviews: make(map[string]*models.Review),
		aggs:    make(map[string]*models.RatingAggregate),
	}
}

func aggKey(kind models.RatingTarget, targetID string) string {
	return string(kind) + ":" + targetID
}

func (f *fakeReviewRepo) GetByID(_ context.Context, id string) (*models.Review, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	r, ok := f.reviews[id]
	if !ok {
		return nil, reviewRepo.ErrNotFound
	}
	cp := *r
	return &cp, nil
}

func (f *fakeReviewRepo) ListByTarget(_ context.Context, kind models.RatingTarget, targetID string) ([]models.Review, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.Review
	for _, r := range f.reviews {
		if f.matches(r, kind, targetID) {
			out = append(out, *r)
		}
	}
	return out, nil
}

func (f *fakeReviewRepo) matches(r *models.Review, kind models.RatingTarget, targetID string) bool {
	if kind == models.TargetService {
		return r.ServiceID == targetID
	}
	return r.ProviderID == targetID
}

func (f *fakeReviewRepo) CreateWithAggregates(_ context.Context, review *models.Review) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, existing := range f.reviews {
		if existing.UserID != review.UserID {
			continue
		}
		if review.ProviderID != "" && existing.ProviderID == review.ProviderID {
			return reviewRepo.ErrDuplicate
		}
		if review.ServiceID != "" && existing.ServiceID == review.ServiceID {
			return reviewRepo.ErrDuplicate
		}
	}
	cp := *review
	f.reviews[review.ID] = &cp
	f.recomputeLocked(review)
	return nil
}

func (f *fakeReviewRepo) UpdateWithAggregates(_ context.Context, review *models.Review) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	stored, ok := f.reviews[review.ID]
	if !ok {
		return reviewRepo.ErrNotFound
	}
	stored.Rating = review.Rating
	stored.Comment = review.Comment
	stored.UpdatedAt = review.UpdatedAt
	f.recomputeLocked(review)
	return nil
}

func (f *fakeReviewRepo) DeleteWithAggregates(_ context.Context, review *models.Review) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.reviews[review.ID]; !ok {
		return reviewRepo.ErrNotFound
	}
	delete(f.reviews, review.ID)
	f.recomputeLocked(review)
	return nil
}

func (f *fakeReviewRepo) recomputeLocked(review *models.Review) {
	if review.ProviderID != "" {
		f.recomputeTargetLocked(models.TargetProvider, review.ProviderID)
	}
	if review.ServiceID != "" {
		f.recomputeTargetLocked(models.TargetService, review.ServiceID)
	}
}

func (f *fakeReviewRepo) recomputeTargetLocked(kind models.RatingTarget, targetID string) {
	agg := &models.RatingAggregate{TargetID: targetID, TargetKind: kind, UpdatedAt: time.Now().UTC()}
	var sum, count int64
	for _, r := range f.reviews {
		if f.matches(r, kind, targetID) {
			sum += int64(r.Rating)
			count++
		}
	}
	if count > 0 {
		rounded := math.Round(float64(sum)/float64(count)*10) / 10
		agg.AverageRating = &rounded
		agg.ReviewCount = count
	}
	f.aggs[aggKey(kind, targetID)] = agg
}

func (f *fakeReviewRepo) GetAggregate(_ context.Context, kind models.RatingTarget, targetID string) (*models.RatingAggregate, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	agg, ok := f.aggs[aggKey(kind, targetID)]
	if !ok {
		return &models.RatingAggregate{TargetID: targetID, TargetKind: kind}, nil
	}
	cp := *agg
	return &cp, nil
}

func (f *fakeReviewRepo) HasUserReview(_ context.Context, userID string, kind models.RatingTarget, targetID string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, r := range f.reviews {
		if r.UserID == userID && f.matches(r, kind, targetID) {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeReviewRepo) EnsureIndexes() error { return nil }

// staticBookingRepo serves a fixed booking set for verification checks.
type staticBookingRepo struct {
	bookings map[string]*models.Booking
}

func (s *staticBookingRepo) GetByID(_ context.Context, id string) (*models.Booking, error) {
	b, ok := s.bookings[id]
	if !ok {
		return nil, bookingRepo.ErrNotFound
	}
	return b, nil
}

func (s *staticBookingRepo) FindOverlapping(context.Context, string, time.Time, time.Time) ([]models.Booking, error) {
	return nil, nil
}
func (s *staticBookingRepo) ListByProvider(context.Context, string, time.Time, time.Time) ([]models.Booking, error) {
	return nil, nil
}
func (s *staticBookingRepo) ListByUser(context.Context, string) ([]models.Booking, error) {
	return nil, nil
}
func (s *staticBookingRepo) ReserveTransactionally(context.Context, *models.Booking) error {
	return nil
}
func (s *staticBookingRepo) CompareAndSetStatus(context.Context, string, models.BookingStatus, models.BookingStatus, bookingRepo.StatusUpdate) (*models.Booking, error) {
	return nil, bookingRepo.ErrNotFound
}
func (s *staticBookingRepo) EnsureIndexes() error { return nil }

func newReviewService(bookings map[string]*models.Booking) (*DefaultReviewService, *fakeReviewRepo) {
	repo := newFakeReviewRepo()
	return &DefaultReviewService{
		Repo:     repo,
		Bookings: &staticBookingRepo{bookings: bookings},
		Locks:    utils.NewKeyedMutex(),
	}, repo
}

func submitRating(t *testing.T, svc *DefaultReviewService, userID string, rating int) *models.Review {
	t.Helper()
	r, err := svc.SubmitReview(context.Background(), models.ReviewInput{
		UserID:     userID,
		ProviderID: "prov-1",
		Rating:     rating,
	})
	if err != nil {
		t.Fatalf("submit rating %d by %s: %v", rating, userID, err)
	}
	return r
}

func providerAverage(t *testing.T, svc *DefaultReviewService) (float64, int64) {
	t.Helper()
	agg, err := svc.GetRating(context.Background(), models.TargetProvider, "prov-1")
	if err != nil {
		t.Fatalf("get rating: %v", err)
	}
	if agg.AverageRating == nil {
		return 0, agg.ReviewCount
	}
	return *agg.AverageRating, agg.ReviewCount
}

func TestAggregateLifecycle(t *testing.T) {
	svc, _ := newReviewService(nil)

	r5 := submitRating(t, svc, "user-a", 5)
	if avg, n := providerAverage(t, svc); avg != 5.0 || n != 1 {
		t.Fatalf("after one 5-star review: avg=%v count=%d, want 5.0/1", avg, n)
	}

	submitRating(t, svc, "user-b", 3)
	if avg, n := providerAverage(t, svc); avg != 4.0 || n != 2 {
		t.Fatalf("after adding a 3-star review: avg=%v count=%d, want 4.0/2", avg, n)
	}

	if err := svc.DeleteReview(context.Background(), r5.ID, "user-a", false); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if avg, n := providerAverage(t, svc); avg != 3.0 || n != 1 {
		t.Fatalf("after deleting the 5-star review: avg=%v count=%d, want 3.0/1", avg, n)
	}
}

func TestAverageRoundsToOneDecimal(t *testing.T) {
	svc, _ := newReviewService(nil)

	submitRating(t, svc, "user-a", 5)
	submitRating(t, svc, "user-b", 5)
	submitRating(t, svc, "user-c", 4)

	// 14/3 = 4.666..., rounded to 4.7.
	if avg, n := providerAverage(t, svc); avg != 4.7 || n != 3 {
		t.Fatalf("avg=%v count=%d, want 4.7/3", avg, n)
	}
}

func TestZeroReviewsYieldsNullAverage(t *testing.T) {
	svc, _ := newReviewService(nil)

	agg, err := svc.GetRating(context.Background(), models.TargetProvider, "prov-1")
	if err != nil {
		t.Fatalf("get rating: %v", err)
	}
	if agg.AverageRating != nil || agg.ReviewCount != 0 {
		t.Fatalf("empty target aggregate: avg=%v count=%d, want null/0", agg.AverageRating, agg.ReviewCount)
	}
}

func TestDuplicateReviewRejected(t *testing.T) {
	svc, _ := newReviewService(nil)

	submitRating(t, svc, "user-a", 4)
	_, err := svc.SubmitReview(context.Background(), models.ReviewInput{
		UserID:     "user-a",
		ProviderID: "prov-1",
		Rating:     2,
	})
	var re *ReviewError
	if !errors.As(err, &re) || re.Code != CodeDuplicateReview {
		t.Fatalf("got %v, want %s", err, CodeDuplicateReview)
	}
	if !re.Conflict {
		t.Fatal("duplicate review should be flagged as a conflict")
	}
	if avg, n := providerAverage(t, svc); avg != 4.0 || n != 1 {
		t.Fatalf("rejected duplicate changed the aggregate: avg=%v count=%d", avg, n)
	}
}

func TestInvalidRatingRejected(t *testing.T) {
	svc, _ := newReviewService(nil)

	for _, rating := range []int{0, 6, -1} {
		_, err := svc.SubmitReview(context.Background(), models.ReviewInput{
			UserID:     "user-a",
			ProviderID: "prov-1",
			Rating:     rating,
		})
		var re *ReviewError
		if !errors.As(err, &re) || re.Code != CodeInvalidRating {
			t.Fatalf("rating %d: got %v, want %s", rating, err, CodeInvalidRating)
		}
	}
}

func TestMissingTargetRejected(t *testing.T) {
	svc, _ := newReviewService(nil)

	_, err := svc.SubmitReview(context.Background(), models.ReviewInput{UserID: "user-a", Rating: 4})
	var re *ReviewError
	if !errors.As(err, &re) || re.Code != CodeMissingTarget {
		t.Fatalf("got %v, want %s", err, CodeMissingTarget)
	}
}

func TestVerificationRequiresDeliveredBooking(t *testing.T) {
	bookings := map[string]*models.Booking{
		"bk-delivered": {ID: "bk-delivered", UserID: "user-a", ProviderID: "prov-1", ServiceID: "svc-1", Status: models.BookingDelivered},
		"bk-paid":      {ID: "bk-paid", UserID: "user-a", ProviderID: "prov-1", Status: models.BookingPaid},
	}
	svc, _ := newReviewService(bookings)
	ctx := context.Background()

	verified, err := svc.SubmitReview(ctx, models.ReviewInput{
		UserID: "user-a", ProviderID: "prov-1", BookingID: "bk-delivered", Rating: 5,
	})
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	if !verified.IsVerified {
		t.Fatal("review citing a delivered booking should be verified")
	}

	cases := []models.ReviewInput{
		{UserID: "user-b", ProviderID: "prov-1", BookingID: "bk-delivered", Rating: 4}, // wrong author
		{UserID: "user-c", ProviderID: "prov-1", BookingID: "bk-paid", Rating: 4},     // not delivered
		{UserID: "user-d", ProviderID: "prov-1", Rating: 4},                           // no booking cited
		{UserID: "user-e", ProviderID: "prov-1", BookingID: "bk-missing", Rating: 4},  // unknown booking
	}
	for _, input := range cases {
		r, err := svc.SubmitReview(ctx, input)
		if err != nil {
			t.Fatalf("submit %+v: %v", input, err)
		}
		if r.IsVerified {
			t.Fatalf("review %+v should not be verified", input)
		}
	}
}

func TestVerificationChecksTargetMatch(t *testing.T) {
	bookings := map[string]*models.Booking{
		"bk-1": {ID: "bk-1", UserID: "user-a", ProviderID: "prov-1", ServiceID: "svc-1", Status: models.BookingDelivered},
	}
	svc, _ := newReviewService(bookings)

	r, err := svc.SubmitReview(context.Background(), models.ReviewInput{
		UserID: "user-a", ProviderID: "prov-2", BookingID: "bk-1", Rating: 4,
	})
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	if r.IsVerified {
		t.Fatal("review naming a different provider than the booking should not be verified")
	}
}

func TestEditRecomputesAggregate(t *testing.T) {
	svc, _ := newReviewService(nil)

	r := submitRating(t, svc, "user-a", 5)
	submitRating(t, svc, "user-b", 3)

	if _, err := svc.EditReview(context.Background(), r.ID, "user-a", false, 1, "changed my mind"); err != nil {
		t.Fatalf("edit: %v", err)
	}
	if avg, n := providerAverage(t, svc); avg != 2.0 || n != 2 {
		t.Fatalf("after edit: avg=%v count=%d, want 2.0/2", avg, n)
	}
}

func TestEditAndDeleteRequireAuthorOrAdmin(t *testing.T) {
	svc, _ := newReviewService(nil)
	ctx := context.Background()

	r := submitRating(t, svc, "user-a", 4)

	_, err := svc.EditReview(ctx, r.ID, "user-b", false, 1, "")
	var re *ReviewError
	if !errors.As(err, &re) || re.Code != CodeForbidden {
		t.Fatalf("edit by stranger: got %v, want %s", err, CodeForbidden)
	}
	if err := svc.DeleteReview(ctx, r.ID, "user-b", false); err == nil {
		t.Fatal("delete by stranger should fail")
	}

	// Admins bypass the author check.
	if _, err := svc.EditReview(ctx, r.ID, "admin-1", true, 2, "moderated"); err != nil {
		t.Fatalf("edit by admin: %v", err)
	}
	if err := svc.DeleteReview(ctx, r.ID, "admin-1", true); err != nil {
		t.Fatalf("delete by admin: %v", err)
	}
}

func TestTwoTargetReviewUpdatesBothAggregates(t *testing.T) {
	svc, _ := newReviewService(nil)
	ctx := context.Background()

	_, err := svc.SubmitReview(ctx, models.ReviewInput{
		UserID: "user-a", ProviderID: "prov-1", ServiceID: "svc-1", Rating: 4,
	})
	if err != nil {
		t.Fatalf("submit: %v", err)
	}

	provAgg, err := svc.GetRating(ctx, models.TargetProvider, "prov-1")
	if err != nil {
		t.Fatalf("provider rating: %v", err)
	}
	svcAgg, err := svc.GetRating(ctx, models.TargetService, "svc-1")
	if err != nil {
		t.Fatalf("service rating: %v", err)
	}
	if provAgg.AverageRating == nil || *provAgg.AverageRating != 4.0 {
		t.Fatalf("provider aggregate: %+v", provAgg)
	}
	if svcAgg.AverageRating == nil || *svcAgg.AverageRating != 4.0 {
		t.Fatalf("service aggregate: %+v", svcAgg)
	}
}
