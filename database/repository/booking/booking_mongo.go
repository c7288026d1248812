package bookingRepo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"eventra/database"
	"eventra/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// ErrNotFound is returned when no booking exists for an id.
var ErrNotFound = errors.New("booking not found")

// ErrStateChanged is returned when a compare-and-set misses because the
// booking's status moved underneath the caller.
var ErrStateChanged = errors.New("booking state changed concurrently")

// ConflictError reports the committed booking that intersects a requested window.
type ConflictError struct {
	Existing models.Booking
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("window overlaps booking %s [%s, %s)",
		e.Existing.ID, e.Existing.Start.Format(time.RFC3339), e.Existing.End.Format(time.RFC3339))
}

// MongoBookingRepo implements BookingRepository using MongoDB.
type MongoBookingRepo struct {
	coll *mongo.Collection
}

// NewMongoBookingRepo constructs a new instance of MongoBookingRepo.
func NewMongoBookingRepo() *MongoBookingRepo {
	return &MongoBookingRepo{
		coll: database.DB().Collection("bookings"),
	}
}

func (repo *MongoBookingRepo) GetByID(ctx context.Context, id string) (*models.Booking, error) {
	var booking models.Booking
	if err := repo.coll.FindOne(ctx, bson.M{"id": id}).Decode(&booking); err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("error fetching booking %s: %w", id, err)
	}
	return &booking, nil
}

// FindOverlapping returns non-cancelled bookings for the provider whose
// [start, end) windows intersect the given one. Any intersection counts,
// not just containment.
func (repo *MongoBookingRepo) FindOverlapping(ctx context.Context, providerID string, start, end time.Time) ([]models.Booking, error) {
	filter := overlapFilter(providerID, start, end)
	return repo.findSorted(ctx, filter)
}

func overlapFilter(providerID string, start, end time.Time) bson.M {
	return bson.M{
		"provider_id": providerID,
		"status":      bson.M{"$ne": models.BookingCancelled},
		"start":       bson.M{"$lt": end},
		"end":         bson.M{"$gt": start},
	}
}

func (repo *MongoBookingRepo) ListByProvider(ctx context.Context, providerID string, from, to time.Time) ([]models.Booking, error) {
	filter := bson.M{
		"provider_id": providerID,
		"start":       bson.M{"$gte": from, "$lt": to},
	}
	return repo.findSorted(ctx, filter)
}

func (repo *MongoBookingRepo) ListByUser(ctx context.Context, userID string) ([]models.Booking, error) {
	return repo.findSorted(ctx, bson.M{"user_id": userID})
}

func (repo *MongoBookingRepo) findSorted(ctx context.Context, filter bson.M) ([]models.Booking, error) {
	opts := options.Find().SetSort(bson.D{{Key: "start", Value: 1}})
	cursor, err := repo.coll.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("error finding bookings: %w", err)
	}
	defer cursor.Close(ctx)

	var bookings []models.Booking
	if err := cursor.All(ctx, &bookings); err != nil {
		return nil, fmt.Errorf("error decoding bookings: %w", err)
	}
	return bookings, nil
}

// CompareAndSetStatus performs a single-document CAS on the status field.
func (repo *MongoBookingRepo) CompareAndSetStatus(ctx context.Context, bookingID string, from, to models.BookingStatus, upd StatusUpdate) (*models.Booking, error) {
	set := bson.M{
		"status":     to,
		"updated_at": time.Now().UTC(),
	}
	if upd.PaymentStatus != nil {
		set["payment_status"] = *upd.PaymentStatus
	}
	if upd.CancelReason != "" {
		set["cancel_reason"] = upd.CancelReason
	}
	if upd.CancelledAt != nil {
		set["cancelled_at"] = *upd.CancelledAt
	}
	if upd.DeliveredAt != nil {
		set["delivered_at"] = *upd.DeliveredAt
	}

	filter := bson.M{"id": bookingID, "status": from}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var booking models.Booking
	err := repo.coll.FindOneAndUpdate(ctx, filter, bson.M{"$set": set}, opts).Decode(&booking)
	if err == nil {
		return &booking, nil
	}
	if err != mongo.ErrNoDocuments {
		return nil, fmt.Errorf("error updating booking %s: %w", bookingID, err)
	}

	// The filter missed: distinguish a missing booking from a stale status.
	if _, getErr := repo.GetByID(ctx, bookingID); getErr != nil {
		return nil, getErr
	}
	return nil, ErrStateChanged
}
