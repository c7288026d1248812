package scheduleRepo

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

// ErrNotFound is returned when no schedule exists for a provider.
var ErrNotFound = errors.New("schedule not found")

// ErrDuplicateDate is returned when a special date already has an entry.
var ErrDuplicateDate = errors.New("special date already exists")

// MongoScheduleRepo implements ScheduleRepository using MongoDB. Each
// provider owns exactly one schedule document keyed by provider id.
type MongoScheduleRepo struct {
	coll *mongo.Collection
}

// NewMongoScheduleRepo constructs a new instance of MongoScheduleRepo.
func NewMongoScheduleRepo() *MongoScheduleRepo {
	return &MongoScheduleRepo{
		coll: database.DB().Collection("schedules"),
	}
}

func (repo *MongoScheduleRepo) Get(ctx context.Context, providerID string) (*models.ProviderSchedule, error) {
	var sched models.ProviderSchedule
	if err := repo.coll.FindOne(ctx, bson.M{"id": providerID}).Decode(&sched); err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("error fetching schedule for provider %s: %w", providerID, err)
	}
	return &sched, nil
}

// ReplaceWeekly writes the weekly pattern wholesale so readers never observe
// a half-updated set of days.
func (repo *MongoScheduleRepo) ReplaceWeekly(ctx context.Context, providerID, timezone string, days []models.DayAvailability) error {
	update := bson.M{
		"$set": bson.M{
			"timezone":  timezone,
			"days":      days,
			"updatedAt": time.Now().UTC(),
		},
		"$setOnInsert": bson.M{"id": providerID},
	}
	opts := options.Update().SetUpsert(true)
	if _, err := repo.coll.UpdateOne(ctx, bson.M{"id": providerID}, update, opts); err != nil {
		return fmt.Errorf("error replacing weekly pattern for provider %s: %w", providerID, err)
	}
	return nil
}

// AddSpecialDate pushes the exception only when no entry for that date is
// present; the guarded filter makes the duplicate check and the write a
// single atomic operation.
func (repo *MongoScheduleRepo) AddSpecialDate(ctx context.Context, providerID string, sd models.SpecialDate) error {
	filter := bson.M{
		"id":                providerID,
		"specialDates.date": bson.M{"$ne": sd.Date},
	}
	update := bson.M{
		"$push": bson.M{"specialDates": sd},
		"$set":  bson.M{"updatedAt": time.Now().UTC()},
	}
	res, err := repo.coll.UpdateOne(ctx, filter, update)
	if err != nil {
		return fmt.Errorf("error adding special date for provider %s: %w", providerID, err)
	}
	if res.MatchedCount == 0 {
		// Either the provider has no schedule yet or the date is taken.
		if _, err := repo.Get(ctx, providerID); err != nil {
			return err
		}
		return ErrDuplicateDate
	}
	return nil
}

func (repo *MongoScheduleRepo) RemoveSpecialDate(ctx context.Context, providerID, date string) error {
	update := bson.M{
		"$pull": bson.M{"specialDates": bson.M{"date": date}},
		"$set":  bson.M{"updatedAt": time.Now().UTC()},
	}
	res, err := repo.coll.UpdateOne(ctx, bson.M{"id": providerID}, update)
	if err != nil {
		return fmt.Errorf("error removing special date for provider %s: %w", providerID, err)
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}
