package availability

import (
	"context"
	"time"

	scheduleRepo "eventra/database/repository/schedule"
	"eventra/models"
	"eventra/utils"
)

// Service manages a provider's bookable time: the recurring weekly pattern,
// dated exceptions, and the projection of both into concrete open intervals.
type Service interface {
	SetWeeklyAvailability(ctx context.Context, providerID, timezone string, days []models.DayAvailability) error
	AddSpecialDate(ctx context.Context, providerID string, sd models.SpecialDate) error
	RemoveSpecialDate(ctx context.Context, providerID, date string) error
	GetSchedule(ctx context.Context, providerID string) (*models.ProviderSchedule, error)
	ResolveOpenIntervals(ctx context.Context, providerID string, from, to time.Time) ([]models.OpenInterval, error)
}

// DefaultAvailabilityService implements Service. Reads go straight to the
// stored snapshot; writes are serialized per provider.
type DefaultAvailabilityService struct {
	Repo  scheduleRepo.ScheduleRepository
	Locks *utils.KeyedMutex
}
