package scheduleRepo

import (
	"context"

	"eventra/models"
)

// ScheduleRepository persists each provider's availability snapshot: the
// weekly pattern plus the dated exception set.
type ScheduleRepository interface {
	Get(ctx context.Context, providerID string) (*models.ProviderSchedule, error)
	// ReplaceWeekly swaps the full weekly pattern atomically, preserving
	// any existing special dates.
	ReplaceWeekly(ctx context.Context, providerID, timezone string, days []models.DayAvailability) error
	// AddSpecialDate appends an exception; it reports ErrDuplicateDate when
	// the date already has an entry.
	AddSpecialDate(ctx context.Context, providerID string, sd models.SpecialDate) error
	RemoveSpecialDate(ctx context.Context, providerID, date string) error
	EnsureIndexes() error
}
