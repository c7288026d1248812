package availability

import (
	"context"
	"fmt"
	"time"

	scheduleRepo "eventra/database/repository/schedule"
	"eventra/models"
)

const dateLayout = "2006-01-02"
const minutesPerDay = 24 * 60

// SetWeeklyAvailability validates and replaces the provider's full weekly
// pattern. The replacement is all-or-nothing: nothing is written unless
// every day's slot invariants hold.
func (s *DefaultAvailabilityService) SetWeeklyAvailability(ctx context.Context, providerID, timezone string, days []models.DayAvailability) error {
	if timezone != "" {
		if _, err := time.LoadLocation(timezone); err != nil {
			return newValidationError(CodeInvalidTimeRange, "timezone", fmt.Sprintf("unknown timezone %q", timezone))
		}
	}
	seen := make(map[int]bool, len(days))
	for di, day := range days {
		if day.Weekday < 0 || day.Weekday > 6 {
			return newValidationError(CodeInvalidTimeRange,
				fmt.Sprintf("days[%d].weekday", di), "weekday must be 0-6")
		}
		if seen[day.Weekday] {
			return newValidationError(CodeInvalidSlotOrdering,
				fmt.Sprintf("days[%d].weekday", di), "duplicate weekday entry")
		}
		seen[day.Weekday] = true
		if err := validateDaySlots(day.TimeSlots, fmt.Sprintf("days[%d]", di)); err != nil {
			return err
		}
	}

	s.Locks.Lock(providerID)
	defer s.Locks.Unlock(providerID)
	return s.Repo.ReplaceWeekly(ctx, providerID, timezone, days)
}

// AddSpecialDate registers a dated exception. Replacing an existing entry
// requires remove-then-add.
func (s *DefaultAvailabilityService) AddSpecialDate(ctx context.Context, providerID string, sd models.SpecialDate) error {
	if _, err := time.Parse(dateLayout, sd.Date); err != nil {
		return newValidationError(CodeInvalidTimeRange, "date", fmt.Sprintf("invalid date %q, want YYYY-MM-DD", sd.Date))
	}
	if err := validateDaySlots(sd.TimeSlots, "timeSlots"); err != nil {
		return err
	}

	s.Locks.Lock(providerID)
	defer s.Locks.Unlock(providerID)

	if err := s.Repo.AddSpecialDate(ctx, providerID, sd); err != nil {
		if err == scheduleRepo.ErrDuplicateDate {
			return &AvailabilityError{
				Code:     CodeDuplicateSpecialDate,
				Field:    "date",
				Message:  fmt.Sprintf("special date %s already exists", sd.Date),
				Conflict: true,
			}
		}
		return err
	}
	return nil
}

func (s *DefaultAvailabilityService) RemoveSpecialDate(ctx context.Context, providerID, date string) error {
	s.Locks.Lock(providerID)
	defer s.Locks.Unlock(providerID)
	return s.Repo.RemoveSpecialDate(ctx, providerID, date)
}

func (s *DefaultAvailabilityService) GetSchedule(ctx context.Context, providerID string) (*models.ProviderSchedule, error) {
	return s.Repo.Get(ctx, providerID)
}

// validateDaySlots enforces the per-day invariants: minute-resolution times
// with start < end, sorted ascending by start, and non-overlapping.
func validateDaySlots(slots []models.TimeSlot, field string) error {
	for i, slot := range slots {
		ref := fmt.Sprintf("%s.timeSlots[%d]", field, i)
		if slot.Start < 0 || slot.End > minutesPerDay {
			return newValidationError(CodeInvalidTimeRange, ref, "slot must lie within the day")
		}
		if slot.Start >= slot.End {
			return newValidationError(CodeInvalidTimeRange, ref, "start must be before end")
		}
		if i > 0 {
			prev := slots[i-1]
			if slot.Start < prev.Start {
				return newValidationError(CodeInvalidSlotOrdering, ref, "slots must be sorted by start time")
			}
			if slot.Start < prev.End {
				return newValidationError(CodeInvalidSlotOrdering, ref, "slots must not overlap")
			}
		}
	}
	return nil
}
