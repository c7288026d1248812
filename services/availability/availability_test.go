package availability

import (
	"context"
	"errors"
	"testing"

	scheduleRepo "eventra/database/repository/schedule"
	"eventra/models"
	"eventra/utils"
)

type fakeScheduleRepo struct {
	schedules map[string]*models.ProviderSchedule
}

func newFakeScheduleRepo() *fakeScheduleRepo {
	return &fakeScheduleRepo{schedules: make(map[string]*models.ProviderSchedule)}
}

func (f *fakeScheduleRepo) Get(_ context.Context, providerID string) (*models.ProviderSchedule, error) {
	sched, ok := f.schedules[providerID]
	if !ok {
		return nil, scheduleRepo.ErrNotFound
	}
	cp := *sched
	return &cp, nil
}

func (f *fakeScheduleRepo) ReplaceWeekly(_ context.Context, providerID, timezone string, days []models.DayAvailability) error {
	sched, ok := f.schedules[providerID]
	if !ok {
		sched = &models.ProviderSchedule{ProviderID: providerID}
		f.schedules[providerID] = sched
	}
	sched.Timezone = timezone
	sched.Days = days
	return nil
}

func (f *fakeScheduleRepo) AddSpecialDate(_ context.Context, providerID string, sd models.SpecialDate) error {
	sched, ok := f.schedules[providerID]
	if !ok {
		return scheduleRepo.ErrNotFound
	}
	for _, existing := range sched.SpecialDates {
		if existing.Date == sd.Date {
			return scheduleRepo.ErrDuplicateDate
		}
	}
	sched.SpecialDates = append(sched.SpecialDates, sd)
	return nil
}

func (f *fakeScheduleRepo) RemoveSpecialDate(_ context.Context, providerID, date string) error {
	sched, ok := f.schedules[providerID]
	if !ok {
		return scheduleRepo.ErrNotFound
	}
	kept := sched.SpecialDates[:0]
	for _, sd := range sched.SpecialDates {
		if sd.Date != date {
			kept = append(kept, sd)
		}
	}
	sched.SpecialDates = kept
	return nil
}

func (f *fakeScheduleRepo) EnsureIndexes() error { return nil }

func newTestService(repo scheduleRepo.ScheduleRepository) *DefaultAvailabilityService {
	return &DefaultAvailabilityService{Repo: repo, Locks: utils.NewKeyedMutex()}
}

func availabilityCode(t *testing.T, err error) string {
	t.Helper()
	var ae *AvailabilityError
	if !errors.As(err, &ae) {
		t.Fatalf("expected AvailabilityError, got %T: %v", err, err)
	}
	return ae.Code
}

func TestSetWeeklyAvailabilityValid(t *testing.T) {
	repo := newFakeScheduleRepo()
	svc := newTestService(repo)

	err := svc.SetWeeklyAvailability(context.Background(), "prov-1", "Europe/Berlin", []models.DayAvailability{
		{Weekday: 1, Enabled: true, TimeSlots: []models.TimeSlot{
			{Start: 540, End: 720, IsAvailable: true},
			{Start: 780, End: 1020, IsAvailable: true},
		}},
	})
	if err != nil {
		t.Fatalf("valid pattern rejected: %v", err)
	}
	sched, err := repo.Get(context.Background(), "prov-1")
	if err != nil {
		t.Fatalf("schedule not persisted: %v", err)
	}
	if sched.Timezone != "Europe/Berlin" || len(sched.Days) != 1 {
		t.Fatalf("persisted schedule wrong: %+v", sched)
	}
}

func TestSetWeeklyAvailabilityInvalidTimeRange(t *testing.T) {
	svc := newTestService(newFakeScheduleRepo())

	cases := []models.TimeSlot{
		{Start: 720, End: 540, IsAvailable: true},  // start after end
		{Start: 600, End: 600, IsAvailable: true},  // zero-length
		{Start: 540, End: 1500, IsAvailable: true}, // past midnight
	}
	for _, slot := range cases {
		err := svc.SetWeeklyAvailability(context.Background(), "prov-1", "", []models.DayAvailability{
			{Weekday: 1, Enabled: true, TimeSlots: []models.TimeSlot{slot}},
		})
		if code := availabilityCode(t, err); code != CodeInvalidTimeRange {
			t.Fatalf("slot %+v: got code %s, want %s", slot, code, CodeInvalidTimeRange)
		}
	}
}

func TestSetWeeklyAvailabilityInvalidSlotOrdering(t *testing.T) {
	svc := newTestService(newFakeScheduleRepo())

	cases := [][]models.TimeSlot{
		{{Start: 780, End: 900, IsAvailable: true}, {Start: 540, End: 720, IsAvailable: true}}, // unsorted
		{{Start: 540, End: 720, IsAvailable: true}, {Start: 660, End: 780, IsAvailable: true}}, // overlapping
	}
	for _, slots := range cases {
		err := svc.SetWeeklyAvailability(context.Background(), "prov-1", "", []models.DayAvailability{
			{Weekday: 1, Enabled: true, TimeSlots: slots},
		})
		if code := availabilityCode(t, err); code != CodeInvalidSlotOrdering {
			t.Fatalf("slots %+v: got code %s, want %s", slots, code, CodeInvalidSlotOrdering)
		}
	}
}

func TestSetWeeklyAvailabilityRejectsDuplicateWeekday(t *testing.T) {
	svc := newTestService(newFakeScheduleRepo())

	err := svc.SetWeeklyAvailability(context.Background(), "prov-1", "", []models.DayAvailability{
		{Weekday: 1, Enabled: true},
		{Weekday: 1, Enabled: false},
	})
	if code := availabilityCode(t, err); code != CodeInvalidSlotOrdering {
		t.Fatalf("got code %s, want %s", code, CodeInvalidSlotOrdering)
	}
}

func TestSetWeeklyAvailabilityUnknownTimezone(t *testing.T) {
	svc := newTestService(newFakeScheduleRepo())

	err := svc.SetWeeklyAvailability(context.Background(), "prov-1", "Mars/Olympus", nil)
	if code := availabilityCode(t, err); code != CodeInvalidTimeRange {
		t.Fatalf("got code %s, want %s", code, CodeInvalidTimeRange)
	}
}

func TestAddSpecialDateDuplicate(t *testing.T) {
	repo := newFakeScheduleRepo()
	svc := newTestService(repo)
	ctx := context.Background()

	if err := svc.SetWeeklyAvailability(ctx, "prov-1", "", nil); err != nil {
		t.Fatalf("seed schedule: %v", err)
	}
	sd := models.SpecialDate{Date: "2025-12-24", IsAvailable: false, Reason: "holiday"}
	if err := svc.AddSpecialDate(ctx, "prov-1", sd); err != nil {
		t.Fatalf("first add failed: %v", err)
	}

	err := svc.AddSpecialDate(ctx, "prov-1", sd)
	var ae *AvailabilityError
	if !errors.As(err, &ae) || ae.Code != CodeDuplicateSpecialDate {
		t.Fatalf("got %v, want %s", err, CodeDuplicateSpecialDate)
	}
	if !ae.Conflict {
		t.Fatal("duplicate special date should be flagged as a conflict")
	}
}

func TestAddSpecialDateInvalidDate(t *testing.T) {
	svc := newTestService(newFakeScheduleRepo())

	err := svc.AddSpecialDate(context.Background(), "prov-1", models.SpecialDate{Date: "24-12-2025"})
	if code := availabilityCode(t, err); code != CodeInvalidTimeRange {
		t.Fatalf("got code %s, want %s", code, CodeInvalidTimeRange)
	}
}

func TestRemoveThenReAddSpecialDate(t *testing.T) {
	repo := newFakeScheduleRepo()
	svc := newTestService(repo)
	ctx := context.Background()

	if err := svc.SetWeeklyAvailability(ctx, "prov-1", "", nil); err != nil {
		t.Fatalf("seed schedule: %v", err)
	}
	sd := models.SpecialDate{Date: "2025-12-24", IsAvailable: false}
	if err := svc.AddSpecialDate(ctx, "prov-1", sd); err != nil {
		t.Fatalf("add: %v", err)
	}
	if err := svc.RemoveSpecialDate(ctx, "prov-1", sd.Date); err != nil {
		t.Fatalf("remove: %v", err)
	}
	sd.IsAvailable = true
	sd.TimeSlots = []models.TimeSlot{{Start: 600, End: 660, IsAvailable: true}}
	if err := svc.AddSpecialDate(ctx, "prov-1", sd); err != nil {
		t.Fatalf("re-add after remove failed: %v", err)
	}
}
