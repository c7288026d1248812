package availability

import (
	"context"
	"sort"
	"time"

	"eventra/models"
)

// ResolveOpenIntervals projects the provider's stored schedule onto the
// requested range. The output is a finite, disjoint, ascending sequence of
// UTC intervals; it is a pure function of the stored snapshot, so identical
// inputs with no intervening writes yield identical output.
func (s *DefaultAvailabilityService) ResolveOpenIntervals(ctx context.Context, providerID string, from, to time.Time) ([]models.OpenInterval, error) {
	sched, err := s.Repo.Get(ctx, providerID)
	if err != nil {
		return nil, err
	}
	return ProjectOpenIntervals(sched, from, to), nil
}

// ProjectOpenIntervals walks each calendar date in [from, to) in the
// provider's timezone. A SpecialDate override supersedes the weekly pattern
// for its date: closed emits nothing, override slots replace the weekly
// ones. Otherwise the enabled weekday's slots are projected onto the date,
// with isAvailable=false slots carved out of the open time.
func ProjectOpenIntervals(sched *models.ProviderSchedule, from, to time.Time) []models.OpenInterval {
	if !from.Before(to) {
		return nil
	}
	loc := sched.Location()
	from = from.UTC()
	to = to.UTC()

	var out []models.OpenInterval

	local := from.In(loc)
	day := time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, loc)
	for day.Before(to) {
		slots := slotsForDate(sched, day)
		for _, window := range openWindows(slots) {
			start := day.Add(time.Duration(window.start) * time.Minute).UTC()
			end := day.Add(time.Duration(window.end) * time.Minute).UTC()
			// Clip to the requested range.
			if start.Before(from) {
				start = from
			}
			if end.After(to) {
				end = to
			}
			if start.Before(end) {
				out = append(out, models.OpenInterval{Start: start, End: end})
			}
		}
		day = day.AddDate(0, 0, 1)
	}
	return out
}

// slotsForDate picks the effective slot set for one calendar date.
func slotsForDate(sched *models.ProviderSchedule, day time.Time) []models.TimeSlot {
	if sd := sched.SpecialDateFor(day.Format(dateLayout)); sd != nil {
		if !sd.IsAvailable {
			return nil
		}
		if len(sd.TimeSlots) > 0 {
			return sd.TimeSlots
		}
		// An open special date without override slots keeps the weekly pattern.
	}
	entry := sched.DayFor(day.Weekday())
	if entry == nil || !entry.Enabled {
		return nil
	}
	return entry.TimeSlots
}

type minuteWindow struct {
	start, end int
}

// openWindows merges the available slots and subtracts the carve-outs,
// yielding disjoint windows sorted by start.
func openWindows(slots []models.TimeSlot) []minuteWindow {
	var open, closed []minuteWindow
	for _, slot := range slots {
		w := minuteWindow{start: slot.Start, end: slot.End}
		if w.start >= w.end {
			continue
		}
		if slot.IsAvailable {
			open = append(open, w)
		} else {
			closed = append(closed, w)
		}
	}
	open = mergeWindows(open)
	for _, c := range closed {
		open = subtractWindow(open, c)
	}
	return open
}

func mergeWindows(ws []minuteWindow) []minuteWindow {
	if len(ws) < 2 {
		return ws
	}
	sort.Slice(ws, func(i, j int) bool { return ws[i].start < ws[j].start })
	merged := ws[:1]
	for _, w := range ws[1:] {
		last := &merged[len(merged)-1]
		if w.start <= last.end {
			if w.end > last.end {
				last.end = w.end
			}
			continue
		}
		merged = append(merged, w)
	}
	return merged
}

func subtractWindow(ws []minuteWindow, c minuteWindow) []minuteWindow {
	var out []minuteWindow
	for _, w := range ws {
		if c.end <= w.start || c.start >= w.end {
			out = append(out, w)
			continue
		}
		if c.start > w.start {
			out = append(out, minuteWindow{start: w.start, end: c.start})
		}
		if c.end < w.end {
			out = append(out, minuteWindow{start: c.end, end: w.end})
		}
	}
	return out
}
