package models

import "time"

// OpenInterval is a concrete UTC time window during which a provider is
// bookable. Intervals produced by the resolver are disjoint and sorted
// ascending by start.
type OpenInterval struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// Contains reports whether [start, end) falls entirely inside the interval.
func (iv OpenInterval) Contains(start, end time.Time) bool {
	return !start.Before(iv.Start) && !end.After(iv.End)
}

// Overlaps reports whether [start, end) intersects the interval at all.
func (iv OpenInterval) Overlaps(start, end time.Time) bool {
	return start.Before(iv.End) && end.After(iv.Start)
}
