package models

import "time"

// TimeSlot is one ordered sub-interval of a day, expressed as minutes from
// midnight in the provider's local timezone (e.g., 540 for 9:00 AM).
// A slot with IsAvailable=false is a carve-out (lunch break) inside an
// otherwise enabled day.
type TimeSlot struct {
	Start       int  `bson:"start" json:"start" binding:"min=0,max=1440"`
	End         int  `bson:"end" json:"end" binding:"min=0,max=1440"`
	IsAvailable bool `bson:"isAvailable" json:"isAvailable"`
}

// DayAvailability is the recurring pattern for one weekday (0=Sunday .. 6=Saturday).
// Slots must be sorted by start and non-overlapping.
type DayAvailability struct {
	Weekday   int        `bson:"weekday" json:"weekday"`
	Enabled   bool       `bson:"enabled" json:"enabled"`
	TimeSlots []TimeSlot `bson:"timeSlots" json:"timeSlots"`
}

// SpecialDate is a dated exception that fully supersedes the weekly pattern
// for that date. IsAvailable=false closes the whole day; IsAvailable=true
// with TimeSlots given replaces the weekly slots for that date only.
type SpecialDate struct {
	Date        string     `bson:"date" json:"date" binding:"required"` // "2006-01-02"
	IsAvailable bool       `bson:"isAvailable" json:"isAvailable"`
	Reason      string     `bson:"reason,omitempty" json:"reason,omitempty"`
	TimeSlots   []TimeSlot `bson:"timeSlots,omitempty" json:"timeSlots,omitempty"`
}

// ProviderSchedule is the persisted availability snapshot for one provider:
// the 7-day weekly pattern plus the dated exception set. The weekly pattern
// is replaced wholesale on every write, never patched in place.
type ProviderSchedule struct {
	ProviderID   string            `bson:"id" json:"providerId"`
	Timezone     string            `bson:"timezone" json:"timezone"` // IANA name, defaults to UTC
	Days         []DayAvailability `bson:"days" json:"days"`
	SpecialDates []SpecialDate     `bson:"specialDates,omitempty" json:"specialDates,omitempty"`
	UpdatedAt    time.Time         `bson:"updatedAt" json:"updatedAt"`
}

// Location resolves the schedule's timezone, falling back to UTC.
func (s *ProviderSchedule) Location() *time.Location {
	if s.Timezone == "" {
		return time.UTC
	}
	loc, err := time.LoadLocation(s.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

// SpecialDateFor returns the exception entry for the given date, if any.
func (s *ProviderSchedule) SpecialDateFor(date string) *SpecialDate {
	for i := range s.SpecialDates {
		if s.SpecialDates[i].Date == date {
			return &s.SpecialDates[i]
		}
	}
	return nil
}

// DayFor returns the weekly entry for the given weekday, if configured.
func (s *ProviderSchedule) DayFor(weekday time.Weekday) *DayAvailability {
	for i := range s.Days {
		if s.Days[i].Weekday == int(weekday) {
			return &s.Days[i]
		}
	}
	return nil
}
