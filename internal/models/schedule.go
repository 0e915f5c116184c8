package models

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Day represents one of the two schedule days
type Day string

const (
	DaySaturday Day = "saturday"
	DaySunday   Day = "sunday"
)

// Period represents a fixed time period within a day
type Period string

const (
	PeriodMorning   Period = "morning"
	PeriodAfternoon Period = "afternoon"
	PeriodEvening   Period = "evening"
	PeriodNight     Period = "night"
)

// TimeSlot addresses a (day, period) pair plus a concrete time range.
// Multiple scheduled activities may share a slot id; a period holds an
// ordered list of activities.
type TimeSlot struct {
	Day       Day    `json:"day"`
	Period    Period `json:"period"`
	StartTime string `json:"start_time"`
	EndTime   string `json:"end_time"`
}

// ID returns the deterministic slot identifier
func (s TimeSlot) ID() string {
	return fmt.Sprintf("%s-%s", s.Day, s.Period)
}

// ScheduledActivity is a placement of a catalog activity into a time slot.
// It owns a snapshot of the activity so later catalog edits cannot change
// an existing schedule.
type ScheduledActivity struct {
	ID        uuid.UUID `json:"id"`
	Activity  Activity  `json:"activity"`
	Slot      TimeSlot  `json:"slot"`
	Notes     string    `json:"notes,omitempty"`
	Completed bool      `json:"completed"`
}

// WeekendSchedule is the root aggregate holding a Saturday/Sunday plan
type WeekendSchedule struct {
	ID        uuid.UUID            `json:"id"`
	Title     string               `json:"title"`
	Theme     string               `json:"theme,omitempty"`
	Saturday  []*ScheduledActivity `json:"saturday"`
	Sunday    []*ScheduledActivity `json:"sunday"`
	CreatedAt time.Time            `json:"created_at"`
	UpdatedAt time.Time            `json:"updated_at"`
}

// DayActivities returns the ordered collection for the given day
func (w *WeekendSchedule) DayActivities(day Day) []*ScheduledActivity {
	if day == DaySunday {
		return w.Sunday
	}
	return w.Saturday
}

// SetDayActivities replaces the ordered collection for the given day
func (w *WeekendSchedule) SetDayActivities(day Day, entries []*ScheduledActivity) {
	if day == DaySunday {
		w.Sunday = entries
		return
	}
	w.Saturday = entries
}

// Touch refreshes the updated_at timestamp. Every mutation must call this.
func (w *WeekendSchedule) Touch() {
	w.UpdatedAt = time.Now().UTC()
}
