package engine

import (
	"time"

	"github.com/google/uuid"
	"github.com/weekendly/planner/internal/models"
)

// Planner owns the single active weekend schedule and all placement logic.
// Construct one per owner; the planner is not internally synchronized.
type Planner struct {
	current   *models.WeekendSchedule
	conflicts []*models.Conflict
}

// New creates a planner with no active schedule
func New() *Planner {
	return &Planner{}
}

// Current returns the active schedule, or nil if none exists
func (p *Planner) Current() *models.WeekendSchedule {
	return p.current
}

// Conflicts returns the conflicts derived from the last recomputation
func (p *Planner) Conflicts() []*models.Conflict {
	return p.conflicts
}

// CreateWeekend initializes a fresh schedule with empty day collections,
// replacing any current schedule and resetting derived conflicts.
func (p *Planner) CreateWeekend(title string) *models.WeekendSchedule {
	now := time.Now().UTC()
	p.current = &models.WeekendSchedule{
		ID:        uuid.New(),
		Title:     title,
		Saturday:  []*models.ScheduledActivity{},
		Sunday:    []*models.ScheduledActivity{},
		CreatedAt: now,
		UpdatedAt: now,
	}
	p.conflicts = nil
	return p.current
}

// SetCurrent replaces the active schedule with a previously persisted one
// and recomputes conflicts against it.
func (p *Planner) SetCurrent(schedule *models.WeekendSchedule) {
	p.current = schedule
	p.recompute()
}

// AddActivity appends a new scheduled activity to the target day.
// Duplicate slot placement is allowed; a period holds an ordered list.
func (p *Planner) AddActivity(activity models.Activity, slot models.TimeSlot) (*models.ScheduledActivity, error) {
	if p.current == nil {
		return nil, ErrNoActiveSchedule
	}

	entry := &models.ScheduledActivity{
		ID:       uuid.New(),
		Activity: activity,
		Slot:     slot,
	}

	entries := p.current.DayActivities(slot.Day)
	p.current.SetDayActivities(slot.Day, append(entries, entry))
	p.current.Touch()
	p.recompute()

	return entry, nil
}

// RemoveActivity removes the entry from whichever day contains it.
// Unknown ids are a no-op; scheduled activity ids are unique across both days.
func (p *Planner) RemoveActivity(id uuid.UUID) error {
	if p.current == nil {
		return ErrNoActiveSchedule
	}

	removed := false
	for _, day := range []models.Day{models.DaySaturday, models.DaySunday} {
		entries := p.current.DayActivities(day)
		for i, entry := range entries {
			if entry.ID == id {
				p.current.SetDayActivities(day, append(entries[:i:i], entries[i+1:]...))
				removed = true
				break
			}
		}
		if removed {
			break
		}
	}

	if removed {
		p.current.Touch()
		p.recompute()
	}
	return nil
}

// MoveActivity removes the entry from its current position and re-inserts it
// at the end of the target day's collection with the new slot. Cross-day
// moves are supported.
func (p *Planner) MoveActivity(id uuid.UUID, slot models.TimeSlot) error {
	if p.current == nil {
		return ErrNoActiveSchedule
	}

	entry := p.take(id)
	if entry == nil {
		return nil
	}

	entry.Slot = slot
	entries := p.current.DayActivities(slot.Day)
	p.current.SetDayActivities(slot.Day, append(entries, entry))
	p.current.Touch()
	p.recompute()
	return nil
}

// ReorderActivities replaces the relative order of the activities that share
// the given day and period. orderedIDs must be exactly the current id set of
// that partition; activities in other periods keep their positions.
func (p *Planner) ReorderActivities(day models.Day, period models.Period, orderedIDs []uuid.UUID) error {
	if p.current == nil {
		return ErrNoActiveSchedule
	}

	entries := p.current.DayActivities(day)
	partition := make(map[uuid.UUID]*models.ScheduledActivity)
	for _, entry := range entries {
		if entry.Slot.Period == period {
			partition[entry.ID] = entry
		}
	}

	if len(orderedIDs) != len(partition) {
		return &InvalidPermutationError{
			Day:    string(day),
			Period: string(period),
			Reason: "id count does not match partition size",
		}
	}

	reordered := make([]*models.ScheduledActivity, 0, len(orderedIDs))
	seen := make(map[uuid.UUID]bool, len(orderedIDs))
	for _, id := range orderedIDs {
		entry, ok := partition[id]
		if !ok {
			return &InvalidPermutationError{
				Day:    string(day),
				Period: string(period),
				Reason: "id " + id.String() + " is not in the partition",
			}
		}
		if seen[id] {
			return &InvalidPermutationError{
				Day:    string(day),
				Period: string(period),
				Reason: "id " + id.String() + " appears more than once",
			}
		}
		seen[id] = true
		reordered = append(reordered, entry)
	}

	// Splice the reordered partition back, leaving other periods untouched
	next := 0
	result := make([]*models.ScheduledActivity, 0, len(entries))
	for _, entry := range entries {
		if entry.Slot.Period == period {
			result = append(result, reordered[next])
			next++
		} else {
			result = append(result, entry)
		}
	}

	p.current.SetDayActivities(day, result)
	p.current.Touch()
	p.recompute()
	return nil
}

// UpdateNotes sets the free-text notes on a scheduled activity.
// Field-level update; conflicts are not recomputed.
func (p *Planner) UpdateNotes(id uuid.UUID, notes string) error {
	if p.current == nil {
		return ErrNoActiveSchedule
	}
	if entry := p.find(id); entry != nil {
		entry.Notes = notes
		p.current.Touch()
	}
	return nil
}

// ToggleCompletion flips the completed flag on a scheduled activity
func (p *Planner) ToggleCompletion(id uuid.UUID) error {
	if p.current == nil {
		return ErrNoActiveSchedule
	}
	if entry := p.find(id); entry != nil {
		entry.Completed = !entry.Completed
		p.current.Touch()
	}
	return nil
}

// TotalDuration sums the duration of all activities scheduled on a day
func (p *Planner) TotalDuration(day models.Day) int {
	if p.current == nil {
		return 0
	}
	total := 0
	for _, entry := range p.current.DayActivities(day) {
		total += entry.Activity.DurationMinutes
	}
	return total
}

func (p *Planner) find(id uuid.UUID) *models.ScheduledActivity {
	if p.current == nil {
		return nil
	}
	for _, day := range []models.Day{models.DaySaturday, models.DaySunday} {
		for _, entry := range p.current.DayActivities(day) {
			if entry.ID == id {
				return entry
			}
		}
	}
	return nil
}

// take removes and returns the entry with the given id, or nil
func (p *Planner) take(id uuid.UUID) *models.ScheduledActivity {
	for _, day := range []models.Day{models.DaySaturday, models.DaySunday} {
		entries := p.current.DayActivities(day)
		for i, entry := range entries {
			if entry.ID == id {
				p.current.SetDayActivities(day, append(entries[:i:i], entries[i+1:]...))
				return entry
			}
		}
	}
	return nil
}

func (p *Planner) recompute() {
	if p.current == nil {
		p.conflicts = nil
		return
	}
	p.conflicts = DetectConflicts(p.current)
}
