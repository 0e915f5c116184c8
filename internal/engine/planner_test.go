package engine

import (
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/weekendly/planner/internal/models"
)

func testActivity(title string, minutes int, energy models.EnergyLevel) models.Activity {
	return models.Activity{
		ID:              uuid.New(),
		Title:           title,
		DurationMinutes: minutes,
		EnergyLevel:     energy,
	}
}

func slot(day models.Day, period models.Period) models.TimeSlot {
	return models.TimeSlot{Day: day, Period: period, StartTime: "09:00", EndTime: "12:00"}
}

func TestPlanner_RequiresActiveSchedule(t *testing.T) {
	t.Parallel()

	p := New()

	_, err := p.AddActivity(testActivity("hike", 120, models.EnergyHigh), slot(models.DaySaturday, models.PeriodMorning))
	if !errors.Is(err, ErrNoActiveSchedule) {
		t.Errorf("AddActivity without schedule: expected ErrNoActiveSchedule, got %v", err)
	}

	if err := p.RemoveActivity(uuid.New()); !errors.Is(err, ErrNoActiveSchedule) {
		t.Errorf("RemoveActivity without schedule: expected ErrNoActiveSchedule, got %v", err)
	}

	if err := p.ReorderActivities(models.DaySaturday, models.PeriodMorning, nil); !errors.Is(err, ErrNoActiveSchedule) {
		t.Errorf("ReorderActivities without schedule: expected ErrNoActiveSchedule, got %v", err)
	}
}

func TestPlanner_CreateWeekendResetsState(t *testing.T) {
	t.Parallel()

	p := New()
	p.CreateWeekend("First")
	if _, err := p.AddActivity(testActivity("hike", 120, models.EnergyHigh), slot(models.DaySaturday, models.PeriodMorning)); err != nil {
		t.Fatalf("AddActivity failed: %v", err)
	}
	if _, err := p.AddActivity(testActivity("museum", 90, models.EnergyLow), slot(models.DaySaturday, models.PeriodMorning)); err != nil {
		t.Fatalf("AddActivity failed: %v", err)
	}
	if len(p.Conflicts()) == 0 {
		t.Fatal("expected conflicts before reset")
	}

	w := p.CreateWeekend("Second")
	if w.Title != "Second" {
		t.Errorf("expected title 'Second', got %q", w.Title)
	}
	if len(w.Saturday) != 0 || len(w.Sunday) != 0 {
		t.Error("expected empty day collections on fresh schedule")
	}
	if len(p.Conflicts()) != 0 {
		t.Errorf("expected conflicts reset to empty, got %d", len(p.Conflicts()))
	}
}

func TestPlanner_AddRemoveConservation(t *testing.T) {
	t.Parallel()

	p := New()
	p.CreateWeekend("Trip")

	var ids []uuid.UUID
	for i := 0; i < 5; i++ {
		day := models.DaySaturday
		if i%2 == 1 {
			day = models.DaySunday
		}
		entry, err := p.AddActivity(testActivity("a", 30, models.EnergyLow), slot(day, models.PeriodAfternoon))
		if err != nil {
			t.Fatalf("AddActivity failed: %v", err)
		}
		ids = append(ids, entry.ID)
	}

	if got := len(p.Current().Saturday) + len(p.Current().Sunday); got != 5 {
		t.Fatalf("expected 5 scheduled activities, got %d", got)
	}

	if err := p.RemoveActivity(ids[0]); err != nil {
		t.Fatalf("RemoveActivity failed: %v", err)
	}
	if err := p.RemoveActivity(ids[3]); err != nil {
		t.Fatalf("RemoveActivity failed: %v", err)
	}
	// Removing an unknown id is a no-op
	if err := p.RemoveActivity(uuid.New()); err != nil {
		t.Fatalf("RemoveActivity of unknown id failed: %v", err)
	}

	if got := len(p.Current().Saturday) + len(p.Current().Sunday); got != 3 {
		t.Errorf("expected 3 scheduled activities after removals, got %d", got)
	}
}

func TestPlanner_MoveActivityCrossDay(t *testing.T) {
	t.Parallel()

	p := New()
	p.CreateWeekend("Trip")

	entry, err := p.AddActivity(testActivity("hike", 120, models.EnergyHigh), slot(models.DaySaturday, models.PeriodMorning))
	if err != nil {
		t.Fatalf("AddActivity failed: %v", err)
	}
	if _, err := p.AddActivity(testActivity("brunch", 60, models.EnergyLow), slot(models.DaySunday, models.PeriodMorning)); err != nil {
		t.Fatalf("AddActivity failed: %v", err)
	}

	if err := p.MoveActivity(entry.ID, slot(models.DaySunday, models.PeriodEvening)); err != nil {
		t.Fatalf("MoveActivity failed: %v", err)
	}

	if len(p.Current().Saturday) != 0 {
		t.Errorf("expected saturday empty after move, got %d entries", len(p.Current().Saturday))
	}
	if len(p.Current().Sunday) != 2 {
		t.Fatalf("expected 2 sunday entries after move, got %d", len(p.Current().Sunday))
	}

	moved := p.Current().Sunday[1]
	if moved.ID != entry.ID {
		t.Error("expected moved entry appended at the end of the target day")
	}
	if moved.Slot.Period != models.PeriodEvening {
		t.Errorf("expected slot updated to evening, got %s", moved.Slot.Period)
	}

	// Moving an unknown id is a no-op
	if err := p.MoveActivity(uuid.New(), slot(models.DaySaturday, models.PeriodMorning)); err != nil {
		t.Fatalf("MoveActivity of unknown id failed: %v", err)
	}
}

func TestPlanner_ReorderActivities(t *testing.T) {
	t.Parallel()

	p := New()
	p.CreateWeekend("Trip")

	var morning []uuid.UUID
	for i := 0; i < 3; i++ {
		entry, err := p.AddActivity(testActivity("m", 30, models.EnergyLow), slot(models.DaySaturday, models.PeriodMorning))
		if err != nil {
			t.Fatalf("AddActivity failed: %v", err)
		}
		morning = append(morning, entry.ID)
	}
	evening, err := p.AddActivity(testActivity("e", 30, models.EnergyLow), slot(models.DaySaturday, models.PeriodEvening))
	if err != nil {
		t.Fatalf("AddActivity failed: %v", err)
	}

	reversed := []uuid.UUID{morning[2], morning[1], morning[0]}
	if err := p.ReorderActivities(models.DaySaturday, models.PeriodMorning, reversed); err != nil {
		t.Fatalf("ReorderActivities failed: %v", err)
	}

	// Permutation law: the partition's id set is unchanged, only order differs
	var got []uuid.UUID
	for _, entry := range p.Current().Saturday {
		if entry.Slot.Period == models.PeriodMorning {
			got = append(got, entry.ID)
		}
	}
	if len(got) != 3 {
		t.Fatalf("expected 3 morning entries, got %d", len(got))
	}
	for i, id := range reversed {
		if got[i] != id {
			t.Errorf("position %d: expected %s, got %s", i, id, got[i])
		}
	}

	// The complement is untouched
	last := p.Current().Saturday[len(p.Current().Saturday)-1]
	if last.ID != evening.ID {
		t.Error("expected evening entry to keep its position")
	}
}

func TestPlanner_ReorderActivitiesInvalidPermutation(t *testing.T) {
	t.Parallel()

	p := New()
	p.CreateWeekend("Trip")

	a, _ := p.AddActivity(testActivity("a", 30, models.EnergyLow), slot(models.DaySaturday, models.PeriodMorning))
	b, _ := p.AddActivity(testActivity("b", 30, models.EnergyLow), slot(models.DaySaturday, models.PeriodMorning))

	tests := []struct {
		name string
		ids  []uuid.UUID
	}{
		{name: "missing id", ids: []uuid.UUID{a.ID}},
		{name: "extra id", ids: []uuid.UUID{a.ID, b.ID, uuid.New()}},
		{name: "foreign id", ids: []uuid.UUID{a.ID, uuid.New()}},
		{name: "duplicate id", ids: []uuid.UUID{a.ID, a.ID}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := p.ReorderActivities(models.DaySaturday, models.PeriodMorning, tt.ids)
			var perm *InvalidPermutationError
			if !errors.As(err, &perm) {
				t.Errorf("expected InvalidPermutationError, got %v", err)
			}
		})
	}
}

func TestPlanner_NotesAndCompletion(t *testing.T) {
	t.Parallel()

	p := New()
	p.CreateWeekend("Trip")
	entry, err := p.AddActivity(testActivity("hike", 120, models.EnergyHigh), slot(models.DaySaturday, models.PeriodMorning))
	if err != nil {
		t.Fatalf("AddActivity failed: %v", err)
	}

	if err := p.UpdateNotes(entry.ID, "bring water"); err != nil {
		t.Fatalf("UpdateNotes failed: %v", err)
	}
	if entry.Notes != "bring water" {
		t.Errorf("expected notes updated, got %q", entry.Notes)
	}

	if err := p.ToggleCompletion(entry.ID); err != nil {
		t.Fatalf("ToggleCompletion failed: %v", err)
	}
	if !entry.Completed {
		t.Error("expected completed=true after first toggle")
	}
	if err := p.ToggleCompletion(entry.ID); err != nil {
		t.Fatalf("ToggleCompletion failed: %v", err)
	}
	if entry.Completed {
		t.Error("expected completed=false after second toggle")
	}
}

func TestPlanner_TotalDuration(t *testing.T) {
	t.Parallel()

	p := New()
	if got := p.TotalDuration(models.DaySaturday); got != 0 {
		t.Errorf("expected 0 without schedule, got %d", got)
	}

	p.CreateWeekend("Trip")
	p.AddActivity(testActivity("hike", 120, models.EnergyHigh), slot(models.DaySaturday, models.PeriodMorning))
	p.AddActivity(testActivity("lunch", 45, models.EnergyLow), slot(models.DaySaturday, models.PeriodAfternoon))
	p.AddActivity(testActivity("brunch", 60, models.EnergyLow), slot(models.DaySunday, models.PeriodMorning))

	if got := p.TotalDuration(models.DaySaturday); got != 165 {
		t.Errorf("expected saturday total 165, got %d", got)
	}
	if got := p.TotalDuration(models.DaySunday); got != 60 {
		t.Errorf("expected sunday total 60, got %d", got)
	}
}

func TestDetectConflicts_SharedSlot(t *testing.T) {
	t.Parallel()

	p := New()
	p.CreateWeekend("Trip")

	hike, _ := p.AddActivity(testActivity("hike", 120, models.EnergyHigh), slot(models.DaySaturday, models.PeriodMorning))
	museum, _ := p.AddActivity(testActivity("museum", 90, models.EnergyLow), slot(models.DaySaturday, models.PeriodMorning))

	conflicts := DetectConflicts(p.Current())
	var overlaps []*models.Conflict
	for _, c := range conflicts {
		if c.Type == models.ConflictTimeOverlap {
			overlaps = append(overlaps, c)
		}
	}
	if len(overlaps) != 1 {
		t.Fatalf("expected 1 time_overlap conflict, got %d", len(overlaps))
	}

	c := overlaps[0]
	if c.Severity != models.SeverityHigh {
		t.Errorf("expected high severity, got %s", c.Severity)
	}
	found := map[uuid.UUID]bool{}
	for _, id := range c.ActivityIDs {
		found[id] = true
	}
	if !found[hike.ID] || !found[museum.ID] {
		t.Error("expected conflict to reference both scheduled activities")
	}
}

func TestDetectConflicts_DistinctSlotsDoNotConflict(t *testing.T) {
	t.Parallel()

	p := New()
	p.CreateWeekend("Trip")
	p.AddActivity(testActivity("hike", 120, models.EnergyHigh), slot(models.DaySaturday, models.PeriodMorning))
	p.AddActivity(testActivity("museum", 90, models.EnergyLow), slot(models.DaySaturday, models.PeriodAfternoon))
	p.AddActivity(testActivity("dinner", 90, models.EnergyLow), slot(models.DaySunday, models.PeriodMorning))

	if conflicts := DetectConflicts(p.Current()); len(conflicts) != 0 {
		t.Errorf("expected no conflicts for distinct slots, got %d", len(conflicts))
	}
}

func TestDetectConflicts_EnergyMismatch(t *testing.T) {
	t.Parallel()

	p := New()
	p.CreateWeekend("Trip")
	p.AddActivity(testActivity("hike", 120, models.EnergyHigh), slot(models.DaySunday, models.PeriodMorning))
	p.AddActivity(testActivity("climb", 90, models.EnergyHigh), slot(models.DaySunday, models.PeriodMorning))

	conflicts := DetectConflicts(p.Current())
	var mismatches int
	for _, c := range conflicts {
		if c.Type == models.ConflictEnergyMismatch {
			mismatches++
			if c.Severity != models.SeverityMedium {
				t.Errorf("expected medium severity, got %s", c.Severity)
			}
		}
	}
	if mismatches != 1 {
		t.Errorf("expected 1 energy_mismatch conflict, got %d", mismatches)
	}
}
