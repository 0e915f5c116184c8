package engine

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/weekendly/planner/internal/models"
)

// DetectConflicts scans each day's collection pairwise and returns all
// conflicts in the schedule. Any same-day pair sharing a slot id produces a
// time_overlap conflict, even when the stacking was intentional; pairs in
// different slots never conflict.
func DetectConflicts(schedule *models.WeekendSchedule) []*models.Conflict {
	var conflicts []*models.Conflict

	for _, day := range []models.Day{models.DaySaturday, models.DaySunday} {
		entries := schedule.DayActivities(day)
		for i := 0; i < len(entries); i++ {
			for j := i + 1; j < len(entries); j++ {
				a, b := entries[i], entries[j]
				if a.Slot.ID() != b.Slot.ID() {
					continue
				}

				conflicts = append(conflicts, &models.Conflict{
					ID:          uuid.New(),
					Type:        models.ConflictTimeOverlap,
					ActivityIDs: []uuid.UUID{a.ID, b.ID},
					Severity:    models.SeverityHigh,
					Message: fmt.Sprintf("%q and %q are both scheduled for %s %s",
						a.Activity.Title, b.Activity.Title, day, a.Slot.Period),
				})

				if a.Activity.EnergyLevel == models.EnergyHigh && b.Activity.EnergyLevel == models.EnergyHigh {
					conflicts = append(conflicts, &models.Conflict{
						ID:          uuid.New(),
						Type:        models.ConflictEnergyMismatch,
						ActivityIDs: []uuid.UUID{a.ID, b.ID},
						Severity:    models.SeverityMedium,
						Message: fmt.Sprintf("%q and %q are both high energy in the same period",
							a.Activity.Title, b.Activity.Title),
					})
				}
			}
		}
	}

	return conflicts
}
