package models

import (
	"github.com/google/uuid"
)

// ConflictType classifies a scheduling conflict
type ConflictType string

const (
	ConflictTimeOverlap    ConflictType = "time_overlap"
	ConflictEnergyMismatch ConflictType = "energy_mismatch"
	ConflictWeather        ConflictType = "weather_conflict"
	ConflictLocation       ConflictType = "location_conflict"
)

// ConflictSeverity indicates how serious a conflict is
type ConflictSeverity string

const (
	SeverityLow    ConflictSeverity = "low"
	SeverityMedium ConflictSeverity = "medium"
	SeverityHigh   ConflictSeverity = "high"
)

// Conflict flags two scheduled activities that violate a scheduling rule.
// Conflicts are derived wholesale from the current schedule state and are
// never persisted independently.
type Conflict struct {
	ID          uuid.UUID        `json:"id"`
	Type        ConflictType     `json:"type"`
	ActivityIDs []uuid.UUID      `json:"activity_ids"`
	Severity    ConflictSeverity `json:"severity"`
	Message     string           `json:"message"`
}
