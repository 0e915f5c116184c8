package models

import (
	"github.com/google/uuid"
)

// EnergyLevel represents how demanding an activity is
type EnergyLevel string

const (
	EnergyLow    EnergyLevel = "low"
	EnergyMedium EnergyLevel = "medium"
	EnergyHigh   EnergyLevel = "high"
)

// Activity represents a catalog activity. Catalog entities are created by
// data import and never mutated by the schedule engine.
type Activity struct {
	ID               uuid.UUID   `json:"id"`
	Title            string      `json:"title"`
	Description      string      `json:"description"`
	CategoryID       uuid.UUID   `json:"category_id"`
	DurationMinutes  int         `json:"duration_minutes"`
	EnergyLevel      EnergyLevel `json:"energy_level"`
	Moods            []string    `json:"moods,omitempty"`
	WeatherDependent bool        `json:"weather_dependent"`
	Tags             []string    `json:"tags,omitempty"`
}

// ActivityCategory represents a catalog category
type ActivityCategory struct {
	ID          uuid.UUID `json:"id"`
	Name        string    `json:"name"`
	Color       string    `json:"color"`
	Icon        string    `json:"icon"`
	Description string    `json:"description"`
}
