package models

import (
	"github.com/google/uuid"
)

// Preferences holds singleton user preferences
type Preferences struct {
	Theme                string      `json:"theme"`
	DefaultView          string      `json:"default_view"`
	FavoriteCategoryIDs  []uuid.UUID `json:"favorite_category_ids,omitempty"`
	PreferredStartPeriod Period      `json:"preferred_start_period"`
	WeatherAware         bool        `json:"weather_aware"`
}
