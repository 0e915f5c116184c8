// Package catalog supplies the starter activity catalog loaded into an
// empty store on first run.
package catalog

import (
	"context"
	_ "embed"
	"fmt"

	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/google/uuid"
	"github.com/weekendly/planner/internal/models"
)

//go:embed seed.yaml
var seedData []byte

type seedCategory struct {
	ID          uuid.UUID `yaml:"id"`
	Name        string    `yaml:"name"`
	Color       string    `yaml:"color"`
	Icon        string    `yaml:"icon"`
	Description string    `yaml:"description"`
}

type seedActivity struct {
	ID               uuid.UUID `yaml:"id"`
	Title            string    `yaml:"title"`
	Description      string    `yaml:"description"`
	Category         uuid.UUID `yaml:"category"`
	Duration         int       `yaml:"duration"`
	Energy           string    `yaml:"energy"`
	Moods            []string  `yaml:"moods"`
	WeatherDependent bool      `yaml:"weather_dependent"`
	Tags             []string  `yaml:"tags"`
}

type seedFile struct {
	Categories []seedCategory `yaml:"categories"`
	Activities []seedActivity `yaml:"activities"`
}

// Seed parses the embedded starter catalog
func Seed() ([]*models.ActivityCategory, []*models.Activity, error) {
	var file seedFile
	if err := yaml.Unmarshal(seedData, &file); err != nil {
		return nil, nil, fmt.Errorf("failed to parse seed catalog: %w", err)
	}

	categories := make([]*models.ActivityCategory, 0, len(file.Categories))
	categoryIDs := make(map[uuid.UUID]bool, len(file.Categories))
	for _, c := range file.Categories {
		categories = append(categories, &models.ActivityCategory{
			ID:          c.ID,
			Name:        c.Name,
			Color:       c.Color,
			Icon:        c.Icon,
			Description: c.Description,
		})
		categoryIDs[c.ID] = true
	}

	activities := make([]*models.Activity, 0, len(file.Activities))
	for _, a := range file.Activities {
		if a.Duration <= 0 {
			return nil, nil, fmt.Errorf("seed activity %q has non-positive duration", a.Title)
		}
		if !categoryIDs[a.Category] {
			return nil, nil, fmt.Errorf("seed activity %q references unknown category %s", a.Title, a.Category)
		}
		activities = append(activities, &models.Activity{
			ID:               a.ID,
			Title:            a.Title,
			Description:      a.Description,
			CategoryID:       a.Category,
			DurationMinutes:  a.Duration,
			EnergyLevel:      models.EnergyLevel(a.Energy),
			Moods:            a.Moods,
			WeatherDependent: a.WeatherDependent,
			Tags:             a.Tags,
		})
	}

	return categories, activities, nil
}

// CatalogStore is the persistence surface seeding needs
type CatalogStore interface {
	LoadCategories(ctx context.Context) ([]*models.ActivityCategory, error)
	SaveCategories(ctx context.Context, categories []*models.ActivityCategory) error
	SaveActivities(ctx context.Context, activities []*models.Activity) error
}

// EnsureSeeded loads the starter catalog into the store when it is empty.
// A store that already has categories is left untouched.
func EnsureSeeded(ctx context.Context, st CatalogStore, logger *zap.Logger) error {
	if logger == nil {
		logger = zap.NewNop()
	}

	existing, err := st.LoadCategories(ctx)
	if err != nil {
		return fmt.Errorf("failed to check catalog: %w", err)
	}
	if len(existing) > 0 {
		return nil
	}

	categories, activities, err := Seed()
	if err != nil {
		return err
	}
	if err := st.SaveCategories(ctx, categories); err != nil {
		return fmt.Errorf("failed to seed categories: %w", err)
	}
	if err := st.SaveActivities(ctx, activities); err != nil {
		return fmt.Errorf("failed to seed activities: %w", err)
	}

	logger.Info("catalog_seeded",
		zap.Int("categories", len(categories)),
		zap.Int("activities", len(activities)),
	)
	return nil
}
