package validation

import (
	"fmt"
	"strings"
	"unicode"

	"github.com/go-playground/validator/v10"
	"github.com/weekendly/planner/internal/models"
)

var (
	// Validate is a shared validator instance
	Validate *validator.Validate
)

func init() {
	Validate = validator.New()

	// Register custom validators for enums
	if err := Validate.RegisterValidation("weekend_day", validateDay); err != nil {
		panic(fmt.Sprintf("failed to register weekend_day validator: %v", err))
	}
	if err := Validate.RegisterValidation("day_period", validatePeriod); err != nil {
		panic(fmt.Sprintf("failed to register day_period validator: %v", err))
	}
	if err := Validate.RegisterValidation("energy_level", validateEnergyLevel); err != nil {
		panic(fmt.Sprintf("failed to register energy_level validator: %v", err))
	}
}

// validateDay validates that a string is a valid Day enum value
func validateDay(fl validator.FieldLevel) bool {
	switch models.Day(fl.Field().String()) {
	case models.DaySaturday, models.DaySunday:
		return true
	default:
		return false
	}
}

// validatePeriod validates that a string is a valid Period enum value
func validatePeriod(fl validator.FieldLevel) bool {
	switch models.Period(fl.Field().String()) {
	case models.PeriodMorning, models.PeriodAfternoon, models.PeriodEvening, models.PeriodNight:
		return true
	default:
		return false
	}
}

// validateEnergyLevel validates that a string is a valid EnergyLevel enum value
func validateEnergyLevel(fl validator.FieldLevel) bool {
	switch models.EnergyLevel(fl.Field().String()) {
	case models.EnergyLow, models.EnergyMedium, models.EnergyHigh:
		return true
	default:
		return false
	}
}

// SanitizeText sanitizes text input by trimming whitespace and removing control characters
func SanitizeText(text string) string {
	// Trim whitespace
	text = strings.TrimSpace(text)

	// Remove control characters except newline and tab
	var sanitized strings.Builder
	for _, r := range text {
		if unicode.IsControl(r) && r != '\n' && r != '\t' {
			continue
		}
		sanitized.WriteRune(r)
	}

	return sanitized.String()
}

// ValidateDay validates a Day string value
func ValidateDay(value string) error {
	switch models.Day(value) {
	case models.DaySaturday, models.DaySunday:
		return nil
	default:
		return fmt.Errorf("invalid day: %s (must be 'saturday' or 'sunday')", value)
	}
}

// ValidatePeriod validates a Period string value
func ValidatePeriod(value string) error {
	switch models.Period(value) {
	case models.PeriodMorning, models.PeriodAfternoon, models.PeriodEvening, models.PeriodNight:
		return nil
	default:
		return fmt.Errorf("invalid period: %s (must be 'morning', 'afternoon', 'evening', or 'night')", value)
	}
}

// ValidateEnergyLevel validates an EnergyLevel string value
func ValidateEnergyLevel(value string) error {
	switch models.EnergyLevel(value) {
	case models.EnergyLow, models.EnergyMedium, models.EnergyHigh:
		return nil
	default:
		return fmt.Errorf("invalid energy_level: %s (must be 'low', 'medium', or 'high')", value)
	}
}
