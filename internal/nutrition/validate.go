package nutrition

import (
	"fmt"

	"github.com/nutriadvisor/nutriadvisor/internal/api/models"
)

// Biometric bounds. Values outside these ranges are rejected, not clamped.
const (
	MinAge      = 1
	MaxAge      = 120
	MinHeightCm = 50
	MaxHeightCm = 300
	MinWeightKg = 10
	MaxWeightKg = 500
)

// Validate checks the biometric input against the documented bounds and enum
// literals. Unknown enum values are validation errors, never silent defaults.
func (in BiometricInput) Validate() []models.FieldError {
	var errs []models.FieldError

	if in.Age < MinAge || in.Age > MaxAge {
		errs = append(errs, models.FieldError{
			Field:   "age",
			Message: fmt.Sprintf("must be between %d and %d", MinAge, MaxAge),
		})
	}

	if !in.Gender.Valid() {
		errs = append(errs, models.FieldError{
			Field:   "gender",
			Message: "must be one of: male, female, other",
		})
	}

	if in.HeightCm < MinHeightCm || in.HeightCm > MaxHeightCm {
		errs = append(errs, models.FieldError{
			Field:   "height",
			Message: fmt.Sprintf("must be between %d and %d cm", MinHeightCm, MaxHeightCm),
		})
	}

	if in.WeightKg < MinWeightKg || in.WeightKg > MaxWeightKg {
		errs = append(errs, models.FieldError{
			Field:   "weight",
			Message: fmt.Sprintf("must be between %d and %d kg", MinWeightKg, MaxWeightKg),
		})
	}

	if !in.ActivityLevel.Valid() {
		errs = append(errs, models.FieldError{
			Field:   "activityLevel",
			Message: "must be one of: sedentary, light, moderate, active, very-active",
		})
	}

	if !in.HealthGoal.Valid() {
		errs = append(errs, models.FieldError{
			Field:   "healthGoals",
			Message: "must be one of: weight-loss, weight-gain, maintain, muscle-gain, general-health",
		})
	}

	return errs
}

// validateFoodItems checks a food analysis batch.
func validateFoodItems(items []FoodItem) []models.FieldError {
	if len(items) == 0 {
		return []models.FieldError{{Field: "foodItems", Message: "is required"}}
	}

	var errs []models.FieldError
	for i, item := range items {
		if item.Name == "" {
			errs = append(errs, models.FieldError{
				Field:   fmt.Sprintf("foodItems[%d].name", i),
				Message: "is required",
			})
		}
	}
	return errs
}
