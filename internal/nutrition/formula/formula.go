// Package formula provides the pure nutrition calculations used when the
// enrichment provider cannot supply a value. All functions are stateless and
// reentrant; callers are expected to validate inputs against the biometric
// bounds before invoking them.
package formula

import (
	"errors"
	"math"
)

// Computation errors. These indicate an invariant the math cannot work
// around (e.g. a zero height) and are fatal for the request.
var (
	ErrInvalidHeight   = errors.New("height must be greater than zero")
	ErrInvalidWeight   = errors.New("weight must be greater than zero")
	ErrInvalidAge      = errors.New("age must be greater than zero")
	ErrInvalidCalories = errors.New("calories must be greater than zero")
)

// Gender is the biological profile used by the BMR equation.
type Gender string

const (
	GenderMale   Gender = "male"
	GenderFemale Gender = "female"
	GenderOther  Gender = "other"
)

// AllGenders returns all supported gender values.
func AllGenders() []Gender {
	return []Gender{GenderMale, GenderFemale, GenderOther}
}

// Valid reports whether g is one of the supported gender values.
func (g Gender) Valid() bool {
	switch g {
	case GenderMale, GenderFemale, GenderOther:
		return true
	}
	return false
}

// ActivityLevel represents self-reported daily activity.
type ActivityLevel string

const (
	ActivitySedentary  ActivityLevel = "sedentary"
	ActivityLight      ActivityLevel = "light"
	ActivityModerate   ActivityLevel = "moderate"
	ActivityActive     ActivityLevel = "active"
	ActivityVeryActive ActivityLevel = "very-active"
)

// activityMultipliers maps activity levels to their TDEE multiplier.
// Single source of truth: validation and TDEE both read from here.
var activityMultipliers = map[ActivityLevel]float64{
	ActivitySedentary:  1.2,
	ActivityLight:      1.375,
	ActivityModerate:   1.55,
	ActivityActive:     1.725,
	ActivityVeryActive: 1.9,
}

// AllActivityLevels returns all supported activity levels.
func AllActivityLevels() []ActivityLevel {
	return []ActivityLevel{
		ActivitySedentary,
		ActivityLight,
		ActivityModerate,
		ActivityActive,
		ActivityVeryActive,
	}
}

// Valid reports whether l is one of the supported activity levels.
func (l ActivityLevel) Valid() bool {
	_, ok := activityMultipliers[l]
	return ok
}

// HealthGoal represents the user's stated objective.
type HealthGoal string

const (
	GoalWeightLoss    HealthGoal = "weight-loss"
	GoalWeightGain    HealthGoal = "weight-gain"
	GoalMaintain      HealthGoal = "maintain"
	GoalMuscleGain    HealthGoal = "muscle-gain"
	GoalGeneralHealth HealthGoal = "general-health"
)

// AllHealthGoals returns all supported health goals.
func AllHealthGoals() []HealthGoal {
	return []HealthGoal{
		GoalWeightLoss,
		GoalWeightGain,
		GoalMaintain,
		GoalMuscleGain,
		GoalGeneralHealth,
	}
}

// Valid reports whether g is one of the supported health goals.
func (g HealthGoal) Valid() bool {
	switch g {
	case GoalWeightLoss, GoalWeightGain, GoalMaintain, GoalMuscleGain, GoalGeneralHealth:
		return true
	}
	return false
}

// Macros holds a daily macronutrient target in grams.
type Macros struct {
	ProteinG float64
	CarbsG   float64
	FatsG    float64
}

// Energy per gram of each macronutrient, in kcal.
const (
	KcalPerGramProtein = 4
	KcalPerGramCarbs   = 4
	KcalPerGramFat     = 9
)

// BMI computes the body mass index from height in centimeters and weight in
// kilograms, rounded to one decimal place.
func BMI(heightCm, weightKg float64) (float64, error) {
	if heightCm <= 0 {
		return 0, ErrInvalidHeight
	}
	if weightKg <= 0 {
		return 0, ErrInvalidWeight
	}

	heightM := heightCm / 100
	bmi := weightKg / (heightM * heightM)
	return math.Round(bmi*10) / 10, nil
}

// BMR computes the basal metabolic rate using the Mifflin-St Jeor equation.
// The male constant is +5; female and other use -161.
func BMR(gender Gender, ageYears int, heightCm, weightKg float64) (float64, error) {
	if heightCm <= 0 {
		return 0, ErrInvalidHeight
	}
	if weightKg <= 0 {
		return 0, ErrInvalidWeight
	}
	if ageYears <= 0 {
		return 0, ErrInvalidAge
	}

	bmr := 10*weightKg + 6.25*heightCm - 5*float64(ageYears)
	if gender == GenderMale {
		bmr += 5
	} else {
		bmr -= 161
	}
	return bmr, nil
}

// TDEE scales a basal metabolic rate by the activity level multiplier.
// An unrecognized activity level uses the sedentary multiplier (1.2). This
// matches how previously stored profiles with stale level values are treated;
// fresh input is validated against the known levels before reaching here.
func TDEE(bmr float64, level ActivityLevel) float64 {
	mult, ok := activityMultipliers[level]
	if !ok {
		mult = activityMultipliers[ActivitySedentary]
	}
	return bmr * mult
}

// AdjustForGoal shifts a TDEE into a daily calorie target for the goal:
// a 500 kcal deficit for weight loss, a 500 kcal surplus for weight gain,
// a 300 kcal surplus for muscle gain. Maintain and general-health return
// the TDEE unchanged.
func AdjustForGoal(tdee float64, goal HealthGoal) float64 {
	switch goal {
	case GoalWeightLoss:
		return tdee - 500
	case GoalWeightGain:
		return tdee + 500
	case GoalMuscleGain:
		return tdee + 300
	default:
		return tdee
	}
}

// MacroSplit derives a macronutrient target from body weight and the daily
// calorie target: protein at 2.2 g per kg of body weight, fat at 25% of
// calories, and carbohydrates from the remaining energy. The split closes
// the energy budget: protein*4 + carbs*4 + fats*9 equals calories to within
// one kcal after rounding each field.
func MacroSplit(weightKg, calories float64) (Macros, error) {
	if weightKg <= 0 {
		return Macros{}, ErrInvalidWeight
	}
	if calories <= 0 {
		return Macros{}, ErrInvalidCalories
	}

	protein := weightKg * 2.2
	fats := calories * 0.25 / KcalPerGramFat
	carbs := (calories - protein*KcalPerGramProtein - fats*KcalPerGramFat) / KcalPerGramCarbs

	return Macros{
		ProteinG: protein,
		CarbsG:   carbs,
		FatsG:    fats,
	}, nil
}
