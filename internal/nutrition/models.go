// Package nutrition implements the nutrition computation engine: it turns
// validated biometric input into calorie and macronutrient targets, asking
// the enrichment provider first and falling back to the formula library for
// anything the provider cannot answer.
package nutrition

import (
	"time"

	"github.com/nutriadvisor/nutriadvisor/internal/api/models"
	"github.com/nutriadvisor/nutriadvisor/internal/nutrition/formula"
)

// Canned fallback strings used when enrichment returns no usable text.
const (
	DefaultRecommendation = "Maintain a balanced diet with regular exercise"
	DefaultInsight        = "Maintain a balanced diet and regular exercise"
	DefaultAdvice         = "Consult with a healthcare professional for personalized advice"
	DefaultBreakfast      = "Oatmeal with berries and nuts"
	DefaultLunch          = "Grilled chicken salad with quinoa"
	DefaultDinner         = "Salmon with roasted vegetables"
	DefaultSnack          = "Greek yogurt with almonds"
	DefaultMacroSummary   = "Balanced macronutrient distribution"

	// NutritionUnavailable is the per-item placeholder when a food item's
	// enrichment query fails.
	NutritionUnavailable = "Nutrition information not available"

	// ChartUnavailable is the placeholder when chart enrichment fails.
	ChartUnavailable = "Chart generation temporarily unavailable"

	// Batch-level food analysis status strings.
	CombinedAnalysisAvailable   = "Combined nutrition analysis available"
	CombinedAnalysisUnavailable = "Analysis temporarily unavailable"
)

// BiometricInput is the validated user profile every computation starts from.
type BiometricInput struct {
	Age           int                   `json:"age"`
	Gender        formula.Gender        `json:"gender"`
	HeightCm      float64               `json:"height"`
	WeightKg      float64               `json:"weight"`
	ActivityLevel formula.ActivityLevel `json:"activityLevel"`
	HealthGoal    formula.HealthGoal    `json:"healthGoals"`
}

// MealSuggestions holds one suggestion per meal slot.
type MealSuggestions struct {
	Breakfast string   `json:"breakfast"`
	Lunch     string   `json:"lunch"`
	Dinner    string   `json:"dinner"`
	Snacks    []string `json:"snacks"`
}

// Analysis is the full computation result for one biometric input. It is a
// request-scoped value object: created once, never mutated, persisted
// verbatim by the report layer.
type Analysis struct {
	BMI      float64 `json:"bmi"`
	BMR      float64 `json:"bmr"`
	TDEE     float64 `json:"tdee"`
	Calories float64 `json:"calories"`
	ProteinG float64 `json:"protein"`
	CarbsG   float64 `json:"carbs"`
	FatsG    float64 `json:"fats"`

	Recommendations []string          `json:"recommendations"`
	MealSuggestions MealSuggestions   `json:"mealSuggestions"`
	Micronutrients  map[string]string `json:"micronutrients"`

	ComputedAt time.Time `json:"computedAt"`
}

// Requirements is the daily macro target broken out of an analysis.
type Requirements struct {
	Calories     float64 `json:"calories"`
	ProteinG     float64 `json:"protein"`
	CarbsG       float64 `json:"carbs"`
	FatsG        float64 `json:"fats"`
	MacroSummary string  `json:"macronutrients"`
}

// MealPlanRequest asks for a meal plan against previously computed
// requirements.
type MealPlanRequest struct {
	Requirements        Requirements `json:"nutritionRequirements"`
	Preferences         string       `json:"preferences"`
	DietaryRestrictions string       `json:"dietaryRestrictions"`
}

// MealPlan is a per-slot meal plan for one day.
type MealPlan struct {
	Meals         MealSuggestions `json:"meals"`
	TotalCalories float64         `json:"totalCalories"`
	Requirements  Requirements    `json:"macronutrients"`
}

// FoodItem is one food to analyze. Quantity defaults to "1 serving".
type FoodItem struct {
	Name     string `json:"name"`
	Quantity string `json:"quantity,omitempty"`
}

// FoodAnalysisItem is the nutrition text for one analyzed food item.
type FoodAnalysisItem struct {
	Food      string `json:"food"`
	Quantity  string `json:"quantity"`
	Nutrition string `json:"nutrition"`
}

// FoodAnalysis is the result of analyzing a batch of food items.
// Analyses preserves the input order.
type FoodAnalysis struct {
	Analyses       []FoodAnalysisItem `json:"analyses"`
	TotalNutrition string             `json:"totalNutrition"`
}

// Insights holds free-text health insights for a biometric profile.
type Insights struct {
	Insights        []string `json:"insights"`
	Recommendations []string `json:"recommendations"`
}

// ChartType selects which chart descriptor to generate.
type ChartType string

const (
	ChartNutrition ChartType = "nutrition"
	ChartProgress  ChartType = "progress"
)

// Valid reports whether t is a supported chart type.
func (t ChartType) Valid() bool {
	return t == ChartNutrition || t == ChartProgress
}

// ChartRequest asks for a chart descriptor.
type ChartRequest struct {
	Type ChartType `json:"type"`

	// Nutrition is required for nutrition charts.
	Nutrition *Requirements `json:"nutrition,omitempty"`

	// WeightKg is required for progress charts.
	WeightKg float64 `json:"weight,omitempty"`
}

// Chart is a generated chart descriptor.
type Chart struct {
	Type        ChartType `json:"type"`
	Description string    `json:"chartData"`
	GeneratedAt time.Time `json:"timestamp"`
}

// ValidationError carries structured field errors for rejected input.
type ValidationError struct {
	Errors []models.FieldError
}

func (e *ValidationError) Error() string {
	return "validation failed"
}

// ComputationError indicates a formula invariant could not be satisfied.
// It is fatal for the request and propagates to the caller.
type ComputationError struct {
	Field string
	Err   error
}

func (e *ComputationError) Error() string {
	return "computing " + e.Field + ": " + e.Err.Error()
}

func (e *ComputationError) Unwrap() error {
	return e.Err
}
