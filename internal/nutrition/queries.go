package nutrition

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Meal slot calorie shares of the daily total.
const (
	breakfastShare = 0.25
	lunchShare     = 0.35
	dinnerShare    = 0.30
	snacksShare    = 0.10
)

// num formats a float the way it reads in a natural-language question:
// no exponent, no trailing zeros.
func num(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func bmiQuery(in BiometricInput) string {
	return fmt.Sprintf("BMI for %s kg and %s cm", num(in.WeightKg), num(in.HeightCm))
}

func bmrQuery(in BiometricInput) string {
	return fmt.Sprintf("BMR calculation %s %d years %s kg %s cm",
		in.Gender, in.Age, num(in.WeightKg), num(in.HeightCm))
}

func tdeeQuery(bmr float64, in BiometricInput) string {
	return fmt.Sprintf("TDEE calculation %s calories %s activity level", num(bmr), in.ActivityLevel)
}

func recommendationQuery(calories float64, in BiometricInput) string {
	return fmt.Sprintf("daily nutrition requirements %s calories %s goal", num(calories), in.HealthGoal)
}

func macroSummaryQuery(in BiometricInput) string {
	return fmt.Sprintf("macronutrient distribution %s goal %s activity", in.HealthGoal, in.ActivityLevel)
}

func proteinQuery(in BiometricInput) string {
	return fmt.Sprintf("protein requirements %s kg body weight %s activity", num(in.WeightKg), in.ActivityLevel)
}

func carbsQuery(in BiometricInput) string {
	return fmt.Sprintf("carbohydrate requirements %s activity level", in.ActivityLevel)
}

func fatsQuery() string {
	return "fat requirements daily nutrition"
}

func mealQuery(slot string, calories float64, restrictions string) string {
	q := fmt.Sprintf("healthy %s ideas %s calories", slot, num(math.Round(calories)))
	if r := strings.TrimSpace(restrictions); r != "" {
		q += " " + r
	}
	return q
}

func foodQuery(item FoodItem) string {
	quantity := item.Quantity
	if quantity == "" {
		quantity = "1 serving"
	}
	return fmt.Sprintf("nutrition facts %s %s", item.Name, quantity)
}

func insightQuery(in BiometricInput) string {
	return fmt.Sprintf("health insights %d years %s %s kg %s cm %s activity %s goal",
		in.Age, in.Gender, num(in.WeightKg), num(in.HeightCm), in.ActivityLevel, in.HealthGoal)
}

func nutritionChartQuery(r Requirements) string {
	return fmt.Sprintf("nutrition chart %s calories %sg protein %sg carbs %sg fats",
		num(r.Calories), num(r.ProteinG), num(r.CarbsG), num(r.FatsG))
}

func progressChartQuery(weightKg float64) string {
	return fmt.Sprintf("progress chart weight %s kg over time", num(weightKg))
}
