package nutrition_test

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nutriadvisor/nutriadvisor/internal/enrichment"
	"github.com/nutriadvisor/nutriadvisor/internal/featureflags"
	"github.com/nutriadvisor/nutriadvisor/internal/nutrition"
	"github.com/nutriadvisor/nutriadvisor/internal/nutrition/formula"
)

// mockProvider is a mock enrichment provider for testing. Answers are keyed
// by question prefix; questions without an answer fail with ErrNoAnswer.
type mockProvider struct {
	mu        sync.Mutex
	answers   map[string]string
	err       error
	questions []string
}

func newMockProvider() *mockProvider {
	return &mockProvider{answers: make(map[string]string)}
}

func (m *mockProvider) Name() string {
	return "mock"
}

func (m *mockProvider) Query(_ context.Context, question string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.questions = append(m.questions, question)

	if m.err != nil {
		return "", m.err
	}
	for prefix, answer := range m.answers {
		if strings.HasPrefix(question, prefix) {
			return answer, nil
		}
	}
	return "", enrichment.ErrNoAnswer
}

func (m *mockProvider) answer(prefix, answer string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.answers[prefix] = answer
}

func (m *mockProvider) setError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.err = err
}

func (m *mockProvider) asked() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.questions...)
}

func (m *mockProvider) askedCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.questions)
}

func newEngine(provider enrichment.Provider) *nutrition.Engine {
	return nutrition.NewEngine(nutrition.EngineConfig{
		Provider:     provider,
		Logger:       zerolog.Nop(),
		QueryTimeout: time.Second,
	})
}

func validInput() nutrition.BiometricInput {
	return nutrition.BiometricInput{
		Age:           30,
		Gender:        formula.GenderMale,
		HeightCm:      180,
		WeightKg:      80,
		ActivityLevel: formula.ActivityModerate,
		HealthGoal:    formula.GoalWeightLoss,
	}
}

func TestProcessHealthData_FullFallback(t *testing.T) {
	provider := newMockProvider()
	provider.setError(errors.New("network down"))
	engine := newEngine(provider)

	analysis, err := engine.ProcessHealthData(context.Background(), validInput())
	require.NoError(t, err)
	require.NotNil(t, analysis)

	// Every numeric field equals the direct formula computation:
	// BMR 10*80 + 6.25*180 - 5*30 + 5 = 1780, TDEE 1780*1.55 = 2759,
	// calories 2759 - 500 = 2259 for the weight-loss goal.
	assert.Equal(t, 24.7, analysis.BMI)
	assert.Equal(t, 1780.0, analysis.BMR)
	assert.Equal(t, 2759.0, analysis.TDEE)
	assert.Equal(t, 2259.0, analysis.Calories)
	assert.Equal(t, 176.0, analysis.ProteinG)
	assert.Equal(t, 62.75, analysis.FatsG)
	assert.Equal(t, 247.5625, analysis.CarbsG)

	assert.Equal(t, []string{nutrition.DefaultRecommendation}, analysis.Recommendations)
	assert.Equal(t, nutrition.DefaultBreakfast, analysis.MealSuggestions.Breakfast)
	assert.NotNil(t, analysis.Micronutrients)
	assert.False(t, analysis.ComputedAt.IsZero())
}

func TestProcessHealthData_NoProvider(t *testing.T) {
	engine := newEngine(nil)

	analysis, err := engine.ProcessHealthData(context.Background(), validInput())
	require.NoError(t, err)

	assert.Equal(t, 1780.0, analysis.BMR)
	assert.Equal(t, 2259.0, analysis.Calories)
}

func TestProcessHealthData_EnrichedValuesWin(t *testing.T) {
	provider := newMockProvider()
	provider.answer("BMI for", "24.9 (body mass index)")
	provider.answer("BMR calculation", "1910 calories per day")
	engine := newEngine(provider)

	analysis, err := engine.ProcessHealthData(context.Background(), validInput())
	require.NoError(t, err)

	// Enriched values appear instead of the formula values.
	assert.Equal(t, 24.9, analysis.BMI)
	assert.Equal(t, 1910.0, analysis.BMR)
	// TDEE query got no answer; formula value is used.
	assert.Equal(t, 2759.0, analysis.TDEE)
}

func TestProcessHealthData_EnrichedTDEEAdjustsCalories(t *testing.T) {
	provider := newMockProvider()
	provider.answer("TDEE calculation", "3000 dietary calories")
	engine := newEngine(provider)

	analysis, err := engine.ProcessHealthData(context.Background(), validInput())
	require.NoError(t, err)

	assert.Equal(t, 3000.0, analysis.TDEE)
	// weight-loss goal: 500 kcal deficit off the enriched TDEE.
	assert.Equal(t, 2500.0, analysis.Calories)
}

func TestProcessHealthData_NonNumericAnswerFallsBack(t *testing.T) {
	provider := newMockProvider()
	provider.answer("BMI for", "a healthy body mass index")
	engine := newEngine(provider)

	analysis, err := engine.ProcessHealthData(context.Background(), validInput())
	require.NoError(t, err)

	// Unparsable answer is absence of a value, not an error.
	assert.Equal(t, 24.7, analysis.BMI)
}

func TestProcessHealthData_EnrichedRecommendationText(t *testing.T) {
	provider := newMockProvider()
	provider.answer("daily nutrition requirements", "Focus on lean protein and whole grains")
	engine := newEngine(provider)

	analysis, err := engine.ProcessHealthData(context.Background(), validInput())
	require.NoError(t, err)

	assert.Equal(t, []string{"Focus on lean protein and whole grains"}, analysis.Recommendations)
}

func TestProcessHealthData_OneFailureDoesNotAbortSiblings(t *testing.T) {
	provider := newMockProvider()
	provider.answer("protein requirements", "180 grams")
	// every other question fails with ErrNoAnswer
	engine := newEngine(provider)

	analysis, err := engine.ProcessHealthData(context.Background(), validInput())
	require.NoError(t, err)

	assert.Equal(t, 180.0, analysis.ProteinG)
	assert.Equal(t, 24.7, analysis.BMI)
	// All seven queries were still dispatched.
	assert.Equal(t, 7, provider.askedCount())
}

func TestProcessHealthData_ValidationErrors(t *testing.T) {
	engine := newEngine(newMockProvider())

	tests := []struct {
		name   string
		mutate func(*nutrition.BiometricInput)
		field  string
	}{
		{"age too low", func(in *nutrition.BiometricInput) { in.Age = 0 }, "age"},
		{"age too high", func(in *nutrition.BiometricInput) { in.Age = 121 }, "age"},
		{"unknown gender", func(in *nutrition.BiometricInput) { in.Gender = "unknown" }, "gender"},
		{"height too low", func(in *nutrition.BiometricInput) { in.HeightCm = 40 }, "height"},
		{"height too high", func(in *nutrition.BiometricInput) { in.HeightCm = 301 }, "height"},
		{"weight too low", func(in *nutrition.BiometricInput) { in.WeightKg = 5 }, "weight"},
		{"weight too high", func(in *nutrition.BiometricInput) { in.WeightKg = 501 }, "weight"},
		{"unknown activity", func(in *nutrition.BiometricInput) { in.ActivityLevel = "extreme" }, "activityLevel"},
		{"unknown goal", func(in *nutrition.BiometricInput) { in.HealthGoal = "bulk" }, "healthGoals"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := validInput()
			tt.mutate(&in)

			_, err := engine.ProcessHealthData(context.Background(), in)
			require.Error(t, err)

			var verr *nutrition.ValidationError
			require.ErrorAs(t, err, &verr)
			require.NotEmpty(t, verr.Errors)
			assert.Equal(t, tt.field, verr.Errors[0].Field)
		})
	}
}

func TestProcessHealthData_ComputationError(t *testing.T) {
	engine := newEngine(newMockProvider())

	// Valid bounds, but the goal deficit drives the calorie target below
	// zero, which the macro split cannot satisfy.
	in := nutrition.BiometricInput{
		Age:           120,
		Gender:        formula.GenderFemale,
		HeightCm:      50,
		WeightKg:      10,
		ActivityLevel: formula.ActivitySedentary,
		HealthGoal:    formula.GoalWeightLoss,
	}

	_, err := engine.ProcessHealthData(context.Background(), in)
	require.Error(t, err)

	var cerr *nutrition.ComputationError
	require.ErrorAs(t, err, &cerr)
	assert.ErrorIs(t, err, formula.ErrInvalidCalories)
}

func TestProcessHealthData_FlagDisablesEnrichment(t *testing.T) {
	provider := newMockProvider()

	repo := featureflags.NewInMemoryRepository()
	require.NoError(t, repo.SetFlag(context.Background(), &featureflags.Flag{
		Key:   featureflags.FlagDisableEnrichment,
		Value: true,
	}))
	flags := featureflags.NewService(featureflags.ServiceConfig{
		Repository: repo,
		Logger:     zerolog.Nop(),
	})

	engine := nutrition.NewEngine(nutrition.EngineConfig{
		Provider: provider,
		Flags:    flags,
		Logger:   zerolog.Nop(),
	})

	analysis, err := engine.ProcessHealthData(context.Background(), validInput())
	require.NoError(t, err)

	assert.Equal(t, 0, provider.askedCount(), "no enrichment queries when disabled")
	assert.Equal(t, 1780.0, analysis.BMR)
}

func TestCalculateNutrition(t *testing.T) {
	provider := newMockProvider()
	provider.answer("protein requirements", "170 grams per day")
	provider.answer("macronutrient distribution", "40% carbs, 30% protein, 30% fat")
	engine := newEngine(provider)

	req, err := engine.CalculateNutrition(context.Background(), validInput())
	require.NoError(t, err)

	assert.Equal(t, 2259.0, req.Calories)
	assert.Equal(t, 170.0, req.ProteinG)
	assert.Equal(t, 247.5625, req.CarbsG)
	assert.Equal(t, 62.75, req.FatsG)
	assert.Equal(t, "40% carbs, 30% protein, 30% fat", req.MacroSummary)
}

func TestCalculateNutrition_FullFallback(t *testing.T) {
	provider := newMockProvider()
	provider.setError(errors.New("timeout"))
	engine := newEngine(provider)

	req, err := engine.CalculateNutrition(context.Background(), validInput())
	require.NoError(t, err)

	assert.Equal(t, 176.0, req.ProteinG)
	assert.Equal(t, nutrition.DefaultMacroSummary, req.MacroSummary)
}

func TestGenerateMealPlan_CalorieSplit(t *testing.T) {
	provider := newMockProvider()
	engine := newEngine(provider)

	_, err := engine.GenerateMealPlan(context.Background(), nutrition.MealPlanRequest{
		Requirements: nutrition.Requirements{Calories: 2000},
	})
	require.NoError(t, err)

	asked := strings.Join(provider.asked(), "\n")
	assert.Contains(t, asked, "healthy breakfast ideas 500 calories")
	assert.Contains(t, asked, "healthy lunch ideas 700 calories")
	assert.Contains(t, asked, "healthy dinner ideas 600 calories")
	assert.Contains(t, asked, "healthy snack ideas 200 calories")
}

func TestGenerateMealPlan_EnrichedSlots(t *testing.T) {
	provider := newMockProvider()
	provider.answer("healthy breakfast", "Greek omelette with spinach")
	provider.answer("healthy dinner", "Baked cod with sweet potato")
	engine := newEngine(provider)

	plan, err := engine.GenerateMealPlan(context.Background(), nutrition.MealPlanRequest{
		Requirements:        nutrition.Requirements{Calories: 2000},
		DietaryRestrictions: "vegetarian",
	})
	require.NoError(t, err)

	assert.Equal(t, "Greek omelette with spinach", plan.Meals.Breakfast)
	assert.Equal(t, "Baked cod with sweet potato", plan.Meals.Dinner)
	// Failed slots degrade independently to their canned suggestion.
	assert.Equal(t, nutrition.DefaultLunch, plan.Meals.Lunch)
	assert.Equal(t, []string{nutrition.DefaultSnack}, plan.Meals.Snacks)
	assert.Equal(t, 2000.0, plan.TotalCalories)

	// Restrictions are part of the slot queries.
	asked := strings.Join(provider.asked(), "\n")
	assert.Contains(t, asked, "vegetarian")
}

func TestGenerateMealPlan_RequiresCalories(t *testing.T) {
	engine := newEngine(newMockProvider())

	_, err := engine.GenerateMealPlan(context.Background(), nutrition.MealPlanRequest{})
	require.Error(t, err)

	var verr *nutrition.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "nutritionRequirements.calories", verr.Errors[0].Field)
}

func TestAnalyzeFood(t *testing.T) {
	provider := newMockProvider()
	provider.answer("nutrition facts apple", "95 calories, 25 g carbs, 0.5 g protein")
	engine := newEngine(provider)

	result, err := engine.AnalyzeFood(context.Background(), []nutrition.FoodItem{
		{Name: "apple"},
		{Name: "dragon fruit", Quantity: "200 g"},
	})
	require.NoError(t, err)
	require.Len(t, result.Analyses, 2)

	assert.Equal(t, "apple", result.Analyses[0].Food)
	assert.Equal(t, "1 serving", result.Analyses[0].Quantity)
	assert.Equal(t, "95 calories, 25 g carbs, 0.5 g protein", result.Analyses[0].Nutrition)

	// The second item's failure degrades only that item.
	assert.Equal(t, "dragon fruit", result.Analyses[1].Food)
	assert.Equal(t, "200 g", result.Analyses[1].Quantity)
	assert.Equal(t, nutrition.NutritionUnavailable, result.Analyses[1].Nutrition)

	assert.Equal(t, nutrition.CombinedAnalysisAvailable, result.TotalNutrition)
}

func TestAnalyzeFood_AllFailing(t *testing.T) {
	provider := newMockProvider()
	provider.setError(errors.New("service down"))
	engine := newEngine(provider)

	result, err := engine.AnalyzeFood(context.Background(), []nutrition.FoodItem{
		{Name: "apple"},
	})
	require.NoError(t, err)
	require.Len(t, result.Analyses, 1)

	assert.Equal(t, "apple", result.Analyses[0].Food)
	assert.Equal(t, "1 serving", result.Analyses[0].Quantity)
	assert.Equal(t, nutrition.NutritionUnavailable, result.Analyses[0].Nutrition)
	assert.Equal(t, nutrition.CombinedAnalysisUnavailable, result.TotalNutrition)
}

func TestAnalyzeFood_EmptyBatch(t *testing.T) {
	engine := newEngine(newMockProvider())

	_, err := engine.AnalyzeFood(context.Background(), nil)
	require.Error(t, err)

	var verr *nutrition.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "foodItems", verr.Errors[0].Field)
}

func TestHealthInsights(t *testing.T) {
	provider := newMockProvider()
	provider.answer("health insights", "Consider increasing daily activity")
	engine := newEngine(provider)

	insights, err := engine.HealthInsights(context.Background(), validInput())
	require.NoError(t, err)

	assert.Equal(t, []string{"Consider increasing daily activity"}, insights.Insights)
	assert.Equal(t, []string{nutrition.DefaultAdvice}, insights.Recommendations)
}

func TestHealthInsights_Fallback(t *testing.T) {
	provider := newMockProvider()
	provider.setError(errors.New("down"))
	engine := newEngine(provider)

	insights, err := engine.HealthInsights(context.Background(), validInput())
	require.NoError(t, err)

	assert.Equal(t, []string{nutrition.DefaultInsight}, insights.Insights)
}

func TestChartData(t *testing.T) {
	provider := newMockProvider()
	provider.answer("nutrition chart", "pie chart: 45% carbs, 30% protein, 25% fat")
	engine := newEngine(provider)

	chart, err := engine.ChartData(context.Background(), nutrition.ChartRequest{
		Type: nutrition.ChartNutrition,
		Nutrition: &nutrition.Requirements{
			Calories: 2259,
			ProteinG: 176,
			CarbsG:   247.5625,
			FatsG:    62.75,
		},
	})
	require.NoError(t, err)

	assert.Equal(t, nutrition.ChartNutrition, chart.Type)
	assert.Equal(t, "pie chart: 45% carbs, 30% protein, 25% fat", chart.Description)
	assert.False(t, chart.GeneratedAt.IsZero())
}

func TestChartData_ProgressFallback(t *testing.T) {
	provider := newMockProvider()
	provider.setError(errors.New("down"))
	engine := newEngine(provider)

	chart, err := engine.ChartData(context.Background(), nutrition.ChartRequest{
		Type:     nutrition.ChartProgress,
		WeightKg: 80,
	})
	require.NoError(t, err)

	assert.Equal(t, nutrition.ChartUnavailable, chart.Description)
}

func TestChartData_UnknownType(t *testing.T) {
	engine := newEngine(newMockProvider())

	_, err := engine.ChartData(context.Background(), nutrition.ChartRequest{Type: "sparkline"})
	require.Error(t, err)

	var verr *nutrition.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "type", verr.Errors[0].Field)
}
