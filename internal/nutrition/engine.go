package nutrition

import (
	"context"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"

	"github.com/nutriadvisor/nutriadvisor/internal/api/models"
	"github.com/nutriadvisor/nutriadvisor/internal/enrichment"
	"github.com/nutriadvisor/nutriadvisor/internal/featureflags"
	"github.com/nutriadvisor/nutriadvisor/internal/nutrition/formula"
)

// EngineConfig holds configuration for the nutrition engine.
type EngineConfig struct {
	// Provider is the enrichment provider (optional).
	// A nil provider means every field comes from the formula library.
	Provider enrichment.Provider

	// Flags is the feature flag service (optional).
	// If provided, enrichment can be disabled at runtime.
	Flags *featureflags.Service

	// Logger for engine operations.
	Logger zerolog.Logger

	// QueryTimeout bounds each individual enrichment query (default: 10s).
	// A timed-out query falls back exactly like a failed one.
	QueryTimeout time.Duration
}

// Engine orchestrates enrichment queries and formula fallback. It holds no
// per-request state; concurrent requests need no coordination.
type Engine struct {
	provider     enrichment.Provider
	flags        *featureflags.Service
	logger       zerolog.Logger
	queryTimeout time.Duration
}

// NewEngine creates a new nutrition engine.
func NewEngine(cfg EngineConfig) *Engine {
	queryTimeout := cfg.QueryTimeout
	if queryTimeout == 0 {
		queryTimeout = 10 * time.Second
	}

	return &Engine{
		provider:     cfg.Provider,
		flags:        cfg.Flags,
		logger:       cfg.Logger,
		queryTimeout: queryTimeout,
	}
}

// ProcessHealthData computes the full analysis for a health assessment:
// BMI, BMR, TDEE, the goal-adjusted calorie target, the macro split, and a
// recommendation text. Enriched numeric answers win over formula values
// field by field; the formula library backfills everything else, so the
// returned analysis is never partially populated.
func (e *Engine) ProcessHealthData(ctx context.Context, in BiometricInput) (*Analysis, error) {
	if errs := in.Validate(); len(errs) > 0 {
		return nil, &ValidationError{Errors: errs}
	}

	base, err := computeBaseline(in)
	if err != nil {
		return nil, err
	}

	var answers map[string]string
	if e.enrichmentEnabled(ctx) {
		answers = e.askAll(ctx, map[string]string{
			"bmi":             bmiQuery(in),
			"bmr":             bmrQuery(in),
			"tdee":            tdeeQuery(base.bmr, in),
			"protein":         proteinQuery(in),
			"carbs":           carbsQuery(in),
			"fats":            fatsQuery(),
			"recommendations": recommendationQuery(base.calories, in),
		})
	}

	tdee := numberOr(answers, "tdee", base.tdee)
	calories := formula.AdjustForGoal(tdee, in.HealthGoal)
	macros := base.macros
	if calories != base.calories {
		m, splitErr := formula.MacroSplit(in.WeightKg, calories)
		if splitErr != nil {
			// Enriched TDEE produced an unusable calorie target; treat the
			// answer as absent and stay on the formula path.
			tdee = base.tdee
			calories = base.calories
		} else {
			macros = m
		}
	}

	return &Analysis{
		BMI:      numberOr(answers, "bmi", base.bmi),
		BMR:      numberOr(answers, "bmr", base.bmr),
		TDEE:     tdee,
		Calories: calories,
		ProteinG: numberOr(answers, "protein", macros.ProteinG),
		CarbsG:   numberOr(answers, "carbs", macros.CarbsG),
		FatsG:    numberOr(answers, "fats", macros.FatsG),
		Recommendations: []string{
			textOr(answers["recommendations"], DefaultRecommendation),
		},
		MealSuggestions: defaultMealSuggestions(),
		Micronutrients:  map[string]string{},
		ComputedAt:      time.Now(),
	}, nil
}

// CalculateNutrition computes the daily macro requirements plus a
// distribution summary text.
func (e *Engine) CalculateNutrition(ctx context.Context, in BiometricInput) (*Requirements, error) {
	if errs := in.Validate(); len(errs) > 0 {
		return nil, &ValidationError{Errors: errs}
	}

	base, err := computeBaseline(in)
	if err != nil {
		return nil, err
	}

	var answers map[string]string
	if e.enrichmentEnabled(ctx) {
		answers = e.askAll(ctx, map[string]string{
			"protein": proteinQuery(in),
			"carbs":   carbsQuery(in),
			"fats":    fatsQuery(),
			"summary": macroSummaryQuery(in),
		})
	}

	return &Requirements{
		Calories:     base.calories,
		ProteinG:     numberOr(answers, "protein", base.macros.ProteinG),
		CarbsG:       numberOr(answers, "carbs", base.macros.CarbsG),
		FatsG:        numberOr(answers, "fats", base.macros.FatsG),
		MacroSummary: textOr(answers["summary"], DefaultMacroSummary),
	}, nil
}

// GenerateMealPlan builds a one-day meal plan against previously computed
// requirements. The daily calorie target splits 25% breakfast, 35% lunch,
// 30% dinner, 10% snacks; each slot is enriched independently and degrades
// to its canned suggestion on its own.
func (e *Engine) GenerateMealPlan(ctx context.Context, req MealPlanRequest) (*MealPlan, error) {
	if req.Requirements.Calories <= 0 {
		return nil, &ValidationError{Errors: []models.FieldError{
			{Field: "nutritionRequirements.calories", Message: "must be greater than zero"},
		}}
	}

	total := req.Requirements.Calories

	var answers map[string]string
	if e.enrichmentEnabled(ctx) {
		answers = e.askAll(ctx, map[string]string{
			"breakfast": mealQuery("breakfast", total*breakfastShare, req.DietaryRestrictions),
			"lunch":     mealQuery("lunch", total*lunchShare, req.DietaryRestrictions),
			"dinner":    mealQuery("dinner", total*dinnerShare, req.DietaryRestrictions),
			"snacks":    mealQuery("snack", total*snacksShare, req.DietaryRestrictions),
		})
	}

	return &MealPlan{
		Meals: MealSuggestions{
			Breakfast: textOr(answers["breakfast"], DefaultBreakfast),
			Lunch:     textOr(answers["lunch"], DefaultLunch),
			Dinner:    textOr(answers["dinner"], DefaultDinner),
			Snacks:    []string{textOr(answers["snacks"], DefaultSnack)},
		},
		TotalCalories: total,
		Requirements:  req.Requirements,
	}, nil
}

// AnalyzeFood fetches nutrition text for each food item in the batch. Items
// are enriched concurrently; one item's failure degrades only that item to
// the unavailable placeholder. Output order matches input order.
func (e *Engine) AnalyzeFood(ctx context.Context, items []FoodItem) (*FoodAnalysis, error) {
	if errs := validateFoodItems(items); len(errs) > 0 {
		return nil, &ValidationError{Errors: errs}
	}

	enabled := e.enrichmentEnabled(ctx)
	analyses := make([]FoodAnalysisItem, len(items))

	var wg sync.WaitGroup
	var anyEnriched atomic.Bool

	for i, item := range items {
		quantity := item.Quantity
		if quantity == "" {
			quantity = "1 serving"
		}
		analyses[i] = FoodAnalysisItem{
			Food:      item.Name,
			Quantity:  quantity,
			Nutrition: NutritionUnavailable,
		}

		if !enabled {
			continue
		}

		wg.Add(1)
		go func(i int, item FoodItem) {
			defer wg.Done()
			if answer, ok := e.ask(ctx, foodQuery(item)); ok && strings.TrimSpace(answer) != "" {
				analyses[i].Nutrition = answer
				anyEnriched.Store(true)
			}
		}(i, item)
	}
	wg.Wait()

	total := CombinedAnalysisUnavailable
	if anyEnriched.Load() {
		total = CombinedAnalysisAvailable
	}

	return &FoodAnalysis{
		Analyses:       analyses,
		TotalNutrition: total,
	}, nil
}

// HealthInsights generates free-text insights for a biometric profile.
func (e *Engine) HealthInsights(ctx context.Context, in BiometricInput) (*Insights, error) {
	if errs := in.Validate(); len(errs) > 0 {
		return nil, &ValidationError{Errors: errs}
	}

	insight := DefaultInsight
	if e.enrichmentEnabled(ctx) {
		if answer, ok := e.ask(ctx, insightQuery(in)); ok {
			insight = textOr(answer, DefaultInsight)
		}
	}

	return &Insights{
		Insights:        []string{insight},
		Recommendations: []string{DefaultAdvice},
	}, nil
}

// ChartData generates a chart descriptor for the requested chart type.
func (e *Engine) ChartData(ctx context.Context, req ChartRequest) (*Chart, error) {
	if errs := validateChartRequest(req); len(errs) > 0 {
		return nil, &ValidationError{Errors: errs}
	}

	var question string
	switch req.Type {
	case ChartNutrition:
		question = nutritionChartQuery(*req.Nutrition)
	case ChartProgress:
		question = progressChartQuery(req.WeightKg)
	}

	description := ChartUnavailable
	if e.enrichmentEnabled(ctx) {
		if answer, ok := e.ask(ctx, question); ok {
			description = textOr(answer, ChartUnavailable)
		}
	}

	return &Chart{
		Type:        req.Type,
		Description: description,
		GeneratedAt: time.Now(),
	}, nil
}

// baseline holds the formula-derived values for one input. Every enriched
// field has its counterpart here.
type baseline struct {
	bmi      float64
	bmr      float64
	tdee     float64
	calories float64
	macros   formula.Macros
}

// computeBaseline runs the full formula chain. Failures here mean an
// invariant the engine cannot recover from; they surface as ComputationError.
func computeBaseline(in BiometricInput) (*baseline, error) {
	bmi, err := formula.BMI(in.HeightCm, in.WeightKg)
	if err != nil {
		return nil, &ComputationError{Field: "bmi", Err: err}
	}

	bmr, err := formula.BMR(in.Gender, in.Age, in.HeightCm, in.WeightKg)
	if err != nil {
		return nil, &ComputationError{Field: "bmr", Err: err}
	}

	tdee := formula.TDEE(bmr, in.ActivityLevel)
	calories := formula.AdjustForGoal(tdee, in.HealthGoal)

	macros, err := formula.MacroSplit(in.WeightKg, calories)
	if err != nil {
		return nil, &ComputationError{Field: "macros", Err: err}
	}

	return &baseline{
		bmi:      bmi,
		bmr:      bmr,
		tdee:     tdee,
		calories: calories,
		macros:   macros,
	}, nil
}

// enrichmentEnabled reports whether enrichment queries should be attempted.
func (e *Engine) enrichmentEnabled(ctx context.Context) bool {
	if e.provider == nil {
		return false
	}
	if e.flags.IsEnrichmentDisabled(ctx) {
		e.logger.Debug().Msg("enrichment disabled by feature flag")
		return false
	}
	return true
}

// ask runs a single enrichment query under the per-query timeout. Failures
// are absorbed: the caller falls back and the request continues.
func (e *Engine) ask(ctx context.Context, question string) (string, bool) {
	queryCtx, cancel := context.WithTimeout(ctx, e.queryTimeout)
	defer cancel()

	answer, err := e.provider.Query(queryCtx, question)
	if err != nil {
		e.logger.Debug().Err(err).
			Str("provider", e.provider.Name()).
			Str("question", question).
			Msg("enrichment query failed, using formula fallback")
		return "", false
	}
	return answer, true
}

// askAll dispatches the questions concurrently and waits for every one to
// finish, success or failure, before returning. Failed questions are simply
// absent from the result.
func (e *Engine) askAll(ctx context.Context, questions map[string]string) map[string]string {
	answers := make(map[string]string, len(questions))

	var mu sync.Mutex
	var wg sync.WaitGroup

	for key, question := range questions {
		wg.Add(1)
		go func(key, question string) {
			defer wg.Done()
			if answer, ok := e.ask(ctx, question); ok {
				mu.Lock()
				answers[key] = answer
				mu.Unlock()
			}
		}(key, question)
	}
	wg.Wait()

	return answers
}

// numberOr returns the parsed enriched value for key, or the fallback when
// the answer is missing or not numeric.
func numberOr(answers map[string]string, key string, fallback float64) float64 {
	if answer, ok := answers[key]; ok {
		if v, ok := enrichment.ParseNumber(answer); ok {
			return v
		}
	}
	return fallback
}

// textOr returns s unless it is empty or whitespace, in which case it
// returns the canned default.
func textOr(s, fallback string) string {
	if strings.TrimSpace(s) == "" {
		return fallback
	}
	return s
}

// defaultMealSuggestions returns the canned per-slot suggestions used when
// no meal plan has been generated yet.
func defaultMealSuggestions() MealSuggestions {
	return MealSuggestions{
		Breakfast: DefaultBreakfast,
		Lunch:     DefaultLunch,
		Dinner:    DefaultDinner,
		Snacks:    []string{DefaultSnack},
	}
}

// validateChartRequest checks a chart request.
func validateChartRequest(req ChartRequest) []models.FieldError {
	var errs []models.FieldError

	if !req.Type.Valid() {
		errs = append(errs, models.FieldError{
			Field:   "type",
			Message: "must be one of: nutrition, progress",
		})
		return errs
	}

	switch req.Type {
	case ChartNutrition:
		if req.Nutrition == nil {
			errs = append(errs, models.FieldError{Field: "nutrition", Message: "is required for nutrition charts"})
		}
	case ChartProgress:
		if req.WeightKg <= 0 {
			errs = append(errs, models.FieldError{Field: "weight", Message: "must be greater than zero"})
		}
	}

	return errs
}
