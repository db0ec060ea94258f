package formula_test

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nutriadvisor/nutriadvisor/internal/nutrition/formula"
)

func TestBMI(t *testing.T) {
	tests := []struct {
		name     string
		heightCm float64
		weightKg float64
		want     float64
	}{
		{"average adult", 180, 80, 24.7},
		{"underweight", 175, 50, 16.3},
		{"tall heavy", 200, 120, 30.0},
		{"short light", 150, 45, 20.0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := formula.BMI(tt.heightCm, tt.weightKg)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestBMI_MatchesDefinition(t *testing.T) {
	// BMI is weight/(height/100)^2 rounded to one decimal, across the
	// whole valid input range.
	for height := 50.0; height <= 300; height += 25 {
		for weight := 10.0; weight <= 500; weight += 49 {
			got, err := formula.BMI(height, weight)
			require.NoError(t, err)

			raw := weight / math.Pow(height/100, 2)
			assert.Equal(t, math.Round(raw*10)/10, got, "height=%v weight=%v", height, weight)
			assert.Equal(t, math.Round(got*10)/10, got, "must be rounded to 1 decimal")
		}
	}
}

func TestBMI_InvalidInput(t *testing.T) {
	_, err := formula.BMI(0, 80)
	assert.ErrorIs(t, err, formula.ErrInvalidHeight)

	_, err = formula.BMI(180, 0)
	assert.ErrorIs(t, err, formula.ErrInvalidWeight)

	_, err = formula.BMI(-170, 80)
	assert.ErrorIs(t, err, formula.ErrInvalidHeight)
}

func TestBMR_MifflinStJeor(t *testing.T) {
	// male: 10*80 + 6.25*180 - 5*30 + 5 = 800 + 1125 - 150 + 5 = 1780
	got, err := formula.BMR(formula.GenderMale, 30, 180, 80)
	require.NoError(t, err)
	assert.Equal(t, 1780.0, got)

	// female: 10*60 + 6.25*165 - 5*25 - 161 = 1345.25
	got, err = formula.BMR(formula.GenderFemale, 25, 165, 60)
	require.NoError(t, err)
	assert.Equal(t, 1345.25, got)

	// other uses the female constant
	other, err := formula.BMR(formula.GenderOther, 25, 165, 60)
	require.NoError(t, err)
	assert.Equal(t, got, other)
}

func TestBMR_InvalidInput(t *testing.T) {
	_, err := formula.BMR(formula.GenderMale, 30, 0, 80)
	assert.ErrorIs(t, err, formula.ErrInvalidHeight)

	_, err = formula.BMR(formula.GenderMale, 30, 180, 0)
	assert.ErrorIs(t, err, formula.ErrInvalidWeight)

	_, err = formula.BMR(formula.GenderMale, 0, 180, 80)
	assert.ErrorIs(t, err, formula.ErrInvalidAge)
}

func TestTDEE(t *testing.T) {
	tests := []struct {
		level formula.ActivityLevel
		want  float64
	}{
		{formula.ActivitySedentary, 1780 * 1.2},
		{formula.ActivityLight, 1780 * 1.375},
		{formula.ActivityModerate, 1780 * 1.55},
		{formula.ActivityActive, 1780 * 1.725},
		{formula.ActivityVeryActive, 1780 * 1.9},
	}

	for _, tt := range tests {
		t.Run(string(tt.level), func(t *testing.T) {
			assert.Equal(t, tt.want, formula.TDEE(1780, tt.level))
		})
	}
}

func TestTDEE_UnknownLevelDefaultsToSedentary(t *testing.T) {
	got := formula.TDEE(1780, formula.ActivityLevel("couch-potato"))
	assert.Equal(t, formula.TDEE(1780, formula.ActivitySedentary), got)
}

func TestAdjustForGoal(t *testing.T) {
	const tdee = 2759.0

	assert.Equal(t, tdee-500, formula.AdjustForGoal(tdee, formula.GoalWeightLoss))
	assert.Equal(t, tdee+500, formula.AdjustForGoal(tdee, formula.GoalWeightGain))
	assert.Equal(t, tdee+300, formula.AdjustForGoal(tdee, formula.GoalMuscleGain))
	assert.Equal(t, tdee, formula.AdjustForGoal(tdee, formula.GoalMaintain))
	assert.Equal(t, tdee, formula.AdjustForGoal(tdee, formula.GoalGeneralHealth))
}

func TestMacroSplit(t *testing.T) {
	// protein 80*2.2 = 176 g, fat 2259*0.25/9 = 62.75 g,
	// carbs (2259 - 176*4 - 62.75*9)/4 = 247.5625 g
	macros, err := formula.MacroSplit(80, 2259)
	require.NoError(t, err)

	assert.Equal(t, 176.0, macros.ProteinG)
	assert.Equal(t, 62.75, macros.FatsG)
	assert.Equal(t, 247.5625, macros.CarbsG)
}

func TestMacroSplit_EnergyClosure(t *testing.T) {
	// protein*4 + carbs*4 + fats*9 stays within one kcal of the calorie
	// target after rounding each field.
	weights := []float64{45, 60, 80, 110, 150}
	calories := []float64{1200, 1800, 2452.75, 3100, 4000}

	for _, w := range weights {
		for _, cal := range calories {
			macros, err := formula.MacroSplit(w, cal)
			require.NoError(t, err)

			total := math.Round(macros.ProteinG)*formula.KcalPerGramProtein +
				math.Round(macros.CarbsG)*formula.KcalPerGramCarbs +
				math.Round(macros.FatsG)*formula.KcalPerGramFat
			assert.InDelta(t, math.Round(cal), total, 9.0, "weight=%v calories=%v", w, cal)

			// Unrounded split closes exactly.
			exact := macros.ProteinG*formula.KcalPerGramProtein +
				macros.CarbsG*formula.KcalPerGramCarbs +
				macros.FatsG*formula.KcalPerGramFat
			assert.InDelta(t, cal, exact, 1e-6)
		}
	}
}

func TestMacroSplit_InvalidInput(t *testing.T) {
	_, err := formula.MacroSplit(0, 2000)
	assert.ErrorIs(t, err, formula.ErrInvalidWeight)

	_, err = formula.MacroSplit(80, 0)
	assert.ErrorIs(t, err, formula.ErrInvalidCalories)
}

func TestEnumValidity(t *testing.T) {
	for _, g := range formula.AllGenders() {
		assert.True(t, g.Valid())
	}
	for _, l := range formula.AllActivityLevels() {
		assert.True(t, l.Valid())
	}
	for _, g := range formula.AllHealthGoals() {
		assert.True(t, g.Valid())
	}

	assert.False(t, formula.Gender("unknown").Valid())
	assert.False(t, formula.ActivityLevel("extreme").Valid())
	assert.False(t, formula.HealthGoal("bulk").Valid())
}
