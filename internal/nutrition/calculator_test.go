package nutrition

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fitforge/internal/models"
)

func f(v float64) *float64 { return &v }

func baseAnswers() models.QuizAnswers {
	return models.QuizAnswers{
		Age:               30,
		Gender:            "male",
		Height:            models.Length{Cm: f(180)},
		CurrentWeight:     models.Weight{Kg: f(85)},
		TargetWeight:      models.Weight{Kg: f(75)},
		MainGoal:          "Weight loss",
		ExerciseFrequency: "3-4 times/week",
		DietaryStyle:      "balanced",
	}
}

func TestComputeReferenceScenario(t *testing.T) {
	p, err := Compute(baseAnswers())
	require.NoError(t, err)

	assert.InDelta(t, 26.2, p.BMI, 0.05)
	assert.Less(t, float64(p.GoalCalories), p.TDEE, "a weight-loss goal must sit below maintenance")

	macroCalories := p.Macros.ProteinG*4 + p.Macros.FatG*9 + p.Macros.CarbsG*4
	assert.Equal(t, p.GoalCalories, macroCalories)

	assert.Equal(t, "180 cm", p.Display.Height)
	assert.Equal(t, "85 kg", p.Display.Weight)
	assert.Equal(t, "75 kg", p.Display.TargetWeight)
}

func TestComputeGoalCaloriesWithinSafetyBounds(t *testing.T) {
	cases := []struct {
		name  string
		tweak func(*models.QuizAnswers)
	}{
		{"weight loss male", func(a *models.QuizAnswers) {}},
		{"aggressive loss small female", func(a *models.QuizAnswers) {
			a.Gender = "female"
			a.Height = models.Length{Cm: f(155)}
			a.CurrentWeight = models.Weight{Kg: f(50)}
			a.TargetWeight = models.Weight{Kg: f(45)}
			a.ExerciseFrequency = "never"
		}},
		{"muscle gain", func(a *models.QuizAnswers) {
			a.MainGoal = "Build muscle"
			a.TargetWeight = models.Weight{Kg: f(95)}
		}},
		{"unspecified sex token", func(a *models.QuizAnswers) {
			a.Gender = "nonbinary"
		}},
		{"imperial units", func(a *models.QuizAnswers) {
			a.Height = models.Length{Ft: f(5), Inch: f(10)}
			a.CurrentWeight = models.Weight{Lbs: f(190)}
			a.TargetWeight = models.Weight{Lbs: f(170)}
		}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			a := baseAnswers()
			tc.tweak(&a)

			p, err := Compute(a)
			require.NoError(t, err)

			floor := 1200.0
			if a.Gender == "male" {
				floor = 1500
			}
			lo := math.Round(math.Max(1.1*p.BMR, floor))
			hi := p.TDEE + 700

			assert.GreaterOrEqual(t, float64(p.GoalCalories), lo)
			assert.LessOrEqual(t, float64(p.GoalCalories), hi)

			macroCalories := p.Macros.ProteinG*4 + p.Macros.FatG*9 + p.Macros.CarbsG*4
			assert.Equal(t, p.GoalCalories, macroCalories)
			assert.Equal(t, 100, p.Macros.ProteinPctOfCalories+p.Macros.CarbsPctOfCalories+p.Macros.FatPctOfCalories)
		})
	}
}

func TestComputeInputErrors(t *testing.T) {
	t.Run("age too low", func(t *testing.T) {
		a := baseAnswers()
		a.Age = 9
		_, err := Compute(a)
		assert.ErrorIs(t, err, ErrInvalidAge)
	})

	t.Run("missing height", func(t *testing.T) {
		a := baseAnswers()
		a.Height = models.Length{}
		_, err := Compute(a)
		assert.ErrorIs(t, err, ErrMissingMeasurement)
	})

	t.Run("both unit systems populated", func(t *testing.T) {
		a := baseAnswers()
		a.CurrentWeight = models.Weight{Kg: f(85), Lbs: f(187)}
		_, err := Compute(a)
		assert.ErrorIs(t, err, ErrAmbiguousMeasurement)
	})

	t.Run("empty sex", func(t *testing.T) {
		a := baseAnswers()
		a.Gender = ""
		_, err := Compute(a)
		assert.ErrorIs(t, err, ErrUnsupportedSex)
	})
}

func TestBodyFatSelection(t *testing.T) {
	t.Run("user supplied value wins", func(t *testing.T) {
		a := baseAnswers()
		a.BodyFat = f(18)
		p, err := Compute(a)
		require.NoError(t, err)
		require.NotNil(t, p.BodyFatPercentage)
		assert.Equal(t, 18.0, *p.BodyFatPercentage)

		// Katch-McArdle: 370 + 21.6 * lean mass.
		lean := 85 * (1 - 0.18)
		assert.InDelta(t, 370+21.6*lean, p.BMR, 0.5)
	})

	t.Run("implausible supplied value falls through", func(t *testing.T) {
		a := baseAnswers()
		a.BodyFat = f(75)
		p, err := Compute(a)
		require.NoError(t, err)
		assert.Nil(t, p.BodyFatPercentage)
	})

	t.Run("navy estimate for male", func(t *testing.T) {
		a := baseAnswers()
		a.Neck = &models.Length{Cm: f(38)}
		a.Waist = &models.Length{Cm: f(90)}
		p, err := Compute(a)
		require.NoError(t, err)
		require.NotNil(t, p.BodyFatPercentage)
		assert.Greater(t, *p.BodyFatPercentage, 2.0)
		assert.Less(t, *p.BodyFatPercentage, 60.0)
	})

	t.Run("navy undefined for unrecognized sex", func(t *testing.T) {
		a := baseAnswers()
		a.Gender = "nonbinary"
		a.Neck = &models.Length{Cm: f(38)}
		a.Waist = &models.Length{Cm: f(90)}
		p, err := Compute(a)
		require.NoError(t, err)
		assert.Nil(t, p.BodyFatPercentage)
	})

	t.Run("navy needs hip for female", func(t *testing.T) {
		a := baseAnswers()
		a.Gender = "female"
		a.Neck = &models.Length{Cm: f(33)}
		a.Waist = &models.Length{Cm: f(70)}
		p, err := Compute(a)
		require.NoError(t, err)
		assert.Nil(t, p.BodyFatPercentage)

		a.Hip = &models.Length{Cm: f(95)}
		p, err = Compute(a)
		require.NoError(t, err)
		assert.NotNil(t, p.BodyFatPercentage)
	})
}

func TestActivityMultiplier(t *testing.T) {
	cases := []struct {
		name       string
		frequency  string
		occupation string
		want       float64
	}{
		{"sedentary", "never", "", 1.2},
		{"moderate", "3-4 times/week", "", 1.55},
		{"high", "5+ times/week", "", 1.725},
		{"desk job pulls down", "3-4 times/week", "Office manager", 1.45},
		{"physical job pushes up", "3-4 times/week", "Construction worker", 1.7},
		{"heavy job on top of daily training", "daily", "Warehouse labor", 1.875},
		{"clamped at floor", "never", "Desk job", 1.2},
		{"unknown frequency defaults", "sometimes", "", 1.375},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.InDelta(t, tc.want, activityMultiplier(tc.frequency, tc.occupation), 1e-9)
		})
	}
}

func TestWeeksToGoal(t *testing.T) {
	t.Run("defined for a deficit", func(t *testing.T) {
		p, err := Compute(baseAnswers())
		require.NoError(t, err)
		require.NotNil(t, p.EstimatedWeeksToGoal)
		assert.Greater(t, *p.EstimatedWeeksToGoal, 0.0)
	})

	t.Run("undefined at maintenance", func(t *testing.T) {
		weeks := weeksToGoal(85, 85, 2500, 2500)
		assert.Nil(t, weeks)
	})
}

func TestRecognizedSex(t *testing.T) {
	assert.True(t, RecognizedSex("Male"))
	assert.True(t, RecognizedSex("female"))
	assert.False(t, RecognizedSex("nonbinary"))
	assert.False(t, RecognizedSex(""))
}
