// internal/nutrition/calculator.go
package nutrition

import (
	"fmt"
	"math"
	"strings"

	"fitforge/internal/models"
)

const (
	minAge = 13
	maxAge = 100

	// Safe daily calorie floors. Any unrecognized sex token gets the
	// non-male floor; callers are expected to flag such tokens.
	calorieFloorMale  = 1500
	calorieFloorOther = 1200

	// Calories above TDEE allowed for surplus goals.
	maxSurplus = 700

	// Approximate kcal content of 1 kg of body fat.
	kcalPerKg = 7700

	activityMin = 1.2
	activityMax = 1.9
)

// activityLevels maps exercise-frequency answers to TDEE multipliers.
// Ordered: the first entry whose keyword appears in the answer wins.
var activityLevels = []struct {
	keyword    string
	multiplier float64
}{
	{"daily", 1.725},
	{"5", 1.725},
	{"3-4", 1.55},
	{"1-2", 1.375},
	{"rarely", 1.2},
	{"never", 1.2},
	{"sedentary", 1.2},
}

// goalMultipliers maps goal keywords to calorie multipliers, first match
// wins. Anything unmatched is maintenance.
var goalMultipliers = []struct {
	keyword    string
	multiplier float64
}{
	{"lose", 0.80},
	{"loss", 0.80},
	{"fat", 0.80},
	{"cut", 0.80},
	{"recomp", 0.95},
	{"gain", 1.12},
	{"muscle", 1.12},
	{"bulk", 1.12},
	{"maintain", 1.0},
}

// Occupation keywords nudge the activity multiplier before clamping.
var (
	heavyOccupations  = []string{"construction", "labor", "labour", "farm", "warehouse", "mover", "athlete"}
	activeOccupations = []string{"nurse", "waiter", "waitress", "chef", "teacher", "trainer", "on my feet", "retail"}
	deskOccupations   = []string{"desk", "office", "programmer", "developer", "driver", "accountant", "remote", "writer"}
)

// Compute derives the full nutrition profile from one quiz submission.
// It is pure and deterministic: same answers, same profile. All failure
// modes are explicit errors; no NaN or Inf ever leaves this function.
func Compute(a models.QuizAnswers) (models.NutritionProfile, error) {
	var p models.NutritionProfile

	if a.Age < minAge || a.Age > maxAge {
		return p, fmt.Errorf("%w: %d", ErrInvalidAge, a.Age)
	}
	sex := strings.ToLower(strings.TrimSpace(a.Gender))
	if sex == "" {
		return p, ErrUnsupportedSex
	}

	heightCm, heightDisp, err := parseLength(a.Height)
	if err != nil {
		return p, fmt.Errorf("height: %w", err)
	}
	weightKg, weightDisp, err := parseWeight(a.CurrentWeight)
	if err != nil {
		return p, fmt.Errorf("current weight: %w", err)
	}
	targetKg, targetDisp, err := parseWeight(a.TargetWeight)
	if err != nil {
		return p, fmt.Errorf("target weight: %w", err)
	}
	if heightCm <= 0 || weightKg <= 0 {
		return p, fmt.Errorf("%w: non-positive height or weight", ErrCalculation)
	}

	heightM := heightCm / 100
	bmi := round1(weightKg / (heightM * heightM))

	bodyFat := resolveBodyFat(a, sex, heightCm)

	bmr := computeBMR(sex, weightKg, heightCm, a.Age, bodyFat)
	activity := activityMultiplier(a.ExerciseFrequency, a.OccupationActivity)
	tdee := math.Round(bmr * activity)

	goalCalories := int(math.Round(tdee * goalMultiplier(a.MainGoal)))
	goalCalories = clampCalories(goalCalories, bmr, tdee, sex)

	macros, goalCalories, err := splitMacros(goalCalories, weightKg, a.MainGoal, a.DietaryStyle)
	if err != nil {
		return p, err
	}

	weeks := weeksToGoal(weightKg, targetKg, tdee, float64(goalCalories))

	p = models.NutritionProfile{
		BMI:                  bmi,
		BMR:                  math.Round(bmr),
		TDEE:                 tdee,
		BodyFatPercentage:    bodyFat,
		Macros:               macros,
		GoalCalories:         goalCalories,
		GoalWeight:           round1(targetKg),
		EstimatedWeeksToGoal: weeks,
		Display: models.Display{
			Height:       heightDisp,
			Weight:       weightDisp,
			TargetWeight: targetDisp,
		},
	}
	return p, nil
}

// RecognizedSex reports whether the token maps to one of the two sexes the
// formulas are defined for. Unrecognized tokens still compute (non-male
// floor, neutral BMR constant) but should be flagged by the caller.
func RecognizedSex(gender string) bool {
	s := strings.ToLower(strings.TrimSpace(gender))
	return s == "male" || s == "female"
}

// resolveBodyFat prefers a plausible user-supplied percentage, then the
// Navy circumference estimate. Returns nil for "unknown".
func resolveBodyFat(a models.QuizAnswers, sex string, heightCm float64) *float64 {
	if a.BodyFat != nil && plausibleBodyFat(*a.BodyFat) {
		v := round1(*a.BodyFat)
		return &v
	}
	return navyBodyFat(sex, heightCm, a.Neck, a.Waist, a.Hip)
}

func plausibleBodyFat(v float64) bool {
	return v >= 2 && v <= 60
}

// navyBodyFat estimates body fat from circumferences using the US Navy
// formulas. The formula is sex-specific; any other sex token or a missing
// circumference yields nil rather than an error.
func navyBodyFat(sex string, heightCm float64, neck, waist, hip *models.Length) *float64 {
	neckCm, ok := optionalLengthCm(neck)
	if !ok {
		return nil
	}
	waistCm, ok := optionalLengthCm(waist)
	if !ok {
		return nil
	}

	var pct float64
	switch sex {
	case "male":
		if waistCm <= neckCm || heightCm <= 0 {
			return nil
		}
		pct = 495/(1.0324-0.19077*math.Log10(waistCm-neckCm)+0.15456*math.Log10(heightCm)) - 450
	case "female":
		hipCm, ok := optionalLengthCm(hip)
		if !ok {
			return nil
		}
		if waistCm+hipCm <= neckCm || heightCm <= 0 {
			return nil
		}
		pct = 495/(1.29579-0.35004*math.Log10(waistCm+hipCm-neckCm)+0.22100*math.Log10(heightCm)) - 450
	default:
		return nil
	}

	if math.IsNaN(pct) || math.IsInf(pct, 0) || !plausibleBodyFat(pct) {
		return nil
	}
	v := round1(pct)
	return &v
}

// computeBMR uses Katch-McArdle when a plausible body-fat percentage is
// known, otherwise Mifflin-St Jeor with a sex-dependent constant.
func computeBMR(sex string, weightKg, heightCm float64, age int, bodyFat *float64) float64 {
	if bodyFat != nil && plausibleBodyFat(*bodyFat) {
		lean := weightKg * (1 - *bodyFat/100)
		return 370 + 21.6*lean
	}

	base := 10*weightKg + 6.25*heightCm - 5*float64(age)
	switch sex {
	case "male":
		return base + 5
	case "female":
		return base - 161
	default:
		return base - 78
	}
}

// activityMultiplier looks up the exercise-frequency multiplier and nudges
// it for occupations that contradict it, clamped to [1.2, 1.9].
func activityMultiplier(frequency, occupation string) float64 {
	mult := 1.375
	freq := strings.ToLower(frequency)
	for _, level := range activityLevels {
		if strings.Contains(freq, level.keyword) {
			mult = level.multiplier
			break
		}
	}

	occ := strings.ToLower(occupation)
	switch {
	case containsAny(occ, heavyOccupations):
		mult += 0.15
	case containsAny(occ, activeOccupations):
		mult += 0.1
	case containsAny(occ, deskOccupations):
		mult -= 0.1
	}

	return math.Min(activityMax, math.Max(activityMin, mult))
}

func goalMultiplier(goal string) float64 {
	g := strings.ToLower(goal)
	for _, entry := range goalMultipliers {
		if strings.Contains(g, entry.keyword) {
			return entry.multiplier
		}
	}
	return 1.0
}

// clampCalories enforces the hard safety bound:
// [max(1.1*BMR, sex floor), TDEE+700].
func clampCalories(goal int, bmr, tdee float64, sex string) int {
	floor := calorieFloorOther
	if sex == "male" {
		floor = calorieFloorMale
	}
	lo := int(math.Round(math.Max(bmr*1.1, float64(floor))))
	hi := int(math.Round(tdee)) + maxSurplus
	if goal < lo {
		return lo
	}
	if goal > hi {
		return hi
	}
	return goal
}

// splitMacros allocates goal calories across protein, fat and carbs in
// whole grams. Fat absorbs the mod-4 rounding residual (at most 3 g) so
// that 4*protein + 9*fat + 4*carbs equals goalCalories exactly.
func splitMacros(goalCalories int, weightKg float64, goal, dietaryStyle string) (models.Macros, int, error) {
	if goalCalories <= 0 {
		return models.Macros{}, 0, fmt.Errorf("%w: goal calories is zero", ErrCalculation)
	}

	fatPct := 0.28
	style := strings.ToLower(dietaryStyle)
	switch {
	case strings.Contains(style, "keto"):
		fatPct = 0.35
	case strings.Contains(style, "vegan"):
		fatPct = 0.25
	}

	proteinPerKg := 1.8
	if strings.Contains(strings.ToLower(goal), "recomp") {
		proteinPerKg = 2.0
	}

	proteinG := int(math.Round(weightKg * proteinPerKg))
	fatG := int(math.Round(float64(goalCalories) * fatPct / 9))

	// Whole-gram carbs can only close the budget in steps of 4 kcal, so
	// shift fat by the mod-4 residual first (at most 3 g either way).
	remainder := goalCalories - 4*proteinG - 9*fatG
	if remainder > 0 {
		shift := remainder % 4
		if remainder-9*shift < 0 {
			shift -= 4
		}
		fatG += shift
		remainder -= 9 * shift
	}
	if remainder < 0 || fatG < 0 {
		return models.Macros{}, 0, fmt.Errorf("%w: protein and fat targets exceed %d kcal", ErrCalculation, goalCalories)
	}
	carbsG := remainder / 4

	proteinPct := int(math.Round(float64(4*proteinG) / float64(goalCalories) * 100))
	fatPctInt := int(math.Round(float64(9*fatG) / float64(goalCalories) * 100))

	return models.Macros{
		ProteinG:             proteinG,
		CarbsG:               carbsG,
		FatG:                 fatG,
		ProteinPctOfCalories: proteinPct,
		FatPctOfCalories:     fatPctInt,
		CarbsPctOfCalories:   100 - proteinPct - fatPctInt,
	}, goalCalories, nil
}

// weeksToGoal estimates weeks to reach the target weight from the daily
// calorie delta at ~7700 kcal per kg. Nil when the delta is zero.
func weeksToGoal(currentKg, targetKg, tdee, goalCalories float64) *float64 {
	weeklyDelta := (tdee - goalCalories) * 7
	if weeklyDelta == 0 {
		return nil
	}
	weeks := round1(math.Abs(targetKg-currentKg) * kcalPerKg / math.Abs(weeklyDelta))
	return &weeks
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}

func containsAny(s string, keywords []string) bool {
	for _, k := range keywords {
		if strings.Contains(s, k) {
			return true
		}
	}
	return false
}
