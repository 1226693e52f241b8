// internal/plan/validate.go
package plan

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"fitforge/internal/models"
)

// previewLimit bounds how much of an unparseable response is echoed back
// in the violation message.
const previewLimit = 200

// Violation is one concrete problem with a generated plan. Field is a
// JSON path into the document, Message says what is wrong with it.
type Violation struct {
	Field   string
	Message string
}

func (v Violation) String() string {
	return v.Field + ": " + v.Message
}

// FormatViolations renders a violation list one per line, the shape fed
// back into repair prompts.
func FormatViolations(vs []Violation) string {
	lines := make([]string, len(vs))
	for i, v := range vs {
		lines[i] = "- " + v.String()
	}
	return strings.Join(lines, "\n")
}

// Validated is a plan payload that passed every structural check.
type Validated struct {
	Type    models.PlanType
	Meal    *MealPlan
	Workout *WorkoutPlan
	Raw     json.RawMessage
}

var weekdaySet = map[string]bool{
	"monday":    true,
	"tuesday":   true,
	"wednesday": true,
	"thursday":  true,
	"friday":    true,
	"saturday":  true,
	"sunday":    true,
}

var (
	mealTypes    = map[string]bool{"breakfast": true, "lunch": true, "dinner": true, "snack": true}
	intensities  = map[string]bool{"low": true, "moderate": true, "high": true}
	difficulties = map[string]bool{"beginner": true, "intermediate": true, "advanced": true}
)

// Validate parses raw as JSON for the given plan type and runs every
// structural check, returning either the validated payload or the full
// list of violations. A parse failure is a single violation carrying a
// truncated preview of the offending text.
func Validate(planType models.PlanType, raw string) (*Validated, []Violation) {
	switch planType {
	case models.PlanTypeMeal:
		var mp MealPlan
		if vs := decode(raw, &mp); vs != nil {
			return nil, vs
		}
		if vs := validateMealPlan(&mp); len(vs) > 0 {
			return nil, vs
		}
		return &Validated{Type: planType, Meal: &mp, Raw: json.RawMessage(raw)}, nil
	case models.PlanTypeWorkout:
		var wp WorkoutPlan
		if vs := decode(raw, &wp); vs != nil {
			return nil, vs
		}
		if vs := validateWorkoutPlan(&wp); len(vs) > 0 {
			return nil, vs
		}
		return &Validated{Type: planType, Workout: &wp, Raw: json.RawMessage(raw)}, nil
	default:
		return nil, []Violation{{Field: "plan_type", Message: fmt.Sprintf("unknown plan type %q", planType)}}
	}
}

func decode(raw string, dst any) []Violation {
	err := json.Unmarshal([]byte(raw), dst)
	if err == nil {
		return nil
	}
	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &typeErr) && typeErr.Field != "" {
		return []Violation{{Field: typeErr.Field, Message: fmt.Sprintf("expected %s, got %s", typeErr.Type, typeErr.Value)}}
	}
	return []Violation{{Field: "$", Message: "malformed JSON: " + preview(raw)}}
}

func preview(raw string) string {
	s := strings.TrimSpace(raw)
	if len(s) > previewLimit {
		s = s[:previewLimit] + "..."
	}
	return s
}

func validateMealPlan(p *MealPlan) []Violation {
	var vs []Violation

	if len(p.WeeklyPlan) != 7 {
		vs = append(vs, Violation{"weekly_plan", fmt.Sprintf("must contain exactly 7 days, got %d", len(p.WeeklyPlan))})
	}

	seen := map[string]bool{}
	for i, day := range p.WeeklyPlan {
		path := fmt.Sprintf("weekly_plan[%d]", i)
		vs = append(vs, checkDayLabel(path, day.Day, seen)...)

		vs = append(vs, checkMeal(path+".breakfast", day.Breakfast)...)
		vs = append(vs, checkMeal(path+".lunch", day.Lunch)...)
		vs = append(vs, checkMeal(path+".dinner", day.Dinner)...)
		for j := range day.Snacks {
			vs = append(vs, checkMeal(fmt.Sprintf("%s.snacks[%d]", path, j), &day.Snacks[j])...)
		}

		vs = append(vs, checkIntRange(path+".total_calories", day.TotalCalories, 0, 10000)...)
		vs = append(vs, checkNonNegative(path+".total_protein", day.TotalProtein)...)
		vs = append(vs, checkNonNegative(path+".total_carbs", day.TotalCarbs)...)
		vs = append(vs, checkNonNegative(path+".total_fats", day.TotalFats)...)

		vs = append(vs, checkDayTotals(path, day)...)
	}

	s := p.WeeklySummary
	if s.AvgDailyCalories < 800 || s.AvgDailyCalories > 8000 {
		vs = append(vs, Violation{"weekly_summary.avg_daily_calories", fmt.Sprintf("%d is outside the realistic range 800-8000", s.AvgDailyCalories)})
	}
	vs = append(vs, checkNonNegative("weekly_summary.avg_daily_protein", s.AvgDailyProtein)...)
	vs = append(vs, checkNonNegative("weekly_summary.avg_daily_carbs", s.AvgDailyCarbs)...)
	vs = append(vs, checkNonNegative("weekly_summary.avg_daily_fats", s.AvgDailyFats)...)

	return vs
}

// checkDayTotals verifies the day aggregates against the exact sum of its
// meals. Skipped when a required meal is missing; that is already reported.
func checkDayTotals(path string, day DayMeals) []Violation {
	if day.Breakfast == nil || day.Lunch == nil || day.Dinner == nil {
		return nil
	}

	calories := day.Breakfast.Calories + day.Lunch.Calories + day.Dinner.Calories
	protein := day.Breakfast.Protein + day.Lunch.Protein + day.Dinner.Protein
	carbs := day.Breakfast.Carbs + day.Lunch.Carbs + day.Dinner.Carbs
	fats := day.Breakfast.Fats + day.Lunch.Fats + day.Dinner.Fats
	for _, s := range day.Snacks {
		calories += s.Calories
		protein += s.Protein
		carbs += s.Carbs
		fats += s.Fats
	}

	var vs []Violation
	if day.TotalCalories != calories {
		vs = append(vs, Violation{path + ".total_calories", fmt.Sprintf("declared %d but meals sum to %d", day.TotalCalories, calories)})
	}
	if day.TotalProtein != protein {
		vs = append(vs, Violation{path + ".total_protein", fmt.Sprintf("declared %g but meals sum to %g", day.TotalProtein, protein)})
	}
	if day.TotalCarbs != carbs {
		vs = append(vs, Violation{path + ".total_carbs", fmt.Sprintf("declared %g but meals sum to %g", day.TotalCarbs, carbs)})
	}
	if day.TotalFats != fats {
		vs = append(vs, Violation{path + ".total_fats", fmt.Sprintf("declared %g but meals sum to %g", day.TotalFats, fats)})
	}
	return vs
}

func checkMeal(path string, m *Meal) []Violation {
	if m == nil {
		return []Violation{{path, "is required"}}
	}

	var vs []Violation
	vs = append(vs, checkName(path+".name", m.Name)...)
	vs = append(vs, checkIntRange(path+".calories", m.Calories, 0, 5000)...)
	vs = append(vs, checkFloatRange(path+".protein", m.Protein, 0, 500)...)
	vs = append(vs, checkFloatRange(path+".carbs", m.Carbs, 0, 500)...)
	vs = append(vs, checkFloatRange(path+".fats", m.Fats, 0, 300)...)
	if len(m.Ingredients) == 0 {
		vs = append(vs, Violation{path + ".ingredients", "must list at least one ingredient"})
	}
	if len(m.Instructions) == 0 {
		vs = append(vs, Violation{path + ".instructions", "must list at least one step"})
	}
	if !mealTypes[m.MealType] {
		vs = append(vs, Violation{path + ".meal_type", fmt.Sprintf("%q is not one of breakfast, lunch, dinner, snack", m.MealType)})
	}
	if m.PrepTime != nil {
		vs = append(vs, checkIntRange(path+".prep_time", *m.PrepTime, 0, 300)...)
	}
	if m.CookTime != nil {
		vs = append(vs, checkIntRange(path+".cook_time", *m.CookTime, 0, 480)...)
	}
	return vs
}

func validateWorkoutPlan(p *WorkoutPlan) []Violation {
	var vs []Violation

	if len(p.WeeklyPlan) < 1 || len(p.WeeklyPlan) > 7 {
		vs = append(vs, Violation{"weekly_plan", fmt.Sprintf("must contain 1-7 workout days, got %d", len(p.WeeklyPlan))})
	}

	seen := map[string]bool{}
	for i, day := range p.WeeklyPlan {
		path := fmt.Sprintf("weekly_plan[%d]", i)
		vs = append(vs, checkDayLabel(path, day.Day, seen)...)

		if strings.TrimSpace(day.WorkoutName) == "" {
			vs = append(vs, Violation{path + ".workout_name", "must not be empty"})
		}
		if len(day.Exercises) == 0 {
			vs = append(vs, Violation{path + ".exercises", "a workout day needs at least one exercise"})
		}
		for j, ex := range day.Exercises {
			vs = append(vs, checkExercise(fmt.Sprintf("%s.exercises[%d]", path, j), ex)...)
		}
		if day.EstimatedDuration != nil {
			vs = append(vs, checkIntRange(path+".estimated_duration", *day.EstimatedDuration, 10, 300)...)
		}
		if day.Difficulty != "" && !difficulties[day.Difficulty] {
			vs = append(vs, Violation{path + ".difficulty", fmt.Sprintf("%q is not one of beginner, intermediate, advanced", day.Difficulty)})
		}
		if day.CaloriesBurned != nil {
			vs = append(vs, checkIntRange(path+".calories_burned", *day.CaloriesBurned, 0, 2000)...)
		}
	}

	for i, day := range p.RestDays {
		path := fmt.Sprintf("rest_days[%d]", i)
		vs = append(vs, checkDayLabel(path, day.Day, seen)...)
	}

	s := p.WeeklySummary
	vs = append(vs, checkIntRange("weekly_summary.total_workout_days", s.TotalWorkoutDays, 1, 7)...)
	vs = append(vs, checkIntRange("weekly_summary.total_rest_days", s.TotalRestDays, 0, 6)...)
	if s.TotalWorkoutDays != len(p.WeeklyPlan) {
		vs = append(vs, Violation{"weekly_summary.total_workout_days", fmt.Sprintf("declared %d but plan has %d workout days", s.TotalWorkoutDays, len(p.WeeklyPlan))})
	}
	if s.TotalRestDays != len(p.RestDays) {
		vs = append(vs, Violation{"weekly_summary.total_rest_days", fmt.Sprintf("declared %d but plan has %d rest days", s.TotalRestDays, len(p.RestDays))})
	}
	if s.AvgWorkoutDuration != nil {
		vs = append(vs, checkNonNegative("weekly_summary.avg_workout_duration", float64(*s.AvgWorkoutDuration))...)
	}
	if s.TotalWeeklyCaloriesBurned != nil {
		vs = append(vs, checkNonNegative("weekly_summary.total_weekly_calories_burned", float64(*s.TotalWeeklyCaloriesBurned))...)
	}

	return vs
}

func checkExercise(path string, ex Exercise) []Violation {
	var vs []Violation
	vs = append(vs, checkName(path+".name", ex.Name)...)
	vs = append(vs, checkIntRange(path+".sets", ex.Sets, 1, 20)...)
	if ex.Duration != nil {
		vs = append(vs, checkIntRange(path+".duration", *ex.Duration, 0, 600)...)
	}
	if ex.Rest != nil {
		vs = append(vs, checkIntRange(path+".rest", *ex.Rest, 0, 600)...)
	}
	if ex.Intensity != "" && !intensities[ex.Intensity] {
		vs = append(vs, Violation{path + ".intensity", fmt.Sprintf("%q is not one of low, moderate, high", ex.Intensity)})
	}
	return vs
}

// checkDayLabel validates a weekday label and records it in seen to catch
// duplicates across a plan.
func checkDayLabel(path, day string, seen map[string]bool) []Violation {
	d := strings.ToLower(day)
	if !weekdaySet[d] {
		return []Violation{{path + ".day", fmt.Sprintf("%q is not a weekday", day)}}
	}
	if seen[d] {
		return []Violation{{path + ".day", fmt.Sprintf("%q appears more than once", d)}}
	}
	seen[d] = true
	return nil
}

func checkName(path, name string) []Violation {
	if strings.TrimSpace(name) == "" {
		return []Violation{{path, "must not be empty"}}
	}
	if len(name) > 200 {
		return []Violation{{path, "must be at most 200 characters"}}
	}
	return nil
}

func checkIntRange(path string, v, lo, hi int) []Violation {
	if v < lo || v > hi {
		return []Violation{{path, fmt.Sprintf("%d is outside the range %d-%d", v, lo, hi)}}
	}
	return nil
}

func checkFloatRange(path string, v, lo, hi float64) []Violation {
	if v < lo || v > hi {
		return []Violation{{path, fmt.Sprintf("%g is outside the range %g-%g", v, lo, hi)}}
	}
	return nil
}

func checkNonNegative(path string, v float64) []Violation {
	if v < 0 {
		return []Violation{{path, "must not be negative"}}
	}
	return nil
}
