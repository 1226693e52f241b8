// internal/plan/schema.go
package plan

// Plan payload shapes expected back from the model. Field names follow the
// JSON contract embedded in the prompt templates; pointers mark fields
// whose absence must be distinguishable from a zero value.

// Meal is a single meal inside a day.
type Meal struct {
	Name         string   `json:"name"`
	Calories     int      `json:"calories"`
	Protein      float64  `json:"protein"`
	Carbs        float64  `json:"carbs"`
	Fats         float64  `json:"fats"`
	Ingredients  []string `json:"ingredients"`
	Instructions []string `json:"instructions"`
	MealType     string   `json:"meal_type"`
	PrepTime     *int     `json:"prep_time,omitempty"`
	CookTime     *int     `json:"cook_time,omitempty"`
}

// DayMeals is one day of the weekly meal plan.
type DayMeals struct {
	Day           string  `json:"day"`
	Breakfast     *Meal   `json:"breakfast"`
	Lunch         *Meal   `json:"lunch"`
	Dinner        *Meal   `json:"dinner"`
	Snacks        []Meal  `json:"snacks,omitempty"`
	TotalCalories int     `json:"total_calories"`
	TotalProtein  float64 `json:"total_protein"`
	TotalCarbs    float64 `json:"total_carbs"`
	TotalFats     float64 `json:"total_fats"`
}

// MealWeeklySummary aggregates the week.
type MealWeeklySummary struct {
	AvgDailyCalories int     `json:"avg_daily_calories"`
	AvgDailyProtein  float64 `json:"avg_daily_protein"`
	AvgDailyCarbs    float64 `json:"avg_daily_carbs"`
	AvgDailyFats     float64 `json:"avg_daily_fats"`
	TotalUniqueMeals *int    `json:"total_unique_meals,omitempty"`
	PrepFriendly     *bool   `json:"prep_friendly,omitempty"`
}

// MealPlan is the full validated meal artifact.
type MealPlan struct {
	WeeklyPlan       []DayMeals        `json:"weekly_plan"`
	WeeklySummary    MealWeeklySummary `json:"weekly_summary"`
	ShoppingList     []string          `json:"shopping_list,omitempty"`
	MealPrepTips     []string          `json:"meal_prep_tips,omitempty"`
	NutritionalNotes string            `json:"nutritional_notes,omitempty"`
}

// Exercise is a single exercise inside a workout day.
type Exercise struct {
	Name          string   `json:"name"`
	Sets          int      `json:"sets"`
	Reps          string   `json:"reps,omitempty"`
	Duration      *int     `json:"duration,omitempty"`
	Rest          *int     `json:"rest,omitempty"`
	Intensity     string   `json:"intensity,omitempty"`
	Instructions  []string `json:"instructions,omitempty"`
	TargetMuscles []string `json:"target_muscles,omitempty"`
	Equipment     []string `json:"equipment,omitempty"`
}

// WorkoutDay is a training day.
type WorkoutDay struct {
	Day               string     `json:"day"`
	WorkoutName       string     `json:"workout_name"`
	Focus             string     `json:"focus,omitempty"`
	Exercises         []Exercise `json:"exercises"`
	WarmUp            []string   `json:"warm_up,omitempty"`
	CoolDown          []string   `json:"cool_down,omitempty"`
	EstimatedDuration *int       `json:"estimated_duration,omitempty"`
	Difficulty        string     `json:"difficulty,omitempty"`
	CaloriesBurned    *int       `json:"calories_burned,omitempty"`
}

// RestDay is a rest or active-recovery day. Rest days carry no exercises.
type RestDay struct {
	Day            string   `json:"day"`
	IsRestDay      bool     `json:"is_rest_day"`
	ActiveRecovery []string `json:"active_recovery,omitempty"`
	Notes          string   `json:"notes,omitempty"`
}

// WorkoutWeeklySummary aggregates the training week. The declared day
// counts must match the actual entries.
type WorkoutWeeklySummary struct {
	TotalWorkoutDays          int      `json:"total_workout_days"`
	TotalRestDays             int      `json:"total_rest_days"`
	AvgWorkoutDuration        *int     `json:"avg_workout_duration,omitempty"`
	TotalWeeklyCaloriesBurned *int     `json:"total_weekly_calories_burned,omitempty"`
	PrimaryFocus              string   `json:"primary_focus,omitempty"`
	EquipmentNeeded           []string `json:"equipment_needed,omitempty"`
}

// WorkoutPlan is the full validated workout artifact.
type WorkoutPlan struct {
	WeeklyPlan       []WorkoutDay         `json:"weekly_plan"`
	RestDays         []RestDay            `json:"rest_days,omitempty"`
	WeeklySummary    WorkoutWeeklySummary `json:"weekly_summary"`
	ProgressionNotes []string             `json:"progression_notes,omitempty"`
	SafetyTips       []string             `json:"safety_tips,omitempty"`
}
