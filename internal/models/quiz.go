// internal/models/quiz.go
package models

// Weight carries a weight submitted in either kilograms or pounds.
// Exactly one field is expected to be set; the calculator rejects
// submissions where both or neither carry a value.
type Weight struct {
	Kg  *float64 `json:"kg,omitempty"`
	Lbs *float64 `json:"lbs,omitempty"`
}

// Length carries a length submitted in either centimeters or feet/inches.
type Length struct {
	Cm   *float64 `json:"cm,omitempty"`
	Ft   *float64 `json:"ft,omitempty"`
	Inch *float64 `json:"inch,omitempty"`
}

// QuizAnswers is the immutable snapshot of one questionnaire submission.
type QuizAnswers struct {
	Age     int    `json:"age"`
	Gender  string `json:"gender"`
	Country string `json:"country,omitempty"`

	Height        Length   `json:"height"`
	CurrentWeight Weight   `json:"currentWeight"`
	TargetWeight  Weight   `json:"targetWeight"`
	Neck          *Length  `json:"neck,omitempty"`
	Waist         *Length  `json:"waist,omitempty"`
	Hip           *Length  `json:"hip,omitempty"`
	BodyFat       *float64 `json:"bodyFat,omitempty"`

	MainGoal       string   `json:"mainGoal"`
	SecondaryGoals []string `json:"secondaryGoals,omitempty"`
	TimeFrame      string   `json:"timeFrame,omitempty"`
	BodyType       string   `json:"bodyType,omitempty"`

	Lifestyle          string `json:"lifestyle,omitempty"`
	OccupationActivity string `json:"occupation_activity,omitempty"`
	GroceryBudget      string `json:"groceryBudget,omitempty"`
	DietaryStyle       string `json:"dietaryStyle,omitempty"`
	MealsPerDay        string `json:"mealsPerDay,omitempty"`
	MotivationLevel    int    `json:"motivationLevel,omitempty"`
	StressLevel        int    `json:"stressLevel,omitempty"`
	SleepQuality       string `json:"sleepQuality,omitempty"`

	HealthConditions      []string `json:"healthConditions,omitempty"`
	HealthConditionsOther string   `json:"healthConditions_other,omitempty"`
	Medications           string   `json:"medications,omitempty"`
	Injuries              string   `json:"injuries,omitempty"`
	FoodAllergies         string   `json:"foodAllergies,omitempty"`

	ExerciseFrequency   string   `json:"exerciseFrequency"`
	PreferredExercise   []string `json:"preferredExercise,omitempty"`
	TrainingEnvironment []string `json:"trainingEnvironment,omitempty"`
	Equipment           []string `json:"equipment,omitempty"`

	DislikedFoods string `json:"dislikedFoods,omitempty"`
	CookingSkill  string `json:"cookingSkill,omitempty"`
	CookingTime   string `json:"cookingTime,omitempty"`

	Challenges []string `json:"challenges,omitempty"`
}

// Macros holds the daily macronutrient targets in grams and as a share of
// goal calories. The three calorie buckets (4/9/4 kcal per gram) always sum
// exactly to the goal.
type Macros struct {
	ProteinG             int `json:"protein_g"`
	CarbsG               int `json:"carbs_g"`
	FatG                 int `json:"fat_g"`
	ProteinPctOfCalories int `json:"protein_pct_of_calories"`
	CarbsPctOfCalories   int `json:"carbs_pct_of_calories"`
	FatPctOfCalories     int `json:"fat_pct_of_calories"`
}

// Display carries the human-readable echoes of the submitted measurements,
// formatted in whichever unit system the user answered with.
type Display struct {
	Height       string `json:"height"`
	Weight       string `json:"weight"`
	TargetWeight string `json:"targetWeight"`
}

// NutritionProfile is the derived, immutable result of the calculator.
type NutritionProfile struct {
	BMI                  float64  `json:"bmi"`
	BMR                  float64  `json:"bmr"`
	TDEE                 float64  `json:"tdee"`
	BodyFatPercentage    *float64 `json:"bodyFatPercentage,omitempty"`
	Macros               Macros   `json:"macros"`
	GoalCalories         int      `json:"goalCalories"`
	GoalWeight           float64  `json:"goalWeight"`
	EstimatedWeeksToGoal *float64 `json:"estimatedWeeksToGoal,omitempty"`
	Display              Display  `json:"display"`
}
