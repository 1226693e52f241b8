// internal/generator/prompts.go
package generator

import (
	"bytes"
	_ "embed"
	"fmt"
	"strings"
	"text/template"

	"fitforge/internal/models"
	"fitforge/internal/plan"
)

//go:embed meal_prompt.md
var mealPrompt string

//go:embed workout_prompt.md
var workoutPrompt string

//go:embed repair_prompt.md
var repairPrompt string

var promptFuncs = template.FuncMap{
	"join": strings.Join,
}

var (
	mealTmpl    = template.Must(template.New("meal").Funcs(promptFuncs).Parse(mealPrompt))
	workoutTmpl = template.Must(template.New("workout").Funcs(promptFuncs).Parse(workoutPrompt))
	repairTmpl  = template.Must(template.New("repair").Parse(repairPrompt))
)

type promptData struct {
	Answers models.QuizAnswers
	Profile models.NutritionProfile
	BodyFat string
}

type repairData struct {
	Attempt     int
	MaxAttempts int
	Violations  string
}

// buildPrompt renders the base prompt for a plan type.
func buildPrompt(planType models.PlanType, answers models.QuizAnswers, profile models.NutritionProfile) (string, error) {
	bodyFat := "Not provided"
	if profile.BodyFatPercentage != nil {
		bodyFat = fmt.Sprintf("%.1f%%", *profile.BodyFatPercentage)
	}
	data := promptData{Answers: answers, Profile: profile, BodyFat: bodyFat}

	tmpl := mealTmpl
	if planType == models.PlanTypeWorkout {
		tmpl = workoutTmpl
	}
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("failed to render %s prompt: %w", planType, err)
	}
	return buf.String(), nil
}

// buildRepairPrompt appends the prior attempt's violations to the base
// prompt so the model can correct them.
func buildRepairPrompt(base string, violations []plan.Violation, attempt, maxAttempts int) (string, error) {
	var buf bytes.Buffer
	err := repairTmpl.Execute(&buf, repairData{
		Attempt:     attempt,
		MaxAttempts: maxAttempts,
		Violations:  plan.FormatViolations(violations),
	})
	if err != nil {
		return "", fmt.Errorf("failed to render repair prompt: %w", err)
	}
	return base + buf.String(), nil
}
