// internal/models/generation.go
package models

import "time"

// PlanType distinguishes the two independently generated artifacts.
type PlanType string

const (
	PlanTypeMeal    PlanType = "meal"
	PlanTypeWorkout PlanType = "workout"
)

func (p PlanType) Valid() bool {
	return p == PlanTypeMeal || p == PlanTypeWorkout
}

// GenerationStatus is the lifecycle state of one generation request.
// The only transitions are generating -> completed and generating -> failed;
// a fresh submission replaces the row rather than transitioning it.
type GenerationStatus string

const (
	StatusGenerating GenerationStatus = "generating"
	StatusCompleted  GenerationStatus = "completed"
	StatusFailed     GenerationStatus = "failed"
)

// GenerationRecord is the audit row for one (user, submission, plan type)
// generation. Only the orchestrator mutates it.
type GenerationRecord struct {
	UserID       string           `json:"user_id"`
	QuizResultID string           `json:"quiz_result_id"`
	PlanType     PlanType         `json:"plan_type"`
	Provider     string           `json:"provider"`
	Model        string           `json:"model"`
	Status       GenerationStatus `json:"status"`
	Error        string           `json:"error,omitempty"`
	CreatedAt    time.Time        `json:"created_at"`
	UpdatedAt    time.Time        `json:"updated_at"`
}

// GenerateRequest is one submission handed to the orchestrator.
type GenerateRequest struct {
	UserID       string      `json:"user_id"`
	QuizResultID string      `json:"quiz_result_id"`
	Answers      QuizAnswers `json:"answers"`
	Provider     string      `json:"ai_provider"`
	Model        string      `json:"model_name"`
}

// StatusReport is what a polling client sees for one user.
type StatusReport struct {
	MealStatus    GenerationStatus `json:"meal_plan_status"`
	WorkoutStatus GenerationStatus `json:"workout_plan_status"`
	MealError     string           `json:"meal_plan_error,omitempty"`
	WorkoutError  string           `json:"workout_plan_error,omitempty"`
}
