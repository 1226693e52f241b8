// internal/server/handlers.go
package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"fitforge/internal/ai"
	"fitforge/internal/cache"
	"fitforge/internal/db"
	"fitforge/internal/models"
	"fitforge/internal/nutrition"
	"fitforge/pkg/logger"
)

// Orchestrator is the slice of the generation engine the HTTP layer needs.
type Orchestrator interface {
	Submit(ctx context.Context, req models.GenerateRequest) (models.NutritionProfile, error)
	PollStatus(ctx context.Context, userID string) (models.StatusReport, error)
}

type handlers struct {
	orch   Orchestrator
	cache  *cache.Cache
	store  db.Store
	logger *logger.Logger
}

type errorBody struct {
	Detail string `json:"detail"`
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func writeError(w http.ResponseWriter, status int, detail string) {
	writeJSON(w, status, errorBody{Detail: detail})
}

// generatePlans accepts a quiz submission, returns the computed profile
// immediately and leaves plan generation running in the background.
func (h *handlers) generatePlans(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	var req models.GenerateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}

	profile, err := h.orch.Submit(r.Context(), req)
	if err != nil {
		status := http.StatusInternalServerError
		switch {
		case errors.Is(err, ai.ErrProviderNotConfigured):
			status = http.StatusBadRequest
		case isInputError(err):
			status = http.StatusBadRequest
		}
		h.logger.Warnw("submission rejected", "user_id", req.UserID, "error", err)
		writeError(w, status, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"success":             true,
		"calculations":        profile,
		"meal_plan_status":    models.StatusGenerating,
		"workout_plan_status": models.StatusGenerating,
		"message":             "Calculations complete. Plans are being generated in the background.",
	})
}

func isInputError(err error) bool {
	return errors.Is(err, nutrition.ErrInvalidAge) ||
		errors.Is(err, nutrition.ErrMissingMeasurement) ||
		errors.Is(err, nutrition.ErrAmbiguousMeasurement) ||
		errors.Is(err, nutrition.ErrUnsupportedSex) ||
		errors.Is(err, nutrition.ErrCalculation)
}

// planStatus reports generation progress for one user.
func (h *handlers) planStatus(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	userID := strings.TrimPrefix(r.URL.Path, "/plan-status/")
	if userID == "" || strings.Contains(userID, "/") {
		writeError(w, http.StatusBadRequest, "user id is required")
		return
	}

	report, err := h.orch.PollStatus(r.Context(), userID)
	if err != nil {
		if errors.Is(err, db.ErrNoStatus) {
			writeError(w, http.StatusNotFound, "No plan generation found for user")
			return
		}
		h.logger.Errorw("status read failed", "user_id", userID, "error", err)
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"user_id":             userID,
		"meal_plan_status":    report.MealStatus,
		"workout_plan_status": report.WorkoutStatus,
		"meal_plan_error":     report.MealError,
		"workout_plan_error":  report.WorkoutError,
	})
}

func (h *handlers) health(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	dbStatus := "ok"
	status := http.StatusOK
	if err := h.store.Ping(ctx); err != nil {
		dbStatus = "unreachable"
		status = http.StatusServiceUnavailable
	}

	writeJSON(w, status, map[string]any{
		"status":    "healthy",
		"database":  dbStatus,
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}

func (h *handlers) cacheStats(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	writeJSON(w, http.StatusOK, h.cache.StatsSnapshot())
}

type invalidateRequest struct {
	PlanType models.PlanType    `json:"plan_type"`
	Answers  models.QuizAnswers `json:"answers"`
}

func (h *handlers) cacheInvalidate(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	var req invalidateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}
	if !req.PlanType.Valid() {
		writeError(w, http.StatusBadRequest, "plan_type must be meal or workout")
		return
	}

	key, err := cache.Key(req.PlanType, req.Answers)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"invalidated": h.cache.Invalidate(key),
	})
}
