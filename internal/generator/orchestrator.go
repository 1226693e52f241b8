// internal/generator/orchestrator.go
package generator

import (
	"context"
	"fmt"
	"sync"
	"time"

	"fitforge/internal/ai"
	"fitforge/internal/cache"
	"fitforge/internal/db"
	"fitforge/internal/models"
	"fitforge/internal/nutrition"
	"fitforge/internal/plan"
	"fitforge/pkg/logger"
)

// Orchestrator coordinates one submission end to end: synchronous profile
// computation, then concurrent meal and workout generation with validation,
// repair retries and status tracking. Failures never escape the background
// units; callers observe them through PollStatus only.
type Orchestrator struct {
	gateway *ai.Gateway
	cache   *cache.Cache
	store   db.Store
	log     *logger.Logger

	retryBudget int
	maxTokens   int
	temperature float32
	genTimeout  time.Duration

	wg sync.WaitGroup
}

// Options tune the orchestrator. Zero values fall back to 2 extra repair
// attempts, 4000 tokens, temperature 0.7 and a 5 minute unit timeout.
type Options struct {
	RetryBudget       int
	MaxTokens         int
	Temperature       float32
	GenerationTimeout time.Duration
}

// New wires an orchestrator. All collaborators are injected; the
// orchestrator owns no global state.
func New(gateway *ai.Gateway, c *cache.Cache, store db.Store, log *logger.Logger, opts Options) *Orchestrator {
	if opts.RetryBudget < 0 {
		opts.RetryBudget = 0
	} else if opts.RetryBudget == 0 {
		opts.RetryBudget = 2
	}
	if opts.MaxTokens <= 0 {
		opts.MaxTokens = 4000
	}
	if opts.Temperature <= 0 {
		opts.Temperature = 0.7
	}
	if opts.GenerationTimeout <= 0 {
		opts.GenerationTimeout = 5 * time.Minute
	}
	return &Orchestrator{
		gateway:     gateway,
		cache:       c,
		store:       store,
		log:         log,
		retryBudget: opts.RetryBudget,
		maxTokens:   opts.MaxTokens,
		temperature: opts.Temperature,
		genTimeout:  opts.GenerationTimeout,
	}
}

// Submit computes the nutrition profile synchronously, marks both plan
// types as generating and launches their generation in the background.
// Input and configuration errors come back to the caller; everything that
// happens after Submit returns is reported through status only.
func (o *Orchestrator) Submit(ctx context.Context, req models.GenerateRequest) (models.NutritionProfile, error) {
	if req.UserID == "" {
		return models.NutritionProfile{}, fmt.Errorf("user_id is required")
	}
	if !o.gateway.Configured(req.Provider) {
		return models.NutritionProfile{}, fmt.Errorf("%w: %q", ai.ErrProviderNotConfigured, req.Provider)
	}

	profile, err := nutrition.Compute(req.Answers)
	if err != nil {
		return models.NutritionProfile{}, err
	}
	if !nutrition.RecognizedSex(req.Answers.Gender) {
		o.log.Warnw("unrecognized sex value, using neutral formulas",
			"user_id", req.UserID, "gender", req.Answers.Gender)
	}

	if err := o.store.SaveQuizCalculations(ctx, req.UserID, req.QuizResultID, profile); err != nil {
		o.log.Errorw("failed to save quiz calculations", "user_id", req.UserID, "error", err)
	}

	for _, planType := range []models.PlanType{models.PlanTypeMeal, models.PlanTypeWorkout} {
		o.setStatus(ctx, req, planType, models.StatusGenerating, "")
	}

	o.wg.Add(2)
	go o.generate(req, models.PlanTypeMeal, profile)
	go o.generate(req, models.PlanTypeWorkout, profile)

	return profile, nil
}

// PollStatus reports the stored generation statuses for a user.
func (o *Orchestrator) PollStatus(ctx context.Context, userID string) (models.StatusReport, error) {
	return o.store.ReadStatus(ctx, userID)
}

// Wait blocks until all in-flight generation units finish. Called on
// shutdown so background work is not cut off mid-write.
func (o *Orchestrator) Wait() {
	o.wg.Wait()
}

// generate runs one plan-type unit. It owns its own context: the unit
// must outlive the HTTP request that triggered it.
func (o *Orchestrator) generate(req models.GenerateRequest, planType models.PlanType, profile models.NutritionProfile) {
	defer o.wg.Done()

	ctx, cancel := context.WithTimeout(context.Background(), o.genTimeout)
	defer cancel()

	o.log.Infow("starting plan generation",
		"user_id", req.UserID, "plan_type", planType, "provider", req.Provider)

	key, err := cache.Key(planType, req.Answers)
	if err != nil {
		o.log.Errorw("failed to derive cache key", "user_id", req.UserID, "plan_type", planType, "error", err)
	} else if payload, ok := o.cache.Get(key); ok {
		o.log.Infow("serving plan from cache", "user_id", req.UserID, "plan_type", planType)
		if err := o.store.PersistPlan(ctx, req.UserID, req.QuizResultID, planType, payload); err != nil {
			o.log.Errorw("failed to persist cached plan", "user_id", req.UserID, "plan_type", planType, "error", err)
		}
		o.setStatus(ctx, req, planType, models.StatusCompleted, "")
		return
	}

	basePrompt, err := buildPrompt(planType, req.Answers, profile)
	if err != nil {
		o.fail(ctx, req, planType, err)
		return
	}

	prompt := basePrompt
	maxAttempts := 1 + o.retryBudget
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		out, err := o.gateway.Invoke(ctx, req.Provider, ai.Request{
			Prompt:      prompt,
			Model:       req.Model,
			MaxTokens:   o.maxTokens,
			Temperature: o.temperature,
		})
		if err != nil {
			o.fail(ctx, req, planType, err)
			return
		}

		validated, violations := plan.Validate(planType, out)
		if len(violations) == 0 {
			if err := o.store.PersistPlan(ctx, req.UserID, req.QuizResultID, planType, validated.Raw); err != nil {
				o.log.Errorw("failed to persist plan", "user_id", req.UserID, "plan_type", planType, "error", err)
			}
			if key != "" {
				o.cache.Set(key, planType, validated.Raw)
			}
			o.setStatus(ctx, req, planType, models.StatusCompleted, "")
			o.log.Infow("plan generated", "user_id", req.UserID, "plan_type", planType, "attempts", attempt)
			return
		}

		o.log.Warnw("generated plan failed validation",
			"user_id", req.UserID, "plan_type", planType,
			"attempt", attempt, "violations", len(violations))

		if attempt == maxAttempts {
			o.fail(ctx, req, planType, fmt.Errorf(
				"plan failed validation after %d attempts: %s", maxAttempts, violations[0]))
			return
		}
		prompt, err = buildRepairPrompt(basePrompt, violations, attempt+1, maxAttempts)
		if err != nil {
			o.fail(ctx, req, planType, err)
			return
		}
	}
}

func (o *Orchestrator) fail(ctx context.Context, req models.GenerateRequest, planType models.PlanType, cause error) {
	o.log.Errorw("plan generation failed",
		"user_id", req.UserID, "plan_type", planType, "error", cause)
	o.setStatus(ctx, req, planType, models.StatusFailed, cause.Error())
}

func (o *Orchestrator) setStatus(ctx context.Context, req models.GenerateRequest, planType models.PlanType, status models.GenerationStatus, errMsg string) {
	now := time.Now()
	rec := models.GenerationRecord{
		UserID:       req.UserID,
		QuizResultID: req.QuizResultID,
		PlanType:     planType,
		Provider:     req.Provider,
		Model:        req.Model,
		Status:       status,
		Error:        errMsg,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := o.store.WriteStatus(ctx, rec); err != nil {
		o.log.Errorw("failed to write generation status",
			"user_id", req.UserID, "plan_type", planType, "status", status, "error", err)
	}
}
