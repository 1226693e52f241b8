// internal/db/postgres.go
package db

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v4/pgxpool"

	"fitforge/internal/models"
)

// ErrNoStatus means no generation has ever been submitted for the user.
var ErrNoStatus = errors.New("no generation status for user")

// Store is the persistence surface the orchestrator and HTTP layer need.
type Store interface {
	SaveQuizCalculations(ctx context.Context, userID, quizResultID string, profile models.NutritionProfile) error
	PersistPlan(ctx context.Context, userID, quizResultID string, planType models.PlanType, payload json.RawMessage) error
	WriteStatus(ctx context.Context, rec models.GenerationRecord) error
	ReadStatus(ctx context.Context, userID string) (models.StatusReport, error)
	Ping(ctx context.Context) error
	Close()
}

// Config holds connection settings for the Postgres pool.
type Config struct {
	Host         string
	Port         string
	User         string
	Password     string
	DBName       string
	SSLMode      string
	MaxOpenConns int
	MinConns     int
	ConnLifetime time.Duration
}

type Postgres struct {
	pool *pgxpool.Pool
}

// NewPostgres opens a connection pool and verifies it with a ping.
func NewPostgres(cfg Config) (*Postgres, error) {
	connStr := fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s pool_max_conns=%d",
		cfg.Host, cfg.Port, cfg.User, cfg.Password, cfg.DBName, cfg.SSLMode, cfg.MaxOpenConns,
	)

	poolConfig, err := pgxpool.ParseConfig(connStr)
	if err != nil {
		return nil, fmt.Errorf("failed to parse DB connection string: %w", err)
	}
	poolConfig.MaxConns = int32(cfg.MaxOpenConns)
	poolConfig.MinConns = int32(cfg.MinConns)
	poolConfig.MaxConnLifetime = cfg.ConnLifetime
	poolConfig.MaxConnIdleTime = 15 * time.Minute

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	pool, err := pgxpool.ConnectConfig(ctx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &Postgres{pool: pool}, nil
}

func (db *Postgres) Close() {
	if db.pool != nil {
		db.pool.Close()
	}
}

func (db *Postgres) Ping(ctx context.Context) error {
	return db.pool.Ping(ctx)
}

// SaveQuizCalculations stores the derived nutrition numbers alongside the
// quiz result so clients can render them without recomputing.
func (db *Postgres) SaveQuizCalculations(ctx context.Context, userID, quizResultID string, profile models.NutritionProfile) error {
	payload, err := json.Marshal(profile)
	if err != nil {
		return fmt.Errorf("failed to encode nutrition profile: %w", err)
	}

	query := `
        INSERT INTO quiz_calculations (user_id, quiz_result_id, calculations, updated_at)
        VALUES ($1, $2, $3, NOW())
        ON CONFLICT (user_id) DO UPDATE
        SET quiz_result_id = $2, calculations = $3, updated_at = NOW()
    `
	if _, err := db.pool.Exec(ctx, query, userID, quizResultID, payload); err != nil {
		return fmt.Errorf("failed to save quiz calculations: %w", err)
	}
	return nil
}

// PersistPlan stores a validated plan payload. One plan per (user, type);
// a new submission replaces the previous plan.
func (db *Postgres) PersistPlan(ctx context.Context, userID, quizResultID string, planType models.PlanType, payload json.RawMessage) error {
	query := `
        INSERT INTO plans (user_id, quiz_result_id, plan_type, payload, updated_at)
        VALUES ($1, $2, $3, $4, NOW())
        ON CONFLICT (user_id, plan_type) DO UPDATE
        SET quiz_result_id = $2, payload = $4, updated_at = NOW()
    `
	if _, err := db.pool.Exec(ctx, query, userID, quizResultID, string(planType), []byte(payload)); err != nil {
		return fmt.Errorf("failed to persist %s plan: %w", planType, err)
	}
	return nil
}

// WriteStatus upserts the generation record for (user, plan type).
// Last write wins; a new submission replaces the old audit row.
func (db *Postgres) WriteStatus(ctx context.Context, rec models.GenerationRecord) error {
	query := `
        INSERT INTO generation_requests
            (user_id, quiz_result_id, plan_type, provider, model, status, error, updated_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7, NOW())
        ON CONFLICT (user_id, plan_type) DO UPDATE
        SET quiz_result_id = $2, provider = $4, model = $5, status = $6, error = $7, updated_at = NOW()
    `
	_, err := db.pool.Exec(ctx, query,
		rec.UserID, rec.QuizResultID, string(rec.PlanType),
		rec.Provider, rec.Model, string(rec.Status), rec.Error,
	)
	if err != nil {
		return fmt.Errorf("failed to write %s generation status: %w", rec.PlanType, err)
	}
	return nil
}

// ReadStatus assembles the poll response from the user's generation rows.
func (db *Postgres) ReadStatus(ctx context.Context, userID string) (models.StatusReport, error) {
	query := `
        SELECT plan_type, status, error
        FROM generation_requests
        WHERE user_id = $1
    `
	rows, err := db.pool.Query(ctx, query, userID)
	if err != nil {
		return models.StatusReport{}, fmt.Errorf("failed to read generation status: %w", err)
	}
	defer rows.Close()

	var report models.StatusReport
	found := false
	for rows.Next() {
		var planType, status, errMsg string
		if err := rows.Scan(&planType, &status, &errMsg); err != nil {
			return models.StatusReport{}, fmt.Errorf("failed to scan generation status: %w", err)
		}
		found = true
		switch models.PlanType(planType) {
		case models.PlanTypeMeal:
			report.MealStatus = models.GenerationStatus(status)
			report.MealError = errMsg
		case models.PlanTypeWorkout:
			report.WorkoutStatus = models.GenerationStatus(status)
			report.WorkoutError = errMsg
		}
	}
	if err := rows.Err(); err != nil {
		return models.StatusReport{}, fmt.Errorf("failed to read generation status: %w", err)
	}
	if !found {
		return models.StatusReport{}, ErrNoStatus
	}
	return report, nil
}
