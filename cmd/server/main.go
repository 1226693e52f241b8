// cmd/server/main.go
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"fitforge/config"
	"fitforge/internal/ai"
	"fitforge/internal/cache"
	"fitforge/internal/db"
	"fitforge/internal/generator"
	"fitforge/internal/server"
	"fitforge/pkg/logger"
)

func main() {
	l := logger.New()
	l.Info("Starting plan generation service...")

	cfg, err := config.Load()
	if err != nil {
		l.Fatal("Failed to load config", err)
	}

	if cfg.AI.OpenAIKey == "" && cfg.AI.AnthropicKey == "" {
		l.Fatal("No AI provider configured: set OPENAI_API_KEY or ANTHROPIC_API_KEY")
	}

	// Connect to the database with retry; the DB container may still be
	// coming up.
	var store *db.Postgres
	maxRetries := 5
	for i := 0; i < maxRetries; i++ {
		store, err = db.NewPostgres(db.Config{
			Host:         cfg.DB.Host,
			Port:         cfg.DB.Port,
			User:         cfg.DB.User,
			Password:     cfg.DB.Password,
			DBName:       cfg.DB.DBName,
			SSLMode:      cfg.DB.SSLMode,
			MaxOpenConns: cfg.DB.MaxOpenConns,
			MinConns:     cfg.DB.MinConns,
			ConnLifetime: cfg.DB.ConnLifetime,
		})
		if err == nil {
			break
		}
		l.Error("Failed to connect to database, retrying...", err)
		time.Sleep(time.Duration(i+1) * time.Second)
	}
	if store == nil {
		l.Fatal("Failed to connect to database after multiple attempts", err)
	}
	defer store.Close()

	var providers []ai.Provider
	if cfg.AI.OpenAIKey != "" {
		providers = append(providers, ai.NewOpenAI(cfg.AI.OpenAIKey, cfg.AI.DefaultModel))
	}
	if cfg.AI.AnthropicKey != "" {
		providers = append(providers, ai.NewAnthropic(cfg.AI.AnthropicKey, cfg.AI.RequestTimeout))
	}
	gateway := ai.NewGateway(l, ai.GatewayOptions{
		Attempts:    cfg.AI.Attempts,
		BackoffBase: cfg.AI.BackoffBase,
		BackoffCap:  cfg.AI.BackoffCap,
	}, providers...)

	planCache := cache.New(cfg.Cache.TTL)
	orch := generator.New(gateway, planCache, store, l, generator.Options{
		RetryBudget:       cfg.Generation.RetryBudget,
		MaxTokens:         cfg.AI.MaxTokens,
		Temperature:       cfg.AI.Temperature,
		GenerationTimeout: cfg.Generation.Timeout,
	})

	httpServer := server.NewServer(cfg.Server.Port, orch, planCache, store, l)
	go func() {
		if err := httpServer.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			l.Fatal("Failed to start HTTP server", err)
		}
	}()

	// Periodic sweep evicts expired cache entries that no read touches.
	sweepDone := make(chan struct{})
	go func() {
		ticker := time.NewTicker(cfg.Cache.SweepInterval)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				if removed := planCache.Sweep(); removed > 0 {
					l.Infow("cache sweep", "removed", removed)
				}
			case <-sweepDone:
				return
			}
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	l.Info("Shutting down...")
	close(sweepDone)

	ctx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := httpServer.Stop(ctx); err != nil {
		l.Error("Error during HTTP server shutdown", err)
	}

	// Let in-flight generations finish writing their statuses.
	orch.Wait()

	l.Info("Stopped")
}
