// config/config.go
package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	DB struct {
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
	AI struct {
		OpenAIKey       string
		AnthropicKey    string
		DefaultProvider string
		DefaultModel    string
		MaxTokens       int
		Temperature     float32
		RequestTimeout  time.Duration
		Attempts        int
		BackoffBase     time.Duration
		BackoffCap      time.Duration
	}
	Generation struct {
		RetryBudget int
		Timeout     time.Duration
	}
	Cache struct {
		TTL           time.Duration
		SweepInterval time.Duration
	}
	Server struct {
		Port string
	}
	ShutdownTimeout time.Duration
}

// Load reads configuration from config.yaml/json with environment
// variable overrides; a missing config file falls back to env vars only.
func Load() (*Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.SetConfigType("json")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	v.AddConfigPath("../config")
	v.AddConfigPath("$HOME/.fitforge")

	setDefaults(v)
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		// No config file: build the config from environment variables.
		cfg := &Config{}
		cfg.DB.Host = getEnvOr("DB_HOST", "localhost")
		cfg.DB.Port = getEnvOr("DB_PORT", "5432")
		cfg.DB.User = getEnvOr("DB_USER", "postgres")
		cfg.DB.Password = getEnvOr("DB_PASSWORD", "postgres")
		cfg.DB.DBName = getEnvOr("DB_NAME", "fitforge")
		cfg.DB.SSLMode = getEnvOr("DB_SSL_MODE", "disable")
		cfg.DB.MaxOpenConns = 20
		cfg.DB.MinConns = 5
		cfg.DB.ConnLifetime = 5 * time.Minute
		cfg.AI.OpenAIKey = os.Getenv("OPENAI_API_KEY")
		cfg.AI.AnthropicKey = os.Getenv("ANTHROPIC_API_KEY")
		cfg.AI.DefaultProvider = getEnvOr("AI_PROVIDER", "openai")
		cfg.AI.DefaultModel = getEnvOr("AI_MODEL", "gpt-4o")
		cfg.AI.MaxTokens = 4000
		cfg.AI.Temperature = 0.7
		cfg.AI.RequestTimeout = 60 * time.Second
		cfg.AI.Attempts = 3
		cfg.AI.BackoffBase = 2 * time.Second
		cfg.AI.BackoffCap = 10 * time.Second
		cfg.Generation.RetryBudget = 2
		cfg.Generation.Timeout = 5 * time.Minute
		cfg.Cache.TTL = 24 * time.Hour
		cfg.Cache.SweepInterval = time.Hour
		cfg.Server.Port = getEnvOr("SERVER_PORT", "8080")
		cfg.ShutdownTimeout = 10 * time.Second
		return cfg, nil
	}

	// Resolve ${ENV_VAR} placeholders in config values.
	for _, key := range v.AllKeys() {
		value := v.GetString(key)
		if strings.HasPrefix(value, "${") && strings.HasSuffix(value, "}") {
			envVar := strings.TrimPrefix(strings.TrimSuffix(value, "}"), "${")
			if envValue := os.Getenv(envVar); envValue != "" {
				v.Set(key, envValue)
			}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}
	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("ShutdownTimeout", 10*time.Second)
	v.SetDefault("Server.Port", "8080")
	v.SetDefault("DB.MaxOpenConns", 20)
	v.SetDefault("DB.MinConns", 5)
	v.SetDefault("DB.ConnLifetime", 5*time.Minute)
	v.SetDefault("AI.DefaultProvider", "openai")
	v.SetDefault("AI.DefaultModel", "gpt-4o")
	v.SetDefault("AI.MaxTokens", 4000)
	v.SetDefault("AI.Temperature", 0.7)
	v.SetDefault("AI.RequestTimeout", 60*time.Second)
	v.SetDefault("AI.Attempts", 3)
	v.SetDefault("AI.BackoffBase", 2*time.Second)
	v.SetDefault("AI.BackoffCap", 10*time.Second)
	v.SetDefault("Generation.RetryBudget", 2)
	v.SetDefault("Generation.Timeout", 5*time.Minute)
	v.SetDefault("Cache.TTL", 24*time.Hour)
	v.SetDefault("Cache.SweepInterval", time.Hour)
}

func getEnvOr(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
