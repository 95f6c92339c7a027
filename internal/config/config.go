// Package config provides centralized configuration loaded from environment
// variables plus an optional YAML pipeline file. Shared by both cmd/api and
// cmd/ingest.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// --------------------------------------------------------------------------
// Table names for the Postgres mirror
// --------------------------------------------------------------------------

const (
	PlayersTable     = "site_players"
	LeaderboardTable = "site_leaderboard"
)

// --------------------------------------------------------------------------
// Config struct, populated from environment variables
// --------------------------------------------------------------------------

type Config struct {
	// Snapshot storage
	DataDir      string
	PipelineFile string

	// football-data.org
	FootballDataAPIKey  string
	FootballDataBaseURL string
	FootballDataRPM     int

	// StatsBomb open data
	StatsBombBaseURL string

	// FBref
	FBrefBaseURL string
	FBrefRPM     int

	// Upstream HTTP
	HTTPTimeout time.Duration

	// Scoring
	MinMinutes      float64
	LeaderboardSize int

	// Database mirror (optional)
	DatabaseURL    string
	DBPoolMinConns int
	DBPoolMaxConns int
	DBPoolMaxLife  time.Duration

	// API server
	APIHost     string
	APIPort     int
	Environment string // development, staging, production
	Debug       bool

	// CORS
	CORSAllowOrigins []string

	// Rate limiting
	RateLimitEnabled  bool
	RateLimitRequests int
	RateLimitWindow   time.Duration

	// Cache
	CacheEnabled bool

	// Scheduled sync inside the API process; empty disables it.
	SyncCron string

	// Pipeline is the parsed PIPELINE_FILE, or the built-in default.
	Pipeline Pipeline
}

// Load reads configuration from environment variables with sensible defaults.
// A PIPELINE_FILE that is set but unreadable is an error.
func Load() (*Config, error) {
	cfg := &Config{
		DataDir:      envOr("DATA_DIR", "data"),
		PipelineFile: envOr("PIPELINE_FILE", ""),

		FootballDataAPIKey:  envOr("FOOTBALL_DATA_API_KEY", ""),
		FootballDataBaseURL: envOr("FOOTBALL_DATA_BASE_URL", "https://api.football-data.org/v4"),
		FootballDataRPM:     envInt("FOOTBALL_DATA_RPM", 10),

		StatsBombBaseURL: envOr("STATSBOMB_BASE_URL", "https://raw.githubusercontent.com/statsbomb/open-data/master/data"),

		FBrefBaseURL: envOr("FBREF_BASE_URL", "https://fbref.com"),
		FBrefRPM:     envInt("FBREF_RPM", 6),

		HTTPTimeout: time.Duration(envInt("HTTP_TIMEOUT_SECONDS", 30)) * time.Second,

		MinMinutes:      envFloat("LEADERBOARD_MIN_MINUTES", 270),
		LeaderboardSize: envInt("LEADERBOARD_SIZE", 100),

		DatabaseURL:    envOr("DATABASE_URL", ""),
		DBPoolMinConns: envInt("DB_POOL_MIN_CONNS", 1),
		DBPoolMaxConns: envInt("DB_POOL_MAX_CONNS", 4),
		DBPoolMaxLife:  time.Duration(envInt("DB_POOL_MAX_LIFE_MINUTES", 30)) * time.Minute,

		APIHost:     envOr("API_HOST", "0.0.0.0"),
		APIPort:     envInt("API_PORT", envInt("PORT", 8000)),
		Environment: envOr("ENVIRONMENT", "development"),
		Debug:       envBool("DEBUG", false),

		CORSAllowOrigins: envList("CORS_ALLOW_ORIGINS", []string{
			"http://localhost:3000",
			"http://localhost:4321",
			"http://localhost:5173",
		}),

		RateLimitEnabled:  envBool("RATE_LIMIT_ENABLED", true),
		RateLimitRequests: envInt("RATE_LIMIT_REQUESTS", 100),
		RateLimitWindow:   time.Duration(envInt("RATE_LIMIT_WINDOW", 60)) * time.Second,

		CacheEnabled: envBool("CACHE_ENABLED", true),

		SyncCron: envOr("SYNC_CRON", ""),
	}

	if cfg.PipelineFile == "" {
		cfg.Pipeline = DefaultPipeline()
		return cfg, nil
	}
	p, err := LoadPipeline(cfg.PipelineFile)
	if err != nil {
		return nil, fmt.Errorf("pipeline file: %w", err)
	}
	cfg.Pipeline = p
	return cfg, nil
}

// IsProduction returns true if running in production environment.
func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

// --------------------------------------------------------------------------
// Env helpers
// --------------------------------------------------------------------------

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func envFloat(key string, fallback float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return fallback
}

func envBool(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		b, err := strconv.ParseBool(v)
		if err == nil {
			return b
		}
	}
	return fallback
}

func envList(key string, fallback []string) []string {
	if v := os.Getenv(key); v != "" {
		parts := strings.Split(v, ",")
		result := make([]string, 0, len(parts))
		for _, p := range parts {
			if trimmed := strings.TrimSpace(p); trimmed != "" {
				result = append(result, trimmed)
			}
		}
		if len(result) > 0 {
			return result
		}
	}
	return fallback
}
