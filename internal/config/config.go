/**
 * @description
 * Configuration loader for the Gridline Backend.
 * Responsible for reading environment variables, setting defaults, and performing strict validation.
 *
 * @dependencies
 * - github.com/joho/godotenv: For loading .env files
 * - standard "os": For reading env vars
 *
 * @notes
 * - Fails fast if critical variables (Database URL) are missing.
 * - Uses a Singleton-like pattern where Load() returns a Config struct.
 */

package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all configuration for the application
type Config struct {
	Server  ServerConfig
	DB      DBConfig
	Redis   RedisConfig
	Sources SourcesConfig
	Odds    OddsConfig
}

// ServerConfig holds HTTP server settings
type ServerConfig struct {
	Port string
	Env  string // "development" or "production"
}

// DBConfig holds PostgreSQL settings
type DBConfig struct {
	URL string
}

// RedisConfig holds Redis settings
type RedisConfig struct {
	URL string
}

// SourcesConfig holds upstream feed endpoints, keys, and cycle settings
type SourcesConfig struct {
	OddsAPIBaseURL   string
	OddsAPIKey       string
	OddsAPISport     string
	OddsAPIBooks     string // comma-separated bookmaker keys
	ESPNScoreboard   string
	BookTableURL     string
	FetchTimeout     time.Duration // per upstream call
	IngestInterval   time.Duration // between ingestion cycles
	EnabledAdapters  []string      // subset of {oddsapi, espn, booktable}
}

// OddsConfig holds the price-store tuning knobs
type OddsConfig struct {
	MaxHistory      int           // FIFO cap per (game, source) record
	MatchWindowDays int           // event matcher look-back/forward window
	CacheTTL        time.Duration // read-side Redis cache TTL
}

// Load reads .env file and populates the Config struct
func Load() (*Config, error) {
	// Attempt to load .env, but don't crash if it fails (prod might inject env vars directly)
	_ = godotenv.Load()

	cfg := &Config{
		Server: ServerConfig{
			Port: getEnv("PORT", "8080"),
			Env:  getEnv("GO_ENV", "development"),
		},
		DB: DBConfig{
			URL: getEnv("DATABASE_URL", ""),
		},
		Redis: RedisConfig{
			URL: getEnv("REDIS_URL", "redis://localhost:6379"),
		},
		Sources: SourcesConfig{
			OddsAPIBaseURL:  getEnv("ODDS_API_BASE_URL", "https://api.the-odds-api.com/v4"),
			OddsAPIKey:      sanitizeCredential(getEnv("ODDS_API_KEY", "")),
			OddsAPISport:    getEnv("ODDS_API_SPORT", "americanfootball_ncaaf"),
			OddsAPIBooks:    getEnv("ODDS_API_BOOKS", "draftkings,fanduel,betmgm,caesars,betrivers"),
			ESPNScoreboard:  getEnv("ESPN_SCOREBOARD_URL", "https://site.api.espn.com/apis/site/v2/sports/football/college-football/scoreboard"),
			BookTableURL:    getEnv("BOOK_TABLE_URL", ""),
			FetchTimeout:    getEnvAsDuration("SOURCE_FETCH_TIMEOUT", 10*time.Second),
			IngestInterval:  getEnvAsDuration("INGEST_INTERVAL", 5*time.Minute),
			EnabledAdapters: splitList(getEnv("ENABLED_ADAPTERS", "oddsapi,espn")),
		},
		Odds: OddsConfig{
			MaxHistory:      getEnvAsInt("ODDS_MAX_HISTORY", 50),
			MatchWindowDays: getEnvAsInt("MATCH_WINDOW_DAYS", 7),
			CacheTTL:        getEnvAsDuration("ODDS_CACHE_TTL", time.Minute),
		},
	}

	if err := validate(cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

// validate checks for required variables
func validate(cfg *Config) error {
	if cfg.DB.URL == "" {
		return fmt.Errorf("DATABASE_URL is required")
	}
	if cfg.Odds.MaxHistory < 1 {
		return fmt.Errorf("ODDS_MAX_HISTORY must be at least 1")
	}
	if cfg.Odds.MatchWindowDays < 1 {
		return fmt.Errorf("MATCH_WINDOW_DAYS must be at least 1")
	}
	if cfg.Sources.OddsAPIKey == "" && cfg.Server.Env != "test" {
		// Warning only: the worker degrades to the keyless adapters.
		fmt.Println("Warning: ODDS_API_KEY is missing. The oddsapi adapter will be skipped.")
	}
	return nil
}

// Helper to get env var with default
func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

func sanitizeCredential(value string) string {
	trimmed := strings.TrimSpace(value)
	return strings.Trim(trimmed, "\"")
}

// Helper to get env var as int
func getEnvAsInt(key string, fallback int) int {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return fallback
	}
	if value, err := strconv.Atoi(valueStr); err == nil {
		return value
	}
	return fallback
}

// Helper to get env var as duration ("30s", "5m")
func getEnvAsDuration(key string, fallback time.Duration) time.Duration {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return fallback
	}
	if value, err := time.ParseDuration(valueStr); err == nil {
		return value
	}
	return fallback
}

func splitList(value string) []string {
	parts := strings.Split(value, ",")
	result := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			result = append(result, p)
		}
	}
	return result
}
