package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all configuration for the application
// ⭐ SSOT: all environment variables are read here and only here
type Config struct {
	// Server
	Port string
	Env  string // development, staging, production

	// Candidate engine
	Engine EngineConfig

	// Redis
	Redis RedisConfig

	// Scheduler
	Scheduler SchedulerConfig

	// Logging
	LogLevel  string
	LogFormat string
}

// EngineConfig holds candidate-engine API configuration
type EngineConfig struct {
	BaseURL string
	Timeout time.Duration

	// Defaults threaded into scan requests
	Provider string
	Interval string

	// History window for OHLCV/signal reads
	HistoryLimit int

	// Client-side request rate toward the engine, requests per second
	RateLimit int // requests per second, 0 disables
}

// RedisConfig holds Redis configuration
type RedisConfig struct {
	Host     string
	Port     string
	Password string
	DB       int
	Enabled  bool
}

// SchedulerConfig holds recurring-scan scheduler configuration
type SchedulerConfig struct {
	Enabled      bool
	ScanSchedule string // cron spec with seconds field
	UniverseID   int64
	TemplateID   int64
}

// Load reads configuration from environment variables
// ⭐ SSOT: only this function calls os.Getenv()
func Load() (*Config, error) {
	// Try multiple paths for .env file
	loadEnvFile()

	cfg := &Config{
		// Server
		Port: getEnv("PORT", "8090"),
		Env:  getEnv("ENV", "development"),

		// Candidate engine
		Engine: EngineConfig{
			BaseURL:      getEnv("ENGINE_BASE_URL", "http://127.0.0.1:8000"),
			Timeout:      getEnvAsDuration("ENGINE_TIMEOUT", "30s"),
			Provider:     getEnv("ENGINE_PROVIDER", "yahooquery"),
			Interval:     getEnv("ENGINE_INTERVAL", "1d"),
			HistoryLimit: getEnvAsInt("ENGINE_HISTORY_LIMIT", 30),
			RateLimit:    getEnvAsInt("ENGINE_RATE_LIMIT", 10),
		},

		// Redis
		Redis: RedisConfig{
			Host:     getEnv("REDIS_HOST", "localhost"),
			Port:     getEnv("REDIS_PORT", "6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvAsInt("REDIS_DB", 0),
			Enabled:  getEnvAsBool("REDIS_ENABLED", false),
		},

		// Scheduler
		Scheduler: SchedulerConfig{
			Enabled:      getEnvAsBool("SCHEDULER_ENABLED", false),
			ScanSchedule: getEnv("SCHEDULER_SCAN_SCHEDULE", "0 0 18 * * MON-FRI"),
			UniverseID:   int64(getEnvAsInt("SCHEDULER_UNIVERSE_ID", 0)),
			TemplateID:   int64(getEnvAsInt("SCHEDULER_TEMPLATE_ID", 0)),
		},

		// Logging
		LogLevel:  getEnv("LOG_LEVEL", "debug"),
		LogFormat: getEnv("LOG_FORMAT", "json"),
	}

	// Validate configuration
	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

// validate checks if required configuration values are set
func (c *Config) validate() error {
	// Engine base URL is required
	if c.Engine.BaseURL == "" {
		return fmt.Errorf("ENGINE_BASE_URL is required")
	}

	// Validate environment
	if c.Env != "development" && c.Env != "staging" && c.Env != "production" && c.Env != "test" {
		return fmt.Errorf("ENV must be one of: development, staging, production, test")
	}

	return nil
}

// Helper functions (private, only used within this file)

// loadEnvFile tries to load .env from multiple locations
func loadEnvFile() {
	// Try paths in order of priority
	paths := []string{
		".env", // Current directory
	}

	// Also try relative to executable
	if exe, err := os.Executable(); err == nil {
		exeDir := filepath.Dir(exe)
		paths = append(paths,
			filepath.Join(exeDir, ".env"),
			filepath.Join(exeDir, "..", ".env"),
			filepath.Join(exeDir, "..", "..", ".env"),
		)
	}

	for _, path := range paths {
		if _, err := os.Stat(path); err == nil {
			_ = godotenv.Load(path)
			return
		}
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}

	value, err := strconv.Atoi(valueStr)
	if err != nil {
		return defaultValue
	}

	return value
}

func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}

	value, err := strconv.ParseBool(valueStr)
	if err != nil {
		return defaultValue
	}

	return value
}

func getEnvAsDuration(key string, defaultValue string) time.Duration {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		valueStr = defaultValue
	}

	duration, err := time.ParseDuration(valueStr)
	if err != nil {
		// Fallback to default
		duration, _ = time.ParseDuration(defaultValue)
	}

	return duration
}
