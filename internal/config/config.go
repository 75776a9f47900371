package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Storage backends for the round log
const (
	StorageMemory = "memory"
	StorageSQLite = "sqlite"
	StorageFile   = "file"
)

// Config holds all configuration for the application
type Config struct {
	// Discord configuration
	Token   string
	AppID   string
	GuildID string

	// Persistence
	DataDir     string
	StorageType string

	// Elasticsearch round analytics, disabled when ESURL is empty
	ESURL         string
	ESUsername    string
	ESPassword    string
	ESIndexPrefix string

	// Card detection service, disabled when DetectorURL is empty
	DetectorURL           string
	DetectorAPIKey        string
	DetectorMinConfidence float64

	// Channel sessions idle longer than this are evicted from memory
	SessionIdleTimeout time.Duration

	LogLevel string

	// Environment
	Environment string // "development" or "production"
}

// Load reads the configuration from environment variables
func Load() (*Config, error) {
	// Load .env file if it exists
	if err := godotenv.Load(); err != nil {
		// Only return error if file exists but couldn't be loaded
		if !os.IsNotExist(err) {
			return nil, fmt.Errorf("error loading .env file: %w", err)
		}
	}

	wd, err := os.Getwd()
	if err != nil {
		return nil, fmt.Errorf("failed to get working directory: %w", err)
	}

	cfg, err := fromEnv(wd)
	if err != nil {
		return nil, err
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	if err := os.MkdirAll(cfg.DataDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}

	return cfg, nil
}

func fromEnv(wd string) (*Config, error) {
	minConfidence, err := strconv.ParseFloat(getEnvWithDefault("DETECTOR_MIN_CONFIDENCE", "0.5"), 64)
	if err != nil {
		return nil, fmt.Errorf("DETECTOR_MIN_CONFIDENCE must be a number: %w", err)
	}

	idle, err := time.ParseDuration(getEnvWithDefault("SESSION_IDLE_TIMEOUT", "24h"))
	if err != nil {
		return nil, fmt.Errorf("SESSION_IDLE_TIMEOUT must be a duration: %w", err)
	}

	return &Config{
		Token:                 os.Getenv("DISCORD_TOKEN"),
		AppID:                 os.Getenv("APP_ID"),
		GuildID:               os.Getenv("GUILD_ID"),
		Environment:           getEnvWithDefault("ENVIRONMENT", "development"),
		DataDir:               getEnvWithDefault("DATA_DIR", filepath.Join(wd, "data")),
		StorageType:           getEnvWithDefault("STORAGE_TYPE", StorageMemory),
		ESURL:                 os.Getenv("ES_URL"),
		ESUsername:            os.Getenv("ES_USERNAME"),
		ESPassword:            os.Getenv("ES_PASSWORD"),
		ESIndexPrefix:         getEnvWithDefault("ES_INDEX_PREFIX", "cccounter"),
		DetectorURL:           os.Getenv("DETECTOR_URL"),
		DetectorAPIKey:        os.Getenv("DETECTOR_API_KEY"),
		DetectorMinConfidence: minConfidence,
		SessionIdleTimeout:    idle,
		LogLevel:              getEnvWithDefault("LOG_LEVEL", "info"),
	}, nil
}

// validate checks if all required configuration is present
func (c *Config) validate() error {
	if c.Token == "" {
		return fmt.Errorf("DISCORD_TOKEN is required")
	}
	switch c.StorageType {
	case StorageMemory, StorageSQLite, StorageFile:
	default:
		return fmt.Errorf("STORAGE_TYPE must be one of memory, sqlite, file; got %q", c.StorageType)
	}
	if c.DetectorMinConfidence < 0 || c.DetectorMinConfidence > 1 {
		return fmt.Errorf("DETECTOR_MIN_CONFIDENCE must be within [0,1]")
	}
	if c.DetectorURL != "" && c.DetectorAPIKey == "" {
		return fmt.Errorf("DETECTOR_API_KEY is required when DETECTOR_URL is set")
	}
	return nil
}

// IsDevelopment returns true if running in development environment
func (c *Config) IsDevelopment() bool {
	return c.Environment == "development"
}

// DatabasePath is where the SQLite store lives
func (c *Config) DatabasePath() string {
	return filepath.Join(c.DataDir, "cccounter.db")
}

// HistoryFilePath is where the JSON round log lives
func (c *Config) HistoryFilePath() string {
	return filepath.Join(c.DataDir, "history.json")
}

// ElasticsearchEnabled reports whether round analytics should be indexed
func (c *Config) ElasticsearchEnabled() bool {
	return c.ESURL != ""
}

// DetectorEnabled reports whether /detect should be offered
func (c *Config) DetectorEnabled() bool {
	return c.DetectorURL != ""
}

// getEnvWithDefault returns environment variable value or default if not set
func getEnvWithDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
