// Package config provides configuration management functionality.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds application configuration
type Config struct {
	DataDir      string // Base directory for the database file (always absolute)
	DatabasePath string
	LogLevel     string
	LogPretty    bool
	Port         int
	DevMode      bool

	AllowedOrigins []string

	Quotes QuoteConfig
	Backup *BackupConfig
}

// QuoteConfig controls the quote provider and the shared price cache
type QuoteConfig struct {
	AlphaVantageAPIKey string
	DailyRequestLimit  int
	CacheTTL           time.Duration // Freshness window for cached prices
	CacheRetention     time.Duration // Cached rows older than this are purged
	FallbackPrice      float64       // Used when neither the provider nor the cache has a price
}

// BackupConfig holds database backup settings (S3-compatible object storage)
type BackupConfig struct {
	Enabled         bool
	Schedule        string
	Endpoint        string // Empty means AWS S3; set for R2, MinIO, etc.
	Region          string
	Bucket          string
	Prefix          string
	RetentionDays   int // 0 keeps every backup
	AccessKeyID     string
	SecretAccessKey string
}

// Load reads configuration from environment variables
func Load() (*Config, error) {
	// Load .env file if it exists
	_ = godotenv.Load()

	dataDir := getEnv("DATA_DIR", "./data")

	absDataDir, err := filepath.Abs(dataDir)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve data directory path: %w", err)
	}

	if err := os.MkdirAll(absDataDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}

	cfg := &Config{
		DataDir:        absDataDir,
		DatabasePath:   getEnv("DATABASE_PATH", filepath.Join(absDataDir, "portfolio.db")),
		LogLevel:       getEnv("LOG_LEVEL", "info"),
		LogPretty:      getEnvAsBool("LOG_PRETTY", false),
		Port:           getEnvAsInt("PORT", 8000),
		DevMode:        getEnvAsBool("DEV_MODE", false),
		AllowedOrigins: getEnvAsList("CORS_ALLOWED_ORIGINS", []string{"*"}),
		Quotes: QuoteConfig{
			AlphaVantageAPIKey: getEnv("ALPHAVANTAGE_API_KEY", ""),
			DailyRequestLimit:  getEnvAsInt("ALPHAVANTAGE_DAILY_LIMIT", 25),
			CacheTTL:           getEnvAsDuration("QUOTE_CACHE_TTL", 15*time.Minute),
			CacheRetention:     getEnvAsDuration("QUOTE_CACHE_RETENTION", 7*24*time.Hour),
			FallbackPrice:      getEnvAsFloat("QUOTE_FALLBACK_PRICE", 100.0),
		},
		Backup: loadBackupConfig(),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate checks if required configuration is present
func (c *Config) Validate() error {
	if c.Port <= 0 || c.Port > 65535 {
		return fmt.Errorf("invalid port: %d", c.Port)
	}
	if c.Quotes.CacheTTL <= 0 {
		return fmt.Errorf("QUOTE_CACHE_TTL must be positive, got %s", c.Quotes.CacheTTL)
	}
	if c.Quotes.FallbackPrice <= 0 {
		return fmt.Errorf("QUOTE_FALLBACK_PRICE must be positive, got %v", c.Quotes.FallbackPrice)
	}
	if c.Quotes.DailyRequestLimit < 0 {
		return fmt.Errorf("ALPHAVANTAGE_DAILY_LIMIT must not be negative, got %d", c.Quotes.DailyRequestLimit)
	}
	if c.Backup != nil && c.Backup.RetentionDays < 0 {
		return fmt.Errorf("BACKUP_RETENTION_DAYS must not be negative, got %d", c.Backup.RetentionDays)
	}
	if c.Backup != nil && c.Backup.Enabled && c.Backup.Bucket == "" {
		return fmt.Errorf("BACKUP_S3_BUCKET is required when backups are enabled")
	}
	return nil
}

// Helper functions
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatVal, err := strconv.ParseFloat(value, 64); err == nil {
			return floatVal
		}
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolVal, err := strconv.ParseBool(value); err == nil {
			return boolVal
		}
	}
	return defaultValue
}

// getEnvAsDuration accepts Go durations ("15m") or a bare number of seconds
func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	if d, err := time.ParseDuration(value); err == nil {
		return d
	}
	if secs, err := strconv.Atoi(value); err == nil {
		return time.Duration(secs) * time.Second
	}
	return defaultValue
}

func getEnvAsList(key string, defaultValue []string) []string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	var out []string
	for _, part := range strings.Split(value, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	if len(out) == 0 {
		return defaultValue
	}
	return out
}

func loadBackupConfig() *BackupConfig {
	return &BackupConfig{
		Enabled:         getEnvAsBool("BACKUP_ENABLED", false),
		Schedule:        getEnv("BACKUP_SCHEDULE", "@daily"),
		Endpoint:        getEnv("BACKUP_S3_ENDPOINT", ""),
		Region:          getEnv("BACKUP_S3_REGION", "auto"),
		Bucket:          getEnv("BACKUP_S3_BUCKET", ""),
		Prefix:          getEnv("BACKUP_S3_PREFIX", "backups"),
		RetentionDays:   getEnvAsInt("BACKUP_RETENTION_DAYS", 30),
		AccessKeyID:     getEnv("BACKUP_S3_ACCESS_KEY_ID", ""),
		SecretAccessKey: getEnv("BACKUP_S3_SECRET_ACCESS_KEY", ""),
	}
}
