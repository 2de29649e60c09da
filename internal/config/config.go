// Package config provides configuration management for the vault analytics ETL.
// It loads configuration from environment variables and .env files.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all application configuration
type Config struct {
	Venue    VenueConfig
	ETL      ETLConfig
	Database DatabaseConfig
	Logging  LoggingConfig
}

// VenueConfig holds configuration for the trading venue API client
type VenueConfig struct {
	InfoURL        string
	VaultsURL      string
	Concurrency    int           // max in-flight requests (admission slots)
	MaxRetries     int           // attempts per address
	InitialBackoff time.Duration // doubled after each retry
	ReadTimeout    time.Duration // per-attempt response read deadline
	TotalTimeout   time.Duration // per-attempt total deadline
	RequestsPerSec float64       // request pacing toward the venue, 0 disables
}

// ETLConfig holds batch driver configuration
type ETLConfig struct {
	BatchSize  int
	BatchPause time.Duration
}

// DatabaseConfig holds database configuration
type DatabaseConfig struct {
	Postgres PostgresConfig
	Redis    RedisConfig
}

// PostgresConfig holds Postgres configuration
type PostgresConfig struct {
	Host           string
	Port           string
	Database       string
	User           string
	Password       string
	MaxConnections int
}

// RedisConfig holds Redis configuration for the raw-document cache.
// Enabled is false when no host is configured; the ETL then always fetches.
type RedisConfig struct {
	Enabled        bool
	Host           string
	Port           string
	Password       string
	DB             int
	MaxConnections int
	DocumentTTL    time.Duration
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level  string
	Format string
}

// LoadConfig loads configuration from .env file and environment variables
func LoadConfig() (*Config, error) {
	// Load .env file (optional in production)
	if err := godotenv.Load(); err != nil {
		// .env file is optional - environment variables can be set directly
		if !os.IsNotExist(err) {
			return nil, fmt.Errorf("error loading .env file: %w", err)
		}
	}

	config := &Config{
		Venue: VenueConfig{
			InfoURL:        getEnv("VENUE_INFO_URL", "https://api.hyperliquid.xyz/info"),
			VaultsURL:      getEnv("VENUE_VAULTS_URL", "https://stats-data.hyperliquid.xyz/Mainnet/vaults"),
			Concurrency:    getEnvAsInt("VENUE_CONCURRENCY", 2),
			MaxRetries:     getEnvAsInt("VENUE_MAX_RETRIES", 3),
			InitialBackoff: getEnvAsDuration("VENUE_INITIAL_BACKOFF", 500*time.Millisecond),
			ReadTimeout:    getEnvAsDuration("VENUE_READ_TIMEOUT", 15*time.Second),
			TotalTimeout:   getEnvAsDuration("VENUE_TOTAL_TIMEOUT", 20*time.Second),
			RequestsPerSec: getEnvAsFloat("VENUE_REQUESTS_PER_SEC", 0),
		},
		ETL: ETLConfig{
			BatchSize:  getEnvAsInt("ETL_BATCH_SIZE", 5),
			BatchPause: getEnvAsDuration("ETL_BATCH_PAUSE", 100*time.Millisecond),
		},
		Database: DatabaseConfig{
			Postgres: PostgresConfig{
				Host:           getEnv("POSTGRES_HOST", "localhost"),
				Port:           getEnv("POSTGRES_PORT", "5432"),
				Database:       getEnv("POSTGRES_DB", "vault_analytics"),
				User:           getEnv("POSTGRES_USER", "vaults"),
				Password:       getEnv("POSTGRES_PASSWORD", ""),
				MaxConnections: getEnvAsInt("POSTGRES_MAX_CONNECTIONS", 20),
			},
			Redis: RedisConfig{
				Enabled:        getEnv("REDIS_HOST", "") != "",
				Host:           getEnv("REDIS_HOST", ""),
				Port:           getEnv("REDIS_PORT", "6379"),
				Password:       getEnv("REDIS_PASSWORD", ""),
				DB:             getEnvAsInt("REDIS_DB", 0),
				MaxConnections: getEnvAsInt("REDIS_MAX_CONNECTIONS", 20),
				DocumentTTL:    getEnvAsDuration("REDIS_DOCUMENT_TTL", 10*time.Minute),
			},
		},
		Logging: LoggingConfig{
			Level:  getEnv("LOG_LEVEL", "info"),
			Format: getEnv("LOG_FORMAT", "json"),
		},
	}

	if config.Venue.Concurrency < 1 {
		return nil, fmt.Errorf("VENUE_CONCURRENCY must be at least 1, got %d", config.Venue.Concurrency)
	}
	if config.Venue.MaxRetries < 1 {
		return nil, fmt.Errorf("VENUE_MAX_RETRIES must be at least 1, got %d", config.Venue.MaxRetries)
	}
	if config.ETL.BatchSize < 1 {
		return nil, fmt.Errorf("ETL_BATCH_SIZE must be at least 1, got %d", config.ETL.BatchSize)
	}

	return config, nil
}

// getEnv gets an environment variable with a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvAsInt gets an environment variable as an integer with a default value
func getEnvAsInt(key string, defaultValue int) int {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return defaultValue
	}

	value, err := strconv.Atoi(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}

// getEnvAsFloat gets an environment variable as a float with a default value
func getEnvAsFloat(key string, defaultValue float64) float64 {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return defaultValue
	}

	value, err := strconv.ParseFloat(valueStr, 64)
	if err != nil {
		return defaultValue
	}
	return value
}

// getEnvAsDuration gets an environment variable as a duration with a default value
func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return defaultValue
	}

	value, err := time.ParseDuration(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}
