// Package config handles application configuration from environment variables
package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// Config holds all application configuration
type Config struct {
	// Server settings
	Port     string
	Env      string // "development", "staging", "production"
	LogLevel string

	// Database
	DatabaseURL string // PostgreSQL connection string (optional, uses in-memory if not set)

	// Marketplace settings
	EscrowRate          float64 // Fraction of the larger trade side held as deposit
	RewardAmount        int64   // SwapCredits awarded to each party on high-volume trades
	RewardVolumeFloor   int64   // Trades must exceed this combined value to earn a reward
	HighValueItemDollar int64   // Single-item price above this routes the reward to review

	// Security
	AdminSecret  string // Break-glass admin header secret
	RateLimitRPS int

	// Observability
	OTLPEndpoint string // OTLP gRPC endpoint for tracing (optional)
}

// Defaults
const (
	DefaultPort              = "8080"
	DefaultEnv               = "development"
	DefaultLogLevel          = "info"
	DefaultEscrowRate        = 0.2
	DefaultRewardAmount      = 50
	DefaultRewardVolumeFloor = 10000
	DefaultHighValueItem     = 10000
	DefaultRateLimit         = 100
)

// Load reads configuration from environment variables
// It loads .env file if present (for local development)
func Load() (*Config, error) {
	// Load .env file if it exists (ignore error if not present)
	_ = godotenv.Load()

	cfg := &Config{
		Port:                getEnv("PORT", DefaultPort),
		Env:                 getEnv("ENV", DefaultEnv),
		LogLevel:            getEnv("LOG_LEVEL", DefaultLogLevel),
		DatabaseURL:         os.Getenv("DATABASE_URL"), // Optional, uses in-memory if not set
		EscrowRate:          getEnvFloat("ESCROW_RATE", DefaultEscrowRate),
		RewardAmount:        getEnvInt64("REWARD_AMOUNT", DefaultRewardAmount),
		RewardVolumeFloor:   getEnvInt64("REWARD_VOLUME_FLOOR", DefaultRewardVolumeFloor),
		HighValueItemDollar: getEnvInt64("HIGH_VALUE_ITEM_PRICE", DefaultHighValueItem),
		AdminSecret:         os.Getenv("ADMIN_SECRET"),
		RateLimitRPS:        int(getEnvInt64("RATE_LIMIT_RPS", int64(DefaultRateLimit))),
		OTLPEndpoint:        os.Getenv("OTEL_EXPORTER_OTLP_ENDPOINT"),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate checks that all required configuration is present and sane
func (c *Config) Validate() error {
	if c.EscrowRate <= 0 || c.EscrowRate >= 1 {
		return fmt.Errorf("ESCROW_RATE must be between 0 and 1 (exclusive), got %v", c.EscrowRate)
	}

	if c.RewardAmount < 0 {
		return fmt.Errorf("REWARD_AMOUNT must not be negative")
	}

	if c.RewardVolumeFloor < 0 {
		return fmt.Errorf("REWARD_VOLUME_FLOOR must not be negative")
	}

	if c.IsProduction() && c.AdminSecret == "" {
		return fmt.Errorf("ADMIN_SECRET is required in production")
	}

	return nil
}

// IsDevelopment returns true if running in development mode
func (c *Config) IsDevelopment() bool {
	return c.Env == "development"
}

// IsProduction returns true if running in production mode
func (c *Config) IsProduction() bool {
	return c.Env == "production"
}

// Helper functions

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt64(key string, defaultValue int64) int64 {
	if value := os.Getenv(key); value != "" {
		if i, err := strconv.ParseInt(value, 10, 64); err == nil {
			return i
		}
	}
	return defaultValue
}

func getEnvFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if f, err := strconv.ParseFloat(value, 64); err == nil {
			return f
		}
	}
	return defaultValue
}
