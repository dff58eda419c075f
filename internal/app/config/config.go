package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"

	"mpi-core/internal/infrastructure/database/mongodb"
	"mpi-core/internal/infrastructure/database/postgres"
	"mpi-core/internal/infrastructure/database/redis"
	"mpi-core/internal/matching/scoring"
)

// Config is assembled once at startup, entirely from the environment.
type Config struct {
	Environment string
	Postgres    postgres.DatabaseConfig
	Redis       redis.Config
	MongoDB     mongodb.Config
	Matching    MatchingConfig
	Blocking    BlockingConfig
	Audit       AuditConfig
	Logging     LoggingConfig
}

// MatchingConfig configures the composite scorer selected for the matcher.
type MatchingConfig struct {
	Strategy  string // "probabilistic" or "deterministic"
	Threshold float64
	Weights   scoring.Weights
}

// BlockingConfig configures the blocking index search.
type BlockingConfig struct {
	ResultCap         int
	FuzzyEditDistance int
}

// AuditConfig configures the audit writer.
type AuditConfig struct {
	QueryCap int
}

// LoggingConfig configures the root slog handler.
type LoggingConfig struct {
	Level string
}

// NewConfig loads configuration from the environment, falling back to a
// .env file if present.
func NewConfig() (*Config, error) {
	if err := godotenv.Load(".env"); err != nil {
		fmt.Printf("[CONFIG] no .env file found: %v\n", err)
	}

	cfg := &Config{
		Environment: getEnv("APP_ENV", "development"),
	}

	cfg.Postgres = postgres.DatabaseConfig{
		Host:     getEnv("DB_HOST", "localhost"),
		Port:     getEnvInt("DB_PORT", 5432),
		Database: getEnv("DB_NAME", "mpi"),
		Username: getEnv("DB_USERNAME", "postgres"),
		Password: getEnv("DB_PASSWORD", ""),
		SSLMode:  getEnv("DB_SSL_MODE", "disable"),
		PoolMin:  int32(getEnvInt("DB_POOL_MIN", 5)),
		PoolMax:  int32(getEnvInt("DB_POOL_MAX", 25)),
	}

	cfg.Redis = redis.Config{
		Host:     getEnv("REDIS_HOST", "localhost"),
		Port:     getEnvInt("REDIS_PORT", 6379),
		Password: getEnv("REDIS_PASSWORD", ""),
		Database: getEnvInt("REDIS_DATABASE", 0),
	}

	cfg.MongoDB = mongodb.Config{
		URI:      getEnv("MONGODB_URI", "mongodb://localhost:27017"),
		Database: getEnv("MONGODB_DATABASE", "mpi_index"),
	}

	cfg.Matching = MatchingConfig{
		Strategy:  getEnv("MATCHING_STRATEGY", "probabilistic"),
		Threshold: getEnvFloat("MATCHING_THRESHOLD", 0.85),
		Weights: scoring.Weights{
			Name:       getEnvFloat("MATCHING_WEIGHT_NAME", scoring.DefaultWeights().Name),
			DOB:        getEnvFloat("MATCHING_WEIGHT_DOB", scoring.DefaultWeights().DOB),
			Gender:     getEnvFloat("MATCHING_WEIGHT_GENDER", scoring.DefaultWeights().Gender),
			Address:    getEnvFloat("MATCHING_WEIGHT_ADDRESS", scoring.DefaultWeights().Address),
			Identifier: getEnvFloat("MATCHING_WEIGHT_IDENTIFIER", scoring.DefaultWeights().Identifier),
		},
	}

	cfg.Blocking = BlockingConfig{
		ResultCap:         getEnvInt("BLOCKING_RESULT_CAP", 100),
		FuzzyEditDistance: getEnvInt("BLOCKING_FUZZY_EDIT_DISTANCE", 2),
	}

	cfg.Audit = AuditConfig{
		QueryCap: getEnvInt("AUDIT_QUERY_CAP", 500),
	}

	cfg.Logging = LoggingConfig{
		Level: getEnv("LOG_LEVEL", "info"),
	}

	if err := validateConfig(cfg); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	fmt.Printf("[CONFIG] loaded for environment: %s\n", cfg.Environment)
	return cfg, nil
}

func validateConfig(cfg *Config) error {
	if cfg.Matching.Strategy != "probabilistic" && cfg.Matching.Strategy != "deterministic" {
		return fmt.Errorf("unsupported MATCHING_STRATEGY: %s (use 'probabilistic' or 'deterministic')", cfg.Matching.Strategy)
	}
	if cfg.Matching.Strategy == "probabilistic" {
		if err := cfg.Matching.Weights.Validate(); err != nil {
			return fmt.Errorf("matching weights: %w", err)
		}
	}
	if cfg.Environment == "docker" && cfg.Postgres.Password == "" {
		return fmt.Errorf("DB_PASSWORD is required for environment docker")
	}
	return nil
}

// NewPostgresConfig adapts Config for the postgres.Module provider.
func NewPostgresConfig(cfg *Config) *postgres.DatabaseConfig { return &cfg.Postgres }

// NewRedisConfig adapts Config for the redis.Module provider.
func NewRedisConfig(cfg *Config) *redis.Config { return &cfg.Redis }

// NewMongoConfig adapts Config for the mongodb.Module provider.
func NewMongoConfig(cfg *Config) *mongodb.Config { return &cfg.MongoDB }

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
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

