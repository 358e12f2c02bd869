// Package config provides application configuration loading.
// This is part of the platform layer and contains no business logic.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// =============================================================================
// Module-Specific Config Interfaces (Principle of Least Privilege)
// =============================================================================

// DatabaseConfig provides database connection settings.
type DatabaseConfig interface {
	GetDatabaseURL() string
}

// SchedulerConfig provides settings for the asynq-backed task scheduler.
type SchedulerConfig interface {
	GetRedisURL() string
	GetRedisTLSInsecure() bool
	GetAsynqQueueName() string
	GetAsynqConcurrency() int
}

// EngineConfig provides settings consumed by the follow-up decision engine.
type EngineConfig interface {
	GetAggressiveness() int
	GetPhraseConfigPath() string
}

// CycleConfig provides settings for the periodic evaluation cycle runner.
type CycleConfig interface {
	GetEvaluationInterval() time.Duration
	GetEvaluationRatePerSec() float64
	GetCycleBatchSize() int
	GetLeadLockTTL() time.Duration
}

// =============================================================================
// Main Config Struct
// =============================================================================

// Config holds all application configuration values.
type Config struct {
	Env                  string
	DatabaseURL          string
	RedisURL             string
	RedisTLSInsecure     bool
	AsynqQueueName       string
	AsynqConcurrency     int
	Aggressiveness       int
	PhraseConfigPath     string
	EvaluationInterval   time.Duration
	EvaluationRatePerSec float64
	CycleBatchSize       int
	LeadLockTTL          time.Duration
	MetricsAddr          string
}

// =============================================================================
// Interface Implementations
// =============================================================================

// DatabaseConfig implementation
func (c *Config) GetDatabaseURL() string { return c.DatabaseURL }

// SchedulerConfig implementation
func (c *Config) GetRedisURL() string      { return c.RedisURL }
func (c *Config) GetRedisTLSInsecure() bool { return c.RedisTLSInsecure }
func (c *Config) GetAsynqQueueName() string { return c.AsynqQueueName }
func (c *Config) GetAsynqConcurrency() int  { return c.AsynqConcurrency }

// EngineConfig implementation
func (c *Config) GetAggressiveness() int      { return c.Aggressiveness }
func (c *Config) GetPhraseConfigPath() string { return c.PhraseConfigPath }

// CycleConfig implementation
func (c *Config) GetEvaluationInterval() time.Duration { return c.EvaluationInterval }
func (c *Config) GetEvaluationRatePerSec() float64     { return c.EvaluationRatePerSec }
func (c *Config) GetCycleBatchSize() int               { return c.CycleBatchSize }
func (c *Config) GetLeadLockTTL() time.Duration        { return c.LeadLockTTL }

// Load reads configuration from environment variables.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		Env:                  getEnv("APP_ENV", "development"),
		DatabaseURL:          getEnv("DATABASE_URL", ""),
		RedisURL:             getEnv("REDIS_URL", "redis://localhost:6379/0"),
		RedisTLSInsecure:     strings.EqualFold(getEnv("REDIS_TLS_INSECURE", "false"), "true"),
		AsynqQueueName:       getEnv("ASYNQ_QUEUE", "followups"),
		AsynqConcurrency:     mustInt(getEnv("ASYNQ_CONCURRENCY", "10")),
		Aggressiveness:       mustInt(getEnv("FOLLOWUP_AGGRESSIVENESS", "5")),
		PhraseConfigPath:     getEnv("FOLLOWUP_PHRASES_FILE", ""),
		EvaluationInterval:   mustDuration(getEnv("EVALUATION_INTERVAL", "5m")),
		EvaluationRatePerSec: mustFloat(getEnv("EVALUATION_RATE_PER_SEC", "20")),
		CycleBatchSize:       mustInt(getEnv("CYCLE_BATCH_SIZE", "500")),
		LeadLockTTL:          mustDuration(getEnv("LEAD_LOCK_TTL", "2m")),
		MetricsAddr:          getEnv("METRICS_ADDR", ""),
	}

	if cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL is required")
	}
	if cfg.Aggressiveness < 1 || cfg.Aggressiveness > 10 {
		return nil, fmt.Errorf("FOLLOWUP_AGGRESSIVENESS must be between 1 and 10")
	}
	if cfg.EvaluationInterval <= 0 {
		return nil, fmt.Errorf("EVALUATION_INTERVAL must be a positive duration")
	}

	return cfg, nil
}

func getEnv(key, fallback string) string {
	if val, ok := os.LookupEnv(key); ok {
		return val
	}
	return fallback
}

func mustDuration(value string) time.Duration {
	d, err := time.ParseDuration(value)
	if err != nil {
		return 0
	}
	return d
}

func mustInt(value string) int {
	result, err := strconv.Atoi(value)
	if err != nil {
		return 0
	}
	return result
}

func mustFloat(value string) float64 {
	result, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return 0
	}
	return result
}
