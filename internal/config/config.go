package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds all configuration for the StudentPulse server.
type Config struct {
	Server    ServerConfig
	Database  DatabaseConfig
	Redis     RedisConfig
	Analysis  AnalysisConfig
	RateLimit RateLimitConfig
}

type ServerConfig struct {
	Port int
	Env  string
}

type DatabaseConfig struct {
	URL             string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
}

type RedisConfig struct {
	URL string
}

// AnalysisConfig controls how the service runs and stores analyses.
type AnalysisConfig struct {
	CacheTTL         time.Duration
	StrictRecords    bool
	SnapshotsEnabled bool
}

type RateLimitConfig struct {
	PerMinute int
}

var validEnvs = map[string]bool{
	"development": true,
	"staging":     true,
	"production":  true,
}

// Load reads configuration from environment variables and returns a validated Config.
// Returns an error with a descriptive message if any required value is missing or invalid.
func Load() (*Config, error) {
	cfg := &Config{
		Server: ServerConfig{
			Port: envInt("STUDENTPULSE_PORT", 8080),
			Env:  envString("STUDENTPULSE_ENV", "development"),
		},
		Database: databaseFromEnv(),
		Redis: RedisConfig{
			URL: os.Getenv("REDIS_URL"),
		},
		Analysis: AnalysisConfig{
			CacheTTL:         envDuration("ANALYSIS_CACHE_TTL", 10*time.Minute),
			StrictRecords:    envBool("ANALYSIS_STRICT_RECORDS", false),
			SnapshotsEnabled: envBool("ANALYSIS_SNAPSHOTS_ENABLED", true),
		},
		RateLimit: RateLimitConfig{
			PerMinute: envInt("RATE_LIMIT_PER_MINUTE", 60),
		},
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// LoadDatabase reads only the database settings. Used by CLI commands that
// never touch Redis.
func LoadDatabase() (DatabaseConfig, error) {
	db := databaseFromEnv()
	return db, db.validate()
}

func databaseFromEnv() DatabaseConfig {
	return DatabaseConfig{
		URL:             os.Getenv("DATABASE_URL"),
		MaxOpenConns:    envInt("DATABASE_MAX_OPEN_CONNS", 25),
		MaxIdleConns:    envInt("DATABASE_MAX_IDLE_CONNS", 5),
		ConnMaxLifetime: envDuration("DATABASE_CONN_MAX_LIFETIME", 5*time.Minute),
	}
}

func (d DatabaseConfig) validate() error {
	if d.URL == "" {
		return fmt.Errorf("DATABASE_URL is required")
	}
	if !strings.HasPrefix(d.URL, "postgres://") && !strings.HasPrefix(d.URL, "postgresql://") {
		return fmt.Errorf("DATABASE_URL must start with postgres:// or postgresql://")
	}
	return nil
}

func (c *Config) validate() error {
	if err := c.Database.validate(); err != nil {
		return err
	}

	if c.Redis.URL == "" {
		return fmt.Errorf("REDIS_URL is required")
	}

	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("STUDENTPULSE_PORT must be between 1 and 65535, got %d", c.Server.Port)
	}
	if !validEnvs[c.Server.Env] {
		return fmt.Errorf("STUDENTPULSE_ENV must be one of development, staging, production; got %q", c.Server.Env)
	}

	if c.Analysis.CacheTTL <= 0 {
		return fmt.Errorf("ANALYSIS_CACHE_TTL must be positive, got %s", c.Analysis.CacheTTL)
	}
	if c.RateLimit.PerMinute <= 0 {
		return fmt.Errorf("RATE_LIMIT_PER_MINUTE must be positive, got %d", c.RateLimit.PerMinute)
	}

	return nil
}

func envString(key, defaultVal string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultVal
}

func envInt(key string, defaultVal int) int {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal
	}
	i, err := strconv.Atoi(v)
	if err != nil {
		return defaultVal
	}
	return i
}

func envDuration(key string, defaultVal time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return defaultVal
	}
	return d
}

func envBool(key string, defaultVal bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return defaultVal
	}
	return b
}
