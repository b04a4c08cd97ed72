package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	DBDSN          string
	Environment    string
	MigrationsPath string
	MatchThreshold int
	SweepInterval  time.Duration
	RetryInterval  time.Duration
}

const (
	defaultMatchThreshold = 70
	defaultSweepInterval  = 5 * time.Minute
	defaultRetryInterval  = 30 * time.Second
	defaultMigrationsPath = "migrations"
)

func Load() (*Config, error) {
	// A .env file is optional; plain environment variables win either way.
	if err := godotenv.Load(".env"); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	cfg := &Config{
		DBDSN:          os.Getenv("DB_DSN"),
		Environment:    os.Getenv("ENV"),
		MigrationsPath: os.Getenv("MIGRATIONS_PATH"),
		MatchThreshold: defaultMatchThreshold,
		SweepInterval:  defaultSweepInterval,
		RetryInterval:  defaultRetryInterval,
	}

	if cfg.Environment == "" {
		cfg.Environment = "development"
	}
	if cfg.MigrationsPath == "" {
		cfg.MigrationsPath = defaultMigrationsPath
	}

	if v := os.Getenv("MATCH_THRESHOLD"); v != "" {
		threshold, err := strconv.Atoi(v)
		if err != nil || threshold < 0 || threshold > 100 {
			return nil, fmt.Errorf("MATCH_THRESHOLD must be an integer in [0,100], got %q", v)
		}
		cfg.MatchThreshold = threshold
	}

	if v := os.Getenv("SWEEP_INTERVAL"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil || d <= 0 {
			return nil, fmt.Errorf("SWEEP_INTERVAL must be a positive duration, got %q", v)
		}
		cfg.SweepInterval = d
	}

	if v := os.Getenv("DISPATCH_RETRY_INTERVAL"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil || d <= 0 {
			return nil, fmt.Errorf("DISPATCH_RETRY_INTERVAL must be a positive duration, got %q", v)
		}
		cfg.RetryInterval = d
	}

	if cfg.DBDSN == "" {
		return nil, fmt.Errorf("DB_DSN is required but not set")
	}

	return cfg, nil
}
