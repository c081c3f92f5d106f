// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package config handles application configuration loading from environment
// variables, with an optional YAML file for the planner conventions. It
// provides a centralized Config struct used across the application.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"

	"pantrykeeper/internal/planner"
)

// Local store backends.
const (
	LocalMemory = "memory"
	LocalValkey = "valkey"
	LocalSQLite = "sqlite"
)

// Remote store backends.
const (
	RemoteNone     = "none"
	RemotePostgres = "postgres"
	RemoteMemory   = "memory"
)

// PlannerConfig is the planner section of the YAML file.
type PlannerConfig struct {
	WeekStart      string `yaml:"week_start"`
	LunchFromHour  int    `yaml:"lunch_from_hour"`
	DinnerFromHour int    `yaml:"dinner_from_hour"`
}

// fileConfig is the shape of CONFIG_FILE.
type fileConfig struct {
	Planner PlannerConfig `yaml:"planner"`
}

// Config holds all application configuration values loaded from the environment.
type Config struct {
	// Server settings
	Host string
	Port string
	Env  string // "development", "production", "testing"

	// Local key/value backend
	LocalStore     string
	SQLitePath     string
	ValkeyHost     string
	ValkeyPort     string
	ValkeyPassword string
	ValkeyPrefix   string

	// Remote document store
	RemoteStore        string
	DBHost             string
	DBPort             string
	DBUser             string
	DBPassword         string
	DBName             string
	RemotePollInterval time.Duration

	// S3-compatible snapshot archive
	S3Endpoint  string
	S3Region    string
	S3AccessKey string
	S3SecretKey string
	S3Bucket    string

	// APIKeyHash is a bcrypt hash; when empty the API is open.
	APIKeyHash      string
	SeedSampleData  bool
	ImportRateLimit int // requests per minute per client on /api/import

	ConfigFile string
	Planner    PlannerConfig
}

// Load reads configuration from environment variables, applying defaults
// for development where appropriate, then overlays CONFIG_FILE when set.
// Returns an error if critical values are missing in production mode.
func Load() (*Config, error) {
	cfg := &Config{
		Host: envOrDefault("APP_HOST", "0.0.0.0"),
		Port: envOrDefault("APP_PORT", "8080"),
		Env:  envOrDefault("APP_ENV", "development"),

		LocalStore:     envOrDefault("LOCAL_STORE", LocalSQLite),
		SQLitePath:     envOrDefault("SQLITE_PATH", "pantrykeeper.db"),
		ValkeyHost:     envOrDefault("VALKEY_HOST", "localhost"),
		ValkeyPort:     envOrDefault("VALKEY_PORT", "6379"),
		ValkeyPassword: os.Getenv("VALKEY_PASSWORD"),
		ValkeyPrefix:   envOrDefault("VALKEY_PREFIX", "pantry:"),

		RemoteStore: envOrDefault("REMOTE_STORE", RemoteNone),
		DBHost:      envOrDefault("POSTGRES_HOST", "localhost"),
		DBPort:      envOrDefault("POSTGRES_PORT", "5432"),
		DBUser:      envOrDefault("POSTGRES_USER", "pantrykeeper"),
		DBPassword:  envOrDefault("POSTGRES_PASSWORD", "changeme"),
		DBName:      envOrDefault("POSTGRES_DB", "pantrykeeper"),

		S3Endpoint:  os.Getenv("S3_ENDPOINT"),
		S3Region:    envOrDefault("S3_REGION", "fsn1"),
		S3AccessKey: os.Getenv("S3_ACCESS_KEY"),
		S3SecretKey: os.Getenv("S3_SECRET_KEY"),
		S3Bucket:    envOrDefault("S3_BUCKET", "pantrykeeper-snapshots"),

		APIKeyHash: os.Getenv("API_KEY_HASH"),
		ConfigFile: os.Getenv("CONFIG_FILE"),
		Planner:    defaultPlanner(),
	}

	var err error
	if cfg.RemotePollInterval, err = time.ParseDuration(envOrDefault("REMOTE_POLL_INTERVAL", "5s")); err != nil {
		return nil, fmt.Errorf("REMOTE_POLL_INTERVAL: %w", err)
	}
	if cfg.SeedSampleData, err = strconv.ParseBool(envOrDefault("SEED_SAMPLE_DATA", "true")); err != nil {
		return nil, fmt.Errorf("SEED_SAMPLE_DATA: %w", err)
	}
	if cfg.ImportRateLimit, err = strconv.Atoi(envOrDefault("IMPORT_RATE_LIMIT", "30")); err != nil {
		return nil, fmt.Errorf("IMPORT_RATE_LIMIT: %w", err)
	}

	switch cfg.LocalStore {
	case LocalMemory, LocalValkey, LocalSQLite:
	default:
		return nil, fmt.Errorf("LOCAL_STORE must be one of memory, valkey, sqlite, got %q", cfg.LocalStore)
	}
	switch cfg.RemoteStore {
	case RemoteNone, RemotePostgres, RemoteMemory:
	default:
		return nil, fmt.Errorf("REMOTE_STORE must be one of none, postgres, memory, got %q", cfg.RemoteStore)
	}

	if cfg.Env == "production" && cfg.RemoteStore == RemotePostgres {
		if cfg.DBPassword == "changeme" {
			return nil, fmt.Errorf("POSTGRES_PASSWORD must be set in production")
		}
	}

	if cfg.ConfigFile != "" {
		if err := cfg.ApplyFile(cfg.ConfigFile); err != nil {
			return nil, err
		}
	}
	return cfg, nil
}

func defaultPlanner() PlannerConfig {
	return PlannerConfig{WeekStart: "saturday", LunchFromHour: 11, DinnerFromHour: 17}
}

// ApplyFile overlays the YAML file at path. Keys missing from the file
// keep their current values.
func (c *Config) ApplyFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}
	fc := fileConfig{Planner: c.Planner}
	if err := yaml.Unmarshal(data, &fc); err != nil {
		return fmt.Errorf("parse config file %s: %w", path, err)
	}
	c.Planner = fc.Planner
	c.ConfigFile = path
	if _, err := c.PlannerSettings(); err != nil {
		return fmt.Errorf("config file %s: %w", path, err)
	}
	return nil
}

// PlannerSettings validates the planner section.
func (c *Config) PlannerSettings() (planner.Settings, error) {
	wd, err := planner.ParseWeekday(c.Planner.WeekStart)
	if err != nil {
		return planner.Settings{}, fmt.Errorf("planner.week_start: %w", err)
	}
	lunch, dinner := c.Planner.LunchFromHour, c.Planner.DinnerFromHour
	if lunch < 0 || dinner > 23 || lunch >= dinner {
		return planner.Settings{}, fmt.Errorf("planner hours must satisfy 0 <= lunch (%d) < dinner (%d) <= 23", lunch, dinner)
	}
	return planner.Settings{FirstDay: wd, LunchFromHour: lunch, DinnerFromHour: dinner}, nil
}

// DSN returns the PostgreSQL connection string.
func (c *Config) DSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%s/%s?sslmode=disable",
		c.DBUser, c.DBPassword, c.DBHost, c.DBPort, c.DBName,
	)
}

// Addr returns the server listen address (host:port).
func (c *Config) Addr() string {
	return fmt.Sprintf("%s:%s", c.Host, c.Port)
}

// IsDev returns true if the application is running in development mode.
func (c *Config) IsDev() bool {
	return c.Env == "development"
}

// envOrDefault reads an environment variable, returning a fallback if unset or empty.
func envOrDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
