package common

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/joseph-ayodele/invoice-intake/constants"
)

// Config holds all application configuration
type Config struct {
	Extraction ExtractionConfig `yaml:"extraction"`
	Store      StoreConfig      `yaml:"store"`
	Workflow   WorkflowConfig   `yaml:"workflow"`
	Log        LogConfig        `yaml:"log"`
}

// ExtractionConfig selects and configures the extraction service transport
type ExtractionConfig struct {
	Transport string        `yaml:"transport"` // http | grpc
	BaseURL   string        `yaml:"base_url"`
	GRPCAddr  string        `yaml:"grpc_addr"`
	Timeout   time.Duration `yaml:"timeout"`
}

// StoreConfig selects and configures the record store
type StoreConfig struct {
	Driver string `yaml:"driver"` // sqlite | postgres | firestore | http | memory

	DSN              string        `yaml:"dsn"`
	MaxConns         int32         `yaml:"max_conns"`
	MinConns         int32         `yaml:"min_conns"`
	MaxConnLifetime  time.Duration `yaml:"max_conn_lifetime"`
	MaxConnIdleTime  time.Duration `yaml:"max_conn_idle_time"`
	DialTimeout      time.Duration `yaml:"dial_timeout"`
	StatementTimeout time.Duration `yaml:"statement_timeout"`

	FirestoreProject    string `yaml:"firestore_project"`
	FirestoreCollection string `yaml:"firestore_collection"`

	BaseURL string `yaml:"base_url"`

	CacheTTL time.Duration `yaml:"cache_ttl"`
}

// WorkflowConfig holds upload workflow timing
type WorkflowConfig struct {
	NavigateDelay time.Duration `yaml:"navigate_delay"`
}

// LogConfig holds logging configuration
type LogConfig struct {
	Level string `yaml:"level"`
}

// DefaultConfig returns the built-in defaults.
func DefaultConfig() *Config {
	return &Config{
		Extraction: ExtractionConfig{
			Transport: "http",
			BaseURL:   "http://localhost:8000",
			GRPCAddr:  "localhost:9000",
			Timeout:   60 * time.Second,
		},
		Store: StoreConfig{
			Driver:              "sqlite",
			DSN:                 "file:invoices.db?_pragma=foreign_keys(1)",
			MaxConns:            10,
			MinConns:            1,
			MaxConnLifetime:     30 * time.Minute,
			MaxConnIdleTime:     5 * time.Minute,
			DialTimeout:         3 * time.Second,
			FirestoreCollection: "invoices",
			BaseURL:             "http://localhost:8000",
			CacheTTL:            time.Minute,
		},
		Workflow: WorkflowConfig{
			NavigateDelay: constants.DefaultNavigateDelay,
		},
		Log: LogConfig{
			Level: "info",
		},
	}
}

// LoadConfig builds configuration from defaults, an optional YAML file and
// environment variables, in that order of precedence (env wins).
func LoadConfig(path string) (*Config, error) {
	cfg := DefaultConfig()
	if path != "" {
		raw, err := os.ReadFile(path)
		if err != nil {
			return nil, WrapError(err, "read config file")
		}
		if err := yaml.Unmarshal(raw, cfg); err != nil {
			return nil, NewAppError("CONFIG_ERROR", fmt.Sprintf("parse %s", path), err)
		}
	}
	cfg.applyEnv()
	return cfg, nil
}

func (c *Config) applyEnv() {
	c.Extraction.Transport = getEnv("EXTRACTION_TRANSPORT", c.Extraction.Transport)
	c.Extraction.BaseURL = getEnv("EXTRACTION_URL", c.Extraction.BaseURL)
	c.Extraction.GRPCAddr = getEnv("EXTRACTION_GRPC_ADDR", c.Extraction.GRPCAddr)
	c.Extraction.Timeout = getEnvAsDuration("EXTRACTION_TIMEOUT", c.Extraction.Timeout)

	c.Store.Driver = getEnv("STORE_DRIVER", c.Store.Driver)
	c.Store.DSN = getEnv("DB_URL", c.Store.DSN)
	c.Store.MaxConns = getEnvAsInt32("DB_MAX_CONNS", c.Store.MaxConns)
	c.Store.MinConns = getEnvAsInt32("DB_MIN_CONNS", c.Store.MinConns)
	c.Store.MaxConnLifetime = getEnvAsDuration("DB_MAX_CONN_LIFETIME", c.Store.MaxConnLifetime)
	c.Store.MaxConnIdleTime = getEnvAsDuration("DB_MAX_CONN_IDLE_TIME", c.Store.MaxConnIdleTime)
	c.Store.DialTimeout = getEnvAsDuration("DB_DIAL_TIMEOUT", c.Store.DialTimeout)
	c.Store.StatementTimeout = getEnvAsDuration("DB_STATEMENT_TIMEOUT", c.Store.StatementTimeout)
	c.Store.FirestoreProject = getEnv("FIRESTORE_PROJECT", c.Store.FirestoreProject)
	c.Store.FirestoreCollection = getEnv("FIRESTORE_COLLECTION", c.Store.FirestoreCollection)
	c.Store.BaseURL = getEnv("RECORD_API_URL", c.Store.BaseURL)
	c.Store.CacheTTL = getEnvAsDuration("STORE_CACHE_TTL", c.Store.CacheTTL)

	c.Workflow.NavigateDelay = getEnvAsDuration("NAVIGATE_DELAY", c.Workflow.NavigateDelay)
	c.Log.Level = getEnv("LOG_LEVEL", c.Log.Level)
}

// Helper functions for environment variable parsing
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt32(key string, defaultValue int32) int32 {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.ParseInt(value, 10, 32); err == nil {
			return int32(intVal)
		}
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}

// SlogLevel maps the configured level name to a slog level (info when unknown).
func (c LogConfig) SlogLevel() slog.Level {
	switch strings.ToLower(strings.TrimSpace(c.Level)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// Validate validates the loaded configuration
func (c *Config) Validate() error {
	v := NewValidator()
	v.Field("extraction.transport", c.Extraction.Transport, Required, OneOf("http", "grpc"))
	switch c.Extraction.Transport {
	case "http":
		v.Field("extraction.base_url", c.Extraction.BaseURL, Required, AbsoluteURL)
	case "grpc":
		v.Field("extraction.grpc_addr", c.Extraction.GRPCAddr, Required)
	}

	v.Field("store.driver", c.Store.Driver, Required, OneOf("sqlite", "postgres", "firestore", "http", "memory"))
	switch c.Store.Driver {
	case "sqlite", "postgres":
		v.Field("store.dsn", c.Store.DSN, Required)
	case "firestore":
		v.Field("store.firestore_project", c.Store.FirestoreProject, Required)
		v.Field("store.firestore_collection", c.Store.FirestoreCollection, Required)
	case "http":
		v.Field("store.base_url", c.Store.BaseURL, Required, AbsoluteURL)
	}

	if v.HasErrors() {
		return NewAppError("CONFIG_ERROR", v.ErrorMessage(), ErrInvalidInput)
	}
	return nil
}
