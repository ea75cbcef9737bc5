// Package config defines service configuration structures and loading hooks.
//
// Conventions:
// - Provide New() to build a Config with defaults.
// - Layer overrides on top via Load (file, then environment).
// - External errors must be wrapped via this package's error helpers.
package config

import (
	"runtime"
)

// Store backend choices.
const (
	StoreMemory = "memory"
	StoreSQLite = "sqlite"
)

// Config contains process configuration.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// Addr configures the HTTP listen address, e.g. ":8080".
	Addr string `koanf:"addr"`

	// Store selects the persistence backend: memory or sqlite.
	Store string `koanf:"store"`

	// SQLitePath locates the database file when Store is sqlite.
	SQLitePath string `koanf:"sqlite_path"`

	// BadgeFile optionally points at a YAML badge catalog that extends or
	// overrides the built-in badge set.
	BadgeFile string `koanf:"badge_file"`

	// QueueSize bounds the in-memory effort queue.
	QueueSize int `koanf:"queue_size"`

	// WorkerCount sets the number of pipeline workers.
	WorkerCount int `koanf:"worker_count"`

	// DedupeSize sets the size of the intake deduplication cache.
	DedupeSize int `koanf:"dedupe_size"`

	// MinRecognitionImpact is the impact floor for synthesizing a
	// recognition.
	MinRecognitionImpact int `koanf:"min_recognition_impact"`

	// TopRecognitions caps how many recognitions a digest references.
	TopRecognitions int `koanf:"top_recognitions"`

	// GrowthMetric selects the digest growth comparison:
	// effort_count or impact_score.
	GrowthMetric string `koanf:"growth_metric"`

	// RetryAttempts bounds retries of transient store failures.
	RetryAttempts int `koanf:"retry_attempts"`

	// RetryBaseMS is the base backoff delay between retries.
	RetryBaseMS int `koanf:"retry_base_ms"`
}

// New creates a Config with defaults.
func New() *Config {
	return &Config{
		LogLevel:             "info",
		Addr:                 ":8080",
		Store:                StoreMemory,
		SQLitePath:           "acclaim.db",
		QueueSize:            10_000,
		WorkerCount:          runtime.NumCPU() * 2,
		DedupeSize:           50_000,
		MinRecognitionImpact: 5,
		TopRecognitions:      5,
		GrowthMetric:         "effort_count",
		RetryAttempts:        3,
		RetryBaseMS:          50,
	}
}
