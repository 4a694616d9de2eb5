// Package config defines service configuration and its loading.
package config

import (
	"context"
)

// Config contains process configuration.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level" validate:"oneof=debug info warn error"`

	// LogFormat selects the log encoding: text or json.
	LogFormat string `koanf:"log_format" validate:"oneof=text json"`

	// Addr configures the HTTP listen address, e.g. ":8080".
	Addr string `koanf:"addr" validate:"required"`

	// DBPath is the SQLite database file. ":memory:" keeps everything in RAM.
	DBPath string `koanf:"db_path" validate:"required"`

	// ConsistencyThresholdPct is the spread above which judges disagree.
	ConsistencyThresholdPct float64 `koanf:"consistency_threshold_pct" validate:"gte=0,lte=100"`

	// AdvisoryQueueSize bounds the in-memory advisory queue.
	AdvisoryQueueSize int `koanf:"advisory_queue_size" validate:"min=1"`

	// AdvisoryWorkerCount sets the number of advisory workers.
	AdvisoryWorkerCount int `koanf:"advisory_worker_count" validate:"min=1,max=64"`

	// AdvisoryDedupeSize sets how many advisory keys are remembered.
	AdvisoryDedupeSize int `koanf:"advisory_dedupe_size" validate:"min=1"`

	// MaxLeaderboardLimit caps ?limit on leaderboard and advisory listings.
	MaxLeaderboardLimit int `koanf:"max_leaderboard_limit" validate:"min=1"`

	// AutosaveRatePerSec and AutosaveBurst throttle score saves per judge.
	AutosaveRatePerSec float64 `koanf:"autosave_rate_per_sec" validate:"gt=0"`
	AutosaveBurst      int     `koanf:"autosave_burst" validate:"min=1"`

	// RubricsFile optionally seeds rubric templates at start.
	RubricsFile string `koanf:"rubrics_file"`
}

// New creates a Config with defaults.
func New(_ context.Context) *Config {
	return &Config{
		LogLevel:                "info",
		LogFormat:               "text",
		Addr:                    ":9080",
		DBPath:                  "gscms.db",
		ConsistencyThresholdPct: 15,
		AdvisoryQueueSize:       1024,
		AdvisoryWorkerCount:     2,
		AdvisoryDedupeSize:      10_000,
		MaxLeaderboardLimit:     100,
		AutosaveRatePerSec:      2,
		AutosaveBurst:           10,
	}
}
