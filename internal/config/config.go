// Package config defines service configuration and its layered loader.
package config

import (
	"context"
	"fmt"
	"time"
)

// Config contains process configuration.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// LogFormat selects text or json log output.
	LogFormat string `koanf:"log_format"`

	// Addr configures the HTTP listen address, e.g. ":8000".
	Addr string `koanf:"addr"`

	// DatasetPath points at the events table: .csv, or .db/.sqlite/.sqlite3.
	DatasetPath string `koanf:"dataset_path"`

	// DatasetTable names the SQLite table holding events.
	DatasetTable string `koanf:"dataset_table"`

	// StrictValidation makes start-up fail when any player's aggregates
	// cannot be computed.
	StrictValidation bool `koanf:"strict_validation"`

	// MaxLeaderboardLimit caps GET /api/leaderboard?limit.
	MaxLeaderboardLimit int `koanf:"max_leaderboard_limit"`

	// CORSOrigins lists allowed origins; "*" allows any.
	CORSOrigins []string `koanf:"cors_origins"`

	// CacheRedisURL enables the dashboard cache when set, e.g. redis://localhost:6379/0.
	CacheRedisURL string `koanf:"cache_redis_url"`

	// CacheTTLSeconds bounds how long cached dashboards live.
	CacheTTLSeconds int `koanf:"cache_ttl_seconds"`

	// CacheMemoryEntries enables an in-process dashboard cache of this many
	// entries when no Redis URL is set. Zero disables it.
	CacheMemoryEntries int `koanf:"cache_memory_entries"`

	// CacheWarmWorkers pre-builds every dashboard into the cache at start-up
	// and after reloads using this many workers. Zero disables warm-up.
	CacheWarmWorkers int `koanf:"cache_warm_workers"`

	// RequestTimeoutSeconds bounds each API request.
	RequestTimeoutSeconds int `koanf:"request_timeout_seconds"`

	// MetricsEnabled turns Prometheus recording on or off.
	MetricsEnabled bool `koanf:"metrics_enabled"`

	// MetricsNamespace and MetricsSubsystem prefix every metric name.
	MetricsNamespace string `koanf:"metrics_namespace"`
	MetricsSubsystem string `koanf:"metrics_subsystem"`

	// MetricsBuckets overrides the latency histogram buckets, in seconds.
	MetricsBuckets []float64 `koanf:"metrics_buckets"`

	// MetricsLabels are constant labels added to every series.
	MetricsLabels map[string]string `koanf:"metrics_labels"`

	// MetricsRefreshSeconds is how often system gauges are sampled.
	MetricsRefreshSeconds int `koanf:"metrics_refresh_seconds"`
}

// New returns a Config holding the defaults.
func New(_ context.Context) *Config {
	return &Config{
		LogLevel:              "info",
		LogFormat:             "text",
		Addr:                  ":8000",
		DatasetPath:           "merged_mega.csv",
		DatasetTable:          "events",
		StrictValidation:      true,
		MaxLeaderboardLimit:   100,
		CORSOrigins:           []string{"*"},
		CacheTTLSeconds:       300,
		RequestTimeoutSeconds: 10,
		MetricsEnabled:        true,
		MetricsNamespace:      "homerun",
		MetricsSubsystem:      "analytics",
		MetricsRefreshSeconds: 10,
	}
}

// CacheTTL returns CacheTTLSeconds as a duration.
func (c *Config) CacheTTL() time.Duration {
	return time.Duration(c.CacheTTLSeconds) * time.Second
}

// RequestTimeout returns RequestTimeoutSeconds as a duration.
func (c *Config) RequestTimeout() time.Duration {
	return time.Duration(c.RequestTimeoutSeconds) * time.Second
}

// MetricsRefresh returns MetricsRefreshSeconds as a duration.
func (c *Config) MetricsRefresh() time.Duration {
	return time.Duration(c.MetricsRefreshSeconds) * time.Second
}

// Validate reports the first invalid field, wrapped in ErrInvalidConfig.
func (c *Config) Validate() error {
	switch {
	case c.Addr == "":
		return fmt.Errorf("%w: addr must not be empty", ErrInvalidConfig)
	case c.DatasetPath == "":
		return fmt.Errorf("%w: dataset_path must not be empty", ErrInvalidConfig)
	case c.MaxLeaderboardLimit < 1:
		return fmt.Errorf("%w: max_leaderboard_limit must be positive", ErrInvalidConfig)
	case c.CacheTTLSeconds < 0:
		return fmt.Errorf("%w: cache_ttl_seconds must not be negative", ErrInvalidConfig)
	case c.CacheMemoryEntries < 0:
		return fmt.Errorf("%w: cache_memory_entries must not be negative", ErrInvalidConfig)
	case c.CacheWarmWorkers < 0:
		return fmt.Errorf("%w: cache_warm_workers must not be negative", ErrInvalidConfig)
	case c.RequestTimeoutSeconds < 1:
		return fmt.Errorf("%w: request_timeout_seconds must be positive", ErrInvalidConfig)
	case c.LogFormat != "text" && c.LogFormat != "json":
		return fmt.Errorf("%w: log_format must be text or json", ErrInvalidConfig)
	case c.MetricsRefreshSeconds < 1:
		return fmt.Errorf("%w: metrics_refresh_seconds must be positive", ErrInvalidConfig)
	case !increasing(c.MetricsBuckets):
		return fmt.Errorf("%w: metrics_buckets must be strictly increasing", ErrInvalidConfig)
	}
	return nil
}

func increasing(v []float64) bool {
	for i := 1; i < len(v); i++ {
		if v[i] <= v[i-1] {
			return false
		}
	}
	return true
}
