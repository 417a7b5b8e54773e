// Package smoketest generates synthetic datasets and probes a running
// analytics service end to end.
package smoketest

import (
	"errors"
	"time"
)

// Errors reported by the probe.
var (
	ErrUnhealthy   = errors.New("service unhealthy")
	ErrProbeFailed = errors.New("probe failed")
	ErrNoPlayers   = errors.New("service reported no players")
)

// Config holds configuration for a probe run.
type Config struct {
	BaseURL string        // Base URL of the service
	TopN    int           // Leaderboard entries to verify
	Workers int           // Concurrent player probes
	Timeout time.Duration // HTTP request timeout
	Verbose bool          // Log every player
}

// GenerateConfig shapes a synthetic dataset.
type GenerateConfig struct {
	Players     int    // Distinct players
	Seasons     int    // Seasons per player, counting back from FirstSeason
	FirstSeason int    // Earliest season
	MaxHomeruns int    // Upper bound on homeruns per player season
	Seed        uint64 // Random seed; equal seeds give equal datasets
	VideoBase   string // Prefix for generated video links
}

// Commentary is the best-commentary response.
type Commentary struct {
	VideoLink  string `json:"video_link"`
	Commentary string `json:"commentary"`
}

// Dashboard is the dashboard response.
type Dashboard struct {
	Dashboard []string `json:"dashboard"`
}

// Entry represents a leaderboard entry.
type Entry struct {
	Rank        int    `json:"rank"`
	Player      string `json:"player"`
	MaxHomeruns int    `json:"max_homeruns"`
	Events      int    `json:"events"`
}

// Health is the /healthz body.
type Health struct {
	Status  string `json:"status"`
	Players int    `json:"players"`
	Rows    int    `json:"rows"`
}

// Stats holds probe statistics.
type Stats struct {
	Players            int
	Rows               int
	CommentariesOK     int
	DashboardsOK       int
	Failures           int
	LeaderboardEntries int
	StartTime          time.Time
	EndTime            time.Time
	Duration           time.Duration
}
