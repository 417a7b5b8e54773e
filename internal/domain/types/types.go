// Package types contains the JSON shapes served by the HTTP API.
package types

import "math"

// Entry represents a leaderboard entry.
type Entry struct {
	Rank            int      `json:"rank"`
	Player          string   `json:"player"`
	MaxHomeruns     int      `json:"max_homeruns"`
	MaxExitVelocity *float64 `json:"max_exit_velocity"`
	MaxHitDistance  *float64 `json:"max_hit_distance"`
	Events          int      `json:"events"`
}

// Commentary is the best-commentary response.
type Commentary struct {
	VideoLink  string `json:"video_link"`
	Commentary string `json:"commentary"`
}

// Dashboard carries the seven serialized chart payloads in panel order.
type Dashboard struct {
	Dashboard []string `json:"dashboard"`
}

// Health is the /healthz body.
type Health struct {
	Status  string `json:"status"`
	Players int    `json:"players"`
	Rows    int    `json:"rows"`
}

// Float returns nil for NaN and Inf so they encode as JSON null.
func Float(v float64) *float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return nil
	}
	return &v
}
