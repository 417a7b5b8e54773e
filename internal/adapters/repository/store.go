// Package repository loads the batted-ball dataset and serves the player
// ranking derived from it.
package repository

import (
	"context"

	"github.com/okian/homerun/internal/domain/model"
)

// Entry represents a leaderboard row.
type Entry struct {
	Rank            int
	Player          string
	MaxHomeruns     int
	MaxExitVelocity float64
	MaxHitDistance  float64
	Events          int
}

// Store provides read access to the loaded dataset and its ranking.
type Store interface {
	// Snapshot returns the current dataset, its source and ranking as one
	// consistent view. Callers that need more than one of them must read
	// them from the same snapshot.
	Snapshot() *Snapshot

	// Dataset returns the current immutable dataset.
	Dataset() *model.Dataset

	// Source describes where the current dataset came from.
	Source() Source

	// Rank returns the ranked entry for a player.
	// Returns ErrNotFound if the player is unknown.
	Rank(ctx context.Context, player string) (Entry, error)

	// TopN returns the top-N entries in ranking order.
	TopN(ctx context.Context, n int) ([]Entry, error)

	// Count returns the number of ranked players.
	Count(ctx context.Context) int

	// Players returns distinct player names in first-appearance order.
	Players(ctx context.Context) []string
}
