// Package cache stores encoded player dashboards keyed by dataset fingerprint.
package cache

import (
	"context"
	"errors"
	"net/url"
)

// ErrUnavailable wraps failures talking to the cache backend.
var ErrUnavailable = errors.New("cache unavailable")

const keyPrefix = "homerun:dashboard:"

// Cache stores the serialized panels of one dashboard.
type Cache interface {
	// Get returns the cached panels and whether the key was present.
	Get(ctx context.Context, key string) ([]string, bool, error)
	// Set stores panels under key with the cache's TTL.
	Set(ctx context.Context, key string, panels []string) error
	Close() error
}

// DashboardKey builds the key for a player's dashboard on one dataset
// version. The player name is escaped so any string is a safe key.
func DashboardKey(fingerprint, player string) string {
	return keyPrefix + fingerprint + ":" + url.QueryEscape(player)
}

// Noop never stores anything.
type Noop struct{}

var _ Cache = Noop{}

// Get implements Cache.
func (Noop) Get(context.Context, string) ([]string, bool, error) { return nil, false, nil }

// Set implements Cache.
func (Noop) Set(context.Context, string, []string) error { return nil }

// Close implements Cache.
func (Noop) Close() error { return nil }
