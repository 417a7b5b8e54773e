package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const defaultTTL = 5 * time.Minute

// Option configures a Redis cache.
type Option func(*Redis)

// WithTTL sets how long entries live. Zero keeps the default.
func WithTTL(ttl time.Duration) Option {
	return func(r *Redis) {
		if ttl > 0 {
			r.ttl = ttl
		}
	}
}

// Redis is a Cache backed by a Redis server.
type Redis struct {
	client *redis.Client
	ttl    time.Duration
}

var _ Cache = (*Redis)(nil)

// NewRedis connects to rawURL (redis://host:port/db) and pings it.
func NewRedis(ctx context.Context, rawURL string, opts ...Option) (*Redis, error) {
	ro, err := redis.ParseURL(rawURL)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	r := &Redis{client: redis.NewClient(ro), ttl: defaultTTL}
	for _, opt := range opts {
		opt(r)
	}
	if err := r.client.Ping(ctx).Err(); err != nil {
		_ = r.client.Close()
		return nil, fmt.Errorf("%w: ping: %w", ErrUnavailable, err)
	}
	return r, nil
}

// TTL returns the entry lifetime.
func (r *Redis) TTL() time.Duration { return r.ttl }

// Get implements Cache.
func (r *Redis) Get(ctx context.Context, key string) ([]string, bool, error) {
	raw, err := r.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("%w: get: %w", ErrUnavailable, err)
	}
	var panels []string
	if err := json.Unmarshal(raw, &panels); err != nil {
		return nil, false, fmt.Errorf("decode cached dashboard: %w", err)
	}
	return panels, true, nil
}

// Set implements Cache.
func (r *Redis) Set(ctx context.Context, key string, panels []string) error {
	raw, err := json.Marshal(panels)
	if err != nil {
		return fmt.Errorf("encode dashboard: %w", err)
	}
	if err := r.client.Set(ctx, key, raw, r.ttl).Err(); err != nil {
		return fmt.Errorf("%w: set: %w", ErrUnavailable, err)
	}
	return nil
}

// Close implements Cache.
func (r *Redis) Close() error { return r.client.Close() }
