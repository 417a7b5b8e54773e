// Package service provides the analytics service that implements the
// dependencies required by the HTTP API.
package service

import (
	"context"
	"fmt"
	"io"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/okian/homerun/internal/adapters/cache"
	"github.com/okian/homerun/internal/adapters/mq/queue"
	"github.com/okian/homerun/internal/adapters/repository"
	"github.com/okian/homerun/internal/domain/charts"
	"github.com/okian/homerun/internal/domain/commentary"
	"github.com/okian/homerun/internal/domain/model"
	"github.com/okian/homerun/internal/domain/stats"
	"github.com/okian/homerun/internal/domain/types"
	"github.com/okian/homerun/pkg/logger"
	"github.com/okian/homerun/pkg/metrics"
)

const defaultMaxLeaderboardLimit = 100

// Service answers player analytics queries over the loaded dataset.
type Service struct {
	mu sync.RWMutex

	store  repository.Store
	picker *commentary.Picker
	cache  cache.Cache
	warm   Enqueuer

	// builds coalesces concurrent builds of the same dashboard.
	builds singleflight.Group

	maxLeaderboardLimit int

	started   bool
	startedAt time.Time

	dashboards  atomic.Int64
	cacheHits   atomic.Int64
	commentary  atomic.Int64
	reloads     atomic.Int64
	buildErrors atomic.Int64
	shared      atomic.Int64
	warmQueued  atomic.Int64
	warmDropped atomic.Int64

	logger logger.Logger
}

// Enqueuer accepts dashboard warm-up jobs.
type Enqueuer interface {
	Enqueue(ctx context.Context, j queue.Job) bool
}

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithLogger sets a custom logger for the service.
func WithLogger(l logger.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithStore sets the dataset store.
func WithStore(st repository.Store) Option {
	return func(s *Service) {
		if st != nil {
			s.store = st
		}
	}
}

// WithPicker sets the commentary picker.
func WithPicker(p *commentary.Picker) Option {
	return func(s *Service) {
		if p != nil {
			s.picker = p
		}
	}
}

// WithCache sets the dashboard cache.
func WithCache(c cache.Cache) Option {
	return func(s *Service) {
		if c != nil {
			s.cache = c
		}
	}
}

// WithWarmQueue enables dashboard warm-up on start and reload.
func WithWarmQueue(q Enqueuer) Option {
	return func(s *Service) {
		if q != nil {
			s.warm = q
		}
	}
}

// WithMaxLeaderboardLimit caps TopN.
func WithMaxLeaderboardLimit(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.maxLeaderboardLimit = n
		}
	}
}

// New constructs a Service. A store must be supplied before Start.
func New(opts ...Option) *Service {
	s := &Service{
		picker:              commentary.NewPicker(),
		cache:               cache.Noop{},
		maxLeaderboardLimit: defaultMaxLeaderboardLimit,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Start validates wiring and marks the service ready.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return nil
	}
	if s.logger == nil {
		s.logger = logger.Get()
	}
	if s.store == nil {
		return ErrNoStore
	}

	s.started = true
	s.startedAt = time.Now()
	src := s.store.Source()
	s.logger.Info(ctx, "analytics service started",
		logger.Int("players", s.store.Count(ctx)),
		logger.Int("rows", s.store.Dataset().Len()),
		logger.String("fingerprint", src.Fingerprint),
	)
	s.Warm(ctx)
	return nil
}

// Stop releases the cache connection.
func (s *Service) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started {
		return
	}
	if err := s.cache.Close(); err != nil {
		s.logger.Warn(context.Background(), "closing cache failed", logger.Error(err))
	}
	s.started = false
	s.logger.Info(context.Background(), "analytics service stopped")
}

// Reload swaps in a new dataset when the store supports it.
func (s *Service) Reload(ctx context.Context, ds *model.Dataset, src repository.Source) error {
	r, ok := s.store.(interface {
		Replace(*model.Dataset, repository.Source)
	})
	if !ok {
		return ErrReloadUnsupported
	}
	r.Replace(ds, src)
	s.reloads.Add(1)
	s.logger.Info(ctx, "dataset reloaded",
		logger.String("fingerprint", src.Fingerprint),
		logger.Int("rows", ds.Len()),
	)
	s.Warm(ctx)
	return nil
}

// Warm queues every player, best ranked first, for a dashboard pre-build.
// It returns the number of jobs accepted; jobs that do not fit are dropped
// and built on first request instead.
func (s *Service) Warm(ctx context.Context) int {
	if s.warm == nil {
		return 0
	}
	entries, err := s.store.TopN(ctx, max(1, s.store.Count(ctx)))
	if err != nil {
		s.logger.Warn(ctx, "dashboard warm-up skipped", logger.Error(err))
		return 0
	}
	queued := 0
	for _, e := range entries {
		if !s.warm.Enqueue(ctx, queue.Job{Player: e.Player}) {
			s.warmDropped.Add(int64(len(entries) - queued))
			break
		}
		queued++
	}
	s.warmQueued.Add(int64(queued))
	s.logger.Info(ctx, "dashboard warm-up queued",
		logger.Int("queued", queued),
		logger.Int("players", len(entries)),
	)
	return queued
}

func (s *Service) requirePlayer(ds *model.Dataset, player string) error {
	if strings.TrimSpace(player) == "" {
		return fmt.Errorf("player: %w", model.ErrMissingParameter)
	}
	if !ds.Has(player) {
		return fmt.Errorf("%q: %w", player, model.ErrPlayerNotFound)
	}
	return nil
}

// Players lists distinct player names in dataset order.
func (s *Service) Players(ctx context.Context) ([]string, error) {
	return s.store.Players(ctx), nil
}

// BestCommentary narrates the player's best event.
func (s *Service) BestCommentary(ctx context.Context, player string) (types.Commentary, error) {
	ds := s.store.Dataset()
	if err := s.requirePlayer(ds, player); err != nil {
		return types.Commentary{}, err
	}
	c, err := s.picker.Best(ds, player)
	if err != nil {
		return types.Commentary{}, err
	}
	s.commentary.Add(1)
	metrics.RecordCommentaryTemplate(c.Template)
	s.logger.Debug(ctx, "commentary rendered", logger.String("player", player), logger.Int("template", c.Template))
	return types.Commentary{VideoLink: c.VideoLink, Commentary: c.Text}, nil
}

// Dashboard returns the seven serialized panels for player, from cache
// when possible. Cache failures are logged and bypassed.
func (s *Service) Dashboard(ctx context.Context, player string) (types.Dashboard, error) {
	start := time.Now()
	snap := s.store.Snapshot()
	ds := snap.Dataset
	if err := s.requirePlayer(ds, player); err != nil {
		return types.Dashboard{}, err
	}
	s.dashboards.Add(1)

	key := cache.DashboardKey(snap.Source.Fingerprint, player)
	panels, ok, err := s.cache.Get(ctx, key)
	switch {
	case err != nil:
		metrics.RecordCacheError("get")
		s.logger.Warn(ctx, "dashboard cache read failed", logger.String("player", player), logger.Error(err))
	case ok && len(panels) == len(charts.Panels()):
		s.cacheHits.Add(1)
		metrics.RecordCacheHit()
		metrics.RecordDashboardBuild("cached", time.Since(start))
		return types.Dashboard{Dashboard: panels}, nil
	default:
		metrics.RecordCacheMiss()
	}

	panels, err = s.build(ctx, key, ds, player)
	if err != nil {
		s.buildErrors.Add(1)
		metrics.RecordDashboardBuild("error", time.Since(start))
		return types.Dashboard{}, err
	}
	if err := s.cache.Set(ctx, key, panels); err != nil {
		metrics.RecordCacheError("set")
		s.logger.Warn(ctx, "dashboard cache write failed", logger.String("player", player), logger.Error(err))
	}
	metrics.RecordDashboardBuild("ok", time.Since(start))
	return types.Dashboard{Dashboard: panels}, nil
}

// build runs one dashboard build per key at a time; concurrent callers
// share its result but still honour their own ctx.
func (s *Service) build(ctx context.Context, key string, ds *model.Dataset, player string) ([]string, error) {
	ch := s.builds.DoChan(key, func() (any, error) {
		return charts.BuildDashboard(context.WithoutCancel(ctx), ds, player)
	})
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case r := <-ch:
		if r.Shared {
			s.shared.Add(1)
		}
		if r.Err != nil {
			return nil, r.Err
		}
		return r.Val.([]string), nil
	}
}

// ShotChart renders the player's shot-direction chart as SVG into w.
func (s *Service) ShotChart(ctx context.Context, w io.Writer, player string) error {
	ds := s.store.Dataset()
	if err := s.requirePlayer(ds, player); err != nil {
		return err
	}
	return charts.ShotChartSVG(w, stats.PlayerSeries(ds, player), player)
}

// TopN returns the top n ranked players; n must be in [1, max limit].
func (s *Service) TopN(ctx context.Context, n int) ([]types.Entry, error) {
	if n > s.maxLeaderboardLimit {
		return nil, fmt.Errorf("%w: %d exceeds %d", repository.ErrInvalidLimit, n, s.maxLeaderboardLimit)
	}
	entries, err := s.store.TopN(ctx, n)
	if err != nil {
		return nil, err
	}
	metrics.RecordLeaderboardQuery("top")
	out := make([]types.Entry, len(entries))
	for i, e := range entries {
		out[i] = toAPI(e)
	}
	return out, nil
}

// Rank returns the ranked entry for a player.
func (s *Service) Rank(ctx context.Context, player string) (types.Entry, error) {
	if strings.TrimSpace(player) == "" {
		return types.Entry{}, fmt.Errorf("player: %w", model.ErrMissingParameter)
	}
	e, err := s.store.Rank(ctx, player)
	if err != nil {
		return types.Entry{}, err
	}
	metrics.RecordLeaderboardQuery("rank")
	return toAPI(e), nil
}

// MaxLeaderboardLimit returns the configured TopN cap.
func (s *Service) MaxLeaderboardLimit() int { return s.maxLeaderboardLimit }

// Health reports readiness and dataset size.
func (s *Service) Health(ctx context.Context) types.Health {
	s.mu.RLock()
	started := s.started
	s.mu.RUnlock()

	status := "ok"
	if !started {
		status = "starting"
	}
	return types.Health{
		Status:  status,
		Players: s.store.Count(ctx),
		Rows:    s.store.Dataset().Len(),
	}
}

// GetStats returns service statistics for monitoring.
func (s *Service) GetStats() map[string]any {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := map[string]any{
		"started":             s.started,
		"maxLeaderboardLimit": s.maxLeaderboardLimit,
		"dashboards":          s.dashboards.Load(),
		"dashboardCacheHits":  s.cacheHits.Load(),
		"dashboardErrors":     s.buildErrors.Load(),
		"commentaries":        s.commentary.Load(),
		"reloads":             s.reloads.Load(),
		"dashboardsShared":    s.shared.Load(),
		"warmQueued":          s.warmQueued.Load(),
		"warmDropped":         s.warmDropped.Load(),
	}
	if s.started {
		out["uptimeSeconds"] = int64(time.Since(s.startedAt).Seconds())
	}
	if s.store != nil {
		snap := s.store.Snapshot()
		src := snap.Source
		out["players"] = len(snap.Entries)
		out["rows"] = snap.Dataset.Len()
		out["datasetPath"] = src.Path
		out["datasetFormat"] = src.Format
		out["datasetFingerprint"] = src.Fingerprint
		if !src.LoadedAt.IsZero() {
			out["datasetLoadedAt"] = src.LoadedAt.UTC().Format(time.RFC3339)
		}
	}
	return out
}

func toAPI(e repository.Entry) types.Entry {
	return types.Entry{
		Rank:            e.Rank,
		Player:          e.Player,
		MaxHomeruns:     e.MaxHomeruns,
		MaxExitVelocity: types.Float(e.MaxExitVelocity),
		MaxHitDistance:  types.Float(e.MaxHitDistance),
		Events:          e.Events,
	}
}
