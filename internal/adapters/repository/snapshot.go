package repository

import (
	"context"
	"math"
	"slices"
	"sync/atomic"

	"github.com/okian/homerun/internal/domain/model"
	"github.com/okian/homerun/internal/domain/stats"
	"github.com/okian/homerun/pkg/logger"
	"github.com/okian/homerun/pkg/metrics"
)

const defaultTopCacheSize = 500

// Snapshot is an immutable view of one loaded dataset and its ranking.
type Snapshot struct {
	Dataset *model.Dataset
	Source  Source

	// RankByPlayer answers Rank in O(1).
	RankByPlayer map[string]int

	// Entries holds every player in ranking order.
	Entries []Entry

	// TopCache is the leading slice of Entries served to TopN.
	TopCache []Entry
}

// Option applies a configuration option to the DatasetStore.
type Option func(*DatasetStore)

// WithTopCacheSize bounds how many leading entries TopN serves from cache.
func WithTopCacheSize(n int) Option {
	return func(s *DatasetStore) {
		if n > 0 {
			s.topCacheSize = n
		}
	}
}

// WithLogger sets the store logger.
func WithLogger(l logger.Logger) Option {
	return func(s *DatasetStore) {
		if l != nil {
			s.logger = l
		}
	}
}

// DatasetStore serves reads from an atomically published Snapshot. Replace
// swaps in a new dataset without blocking readers.
type DatasetStore struct {
	topCacheSize int
	logger       logger.Logger
	snapshot     atomic.Pointer[Snapshot]
}

var _ Store = (*DatasetStore)(nil)

// NewDatasetStore builds the ranking for ds and publishes it.
func NewDatasetStore(ds *model.Dataset, src Source, opts ...Option) *DatasetStore {
	s := &DatasetStore{
		topCacheSize: defaultTopCacheSize,
		logger:       logger.Nop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.Replace(ds, src)
	return s
}

// Replace publishes a snapshot built from a new dataset.
func (s *DatasetStore) Replace(ds *model.Dataset, src Source) {
	snap := buildSnapshot(ds, src, s.topCacheSize)
	s.snapshot.Store(snap)
	s.logger.Debug(context.Background(), "ranking snapshot published",
		logger.Int("players", len(snap.Entries)),
		logger.String("fingerprint", src.Fingerprint),
	)
}

// Snapshot returns the current snapshot.
func (s *DatasetStore) Snapshot() *Snapshot { return s.snapshot.Load() }

// Dataset implements Store.
func (s *DatasetStore) Dataset() *model.Dataset { return s.Snapshot().Dataset }

// Source implements Store.
func (s *DatasetStore) Source() Source { return s.Snapshot().Source }

// Rank implements Store.
func (s *DatasetStore) Rank(_ context.Context, player string) (Entry, error) {
	snap := s.Snapshot()
	i, ok := snap.RankByPlayer[player]
	if !ok {
		metrics.RecordErrorByComponent("repository", "not_found")
		return Entry{}, ErrNotFound
	}
	return snap.Entries[i], nil
}

// TopN implements Store. n larger than the player count returns everyone.
func (s *DatasetStore) TopN(_ context.Context, n int) ([]Entry, error) {
	if n < 1 {
		metrics.RecordErrorByComponent("repository", "invalid_limit")
		return nil, ErrInvalidLimit
	}
	snap := s.Snapshot()
	src := snap.TopCache
	if n > len(src) {
		src = snap.Entries
	}
	n = min(n, len(src))
	return slices.Clone(src[:n]), nil
}

// Count implements Store.
func (s *DatasetStore) Count(_ context.Context) int { return len(s.Snapshot().Entries) }

// Players implements Store.
func (s *DatasetStore) Players(_ context.Context) []string { return s.Snapshot().Dataset.Players() }

// buildSnapshot aggregates one entry per player and orders them like
// stats.BestPlayer, so rank 1 is always the best player. Players sharing
// MaxHomeruns share a rank.
func buildSnapshot(ds *model.Dataset, src Source, topCacheSize int) *Snapshot {
	players := ds.Players()
	entries := make([]Entry, 0, len(players))
	keys := make(map[string]model.Event, len(players))
	for _, p := range players {
		e := Entry{Player: p, MaxExitVelocity: math.NaN(), MaxHitDistance: math.NaN()}
		best := model.Event{PlayerName: p}
		for i, row := range ds.Filter(p) {
			if i == 0 || stats.CompareRank(row, best) < 0 {
				best = row
			}
			e.MaxHomeruns = max(e.MaxHomeruns, row.MaxHomeruns)
			e.MaxExitVelocity = nanMax(e.MaxExitVelocity, row.ExitVelocity)
			e.MaxHitDistance = nanMax(e.MaxHitDistance, row.HitDistance)
			e.Events++
		}
		keys[p] = best
		entries = append(entries, e)
	}

	slices.SortStableFunc(entries, func(a, b Entry) int {
		return stats.CompareRank(keys[a.Player], keys[b.Player])
	})
	assignRanksWithTies(entries)

	rankBy := make(map[string]int, len(entries))
	for i, e := range entries {
		rankBy[e.Player] = i
	}
	return &Snapshot{
		Dataset:      ds,
		Source:       src,
		RankByPlayer: rankBy,
		Entries:      entries,
		TopCache:     entries[:min(topCacheSize, len(entries))],
	}
}

// assignRanksWithTies gives equal MaxHomeruns the same rank; the next
// distinct value takes the following rank.
func assignRanksWithTies(entries []Entry) {
	rank := 0
	for i := range entries {
		if i == 0 || entries[i].MaxHomeruns != entries[i-1].MaxHomeruns {
			rank++
		}
		entries[i].Rank = rank
	}
}

func nanMax(a, b float64) float64 {
	switch {
	case math.IsNaN(a):
		return b
	case math.IsNaN(b):
		return a
	default:
		return math.Max(a, b)
	}
}
