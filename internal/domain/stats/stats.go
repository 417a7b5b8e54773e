// Package stats computes per-player aggregates over an immutable dataset and
// compares players against the best-player baseline. Every function is a
// pure, single-pass transformation; nothing is cached between calls.
package stats

import (
	"fmt"
	"math"
	"slices"

	"github.com/shopspring/decimal"

	"github.com/okian/homerun/internal/domain/model"
)

// Percentage bounds for consistency values.
const (
	percentMin = 0.0
	percentMax = 100.0

	consistencyDecimals = 2
)

// PlayerMax is one group of the max-distance comparison.
type PlayerMax struct {
	PlayerName     string
	MaxHitDistance float64
}

// Gauge is a value displayed against an upper bound.
type Gauge struct {
	Value float64
	Max   float64
}

// Gauges holds the three performance gauges of a player.
type Gauges struct {
	ExitVelocity Gauge
	HitDistance  Gauge
	Power        Gauge
}

// SeasonCount is the highest running homerun count reached in a season.
type SeasonCount struct {
	Season   string
	Homeruns int
}

// rankBefore reports whether a ranks ahead of b in the best-player ordering:
// MaxHomeruns desc, PlayerName desc, ExitVelocity desc, HitDistance desc.
func rankBefore(a, b model.Event) bool {
	return compareRank(a, b) < 0
}

func compareRank(a, b model.Event) int {
	if a.MaxHomeruns != b.MaxHomeruns {
		if a.MaxHomeruns > b.MaxHomeruns {
			return -1
		}
		return 1
	}
	if a.PlayerName != b.PlayerName {
		if a.PlayerName > b.PlayerName {
			return -1
		}
		return 1
	}
	if c := model.CompareFloatDesc(a.ExitVelocity, b.ExitVelocity); c != 0 {
		return c
	}
	return model.CompareFloatDesc(a.HitDistance, b.HitDistance)
}

// CompareRank exposes the best-player ordering for callers that rank whole
// players (the leaderboard snapshot).
func CompareRank(a, b model.Event) int { return compareRank(a, b) }

// BestPlayer returns the player of the top row under the best-player ordering.
// The result does not depend on row order.
func BestPlayer(ds *model.Dataset) (string, error) {
	rows := ds.Rows()
	if len(rows) == 0 {
		return "", fmt.Errorf("best player: %w", model.ErrDatasetEmpty)
	}
	best := rows[0]
	for _, r := range rows[1:] {
		if rankBefore(r, best) {
			best = r
		}
	}
	return best.PlayerName, nil
}

// PlayerSeries returns the player's rows sorted ascending by
// (Season, HomerunsOfSeasonSoFar). It is empty for unknown players.
func PlayerSeries(ds *model.Dataset, player string) []model.Event {
	rows := ds.Filter(player)
	slices.SortStableFunc(rows, func(a, b model.Event) int {
		if c := model.CompareSeason(a.Season, b.Season); c != 0 {
			return c
		}
		return a.HomerunsOfSeasonSoFar - b.HomerunsOfSeasonSoFar
	})
	return rows
}

// PlayerSeriesOrErr is PlayerSeries with emptiness reported as ErrPlayerNotFound.
func PlayerSeriesOrErr(ds *model.Dataset, player string) ([]model.Event, error) {
	series := PlayerSeries(ds, player)
	if len(series) == 0 {
		return nil, fmt.Errorf("player %q: %w", player, model.ErrPlayerNotFound)
	}
	return series, nil
}

// ConsistencyPercentage returns the shot-speed consistency value of a series:
// 100 - max(100 - round2(variance / meanExitVel * 100)), clamped into [0, 100].
// Rows without a usable mean exit velocity or variance are skipped; if none
// remain the result is ErrMissingField.
func ConsistencyPercentage(series []model.Event) (float64, error) {
	if len(series) == 0 {
		return 0, fmt.Errorf("consistency: %w", model.ErrPlayerNotFound)
	}
	maxRaw := math.Inf(-1)
	found := false
	for _, e := range series {
		if !usable(e.MeanExitVel) || e.MeanExitVel == 0 || !usable(e.PlayerEvVariance) {
			continue
		}
		ratio := e.PlayerEvVariance / e.MeanExitVel * percentMax
		if !usable(ratio) {
			continue
		}
		raw := percentMax - round2(ratio)
		if raw > maxRaw {
			maxRaw = raw
		}
		found = true
	}
	if !found {
		return 0, fmt.Errorf("consistency for %q: MeanExitVel/PlayerEvVariance: %w",
			series[0].PlayerName, model.ErrMissingField)
	}
	return clamp(percentMax-maxRaw, percentMin, percentMax), nil
}

// ComparisonTable groups the union of the player's and the best player's
// series by name and takes the maximum hit distance per group, ordered by
// name. It holds a single group when the player is the best player.
func ComparisonTable(ds *model.Dataset, player string) ([]PlayerMax, error) {
	series, err := PlayerSeriesOrErr(ds, player)
	if err != nil {
		return nil, err
	}
	best, err := BestPlayer(ds)
	if err != nil {
		return nil, err
	}
	union := series
	if best != player {
		union = append(union, PlayerSeries(ds, best)...)
	}

	groups := make(map[string]float64)
	var names []string
	for _, e := range union {
		cur, ok := groups[e.PlayerName]
		if !ok {
			names = append(names, e.PlayerName)
			groups[e.PlayerName] = e.HitDistance
			continue
		}
		groups[e.PlayerName] = nanMax(cur, e.HitDistance)
	}
	slices.Sort(names)

	out := make([]PlayerMax, 0, len(names))
	for _, n := range names {
		out = append(out, PlayerMax{PlayerName: n, MaxHitDistance: groups[n]})
	}
	return out, nil
}

// GaugeBounds returns the player's gauges under DefaultOnMissing.
func GaugeBounds(ds *model.Dataset, player string) (Gauges, error) {
	return DefaultOnMissing.GaugeBounds(ds, player)
}

// SeasonHomeruns returns max(HomerunsOfSeasonSoFar) per season, ordered by season.
func SeasonHomeruns(series []model.Event) []SeasonCount {
	bySeason := make(map[string]int)
	var seasons []string
	for _, e := range series {
		cur, ok := bySeason[e.Season]
		if !ok {
			seasons = append(seasons, e.Season)
			bySeason[e.Season] = e.HomerunsOfSeasonSoFar
			continue
		}
		if e.HomerunsOfSeasonSoFar > cur {
			bySeason[e.Season] = e.HomerunsOfSeasonSoFar
		}
	}
	slices.SortFunc(seasons, model.CompareSeason)
	out := make([]SeasonCount, 0, len(seasons))
	for _, s := range seasons {
		out = append(out, SeasonCount{Season: s, Homeruns: bySeason[s]})
	}
	return out
}

// columnMax returns the maximum non-NaN value of a column, or NaN.
func columnMax(rows []model.Event, col func(model.Event) float64) float64 {
	m := math.NaN()
	for _, r := range rows {
		m = nanMax(m, col(r))
	}
	return m
}

// nanMax returns the larger of a and b, ignoring NaN operands.
func nanMax(a, b float64) float64 {
	switch {
	case math.IsNaN(a):
		return b
	case math.IsNaN(b):
		return a
	case b > a:
		return b
	}
	return a
}

func usable(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}

// round2 rounds half-to-even at two decimals.
func round2(v float64) float64 {
	return decimal.NewFromFloat(v).RoundBank(consistencyDecimals).InexactFloat64()
}
