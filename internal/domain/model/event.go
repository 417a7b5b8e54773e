// Package model contains domain models passed between layers.
package model

import (
	"cmp"
	"math"
	"strconv"
	"strings"
)

// Event represents one batted-ball record of the source dataset.
// Player-level aggregates (Mean*, PlayerEvVariance, MaxHomeruns) are
// precomputed upstream and repeated on every row of the player.
type Event struct {
	PlayerName            string
	Season                string  // ordinal, e.g. "2023"
	HomerunsOfSeasonSoFar int     // running count within the season
	ExitVelocity          float64 // m/s
	HitDistance           float64 // m
	ShotDirection         string
	LaunchAngle           float64 // degrees
	MeanExitVel           float64
	MeanHitDist           float64
	MeanPowerOfTheShot    float64
	PlayerEvVariance      float64
	MaxHomeruns           int
	Video                 string
}

// CompareSeason orders two season labels. Numeric labels sort before all
// others and compare by value; the rest compare lexicographically. NaN and
// infinities count as non-numeric.
func CompareSeason(a, b string) int {
	fa, numA := SeasonNumber(a)
	fb, numB := SeasonNumber(b)
	switch {
	case numA && numB:
		return cmp.Compare(fa, fb)
	case numA:
		return -1
	case numB:
		return 1
	default:
		return strings.Compare(a, b)
	}
}

// SeasonNumber parses a season label as a finite number.
func SeasonNumber(s string) (float64, bool) {
	f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}

// CompareFloat orders a before b ascending with NaN placed last.
func CompareFloat(a, b float64) int {
	an, bn := math.IsNaN(a), math.IsNaN(b)
	switch {
	case an && bn:
		return 0
	case an:
		return 1
	case bn:
		return -1
	case a < b:
		return -1
	case a > b:
		return 1
	}
	return 0
}

// CompareFloatDesc orders a before b descending with NaN placed last.
func CompareFloatDesc(a, b float64) int {
	an, bn := math.IsNaN(a), math.IsNaN(b)
	if an || bn {
		return CompareFloat(a, b)
	}
	return CompareFloat(b, a)
}
