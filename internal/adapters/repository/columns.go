package repository

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/okian/homerun/internal/domain/model"
)

// Dataset column names.
const (
	colPlayerName    = "PlayerName"
	colSeason        = "Season"
	colHomeruns      = "HomerunsOfSeasonSoFar"
	colExitVelocity  = "ExitVelocity"
	colHitDistance   = "HitDistance"
	colShotDirection = "ShotDirection"
	colLaunchAngle   = "LaunchAngle"
	colMeanExitVel   = "MeanExitVel"
	colMeanHitDist   = "MeanHitDist"
	colMeanPower     = "MeanPowerOfTheShot"
	colEvVariance    = "PlayerEvVariance"
	colMaxHomeruns   = "MaxHomeruns"
	colVideo         = "video"
)

// requiredColumns must be present in every source; colVideo is optional.
var requiredColumns = []string{
	colPlayerName, colSeason, colHomeruns, colExitVelocity, colHitDistance,
	colShotDirection, colLaunchAngle, colMeanExitVel, colMeanHitDist,
	colMeanPower, colEvVariance, colMaxHomeruns,
}

var (
	errNotInteger = errors.New("not an integer")
	errEmptyCell  = errors.New("empty cell")
)

// header maps column names to positions.
type header map[string]int

func newHeader(names []string) header {
	h := make(header, len(names))
	for i, n := range names {
		n = strings.TrimSpace(strings.TrimPrefix(n, "\ufeff"))
		if _, dup := h[n]; !dup {
			h[n] = i
		}
	}
	return h
}

func (h header) missing() []string {
	var out []string
	for _, c := range requiredColumns {
		if _, ok := h[c]; !ok {
			out = append(out, c)
		}
	}
	return out
}

// rowReader decodes one record into an Event, remembering the first error.
type rowReader struct {
	h    header
	rec  []string
	line int
	err  error
}

func (r *rowReader) cell(col string) string {
	i, ok := r.h[col]
	if !ok || i >= len(r.rec) {
		return ""
	}
	return strings.TrimSpace(r.rec[i])
}

func (r *rowReader) fail(col, v string, cause error) {
	if r.err == nil {
		r.err = fmt.Errorf("line %d column %s value %q: %w: %w", r.line, col, v, model.ErrMissingField, cause)
	}
}

// float parses a numeric cell; empty and NaN cells become NaN.
func (r *rowReader) float(col string) float64 {
	v := r.cell(col)
	if v == "" || strings.EqualFold(v, "nan") {
		return math.NaN()
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		r.fail(col, v, err)
		return math.NaN()
	}
	return f
}

// int parses an integral cell, accepting forms like "12.0".
func (r *rowReader) int(col string) int {
	v := r.cell(col)
	if n, err := strconv.Atoi(v); err == nil {
		return n
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) || f != math.Trunc(f) {
		if err == nil {
			err = errNotInteger
		}
		r.fail(col, v, err)
		return 0
	}
	return int(f)
}

// text reads a required non-empty string cell.
func (r *rowReader) text(col string) string {
	v := r.cell(col)
	if v == "" {
		r.fail(col, v, errEmptyCell)
	}
	return v
}

func (r *rowReader) event() (model.Event, error) {
	e := model.Event{
		PlayerName:            r.text(colPlayerName),
		Season:                r.text(colSeason),
		HomerunsOfSeasonSoFar: r.int(colHomeruns),
		ExitVelocity:          r.float(colExitVelocity),
		HitDistance:           r.float(colHitDistance),
		ShotDirection:         r.cell(colShotDirection),
		LaunchAngle:           r.float(colLaunchAngle),
		MeanExitVel:           r.float(colMeanExitVel),
		MeanHitDist:           r.float(colMeanHitDist),
		MeanPowerOfTheShot:    r.float(colMeanPower),
		PlayerEvVariance:      r.float(colEvVariance),
		MaxHomeruns:           r.int(colMaxHomeruns),
		Video:                 r.cell(colVideo),
	}
	e.Season = normalizeSeason(e.Season)
	return e, r.err
}

// normalizeSeason drops a trailing ".0" that spreadsheet exports add to years.
func normalizeSeason(s string) string {
	if f, err := strconv.ParseFloat(s, 64); err == nil && f == math.Trunc(f) && !math.IsInf(f, 0) {
		return strconv.FormatInt(int64(f), 10)
	}
	return s
}
