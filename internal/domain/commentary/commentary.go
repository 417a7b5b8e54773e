// Package commentary picks a player's standout event and narrates it with
// one of a fixed set of sentence templates.
package commentary

import (
	"fmt"
	"math"
	"math/rand/v2"
	"slices"
	"strconv"
	"strings"

	"github.com/okian/homerun/internal/domain/model"
)

// TemplateCount is the number of sentence templates.
const TemplateCount = 3

// IndexSource picks a template index in [0, n).
type IndexSource interface {
	Intn(n int) int
}

// IndexFunc adapts a function to IndexSource.
type IndexFunc func(n int) int

// Intn implements IndexSource.
func (f IndexFunc) Intn(n int) int { return f(n) }

// RandomIndex draws from the math/rand/v2 top-level generator, which is
// seeded per process and safe for concurrent use.
var RandomIndex IndexSource = IndexFunc(rand.IntN)

// FixedIndex always returns i (modulo n).
func FixedIndex(i int) IndexSource {
	return IndexFunc(func(n int) int {
		if n <= 0 {
			return 0
		}
		return ((i % n) + n) % n
	})
}

// Commentary is the rendered narration of an event.
type Commentary struct {
	VideoLink string
	Text      string
	Template  int
}

// Option applies a configuration option to the Picker.
type Option func(*Picker)

// WithIndexSource sets the template index source.
func WithIndexSource(src IndexSource) Option {
	return func(p *Picker) {
		if src != nil {
			p.src = src
		}
	}
}

// Picker renders commentary. It holds no mutable state.
type Picker struct {
	src IndexSource
}

// NewPicker creates a Picker using RandomIndex unless overridden.
func NewPicker(opts ...Option) *Picker {
	p := &Picker{src: RandomIndex}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// PickBestEvent returns the player's top event ordered descending by
// (Season, HitDistance, ExitVelocity).
func PickBestEvent(ds *model.Dataset, player string) (model.Event, error) {
	rows := ds.Filter(player)
	if len(rows) == 0 {
		return model.Event{}, fmt.Errorf("best event for %q: %w", player, model.ErrPlayerNotFound)
	}
	slices.SortStableFunc(rows, func(a, b model.Event) int {
		if c := model.CompareSeason(b.Season, a.Season); c != 0 {
			return c
		}
		if c := model.CompareFloatDesc(a.HitDistance, b.HitDistance); c != 0 {
			return c
		}
		return model.CompareFloatDesc(a.ExitVelocity, b.ExitVelocity)
	})
	return rows[0], nil
}

// Render narrates e with a template chosen by the index source.
func (p *Picker) Render(e model.Event, player string) Commentary {
	i := p.src.Intn(TemplateCount)
	if i < 0 || i >= TemplateCount {
		i = 0
	}
	return Commentary{
		VideoLink: e.Video,
		Text:      Template(i, e, player),
		Template:  i,
	}
}

// Best picks the player's best event and renders it.
func (p *Picker) Best(ds *model.Dataset, player string) (Commentary, error) {
	e, err := PickBestEvent(ds, player)
	if err != nil {
		return Commentary{}, err
	}
	return p.Render(e, player), nil
}

// Template instantiates template i for e. Out-of-range indices fall back to 0.
func Template(i int, e model.Event, player string) string {
	ev := FormatNumber(e.ExitVelocity)
	hd := FormatNumber(e.HitDistance)
	dir := e.ShotDirection
	switch i {
	case 1:
		return player + " shots the ball " + hd + " m far in the " + dir +
			" at a speed of " + ev + " m/s. The ball flies into the " + dir + "."
	case 2:
		return "The ball goes in the " + dir + " at the speed of " + ev +
			" m/s, with an incredible launch angle of " + FormatNumber(e.LaunchAngle) + " by " + player + "."
	default:
		return "An exceptional shot by " + player + ". The ball’s velocity was approximately " + ev +
			" meters per second, propelling it a distance of " + hd +
			" meters. The ball subsequently entered the " + dir + "."
	}
}

// FormatNumber prints the shortest decimal form of v, keeping a trailing
// ".0" on integral values (45 -> "45.0", 45.25 -> "45.25").
func FormatNumber(v float64) string {
	switch {
	case math.IsNaN(v):
		return "nan"
	case math.IsInf(v, 1):
		return "inf"
	case math.IsInf(v, -1):
		return "-inf"
	}
	s := strconv.FormatFloat(v, 'f', -1, 64)
	if !strings.Contains(s, ".") {
		s += ".0"
	}
	return s
}
