package charts

import (
	"github.com/okian/homerun/internal/domain/model"
	"github.com/okian/homerun/internal/domain/stats"
)

// Panel names, in dashboard order.
const (
	PanelPerformance     = "performance-metrics"
	PanelExitVelocity    = "exit-velocity"
	PanelHomerunPie      = "homerun-pie"
	PanelHitDistance     = "hit-distance-histogram"
	PanelShotDirection   = "shot-direction-bar"
	PanelComparison      = "comparison-with-best"
	PanelMaxDistanceComp = "max-distance-comparison"
)

// Builder computes one panel from the dataset for a player.
type Builder func(ds *model.Dataset, player string) (Figure, error)

// Panel pairs a panel name with its builder.
type Panel struct {
	Name  string
	Build Builder
}

// Panels returns the dashboard panels in their fixed order.
func Panels() []Panel {
	return []Panel{
		{Name: PanelPerformance, Build: PerformanceMetrics},
		{Name: PanelExitVelocity, Build: ExitVelocity},
		{Name: PanelHomerunPie, Build: HomerunPie},
		{Name: PanelHitDistance, Build: HitDistanceHistogram},
		{Name: PanelShotDirection, Build: ShotDirectionBar},
		{Name: PanelComparison, Build: ComparisonWithBest},
		{Name: PanelMaxDistanceComp, Build: MaxDistanceComparison},
	}
}

// PerformanceMetrics renders four gauges: mean exit velocity, mean hit
// distance, mean power and shot-speed consistency. The consistency gauge
// shows 100 - ConsistencyPercentage for both its value and threshold.
func PerformanceMetrics(ds *model.Dataset, player string) (Figure, error) {
	g, err := stats.GaugeBounds(ds, player)
	if err != nil {
		return Figure{}, err
	}
	series := stats.PlayerSeries(ds, player)
	c, err := stats.ConsistencyPercentage(series)
	if err != nil {
		return Figure{}, err
	}
	consistency := 100 - c

	gauges := []struct {
		title string
		value float64
		max   float64
	}{
		{"Mean Exit Velocity", g.ExitVelocity.Value, g.ExitVelocity.Max},
		{"Mean Hit Distance", g.HitDistance.Value, g.HitDistance.Max},
		{"Mean Power", g.Power.Value, g.Power.Max},
		{"Shot Speed Consistency (%)", consistency, 100},
	}

	const gap = 0.04
	width := 1.0 / float64(len(gauges))
	fig := Figure{Layout: Layout{
		Title:  titled(player + "'s Performance Metrics"),
		Font:   &Font{Size: fontSize},
		Height: gaugeHeight,
		Width:  gaugeWidth,
	}}
	for i, gd := range gauges {
		x0 := float64(i) * width
		fig.Data = append(fig.Data, Trace{
			Type:   "indicator",
			Mode:   "gauge+number",
			Value:  num(gd.value),
			Title:  titled(gd.title),
			Domain: &Domain{X: [2]float64{x0, x0 + width - gap}, Y: [2]float64{0, 1}},
			Gauge: &GaugeDef{
				Axis:  Axis{Range: []any{0, num(gd.max)}},
				Bar:   Line{Color: gaugeBar},
				Steps: []Step{{Range: [2]any{0, num(gd.max)}, Color: gaugeStep}},
				Threshold: Threshold{
					Line:      Line{Color: thresholdRed, Width: 4},
					Thickness: 0.75,
					Value:     num(gd.value),
				},
			},
		})
	}
	return fig, nil
}

// ExitVelocity plots exit velocity against season progress, coloured by season.
func ExitVelocity(ds *model.Dataset, player string) (Figure, error) {
	series, err := stats.PlayerSeriesOrErr(ds, player)
	if err != nil {
		return Figure{}, err
	}
	x := make([]any, len(series))
	y := make([]any, len(series))
	colors := make([]any, len(series))
	for i, e := range series {
		x[i] = e.HomerunsOfSeasonSoFar
		y[i] = num(e.ExitVelocity)
		colors[i] = season(e.Season)
	}
	layout := panelLayout("Shot Speed Consistency", "Season Progress", "Speed of Shots")
	layout.Legend = &Legend{Title: titled("Season")}
	return Figure{
		Data: []Trace{{
			Type:   "scatter",
			Mode:   "lines+markers",
			Name:   "Exit Velocity",
			X:      x,
			Y:      y,
			Line:   &Line{Color: "blue"},
			Marker: &Marker{Color: colors, ShowScale: true},
		}},
		Layout: layout,
	}, nil
}

// HomerunPie shows the highest running homerun count of each season.
func HomerunPie(ds *model.Dataset, player string) (Figure, error) {
	series, err := stats.PlayerSeriesOrErr(ds, player)
	if err != nil {
		return Figure{}, err
	}
	counts := stats.SeasonHomeruns(series)
	labels := make([]string, len(counts))
	values := make([]any, len(counts))
	for i, c := range counts {
		labels[i] = c.Season
		values[i] = c.Homeruns
	}
	return Figure{
		Data: []Trace{{Type: "pie", Labels: labels, Values: values}},
		Layout: Layout{
			Title:  titled("Homerun Consistency Over the Seasons"),
			Font:   &Font{Size: fontSize},
			Height: panelHeight,
			Width:  panelWidth,
		},
	}, nil
}

// HitDistanceHistogram bins the player's hit distances.
func HitDistanceHistogram(ds *model.Dataset, player string) (Figure, error) {
	series, err := stats.PlayerSeriesOrErr(ds, player)
	if err != nil {
		return Figure{}, err
	}
	x := make([]any, len(series))
	for i, e := range series {
		x[i] = num(e.HitDistance)
	}
	return Figure{
		Data:   []Trace{{Type: "histogram", X: x, NBinsX: histogramBin}},
		Layout: panelLayout("Distance Travelled by the Ball", "Distance (in m)", "Frequency"),
	}, nil
}

// ShotDirectionBar stacks hit distances per shot direction, one trace per
// direction in first-appearance order.
func ShotDirectionBar(ds *model.Dataset, player string) (Figure, error) {
	series, err := stats.PlayerSeriesOrErr(ds, player)
	if err != nil {
		return Figure{}, err
	}
	groups := directionGroups(series)
	fig := Figure{Layout: panelLayout("Shot Direction vs Ball Distance", "Direction", "Distance Covered by Ball")}
	fig.Layout.BarMode = "relative"
	for _, g := range groups {
		x := make([]any, len(g.distances))
		y := make([]any, len(g.distances))
		for i, d := range g.distances {
			x[i] = g.direction
			y[i] = num(d)
		}
		fig.Data = append(fig.Data, Trace{Type: "bar", Name: g.direction, X: x, Y: y})
	}
	return fig, nil
}

// ComparisonWithBest overlays the player's exit velocity on the best player's.
func ComparisonWithBest(ds *model.Dataset, player string) (Figure, error) {
	series, err := stats.PlayerSeriesOrErr(ds, player)
	if err != nil {
		return Figure{}, err
	}
	best, err := stats.BestPlayer(ds)
	if err != nil {
		return Figure{}, err
	}
	layout := panelLayout("Exit Velocity Comparison with Best Player", "Season Progress", "Speed of Shots")
	layout.Title.Font = &Font{Size: fontSize}
	layout.Font = nil
	layout.Legend = &Legend{Title: titled("Player"), Font: &Font{Size: fontSize}}
	return Figure{
		Data: []Trace{
			velocityTrace(stats.PlayerSeries(ds, best), best, "blue"),
			velocityTrace(series, player, "red"),
		},
		Layout: layout,
	}, nil
}

// MaxDistanceComparison charts the max hit distance of the player and the
// best player.
func MaxDistanceComparison(ds *model.Dataset, player string) (Figure, error) {
	table, err := stats.ComparisonTable(ds, player)
	if err != nil {
		return Figure{}, err
	}
	x := make([]any, len(table))
	y := make([]any, len(table))
	for i, row := range table {
		x[i] = row.PlayerName
		y[i] = num(row.MaxHitDistance)
	}
	return Figure{
		Data:   []Trace{{Type: "bar", X: x, Y: y}},
		Layout: panelLayout("Maximum Hit Distance Comparison with Best Player", "Player Name", "Maximum Hit Distance"),
	}, nil
}

func velocityTrace(series []model.Event, name, color string) Trace {
	x := make([]any, len(series))
	y := make([]any, len(series))
	for i, e := range series {
		x[i] = e.HomerunsOfSeasonSoFar
		y[i] = num(e.ExitVelocity)
	}
	return Trace{Type: "scatter", Mode: "lines+markers", Name: name, X: x, Y: y, Line: &Line{Color: color}}
}

type directionGroup struct {
	direction string
	distances []float64
}

func directionGroups(series []model.Event) []directionGroup {
	index := make(map[string]int)
	var groups []directionGroup
	for _, e := range series {
		i, ok := index[e.ShotDirection]
		if !ok {
			i = len(groups)
			index[e.ShotDirection] = i
			groups = append(groups, directionGroup{direction: e.ShotDirection})
		}
		groups[i].distances = append(groups[i].distances, e.HitDistance)
	}
	return groups
}
