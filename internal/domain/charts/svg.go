package charts

import (
	"fmt"
	"io"
	"math"

	svg "github.com/ajstarks/svgo"

	"github.com/okian/homerun/internal/domain/model"
)

// SVG canvas geometry.
const (
	svgWidth      = 800
	svgHeight     = 500
	svgMarginLeft = 70
	svgMarginTop  = 50
	svgMarginBot  = 60
	svgBarGap     = 20
	svgTicks      = 5
)

var svgPalette = []string{"#636efa", "#ef553b", "#00cc96", "#ab63fa", "#ffa15a", "#19d3f3", "#ff6692", "#b6e880"}

// ShotChartSVG renders the shot-direction panel as a stacked bar chart. Each
// direction is one bar built from the distances of its shots.
func ShotChartSVG(w io.Writer, series []model.Event, player string) error {
	if len(series) == 0 {
		return fmt.Errorf("shot chart for %q: %w", player, model.ErrPlayerNotFound)
	}
	groups := directionGroups(series)

	top := 0.0
	for _, g := range groups {
		top = math.Max(top, groupTotal(g))
	}
	if top <= 0 {
		top = 1
	}

	plotW := svgWidth - svgMarginLeft - svgBarGap
	plotH := svgHeight - svgMarginTop - svgMarginBot
	baseY := svgMarginTop + plotH
	barW := (plotW - svgBarGap*len(groups)) / len(groups)
	if barW < 1 {
		barW = 1
	}

	canvas := svg.New(w)
	canvas.Start(svgWidth, svgHeight)
	canvas.Title(player + " shot directions")
	canvas.Rect(0, 0, svgWidth, svgHeight, "fill:white")
	canvas.Text(svgWidth/2, svgMarginTop/2, "Shot Direction vs Ball Distance",
		"text-anchor:middle;font-size:18px;font-family:sans-serif")

	canvas.Gstyle("stroke:#999;stroke-width:1;font-size:11px;font-family:sans-serif")
	for i := 0; i <= svgTicks; i++ {
		v := top * float64(i) / svgTicks
		y := baseY - int(float64(plotH)*float64(i)/svgTicks)
		canvas.Line(svgMarginLeft, y, svgWidth-svgBarGap, y, "stroke:#eee")
		canvas.Text(svgMarginLeft-8, y+4, fmt.Sprintf("%.0f", v), "text-anchor:end;stroke:none;fill:#444")
	}
	canvas.Line(svgMarginLeft, baseY, svgWidth-svgBarGap, baseY)
	canvas.Gend()

	for i, g := range groups {
		x := svgMarginLeft + svgBarGap + i*(barW+svgBarGap)
		color := svgPalette[i%len(svgPalette)]
		y := baseY
		for _, d := range g.distances {
			if math.IsNaN(d) || d <= 0 {
				continue
			}
			h := int(math.Round(float64(plotH) * d / top))
			if h < 1 {
				h = 1
			}
			y -= h
			canvas.Rect(x, y, barW, h, "fill:"+color+";stroke:white;stroke-width:1")
		}
		canvas.Text(x+barW/2, baseY+18, g.direction,
			"text-anchor:middle;font-size:12px;font-family:sans-serif")
	}
	canvas.End()
	return nil
}

func groupTotal(g directionGroup) float64 {
	total := 0.0
	for _, d := range g.distances {
		if !math.IsNaN(d) && d > 0 {
			total += d
		}
	}
	return total
}
