// Package charts builds Plotly-compatible figure payloads for the player
// dashboard panels and renders a server-side SVG shot chart.
package charts

import (
	"encoding/json"
	"fmt"
	"math"

	"github.com/okian/homerun/internal/domain/model"
)

// Shared styling constants.
const (
	panelHeight  = 500
	panelWidth   = 1113.11
	gaugeHeight  = 300
	gaugeWidth   = 1325
	fontSize     = 18
	gaugeBar     = "#000090"
	gaugeStep    = "lightgray"
	thresholdRed = "red"
	histogramBin = 20
)

// Figure is a Plotly figure: traces plus layout.
type Figure struct {
	Data   []Trace `json:"data"`
	Layout Layout  `json:"layout"`
}

// Trace is the subset of Plotly trace attributes the dashboard uses.
type Trace struct {
	Type   string    `json:"type"`
	Mode   string    `json:"mode,omitempty"`
	Name   string    `json:"name,omitempty"`
	X      []any     `json:"x,omitempty"`
	Y      []any     `json:"y,omitempty"`
	Labels []string  `json:"labels,omitempty"`
	Values []any     `json:"values,omitempty"`
	Value  any       `json:"value,omitempty"`
	NBinsX int       `json:"nbinsx,omitempty"`
	Line   *Line     `json:"line,omitempty"`
	Marker *Marker   `json:"marker,omitempty"`
	Title  *Title    `json:"title,omitempty"`
	Gauge  *GaugeDef `json:"gauge,omitempty"`
	Domain *Domain   `json:"domain,omitempty"`
}

// Line styles a scatter line.
type Line struct {
	Color string `json:"color,omitempty"`
	Width int    `json:"width,omitempty"`
}

// Marker styles scatter markers.
type Marker struct {
	Color     any  `json:"color,omitempty"`
	ShowScale bool `json:"showscale,omitempty"`
}

// Title is a text title with optional font.
type Title struct {
	Text string `json:"text"`
	Font *Font  `json:"font,omitempty"`
}

// Font sets text size.
type Font struct {
	Size int `json:"size"`
}

// Domain places a trace within the figure, in fractions of width/height.
type Domain struct {
	X [2]float64 `json:"x"`
	Y [2]float64 `json:"y"`
}

// GaugeDef describes an indicator gauge.
type GaugeDef struct {
	Axis      Axis      `json:"axis"`
	Bar       Line      `json:"bar"`
	Steps     []Step    `json:"steps"`
	Threshold Threshold `json:"threshold"`
}

// Step is a shaded gauge band.
type Step struct {
	Range [2]any `json:"range"`
	Color string `json:"color"`
}

// Threshold marks a value on a gauge.
type Threshold struct {
	Line      Line    `json:"line"`
	Thickness float64 `json:"thickness"`
	Value     any     `json:"value"`
}

// Axis configures an axis.
type Axis struct {
	Title *Title `json:"title,omitempty"`
	Range []any  `json:"range,omitempty"`
}

// Layout is the subset of Plotly layout attributes the dashboard uses.
type Layout struct {
	Title   *Title  `json:"title,omitempty"`
	XAxis   *Axis   `json:"xaxis,omitempty"`
	YAxis   *Axis   `json:"yaxis,omitempty"`
	Legend  *Legend `json:"legend,omitempty"`
	Font    *Font   `json:"font,omitempty"`
	BarMode string  `json:"barmode,omitempty"`
	Height  float64 `json:"height,omitempty"`
	Width   float64 `json:"width,omitempty"`
}

// Legend configures the legend.
type Legend struct {
	Title *Title `json:"title,omitempty"`
	Font  *Font  `json:"font,omitempty"`
}

// Encode serializes the figure to its JSON text form.
func (f Figure) Encode() (string, error) {
	b, err := json.Marshal(f)
	if err != nil {
		return "", fmt.Errorf("encode figure: %w", err)
	}
	return string(b), nil
}

// num converts v into a JSON-safe value; NaN and Inf become null.
func num(v float64) any {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return nil
	}
	return v
}

// season renders a season label as a number when it is a finite one, so
// that Plotly can colour markers on a continuous scale.
func season(s string) any {
	if f, ok := model.SeasonNumber(s); ok {
		return f
	}
	return s
}

func titled(text string) *Title { return &Title{Text: text} }

func axis(text string) *Axis { return &Axis{Title: titled(text)} }

func panelLayout(title, x, y string) Layout {
	return Layout{
		Title:  titled(title),
		XAxis:  axis(x),
		YAxis:  axis(y),
		Font:   &Font{Size: fontSize},
		Height: panelHeight,
		Width:  panelWidth,
	}
}
