package api

import (
	"bytes"
	"context"
	"io"
	"net/http"
)

// ShotChartDependencies renders a player's shot chart.
type ShotChartDependencies interface {
	ShotChart(ctx context.Context, w io.Writer, player string) error
}

// ShotChartHandler serves the SVG shot chart.
type ShotChartHandler struct {
	deps ShotChartDependencies
}

// NewShotChartHandler creates a new shot chart handler.
func NewShotChartHandler(deps ShotChartDependencies) *ShotChartHandler {
	return &ShotChartHandler{deps: deps}
}

// HandleGetShotChart handles GET /api/shot-chart.svg?player=NAME.
func (h *ShotChartHandler) HandleGetShotChart(w http.ResponseWriter, r *http.Request) {
	const op = "api.get_shot_chart"
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}
	player, err := playerParam(op, r)
	if err != nil {
		respondError(w, op, err)
		return
	}
	// Render into a buffer so errors can still produce a JSON body.
	var buf bytes.Buffer
	if err := h.deps.ShotChart(r.Context(), &buf, player); err != nil {
		respondError(w, op, err)
		return
	}
	w.Header().Set("Content-Type", "image/svg+xml")
	w.WriteHeader(http.StatusOK)
	_, _ = buf.WriteTo(w)
}
