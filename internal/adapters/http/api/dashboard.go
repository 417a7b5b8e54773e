package api

import (
	"context"
	"net/http"

	"github.com/okian/homerun/internal/domain/types"
)

// DashboardDependencies builds a player's chart payloads.
type DashboardDependencies interface {
	Dashboard(ctx context.Context, player string) (types.Dashboard, error)
}

// DashboardHandler handles dashboard payload requests.
type DashboardHandler struct {
	deps DashboardDependencies
}

// NewDashboardHandler creates a new dashboard handler.
func NewDashboardHandler(deps DashboardDependencies) *DashboardHandler {
	return &DashboardHandler{deps: deps}
}

// HandleGetDashboard handles GET /api/dashboard.json?player=NAME. The body
// carries the seven panels in order, each a serialized figure.
func (h *DashboardHandler) HandleGetDashboard(w http.ResponseWriter, r *http.Request) {
	const op = "api.get_dashboard"
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}
	player, err := playerParam(op, r)
	if err != nil {
		respondError(w, op, err)
		return
	}
	d, err := h.deps.Dashboard(r.Context(), player)
	if err != nil {
		respondError(w, op, err)
		return
	}
	writeJSON(w, http.StatusOK, d)
}
