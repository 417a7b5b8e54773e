package api

import (
	"context"
	"net/http"
)

// PlayersDependencies lists the loaded players.
type PlayersDependencies interface {
	Players(ctx context.Context) ([]string, error)
}

// PlayersHandler handles player list requests.
type PlayersHandler struct {
	deps PlayersDependencies
}

// NewPlayersHandler creates a new players handler.
func NewPlayersHandler(deps PlayersDependencies) *PlayersHandler {
	return &PlayersHandler{deps: deps}
}

// HandleGetPlayers handles GET /api/players.
func (h *PlayersHandler) HandleGetPlayers(w http.ResponseWriter, r *http.Request) {
	const op = "api.get_players"
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}
	players, err := h.deps.Players(r.Context())
	if err != nil {
		respondError(w, op, err)
		return
	}
	if players == nil {
		players = []string{}
	}
	writeJSON(w, http.StatusOK, players)
}
