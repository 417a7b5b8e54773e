package api

import (
	"context"
	"net/http"

	"github.com/okian/homerun/internal/domain/types"
)

// CommentaryDependencies narrates a player's best event.
type CommentaryDependencies interface {
	BestCommentary(ctx context.Context, player string) (types.Commentary, error)
}

// CommentaryHandler handles best-commentary requests.
type CommentaryHandler struct {
	deps CommentaryDependencies
}

// NewCommentaryHandler creates a new commentary handler.
func NewCommentaryHandler(deps CommentaryDependencies) *CommentaryHandler {
	return &CommentaryHandler{deps: deps}
}

// HandleGetCommentary handles GET /api/best-commentary?player=NAME.
func (h *CommentaryHandler) HandleGetCommentary(w http.ResponseWriter, r *http.Request) {
	const op = "api.get_best_commentary"
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}
	player, err := playerParam(op, r)
	if err != nil {
		respondError(w, op, err)
		return
	}
	c, err := h.deps.BestCommentary(r.Context(), player)
	if err != nil {
		respondError(w, op, err)
		return
	}
	writeJSON(w, http.StatusOK, c)
}
