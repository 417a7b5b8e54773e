// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/okian/homerun/internal/adapters/repository"
	"github.com/okian/homerun/internal/domain/model"
	"github.com/okian/homerun/internal/domain/types"
)

// Dependencies required by HTTP handlers. Using an interface bundle keeps
// the handler layer loosely coupled to implementations in other packages.
type Dependencies interface {
	PlayersDependencies
	CommentaryDependencies
	DashboardDependencies
	ShotChartDependencies
	LeaderboardDependencies
	RankDependencies
	HealthDependencies
}

// Entry mirrors the read shape returned by leaderboard queries.
type Entry = types.Entry

// Server wires HTTP routes for the business API.
type Server struct {
	healthHandler      *HealthHandler
	metricsHandler     http.Handler
	statsHandler       *StatsHandler
	playersHandler     *PlayersHandler
	commentaryHandler  *CommentaryHandler
	dashboardHandler   *DashboardHandler
	shotChartHandler   *ShotChartHandler
	leaderboardHandler *LeaderboardHandler
	rankHandler        *RankHandler
}

// NewServer creates a new API server with all handlers.
func NewServer(deps Dependencies, statsProvider StatsProvider, maxLimit int) *Server {
	return &Server{
		healthHandler:      NewHealthHandler(deps),
		metricsHandler:     NewMetricsHandler(),
		statsHandler:       NewStatsHandler(statsProvider),
		playersHandler:     NewPlayersHandler(deps),
		commentaryHandler:  NewCommentaryHandler(deps),
		dashboardHandler:   NewDashboardHandler(deps),
		shotChartHandler:   NewShotChartHandler(deps),
		leaderboardHandler: NewLeaderboardHandler(deps, maxLimit),
		rankHandler:        NewRankHandler(deps),
	}
}

// Register attaches all HTTP routes to mux.
func (s *Server) Register(_ context.Context, mux *http.ServeMux) {
	mux.HandleFunc("/healthz", MetricsMiddleware(s.healthHandler.HandleHealth, "healthz"))
	mux.Handle("/metrics", s.metricsHandler)
	mux.HandleFunc("/stats", MetricsMiddleware(s.statsHandler.HandleStats, "stats"))
	mux.HandleFunc("/api/players", MetricsMiddleware(s.playersHandler.HandleGetPlayers, "players"))
	mux.HandleFunc("/api/best-commentary", MetricsMiddleware(s.commentaryHandler.HandleGetCommentary, "best_commentary"))
	mux.HandleFunc("/api/dashboard.json", MetricsMiddleware(s.dashboardHandler.HandleGetDashboard, "dashboard"))
	mux.HandleFunc("/api/shot-chart.svg", MetricsMiddleware(s.shotChartHandler.HandleGetShotChart, "shot_chart"))
	mux.HandleFunc("/api/leaderboard", MetricsMiddleware(s.leaderboardHandler.HandleGetLeaderboard, "leaderboard"))
	mux.HandleFunc("/api/rank", MetricsMiddleware(s.rankHandler.HandleGetRank, "rank"))
}

var errPlayerRequired = errors.New("player name is required")

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code string, err error) {
	msg := http.StatusText(status)
	if err != nil {
		msg = err.Error()
	}
	writeJSON(w, status, errorResponse{Code: code, Message: msg})
}

// statusFor maps domain error kinds to an HTTP status and error code.
func statusFor(err error) (int, string) {
	switch {
	case errors.Is(err, model.ErrMissingParameter):
		return http.StatusBadRequest, "missing_parameter"
	case errors.Is(err, repository.ErrInvalidLimit), errors.Is(err, ErrBadRequest):
		return http.StatusBadRequest, "bad_request"
	case errors.Is(err, model.ErrPlayerNotFound):
		return http.StatusNotFound, "player_not_found"
	case errors.Is(err, model.ErrMissingField):
		return http.StatusUnprocessableEntity, "missing_field"
	case errors.Is(err, model.ErrDatasetEmpty):
		return http.StatusServiceUnavailable, "dataset_empty"
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout, "timeout"
	default:
		return http.StatusInternalServerError, "internal_error"
	}
}

// respondError writes err with the status its kind maps to.
func respondError(w http.ResponseWriter, op string, err error) {
	status, code := statusFor(err)
	if status == http.StatusInternalServerError {
		err = WrapKind(op, ErrInternal, err)
	} else {
		err = Wrap(op, err)
	}
	writeError(w, status, code, err)
}

// playerParam returns the ?player= value or a missing-parameter error.
func playerParam(op string, r *http.Request) (string, error) {
	p := r.URL.Query().Get("player")
	if p == "" {
		return "", WrapKind(op, model.ErrMissingParameter, errPlayerRequired)
	}
	return p, nil
}
