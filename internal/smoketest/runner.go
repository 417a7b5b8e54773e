package smoketest

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/okian/homerun/pkg/logger"
)

// Run probes every player of a running service and verifies the
// leaderboard. It returns ErrProbeFailed when any check fails.
func Run(ctx context.Context, config *Config) (*Stats, error) {
	stats := &Stats{StartTime: time.Now()}
	log := logger.Named("smoketest")

	log.Info(ctx, "starting homerun probe",
		logger.String("baseURL", config.BaseURL),
		logger.Int("workers", config.Workers),
		logger.Duration("timeout", config.Timeout),
		logger.Int("topN", config.TopN),
	)
	client := newHTTPClient(config.BaseURL, config.Timeout)

	// Step 1: Check service health
	if err := checkServiceHealth(ctx, client, stats); err != nil {
		return stats, err
	}

	// Step 2: List players
	var players []string
	if err := client.getJSON(ctx, "/api/players", &players); err != nil {
		return stats, fmt.Errorf("player list failed: %w", err)
	}
	if len(players) == 0 {
		return stats, ErrNoPlayers
	}
	stats.Players = len(players)

	// Step 3: Commentary and dashboard for every player
	probePlayers(ctx, client, config, players, stats, log)

	// Step 4: Leaderboard and rank agreement
	if err := verifyLeaderboard(ctx, client, min(config.TopN, len(players)), stats); err != nil {
		stats.Failures++
		log.Error(ctx, "leaderboard verification failed", logger.Error(err))
	}

	stats.EndTime = time.Now()
	stats.Duration = stats.EndTime.Sub(stats.StartTime)
	displayFinalStats(ctx, stats)

	if stats.Failures > 0 {
		return stats, fmt.Errorf("%w: %d failures", ErrProbeFailed, stats.Failures)
	}
	log.Info(ctx, "probe completed successfully")
	return stats, nil
}

// checkServiceHealth verifies the service is up and serving a dataset.
func checkServiceHealth(ctx context.Context, client *HTTPClient, stats *Stats) error {
	var h Health
	if err := client.getJSON(ctx, "/healthz", &h); err != nil {
		return fmt.Errorf("%w: %w", ErrUnhealthy, err)
	}
	if h.Status != "ok" {
		return fmt.Errorf("%w: status %q", ErrUnhealthy, h.Status)
	}
	stats.Rows = h.Rows
	logger.Get().Info(ctx, "service is healthy", logger.Int("players", h.Players), logger.Int("rows", h.Rows))
	return nil
}

// probePlayers checks every player with a bounded worker pool. Failures
// are counted, not returned, so one bad player does not hide the rest.
func probePlayers(ctx context.Context, client *HTTPClient, config *Config, players []string, stats *Stats, log logger.Logger) {
	var commentaries, dashboards, failures atomic.Int64

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(max(1, config.Workers))
	for _, p := range players {
		g.Go(func() error {
			if err := probeCommentary(gctx, client, p); err != nil {
				failures.Add(1)
				log.Error(gctx, "commentary check failed", logger.String("player", p), logger.Error(err))
			} else {
				commentaries.Add(1)
			}
			if err := probeDashboard(gctx, client, p); err != nil {
				failures.Add(1)
				log.Error(gctx, "dashboard check failed", logger.String("player", p), logger.Error(err))
			} else {
				dashboards.Add(1)
			}
			if config.Verbose {
				log.Info(gctx, "player probed", logger.String("player", p))
			}
			return nil
		})
	}
	_ = g.Wait()

	stats.CommentariesOK = int(commentaries.Load())
	stats.DashboardsOK = int(dashboards.Load())
	stats.Failures += int(failures.Load())
}

func probeCommentary(ctx context.Context, client *HTTPClient, player string) error {
	var c Commentary
	if err := client.getJSON(ctx, playerQuery("/api/best-commentary", player), &c); err != nil {
		return err
	}
	if strings.TrimSpace(c.Commentary) == "" {
		return fmt.Errorf("empty commentary")
	}
	if !strings.Contains(c.Commentary, player) {
		return fmt.Errorf("commentary does not name %q", player)
	}
	return nil
}

func probeDashboard(ctx context.Context, client *HTTPClient, player string) error {
	var d Dashboard
	if err := client.getJSON(ctx, playerQuery("/api/dashboard.json", player), &d); err != nil {
		return err
	}
	if len(d.Dashboard) != DashboardPanels {
		return fmt.Errorf("got %d panels, want %d", len(d.Dashboard), DashboardPanels)
	}
	for i, payload := range d.Dashboard {
		var fig struct {
			Data   []json.RawMessage `json:"data"`
			Layout json.RawMessage   `json:"layout"`
		}
		if err := json.Unmarshal([]byte(payload), &fig); err != nil {
			return fmt.Errorf("panel %d: %w", i, err)
		}
		if len(fig.Data) == 0 {
			return fmt.Errorf("panel %d has no traces", i)
		}
	}
	return nil
}

// displayFinalStats logs the final probe statistics.
func displayFinalStats(ctx context.Context, stats *Stats) {
	var successRate float64
	if checks := 2 * stats.Players; checks > 0 {
		successRate = float64(stats.CommentariesOK+stats.DashboardsOK) / float64(checks) * percentMultiplier
	}
	logger.Get().Info(ctx, "final statistics",
		logger.Int("players", stats.Players),
		logger.Int("rows", stats.Rows),
		logger.Int("commentariesOK", stats.CommentariesOK),
		logger.Int("dashboardsOK", stats.DashboardsOK),
		logger.Int("leaderboardEntries", stats.LeaderboardEntries),
		logger.Int("failures", stats.Failures),
		logger.String("duration", stats.Duration.String()),
		logger.String("successRate", strconv.FormatFloat(successRate, 'f', 1, 64)+"%"),
	)
}
