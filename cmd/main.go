package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"runtime"
	"syscall"
	"time"

	"github.com/okian/homerun/internal/adapters/cache"
	"github.com/okian/homerun/internal/adapters/http/api"
	"github.com/okian/homerun/internal/adapters/http/site"
	"github.com/okian/homerun/internal/adapters/http/swagger"
	"github.com/okian/homerun/internal/adapters/mq/queue"
	"github.com/okian/homerun/internal/adapters/mq/worker"
	"github.com/okian/homerun/internal/adapters/repository"
	app "github.com/okian/homerun/internal/app"
	"github.com/okian/homerun/internal/config"
	"github.com/okian/homerun/internal/domain/model"
	"github.com/okian/homerun/pkg/logger"
	"github.com/okian/homerun/pkg/metrics"
)

// HTTP server timeout constants.
const (
	readTimeout               = 10 * time.Second
	writeTimeout              = 30 * time.Second
	idleTimeout               = 60 * time.Second
	readHeaderTimeout         = 5 * time.Second
	shutdownTimeout           = 30 * time.Second
	nanosecondsPerMillisecond = 1e6
)

func main() {
	// Initialize logging with defaults; the configured format is applied below.
	if err := logger.Init(); err != nil {
		os.Stderr.WriteString("failed to initialize logging: " + err.Error() + "\n")
		os.Exit(1)
	}

	// Root context with cancel on SIGINT/SIGTERM.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx); err != nil {
		os.Stderr.WriteString("homerun: " + err.Error() + "\n")
		stop()
		os.Exit(1)
	}
}

func run(ctx context.Context) error {
	// Load configuration (defaults -> .env -> optional file -> env)
	cfg, err := config.Load(ctx)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	if err := logger.Init(logger.WithFormat(logger.Format(cfg.LogFormat))); err != nil {
		return fmt.Errorf("failed to initialize logging: %w", err)
	}
	defer func() { _ = logger.Sync() }()
	log := logger.Get()

	// Apply configured log level (fallback to info on invalid input)
	if err := logger.SetLevelString(cfg.LogLevel); err != nil {
		log.Warn(ctx, "invalid log_level; falling back to info", logger.String("log_level", cfg.LogLevel), logger.Error(err))
		_ = logger.SetLevelString("info")
	}

	metrics.Configure(metricsOptions(cfg)...)

	ds, src, err := loadDataset(ctx, cfg, log)
	if err != nil {
		return err
	}
	store := repository.NewDatasetStore(ds, src, repository.WithLogger(log.Named("repository")))

	dashboards := newCache(ctx, cfg, log)
	opts := []app.Option{
		app.WithLogger(log.Named("service")),
		app.WithStore(store),
		app.WithCache(dashboards),
		app.WithMaxLeaderboardLimit(cfg.MaxLeaderboardLimit),
	}

	// Warm-up only pays off when built dashboards are kept somewhere.
	var warmQueue *queue.InMemoryQueue
	if _, noop := dashboards.(cache.Noop); !noop && cfg.CacheWarmWorkers > 0 {
		warmQueue = queue.NewInMemoryQueue(queue.WithSizeObserver(metrics.UpdateWarmQueue))
		opts = append(opts, app.WithWarmQueue(warmQueue))
	}

	svc := app.New(opts...)
	defer svc.Stop()

	if warmQueue != nil {
		pool := worker.NewPool(cfg.CacheWarmWorkers, warmQueue, svc, worker.WithLogger(log.Named("warmer")))
		pool.Start(ctx)
		defer func() {
			if err := pool.Shutdown(context.Background()); err != nil {
				log.Error(ctx, "warm-up pool shutdown failed", logger.Error(err))
			}
			log.Info(ctx, "warm-up pool stopped",
				logger.Int64("processed", pool.Processed()),
				logger.Int64("failed", pool.Failed()),
			)
		}()
	}

	if err := svc.Start(ctx); err != nil {
		return fmt.Errorf("failed to start service: %w", err)
	}

	go startSystemMetricsUpdater(ctx)
	go reloadOnHangup(ctx, cfg, svc, log)

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           newHandler(ctx, cfg, svc),
		ReadTimeout:       readTimeout,
		WriteTimeout:      writeTimeout,
		IdleTimeout:       idleTimeout,
		ReadHeaderTimeout: readHeaderTimeout,
	}

	serveErr := make(chan error, 1)
	go func() {
		log.Info(ctx, "starting HTTP server",
			logger.String("addr", cfg.Addr),
			logger.String("dashboard", site.Prefix),
		)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	select {
	case <-ctx.Done():
	case err := <-serveErr:
		if err != nil {
			return fmt.Errorf("HTTP server failed: %w", err)
		}
	}
	log.Info(ctx, "shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error(ctx, "server shutdown failed", logger.Error(err))
	}
	log.Info(ctx, "server stopped")
	return nil
}

// loadDataset reads the configured dataset and, in strict mode, checks
// that every player's aggregates can be computed.
func loadDataset(ctx context.Context, cfg *config.Config, log logger.Logger) (*model.Dataset, repository.Source, error) {
	ds, src, err := repository.Load(ctx, cfg.DatasetPath,
		repository.WithTable(cfg.DatasetTable),
		repository.WithLoadLogger(log.Named("loader")),
	)
	if err != nil {
		return nil, repository.Source{}, fmt.Errorf("failed to load dataset: %w", err)
	}
	if cfg.StrictValidation {
		if err := repository.Validate(ds); err != nil {
			return nil, repository.Source{}, fmt.Errorf("dataset validation failed: %w", err)
		}
	}
	return ds, src, nil
}

// metricsOptions maps the metrics_* keys onto the Prometheus manager.
func metricsOptions(cfg *config.Config) []metrics.Option {
	return []metrics.Option{
		metrics.WithMetricsEnabled(cfg.MetricsEnabled),
		metrics.WithNamespace(cfg.MetricsNamespace),
		metrics.WithSubsystem(cfg.MetricsSubsystem),
		metrics.WithLatencyBuckets(cfg.MetricsBuckets),
		metrics.WithConstLabels(cfg.MetricsLabels),
		metrics.WithRefreshInterval(cfg.MetricsRefresh()),
	}
}

// newCache picks the dashboard cache: Redis when a URL is configured, an
// in-process cache when cache_memory_entries is set, otherwise none. An
// unreachable Redis falls through to the in-process choice.
func newCache(ctx context.Context, cfg *config.Config, log logger.Logger) cache.Cache {
	if cfg.CacheRedisURL != "" {
		c, err := cache.NewRedis(ctx, cfg.CacheRedisURL, cache.WithTTL(cfg.CacheTTL()))
		if err == nil {
			log.Info(ctx, "dashboard cache enabled",
				logger.String("backend", "redis"),
				logger.Duration("ttl", c.TTL()),
			)
			return c
		}
		log.Warn(ctx, "redis dashboard cache unavailable", logger.Error(err))
		metrics.RecordErrorByComponent("cache", "connect")
	}
	if cfg.CacheMemoryEntries > 0 {
		log.Info(ctx, "dashboard cache enabled",
			logger.String("backend", "memory"),
			logger.Int("max_entries", cfg.CacheMemoryEntries),
		)
		return cache.NewMemory(
			cache.WithMaxEntries(cfg.CacheMemoryEntries),
			cache.WithMemoryTTL(cfg.CacheTTL()),
		)
	}
	return cache.Noop{}
}

// newHandler registers every route and wraps the mux in the middleware chain.
func newHandler(ctx context.Context, cfg *config.Config, svc *app.Service) http.Handler {
	mux := http.NewServeMux()
	api.NewServer(svc, svc, cfg.MaxLeaderboardLimit).Register(ctx, mux)
	site.Register(ctx, mux)
	swagger.Register(ctx, mux)
	return api.Chain(mux, cfg.CORSOrigins, cfg.RequestTimeout())
}

// reloadOnHangup re-reads the dataset on SIGHUP. A failed reload keeps the
// current dataset.
func reloadOnHangup(ctx context.Context, cfg *config.Config, svc *app.Service, log logger.Logger) {
	hup := make(chan os.Signal, 1)
	signal.Notify(hup, syscall.SIGHUP)
	defer signal.Stop(hup)

	for {
		select {
		case <-ctx.Done():
			return
		case <-hup:
			if err := reload(ctx, cfg, svc, log); err != nil {
				metrics.RecordErrorByComponent("loader", "reload")
				log.Error(ctx, "dataset reload failed", logger.Error(err))
			}
		}
	}
}

func reload(ctx context.Context, cfg *config.Config, svc *app.Service, log logger.Logger) error {
	ds, src, err := loadDataset(ctx, cfg, log)
	if err != nil {
		return err
	}
	return svc.Reload(ctx, ds, src)
}

// startSystemMetricsUpdater starts a background goroutine that updates system metrics.
func startSystemMetricsUpdater(ctx context.Context) {
	ticker := time.NewTicker(metrics.Default().RefreshInterval())
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			updateSystemMetrics()
		}
	}
}

// updateSystemMetrics updates system-level metrics.
func updateSystemMetrics() {
	var m runtime.MemStats
	runtime.ReadMemStats(&m)

	var avgPauseMs float64
	if m.NumGC > 0 {
		avgPauseMs = float64(m.PauseTotalNs) / float64(m.NumGC) / nanosecondsPerMillisecond
	}
	metrics.UpdateSystem(m.Alloc, runtime.NumGoroutine(), avgPauseMs)
}
