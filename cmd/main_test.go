package main

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/okian/homerun/internal/adapters/cache"
	"github.com/okian/homerun/internal/adapters/repository"
	app "github.com/okian/homerun/internal/app"
	"github.com/okian/homerun/internal/config"
	"github.com/okian/homerun/internal/domain/model"
	"github.com/okian/homerun/pkg/logger"
	"github.com/okian/homerun/pkg/metrics"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/smartystreets/goconvey/convey"
)

const header = "PlayerName,Season,HomerunsOfSeasonSoFar,ExitVelocity,HitDistance,ShotDirection,LaunchAngle,MeanExitVel,MeanHitDist,MeanPowerOfTheShot,PlayerEvVariance,MaxHomeruns,video\n"

const goodRows = header +
	"Aaron Judge,2022,1,48.2,140.1,left field,28,46.1,131.5,3.9,2.2,62,v1\n" +
	"Aaron Judge,2022,2,47.0,135.0,center field,30,46.1,131.5,3.9,2.2,62,v2\n" +
	"Pete Alonso,2022,1,45.3,128.4,right field,26,44.8,126.0,3.5,2.7,40,v3\n"

const brokenRows = header +
	"Aaron Judge,2022,1,48.2,140.1,left field,28,0,131.5,3.9,2.2,62,v1\n"

func testConfig(t *testing.T, body string) *config.Config {
	t.Helper()
	path := filepath.Join(t.TempDir(), "events.csv")
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatal(err)
	}
	cfg := config.New(context.Background())
	cfg.DatasetPath = path
	return cfg
}

func TestLoadDataset(t *testing.T) {
	convey.Convey("Given a dataset on disk", t, func() {
		ctx := context.Background()

		convey.Convey("When it is well formed", func() {
			ds, src, err := loadDataset(ctx, testConfig(t, goodRows), logger.Nop())

			convey.So(err, convey.ShouldBeNil)
			convey.So(ds.Len(), convey.ShouldEqual, 3)
			convey.So(ds.Players(), convey.ShouldResemble, []string{"Aaron Judge", "Pete Alonso"})
			convey.So(src.Fingerprint, convey.ShouldNotBeEmpty)
		})

		convey.Convey("When a player's mean exit velocity is zero under strict validation", func() {
			_, _, err := loadDataset(ctx, testConfig(t, brokenRows), logger.Nop())

			convey.So(errors.Is(err, model.ErrMissingField), convey.ShouldBeTrue)
		})

		convey.Convey("When strict validation is off", func() {
			cfg := testConfig(t, brokenRows)
			cfg.StrictValidation = false
			ds, _, err := loadDataset(ctx, cfg, logger.Nop())

			convey.So(err, convey.ShouldBeNil)
			convey.So(ds.Len(), convey.ShouldEqual, 1)
		})

		convey.Convey("When the file is missing", func() {
			cfg := config.New(ctx)
			cfg.DatasetPath = filepath.Join(t.TempDir(), "absent.csv")
			_, _, err := loadDataset(ctx, cfg, logger.Nop())

			convey.So(err, convey.ShouldNotBeNil)
		})
	})
}

func TestNewCache(t *testing.T) {
	convey.Convey("Given cache configuration", t, func() {
		ctx := context.Background()
		cfg := config.New(ctx)

		convey.Convey("An empty URL disables caching", func() {
			_, ok := newCache(ctx, cfg, logger.Nop()).(cache.Noop)
			convey.So(ok, convey.ShouldBeTrue)
		})

		convey.Convey("An unusable URL falls back to no caching", func() {
			cfg.CacheRedisURL = "not-a-url"
			_, ok := newCache(ctx, cfg, logger.Nop()).(cache.Noop)
			convey.So(ok, convey.ShouldBeTrue)
		})

		convey.Convey("A memory size selects the in-process cache", func() {
			cfg.CacheMemoryEntries = 8
			c, ok := newCache(ctx, cfg, logger.Nop()).(*cache.Memory)
			convey.So(ok, convey.ShouldBeTrue)
			convey.So(c.Len(), convey.ShouldEqual, 0)
		})

		convey.Convey("An unusable URL falls back to the in-process cache when sized", func() {
			cfg.CacheRedisURL = "not-a-url"
			cfg.CacheMemoryEntries = 8
			_, ok := newCache(ctx, cfg, logger.Nop()).(*cache.Memory)
			convey.So(ok, convey.ShouldBeTrue)
		})
	})
}

func TestHandlerAndReload(t *testing.T) {
	convey.Convey("Given a service wired like main", t, func() {
		ctx := context.Background()
		cfg := testConfig(t, goodRows)
		ds, src, err := loadDataset(ctx, cfg, logger.Nop())
		convey.So(err, convey.ShouldBeNil)

		svc := app.New(
			app.WithLogger(logger.Nop()),
			app.WithStore(repository.NewDatasetStore(ds, src)),
		)
		convey.So(svc.Start(ctx), convey.ShouldBeNil)
		defer svc.Stop()
		h := newHandler(ctx, cfg, svc)

		convey.Convey("Then every surface is routed", func() {
			for _, path := range []string{"/healthz", "/api/players", "/dashboard/", "/openapi.yaml", "/api-docs", "/metrics"} {
				rec := httptest.NewRecorder()
				h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
				convey.So(rec.Code, convey.ShouldEqual, http.StatusOK)
			}
		})

		convey.Convey("And a reload swaps the dataset", func() {
			convey.So(os.WriteFile(cfg.DatasetPath, []byte(goodRows+
				"Mookie Betts,2023,1,44.0,121.0,left field,31,43.2,120.5,3.1,2.9,39,v4\n"), 0o600), convey.ShouldBeNil)

			convey.So(reload(ctx, cfg, svc, logger.Nop()), convey.ShouldBeNil)
			stats := svc.GetStats()
			convey.So(stats["rows"], convey.ShouldEqual, 4)
			convey.So(stats["reloads"], convey.ShouldEqual, int64(1))
			convey.So(stats["datasetFingerprint"], convey.ShouldNotEqual, src.Fingerprint)
		})

		convey.Convey("And a failed reload keeps the current dataset", func() {
			convey.So(os.WriteFile(cfg.DatasetPath, []byte(header), 0o600), convey.ShouldBeNil)

			convey.So(reload(ctx, cfg, svc, logger.Nop()), convey.ShouldNotBeNil)
			convey.So(svc.GetStats()["rows"], convey.ShouldEqual, 3)
		})
	})
}

func TestUpdateSystemMetrics(t *testing.T) {
	convey.Convey("Updating system metrics does not panic", t, func() {
		convey.So(updateSystemMetrics, convey.ShouldNotPanic)
	})
}

func TestMetricsOptions(t *testing.T) {
	convey.Convey("Given metrics settings in config", t, func() {
		cfg := config.New(context.Background())
		cfg.MetricsNamespace = "hr"
		cfg.MetricsSubsystem = "dash"
		cfg.MetricsLabels = map[string]string{"env": "staging"}
		cfg.MetricsRefreshSeconds = 30

		reg := prometheus.NewRegistry()
		m := metrics.NewManager(append(metricsOptions(cfg), metrics.WithPrometheusRegistry(reg))...)
		m.RecordCacheHit()

		convey.Convey("Then the manager is built from them", func() {
			families, err := reg.Gather()
			convey.So(err, convey.ShouldBeNil)
			names := make(map[string]bool)
			for _, f := range families {
				names[f.GetName()] = true
			}
			convey.So(names["hr_dash_cache_hits_total"], convey.ShouldBeTrue)
			convey.So(m.RefreshInterval(), convey.ShouldEqual, 30*time.Second)
			convey.So(m.Enabled(), convey.ShouldBeTrue)
		})

		convey.Convey("Then disabling metrics stops recording", func() {
			cfg.MetricsEnabled = false
			off := metrics.NewManager(append(metricsOptions(cfg), metrics.WithPrometheusRegistry(prometheus.NewRegistry()))...)
			convey.So(off.Enabled(), convey.ShouldBeFalse)
		})
	})
}
