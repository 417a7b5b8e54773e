package metrics

import (
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	. "github.com/smartystreets/goconvey/convey"
)

func TestMetricsOptions(t *testing.T) {
	Convey("Given a manager built with custom options", t, func() {
		registry := prometheus.NewRegistry()
		m := NewManager(
			WithNamespace("test"),
			WithSubsystem("unit"),
			WithLatencyBuckets([]float64{0.1, 0.5, 1.0}),
			WithRefreshInterval(5*time.Second),
			WithConstLabels(map[string]string{"env": "test"}),
			WithPrometheusRegistry(registry),
		)

		Convey("Then the options should be applied", func() {
			So(m.namespace, ShouldEqual, "test")
			So(m.subsystem, ShouldEqual, "unit")
			So(m.histogramBuckets, ShouldResemble, []float64{0.1, 0.5, 1.0})
			So(m.RefreshInterval(), ShouldEqual, 5*time.Second)
			So(m.Enabled(), ShouldBeTrue)
		})

		Convey("Then collectors should be registered under the configured names", func() {
			m.RecordCacheHit()
			families, err := registry.Gather()
			So(err, ShouldBeNil)
			labels := make(map[string]string)
			for _, f := range families {
				if f.GetName() != "test_unit_cache_hits_total" {
					continue
				}
				for _, l := range f.GetMetric()[0].GetLabel() {
					labels[l.GetName()] = l.GetValue()
				}
			}
			So(labels["env"], ShouldEqual, "test")
		})

		Convey("Then empty or zero options should keep defaults", func() {
			d := NewManager(
				WithNamespace(""),
				WithRefreshInterval(0),
				WithLatencyBuckets(nil),
				WithConstLabels(nil),
				WithPrometheusRegistry(prometheus.NewRegistry()),
			)
			So(d.namespace, ShouldEqual, "homerun")
			So(d.RefreshInterval(), ShouldEqual, defaultRefreshInterval)
			So(d.histogramBuckets, ShouldResemble, prometheus.DefBuckets)
			So(d.customLabels, ShouldBeEmpty)
		})
	})
}

func TestMetricsRecording(t *testing.T) {
	Convey("Given a manager on a private registry", t, func() {
		m := NewManager(WithPrometheusRegistry(prometheus.NewRegistry()))

		Convey("When recording HTTP requests", func() {
			m.RecordHTTPRequest("/api/players", "GET", 200, 5*time.Millisecond)
			m.RecordHTTPRequest("/api/players", "GET", 200, 7*time.Millisecond)
			m.RecordHTTPRequest("/api/players", "GET", 404, time.Millisecond)

			Convey("Then counts should be split by status", func() {
				So(testutil.ToFloat64(m.httpRequests.WithLabelValues("/api/players", "GET", "200")), ShouldEqual, 2)
				So(testutil.ToFloat64(m.httpRequests.WithLabelValues("/api/players", "GET", "404")), ShouldEqual, 1)
			})
		})

		Convey("When publishing the dataset", func() {
			m.UpdateDataset(120, 4, 30*time.Millisecond)

			Convey("Then the gauges should hold its size", func() {
				So(testutil.ToFloat64(m.datasetRows), ShouldEqual, 120)
				So(testutil.ToFloat64(m.datasetPlayers), ShouldEqual, 4)
				So(testutil.ToFloat64(m.datasetLoadedUnix), ShouldBeGreaterThan, 0)
			})
		})

		Convey("When counting analytics events", func() {
			m.RecordCommentaryTemplate(2)
			m.RecordCommentaryTemplate(2)
			m.RecordLeaderboardQuery("top")
			m.RecordCacheHit()
			m.RecordCacheMiss()
			m.RecordCacheError("get")
			m.RecordErrorByComponent("repository", "not_found")
			m.RecordErrorByEndpoint("/api/rank", "GET", "player_not_found")
			m.RecordDashboardBuild("ok", 10*time.Millisecond)
			m.UpdateWarmQueue(3)
			m.RecordWarmJob("ok")

			Convey("Then each counter should move", func() {
				So(testutil.ToFloat64(m.commentaryTemplates.WithLabelValues("2")), ShouldEqual, 2)
				So(testutil.ToFloat64(m.leaderboardQueries.WithLabelValues("top")), ShouldEqual, 1)
				So(testutil.ToFloat64(m.cacheHits), ShouldEqual, 1)
				So(testutil.ToFloat64(m.cacheMisses), ShouldEqual, 1)
				So(testutil.ToFloat64(m.cacheErrors.WithLabelValues("get")), ShouldEqual, 1)
				So(testutil.ToFloat64(m.errorRateByComponent.WithLabelValues("repository", "not_found")), ShouldEqual, 1)
				So(testutil.ToFloat64(m.errorRateByEndpoint.WithLabelValues("/api/rank", "GET", "player_not_found")), ShouldEqual, 1)
				So(testutil.CollectAndCount(m.dashboardBuildDuration), ShouldEqual, 1)
				So(testutil.ToFloat64(m.warmQueueSize), ShouldEqual, 3)
				So(testutil.ToFloat64(m.warmJobs.WithLabelValues("ok")), ShouldEqual, 1)
			})
		})

		Convey("When updating system readings", func() {
			m.UpdateSystem(2048, 12, 0.5)

			Convey("Then the gauges should reflect them", func() {
				So(testutil.ToFloat64(m.systemMemoryUsage), ShouldEqual, 2048)
				So(testutil.ToFloat64(m.systemGoroutineCount), ShouldEqual, 12)
			})
		})
	})

	Convey("Given a disabled manager", t, func() {
		m := NewManager(WithPrometheusRegistry(prometheus.NewRegistry()), WithMetricsEnabled(false))
		m.RecordCacheHit()
		m.UpdateDataset(10, 1, time.Millisecond)

		Convey("Then nothing should be recorded", func() {
			So(testutil.ToFloat64(m.cacheHits), ShouldEqual, 0)
			So(testutil.ToFloat64(m.datasetRows), ShouldEqual, 0)
		})
	})
}

func TestGlobalManager(t *testing.T) {
	Convey("Given the package-level manager", t, func() {
		So(Default(), ShouldNotBeNil)
		So(GetRegistry(), ShouldNotBeNil)

		Convey("Then the global helpers should not panic", func() {
			So(func() {
				RecordHTTPRequest("/healthz", "GET", 200, time.Millisecond)
				UpdateDataset(1, 1, time.Millisecond)
				RecordDashboardBuild("cached", time.Millisecond)
				RecordCommentaryTemplate(0)
				RecordLeaderboardQuery("rank")
				RecordCacheHit()
				RecordCacheMiss()
				RecordCacheError("set")
				RecordErrorByComponent("api", "internal")
				RecordErrorByEndpoint("/api/dashboard.json", "GET", "internal")
				UpdateSystem(1, 1, 0)
				UpdateWarmQueue(0)
				RecordWarmJob("error")
			}, ShouldNotPanic)
		})
	})
}

func TestMetricsConcurrency(t *testing.T) {
	Convey("Given concurrent recorders", t, func() {
		m := NewManager(WithPrometheusRegistry(prometheus.NewRegistry()))
		var wg sync.WaitGroup
		for i := 0; i < 8; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				for j := 0; j < 100; j++ {
					m.RecordCacheMiss()
				}
			}()
		}
		wg.Wait()

		So(testutil.ToFloat64(m.cacheMisses), ShouldEqual, 800)
	})
}

func TestConfigure(t *testing.T) {
	Convey("Given the package-level manager reconfigured at start-up", t, func() {
		before := GetRegistry()
		m := Configure(WithNamespace("cfg"), WithMetricsEnabled(false), WithRefreshInterval(time.Minute))
		defer Configure()

		Convey("Then it replaces the default manager and registry", func() {
			So(Default(), ShouldPointTo, m)
			So(GetRegistry(), ShouldNotPointTo, before)
			So(Default().Enabled(), ShouldBeFalse)
			So(Default().RefreshInterval(), ShouldEqual, time.Minute)
		})

		Convey("Then disabled recording leaves the new registry's series at zero", func() {
			RecordCacheHit()
			So(testutil.ToFloat64(m.cacheHits), ShouldEqual, 0)
		})
	})
}
