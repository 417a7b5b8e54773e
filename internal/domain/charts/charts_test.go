package charts_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"math"
	"strings"
	"testing"

	"github.com/okian/homerun/internal/domain/charts"
	"github.com/okian/homerun/internal/domain/model"
	"github.com/okian/homerun/internal/domain/stats"
	. "github.com/smartystreets/goconvey/convey"
)

func row(player, season string, hr int, ev, hd float64, dir string, maxHR int) model.Event {
	return model.Event{
		PlayerName:            player,
		Season:                season,
		HomerunsOfSeasonSoFar: hr,
		ExitVelocity:          ev,
		HitDistance:           hd,
		ShotDirection:         dir,
		LaunchAngle:           30,
		MeanExitVel:           45,
		MeanHitDist:           125,
		MeanPowerOfTheShot:    4,
		PlayerEvVariance:      4.5,
		MaxHomeruns:           maxHR,
	}
}

func dataset() *model.Dataset {
	return model.NewDataset([]model.Event{
		row("A", "2022", 1, 44, 120, "left field", 3),
		row("A", "2022", 2, 46, 130, "center field", 3),
		row("A", "2023", 1, 47, 128, "left field", 3),
		row("B", "2022", 1, 50, 150, "right field", 9),
	})
}

func decode(t *testing.T, enc string) map[string]any {
	var out map[string]any
	if err := json.Unmarshal([]byte(enc), &out); err != nil {
		t.Fatalf("decode figure: %v", err)
	}
	return out
}

func TestPanels(t *testing.T) {
	Convey("Given the dashboard panels", t, func() {
		panels := charts.Panels()

		Convey("Then they should be listed in the fixed dashboard order", func() {
			names := make([]string, len(panels))
			for i, p := range panels {
				names[i] = p.Name
			}
			So(names, ShouldResemble, []string{
				"performance-metrics",
				"exit-velocity",
				"homerun-pie",
				"hit-distance-histogram",
				"shot-direction-bar",
				"comparison-with-best",
				"max-distance-comparison",
			})
		})

		Convey("Then every panel should reject an unknown player", func() {
			for _, p := range panels {
				_, err := p.Build(dataset(), "nobody")
				So(errors.Is(err, model.ErrPlayerNotFound), ShouldBeTrue)
			}
		})
	})
}

func TestPerformanceMetrics(t *testing.T) {
	Convey("Given player A", t, func() {
		fig, err := charts.PerformanceMetrics(dataset(), "A")
		So(err, ShouldBeNil)

		Convey("Then it should hold four gauges", func() {
			So(len(fig.Data), ShouldEqual, 4)
			for _, tr := range fig.Data {
				So(tr.Type, ShouldEqual, "indicator")
				So(tr.Gauge, ShouldNotBeNil)
			}
		})

		Convey("Then the consistency gauge should show the complement of the consistency percentage", func() {
			c, err := stats.ConsistencyPercentage(stats.PlayerSeries(dataset(), "A"))
			So(err, ShouldBeNil)
			g := fig.Data[3]
			So(g.Value, ShouldEqual, 100-c)
			So(g.Gauge.Threshold.Value, ShouldEqual, 100-c)
		})

		Convey("Then the exit velocity gauge should be bounded by the dataset maximum", func() {
			So(fig.Data[0].Value, ShouldEqual, 45.0)
			So(fig.Data[0].Gauge.Axis.Range[1], ShouldEqual, 50.0)
		})
	})

	Convey("Given a player without a usable mean exit velocity", t, func() {
		bad := row("C", "2022", 1, 40, 100, "left field", 1)
		bad.MeanExitVel = 0
		ds := model.NewDataset([]model.Event{bad})

		Convey("Then the panel should fail with a missing field", func() {
			_, err := charts.PerformanceMetrics(ds, "C")
			So(errors.Is(err, model.ErrMissingField), ShouldBeTrue)
		})
	})
}

func TestSeriesPanels(t *testing.T) {
	Convey("Given player A", t, func() {
		ds := dataset()

		Convey("Then the exit velocity panel should follow the sorted series", func() {
			fig, err := charts.ExitVelocity(ds, "A")
			So(err, ShouldBeNil)
			So(fig.Data[0].X, ShouldResemble, []any{1, 2, 1})
			So(fig.Data[0].Y, ShouldResemble, []any{44.0, 46.0, 47.0})
			So(fig.Data[0].Marker.Color, ShouldResemble, []any{2022.0, 2022.0, 2023.0})
		})

		Convey("Then the pie should carry per-season maxima", func() {
			fig, err := charts.HomerunPie(ds, "A")
			So(err, ShouldBeNil)
			So(fig.Data[0].Labels, ShouldResemble, []string{"2022", "2023"})
			So(fig.Data[0].Values, ShouldResemble, []any{2, 1})
		})

		Convey("Then the histogram should use twenty bins", func() {
			fig, err := charts.HitDistanceHistogram(ds, "A")
			So(err, ShouldBeNil)
			So(fig.Data[0].NBinsX, ShouldEqual, 20)
			So(len(fig.Data[0].X), ShouldEqual, 3)
		})

		Convey("Then the shot direction bar should have one trace per direction", func() {
			fig, err := charts.ShotDirectionBar(ds, "A")
			So(err, ShouldBeNil)
			So(len(fig.Data), ShouldEqual, 2)
			So(fig.Data[0].Name, ShouldEqual, "left field")
			So(fig.Data[0].Y, ShouldResemble, []any{120.0, 128.0})
		})

		Convey("Then the comparison should plot the best player first", func() {
			fig, err := charts.ComparisonWithBest(ds, "A")
			So(err, ShouldBeNil)
			So(fig.Data[0].Name, ShouldEqual, "B")
			So(fig.Data[1].Name, ShouldEqual, "A")
		})

		Convey("Then the max distance panel should list both players", func() {
			fig, err := charts.MaxDistanceComparison(ds, "A")
			So(err, ShouldBeNil)
			So(fig.Data[0].X, ShouldResemble, []any{"A", "B"})
			So(fig.Data[0].Y, ShouldResemble, []any{130.0, 150.0})
		})
	})
}

func TestEncode(t *testing.T) {
	Convey("Given a figure with missing values", t, func() {
		ds := model.NewDataset([]model.Event{row("A", "2022", 1, math.NaN(), 120, "left field", 1)})
		fig, err := charts.ExitVelocity(ds, "A")
		So(err, ShouldBeNil)

		Convey("When encoding it", func() {
			enc, err := fig.Encode()

			Convey("Then NaN should be emitted as null", func() {
				So(err, ShouldBeNil)
				decoded := decode(t, enc)
				data := decoded["data"].([]any)
				y := data[0].(map[string]any)["y"].([]any)
				So(y[0], ShouldBeNil)
			})
		})
	})
}

func TestBuildDashboard(t *testing.T) {
	Convey("Given a dataset", t, func() {
		ds := dataset()

		Convey("When building the dashboard for A", func() {
			out, err := charts.BuildDashboard(context.Background(), ds, "A")

			Convey("Then it should return seven decodable payloads in order", func() {
				So(err, ShouldBeNil)
				So(len(out), ShouldEqual, 7)
				for _, enc := range out {
					fig := decode(t, enc)
					So(fig["data"], ShouldNotBeNil)
				}
				first := decode(t, out[0])
				So(first["layout"].(map[string]any)["title"].(map[string]any)["text"], ShouldEqual, "A's Performance Metrics")
			})
		})

		Convey("When building the dashboard for an unknown player", func() {
			out, err := charts.BuildDashboard(context.Background(), ds, "nobody")

			Convey("Then it should fail entirely", func() {
				So(out, ShouldBeNil)
				So(errors.Is(err, model.ErrPlayerNotFound), ShouldBeTrue)
			})
		})

		Convey("When season labels spell out non-finite numbers", func() {
			odd := model.NewDataset([]model.Event{
				row("C", "nan", 1, 44, 120, "left field", 2),
				row("C", "inf", 2, 45, 121, "left field", 2),
				row("C", "2023", 1, 46, 122, "right field", 2),
			})
			out, err := charts.BuildDashboard(context.Background(), odd, "C")

			Convey("Then the labels are kept as text and every payload encodes", func() {
				So(err, ShouldBeNil)
				So(len(out), ShouldEqual, 7)
				So(out[1], ShouldContainSubstring, `"nan"`)
				So(out[1], ShouldContainSubstring, `"inf"`)
				So(out[1], ShouldContainSubstring, "2023")
			})
		})

		Convey("When the context is already cancelled", func() {
			ctx, cancel := context.WithCancel(context.Background())
			cancel()
			_, err := charts.BuildDashboard(ctx, ds, "A")

			Convey("Then it should return the context error", func() {
				So(errors.Is(err, context.Canceled), ShouldBeTrue)
			})
		})
	})
}

func TestShotChartSVG(t *testing.T) {
	Convey("Given player A's series", t, func() {
		var buf bytes.Buffer
		err := charts.ShotChartSVG(&buf, stats.PlayerSeries(dataset(), "A"), "A")

		Convey("Then it should render an SVG with one label per direction", func() {
			So(err, ShouldBeNil)
			out := buf.String()
			So(out, ShouldContainSubstring, "<svg")
			So(out, ShouldContainSubstring, "left field")
			So(out, ShouldContainSubstring, "center field")
			So(strings.Count(out, "</svg>"), ShouldEqual, 1)
		})
	})

	Convey("Given an empty series", t, func() {
		var buf bytes.Buffer
		err := charts.ShotChartSVG(&buf, nil, "nobody")

		Convey("Then it should report the player as not found", func() {
			So(errors.Is(err, model.ErrPlayerNotFound), ShouldBeTrue)
			So(buf.Len(), ShouldEqual, 0)
		})
	})
}
