package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"testing"

	. "github.com/smartystreets/goconvey/convey"
)

func TestLoggerInit(t *testing.T) {
	Convey("Given the global logger", t, func() {
		err := Init()
		So(err, ShouldBeNil)
		defer func() { So(Sync(), ShouldBeNil) }()

		Convey("Then Get and Named should return usable loggers", func() {
			So(Get(), ShouldNotBeNil)
			named := Named("test")
			So(named, ShouldNotBeNil)
			named.Info(context.Background(), "test message", String("k", "v"))
		})
	})
}

func TestLoggerOutput(t *testing.T) {
	Convey("Given a json logger writing to a buffer", t, func() {
		So(SetLevelString("debug"), ShouldBeNil)
		defer SetLevel(0)

		var buf bytes.Buffer
		l := New(WithWriter(&buf), WithFormat(FormatJSON)).Named("repo").With(Int("rows", 3))

		Convey("When logging with a request id in context", func() {
			ctx := WithRequestID(context.Background(), "req-1")
			l.Warn(ctx, "slow load", Float64("ms", 12.5), Error(errors.New("boom")))

			Convey("Then the record should carry every field", func() {
				var rec map[string]any
				So(json.Unmarshal(buf.Bytes(), &rec), ShouldBeNil)
				So(rec["msg"], ShouldEqual, "slow load")
				So(rec["level"], ShouldEqual, "WARN")
				So(rec["component"], ShouldEqual, "repo")
				So(rec["rows"], ShouldEqual, 3.0)
				So(rec["ms"], ShouldEqual, 12.5)
				So(rec["error"], ShouldEqual, "boom")
				So(rec["request_id"], ShouldEqual, "req-1")
				So(rec["source"], ShouldContainSubstring, "logger_test.go")
			})
		})

		Convey("When the level is raised above debug", func() {
			So(SetLevelString("error"), ShouldBeNil)
			l.Debug(context.Background(), "hidden")

			Convey("Then nothing should be written", func() {
				So(buf.Len(), ShouldEqual, 0)
			})
		})
	})
}

func TestParseLevel(t *testing.T) {
	Convey("Given level strings", t, func() {
		for _, s := range []string{"debug", "INFO", "", "warn", "warning", " error "} {
			_, err := ParseLevel(s)
			So(err, ShouldBeNil)
		}
		_, err := ParseLevel("verbose")
		So(err, ShouldNotBeNil)
		So(SetLevelString("verbose"), ShouldNotBeNil)
	})
}

func TestNop(t *testing.T) {
	Convey("Given a nop logger", t, func() {
		l := Nop()
		So(func() {
			l.Info(context.Background(), "ignored")
			l.Fatal(context.Background(), "ignored")
		}, ShouldNotPanic)
	})
}
