package logger

import (
	"context"
	"errors"
	"testing"

	. "github.com/smartystreets/goconvey/convey"
)

func TestFieldConstructors(t *testing.T) {
	Convey("Given the field constructors", t, func() {
		Convey("When building typed fields", func() {
			So(String("k", "v"), ShouldResemble, Field{Key: "k", Value: "v"})
			So(Int("n", 7), ShouldResemble, Field{Key: "n", Value: 7})
			So(Bool("ok", true), ShouldResemble, Field{Key: "ok", Value: true})
		})

		Convey("When wrapping an error", func() {
			err := errors.New("boom")
			f := Error(err)

			So(f.Key, ShouldEqual, "error")
			So(f.Value, ShouldEqual, err)
		})
	})
}

func TestGlobalLogger(t *testing.T) {
	Convey("Given an initialized global logger", t, func() {
		So(Init(), ShouldBeNil)

		Convey("When fetched and named", func() {
			log := Named("cycle")

			Convey("Then logging at every level is safe", func() {
				ctx := context.Background()
				So(func() {
					log.Debug(ctx, "debug line")
					log.Info(ctx, "info line", String("input", "picks"))
					log.Warn(ctx, "warn line", Int("events", 3))
					log.Error(ctx, "error line", Error(errors.New("feed down")))
				}, ShouldNotPanic)
			})
		})
	})
}

func TestSetLevelString(t *testing.T) {
	Convey("Given level names", t, func() {
		So(Init(), ShouldBeNil)

		Convey("When recognized names are set", func() {
			for _, level := range []string{"debug", "info", "WARN", "warning", "Error", ""} {
				So(SetLevelString(level), ShouldBeNil)
			}
		})

		Convey("When an unknown name is set", func() {
			So(SetLevelString("loud"), ShouldNotBeNil)
		})
	})
}

func TestCaller(t *testing.T) {
	Convey("Given the caller helper", t, func() {
		Convey("When resolved from a known depth", func() {
			// Direct call skips past real logging frames, so it reports a
			// runtime frame; it must still be file:line shaped.
			So(caller(), ShouldContainSubstring, ":")
		})
	})
}
