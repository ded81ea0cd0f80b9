package dedupe_test

import (
	"context"
	"fmt"
	"testing"

	"github.com/guttman/pickx/internal/domain/dedupe"
	. "github.com/smartystreets/goconvey/convey"
)

func TestInMemoryDeduper(t *testing.T) {
	Convey("Given an in-memory deduper", t, func() {
		ctx := context.Background()

		Convey("When a game id is recorded for the first time", func() {
			d := dedupe.NewInMemoryDeduper()
			seen := d.SeenAndRecord(ctx, "game-401")

			Convey("Then it reports unseen and tracks it", func() {
				So(seen, ShouldBeFalse)
				So(d.Size(), ShouldEqual, 1)
			})

			Convey("And a repeat of the same id reports seen", func() {
				So(d.SeenAndRecord(ctx, "game-401"), ShouldBeTrue)
				So(d.Size(), ShouldEqual, 1)
			})
		})

		Convey("When many distinct ids are recorded", func() {
			d := dedupe.NewInMemoryDeduper()
			for i := 0; i < 32; i++ {
				So(d.SeenAndRecord(ctx, fmt.Sprintf("game-%d", i)), ShouldBeFalse)
			}

			Convey("Then all of them stay seen", func() {
				So(d.Size(), ShouldEqual, 32)
				for i := 0; i < 32; i++ {
					So(d.SeenAndRecord(ctx, fmt.Sprintf("game-%d", i)), ShouldBeTrue)
				}
			})
		})

		Convey("When the bound is reached", func() {
			d := dedupe.NewInMemoryDeduper(dedupe.WithMaxSize(3))
			for i := 0; i < 3; i++ {
				d.SeenAndRecord(ctx, fmt.Sprintf("game-%d", i))
			}
			seen := d.SeenAndRecord(ctx, "game-overflow")

			Convey("Then the set resets rather than grow unbounded", func() {
				So(seen, ShouldBeFalse)
				// Previously recorded ids may be forgotten; the snapshot
				// baseline still prevents double counting.
				So(d.SeenAndRecord(ctx, "game-overflow"), ShouldBeTrue)
			})
		})
	})
}
