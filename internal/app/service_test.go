package service_test

import (
	"context"
	"errors"
	"net/http/httptest"
	"os"
	"strings"
	"testing"
	"time"

	. "github.com/smartystreets/goconvey/convey"

	"github.com/guttman/pickx/internal/adapters/archive"
	"github.com/guttman/pickx/internal/adapters/results"
	service "github.com/guttman/pickx/internal/app"
	"github.com/guttman/pickx/internal/domain/dedupe"
	"github.com/guttman/pickx/internal/domain/model"
	"github.com/guttman/pickx/internal/feedsim"
	"github.com/guttman/pickx/pkg/logger"
)

func TestMain(m *testing.M) {
	if err := logger.Init(); err != nil {
		panic(err)
	}
	os.Exit(m.Run())
}

type fakeFeed struct {
	events []model.GameEvent
	err    error
	calls  int
}

func (f *fakeFeed) Name() string { return "fake" }

func (f *fakeFeed) Fetch(ctx context.Context) ([]model.GameEvent, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return f.events, nil
}

type fakePicks struct {
	picks map[string][]string
	err   error
}

func (f *fakePicks) Picks(ctx context.Context) (map[string][]string, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.picks, nil
}

type fakeSeeds struct {
	seeds map[string]int
	err   error
}

func (f *fakeSeeds) Seeds(ctx context.Context) (map[string]int, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.seeds, nil
}

func poolPicks() *fakePicks {
	return &fakePicks{picks: map[string][]string{
		"Alice": {"Duke", "Stetson"},
		"Bob":   {"UConn", "Yale"},
	}}
}

func poolSeeds() *fakeSeeds {
	return &fakeSeeds{seeds: map[string]int{
		"Duke":    4,
		"Stetson": 16,
		"UConn":   1,
		"Yale":    13,
	}}
}

func TestServiceRefresh(t *testing.T) {
	Convey("Given a service wired to healthy sources and a file archive", t, func() {
		ctx := context.Background()
		feed := &fakeFeed{events: []model.GameEvent{
			{GameID: "g1", Winner: "Duke", Loser: "Vermont"},
			{GameID: "g2", Winner: "UConn", Loser: "Stetson"},
		}}
		store := archive.NewFileStore(t.TempDir())
		clock := time.Date(2026, 3, 19, 14, 0, 0, 0, time.UTC)
		svc := service.New(
			service.WithResultsSource(feed),
			service.WithPicksSource(poolPicks()),
			service.WithSeedsSource(poolSeeds()),
			service.WithArchive(store),
			service.WithClock(func() time.Time { return clock }),
		)

		Convey("When a cycle runs", func() {
			So(svc.Refresh(ctx), ShouldBeNil)

			Convey("Then standings are published ranked by current score", func() {
				rows, err := svc.Standings(ctx, 0)
				So(err, ShouldBeNil)
				So(len(rows), ShouldEqual, 2)
				// Alice: Duke won (4 pts), Stetson eliminated. Bob: UConn won (1 pt).
				So(rows[0].Participant, ShouldEqual, "Alice")
				So(rows[0].CurrentScore, ShouldEqual, 4)
				So(rows[0].Rank, ShouldEqual, 1)
				So(rows[1].Participant, ShouldEqual, "Bob")
				So(rows[1].CurrentScore, ShouldEqual, 1)
				So(rows[1].Rank, ShouldEqual, 2)
			})

			Convey("Then the day's snapshot lands in the archive", func() {
				_, rows, err := store.LatestBefore(ctx, "2026-03-20")
				So(err, ShouldBeNil)
				So(len(rows), ShouldEqual, 2)
				baseline := archive.Baseline(rows)
				key := model.StateKey{Participant: "Alice", Team: "Duke"}
				So(baseline[key].Wins, ShouldEqual, 1)
				elim := model.StateKey{Participant: "Alice", Team: "Stetson"}
				So(baseline[elim].Eliminated, ShouldBeTrue)
			})

			Convey("Then no warnings are reported", func() {
				So(svc.LastWarnings(), ShouldBeEmpty)
			})
		})

		Convey("When a limit smaller than the pool is requested", func() {
			So(svc.Refresh(ctx), ShouldBeNil)
			rows, err := svc.Standings(ctx, 1)

			Convey("Then only the leading rows come back", func() {
				So(err, ShouldBeNil)
				So(len(rows), ShouldEqual, 1)
				So(rows[0].Participant, ShouldEqual, "Alice")
			})
		})

		Convey("When the next day's cycle runs after new results", func() {
			So(svc.Refresh(ctx), ShouldBeNil)
			clock = time.Date(2026, 3, 20, 14, 0, 0, 0, time.UTC)
			feed.events = []model.GameEvent{
				{GameID: "g3", Winner: "Duke", Loser: "Houston"},
			}
			So(svc.Refresh(ctx), ShouldBeNil)

			Convey("Then yesterday's wins carry over as the baseline", func() {
				rows, err := svc.Standings(ctx, 0)
				So(err, ShouldBeNil)
				// Duke now has 2 wins: 2 * 4 = 8. UConn's win belongs to
				// yesterday's baseline: 1 * 1 = 1.
				So(rows[0].Participant, ShouldEqual, "Alice")
				So(rows[0].CurrentScore, ShouldEqual, 8)
				So(rows[1].CurrentScore, ShouldEqual, 1)
			})
		})

		Convey("When stats are read after a cycle", func() {
			So(svc.Refresh(ctx), ShouldBeNil)
			stats := svc.GetStats()

			Convey("Then they describe the pool and the feed", func() {
				So(stats["participants"], ShouldEqual, 2)
				So(stats["results_source"], ShouldEqual, "fake")
				So(stats["last_refresh"], ShouldEqual, "2026-03-19T14:00:00Z")
			})
		})
	})
}

func TestServiceDegradation(t *testing.T) {
	Convey("Given a service whose feed starts failing", t, func() {
		ctx := context.Background()
		feed := &fakeFeed{events: []model.GameEvent{
			{GameID: "g1", Winner: "Duke", Loser: "Vermont"},
		}}
		store := archive.NewFileStore(t.TempDir())
		clock := time.Date(2026, 3, 19, 14, 0, 0, 0, time.UTC)
		picks := poolPicks()
		svc := service.New(
			service.WithResultsSource(feed),
			service.WithPicksSource(picks),
			service.WithSeedsSource(poolSeeds()),
			service.WithArchive(store),
			service.WithClock(func() time.Time { return clock }),
		)
		So(svc.Refresh(ctx), ShouldBeNil)

		Convey("When the results feed errors on the next cycle", func() {
			feed.err = errors.New("503 from upstream")
			So(svc.Refresh(ctx), ShouldBeNil)

			Convey("Then the cycle completes with a warning instead of failing", func() {
				warnings := svc.LastWarnings()
				So(len(warnings), ShouldEqual, 1)
				So(warnings[0], ShouldContainSubstring, "results unavailable")
			})

			Convey("Then games already counted today stay counted", func() {
				rows, err := svc.Standings(ctx, 0)
				So(err, ShouldBeNil)
				So(rows[0].CurrentScore, ShouldEqual, 4)
			})
		})

		Convey("When the roster source errors", func() {
			picks.err = errors.New("sheet unreachable")
			So(svc.Refresh(ctx), ShouldBeNil)

			Convey("Then the last good roster still drives the standings", func() {
				rows, err := svc.Standings(ctx, 0)
				So(err, ShouldBeNil)
				So(len(rows), ShouldEqual, 2)
				warned := strings.Join(svc.LastWarnings(), "; ")
				So(warned, ShouldContainSubstring, "picks unavailable")
			})
		})
	})
}

func TestServiceDedupingFeedAccumulation(t *testing.T) {
	Convey("Given a service reading a deduping feed that keeps re-listing the same completed game", t, func() {
		ctx := context.Background()
		games := []feedsim.Game{
			{ID: "g1", Home: "Duke", Away: "Vermont", HomeScore: 80, AwayScore: 71, Completed: true, HomeWinner: true},
		}
		feed := httptest.NewServer(feedsim.NewHandler(games))
		defer feed.Close()

		src := results.NewESPNSource(
			results.WithESPNURL(feed.URL),
			results.WithESPNDeduper(dedupe.NewInMemoryDeduper()),
		)
		store := archive.NewFileStore(t.TempDir())
		clock := time.Date(2026, 3, 19, 14, 0, 0, 0, time.UTC)
		svc := service.New(
			service.WithResultsSource(src),
			service.WithPicksSource(poolPicks()),
			service.WithSeedsSource(poolSeeds()),
			service.WithArchive(store),
			service.WithClock(func() time.Time { return clock }),
		)

		Convey("When two cycles run on the same day", func() {
			So(svc.Refresh(ctx), ShouldBeNil)
			So(svc.Refresh(ctx), ShouldBeNil)

			Convey("Then the win suppressed by the deduper stays counted", func() {
				rows, err := svc.Standings(ctx, 0)
				So(err, ShouldBeNil)
				So(rows[0].Participant, ShouldEqual, "Alice")
				So(rows[0].CurrentScore, ShouldEqual, 4)
			})

			Convey("Then the archived snapshot keeps the win for tomorrow's baseline", func() {
				_, rows, err := store.LatestBefore(ctx, "2026-03-20")
				So(err, ShouldBeNil)
				baseline := archive.Baseline(rows)
				key := model.StateKey{Participant: "Alice", Team: "Duke"}
				So(baseline[key].Wins, ShouldEqual, 1)
			})
		})

		Convey("When the date rolls over", func() {
			So(svc.Refresh(ctx), ShouldBeNil)
			clock = time.Date(2026, 3, 20, 14, 0, 0, 0, time.UTC)
			So(svc.Refresh(ctx), ShouldBeNil)

			Convey("Then yesterday's games count through the baseline, not twice", func() {
				rows, err := svc.Standings(ctx, 0)
				So(err, ShouldBeNil)
				So(rows[0].CurrentScore, ShouldEqual, 4)
			})
		})
	})
}

func TestServiceIDLessFeedReplacement(t *testing.T) {
	Convey("Given a feed without game ids that re-lists the full day each fetch", t, func() {
		ctx := context.Background()
		feed := &fakeFeed{events: []model.GameEvent{
			{Winner: "Duke", Loser: "Vermont"},
		}}
		svc := service.New(
			service.WithResultsSource(feed),
			service.WithPicksSource(poolPicks()),
			service.WithSeedsSource(poolSeeds()),
		)

		Convey("When several cycles run on the same day", func() {
			So(svc.Refresh(ctx), ShouldBeNil)
			So(svc.Refresh(ctx), ShouldBeNil)
			So(svc.Refresh(ctx), ShouldBeNil)

			Convey("Then the re-listed game counts exactly once", func() {
				rows, err := svc.Standings(ctx, 0)
				So(err, ShouldBeNil)
				So(rows[0].CurrentScore, ShouldEqual, 4)
			})
		})

		Convey("When the feed stops listing a game it listed earlier", func() {
			So(svc.Refresh(ctx), ShouldBeNil)
			feed.events = nil
			So(svc.Refresh(ctx), ShouldBeNil)

			Convey("Then its replaced view drops the game for the rest of the day", func() {
				rows, err := svc.Standings(ctx, 0)
				So(err, ShouldBeNil)
				So(rows[0].CurrentScore, ShouldEqual, 0)
			})
		})
	})
}

func TestServiceUnknownSeeds(t *testing.T) {
	Convey("Given a pick missing from the seed table", t, func() {
		ctx := context.Background()
		svc := service.New(
			service.WithResultsSource(&fakeFeed{}),
			service.WithPicksSource(&fakePicks{picks: map[string][]string{
				"Alice": {"Duke", "Mystery U"},
			}}),
			service.WithSeedsSource(&fakeSeeds{seeds: map[string]int{"Duke": 4}}),
		)

		Convey("When a cycle runs", func() {
			So(svc.Refresh(ctx), ShouldBeNil)

			Convey("Then the missing team is named in the warnings", func() {
				warned := strings.Join(svc.LastWarnings(), "; ")
				So(warned, ShouldContainSubstring, "seed table")
				So(warned, ShouldContainSubstring, "Mystery U")
			})

			Convey("Then the pick contributes nothing until its seed appears", func() {
				rows, err := svc.Standings(ctx, 0)
				So(err, ShouldBeNil)
				So(rows[0].CurrentScore, ShouldEqual, 0)
				So(rows[0].MaxScore, ShouldEqual, 24) // Duke alone: 4 * 6
			})
		})
	})
}
