package api_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	. "github.com/smartystreets/goconvey/convey"

	"github.com/guttman/pickx/internal/adapters/http/api"
	"github.com/guttman/pickx/internal/domain/types"
)

type fakeDeps struct {
	rows     []types.Standing
	warnings []string
}

func (f *fakeDeps) Standings(ctx context.Context, limit int) ([]types.Standing, error) {
	if limit > 0 && limit < len(f.rows) {
		return f.rows[:limit], nil
	}
	return f.rows, nil
}

func (f *fakeDeps) LastWarnings() []string { return f.warnings }

func (f *fakeDeps) GetStats() map[string]interface{} {
	return map[string]interface{}{"participants": len(f.rows)}
}

func demoDeps() *fakeDeps {
	return &fakeDeps{
		rows: []types.Standing{
			{
				Rank:         1,
				Participant:  "Alice",
				CurrentScore: 30,
				MaxScore:     54,
				Teams: []types.TeamDetail{
					{Team: "Duke", Seed: 4, SeedKnown: true, Wins: 1, CurrentPoints: 4, MaxPoints: 24},
					{Team: "Stetson", Seed: 16, SeedKnown: true, Eliminated: true},
				},
			},
			{Rank: 2, Participant: "Bob", CurrentScore: 20, MaxScore: 60},
			{Rank: 3, Participant: "Carol", CurrentScore: 10, MaxScore: 40},
		},
		warnings: []string{"results unavailable: 503 from upstream"},
	}
}

func newTestServer(deps *fakeDeps, maxLimit int) *httptest.Server {
	mux := http.NewServeMux()
	api.NewServer(deps, deps, maxLimit).Register(context.Background(), mux)
	return httptest.NewServer(mux)
}

func TestStandingsEndpoint(t *testing.T) {
	Convey("Given a registered API server", t, func() {
		deps := demoDeps()
		srv := newTestServer(deps, 200)
		defer srv.Close()

		Convey("When GET /standings is requested", func() {
			resp, err := http.Get(srv.URL + "/standings")
			So(err, ShouldBeNil)
			defer resp.Body.Close()

			Convey("Then all rows come back with warnings and team detail", func() {
				So(resp.StatusCode, ShouldEqual, http.StatusOK)
				So(resp.Header.Get("Content-Type"), ShouldContainSubstring, "application/json")

				var body struct {
					Standings []struct {
						Rank         int    `json:"rank"`
						Participant  string `json:"participant"`
						CurrentScore int    `json:"current_score"`
						MaxScore     int    `json:"max_score"`
						Teams        []struct {
							Team       string `json:"team"`
							Eliminated bool   `json:"eliminated"`
						} `json:"teams"`
					} `json:"standings"`
					Warnings []string `json:"warnings"`
				}
				So(json.NewDecoder(resp.Body).Decode(&body), ShouldBeNil)
				So(len(body.Standings), ShouldEqual, 3)
				So(body.Standings[0].Participant, ShouldEqual, "Alice")
				So(body.Standings[0].Teams[1].Eliminated, ShouldBeTrue)
				So(body.Warnings, ShouldResemble, deps.warnings)
			})
		})

		Convey("When a limit is supplied", func() {
			resp, err := http.Get(srv.URL + "/standings?limit=2")
			So(err, ShouldBeNil)
			defer resp.Body.Close()

			Convey("Then only that many rows come back", func() {
				var body struct {
					Standings []json.RawMessage `json:"standings"`
				}
				So(json.NewDecoder(resp.Body).Decode(&body), ShouldBeNil)
				So(len(body.Standings), ShouldEqual, 2)
			})
		})

		Convey("When the limit is not a positive integer", func() {
			for _, bad := range []string{"abc", "0", "-3"} {
				resp, err := http.Get(srv.URL + "/standings?limit=" + bad)
				So(err, ShouldBeNil)
				resp.Body.Close()
				So(resp.StatusCode, ShouldEqual, http.StatusBadRequest)
			}
		})

		Convey("When a POST hits the standings route", func() {
			resp, err := http.Post(srv.URL+"/standings", "application/json", nil)
			So(err, ShouldBeNil)
			resp.Body.Close()

			Convey("Then the route is not found for that method", func() {
				So(resp.StatusCode, ShouldEqual, http.StatusNotFound)
			})
		})
	})
}

func TestStandingsLimitCap(t *testing.T) {
	Convey("Given a server with a small maximum limit", t, func() {
		srv := newTestServer(demoDeps(), 2)
		defer srv.Close()

		Convey("When the request exceeds the cap", func() {
			resp, err := http.Get(srv.URL + "/standings?limit=50")
			So(err, ShouldBeNil)
			defer resp.Body.Close()

			Convey("Then it is rejected as a bad request", func() {
				So(resp.StatusCode, ShouldEqual, http.StatusBadRequest)
				var body struct {
					Code string `json:"code"`
				}
				So(json.NewDecoder(resp.Body).Decode(&body), ShouldBeNil)
				So(body.Code, ShouldEqual, "limit_exceeded")
			})
		})
	})
}

func TestStatsEndpoint(t *testing.T) {
	Convey("Given a registered API server", t, func() {
		srv := newTestServer(demoDeps(), 200)
		defer srv.Close()

		Convey("When GET /stats is requested", func() {
			resp, err := http.Get(srv.URL + "/stats")
			So(err, ShouldBeNil)
			defer resp.Body.Close()

			Convey("Then the service stats are served as JSON", func() {
				So(resp.StatusCode, ShouldEqual, http.StatusOK)
				var stats map[string]interface{}
				So(json.NewDecoder(resp.Body).Decode(&stats), ShouldBeNil)
				So(stats["participants"], ShouldEqual, 3)
			})
		})
	})
}

func TestHealthEndpoint(t *testing.T) {
	Convey("Given a registered API server", t, func() {
		srv := newTestServer(demoDeps(), 200)
		defer srv.Close()

		Convey("When GET /healthz is requested", func() {
			resp, err := http.Get(srv.URL + "/healthz")
			So(err, ShouldBeNil)
			defer resp.Body.Close()

			Convey("Then the metrics exposition answers", func() {
				So(resp.StatusCode, ShouldEqual, http.StatusOK)
			})
		})
	})
}
