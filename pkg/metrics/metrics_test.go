package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	. "github.com/smartystreets/goconvey/convey"
)

func TestNewManager(t *testing.T) {
	Convey("Given a fresh registry", t, func() {
		reg := prometheus.NewRegistry()

		Convey("When a manager registers its metrics", func() {
			m := NewManager(WithRegistry(reg))

			Convey("Then every metric family gathers cleanly", func() {
				m.refreshCycles.Inc()
				m.inputDegraded.WithLabelValues("results").Inc()
				m.participants.Set(12)

				families, err := reg.Gather()
				So(err, ShouldBeNil)

				names := make(map[string]bool, len(families))
				for _, f := range families {
					names[f.GetName()] = true
				}
				So(names["pickx_standings_refresh_cycles_total"], ShouldBeTrue)
				So(names["pickx_standings_input_degraded_total"], ShouldBeTrue)
				So(names["pickx_standings_participants"], ShouldBeTrue)
			})
		})

		Convey("When the namespace and subsystem are overridden", func() {
			m := NewManager(
				WithRegistry(reg),
				WithNamespace("pool"),
				WithSubsystem("board"),
			)
			m.archiveWrites.Inc()

			Convey("Then metric names carry the override", func() {
				families, err := reg.Gather()
				So(err, ShouldBeNil)

				found := false
				for _, f := range families {
					if f.GetName() == "pool_board_archive_writes_total" {
						found = true
					}
				}
				So(found, ShouldBeTrue)
			})
		})
	})
}

func TestGlobalHelpers(t *testing.T) {
	Convey("Given the package-level recorders", t, func() {
		Convey("When the cycle helpers record", func() {
			So(func() {
				RecordRefreshCycle(0.42)
				RecordInputDegraded("picks")
				RecordGameEvents(5)
				RecordEventDuplicate()
				UpdateParticipants(30)
				UpdateEliminatedPicks(8)
				UpdateUnknownSeedPicks(1)
				RecordArchiveWrite()
				RecordArchiveError()
				RecordHTTPRequest("standings", "GET", "200")
				RecordHTTPRequestDuration("standings", "GET", "200", 0.003)
			}, ShouldNotPanic)
		})

		Convey("When the global registry gathers", func() {
			families, err := GetRegistry().Gather()

			Convey("Then the recorded families are present", func() {
				So(err, ShouldBeNil)
				So(len(families), ShouldBeGreaterThan, 0)
			})
		})
	})
}
