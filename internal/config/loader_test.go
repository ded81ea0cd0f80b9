package config_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	. "github.com/smartystreets/goconvey/convey"

	"github.com/guttman/pickx/internal/config"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("PICKX_CONFIG", "")

	Convey("Given no config file and no overrides", t, func() {
		Convey("When the config loads", func() {
			cfg, err := config.Load(context.Background())

			Convey("Then the defaults apply", func() {
				So(err, ShouldBeNil)
				So(cfg.Addr, ShouldEqual, ":9080")
				So(cfg.RefreshIntervalS, ShouldEqual, 60)
				So(cfg.ResultsSource, ShouldEqual, config.SourceESPN)
				So(cfg.ArchiveBackend, ShouldEqual, config.ArchiveFile)
				So(cfg.MaxWins, ShouldEqual, 6)
				So(cfg.MaxStandingsLimit, ShouldEqual, 200)
			})
		})
	})
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Setenv("PICKX_CONFIG", "")
	t.Setenv("PICKX_ADDR", ":8123")
	t.Setenv("PICKX_RESULTS_SOURCE", "ncaa")
	t.Setenv("PICKX_REFRESH_INTERVAL_S", "15")
	t.Setenv("PICKX_ARCHIVE_BACKEND", "none")

	Convey("Given PICKX_ environment overrides", t, func() {
		Convey("When the config loads", func() {
			cfg, err := config.Load(context.Background())

			Convey("Then the env values win over defaults", func() {
				So(err, ShouldBeNil)
				So(cfg.Addr, ShouldEqual, ":8123")
				So(cfg.ResultsSource, ShouldEqual, config.SourceNCAA)
				So(cfg.RefreshIntervalS, ShouldEqual, 15)
				So(cfg.ArchiveBackend, ShouldEqual, config.ArchiveNone)
			})
		})
	})
}

func TestLoadConfigFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "pickx.yaml")
	body := []byte("addr: \":7070\"\nresults_source: cbs\ninclude_play_in: true\n")
	if err := os.WriteFile(path, body, 0o644); err != nil {
		t.Fatal(err)
	}
	t.Setenv("PICKX_CONFIG", path)
	t.Setenv("PICKX_ADDR", ":6060")

	Convey("Given a YAML file plus an env override for one key", t, func() {
		Convey("When the config loads", func() {
			cfg, err := config.Load(context.Background())

			Convey("Then env beats file beats defaults", func() {
				So(err, ShouldBeNil)
				So(cfg.Addr, ShouldEqual, ":6060")
				So(cfg.ResultsSource, ShouldEqual, config.SourceCBS)
				So(cfg.IncludePlayIn, ShouldBeTrue)
				So(cfg.RefreshIntervalS, ShouldEqual, 60)
			})
		})
	})
}

func TestLoadValidation(t *testing.T) {
	Convey("Given invalid configuration values", t, func() {
		cases := map[string]string{
			"PICKX_RESULTS_SOURCE":  "yahoo",
			"PICKX_ARCHIVE_BACKEND": "s3",
			"PICKX_MAX_WINS":        "0",
		}

		for key, value := range cases {
			Convey("When "+key+" is "+value, func() {
				t.Setenv("PICKX_CONFIG", "")
				t.Setenv(key, value)
				_, err := config.Load(context.Background())

				Convey("Then loading fails with an invalid-config error", func() {
					So(errors.Is(err, config.ErrInvalidConfig), ShouldBeTrue)
				})
			})
		}
	})
}

func TestLoadPostgresRequiresDSN(t *testing.T) {
	t.Setenv("PICKX_CONFIG", "")
	t.Setenv("PICKX_ARCHIVE_BACKEND", "postgres")

	Convey("Given the postgres archive backend without a DSN", t, func() {
		_, err := config.Load(context.Background())

		Convey("Then loading fails", func() {
			So(errors.Is(err, config.ErrInvalidConfig), ShouldBeTrue)
		})
	})
}

func TestLoadMissingFile(t *testing.T) {
	t.Setenv("PICKX_CONFIG", filepath.Join(t.TempDir(), "absent.yaml"))

	Convey("Given PICKX_CONFIG pointing at a missing file", t, func() {
		_, err := config.Load(context.Background())

		Convey("Then loading fails with a load error", func() {
			So(errors.Is(err, config.ErrLoadConfig), ShouldBeTrue)
		})
	})
}
