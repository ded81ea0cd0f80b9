// Package config defines service configuration structures and loading hooks.
//
// Conventions:
// - Provide New() defaults and Load(ctx) for file/env layering.
// - External errors are wrapped via this package's sentinel errors.
package config

// Supported results source and archive backend names.
const (
	SourceCBS  = "cbs"
	SourceESPN = "espn"
	SourceNCAA = "ncaa"

	ArchiveFile     = "file"
	ArchivePostgres = "postgres"
	ArchiveNone     = "none"
)

// Config contains process configuration.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// Addr configures the HTTP listen address, e.g. ":9080".
	Addr string `koanf:"addr"`

	// RefreshIntervalS is the seconds between refresh cycles.
	RefreshIntervalS int `koanf:"refresh_interval_s"`

	// ResultsSource selects the live feed: cbs, espn or ncaa.
	ResultsSource string `koanf:"results_source"`

	// CBSURL, ESPNURL and NCAAURLFormat override the feed endpoints.
	CBSURL        string `koanf:"cbs_url"`
	ESPNURL       string `koanf:"espn_url"`
	NCAAURLFormat string `koanf:"ncaa_url_format"`

	// IncludePlayIn keeps preliminary (First Four) games in the results.
	IncludePlayIn bool `koanf:"include_play_in"`

	// DedupeSize bounds the per-run seen-game-id cache.
	DedupeSize int `koanf:"dedupe_size"`

	// MaxWins is the per-team win ceiling of the bracket format.
	MaxWins int `koanf:"max_wins"`

	// SpreadsheetID and CredentialsFile locate the picks/seeds spreadsheet.
	SpreadsheetID   string `koanf:"spreadsheet_id"`
	CredentialsFile string `koanf:"credentials_file"`

	// PicksRange and SeedsRange are the A1 ranges of the two tables.
	PicksRange string `koanf:"picks_range"`
	SeedsRange string `koanf:"seeds_range"`

	// SeedCacheTTLS bounds the seed-table cache in seconds.
	SeedCacheTTLS int `koanf:"seed_cache_ttl_s"`

	// ArchiveBackend selects snapshot persistence: file, postgres or none.
	ArchiveBackend string `koanf:"archive_backend"`

	// ArchiveDir is the snapshot directory for the file backend.
	ArchiveDir string `koanf:"archive_dir"`

	// PostgresDSN is the connection string for the postgres backend.
	PostgresDSN string `koanf:"postgres_dsn"`

	// MaxStandingsLimit caps GET /standings?limit.
	MaxStandingsLimit int `koanf:"max_standings_limit"`
}

// New creates a Config populated with defaults.
func New() *Config {
	return &Config{
		LogLevel:          "info",
		Addr:              ":9080",
		RefreshIntervalS:  60,
		ResultsSource:     SourceESPN,
		IncludePlayIn:     false,
		DedupeSize:        10_000,
		MaxWins:           6,
		PicksRange:        "Picks!A:E",
		SeedsRange:        "Team Seeds!A:B",
		SeedCacheTTLS:     300,
		ArchiveBackend:    ArchiveFile,
		ArchiveDir:        "data/archive",
		MaxStandingsLimit: 200,
	}
}
