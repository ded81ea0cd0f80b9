package config

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// Load builds a Config by layering defaults, optional file, and env vars.
// Order of precedence (low -> high):
//  1. defaults (New())
//  2. file (YAML) if PICKX_CONFIG is set
//  3. env (prefix PICKX_)
func Load(ctx context.Context) (*Config, error) {
	_ = ctx // reserved for future remote providers

	base := New()
	k := koanf.New(".")

	if path := os.Getenv("PICKX_CONFIG"); path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrLoadConfig, err)
		}
	}

	// Env keys like PICKX_REFRESH_INTERVAL_S map to refresh_interval_s;
	// underscores are preserved to match the koanf tags.
	envProvider := env.Provider("PICKX_", ".", func(s string) string {
		return strings.TrimPrefix(strings.ToLower(s), "pickx_")
	})
	if err := k.Load(envProvider, nil); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrLoadConfig, err)
	}

	cfg := *base
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrLoadConfig, err)
	}

	if err := validate(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func validate(cfg *Config) error {
	if cfg.Addr == "" {
		return fmt.Errorf("%w: addr must not be empty", ErrInvalidConfig)
	}
	if cfg.RefreshIntervalS <= 0 {
		return fmt.Errorf("%w: refresh_interval_s must be positive", ErrInvalidConfig)
	}
	switch cfg.ResultsSource {
	case SourceCBS, SourceESPN, SourceNCAA:
	default:
		return fmt.Errorf("%w: unknown results_source %q", ErrInvalidConfig, cfg.ResultsSource)
	}
	switch cfg.ArchiveBackend {
	case ArchiveFile, ArchivePostgres, ArchiveNone:
	default:
		return fmt.Errorf("%w: unknown archive_backend %q", ErrInvalidConfig, cfg.ArchiveBackend)
	}
	if cfg.ArchiveBackend == ArchivePostgres && cfg.PostgresDSN == "" {
		return fmt.Errorf("%w: postgres_dsn required for postgres archive", ErrInvalidConfig)
	}
	if cfg.MaxWins <= 0 {
		return fmt.Errorf("%w: max_wins must be positive", ErrInvalidConfig)
	}
	return nil
}
