package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/guttman/pickx/internal/adapters/archive"
	"github.com/guttman/pickx/internal/adapters/http/api"
	"github.com/guttman/pickx/internal/adapters/results"
	"github.com/guttman/pickx/internal/adapters/sheets"
	app "github.com/guttman/pickx/internal/app"
	"github.com/guttman/pickx/internal/config"
	"github.com/guttman/pickx/internal/domain/dedupe"
	"github.com/guttman/pickx/internal/domain/standings"
	"github.com/guttman/pickx/pkg/logger"
)

// HTTP server timeout constants.
const (
	readTimeout       = 10 * time.Second
	writeTimeout      = 10 * time.Second
	idleTimeout       = 60 * time.Second
	readHeaderTimeout = 5 * time.Second
	shutdownTimeout   = 30 * time.Second
)

func main() {
	// The custom registry in pkg/metrics carries everything we care about;
	// drop the default Go collectors so /healthz stays focused.
	prometheus.Unregister(collectors.NewGoCollector())
	prometheus.Unregister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	if err := logger.Init(); err != nil {
		os.Stderr.WriteString("failed to initialize logging: " + err.Error() + "\n")
		return
	}
	log := logger.Get()

	// Root context with cancel on SIGINT/SIGTERM.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load(ctx)
	if err != nil {
		os.Stderr.WriteString("failed to load config: " + err.Error() + "\n")
		return
	}
	if err := logger.SetLevelString(cfg.LogLevel); err != nil {
		log.Warn(ctx, "invalid log_level; falling back to info", logger.String("log_level", cfg.LogLevel), logger.Error(err))
		_ = logger.SetLevelString("info")
	}

	svc, cleanup, err := buildService(ctx, cfg, log)
	if err != nil {
		log.Error(ctx, "failed to build service", logger.Error(err))
		return
	}
	defer cleanup()

	// First cycle up front so the API serves data as soon as we listen.
	if err := svc.Refresh(ctx); err != nil {
		log.Warn(ctx, "initial refresh interrupted", logger.Error(err))
	}
	go refreshLoop(ctx, svc, time.Duration(cfg.RefreshIntervalS)*time.Second, log)

	mux := http.NewServeMux()
	apiServer := api.NewServer(svc, svc, cfg.MaxStandingsLimit)
	apiServer.Register(ctx, mux)

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           mux,
		ReadTimeout:       readTimeout,
		WriteTimeout:      writeTimeout,
		IdleTimeout:       idleTimeout,
		ReadHeaderTimeout: readHeaderTimeout,
	}

	go func() {
		log.Info(ctx, "starting HTTP server", logger.String("addr", cfg.Addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			os.Stderr.WriteString("HTTP server failed: " + err.Error() + "\n")
		}
	}()

	<-ctx.Done()
	log.Info(ctx, "shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error(ctx, "server shutdown failed", logger.Error(err))
	}
	log.Info(ctx, "server stopped")
}

// refreshLoop drives one cycle per tick. Cycles are synchronous and
// serialized inside the service, so a slow cycle simply delays the next.
func refreshLoop(ctx context.Context, svc *app.Service, interval time.Duration, log logger.Logger) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := svc.Refresh(ctx); err != nil {
				log.Warn(ctx, "refresh interrupted", logger.Error(err))
				return
			}
		}
	}
}

// buildService assembles the service from configuration. The returned
// cleanup closes any resources the archive backend holds.
func buildService(ctx context.Context, cfg *config.Config, log logger.Logger) (*app.Service, func(), error) {
	opts := []app.Option{
		app.WithLogger(log.Named("service")),
		app.WithEngine(standings.New(standings.WithMaxWins(cfg.MaxWins))),
		app.WithResultsSource(buildSource(cfg)),
	}
	cleanup := func() {}

	if cfg.SpreadsheetID != "" {
		sheetClient, err := sheets.NewClient(ctx, cfg.SpreadsheetID, cfg.CredentialsFile,
			sheets.WithPicksRange(cfg.PicksRange),
			sheets.WithSeedsRange(cfg.SeedsRange),
			sheets.WithSeedTTL(time.Duration(cfg.SeedCacheTTLS)*time.Second),
		)
		if err != nil {
			return nil, nil, err
		}
		opts = append(opts, app.WithPicksSource(sheetClient), app.WithSeedsSource(sheetClient))
	} else {
		log.Warn(ctx, "no spreadsheet_id configured; running without picks or seeds")
	}

	switch cfg.ArchiveBackend {
	case config.ArchiveFile:
		opts = append(opts, app.WithArchive(archive.NewFileStore(cfg.ArchiveDir)))
	case config.ArchivePostgres:
		store, err := archive.NewPGStore(ctx, cfg.PostgresDSN)
		if err != nil {
			return nil, nil, err
		}
		cleanup = func() { _ = store.Close() }
		opts = append(opts, app.WithArchive(store))
	case config.ArchiveNone:
		log.Warn(ctx, "archive disabled; standings will not carry across days")
	}

	return app.New(opts...), cleanup, nil
}

// buildSource constructs the configured results feed.
func buildSource(cfg *config.Config) results.Source {
	deduper := dedupe.NewInMemoryDeduper(dedupe.WithMaxSize(cfg.DedupeSize))
	switch cfg.ResultsSource {
	case config.SourceCBS:
		return results.NewCBSSource(results.WithCBSURL(cfg.CBSURL))
	case config.SourceNCAA:
		return results.NewNCAASource(
			results.WithNCAAURLFormat(cfg.NCAAURLFormat),
			results.WithNCAADeduper(deduper),
			results.WithNCAAPlayIn(cfg.IncludePlayIn),
		)
	default:
		return results.NewESPNSource(
			results.WithESPNURL(cfg.ESPNURL),
			results.WithESPNDeduper(deduper),
			results.WithESPNPlayIn(cfg.IncludePlayIn),
		)
	}
}
