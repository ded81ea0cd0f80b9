// Package service orchestrates one refresh cycle end to end: fetch picks,
// seeds and live results, fold them onto the snapshot baseline, publish the
// ranked standings, and archive the day's state.
package service

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/guttman/pickx/internal/adapters/archive"
	"github.com/guttman/pickx/internal/adapters/results"
	"github.com/guttman/pickx/internal/adapters/sheets"
	"github.com/guttman/pickx/internal/domain/model"
	"github.com/guttman/pickx/internal/domain/standings"
	"github.com/guttman/pickx/internal/domain/types"
	"github.com/guttman/pickx/pkg/logger"
	"github.com/guttman/pickx/pkg/metrics"
)

// Input names used in degradation warnings and metrics labels.
const (
	inputPicks    = "picks"
	inputSeeds    = "seeds"
	inputResults  = "results"
	inputBaseline = "baseline"
	inputArchive  = "archive"
)

// Service runs refresh cycles and serves the latest standings to readers.
// Cycles never overlap: Refresh serializes on an internal mutex, so the
// engine only ever sees one cycle's state at a time.
type Service struct {
	cycleMu sync.Mutex // one cycle at a time

	engine   *standings.Engine
	source   results.Source
	picksSrc sheets.PicksSource
	seedsSrc sheets.SeedsSource
	store    archive.Store

	logger logger.Logger
	now    func() time.Time

	// Published read state.
	stateMu       sync.RWMutex
	lastStandings []types.Standing
	lastRefresh   time.Time
	lastWarnings  []string

	// Last good inputs, used to degrade gracefully when a source fails.
	lastPicks map[string][]string
	lastSeeds map[string]int

	// Today's accumulated events. Sources with stable game ids may suppress
	// already-seen games on later fetches, so the day's view is kept here,
	// keyed by id; feeds without ids re-list the whole day and replace their
	// set on every successful fetch. Reset when the date rolls over.
	eventsDate string
	eventsByID map[string]model.GameEvent
	eventsNoID []model.GameEvent

	// Baseline cache, reloaded when the date rolls over.
	baselineDate string
	baseline     map[model.StateKey]model.TeamState
}

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithResultsSource sets the live results feed.
func WithResultsSource(src results.Source) Option {
	return func(s *Service) {
		if src != nil {
			s.source = src
		}
	}
}

// WithPicksSource sets the roster source.
func WithPicksSource(src sheets.PicksSource) Option {
	return func(s *Service) {
		if src != nil {
			s.picksSrc = src
		}
	}
}

// WithSeedsSource sets the seed table source.
func WithSeedsSource(src sheets.SeedsSource) Option {
	return func(s *Service) {
		if src != nil {
			s.seedsSrc = src
		}
	}
}

// WithArchive sets the snapshot store. Without one the service still
// computes standings but carries no state across days.
func WithArchive(store archive.Store) Option {
	return func(s *Service) {
		s.store = store
	}
}

// WithEngine replaces the standings engine.
func WithEngine(e *standings.Engine) Option {
	return func(s *Service) {
		if e != nil {
			s.engine = e
		}
	}
}

// WithLogger sets a custom logger for the service.
func WithLogger(l logger.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithClock overrides the service clock; tests pin it to cross date
// boundaries deterministically.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}

// New constructs a Service with default configuration.
func New(opts ...Option) *Service {
	s := &Service{
		engine: standings.New(),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.logger == nil {
		s.logger = logger.Get().Named("service")
	}
	return s
}

// Refresh runs one full cycle: normalize -> compute -> publish -> archive.
// Every external input is wrapped so its failure degrades that one input to
// an empty or last-known value; the cycle itself never fails. The returned
// error is non-nil only when ctx is done.
func (s *Service) Refresh(ctx context.Context) error {
	s.cycleMu.Lock()
	defer s.cycleMu.Unlock()

	if err := ctx.Err(); err != nil {
		return err
	}

	start := s.now()
	today := start.Format(archive.DateFormat)
	var warnings []string

	picks := s.fetchPicks(ctx, &warnings)
	seeds := s.fetchSeeds(ctx, &warnings)
	events := s.fetchEvents(ctx, today, &warnings)
	baseline := s.loadBaseline(ctx, today, &warnings)

	out := s.engine.Compute(ctx, standings.Input{
		Picks:    picks,
		Seeds:    seeds,
		Baseline: baseline,
		Events:   events,
	})

	if unknown := unknownSeedTeams(out.Standings); len(unknown) > 0 {
		warnings = append(warnings, "teams missing from seed table: "+strings.Join(unknown, ", "))
	}

	s.publish(out.Standings, warnings, start)
	s.updateGauges(out.Standings)
	s.writeArchive(ctx, today, out, &warnings)

	metrics.RecordRefreshCycle(s.now().Sub(start).Seconds())
	s.logger.Info(ctx, "refresh cycle complete",
		logger.Int("participants", len(out.Standings)),
		logger.Int("events", len(events)),
		logger.Int("warnings", len(warnings)),
	)
	return nil
}

func (s *Service) fetchPicks(ctx context.Context, warnings *[]string) map[string][]string {
	if s.picksSrc == nil {
		return nil
	}
	picks, err := s.picksSrc.Picks(ctx)
	if err != nil {
		s.degrade(ctx, inputPicks, err, warnings)
		return s.lastPicks
	}
	s.lastPicks = picks
	return picks
}

func (s *Service) fetchSeeds(ctx context.Context, warnings *[]string) map[string]int {
	if s.seedsSrc == nil {
		return nil
	}
	seeds, err := s.seedsSrc.Seeds(ctx)
	if err != nil {
		s.degrade(ctx, inputSeeds, err, warnings)
		return s.lastSeeds
	}
	s.lastSeeds = seeds
	return seeds
}

// fetchEvents folds a fetch into today's accumulated event view. The engine
// recomputes from scratch every cycle, so games a deduping source stops
// re-listing must stay counted here for the rest of the day; a fetch failure
// degrades to the day's view so far, never to an empty one.
func (s *Service) fetchEvents(ctx context.Context, today string, warnings *[]string) []model.GameEvent {
	if s.source == nil {
		return nil
	}
	if s.eventsDate != today {
		s.eventsDate = today
		s.eventsByID = make(map[string]model.GameEvent)
		s.eventsNoID = nil
	}

	fetched, err := s.source.Fetch(ctx)
	if err != nil {
		s.degrade(ctx, inputResults, err, warnings)
	} else {
		metrics.RecordGameEvents(len(fetched))
		var noID []model.GameEvent
		for _, ev := range fetched {
			if ev.GameID == "" {
				noID = append(noID, ev)
				continue
			}
			s.eventsByID[ev.GameID] = ev
		}
		// Id-less feeds re-list the full day, so their set is replaced.
		s.eventsNoID = noID
	}

	events := make([]model.GameEvent, 0, len(s.eventsByID)+len(s.eventsNoID))
	for _, ev := range s.eventsByID {
		events = append(events, ev)
	}
	return append(events, s.eventsNoID...)
}

// loadBaseline returns the baseline for today, serving a per-date cache. The
// baseline is always the snapshot strictly before today; a same-day snapshot
// is never applied, so intra-day recomputation starts from scratch.
func (s *Service) loadBaseline(ctx context.Context, today string, warnings *[]string) map[model.StateKey]model.TeamState {
	if s.store == nil {
		return nil
	}
	if s.baselineDate == today {
		return s.baseline
	}
	date, rows, err := s.store.LatestBefore(ctx, today)
	if errors.Is(err, archive.ErrNoSnapshot) {
		s.baselineDate = today
		s.baseline = nil
		return nil
	}
	if err != nil {
		// Not cached: retried next cycle.
		s.degrade(ctx, inputBaseline, err, warnings)
		return nil
	}
	s.logger.Info(ctx, "loaded snapshot baseline", logger.String("date", date))
	s.baselineDate = today
	s.baseline = archive.Baseline(rows)
	return s.baseline
}

func (s *Service) writeArchive(ctx context.Context, today string, out standings.Output, warnings *[]string) {
	if s.store == nil {
		return
	}
	rows := buildRows(out)
	if err := s.store.Write(ctx, today, rows); err != nil {
		metrics.RecordArchiveError()
		s.degrade(ctx, inputArchive, err, warnings)
		s.appendWarnings(*warnings)
		return
	}
	metrics.RecordArchiveWrite()
}

func (s *Service) degrade(ctx context.Context, input string, err error, warnings *[]string) {
	metrics.RecordInputDegraded(input)
	*warnings = append(*warnings, fmt.Sprintf("%s unavailable: %v", input, err))
	s.logger.Warn(ctx, "input degraded", logger.String("input", input), logger.Error(err))
}

func (s *Service) publish(rows []types.Standing, warnings []string, at time.Time) {
	s.stateMu.Lock()
	defer s.stateMu.Unlock()
	s.lastStandings = rows
	s.lastWarnings = warnings
	s.lastRefresh = at
}

// appendWarnings refreshes the published warning list after a late failure.
func (s *Service) appendWarnings(warnings []string) {
	s.stateMu.Lock()
	defer s.stateMu.Unlock()
	s.lastWarnings = warnings
}

func (s *Service) updateGauges(rows []types.Standing) {
	var eliminated, unknown int
	for _, row := range rows {
		for _, t := range row.Teams {
			if t.Eliminated {
				eliminated++
			}
			if !t.SeedKnown {
				unknown++
			}
		}
	}
	metrics.UpdateParticipants(len(rows))
	metrics.UpdateEliminatedPicks(eliminated)
	metrics.UpdateUnknownSeedPicks(unknown)
}

// Standings returns up to limit rows of the latest ranked standings; a
// non-positive limit returns all rows.
func (s *Service) Standings(ctx context.Context, limit int) ([]types.Standing, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.stateMu.RLock()
	defer s.stateMu.RUnlock()
	rows := s.lastStandings
	if limit > 0 && limit < len(rows) {
		rows = rows[:limit]
	}
	out := make([]types.Standing, len(rows))
	copy(out, rows)
	return out, nil
}

// LastWarnings returns the warnings surfaced by the most recent cycle.
func (s *Service) LastWarnings() []string {
	s.stateMu.RLock()
	defer s.stateMu.RUnlock()
	out := make([]string, len(s.lastWarnings))
	copy(out, s.lastWarnings)
	return out
}

// GetStats returns service statistics for monitoring.
func (s *Service) GetStats() map[string]interface{} {
	s.stateMu.RLock()
	defer s.stateMu.RUnlock()

	stats := map[string]interface{}{
		"participants": len(s.lastStandings),
		"warnings":     len(s.lastWarnings),
		"max_wins":     s.engine.MaxWins(),
	}
	if !s.lastRefresh.IsZero() {
		stats["last_refresh"] = s.lastRefresh.UTC().Format(time.RFC3339)
	}
	if s.source != nil {
		stats["results_source"] = s.source.Name()
	}
	return stats
}

// buildRows converts engine output into archive rows, one per participant.
func buildRows(out standings.Output) []archive.Row {
	byParticipant := make(map[string]map[string]model.TeamState)
	for key, state := range out.States {
		teams := byParticipant[key.Participant]
		if teams == nil {
			teams = make(map[string]model.TeamState, 4)
			byParticipant[key.Participant] = teams
		}
		teams[key.Team] = state
	}

	rows := make([]archive.Row, 0, len(out.Standings))
	for _, st := range out.Standings {
		rows = append(rows, archive.Row{
			Participant:  st.Participant,
			CurrentScore: st.CurrentScore,
			MaxScore:     st.MaxScore,
			Teams:        byParticipant[st.Participant],
		})
	}
	return rows
}

// unknownSeedTeams lists picked teams flagged as absent from the seed table,
// deduplicated and sorted for a stable warning message.
func unknownSeedTeams(rows []types.Standing) []string {
	seen := make(map[string]struct{})
	for _, row := range rows {
		for _, t := range row.Teams {
			if !t.SeedKnown {
				seen[t.Team] = struct{}{}
			}
		}
	}
	out := make([]string, 0, len(seen))
	for team := range seen {
		out = append(out, team)
	}
	sort.Strings(out)
	return out
}
