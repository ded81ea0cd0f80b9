package results

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/guttman/pickx/internal/domain/dedupe"
	"github.com/guttman/pickx/internal/domain/model"
	"github.com/guttman/pickx/pkg/metrics"
)

// defaultNCAAURLFormat is the casablanca scoreboard endpoint; the verb is
// filled with today's date.
const defaultNCAAURLFormat = "https://data.ncaa.com/casablanca/scoreboard/basketball-men/d1/%s/scoreboard.json"

// NCAAOption applies a configuration option to the NCAA source.
type NCAAOption func(*NCAASource)

// WithNCAAURLFormat overrides the endpoint format string. It must contain one
// %s verb for the YYYY/MM/DD date segment.
func WithNCAAURLFormat(format string) NCAAOption {
	return func(s *NCAASource) {
		if format != "" {
			s.urlFormat = format
		}
	}
}

// WithNCAAClient overrides the HTTP client.
func WithNCAAClient(c *http.Client) NCAAOption {
	return func(s *NCAASource) {
		if c != nil {
			s.client = c
		}
	}
}

// WithNCAADeduper installs a deduper keyed by the feed's game IDs.
func WithNCAADeduper(d dedupe.Deduper) NCAAOption {
	return func(s *NCAASource) {
		s.deduper = d
	}
}

// WithNCAAPlayIn includes First Four games, filtered out by default.
func WithNCAAPlayIn(include bool) NCAAOption {
	return func(s *NCAASource) {
		s.includePlayIn = include
	}
}

// WithNCAAClock overrides the clock used to build today's URL; tests pin it.
func WithNCAAClock(now func() time.Time) NCAAOption {
	return func(s *NCAASource) {
		if now != nil {
			s.now = now
		}
	}
}

// NCAASource normalizes the NCAA scoreboard JSON for the current day. Game
// IDs are stable, so an optional deduper suppresses repeats within a run.
type NCAASource struct {
	urlFormat     string
	client        *http.Client
	deduper       dedupe.Deduper
	includePlayIn bool
	now           func() time.Time
}

// NewNCAASource constructs an NCAA scoreboard source.
func NewNCAASource(opts ...NCAAOption) *NCAASource {
	s := &NCAASource{
		urlFormat: defaultNCAAURLFormat,
		client:    newHTTPClient(),
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Name identifies the source.
func (s *NCAASource) Name() string { return "ncaa" }

// ncaaScoreboard mirrors the subset of the casablanca schema we read.
type ncaaScoreboard struct {
	Games []struct {
		Game struct {
			GameID       string   `json:"gameID"`
			GameState    string   `json:"gameState"`
			BracketRound string   `json:"bracketRound"`
			Home         ncaaSide `json:"home"`
			Away         ncaaSide `json:"away"`
		} `json:"game"`
	} `json:"games"`
}

type ncaaSide struct {
	Winner bool   `json:"winner"`
	Score  string `json:"score"`
	Names  struct {
		Short string `json:"short"`
		Full  string `json:"full"`
	} `json:"names"`
}

// Fetch downloads today's scoreboard and emits one event per final game.
func (s *NCAASource) Fetch(ctx context.Context) ([]model.GameEvent, error) {
	url := fmt.Sprintf(s.urlFormat, s.now().Format("2006/01/02"))
	body, err := httpGet(ctx, s.client, url)
	if err != nil {
		return nil, err
	}

	var sb ncaaScoreboard
	if err := json.Unmarshal(body, &sb); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrBadPayload, err)
	}

	events := make([]model.GameEvent, 0, len(sb.Games))
	for _, g := range sb.Games {
		game := g.Game
		if game.GameState != "final" {
			continue
		}
		if !s.includePlayIn && isFirstFour(game.BracketRound) {
			continue
		}
		winner, loser, ok := decideWinner(
			game.Home.Names.Short, parseScore(game.Home.Score), game.Home.Winner,
			game.Away.Names.Short, parseScore(game.Away.Score), game.Away.Winner,
		)
		if !ok {
			continue
		}
		if s.deduper != nil && game.GameID != "" && s.deduper.SeenAndRecord(ctx, game.GameID) {
			metrics.RecordEventDuplicate()
			continue
		}
		events = append(events, model.GameEvent{GameID: game.GameID, Winner: winner, Loser: loser})
	}
	return events, nil
}
