package results

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/guttman/pickx/internal/domain/dedupe"
	"github.com/guttman/pickx/internal/domain/model"
	"github.com/guttman/pickx/pkg/metrics"
)

// defaultESPNURL is the men's college basketball scoreboard endpoint.
const defaultESPNURL = "https://site.api.espn.com/apis/site/v2/sports/basketball/mens-college-basketball/scoreboard"

// ESPNOption applies a configuration option to the ESPN source.
type ESPNOption func(*ESPNSource)

// WithESPNURL overrides the scoreboard endpoint.
func WithESPNURL(url string) ESPNOption {
	return func(s *ESPNSource) {
		if url != "" {
			s.url = url
		}
	}
}

// WithESPNClient overrides the HTTP client.
func WithESPNClient(c *http.Client) ESPNOption {
	return func(s *ESPNSource) {
		if c != nil {
			s.client = c
		}
	}
}

// WithESPNDeduper installs a deduper so game IDs already processed in this
// run are not re-emitted on later fetches.
func WithESPNDeduper(d dedupe.Deduper) ESPNOption {
	return func(s *ESPNSource) {
		s.deduper = d
	}
}

// WithESPNPlayIn includes preliminary (First Four) games, which are filtered
// out by default.
func WithESPNPlayIn(include bool) ESPNOption {
	return func(s *ESPNSource) {
		s.includePlayIn = include
	}
}

// ESPNSource normalizes the ESPN site API scoreboard JSON. The feed exposes
// stable per-event IDs, so an optional deduper suppresses re-emission of
// games already counted earlier in the same run.
type ESPNSource struct {
	url           string
	client        *http.Client
	deduper       dedupe.Deduper
	includePlayIn bool
}

// NewESPNSource constructs an ESPN scoreboard source.
func NewESPNSource(opts ...ESPNOption) *ESPNSource {
	s := &ESPNSource{
		url:    defaultESPNURL,
		client: newHTTPClient(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Name identifies the source.
func (s *ESPNSource) Name() string { return "espn" }

// espnScoreboard mirrors the subset of the scoreboard schema we read.
type espnScoreboard struct {
	Events []struct {
		ID           string `json:"id"`
		Competitions []struct {
			Status struct {
				Type struct {
					Completed bool `json:"completed"`
				} `json:"type"`
			} `json:"status"`
			Notes []struct {
				Headline string `json:"headline"`
			} `json:"notes"`
			Competitors []struct {
				Winner bool   `json:"winner"`
				Score  string `json:"score"`
				Team   struct {
					// Location is the school name; Name is the nickname and
					// must not be used as the canonical identity.
					Location string `json:"location"`
					Name     string `json:"name"`
				} `json:"team"`
			} `json:"competitors"`
		} `json:"competitions"`
	} `json:"events"`
}

// Fetch downloads the scoreboard and emits one event per completed game.
func (s *ESPNSource) Fetch(ctx context.Context) ([]model.GameEvent, error) {
	body, err := httpGet(ctx, s.client, s.url)
	if err != nil {
		return nil, err
	}

	var sb espnScoreboard
	if err := json.Unmarshal(body, &sb); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrBadPayload, err)
	}

	events := make([]model.GameEvent, 0, len(sb.Events))
	for _, ev := range sb.Events {
		if len(ev.Competitions) == 0 {
			continue
		}
		comp := ev.Competitions[0]
		if !comp.Status.Type.Completed {
			continue
		}
		if !s.includePlayIn && isFirstFour(firstHeadline(comp.Notes)) {
			continue
		}
		if len(comp.Competitors) != 2 {
			continue // malformed record; skip, do not abort the batch
		}

		winner, loser, ok := decideWinner(
			comp.Competitors[0].Team.Location, parseScore(comp.Competitors[0].Score), comp.Competitors[0].Winner,
			comp.Competitors[1].Team.Location, parseScore(comp.Competitors[1].Score), comp.Competitors[1].Winner,
		)
		if !ok {
			continue
		}
		if s.deduper != nil && s.deduper.SeenAndRecord(ctx, ev.ID) {
			metrics.RecordEventDuplicate()
			continue
		}
		events = append(events, model.GameEvent{GameID: ev.ID, Winner: winner, Loser: loser})
	}
	return events, nil
}

func firstHeadline(notes []struct {
	Headline string `json:"headline"`
}) string {
	if len(notes) == 0 {
		return ""
	}
	return notes[0].Headline
}

// isFirstFour reports whether round metadata identifies a play-in game.
func isFirstFour(round string) bool {
	return strings.Contains(strings.ToLower(round), "first four")
}

// parseScore tolerates missing or non-numeric score fields by treating them
// as zero.
func parseScore(s string) int {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil || n < 0 {
		return 0
	}
	return n
}

// decideWinner resolves a completed game: an explicit winner flag takes
// precedence, otherwise one side's score must strictly exceed the other's.
// Ties resolve to nothing. Empty team names invalidate the record.
func decideWinner(nameA string, scoreA int, flagA bool, nameB string, scoreB int, flagB bool) (winner, loser string, ok bool) {
	if nameA == "" || nameB == "" {
		return "", "", false
	}
	switch {
	case flagA && !flagB:
		return nameA, nameB, true
	case flagB && !flagA:
		return nameB, nameA, true
	case scoreA > scoreB:
		return nameA, nameB, true
	case scoreB > scoreA:
		return nameB, nameA, true
	default:
		return "", "", false
	}
}
