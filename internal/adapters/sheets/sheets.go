// Package sheets reads the pool's picks roster and team seed table from a
// Google Sheets spreadsheet, the pool's system of record for entries.
package sheets

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	"google.golang.org/api/option"
	sheetsapi "google.golang.org/api/sheets/v4"
)

// Default sheet configuration constants.
const (
	defaultPicksRange = "Picks!A:E"
	defaultSeedsRange = "Team Seeds!A:B"
	defaultSeedTTL    = 5 * time.Minute
	maxPicksPerEntry  = 4
)

// PicksSource provides the participant -> picked teams roster.
type PicksSource interface {
	// Picks returns up to four picked team names per participant. Blank rows
	// are ignored.
	Picks(ctx context.Context) (map[string][]string, error)
}

// SeedsSource provides the team -> seed table.
type SeedsSource interface {
	// Seeds returns the seed per canonical team name. Results may be served
	// from a bounded-TTL cache to limit external calls.
	Seeds(ctx context.Context) (map[string]int, error)
}

// Option applies a configuration option to the Client.
type Option func(*Client)

// WithPicksRange sets the A1 range holding the picks table.
func WithPicksRange(r string) Option {
	return func(c *Client) {
		if r != "" {
			c.picksRange = r
		}
	}
}

// WithSeedsRange sets the A1 range holding the seed table.
func WithSeedsRange(r string) Option {
	return func(c *Client) {
		if r != "" {
			c.seedsRange = r
		}
	}
}

// WithSeedTTL bounds how long the seed table is cached.
func WithSeedTTL(ttl time.Duration) Option {
	return func(c *Client) {
		if ttl > 0 {
			c.seedTTL = ttl
		}
	}
}

// WithClock overrides the cache clock; tests pin it.
func WithClock(now func() time.Time) Option {
	return func(c *Client) {
		if now != nil {
			c.now = now
		}
	}
}

// valuesGetter abstracts the one Sheets call we make, so tests can stub the
// API without network access.
type valuesGetter interface {
	values(ctx context.Context, readRange string) ([][]interface{}, error)
}

// Client implements PicksSource and SeedsSource over one spreadsheet.
type Client struct {
	api           valuesGetter
	spreadsheetID string
	picksRange    string
	seedsRange    string

	seedTTL time.Duration
	now     func() time.Time

	mu            sync.Mutex
	cachedSeeds   map[string]int
	seedFetchedAt time.Time
}

// NewClient builds a Client authenticated with a service-account credentials
// file, mirroring how the pool spreadsheet is shared with a service account.
func NewClient(ctx context.Context, spreadsheetID, credentialsFile string, opts ...Option) (*Client, error) {
	svc, err := sheetsapi.NewService(ctx,
		option.WithCredentialsFile(credentialsFile),
		option.WithScopes(sheetsapi.SpreadsheetsReadonlyScope),
	)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrService, err)
	}
	return newClient(&sheetsAPI{svc: svc, spreadsheetID: spreadsheetID}, spreadsheetID, opts...), nil
}

func newClient(api valuesGetter, spreadsheetID string, opts ...Option) *Client {
	c := &Client{
		api:           api,
		spreadsheetID: spreadsheetID,
		picksRange:    defaultPicksRange,
		seedsRange:    defaultSeedsRange,
		seedTTL:       defaultSeedTTL,
		now:           time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// sheetsAPI is the real Sheets-backed valuesGetter.
type sheetsAPI struct {
	svc           *sheetsapi.Service
	spreadsheetID string
}

func (a *sheetsAPI) values(ctx context.Context, readRange string) ([][]interface{}, error) {
	resp, err := a.svc.Spreadsheets.Values.Get(a.spreadsheetID, readRange).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("%w: range %q: %w", ErrFetch, readRange, err)
	}
	return resp.Values, nil
}

// Picks reads the roster table. The first row is treated as a header.
func (c *Client) Picks(ctx context.Context) (map[string][]string, error) {
	rows, err := c.api.values(ctx, c.picksRange)
	if err != nil {
		return nil, err
	}
	return ParsePicksRows(rows), nil
}

// Seeds reads the seed table, serving a cached copy within the TTL window.
func (c *Client) Seeds(ctx context.Context) (map[string]int, error) {
	c.mu.Lock()
	if c.cachedSeeds != nil && c.now().Sub(c.seedFetchedAt) < c.seedTTL {
		seeds := c.cachedSeeds
		c.mu.Unlock()
		return seeds, nil
	}
	c.mu.Unlock()

	rows, err := c.api.values(ctx, c.seedsRange)
	if err != nil {
		return nil, err
	}
	seeds := ParseSeedRows(rows)

	c.mu.Lock()
	c.cachedSeeds = seeds
	c.seedFetchedAt = c.now()
	c.mu.Unlock()
	return seeds, nil
}

// ParsePicksRows turns raw sheet rows into the roster map. Layout: a header
// row, then one row per participant with up to four team cells. Blank
// participant cells drop the row; blank team cells drop the slot.
func ParsePicksRows(rows [][]interface{}) map[string][]string {
	picks := make(map[string][]string, len(rows))
	for i, row := range rows {
		if i == 0 || len(row) == 0 {
			continue
		}
		participant := cellString(row, 0)
		if participant == "" {
			continue
		}
		teams := make([]string, 0, maxPicksPerEntry)
		for col := 1; col <= maxPicksPerEntry && col < len(row); col++ {
			if team := cellString(row, col); team != "" {
				teams = append(teams, team)
			}
		}
		if len(teams) > 0 {
			picks[participant] = teams
		}
	}
	return picks
}

// ParseSeedRows turns raw sheet rows into the seed table. Layout: a header
// row, then one (team, seed) row per team. Rows with a blank team or a
// non-numeric seed are skipped; the engine flags the resulting unknown seeds.
func ParseSeedRows(rows [][]interface{}) map[string]int {
	seeds := make(map[string]int, len(rows))
	for i, row := range rows {
		if i == 0 || len(row) < 2 {
			continue
		}
		team := cellString(row, 0)
		if team == "" {
			continue
		}
		seed, err := strconv.Atoi(cellString(row, 1))
		if err != nil || seed < 0 {
			continue
		}
		seeds[team] = seed
	}
	return seeds
}

func cellString(row []interface{}, col int) string {
	if col >= len(row) || row[col] == nil {
		return ""
	}
	return strings.TrimSpace(fmt.Sprint(row[col]))
}
