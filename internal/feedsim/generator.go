// Package feedsim generates a synthetic day of tournament results and serves
// it in the ESPN scoreboard JSON shape, so the espn results source can be
// pointed at a local feed for end-to-end runs without the real tournament.
package feedsim

import (
	"fmt"
	"math/rand"

	"github.com/google/uuid"
)

// Game is one synthetic completed or in-progress game.
type Game struct {
	ID         string
	Home       string
	Away       string
	HomeScore  int
	AwayScore  int
	Completed  bool
	HomeWinner bool
	AwayWinner bool
	RoundNote  string
}

// Option applies a configuration option to the Generator.
type Option func(*Generator)

// WithTeams sets the team pool the generator draws from.
func WithTeams(teams []string) Option {
	return func(g *Generator) {
		if len(teams) > 1 {
			g.teams = teams
		}
	}
}

// WithSeed fixes the RNG seed for reproducible days.
func WithSeed(seed int64) Option {
	return func(g *Generator) {
		g.rng = rand.New(rand.NewSource(seed)) //nolint:gosec // simulation only
	}
}

// WithInProgressRatio sets the fraction of games left unfinished, which the
// source must ignore.
func WithInProgressRatio(ratio float64) Option {
	return func(g *Generator) {
		if ratio >= 0 && ratio < 1 {
			g.inProgressRatio = ratio
		}
	}
}

// Generator produces random tournament days.
type Generator struct {
	teams           []string
	rng             *rand.Rand
	inProgressRatio float64
}

// NewGenerator creates a Generator with configuration options.
func NewGenerator(opts ...Option) *Generator {
	g := &Generator{
		teams:           defaultTeams(),
		rng:             rand.New(rand.NewSource(rand.Int63())), //nolint:gosec // simulation only
		inProgressRatio: 0.2,
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Day pairs teams off into games with random scores. Each game gets a fresh
// uuid identifier so source-level dedup behaves like the real feed.
func (g *Generator) Day(games int) []Game {
	teams := make([]string, len(g.teams))
	copy(teams, g.teams)
	g.rng.Shuffle(len(teams), func(i, j int) { teams[i], teams[j] = teams[j], teams[i] })

	if max := len(teams) / 2; games > max {
		games = max
	}
	out := make([]Game, 0, games)
	for i := 0; i < games; i++ {
		home, away := teams[2*i], teams[2*i+1]
		hs, as := 55+g.rng.Intn(45), 55+g.rng.Intn(45)
		if hs == as {
			hs++ // basketball games do not tie
		}
		game := Game{
			ID:        uuid.NewString(),
			Home:      home,
			Away:      away,
			HomeScore: hs,
			AwayScore: as,
			Completed: g.rng.Float64() >= g.inProgressRatio,
		}
		if game.Completed {
			game.HomeWinner = hs > as
			game.AwayWinner = as > hs
		}
		out = append(out, game)
	}
	return out
}

func defaultTeams() []string {
	teams := make([]string, 0, 32)
	for i := 1; i <= 32; i++ {
		teams = append(teams, fmt.Sprintf("State %02d", i))
	}
	return teams
}
