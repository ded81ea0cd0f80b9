// Package standings implements the pure standings aggregation engine: it
// folds one refresh cycle's normalized game events onto the snapshot baseline
// and produces ranked, elimination-aware participant standings.
//
// The engine performs no I/O and raises no domain errors of its own. Missing
// seeds or picks degrade to zero contributions rather than failing the whole
// computation; a single bad row must never blank the leaderboard.
package standings

import (
	"context"
	"sort"

	"github.com/guttman/pickx/internal/domain/model"
	"github.com/guttman/pickx/internal/domain/types"
)

// DefaultMaxWins is the number of games a champion wins in a 64-team
// single-elimination bracket.
const DefaultMaxWins = 6

// Option applies a configuration option to the Engine.
type Option func(*Engine)

// WithMaxWins sets the per-team win ceiling used for max-score projection.
func WithMaxWins(n int) Option {
	return func(e *Engine) {
		if n > 0 {
			e.maxWins = n
		}
	}
}

// Input carries everything one Compute call needs.
type Input struct {
	// Picks maps participant name to up to four picked team names. Blank
	// slots are tolerated and skipped.
	Picks map[string][]string

	// Seeds maps canonical team name to its bracket seed. Absence is not an
	// error; an unseeded team contributes zero points and is flagged.
	Seeds map[string]int

	// Baseline holds cumulative per-pick state from the most recent snapshot
	// strictly before today. Empty on the tournament's first day.
	Baseline map[model.StateKey]model.TeamState

	// Events are today's completed games, already normalized and deduplicated.
	Events []model.GameEvent
}

// Output is the result of one Compute call.
type Output struct {
	// Standings is the ranked leaderboard, ready for presentation.
	Standings []types.Standing

	// States is the updated cumulative per-pick state, for archival as the
	// next snapshot.
	States map[model.StateKey]model.TeamState
}

// Engine computes standings. It is stateless and safe to reuse across cycles.
type Engine struct {
	maxWins int
}

// New constructs an Engine with the given options.
func New(opts ...Option) *Engine {
	e := &Engine{maxWins: DefaultMaxWins}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Compute folds today's events onto the baseline and ranks participants.
// Running it twice with identical inputs yields identical output; today's
// wins are counted against the baseline exactly once.
func (e *Engine) Compute(ctx context.Context, in Input) Output {
	_ = ctx // reserved; the computation is synchronous and in-memory

	todayWins := model.WinCounts(in.Events)
	todayLosers := model.Losers(in.Events)

	out := Output{
		Standings: make([]types.Standing, 0, len(in.Picks)),
		States:    make(map[model.StateKey]model.TeamState, len(in.Picks)*4),
	}

	for participant, teams := range in.Picks {
		st := types.Standing{
			Participant: participant,
			Teams:       make([]types.TeamDetail, 0, len(teams)),
		}
		for _, team := range teams {
			if team == "" {
				continue // blank roster cell
			}
			seed, seedKnown := in.Seeds[team]

			base := in.Baseline[model.StateKey{Participant: participant, Team: team}]
			totalWins := base.Wins + todayWins[team]
			if totalWins > e.maxWins {
				totalWins = e.maxWins
			}
			_, lostToday := todayLosers[team]
			eliminated := base.Eliminated || lostToday

			current := totalWins * seed
			maxPts := current
			if !eliminated {
				maxPts = seed * e.maxWins
			}

			st.Teams = append(st.Teams, types.TeamDetail{
				Team:          team,
				Seed:          seed,
				SeedKnown:     seedKnown,
				Wins:          totalWins,
				Eliminated:    eliminated,
				CurrentPoints: current,
				MaxPoints:     maxPts,
			})
			st.CurrentScore += current
			st.MaxScore += maxPts

			out.States[model.StateKey{Participant: participant, Team: team}] = model.TeamState{
				Wins:       totalWins,
				Eliminated: eliminated,
			}
		}
		out.Standings = append(out.Standings, st)
	}

	rank(out.Standings)
	return out
}

// MaxWins reports the configured per-team win ceiling.
func (e *Engine) MaxWins() int {
	return e.maxWins
}

// rank orders standings by current score descending and assigns competition
// (minimum) ranks: ties share a rank, the next distinct score gets the
// one-based position. Within a rank, rows with more remaining upside come
// first; name breaks the final tie so output is deterministic.
func rank(rows []types.Standing) {
	sort.Slice(rows, func(i, j int) bool {
		a, b := rows[i], rows[j]
		if a.CurrentScore != b.CurrentScore {
			return a.CurrentScore > b.CurrentScore
		}
		au, bu := a.MaxScore-a.CurrentScore, b.MaxScore-b.CurrentScore
		if au != bu {
			return au > bu
		}
		return a.Participant < b.Participant
	})
	for i := range rows {
		if i > 0 && rows[i].CurrentScore == rows[i-1].CurrentScore {
			rows[i].Rank = rows[i-1].Rank
			continue
		}
		rows[i].Rank = i + 1
	}
}
