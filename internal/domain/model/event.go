// Package model contains domain models passed between layers.
package model

// GameEvent represents a single completed tournament game in canonical form.
// Winner and Loser are canonical team names (school/location). GameID is the
// upstream feed's stable identifier when one exists, empty otherwise.
type GameEvent struct {
	GameID string
	Winner string
	Loser  string
}

// StateKey identifies cumulative state for one picked team of one participant.
type StateKey struct {
	Participant string
	Team        string
}

// TeamState is the cumulative per-pick state carried across daily snapshots.
// Wins is monotonically non-decreasing; Eliminated never reverts to false.
type TeamState struct {
	Wins       int  `json:"wins"`
	Eliminated bool `json:"eliminated"`
}

// WinCounts tallies how many times each team appears as a winner in events.
func WinCounts(events []GameEvent) map[string]int {
	wins := make(map[string]int, len(events))
	for _, e := range events {
		if e.Winner != "" {
			wins[e.Winner]++
		}
	}
	return wins
}

// Losers collects the set of teams that lost at least once in events.
func Losers(events []GameEvent) map[string]struct{} {
	out := make(map[string]struct{}, len(events))
	for _, e := range events {
		if e.Loser != "" {
			out[e.Loser] = struct{}{}
		}
	}
	return out
}
