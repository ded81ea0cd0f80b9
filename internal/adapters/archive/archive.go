// Package archive persists one standings snapshot per calendar date and
// reconstructs the baseline state for the next day's cycles.
package archive

import (
	"context"
	"time"

	"github.com/guttman/pickx/internal/domain/model"
)

// DateFormat is the canonical snapshot date key layout.
const DateFormat = "2006-01-02"

// Row is one participant's archived state for a date: the scores at archive
// time plus the per-team detail blob sufficient to rebuild the baseline.
type Row struct {
	Participant  string                     `json:"participant"`
	CurrentScore int                        `json:"current_score"`
	MaxScore     int                        `json:"max_score"`
	Teams        map[string]model.TeamState `json:"teams"`
}

// Store reads and writes dated snapshots.
type Store interface {
	// Write replaces the snapshot for date (YYYY-MM-DD) with rows. Writing
	// twice on the same date overwrites; there is never more than one record
	// set per date.
	Write(ctx context.Context, date string, rows []Row) error

	// LatestBefore returns the most recent snapshot strictly before date,
	// with its date key. Returns ErrNoSnapshot when no earlier snapshot
	// exists (first run of the tournament).
	LatestBefore(ctx context.Context, date string) (string, []Row, error)
}

// Baseline flattens snapshot rows into the engine's baseline state map.
func Baseline(rows []Row) map[model.StateKey]model.TeamState {
	baseline := make(map[model.StateKey]model.TeamState, len(rows)*4)
	for _, row := range rows {
		for team, state := range row.Teams {
			baseline[model.StateKey{Participant: row.Participant, Team: team}] = state
		}
	}
	return baseline
}

// ValidDate reports whether date parses as a snapshot date key.
func ValidDate(date string) bool {
	_, err := time.Parse(DateFormat, date)
	return err == nil
}
