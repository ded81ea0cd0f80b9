// Package types contains common read-model types used across the application.
package types

// TeamDetail is the per-pick breakdown behind a standing. SeedKnown is false
// when the team was absent from the seed table; such a team contributes zero
// points but stays visible as a data-quality signal.
type TeamDetail struct {
	Team          string `json:"team"`
	Seed          int    `json:"seed"`
	SeedKnown     bool   `json:"seed_known"`
	Wins          int    `json:"wins"`
	Eliminated    bool   `json:"eliminated"`
	CurrentPoints int    `json:"current_points"`
	MaxPoints     int    `json:"max_points"`
}

// Standing represents one ranked leaderboard row. Rank is a standard
// competition (minimum) rank: ties share a rank and the next distinct score
// skips the tied positions.
type Standing struct {
	Rank         int          `json:"rank"`
	Participant  string       `json:"participant"`
	CurrentScore int          `json:"current_score"`
	MaxScore     int          `json:"max_score"`
	Teams        []TeamDetail `json:"teams"`
}
