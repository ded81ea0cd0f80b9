package feedsim

import (
	"encoding/json"
	"net/http"
	"strconv"
)

// Handler serves the current synthetic day as ESPN-shaped scoreboard JSON at
// any path. Regenerate swaps in a new day.
type Handler struct {
	games []Game
}

// NewHandler creates a Handler serving the given games.
func NewHandler(games []Game) *Handler {
	return &Handler{games: games}
}

// espn-shaped wire types, mirroring what the espn source reads.
type wireScoreboard struct {
	Events []wireEvent `json:"events"`
}

type wireEvent struct {
	ID           string            `json:"id"`
	Competitions []wireCompetition `json:"competitions"`
}

type wireCompetition struct {
	Status      wireStatus       `json:"status"`
	Notes       []wireNote       `json:"notes"`
	Competitors []wireCompetitor `json:"competitors"`
}

type wireStatus struct {
	Type wireStatusType `json:"type"`
}

type wireStatusType struct {
	Completed bool `json:"completed"`
}

type wireNote struct {
	Headline string `json:"headline"`
}

type wireCompetitor struct {
	Winner bool     `json:"winner"`
	Score  string   `json:"score"`
	Team   wireTeam `json:"team"`
}

type wireTeam struct {
	Location string `json:"location"`
	Name     string `json:"name"`
}

// ServeHTTP renders the scoreboard payload.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	sb := wireScoreboard{Events: make([]wireEvent, 0, len(h.games))}
	for _, g := range h.games {
		comp := wireCompetition{
			Status: wireStatus{Type: wireStatusType{Completed: g.Completed}},
			Competitors: []wireCompetitor{
				{Winner: g.HomeWinner, Score: strconv.Itoa(g.HomeScore), Team: wireTeam{Location: g.Home}},
				{Winner: g.AwayWinner, Score: strconv.Itoa(g.AwayScore), Team: wireTeam{Location: g.Away}},
			},
		}
		if g.RoundNote != "" {
			comp.Notes = []wireNote{{Headline: g.RoundNote}}
		}
		sb.Events = append(sb.Events, wireEvent{ID: g.ID, Competitions: []wireCompetition{comp}})
	}
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	_ = json.NewEncoder(w).Encode(sb)
}
