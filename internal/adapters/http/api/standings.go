package api

import (
	"net/http"
	"strconv"
)

// StandingsHandler handles standings requests.
type StandingsHandler struct {
	deps     Dependencies
	maxLimit int
}

// NewStandingsHandler creates a new standings handler.
func NewStandingsHandler(deps Dependencies, maxLimit int) *StandingsHandler {
	return &StandingsHandler{deps: deps, maxLimit: maxLimit}
}

// standingsResponse is the GET /standings payload. Warnings surface degraded
// inputs and seed-table gaps so operators see partial-data cycles.
type standingsResponse struct {
	Standings []standingRow `json:"standings"`
	Warnings  []string      `json:"warnings,omitempty"`
}

type standingRow struct {
	Rank         int       `json:"rank"`
	Participant  string    `json:"participant"`
	CurrentScore int       `json:"current_score"`
	MaxScore     int       `json:"max_score"`
	Teams        []teamRow `json:"teams"`
}

type teamRow struct {
	Team          string `json:"team"`
	Seed          int    `json:"seed"`
	SeedKnown     bool   `json:"seed_known"`
	Wins          int    `json:"wins"`
	Eliminated    bool   `json:"eliminated"`
	CurrentPoints int    `json:"current_points"`
	MaxPoints     int    `json:"max_points"`
}

// HandleGetStandings handles GET /standings?limit=N requests. limit is
// optional; omitted means all rows.
func (h *StandingsHandler) HandleGetStandings(w http.ResponseWriter, r *http.Request) {
	const op = "api.get_standings"
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}

	limit := 0
	if limitStr := r.URL.Query().Get("limit"); limitStr != "" {
		n, err := strconv.Atoi(limitStr)
		if err != nil || n < 1 {
			writeError(w, http.StatusBadRequest, "bad_request", NewKind(op, ErrBadRequest))
			return
		}
		if h.maxLimit > 0 && n > h.maxLimit {
			writeError(w, http.StatusBadRequest, "limit_exceeded", NewKind(op, ErrBadRequest))
			return
		}
		limit = n
	}

	rows, err := h.deps.Standings(r.Context(), limit)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "internal_error", Wrap(op, err))
		return
	}

	resp := standingsResponse{
		Standings: make([]standingRow, len(rows)),
		Warnings:  h.deps.LastWarnings(),
	}
	for i, row := range rows {
		out := standingRow{
			Rank:         row.Rank,
			Participant:  row.Participant,
			CurrentScore: row.CurrentScore,
			MaxScore:     row.MaxScore,
			Teams:        make([]teamRow, len(row.Teams)),
		}
		for j, t := range row.Teams {
			out.Teams[j] = teamRow{
				Team:          t.Team,
				Seed:          t.Seed,
				SeedKnown:     t.SeedKnown,
				Wins:          t.Wins,
				Eliminated:    t.Eliminated,
				CurrentPoints: t.CurrentPoints,
				MaxPoints:     t.MaxPoints,
			}
		}
		resp.Standings[i] = out
	}
	writeJSON(w, http.StatusOK, resp)
}
