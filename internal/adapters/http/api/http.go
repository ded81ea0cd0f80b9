// Package api declares HTTP contracts and route registration helpers.
//
// This is the presentation boundary: it exposes the ranked standings with
// enough per-team detail for a renderer to draw elimination markers, and
// stays out of rendering itself.
package api

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/guttman/pickx/internal/domain/types"
)

// Dependencies required by HTTP handlers. An interface bundle keeps the
// handler layer loosely coupled to the service implementation.
type Dependencies interface {
	// Standings returns up to limit rows of the latest ranked standings.
	Standings(ctx context.Context, limit int) ([]types.Standing, error)

	// LastWarnings returns the most recent cycle's degradation warnings.
	LastWarnings() []string
}

// Server wires HTTP routes for the business API.
type Server struct {
	standingsHandler *StandingsHandler
	healthHandler    *HealthHandler
	statsHandler     *StatsHandler
}

// NewServer creates an API server with all handlers.
func NewServer(deps Dependencies, statsProvider StatsProvider, maxLimit int) *Server {
	return &Server{
		standingsHandler: NewStandingsHandler(deps, maxLimit),
		healthHandler:    NewHealthHandler(),
		statsHandler:     NewStatsHandler(statsProvider),
	}
}

// Register attaches all HTTP routes to mux.
func (s *Server) Register(ctx context.Context, mux *http.ServeMux) {
	mux.HandleFunc("/healthz", MetricsMiddleware(s.healthHandler.HandleHealth, "healthz"))
	mux.HandleFunc("/stats", MetricsMiddleware(s.statsHandler.HandleStats, "stats"))
	mux.HandleFunc("/standings", MetricsMiddleware(s.standingsHandler.HandleGetStandings, "standings"))
}

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code string, err error) {
	msg := http.StatusText(status)
	if err != nil {
		msg = err.Error()
	}
	writeJSON(w, status, errorResponse{Code: code, Message: msg})
}
