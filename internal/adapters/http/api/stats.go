package api

import (
	"net/http"
)

// StatsProvider defines the interface for getting service statistics.
type StatsProvider interface {
	GetStats() any
}

// StatsFunc adapts a function to StatsProvider.
type StatsFunc func() any

// GetStats calls f.
func (f StatsFunc) GetStats() any { return f() }

// StatsHandler handles stats requests.
type StatsHandler struct {
	statsProvider StatsProvider
}

// NewStatsHandler creates a new stats handler.
func NewStatsHandler(statsProvider StatsProvider) *StatsHandler {
	return &StatsHandler{statsProvider: statsProvider}
}

// HandleStats handles GET /stats requests.
func (h *StatsHandler) HandleStats(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeFailure(w, wrapKind("api.stats", ErrMethodNotAllowed, nil))
		return
	}
	writeJSON(w, http.StatusOK, h.statsProvider.GetStats())
}
