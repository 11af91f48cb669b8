package api

import (
	"context"
	"net/http"

	"github.com/okian/gradebook/internal/domain/stats"
)

// StatsProvider defines the interface for getting history statistics.
type StatsProvider interface {
	Stats(ctx context.Context) stats.Summary
}

// StatsHandler handles stats requests.
type StatsHandler struct {
	statsProvider StatsProvider
}

// NewStatsHandler creates a new stats handler.
func NewStatsHandler(statsProvider StatsProvider) *StatsHandler {
	return &StatsHandler{statsProvider: statsProvider}
}

// HandleStats handles GET /api/stats requests.
func (h *StatsHandler) HandleStats(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.statsProvider.Stats(r.Context()))
}
