package api

import (
	"context"
	"net/http"

	service "github.com/mergington/activities/internal/app"
	"github.com/mergington/activities/pkg/logger"
)

// StatsProvider defines the interface for getting service statistics.
type StatsProvider interface {
	GetStats(ctx context.Context) (service.Stats, error)
}

// StatsHandler handles stats requests.
type StatsHandler struct {
	statsProvider StatsProvider
	logger        logger.Logger
}

// NewStatsHandler creates a new stats handler.
func NewStatsHandler(statsProvider StatsProvider, l logger.Logger) *StatsHandler {
	return &StatsHandler{statsProvider: statsProvider, logger: l}
}

// HandleStats handles GET /stats requests.
func (h *StatsHandler) HandleStats(w http.ResponseWriter, r *http.Request) {
	const op = "api.stats"
	stats, err := h.statsProvider.GetStats(r.Context())
	if err != nil {
		err = Wrap(op, err)
		h.logger.Error(r.Context(), "collecting stats failed", logger.Error(err))
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, stats)
}
