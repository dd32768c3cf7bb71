package server

import (
	"net/http"

	"go.uber.org/zap"

	"github.com/vertextoedge/label-portal/internal/port"
	"github.com/vertextoedge/label-portal/internal/service/catalogue"
	"github.com/vertextoedge/label-portal/internal/util/ratelimiter"
)

// StatusHandler reports operational state to admins
type StatusHandler struct {
	store     port.Store
	catalogue *catalogue.Service
	guard     *ratelimiter.Limiter
	logger    *zap.Logger
}

// NewStatusHandler creates a new StatusHandler
func NewStatusHandler(store port.Store, svc *catalogue.Service, guard *ratelimiter.Limiter, logger *zap.Logger) *StatusHandler {
	return &StatusHandler{
		store:     store,
		catalogue: svc,
		guard:     guard,
		logger:    logger,
	}
}

// HandleStatus returns database health, catalogue sizes and the number of
// throttled share keys
func (h *StatusHandler) HandleStatus(w http.ResponseWriter, r *http.Request) {
	status := map[string]any{"database": "ok"}

	if err := h.store.Ping(r.Context()); err != nil {
		h.logger.Error("status: database ping failed", zap.Error(err))
		status["database"] = "unavailable"
	}

	if artists, err := h.catalogue.ListArtists(r.Context()); err != nil {
		h.logger.Error("status: failed to read artists", zap.Error(err))
		status["artists"] = -1
	} else {
		status["artists"] = len(artists)
	}

	if releases, err := h.catalogue.ListReleases(r.Context()); err != nil {
		h.logger.Error("status: failed to read releases", zap.Error(err))
		status["releases"] = -1
	} else {
		status["releases"] = len(releases)
	}

	if h.guard != nil {
		status["throttledShareKeys"] = h.guard.Len()
		status["passwordRetryInterval"] = h.guard.Interval().String()
	}

	writeSuccess(w, map[string]any{"status": status})
}
