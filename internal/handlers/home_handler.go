package handlers

import (
	"context"
	"net/http"
	"time"

	"go.uber.org/zap"
)

// Pinger reports whether the datastore is reachable
type Pinger interface {
	PingContext(ctx context.Context) error
}

// HomeHandler serves the unauthenticated informational routes
type HomeHandler struct {
	db     Pinger
	logger *zap.Logger
}

// NewHomeHandler creates a new home handler
func NewHomeHandler(db Pinger, logger *zap.Logger) *HomeHandler {
	return &HomeHandler{db: db, logger: logger}
}

// Home handles GET /
func (h *HomeHandler) Home(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, MessageResponse{Message: "Welcome to the Dad's Advice API!"})
}

// Health handles GET /healthz
func (h *HomeHandler) Health(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	if err := h.db.PingContext(ctx); err != nil {
		h.logger.Warn("Health check failed", zap.Error(err))
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
