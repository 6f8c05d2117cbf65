package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/ternarybob/arbor"

	"github.com/ternarybob/soundbite/internal/common"
)

// ReadinessChecker reports whether a dependency accepts requests
type ReadinessChecker interface {
	Ready(ctx context.Context) error
}

type APIHandler struct {
	store  ReadinessChecker
	logger arbor.ILogger
}

func NewAPIHandler(store ReadinessChecker, logger arbor.ILogger) *APIHandler {
	return &APIHandler{
		store:  store,
		logger: logger,
	}
}

// VersionHandler returns version information
func (h *APIHandler) VersionHandler(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}

	WriteJSON(w, http.StatusOK, common.GetVersionInfo())
}

// HealthHandler reports service status and vector store readiness.
// An unreachable store yields 503 so load balancers can drain the instance.
func (h *APIHandler) HealthHandler(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	if err := h.store.Ready(ctx); err != nil {
		h.logger.Warn().Err(err).Msg("Vector store not ready")
		WriteJSON(w, http.StatusServiceUnavailable, map[string]interface{}{
			"success":     false,
			"status":      "degraded",
			"vectorStore": "unavailable",
		})
		return
	}

	WriteJSON(w, http.StatusOK, map[string]interface{}{
		"success":     true,
		"status":      "ok",
		"vectorStore": "ready",
	})
}

// NotFoundHandler handles 404 errors with JSON response
func (h *APIHandler) NotFoundHandler(w http.ResponseWriter, r *http.Request) {
	WriteJSON(w, http.StatusNotFound, map[string]interface{}{
		"success": false,
		"error":   "Not Found",
		"path":    r.URL.Path,
	})
}
