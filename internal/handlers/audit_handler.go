package handlers

import (
	"net/http"

	"github.com/ternarybob/arbor"

	"github.com/ternarybob/soundbite/internal/interfaces"
	"github.com/ternarybob/soundbite/internal/models"
)

const (
	defaultAuditLimit = 50
	maxAuditLimit     = 500
)

// AuditHandler lists recent pipeline operations
type AuditHandler struct {
	audit  interfaces.AuditStorage
	logger arbor.ILogger
}

func NewAuditHandler(audit interfaces.AuditStorage, logger arbor.ILogger) *AuditHandler {
	return &AuditHandler{
		audit:  audit,
		logger: logger,
	}
}

// ListAuditHandler handles GET /api/audit?limit=&operation=
func (h *AuditHandler) ListAuditHandler(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}

	limit := queryInt(r, "limit", defaultAuditLimit)
	if limit <= 0 || limit > maxAuditLimit {
		limit = defaultAuditLimit
	}
	operation := models.AuditOperation(r.URL.Query().Get("operation"))

	entries, err := h.audit.List(r.Context(), operation, limit)
	if err != nil {
		h.logger.Error().Err(err).Msg("Failed to list audit entries")
		WriteError(w, http.StatusInternalServerError, "Failed to list audit entries")
		return
	}
	if entries == nil {
		entries = []models.AuditEntry{}
	}

	WriteJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"entries": entries,
		"count":   len(entries),
	})
}
