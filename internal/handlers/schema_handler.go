package handlers

import (
	"net/http"

	"github.com/ternarybob/arbor"

	"github.com/ternarybob/soundbite/internal/interfaces"
	"github.com/ternarybob/soundbite/internal/models"
)

// SchemaHandler exposes the vector database schema
type SchemaHandler struct {
	service interfaces.SoundService
	logger  arbor.ILogger
}

func NewSchemaHandler(service interfaces.SoundService, logger arbor.ILogger) *SchemaHandler {
	return &SchemaHandler{
		service: service,
		logger:  logger,
	}
}

// SchemaResponse is returned by GET /api/schema
type SchemaResponse struct {
	Success bool           `json:"success"`
	Schema  *models.Schema `json:"schema"`
}

// GetSchemaHandler handles GET /api/schema
func (h *SchemaHandler) GetSchemaHandler(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}

	schema, err := h.service.Schema(r.Context())
	if err != nil {
		h.logger.Error().Err(err).Msg("Schema fetch failed")
		WriteError(w, http.StatusInternalServerError, "Failed to fetch schema")
		return
	}

	WriteJSON(w, http.StatusOK, SchemaResponse{
		Success: true,
		Schema:  schema,
	})
}
