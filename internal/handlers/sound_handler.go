package handlers

import (
	"encoding/json"
	"net/http"
	"time"
	"unicode"
	"unicode/utf8"

	"github.com/ternarybob/arbor"

	"github.com/ternarybob/soundbite/internal/common"
	"github.com/ternarybob/soundbite/internal/interfaces"
	"github.com/ternarybob/soundbite/internal/models"
)

// SoundHandler serves search and upload
type SoundHandler struct {
	service interfaces.SoundService
	search  common.SearchConfig
	logger  arbor.ILogger
}

// NewSoundHandler creates a new sound handler
func NewSoundHandler(service interfaces.SoundService, search common.SearchConfig, logger arbor.ILogger) *SoundHandler {
	return &SoundHandler{
		service: service,
		search:  search,
		logger:  logger,
	}
}

// searchRequest keeps query untyped so a non-string query is a 400, not a decode failure
type searchRequest struct {
	Query     interface{} `json:"query"`
	Limit     *int        `json:"limit"`
	Threshold *float64    `json:"threshold"`
}

// SearchSoundsResponse is returned by POST /api/search-sounds
type SearchSoundsResponse struct {
	Success        bool                     `json:"success"`
	Results        []models.RankedSoundBite `json:"results"`
	TotalCount     int                      `json:"totalCount"`
	ProcessingTime int64                    `json:"processingTime"`
}

// UploadSoundResponse is returned by POST /api/upload-sound
type UploadSoundResponse struct {
	Success bool              `json:"success"`
	Data    *models.SoundBite `json:"data"`
}

// SearchSoundsHandler handles POST /api/search-sounds {query, limit?, threshold?}
func (h *SoundHandler) SearchSoundsHandler(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodPost) {
		return
	}

	var req searchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	query, ok := req.Query.(string)
	if !ok || query == "" {
		WriteError(w, http.StatusBadRequest, "Query is required and must be a string")
		return
	}

	limit := h.search.DefaultLimit
	if req.Limit != nil {
		limit = *req.Limit
	}
	if h.search.MaxLimit > 0 && limit > h.search.MaxLimit {
		limit = h.search.MaxLimit
	}
	threshold := h.search.DefaultThreshold
	if req.Threshold != nil {
		threshold = *req.Threshold
	}

	start := time.Now()
	results, err := h.service.Search(r.Context(), query, limit, threshold)
	if err != nil {
		if !models.IsValidationError(err) {
			h.logger.Error().Err(err).Msg("Sound search failed")
		}
		WriteServiceError(w, err, upperFirst(err.Error()))
		return
	}

	WriteJSON(w, http.StatusOK, SearchSoundsResponse{
		Success:        true,
		Results:        results,
		TotalCount:     len(results),
		ProcessingTime: elapsedMs(start),
	})
}

// UploadSoundHandler handles POST /api/upload-sound
func (h *SoundHandler) UploadSoundHandler(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodPost) {
		return
	}

	var req models.UploadSoundRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	created, err := h.service.Upload(r.Context(), req.ToNewSoundBite())
	if err != nil {
		if !models.IsValidationError(err) {
			h.logger.Error().Err(err).Msg("Sound upload failed")
		}
		WriteServiceError(w, err, "Failed to upload sound bite")
		return
	}

	WriteJSON(w, http.StatusOK, UploadSoundResponse{
		Success: true,
		Data:    created,
	})
}

// upperFirst capitalises the first letter of an error message for display
func upperFirst(s string) string {
	r, size := utf8.DecodeRuneInString(s)
	if r == utf8.RuneError {
		return s
	}
	return string(unicode.ToUpper(r)) + s[size:]
}
