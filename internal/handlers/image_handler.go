package handlers

import (
	"errors"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/ternarybob/arbor"

	"github.com/ternarybob/soundbite/internal/common"
	"github.com/ternarybob/soundbite/internal/interfaces"
	"github.com/ternarybob/soundbite/internal/models"
	"github.com/ternarybob/soundbite/internal/services/vision"
)

// multipartOverhead is allowed on top of the image size for form boundaries and fields
const multipartOverhead = 1 << 20

// ImageHandler serves the image analysis endpoints
type ImageHandler struct {
	service interfaces.SoundService
	upload  common.UploadConfig
	search  common.SearchConfig
	logger  arbor.ILogger
}

// NewImageHandler creates a new image handler
func NewImageHandler(service interfaces.SoundService, upload common.UploadConfig, search common.SearchConfig, logger arbor.ILogger) *ImageHandler {
	return &ImageHandler{
		service: service,
		upload:  upload,
		search:  search,
		logger:  logger,
	}
}

// AnalyzeImageResponse is returned by POST /api/analyze-image
type AnalyzeImageResponse struct {
	Success        bool   `json:"success"`
	Description    string `json:"description"`
	ProcessingTime int64  `json:"processingTime"`
}

// MatchImageResponse is returned by POST /api/match-image
type MatchImageResponse struct {
	Success        bool                     `json:"success"`
	Description    string                   `json:"description"`
	Results        []models.RankedSoundBite `json:"results"`
	TotalCount     int                      `json:"totalCount"`
	ProcessingTime int64                    `json:"processingTime"`
}

// AnalyzeImageHandler handles POST /api/analyze-image (multipart field "image")
func (h *ImageHandler) AnalyzeImageHandler(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodPost) {
		return
	}

	dataURL, ok := h.readImage(w, r)
	if !ok {
		return
	}

	start := time.Now()
	description, err := h.service.Describe(r.Context(), dataURL)
	if err != nil {
		h.writeDescribeError(w, err)
		return
	}

	WriteJSON(w, http.StatusOK, AnalyzeImageResponse{
		Success:        true,
		Description:    description,
		ProcessingTime: elapsedMs(start),
	})
}

// MatchImageHandler handles POST /api/match-image: describe then search in one request.
// Optional form fields limit and threshold override the configured defaults.
func (h *ImageHandler) MatchImageHandler(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodPost) {
		return
	}

	dataURL, ok := h.readImage(w, r)
	if !ok {
		return
	}

	limit, threshold, err := h.formOptions(r)
	if err != nil {
		WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	start := time.Now()
	result, err := h.service.MatchImage(r.Context(), dataURL, limit, threshold)
	if err != nil {
		h.writeDescribeError(w, err)
		return
	}

	WriteJSON(w, http.StatusOK, MatchImageResponse{
		Success:        true,
		Description:    result.Description,
		Results:        result.Results,
		TotalCount:     len(result.Results),
		ProcessingTime: elapsedMs(start),
	})
}

// readImage extracts and validates the "image" part, returning it as a data URL.
// On failure the error response has already been written.
func (h *ImageHandler) readImage(w http.ResponseWriter, r *http.Request) (string, bool) {
	r.Body = http.MaxBytesReader(w, r.Body, h.upload.MaxFileSize+multipartOverhead)

	if err := r.ParseMultipartForm(h.upload.MaxFileSize + multipartOverhead); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			WriteError(w, http.StatusBadRequest, "File size too large")
			return "", false
		}
		WriteError(w, http.StatusBadRequest, "No image file provided")
		return "", false
	}

	file, _, err := r.FormFile("image")
	if err != nil {
		WriteError(w, http.StatusBadRequest, "No image file provided")
		return "", false
	}
	defer file.Close()

	data, err := io.ReadAll(io.LimitReader(file, h.upload.MaxFileSize+1))
	if err != nil {
		h.logger.Error().Err(err).Msg("Failed to read uploaded image")
		WriteError(w, http.StatusBadRequest, "Failed to read image file")
		return "", false
	}

	mimeType, err := vision.ValidateImage(data, h.upload.MaxFileSize, h.upload.SupportedFormats)
	if err != nil {
		WriteError(w, http.StatusBadRequest, err.Error())
		return "", false
	}

	return vision.EncodeDataURL(mimeType, data), true
}

func (h *ImageHandler) formOptions(r *http.Request) (int, float64, error) {
	limit := h.search.DefaultLimit
	threshold := h.search.DefaultThreshold

	if v := r.FormValue("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return 0, 0, models.NewValidationError("limit", "Limit must be a positive integer")
		}
		limit = n
	}
	if v := r.FormValue("threshold"); v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return 0, 0, models.NewValidationError("threshold", "Threshold must be between 0 and 1")
		}
		threshold = f
	}

	if h.search.MaxLimit > 0 && limit > h.search.MaxLimit {
		limit = h.search.MaxLimit
	}
	return limit, threshold, nil
}

func (h *ImageHandler) writeDescribeError(w http.ResponseWriter, err error) {
	switch {
	case models.IsValidationError(err):
		WriteError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, vision.ErrNoDescription):
		WriteError(w, http.StatusInternalServerError, "No description generated")
	default:
		h.logger.Error().Err(err).Msg("Image request failed")
		WriteError(w, http.StatusInternalServerError, upperFirst(err.Error()))
	}
}
