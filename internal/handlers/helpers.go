package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/ternarybob/soundbite/internal/models"
)

// RequireMethod validates that the HTTP request uses the specified method.
// Returns true if the method matches, false otherwise (and writes error response).
func RequireMethod(w http.ResponseWriter, r *http.Request, method string) bool {
	if r.Method != method {
		w.Header().Set("Allow", method)
		WriteError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return false
	}
	return true
}

// WriteJSON writes a JSON response with the specified status code and data.
func WriteJSON(w http.ResponseWriter, statusCode int, data interface{}) error {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	return json.NewEncoder(w).Encode(data)
}

// ErrorResponse is the body of every failed API call
type ErrorResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
}

// WriteError writes {success:false, error:message}
func WriteError(w http.ResponseWriter, statusCode int, message string) error {
	return WriteJSON(w, statusCode, ErrorResponse{
		Success: false,
		Error:   message,
	})
}

// WriteServiceError maps validation failures to 400 with their message and
// everything else to 500 with message.
func WriteServiceError(w http.ResponseWriter, err error, message string) error {
	if models.IsValidationError(err) {
		return WriteError(w, http.StatusBadRequest, err.Error())
	}
	return WriteError(w, http.StatusInternalServerError, message)
}

// elapsedMs returns milliseconds since start, as reported in processingTime
func elapsedMs(start time.Time) int64 {
	return time.Since(start).Milliseconds()
}

// queryInt parses an integer query parameter, returning def when absent or invalid
func queryInt(r *http.Request, name string, def int) int {
	if v := r.URL.Query().Get(name); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return def
}
