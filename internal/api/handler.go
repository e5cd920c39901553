// Package api provides HTTP handlers for the recorder API.
package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/mymcpme/recorder/internal/recorder"
	"github.com/mymcpme/recorder/internal/store"
)

// Handler provides common handler utilities.
type Handler struct {
	repo store.Repository
}

// NewHandler creates a new Handler with common dependencies.
func NewHandler(repo store.Repository) *Handler {
	return &Handler{repo: repo}
}

// JSON writes a JSON response with the given status code.
func JSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		http.Error(w, `{"error": "failed to encode response"}`, http.StatusInternalServerError)
	}
}

// Error writes a JSON error response.
func Error(w http.ResponseWriter, status int, message string) {
	JSON(w, status, map[string]string{"error": message})
}

// DomainError maps recorder/store sentinel errors to HTTP responses.
func DomainError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, recorder.ErrConflict):
		Error(w, http.StatusConflict, "recording already in progress")
	case errors.Is(err, recorder.ErrNotConnected):
		Error(w, http.StatusConflict, "capture agent not connected")
	case errors.Is(err, recorder.ErrNotFound), errors.Is(err, store.ErrNotFound):
		Error(w, http.StatusNotFound, "not found")
	case errors.Is(err, recorder.ErrValidation):
		Error(w, http.StatusBadRequest, err.Error())
	default:
		Error(w, http.StatusInternalServerError, "internal error")
	}
}
