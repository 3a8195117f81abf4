package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/balcaohq/platform/internal/service"
	"github.com/balcaohq/platform/internal/store"
)

// writeJSON writes a JSON response.
func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// writeError writes a JSON error response.
func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{
		"error": message,
	})
}

// writeServiceError maps service and store errors to HTTP statuses.
func writeServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, store.ErrNotFound):
		writeError(w, http.StatusNotFound, "not found")
	case errors.Is(err, service.ErrNotAuthenticated):
		writeError(w, http.StatusUnauthorized, "not authenticated")
	case errors.Is(err, service.ErrNoTransferTarget),
		errors.Is(err, service.ErrAmbiguousTransferTarget),
		errors.Is(err, service.ErrUnsupportedFileType),
		errors.Is(err, service.ErrDocumentTooLarge),
		errors.Is(err, store.ErrInsufficientStock):
		writeError(w, http.StatusUnprocessableEntity, err.Error())
	default:
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}
