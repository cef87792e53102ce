package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/appforge/discovery-ai-platform/internal/engine"
	"github.com/appforge/discovery-ai-platform/internal/profile"
	"github.com/appforge/discovery-ai-platform/internal/session"
)

type errorResponse struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if body != nil {
		json.NewEncoder(w).Encode(body)
	}
}

// writeError maps the domain error taxonomy onto HTTP statuses. Storage
// failures carry Retry-After so well-behaved clients back off.
func writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, profile.ErrInvalidInput), errors.Is(err, engine.ErrInvalidInput),
		errors.Is(err, session.ErrInvalidDuration):
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
	case errors.Is(err, session.ErrSessionNotFound):
		writeJSON(w, http.StatusNotFound, errorResponse{Error: err.Error()})
	case errors.Is(err, session.ErrDuplicateSession):
		writeJSON(w, http.StatusConflict, errorResponse{Error: err.Error()})
	case errors.Is(err, profile.ErrBatchTooLarge):
		writeJSON(w, http.StatusRequestEntityTooLarge, errorResponse{Error: err.Error()})
	case errors.Is(err, session.ErrStorageTimeout), errors.Is(err, session.ErrStorageUnavailable):
		w.Header().Set("Retry-After", "5")
		writeJSON(w, http.StatusServiceUnavailable, errorResponse{Error: err.Error()})
	case errors.Is(err, engine.ErrGenerationFailed):
		writeJSON(w, http.StatusBadGateway, errorResponse{Error: err.Error()})
	default:
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "internal error"})
	}
}
