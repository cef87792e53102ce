package handlers

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/appforge/discovery-ai-platform/internal/training"
	"github.com/appforge/discovery-ai-platform/pkg/logging"
)

// CorrectionsHandler accepts user corrections to detected profiles and
// queues them for the training pipeline.
type CorrectionsHandler struct {
	collector *training.Collector
	logger    *logging.Logger
}

// NewCorrectionsHandler creates the corrections handler.
func NewCorrectionsHandler(collector *training.Collector, logger *logging.Logger) *CorrectionsHandler {
	if logger == nil {
		logger = logging.Default()
	}
	return &CorrectionsHandler{
		collector: collector,
		logger:    logger.Component("api"),
	}
}

var correctableFields = map[string]bool{
	"industry":       true,
	"role":           true,
	"sophistication": true,
}

// Submit handles POST /api/corrections.
func (h *CorrectionsHandler) Submit(w http.ResponseWriter, r *http.Request) {
	var corr training.Correction
	if err := json.NewDecoder(r.Body).Decode(&corr); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request body"})
		return
	}
	if strings.TrimSpace(corr.SessionID) == "" || !correctableFields[corr.Field] ||
		strings.TrimSpace(corr.CorrectedValue) == "" {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "session_id, a correctable field, and corrected_value are required"})
		return
	}

	if err := h.collector.SubmitCorrection(r.Context(), corr); err != nil {
		h.logger.Error("failed to queue correction", "error", err)
		writeJSON(w, http.StatusServiceUnavailable, errorResponse{Error: "correction queue unavailable"})
		return
	}
	w.WriteHeader(http.StatusAccepted)
}
