package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/appforge/discovery-ai-platform/internal/profile"
	"github.com/appforge/discovery-ai-platform/pkg/logging"
)

// ProfileHandler serves the stateless profile detection endpoints.
type ProfileHandler struct {
	detector      *profile.Detector
	minConfidence float64
	logger        *logging.Logger
}

// NewProfileHandler creates the profile detection handler.
func NewProfileHandler(detector *profile.Detector, minConfidence float64, logger *logging.Logger) *ProfileHandler {
	if logger == nil {
		logger = logging.Default()
	}
	return &ProfileHandler{
		detector:      detector,
		minConfidence: minConfidence,
		logger:        logger.Component("api"),
	}
}

// DetectRequest is the body for POST /api/profile/detect.
type DetectRequest struct {
	Input           string                 `json:"input"`
	SessionID       string                 `json:"session_id,omitempty"`
	History         []profile.HistoryEntry `json:"history,omitempty"`
	PreviousProfile *profile.UserProfile   `json:"previous_profile,omitempty"`
}

// DetectResponse wraps a detection result with its validation outcome.
type DetectResponse struct {
	Result     *profile.DetectionResult `json:"result"`
	Validation profile.ValidationResult `json:"validation"`
}

// Detect handles POST /api/profile/detect.
func (h *ProfileHandler) Detect(w http.ResponseWriter, r *http.Request) {
	var req DetectRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request body"})
		return
	}

	result, err := h.detector.DetectProfile(r.Context(), req.Input, profile.DetectOptions{
		SessionID:           req.SessionID,
		ConversationHistory: req.History,
		PreviousProfile:     req.PreviousProfile,
	})
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, DetectResponse{
		Result:     result,
		Validation: profile.ValidateProfile(result.Profile, h.minConfidence),
	})
}

// BatchDetectRequest is the body for POST /api/profile/batch.
type BatchDetectRequest struct {
	Inputs    []string `json:"inputs"`
	SessionID string   `json:"session_id,omitempty"`
}

// BatchDetectResponse returns one result per input, in input order.
type BatchDetectResponse struct {
	Results []*profile.DetectionResult `json:"results"`
}

// BatchDetect handles POST /api/profile/batch.
func (h *ProfileHandler) BatchDetect(w http.ResponseWriter, r *http.Request) {
	var req BatchDetectRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request body"})
		return
	}

	results, err := h.detector.BatchDetectProfiles(r.Context(), req.Inputs, profile.DetectOptions{
		SessionID: req.SessionID,
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, BatchDetectResponse{Results: results})
}
