package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/appforge/discovery-ai-platform/internal/agent"
	"github.com/appforge/discovery-ai-platform/internal/engine"
	"github.com/appforge/discovery-ai-platform/internal/profile"
	"github.com/appforge/discovery-ai-platform/internal/session"
	"github.com/appforge/discovery-ai-platform/pkg/logging"
)

// SessionsHandler serves the session lifecycle and conversation-turn
// endpoints.
type SessionsHandler struct {
	sessions *session.Manager
	engine   *engine.Engine
	detector *profile.Detector
	catalog  *agent.Catalog
	logger   *logging.Logger
}

// NewSessionsHandler creates the sessions handler.
func NewSessionsHandler(sessions *session.Manager, eng *engine.Engine, detector *profile.Detector, catalog *agent.Catalog, logger *logging.Logger) *SessionsHandler {
	if logger == nil {
		logger = logging.Default()
	}
	return &SessionsHandler{
		sessions: sessions,
		engine:   eng,
		detector: detector,
		catalog:  catalog,
		logger:   logger.Component("api"),
	}
}

// CreateSessionRequest is the body for POST /api/sessions.
type CreateSessionRequest struct {
	SessionID  string `json:"session_id,omitempty"`
	Domain     string `json:"domain,omitempty"`
	TTLSeconds int    `json:"ttl_seconds,omitempty"`
}

// SessionResponse is the API view of one session.
type SessionResponse struct {
	SessionID     string               `json:"session_id"`
	Domain        string               `json:"domain,omitempty"`
	CurrentStage  agent.Stage          `json:"current_stage,omitempty"`
	Active        bool                 `json:"active"`
	UptimeSeconds float64              `json:"uptime_seconds"`
	ExpiresAt     time.Time            `json:"expires_at"`
	Profile       *profile.UserProfile `json:"profile,omitempty"`
}

func sessionView(s *session.Session) SessionResponse {
	sctx := s.GetContext()
	resp := SessionResponse{
		SessionID:     s.ID(),
		CurrentStage:  sctx.CurrentStage,
		Active:        s.IsActive(),
		UptimeSeconds: s.GetUptime().Seconds(),
		ExpiresAt:     s.ExpiresAt(),
		Profile:       sctx.Profile,
	}
	if sctx.Agent != nil {
		resp.Domain = sctx.Agent.Domain
	}
	return resp
}

// CreateSession handles POST /api/sessions.
func (h *SessionsHandler) CreateSession(w http.ResponseWriter, r *http.Request) {
	var req CreateSessionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request body"})
		return
	}

	var opts session.CreateOptions
	if req.TTLSeconds > 0 {
		opts.TTL = time.Duration(req.TTLSeconds) * time.Second
	}
	sess, err := h.sessions.CreateSession(r.Context(), req.SessionID, opts)
	if err != nil {
		writeError(w, err)
		return
	}

	domain := req.Domain
	if domain == "" {
		domain = "general"
	}
	inst := h.catalog.Instantiate(domain)
	if err := sess.MutateAndSave(r.Context(), func() {
		sess.RegisterAgent(inst)
	}); err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, sessionView(sess))
}

// GetSession handles GET /api/sessions/{sessionID}.
func (h *SessionsHandler) GetSession(w http.ResponseWriter, r *http.Request) {
	sess, err := h.sessions.GetSession(r.Context(), chi.URLParam(r, "sessionID"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, sessionView(sess))
}

// DeleteSession handles DELETE /api/sessions/{sessionID}.
func (h *SessionsHandler) DeleteSession(w http.ResponseWriter, r *http.Request) {
	existed, err := h.sessions.DeleteSession(r.Context(), chi.URLParam(r, "sessionID"))
	if err != nil {
		writeError(w, err)
		return
	}
	if !existed {
		writeJSON(w, http.StatusNotFound, errorResponse{Error: session.ErrSessionNotFound.Error()})
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// MessageRequest is the body for POST /api/sessions/{sessionID}/messages.
type MessageRequest struct {
	Message          string   `json:"message"`
	PartialResponses []string `json:"partial_responses,omitempty"`
}

// MessageResponse is one full conversation turn: the analysis of what the
// user said, the refreshed profile, the next question, and an assumption
// trigger when the user asked to stop being questioned.
type MessageResponse struct {
	Analysis          *engine.ResponseAnalysis `json:"analysis"`
	Profile           *profile.UserProfile     `json:"profile"`
	Question          *engine.AdaptiveQuestion `json:"question"`
	AssumptionTrigger *engine.TriggerEvent     `json:"assumption_trigger,omitempty"`
}

// PostMessage handles POST /api/sessions/{sessionID}/messages. The turn
// pipeline is analyze, detect, generate, then commit; a failed generation
// surfaces before anything is persisted.
func (h *SessionsHandler) PostMessage(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "sessionID")

	var req MessageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request body"})
		return
	}

	sess, err := h.sessions.GetSession(r.Context(), sessionID)
	if err != nil {
		writeError(w, err)
		return
	}
	sctx := sess.GetContext()

	analysis, err := h.engine.AnalyzeResponse(r.Context(), req.Message, &sctx)
	if err != nil {
		writeError(w, err)
		return
	}

	detection, err := h.detector.DetectProfile(r.Context(), req.Message, profile.DetectOptions{
		SessionID:           sessionID,
		ConversationHistory: historyOf(sctx.Profile),
		PreviousProfile:     sctx.Profile,
	})
	if err != nil {
		writeError(w, err)
		return
	}

	question, err := h.engine.GenerateAdaptiveQuestion(r.Context(), sess, analysis)
	if err != nil {
		writeError(w, err)
		return
	}

	// Generation committed the style; now fold in the turn's profile and
	// answer bookkeeping under the same per-session lock.
	updated := detection.Profile
	updated.ConversationHistory = append(historyOf(sctx.Profile), profile.HistoryEntry{
		Role:      "user",
		Content:   req.Message,
		Timestamp: time.Now().UTC(),
	})
	err = h.sessions.WithSessionLock(sessionID, func() error {
		return sess.MutateAndSave(r.Context(), func() {
			sess.UpdateProfile(updated)
			sess.UpdateMetadata(map[string]any{engine.MetaAnsweredCount: answeredCount(sctx.Metadata) + 1})
		})
	})
	if err != nil {
		writeError(w, err)
		return
	}

	resp := MessageResponse{
		Analysis: analysis,
		Profile:  updated,
		Question: question,
	}
	if trigger, ok := h.engine.BuildAssumptionTrigger(&sctx, analysis, req.PartialResponses); ok {
		resp.AssumptionTrigger = trigger
	}
	writeJSON(w, http.StatusOK, resp)
}

// ProgressRequest is the body for POST /api/sessions/{sessionID}/progress.
type ProgressRequest struct {
	AnsweredQuestions int     `json:"answered_questions"`
	StageConfidence   float64 `json:"stage_confidence"`
}

// Progress handles POST /api/sessions/{sessionID}/progress.
func (h *SessionsHandler) Progress(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "sessionID")

	var req ProgressRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request body"})
		return
	}

	sess, err := h.sessions.GetSession(r.Context(), sessionID)
	if err != nil {
		writeError(w, err)
		return
	}

	result, err := h.engine.ProgressStage(r.Context(), sess, engine.ProgressEvidence{
		AnsweredQuestions: req.AnsweredQuestions,
		StageConfidence:   req.StageConfidence,
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func historyOf(p *profile.UserProfile) []profile.HistoryEntry {
	if p == nil {
		return nil
	}
	return p.ConversationHistory
}

func answeredCount(meta map[string]any) int {
	switch v := meta[engine.MetaAnsweredCount].(type) {
	case int:
		return v
	case float64:
		return int(v)
	default:
		return 0
	}
}
