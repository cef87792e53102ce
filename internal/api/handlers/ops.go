package handlers

import (
	"net/http"

	"github.com/appforge/discovery-ai-platform/internal/session"
)

// OpsHandler serves the operational endpoints: health and analytics.
type OpsHandler struct {
	sessions *session.Manager
}

// NewOpsHandler creates the operational handler.
func NewOpsHandler(sessions *session.Manager) *OpsHandler {
	return &OpsHandler{sessions: sessions}
}

// Healthz handles GET /healthz. An unhealthy store degrades the status
// code so load balancers rotate the instance out.
func (h *OpsHandler) Healthz(w http.ResponseWriter, r *http.Request) {
	status := h.sessions.GetHealthStatus(r.Context())
	code := http.StatusOK
	if !status.Healthy {
		code = http.StatusServiceUnavailable
	}
	writeJSON(w, code, status)
}

// Analytics handles GET /api/analytics.
func (h *OpsHandler) Analytics(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.sessions.GetSessionAnalytics())
}
