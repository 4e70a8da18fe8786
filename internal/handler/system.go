package handler

import (
	"net/http"
	"time"

	"codeforge/internal/httputil"
)

// SystemHandler serves liveness endpoints
type SystemHandler struct {
	startedAt time.Time
}

// NewSystemHandler creates a new system handler
func NewSystemHandler() *SystemHandler {
	return &SystemHandler{startedAt: time.Now()}
}

// Root answers with a plain text banner
// GET /{$}
func (h *SystemHandler) Root(w http.ResponseWriter, r *http.Request) {
	httputil.RespondText(w, http.StatusOK, "codeforge builder server is running.")
}

// HealthCheck reports that the server is up
// GET /health
func (h *SystemHandler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	httputil.RespondJSON(w, http.StatusOK, map[string]any{
		"status": "ok",
		"time":   time.Now().UTC(),
		"uptime": time.Since(h.startedAt).Round(time.Second).String(),
	})
}
