package handler

import (
	"fmt"
	"log/slog"
	"net/http"
	"strconv"

	builderSvc "codeforge/internal/domain/services/builder"
	"codeforge/internal/httputil"
	"codeforge/internal/service/builder/archive"
)

// SessionHandler handles builder session HTTP requests
type SessionHandler struct {
	sessions builderSvc.SessionService
	logger   *slog.Logger
}

// NewSessionHandler creates a new session handler
func NewSessionHandler(sessions builderSvc.SessionService, logger *slog.Logger) *SessionHandler {
	return &SessionHandler{
		sessions: sessions,
		logger:   logger,
	}
}

// StartSession classifies the prompt and runs the first turn
// POST /api/sessions
func (h *SessionHandler) StartSession(w http.ResponseWriter, r *http.Request) {
	var req builderSvc.StartSessionRequest
	if !parseBody(w, r, &req) {
		return
	}

	result, err := h.sessions.Start(r.Context(), &req)
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusCreated, result)
}

// GetSession returns the session with its conversation, steps and tree
// GET /api/sessions/{id}
func (h *SessionHandler) GetSession(w http.ResponseWriter, r *http.Request) {
	sessionID, ok := PathParam(w, r, "id", "Session ID")
	if !ok {
		return
	}

	session, err := h.sessions.Get(r.Context(), sessionID)
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, session)
}

// SendMessage runs the next chat turn
// POST /api/sessions/{id}/messages
func (h *SessionHandler) SendMessage(w http.ResponseWriter, r *http.Request) {
	sessionID, ok := PathParam(w, r, "id", "Session ID")
	if !ok {
		return
	}

	var req builderSvc.SendMessageRequest
	if !parseBody(w, r, &req) {
		return
	}

	result, err := h.sessions.SendMessage(r.Context(), sessionID, &req)
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, result)
}

// WriteFile saves an editor change into the tree
// PUT /api/sessions/{id}/files
func (h *SessionHandler) WriteFile(w http.ResponseWriter, r *http.Request) {
	sessionID, ok := PathParam(w, r, "id", "Session ID")
	if !ok {
		return
	}

	var req builderSvc.WriteFileRequest
	if !parseBody(w, r, &req) {
		return
	}

	result, err := h.sessions.WriteFile(r.Context(), sessionID, &req)
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, result)
}

// GetTree returns the session's file tree
// GET /api/sessions/{id}/tree
func (h *SessionHandler) GetTree(w http.ResponseWriter, r *http.Request) {
	sessionID, ok := PathParam(w, r, "id", "Session ID")
	if !ok {
		return
	}

	tree, err := h.sessions.Tree(r.Context(), sessionID)
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, tree)
}

// GetMount returns the mount description of the session's tree
// GET /api/sessions/{id}/mount
func (h *SessionHandler) GetMount(w http.ResponseWriter, r *http.Request) {
	sessionID, ok := PathParam(w, r, "id", "Session ID")
	if !ok {
		return
	}

	desc, err := h.sessions.Mount(r.Context(), sessionID)
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, desc)
}

// DownloadArchive returns the session's tree as a zip file
// GET /api/sessions/{id}/archive
func (h *SessionHandler) DownloadArchive(w http.ResponseWriter, r *http.Request) {
	sessionID, ok := PathParam(w, r, "id", "Session ID")
	if !ok {
		return
	}

	session, err := h.sessions.Get(r.Context(), sessionID)
	if err != nil {
		handleError(w, err)
		return
	}

	root := archiveName(string(session.Template), session.ID)
	buf, err := archive.Bytes(root, session.Tree)
	if err != nil {
		handleError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/zip")
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="%s.zip"`, root))
	w.Header().Set("Content-Length", strconv.Itoa(buf.Len()))
	w.WriteHeader(http.StatusOK)
	if _, err := buf.WriteTo(w); err != nil {
		h.logger.Warn("archive write failed", "session_id", sessionID, "error", err)
	}
}

// archiveName is "<template>-<first 8 chars of the id>"
func archiveName(template, sessionID string) string {
	short := sessionID
	if len(short) > 8 {
		short = short[:8]
	}
	return template + "-" + short
}

// RunCommand runs a command in the session's sandbox.
// A non-zero exit is still a 200; the exit code is in the body.
// POST /api/sessions/{id}/commands
func (h *SessionHandler) RunCommand(w http.ResponseWriter, r *http.Request) {
	sessionID, ok := PathParam(w, r, "id", "Session ID")
	if !ok {
		return
	}

	var req builderSvc.RunCommandRequest
	if !parseBody(w, r, &req) {
		return
	}

	result, err := h.sessions.RunCommand(r.Context(), sessionID, &req)
	if err != nil {
		handleError(w, err)
		return
	}

	h.logger.Info("session command finished",
		"session_id", sessionID,
		"command", req.Command,
		"exit_code", result.ExitCode,
	)
	httputil.RespondJSON(w, http.StatusOK, result)
}
