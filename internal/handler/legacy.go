package handler

import (
	"errors"
	"log/slog"
	"net/http"

	"codeforge/internal/domain"
	"codeforge/internal/domain/models/builder"
	builderSvc "codeforge/internal/domain/services/builder"
	"codeforge/internal/httputil"
	"codeforge/internal/sandbox"
)

// legacyForbiddenMessage is the body field the existing frontend checks on a 403
const legacyForbiddenMessage = "You can't access this"

// LegacyHandler serves the stateless endpoints the browser-driven builder calls:
// the frontend keeps the tree and conversation itself and only asks the server
// for classification, completions and commands.
type LegacyHandler struct {
	templates builderSvc.TemplateService
	chat      builderSvc.ChatService
	sandbox   builderSvc.Sandbox
	logger    *slog.Logger
}

// NewLegacyHandler creates a new legacy handler. sandbox may be nil.
func NewLegacyHandler(
	templates builderSvc.TemplateService,
	chat builderSvc.ChatService,
	sandbox builderSvc.Sandbox,
	logger *slog.Logger,
) *LegacyHandler {
	return &LegacyHandler{
		templates: templates,
		chat:      chat,
		sandbox:   sandbox,
		logger:    logger,
	}
}

type templateRequest struct {
	Prompt string `json:"prompt"`
}

type chatRequest struct {
	Messages []builder.ChatMessage `json:"messages"`
}

type chatResponse struct {
	Response string `json:"response"`
}

type runCommandRequest struct {
	Command string `json:"command"`
}

// Template classifies a prompt and returns the template prompts
// POST /template
func (h *LegacyHandler) Template(w http.ResponseWriter, r *http.Request) {
	var req templateRequest
	if !parseBody(w, r, &req) {
		return
	}

	bundle, err := h.templates.Resolve(r.Context(), req.Prompt)
	if err != nil {
		if errors.Is(err, domain.ErrUnknownTemplate) {
			httputil.RespondErrorWithExtras(w, http.StatusForbidden, err.Error(), map[string]any{
				"message": legacyForbiddenMessage,
			})
			return
		}
		handleError(w, err)
		return
	}

	h.logger.Debug("template resolved", "template", bundle.Template)
	httputil.RespondJSON(w, http.StatusOK, bundle)
}

// Chat completes a browser-held conversation
// POST /chat
func (h *LegacyHandler) Chat(w http.ResponseWriter, r *http.Request) {
	var req chatRequest
	if !parseBody(w, r, &req) {
		return
	}

	reply, err := h.chat.Complete(r.Context(), req.Messages)
	if err != nil {
		handleError(w, err)
		return
	}
	if reply == "" {
		reply = "No response"
	}

	httputil.RespondJSON(w, http.StatusOK, chatResponse{Response: reply})
}

// RunCommand runs an allow-listed command in the shared sandbox workspace
// POST /run-command
func (h *LegacyHandler) RunCommand(w http.ResponseWriter, r *http.Request) {
	var req runCommandRequest
	if !parseBody(w, r, &req) {
		return
	}
	if req.Command == "" {
		httputil.RespondError(w, http.StatusBadRequest, "command is required")
		return
	}
	if h.sandbox == nil {
		httputil.RespondError(w, http.StatusForbidden, "sandbox is not configured")
		return
	}

	result, err := h.sandbox.Exec(r.Context(), sandbox.SharedWorkspace, req.Command)
	if err != nil {
		handleError(w, err)
		return
	}

	if !result.Succeeded() {
		h.logger.Warn("command failed", "command", req.Command, "exit_code", result.ExitCode)
		httputil.RespondErrorWithExtras(w, http.StatusInternalServerError, "command exited with a non-zero status", map[string]any{
			"error":     result.Stderr,
			"output":    result.Output,
			"exit_code": result.ExitCode,
		})
		return
	}

	httputil.RespondJSON(w, http.StatusOK, result)
}
