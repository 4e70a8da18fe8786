package handler

import (
	"net/http"

	"codeforge/internal/metrics"
)

// Handlers groups the handlers mounted on the server mux
type Handlers struct {
	System   *SystemHandler
	Legacy   *LegacyHandler
	Catalog  *CatalogHandler
	Sessions *SessionHandler
}

// Register mounts every route on mux
func Register(mux *http.ServeMux, h Handlers) {
	mux.HandleFunc("GET /{$}", h.System.Root)
	mux.HandleFunc("GET /health", h.System.HealthCheck)
	mux.Handle("GET /metrics", metrics.Handler())

	// Endpoints of the browser-driven builder
	mux.HandleFunc("POST /template", h.Legacy.Template)
	mux.HandleFunc("POST /chat", h.Legacy.Chat)
	mux.HandleFunc("POST /run-command", h.Legacy.RunCommand)

	mux.HandleFunc("GET /api/templates", h.Catalog.ListTemplates)
	mux.HandleFunc("POST /api/parse", h.Catalog.Parse)

	mux.HandleFunc("POST /api/sessions", h.Sessions.StartSession)
	mux.HandleFunc("GET /api/sessions/{id}", h.Sessions.GetSession)
	mux.HandleFunc("POST /api/sessions/{id}/messages", h.Sessions.SendMessage)
	mux.HandleFunc("PUT /api/sessions/{id}/files", h.Sessions.WriteFile)
	mux.HandleFunc("GET /api/sessions/{id}/tree", h.Sessions.GetTree)
	mux.HandleFunc("GET /api/sessions/{id}/mount", h.Sessions.GetMount)
	mux.HandleFunc("GET /api/sessions/{id}/archive", h.Sessions.DownloadArchive)
	mux.HandleFunc("POST /api/sessions/{id}/commands", h.Sessions.RunCommand)
}
