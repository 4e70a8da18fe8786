package handler

import (
	"fmt"
	"log/slog"
	"net/http"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"codeforge/internal/config"
	"codeforge/internal/domain"
	"codeforge/internal/domain/models/builder"
	"codeforge/internal/httputil"
	"codeforge/internal/service/builder/filetree"
	"codeforge/internal/service/builder/mount"
	"codeforge/internal/service/builder/steps"
	"codeforge/internal/templates"
)

// TemplateLister lists the available project templates
type TemplateLister interface {
	List() []templates.Template
}

// CatalogHandler serves the template catalog and the stateless parse preview
type CatalogHandler struct {
	templates TemplateLister
	logger    *slog.Logger
}

// NewCatalogHandler creates a new catalog handler
func NewCatalogHandler(templates TemplateLister, logger *slog.Logger) *CatalogHandler {
	return &CatalogHandler{templates: templates, logger: logger}
}

type parseRequest struct {
	Document string `json:"document"`
}

type parseResponse struct {
	Artifacts []steps.Artifact         `json:"artifacts"`
	Steps     []builder.BuildStep      `json:"steps"`
	Skipped   int                      `json:"skipped"`
	Tree      []builder.FileNode       `json:"tree"`
	Mount     builder.MountDescription `json:"mount"`
	Files     int                      `json:"files"`
	Folders   int                      `json:"folders"`
}

// ListTemplates returns the templates in classification order
// GET /api/templates
func (h *CatalogHandler) ListTemplates(w http.ResponseWriter, r *http.Request) {
	httputil.RespondJSON(w, http.StatusOK, h.templates.List())
}

// Parse runs a document through parser, reducer and projector against an empty tree
// POST /api/parse
func (h *CatalogHandler) Parse(w http.ResponseWriter, r *http.Request) {
	var req parseRequest
	if !parseBody(w, r, &req) {
		return
	}

	err := validation.Validate(req.Document,
		validation.Required.Error("document is required"),
		validation.Length(0, config.MaxDocumentSize),
	)
	if err != nil {
		handleError(w, fmt.Errorf("%w: %v", domain.ErrValidation, err))
		return
	}

	doc := steps.ParseDocument(req.Document)
	tree, applied := filetree.Apply([]builder.FileNode{}, doc.Steps)
	files, folders := filetree.Count(tree)

	artifacts := doc.Artifacts
	if artifacts == nil {
		artifacts = []steps.Artifact{}
	}

	h.logger.Debug("document parsed", "steps", len(applied), "skipped", doc.Skipped, "files", files)

	httputil.RespondJSON(w, http.StatusOK, parseResponse{
		Artifacts: artifacts,
		Steps:     applied,
		Skipped:   doc.Skipped,
		Tree:      tree,
		Mount:     mount.Project(tree),
		Files:     files,
		Folders:   folders,
	})
}
