// Package template classifies a project description as one of the fixed
// templates and assembles the prompts a session starts from.
package template

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"codeforge/internal/config"
	"codeforge/internal/domain"
	"codeforge/internal/domain/models/builder"
	builderSvc "codeforge/internal/domain/services/builder"
	domainllm "codeforge/internal/domain/services/llm"
	"codeforge/internal/templates"
)

// Catalog is the part of the template registry the service reads
type Catalog interface {
	Get(id builder.TemplateID) (*templates.Template, error)
	Prompts() templates.Prompts
}

// Options configures the classification call
type Options struct {
	Model       string
	MaxTokens   int
	Temperature float64
}

// service implements the TemplateService interface
type service struct {
	generator domainllm.TextGenerator
	catalog   Catalog
	opts      Options
	logger    *slog.Logger
}

// NewService creates a new template service
func NewService(
	generator domainllm.TextGenerator,
	catalog Catalog,
	opts Options,
	logger *slog.Logger,
) builderSvc.TemplateService {
	return &service{
		generator: generator,
		catalog:   catalog,
		opts:      opts,
		logger:    logger,
	}
}

// Classify asks the model for a single word naming the template
func (s *service) Classify(ctx context.Context, prompt string) (builder.TemplateID, error) {
	if err := validatePrompt(prompt); err != nil {
		return "", fmt.Errorf("%w: %v", domain.ErrValidation, err)
	}

	resp, err := s.generator.Generate(ctx, &domainllm.GenerateRequest{
		Model: s.opts.Model,
		Messages: []domainllm.Message{
			domainllm.UserMessage(s.catalog.Prompts().Classify + "\n\n" + prompt),
		},
		Params: &domainllm.RequestParams{
			MaxTokens:   domainllm.Int(s.opts.MaxTokens),
			Temperature: domainllm.Float(s.opts.Temperature),
		},
	})
	if err != nil {
		return "", err
	}

	answer := normalizeAnswer(resp.Text)
	switch id := builder.TemplateID(answer); id {
	case builder.TemplateNode, builder.TemplateReact:
		s.logger.Debug("template classified", "template", id)
		return id, nil
	default:
		s.logger.Warn("template classification failed", "answer", resp.Text)
		return "", fmt.Errorf("%w: model answered %q", domain.ErrUnknownTemplate, answer)
	}
}

// Bundle builds the model context and seed documents for a template
func (s *service) Bundle(id builder.TemplateID) (*builderSvc.TemplateBundle, error) {
	tmpl, err := s.catalog.Get(id)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrNotFound, err)
	}
	prompts := s.catalog.Prompts()

	var modelContext []string
	if tmpl.IncludeBasePrompt {
		modelContext = append(modelContext, prompts.Base)
	}
	modelContext = append(modelContext, artifactPrompt(prompts, tmpl))

	return &builderSvc.TemplateBundle{
		Template:  id,
		Prompts:   modelContext,
		UIPrompts: []string{tmpl.Document},
	}, nil
}

// Resolve classifies the prompt and returns its bundle
func (s *service) Resolve(ctx context.Context, prompt string) (*builderSvc.TemplateBundle, error) {
	id, err := s.Classify(ctx, prompt)
	if err != nil {
		return nil, err
	}
	return s.Bundle(id)
}

// artifactPrompt shows the model the template's files and names the hidden ones
func artifactPrompt(prompts templates.Prompts, tmpl *templates.Template) string {
	var sb strings.Builder
	sb.WriteString(prompts.ArtifactPreamble)
	sb.WriteString("\n\n")
	sb.WriteString(tmpl.Document)
	sb.WriteString("\n\n")
	sb.WriteString(prompts.HiddenFilesPreamble)
	sb.WriteString("\n\n")
	for _, name := range tmpl.HiddenFiles {
		sb.WriteString("  - ")
		sb.WriteString(name)
		sb.WriteString("\n")
	}
	return sb.String()
}

// normalizeAnswer lower-cases the answer and strips whitespace, quotes and a trailing period
func normalizeAnswer(text string) string {
	return strings.ToLower(strings.Trim(strings.TrimSpace(text), "'\"`. \n"))
}

func validatePrompt(prompt string) error {
	return validation.Validate(strings.TrimSpace(prompt),
		validation.Required.Error("prompt is required"),
		validation.RuneLength(1, config.MaxPromptLength),
	)
}
