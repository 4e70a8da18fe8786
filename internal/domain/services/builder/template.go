package builder

import (
	"context"

	"codeforge/internal/domain/models/builder"
)

// TemplateBundle is what a classified prompt starts from: the prompts sent to the
// model ahead of the conversation and the base documents that seed the tree.
type TemplateBundle struct {
	Template  builder.TemplateID `json:"template"`
	Prompts   []string           `json:"prompts"`
	UIPrompts []string           `json:"uiPrompts"`
}

// TemplateService picks a project template for a prompt
type TemplateService interface {
	// Classify asks the model whether the prompt is a node or react project.
	// Returns domain.ErrUnknownTemplate when the answer is neither.
	Classify(ctx context.Context, prompt string) (builder.TemplateID, error)

	// Bundle returns the prompts for a template
	Bundle(id builder.TemplateID) (*TemplateBundle, error)

	// Resolve classifies the prompt and returns its bundle
	Resolve(ctx context.Context, prompt string) (*TemplateBundle, error)
}
