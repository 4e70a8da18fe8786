package templates

import "codeforge/internal/domain/models/builder"

// Template is one fixed project skeleton the classifier can pick
type Template struct {
	ID          builder.TemplateID `yaml:"id" json:"id"`
	DisplayName string             `yaml:"display_name" json:"display_name"`
	Description string             `yaml:"description" json:"description"`

	// IncludeBasePrompt prepends the design prompt to the model context
	IncludeBasePrompt bool `yaml:"include_base_prompt" json:"include_base_prompt"`

	// HiddenFiles exist in the sandbox but are not shown to the model
	HiddenFiles []string `yaml:"hidden_files" json:"hidden_files"`

	// Document is the base artifact that seeds the project tree
	Document string `yaml:"document" json:"-"`
}

// Prompts holds the fixed prompt texts
type Prompts struct {
	System              string `yaml:"system"`
	Base                string `yaml:"base"`
	Classify            string `yaml:"classify"`
	ArtifactPreamble    string `yaml:"artifact_preamble"`
	HiddenFilesPreamble string `yaml:"hidden_files_preamble"`
}
