package templates

import (
	"embed"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"

	"codeforge/internal/domain/models/builder"
)

//go:embed config/*.yaml
var configFiles embed.FS

// templateOrder is the order List returns templates in
var templateOrder = []builder.TemplateID{builder.TemplateNode, builder.TemplateReact}

// Registry holds the embedded templates and prompts. It is read-only after
// NewRegistry returns and safe for concurrent use.
type Registry struct {
	templates map[builder.TemplateID]*Template
	prompts   Prompts
}

// NewRegistry loads the embedded YAML files
func NewRegistry() (*Registry, error) {
	r := &Registry{
		templates: make(map[builder.TemplateID]*Template),
	}

	for _, id := range templateOrder {
		if err := r.loadTemplateFile(id); err != nil {
			return nil, fmt.Errorf("failed to load %s template: %w", id, err)
		}
	}

	if err := decodeFile("config/prompts.yaml", &r.prompts); err != nil {
		return nil, fmt.Errorf("failed to load prompts: %w", err)
	}
	if strings.TrimSpace(r.prompts.System) == "" || strings.TrimSpace(r.prompts.Classify) == "" {
		return nil, fmt.Errorf("prompts.yaml must define system and classify prompts")
	}

	return r, nil
}

// loadTemplateFile loads one template YAML file
func (r *Registry) loadTemplateFile(id builder.TemplateID) error {
	var tmpl Template
	if err := decodeFile(fmt.Sprintf("config/%s.yaml", id), &tmpl); err != nil {
		return err
	}
	if tmpl.ID != id {
		return fmt.Errorf("template file %s.yaml declares id %q", id, tmpl.ID)
	}
	if strings.TrimSpace(tmpl.Document) == "" {
		return fmt.Errorf("template %s has no document", id)
	}

	r.templates[id] = &tmpl
	return nil
}

func decodeFile(filename string, out interface{}) error {
	data, err := configFiles.ReadFile(filename)
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", filename, err)
	}
	if err := yaml.Unmarshal(data, out); err != nil {
		return fmt.Errorf("failed to unmarshal %s: %w", filename, err)
	}
	return nil
}

// Get returns the template for id
func (r *Registry) Get(id builder.TemplateID) (*Template, error) {
	tmpl, ok := r.templates[id]
	if !ok {
		return nil, fmt.Errorf("unknown template: %s", id)
	}
	return tmpl, nil
}

// List returns every template in a stable order
func (r *Registry) List() []Template {
	out := make([]Template, 0, len(templateOrder))
	for _, id := range templateOrder {
		out = append(out, *r.templates[id])
	}
	return out
}

// Prompts returns the fixed prompt texts
func (r *Registry) Prompts() Prompts {
	return r.prompts
}
