package builder

import "time"

// Chat roles accepted from clients and sent to the model
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
	RoleSystem    = "system"
)

// TemplateID names one of the fixed project skeletons
type TemplateID string

const (
	TemplateNode  TemplateID = "node"
	TemplateReact TemplateID = "react"
)

// ChatMessage is one role-tagged turn of the conversation.
// Content is what the model saw or said; Summary is the short text shown in
// place of a raw assistant reply.
type ChatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
	Summary string `json:"summary,omitempty"`
}

// SessionStep is a build step tagged with the turn (batch) that produced it.
// Session-wide ordering is (Batch, Step.SequenceIndex).
type SessionStep struct {
	Batch int       `json:"batch"`
	Step  BuildStep `json:"step"`
}

// Session is one builder conversation and the project tree it has produced so far
type Session struct {
	ID       string     `json:"id"`
	Prompt   string     `json:"prompt"`
	Template TemplateID `json:"template"`
	// LLMContext holds the template prompts sent ahead of the visible conversation
	LLMContext []string      `json:"-"`
	Messages   []ChatMessage `json:"messages"`
	Steps      []SessionStep `json:"steps"`
	Tree       []FileNode    `json:"tree"`
	// Batches counts reducer invocations; the next batch gets Batches+1
	Batches   int       `json:"batches"`
	Version   int       `json:"version"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Clone returns a deep copy so callers can mutate without aliasing stored state
func (s *Session) Clone() *Session {
	if s == nil {
		return nil
	}
	out := *s
	out.LLMContext = cloneSlice(s.LLMContext)
	out.Messages = cloneSlice(s.Messages)
	out.Steps = cloneSlice(s.Steps)
	out.Tree = CloneTree(s.Tree)
	return &out
}

// cloneSlice copies s, keeping nil and empty distinct
func cloneSlice[T any](s []T) []T {
	if s == nil {
		return nil
	}
	out := make([]T, len(s))
	copy(out, s)
	return out
}

// TurnResult is what one reducer batch produced for a session
type TurnResult struct {
	Session *Session    `json:"session"`
	Batch   int         `json:"batch"`
	Steps   []BuildStep `json:"steps"`
	Reply   string      `json:"reply"`
}
