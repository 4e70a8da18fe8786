package builder

import (
	"encoding/json"
	"fmt"
)

// StepKind identifies the action a build step carries
type StepKind string

const (
	StepKindCreateFile      StepKind = "create_file"
	StepKindCreateFolder    StepKind = "create_folder"
	StepKindRunShellCommand StepKind = "run_shell_command"
	StepKindUnknown         StepKind = "unknown"
)

// StepStatus tracks whether a step has been folded into the file tree
type StepStatus string

const (
	StepStatusPending   StepStatus = "pending"
	StepStatusCompleted StepStatus = "completed"
	// StepStatusRejected marks a step the reducer refused to apply (path-kind conflict
	// or an unusable path). Rejected steps are never retried.
	StepStatusRejected StepStatus = "rejected"
)

// Action is the closed set of things a build step can ask for.
// The unexported marker keeps the set closed to this package; consumers switch on
// the concrete type and treat anything else as a programming error.
type Action interface {
	Kind() StepKind
	isAction()
}

// CreateFile writes Content at Path, creating parent folders as needed
type CreateFile struct {
	Path    string
	Content string
}

// CreateFolder ensures every segment of Path exists as a folder
type CreateFolder struct {
	Path string
}

// RunShellCommand is relayed to the sandbox, it never touches the tree
type RunShellCommand struct {
	Command string
}

// Unknown is a recognised action tag with an action type this build does not handle
type Unknown struct {
	Type string
	Body string
}

func (CreateFile) Kind() StepKind      { return StepKindCreateFile }
func (CreateFolder) Kind() StepKind    { return StepKindCreateFolder }
func (RunShellCommand) Kind() StepKind { return StepKindRunShellCommand }
func (Unknown) Kind() StepKind         { return StepKindUnknown }

func (CreateFile) isAction()      {}
func (CreateFolder) isAction()    {}
func (RunShellCommand) isAction() {}
func (Unknown) isAction()         {}

// BuildStep is one unit of work extracted from a model response
type BuildStep struct {
	// SequenceIndex is the step's position in its originating document
	SequenceIndex int
	Status        StepStatus
	Action        Action
	// Reason explains a rejected step
	Reason string
}

// Kind returns the kind of the step's action
func (s BuildStep) Kind() StepKind {
	if s.Action == nil {
		return StepKindUnknown
	}
	return s.Action.Kind()
}

// IsPending reports whether the reducer still has to consume the step
func (s BuildStep) IsPending() bool {
	return s.Status == StepStatusPending
}

// Path returns the target path for file and folder steps, "" otherwise
func (s BuildStep) Path() string {
	switch a := s.Action.(type) {
	case CreateFile:
		return a.Path
	case CreateFolder:
		return a.Path
	default:
		return ""
	}
}

// buildStepJSON is the flat wire form of a BuildStep
type buildStepJSON struct {
	SequenceIndex int        `json:"sequence_index"`
	Status        StepStatus `json:"status"`
	Kind          StepKind   `json:"kind"`
	Path          string     `json:"path,omitempty"`
	Content       *string    `json:"content,omitempty"`
	Command       string     `json:"command,omitempty"`
	Type          string     `json:"type,omitempty"`
	Body          string     `json:"body,omitempty"`
	Reason        string     `json:"reason,omitempty"`
}

// MarshalJSON flattens the action into the step object
func (s BuildStep) MarshalJSON() ([]byte, error) {
	out := buildStepJSON{
		SequenceIndex: s.SequenceIndex,
		Status:        s.Status,
		Kind:          s.Kind(),
		Reason:        s.Reason,
	}

	switch a := s.Action.(type) {
	case CreateFile:
		content := a.Content
		out.Path = a.Path
		out.Content = &content
	case CreateFolder:
		out.Path = a.Path
	case RunShellCommand:
		out.Command = a.Command
	case Unknown:
		out.Type = a.Type
		out.Body = a.Body
	case nil:
	default:
		return nil, fmt.Errorf("unsupported action type %T", s.Action)
	}

	return json.Marshal(out)
}

// UnmarshalJSON rebuilds the action from the flat wire form
func (s *BuildStep) UnmarshalJSON(data []byte) error {
	var in buildStepJSON
	if err := json.Unmarshal(data, &in); err != nil {
		return err
	}

	action, err := NewAction(in.Kind, in.Path, derefString(in.Content), in.Command, in.Type, in.Body)
	if err != nil {
		return err
	}

	s.SequenceIndex = in.SequenceIndex
	s.Status = in.Status
	s.Reason = in.Reason
	s.Action = action
	return nil
}

// NewAction builds the action for a kind from its flattened fields.
// Used by JSON decoding and by repositories that store steps column-wise.
func NewAction(kind StepKind, path, content, command, actionType, body string) (Action, error) {
	switch kind {
	case StepKindCreateFile:
		return CreateFile{Path: path, Content: content}, nil
	case StepKindCreateFolder:
		return CreateFolder{Path: path}, nil
	case StepKindRunShellCommand:
		return RunShellCommand{Command: command}, nil
	case StepKindUnknown:
		return Unknown{Type: actionType, Body: body}, nil
	default:
		return nil, fmt.Errorf("unknown step kind %q", kind)
	}
}

func derefString(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
