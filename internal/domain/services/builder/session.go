package builder

import (
	"context"

	"codeforge/internal/domain/models/builder"
)

// StartSessionRequest starts a builder session from a project description
type StartSessionRequest struct {
	Prompt string `json:"prompt"`
}

// SendMessageRequest is the next user turn of a session
type SendMessageRequest struct {
	Content string `json:"content"`
}

// WriteFileRequest is an editor save
type WriteFileRequest struct {
	Path    string `json:"path"`
	Content string `json:"content"`
}

// RunCommandRequest runs a command in the session's sandbox
type RunCommandRequest struct {
	Command string `json:"command"`
}

// SessionService drives the classify, chat, parse, reduce, mount loop
type SessionService interface {
	// Start classifies the prompt, seeds the tree from the template and runs the first chat turn
	Start(ctx context.Context, req *StartSessionRequest) (*builder.TurnResult, error)

	// SendMessage runs one more chat turn and folds the reply into the tree
	SendMessage(ctx context.Context, sessionID string, req *SendMessageRequest) (*builder.TurnResult, error)

	// WriteFile applies an editor save as a one-step batch
	WriteFile(ctx context.Context, sessionID string, req *WriteFileRequest) (*builder.TurnResult, error)

	// Get returns the session
	Get(ctx context.Context, sessionID string) (*builder.Session, error)

	// Tree returns the session's file tree
	Tree(ctx context.Context, sessionID string) ([]builder.FileNode, error)

	// Mount returns the mount description of the session's tree
	Mount(ctx context.Context, sessionID string) (builder.MountDescription, error)

	// RunCommand runs a command in the session's sandbox
	RunCommand(ctx context.Context, sessionID string, req *RunCommandRequest) (*builder.ExecResult, error)
}
