package builder

import (
	"context"

	"codeforge/internal/domain/models/builder"
)

// Sandbox is the execution environment a session's project is mounted into
type Sandbox interface {
	// Mount replaces the session's files with desc
	Mount(ctx context.Context, sessionID string, desc builder.MountDescription) error

	// Exec runs command in the session's project directory.
	// Returns domain.ErrCommandNotAllowed for commands outside the allow-list.
	Exec(ctx context.Context, sessionID, command string) (*builder.ExecResult, error)
}
