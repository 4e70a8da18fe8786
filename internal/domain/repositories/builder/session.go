package builder

import (
	"context"

	"codeforge/internal/domain/models/builder"
)

// SessionRepository defines data access operations for builder sessions
type SessionRepository interface {
	// Create stores a new session. ID, timestamps and Version (1) are set on the passed session.
	Create(ctx context.Context, session *builder.Session) error

	// Get retrieves a session with its messages, steps and tree.
	// Returns domain.ErrNotFound when it does not exist.
	Get(ctx context.Context, id string) (*builder.Session, error)

	// Update replaces the stored session if its stored version still equals
	// session.Version, then increments session.Version and sets UpdatedAt.
	// Returns a *domain.ConflictError on a stale version.
	Update(ctx context.Context, session *builder.Session) error
}
