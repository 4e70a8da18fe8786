// Package memory keeps builder sessions in process memory. It backs the server
// when no database is configured and stands in for postgres in tests.
package memory

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"codeforge/internal/domain"
	"codeforge/internal/domain/models/builder"
	builderRepo "codeforge/internal/domain/repositories/builder"
)

// SessionRepository stores deep copies so callers never alias stored state
type SessionRepository struct {
	mu       sync.RWMutex
	sessions map[string]*builder.Session
}

// NewSessionRepository creates an empty in-memory session repository
func NewSessionRepository() builderRepo.SessionRepository {
	return &SessionRepository{
		sessions: make(map[string]*builder.Session),
	}
}

// Create stores a new session
func (r *SessionRepository) Create(ctx context.Context, session *builder.Session) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	now := time.Now().UTC()
	if session.ID == "" {
		session.ID = uuid.NewString()
	}
	session.Version = 1
	session.CreatedAt = now
	session.UpdatedAt = now

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.sessions[session.ID]; exists {
		return &domain.ConflictError{
			Message:      fmt.Sprintf("session %s already exists", session.ID),
			ResourceType: "session",
			ResourceID:   session.ID,
		}
	}
	r.sessions[session.ID] = session.Clone()
	return nil
}

// Get retrieves a session by ID
func (r *SessionRepository) Get(ctx context.Context, id string) (*builder.Session, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	session, ok := r.sessions[id]
	if !ok {
		return nil, &domain.NotFoundError{Message: fmt.Sprintf("session %s not found", id)}
	}
	return session.Clone(), nil
}

// Update replaces the stored session when the versions match
func (r *SessionRepository) Update(ctx context.Context, session *builder.Session) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	stored, ok := r.sessions[session.ID]
	if !ok {
		return &domain.NotFoundError{Message: fmt.Sprintf("session %s not found", session.ID)}
	}
	if stored.Version != session.Version {
		return domain.NewVersionConflict("session", session.ID, session.Version)
	}

	session.Version++
	session.UpdatedAt = time.Now().UTC()
	r.sessions[session.ID] = session.Clone()
	return nil
}
