package builder

import (
	"context"

	"codeforge/internal/domain/models/builder"
)

// ChatService runs one completion over a role-tagged conversation
type ChatService interface {
	// Complete returns the model's reply to messages (oldest first)
	Complete(ctx context.Context, messages []builder.ChatMessage) (string, error)
}
