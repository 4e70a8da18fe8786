package llm

import "context"

// LLMProvider defines the interface that all LLM providers must implement.
// Adapters over the provider library satisfy it so services never see
// library types.
type LLMProvider interface {
	// GenerateResponse runs one non-streaming completion.
	GenerateResponse(ctx context.Context, req *GenerateRequest) (*GenerateResponse, error)

	// Name returns the provider name (e.g., "anthropic", "lorem")
	Name() string

	// SupportsModel returns true if the provider supports the given model.
	SupportsModel(model string) bool
}

// TextGenerator is the single completion call the builder services depend on.
// It resolves the provider from the model string.
type TextGenerator interface {
	Generate(ctx context.Context, req *GenerateRequest) (*GenerateResponse, error)
}

// GenerateRequest contains the parameters for one completion.
type GenerateRequest struct {
	// Messages contains the conversation, oldest first
	Messages []Message

	// Model is the model identifier, optionally provider-qualified ("lorem/lorem-fast")
	Model string

	Params *RequestParams
}

// RequestParams holds the sampling parameters the builder uses.
// Nil fields fall back to provider defaults.
type RequestParams struct {
	MaxTokens   *int
	Temperature *float64
	System      *string
}

// Message is a single text turn.
type Message struct {
	// Role is either "user" or "assistant"
	Role string
	Text string
}

// GenerateResponse contains the provider's response.
type GenerateResponse struct {
	// Text is the concatenation of the response's text blocks
	Text string

	// Model is the model that was used (may differ from request if aliased)
	Model string

	// Provider is the provider that served the request
	Provider string

	InputTokens  int
	OutputTokens int

	// StopReason indicates why generation stopped (e.g., "end_turn", "max_tokens")
	StopReason string
}

// UserMessage builds a user turn
func UserMessage(text string) Message {
	return Message{Role: "user", Text: text}
}

// Int returns a pointer to n
func Int(n int) *int { return &n }

// Float returns a pointer to f
func Float(f float64) *float64 { return &f }

// String returns a pointer to s
func String(s string) *string { return &s }
