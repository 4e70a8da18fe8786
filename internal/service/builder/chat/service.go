// Package chat runs the builder's chat completion over a role-tagged conversation.
package chat

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"codeforge/internal/config"
	"codeforge/internal/domain"
	"codeforge/internal/domain/models/builder"
	builderSvc "codeforge/internal/domain/services/builder"
	domainllm "codeforge/internal/domain/services/llm"
)

// Options configures the chat completion call
type Options struct {
	Model        string
	MaxTokens    int
	Temperature  float64
	SystemPrompt string
}

// service implements the ChatService interface
type service struct {
	generator domainllm.TextGenerator
	opts      Options
	logger    *slog.Logger
}

// NewService creates a new chat service
func NewService(generator domainllm.TextGenerator, opts Options, logger *slog.Logger) builderSvc.ChatService {
	return &service{
		generator: generator,
		opts:      opts,
		logger:    logger,
	}
}

// Complete flattens the conversation into one transcript turn and returns the
// trimmed reply.
func (s *service) Complete(ctx context.Context, messages []builder.ChatMessage) (string, error) {
	if err := validateMessages(messages); err != nil {
		return "", fmt.Errorf("%w: %v", domain.ErrValidation, err)
	}

	params := &domainllm.RequestParams{
		MaxTokens:   domainllm.Int(s.opts.MaxTokens),
		Temperature: domainllm.Float(s.opts.Temperature),
	}
	if s.opts.SystemPrompt != "" {
		params.System = domainllm.String(s.opts.SystemPrompt)
	}

	resp, err := s.generator.Generate(ctx, &domainllm.GenerateRequest{
		Model:    s.opts.Model,
		Messages: []domainllm.Message{domainllm.UserMessage(Transcript(messages))},
		Params:   params,
	})
	if err != nil {
		return "", err
	}

	reply := strings.TrimSpace(resp.Text)
	s.logger.Debug("chat completed",
		"messages", len(messages),
		"reply_length", len(reply),
		"stop_reason", resp.StopReason,
	)
	if resp.StopReason == "max_tokens" {
		s.logger.Warn("chat reply truncated at max tokens", "max_tokens", s.opts.MaxTokens)
	}

	return reply, nil
}

// Transcript renders messages as "User: …" / "Assistant: …" / "System: …"
// paragraphs separated by a blank line.
func Transcript(messages []builder.ChatMessage) string {
	parts := make([]string, len(messages))
	for i, msg := range messages {
		parts[i] = speaker(msg.Role) + ": " + msg.Content
	}
	return strings.Join(parts, "\n\n")
}

func speaker(role string) string {
	switch role {
	case builder.RoleUser:
		return "User"
	case builder.RoleAssistant:
		return "Assistant"
	default:
		return "System"
	}
}

func validateMessages(messages []builder.ChatMessage) error {
	return validation.Validate(messages,
		validation.Required.Error("at least one message is required"),
		validation.Length(1, config.MaxChatMessages),
		validation.Each(validation.By(validateMessage)),
	)
}

func validateMessage(value interface{}) error {
	msg, ok := value.(builder.ChatMessage)
	if !ok {
		return fmt.Errorf("unexpected message type %T", value)
	}
	return validation.ValidateStruct(&msg,
		validation.Field(&msg.Role,
			validation.Required,
			validation.In(builder.RoleUser, builder.RoleAssistant, builder.RoleSystem),
		),
		validation.Field(&msg.Content, validation.RuneLength(0, config.MaxMessageLength)),
	)
}
