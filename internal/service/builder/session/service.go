// Package session drives a builder conversation: classify the prompt, seed the
// tree from the template, chat, parse the reply into steps, fold them into the
// tree and mount the result into the sandbox.
package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/google/uuid"

	"codeforge/internal/config"
	"codeforge/internal/domain"
	"codeforge/internal/domain/models/builder"
	builderRepo "codeforge/internal/domain/repositories/builder"
	builderSvc "codeforge/internal/domain/services/builder"
	"codeforge/internal/metrics"
	"codeforge/internal/service/builder/filetree"
	"codeforge/internal/service/builder/mount"
	"codeforge/internal/service/builder/steps"
)

// Turn kinds recorded in metrics
const (
	turnStart = "start"
	turnChat  = "chat"
	turnWrite = "write"
)

// Options configures the session service
type Options struct {
	// AutoRun relays shell steps to the sandbox after each turn
	AutoRun bool
}

// Service implements builderSvc.SessionService
type Service struct {
	repo      builderRepo.SessionRepository
	templates builderSvc.TemplateService
	chat      builderSvc.ChatService
	sandbox   builderSvc.Sandbox
	opts      Options
	logger    *slog.Logger

	locks *keyedMutex
	// sandboxLocks orders mounts, relays and commands within one session's sandbox
	sandboxLocks *keyedMutex

	// background shell relays run on baseCtx and are tracked by wg
	baseCtx context.Context
	cancel  context.CancelFunc
	wg      sync.WaitGroup
}

var _ builderSvc.SessionService = (*Service)(nil)

// NewService creates a session service. sandbox may be nil, in which case turns
// are not mounted and RunCommand fails.
func NewService(
	repo builderRepo.SessionRepository,
	templates builderSvc.TemplateService,
	chat builderSvc.ChatService,
	sandbox builderSvc.Sandbox,
	opts Options,
	logger *slog.Logger,
) *Service {
	ctx, cancel := context.WithCancel(context.Background())
	return &Service{
		repo:      repo,
		templates: templates,
		chat:      chat,
		sandbox:   sandbox,
		opts:      opts,
		logger:    logger,
		locks:        newKeyedMutex(),
		sandboxLocks: newKeyedMutex(),
		baseCtx:      ctx,
		cancel:       cancel,
	}
}

// Close cancels background shell relays and waits for them to stop
func (s *Service) Close() {
	s.cancel()
	s.wg.Wait()
}

// Start classifies the prompt, seeds the tree and runs the first chat turn
func (s *Service) Start(ctx context.Context, req *builderSvc.StartSessionRequest) (result *builder.TurnResult, err error) {
	defer func() { metrics.RecordSessionTurn(turnStart, err == nil) }()

	if err := validatePrompt(req.Prompt); err != nil {
		return nil, err
	}

	bundle, err := s.templates.Resolve(ctx, req.Prompt)
	if err != nil {
		return nil, err
	}

	session := &builder.Session{
		ID:         uuid.NewString(),
		Prompt:     req.Prompt,
		Template:   bundle.Template,
		LLMContext: append([]string(nil), bundle.Prompts...),
		Messages:   []builder.ChatMessage{},
		Steps:      []builder.SessionStep{},
		Tree:       []builder.FileNode{},
	}

	// The template's base documents seed the tree before the model says anything
	for _, doc := range bundle.UIPrompts {
		s.applyBatch(session, s.parse(doc))
	}

	userMsg := builder.ChatMessage{Role: builder.RoleUser, Content: req.Prompt}
	reply, err := s.chat.Complete(ctx, s.conversation(session, userMsg))
	if err != nil {
		return nil, err
	}

	applied := s.applyBatch(session, s.parse(reply))
	summary := Summarize(applied, true)
	session.Messages = append(session.Messages, userMsg, builder.ChatMessage{
		Role:    builder.RoleAssistant,
		Content: reply,
		Summary: summary,
	})

	if err := s.repo.Create(ctx, session); err != nil {
		return nil, fmt.Errorf("create session: %w", err)
	}

	s.logger.Info("session started",
		"session_id", session.ID,
		"template", session.Template,
		"batches", session.Batches,
		"steps", len(session.Steps),
	)

	s.afterTurn(ctx, session, applied)

	return &builder.TurnResult{
		Session: session,
		Batch:   session.Batches,
		Steps:   applied,
		Reply:   summary,
	}, nil
}

// SendMessage runs one more chat turn and folds the reply into the tree
func (s *Service) SendMessage(ctx context.Context, sessionID string, req *builderSvc.SendMessageRequest) (result *builder.TurnResult, err error) {
	defer func() { metrics.RecordSessionTurn(turnChat, err == nil) }()

	err = validation.Validate(req.Content,
		validation.Required.Error("message content is required"),
		validation.RuneLength(0, config.MaxMessageLength),
	)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrValidation, err)
	}

	unlock := s.locks.Lock(sessionID)
	defer unlock()

	session, err := s.repo.Get(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	userMsg := builder.ChatMessage{Role: builder.RoleUser, Content: req.Content}
	reply, err := s.chat.Complete(ctx, s.conversation(session, userMsg))
	if err != nil {
		return nil, err
	}

	applied := s.applyBatch(session, s.parse(reply))
	summary := Summarize(applied, false)
	session.Messages = append(session.Messages, userMsg, builder.ChatMessage{
		Role:    builder.RoleAssistant,
		Content: reply,
		Summary: summary,
	})

	if err := s.repo.Update(ctx, session); err != nil {
		return nil, err
	}

	s.logger.Info("session turn applied",
		"session_id", session.ID,
		"batch", session.Batches,
		"steps", len(applied),
	)

	s.afterTurn(ctx, session, applied)

	return &builder.TurnResult{
		Session: session,
		Batch:   session.Batches,
		Steps:   applied,
		Reply:   summary,
	}, nil
}

// WriteFile applies an editor save as a one-step batch
func (s *Service) WriteFile(ctx context.Context, sessionID string, req *builderSvc.WriteFileRequest) (result *builder.TurnResult, err error) {
	defer func() { metrics.RecordSessionTurn(turnWrite, err == nil) }()

	err = validation.ValidateStruct(req,
		validation.Field(&req.Path,
			validation.Required.Error("path is required"),
			validation.RuneLength(1, config.MaxFilePathLength),
		),
		validation.Field(&req.Content, validation.Length(0, config.MaxDocumentSize)),
	)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrValidation, err)
	}

	unlock := s.locks.Lock(sessionID)
	defer unlock()

	session, err := s.repo.Get(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	applied := s.applyBatch(session, []builder.BuildStep{{
		SequenceIndex: 0,
		Status:        builder.StepStatusPending,
		Action:        builder.CreateFile{Path: req.Path, Content: req.Content},
	}})
	if applied[0].Status == builder.StepStatusRejected {
		return nil, &domain.ValidationError{Message: applied[0].Reason}
	}

	if err := s.repo.Update(ctx, session); err != nil {
		return nil, err
	}

	s.afterTurn(ctx, session, applied)

	return &builder.TurnResult{
		Session: session,
		Batch:   session.Batches,
		Steps:   applied,
	}, nil
}

// Get returns the session
func (s *Service) Get(ctx context.Context, sessionID string) (*builder.Session, error) {
	return s.repo.Get(ctx, sessionID)
}

// Tree returns the session's file tree, never nil
func (s *Service) Tree(ctx context.Context, sessionID string) ([]builder.FileNode, error) {
	session, err := s.repo.Get(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if session.Tree == nil {
		return []builder.FileNode{}, nil
	}
	return session.Tree, nil
}

// Mount returns the mount description of the session's tree
func (s *Service) Mount(ctx context.Context, sessionID string) (builder.MountDescription, error) {
	session, err := s.repo.Get(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	return mount.Project(session.Tree), nil
}

// RunCommand runs a command in the session's sandbox
func (s *Service) RunCommand(ctx context.Context, sessionID string, req *builderSvc.RunCommandRequest) (*builder.ExecResult, error) {
	err := validation.Validate(req.Command,
		validation.Required.Error("command is required"),
		validation.RuneLength(0, config.MaxCommandLength),
	)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrValidation, err)
	}

	if s.sandbox == nil {
		return nil, &domain.ForbiddenError{Message: "sandbox is not configured"}
	}

	if _, err := s.repo.Get(ctx, sessionID); err != nil {
		return nil, err
	}

	unlock := s.sandboxLocks.Lock(sessionID)
	defer unlock()

	return s.sandbox.Exec(ctx, sessionID, req.Command)
}

// conversation is what the model sees for the next turn: the template prompts,
// the raw history and the new user message
func (s *Service) conversation(session *builder.Session, next builder.ChatMessage) []builder.ChatMessage {
	out := make([]builder.ChatMessage, 0, len(session.LLMContext)+len(session.Messages)+1)
	for _, prompt := range session.LLMContext {
		out = append(out, builder.ChatMessage{Role: builder.RoleUser, Content: prompt})
	}
	for _, msg := range session.Messages {
		out = append(out, builder.ChatMessage{Role: msg.Role, Content: msg.Content})
	}
	return append(out, next)
}

// parse extracts pending steps from a document and records what was found
func (s *Service) parse(doc string) []builder.BuildStep {
	parsed := steps.ParseDocument(doc)

	kinds := make(map[string]int)
	for _, step := range parsed.Steps {
		kinds[string(step.Kind())]++
	}
	metrics.RecordStepsParsed(kinds, parsed.Skipped)

	if parsed.Skipped > 0 {
		s.logger.Warn("skipped malformed actions", "count", parsed.Skipped)
	}
	return parsed.Steps
}

// applyBatch folds parsed into the session's tree as the next batch
func (s *Service) applyBatch(session *builder.Session, parsed []builder.BuildStep) []builder.BuildStep {
	tree, applied := filetree.Apply(session.Tree, parsed)
	session.Tree = tree
	session.Batches++

	for _, step := range applied {
		session.Steps = append(session.Steps, builder.SessionStep{Batch: session.Batches, Step: step})
		metrics.RecordStepApplied(string(step.Status))

		if step.Status == builder.StepStatusRejected {
			s.logger.Warn("build step rejected",
				"session_id", session.ID,
				"batch", session.Batches,
				"sequence_index", step.SequenceIndex,
				"path", step.Path(),
				"reason", step.Reason,
			)
		}
	}
	return applied
}

// afterTurn mounts the new tree and relays shell steps when auto-run is on.
// It waits for the previous turn's relay in the same session before mounting;
// the relay it starts holds the session's sandbox lock until its commands finish.
// Sandbox failures are logged; the turn itself has already been stored.
func (s *Service) afterTurn(ctx context.Context, session *builder.Session, applied []builder.BuildStep) {
	if s.sandbox == nil {
		return
	}

	sessionID := session.ID
	unlock := s.sandboxLocks.Lock(sessionID)

	if err := s.sandbox.Mount(ctx, sessionID, mount.Project(session.Tree)); err != nil {
		unlock()
		s.logger.Warn("sandbox mount failed", "session_id", sessionID, "error", err)
		return
	}

	var commands []string
	if s.opts.AutoRun {
		commands = shellCommands(applied)
	}
	if len(commands) == 0 {
		unlock()
		return
	}

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		defer unlock()
		s.relay(sessionID, commands)
	}()
}

// relay runs commands in order, stopping at the first failure
func (s *Service) relay(sessionID string, commands []string) {
	for _, command := range commands {
		if s.baseCtx.Err() != nil {
			return
		}

		result, err := s.sandbox.Exec(s.baseCtx, sessionID, command)
		switch {
		case errors.Is(err, domain.ErrCommandNotAllowed):
			s.logger.Warn("shell step not allowed", "session_id", sessionID, "command", command)
			return
		case err != nil:
			s.logger.Warn("shell step failed", "session_id", sessionID, "command", command, "error", err)
			return
		case !result.Succeeded():
			s.logger.Warn("shell step exited non-zero",
				"session_id", sessionID,
				"command", command,
				"exit_code", result.ExitCode,
			)
			return
		}

		s.logger.Info("shell step completed", "session_id", sessionID, "command", command, "duration", result.Duration)
	}
}

func shellCommands(applied []builder.BuildStep) []string {
	var commands []string
	for _, step := range applied {
		if cmd, ok := step.Action.(builder.RunShellCommand); ok && cmd.Command != "" {
			commands = append(commands, cmd.Command)
		}
	}
	return commands
}

func validatePrompt(prompt string) error {
	err := validation.Validate(prompt,
		validation.Required.Error("prompt is required"),
		validation.RuneLength(0, config.MaxPromptLength),
	)
	if err != nil {
		return fmt.Errorf("%w: %v", domain.ErrValidation, err)
	}
	return nil
}
