// Package sandbox materializes session projects on the local disk and runs
// allow-listed commands inside them.
package sandbox

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"codeforge/internal/domain"
	"codeforge/internal/domain/models/builder"
	"codeforge/internal/metrics"
)

// SharedWorkspace is the directory used by commands that belong to no session
const SharedWorkspace = "shared"

// forbiddenChars may not appear in a command part; && is the only chaining allowed
const forbiddenChars = ";|&`$<>\n\r"

// Options configures a local sandbox
type Options struct {
	Root            string
	AllowedCommands []string
	Timeout         time.Duration
}

// Local keeps one directory per session under Root
type Local struct {
	root    string
	allowed []string
	timeout time.Duration
	logger  *slog.Logger
}

// NewLocal creates the root directory if needed
func NewLocal(opts Options, logger *slog.Logger) (*Local, error) {
	root, err := filepath.Abs(opts.Root)
	if err != nil {
		return nil, fmt.Errorf("resolve sandbox root: %w", err)
	}
	if err := os.MkdirAll(root, 0755); err != nil {
		return nil, fmt.Errorf("create sandbox root: %w", err)
	}

	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = 2 * time.Minute
	}

	return &Local{
		root:    root,
		allowed: opts.AllowedCommands,
		timeout: timeout,
		logger:  logger,
	}, nil
}

// Dir returns the directory of a session
func (l *Local) Dir(sessionID string) (string, error) {
	if err := validateName(sessionID); err != nil {
		return "", fmt.Errorf("%w: invalid session id: %v", domain.ErrValidation, err)
	}
	return filepath.Join(l.root, sessionID), nil
}

// Mount writes desc over the session directory. Files not named in desc are left alone
// so installed dependencies survive a remount.
func (l *Local) Mount(ctx context.Context, sessionID string, desc builder.MountDescription) error {
	dir, err := l.Dir(sessionID)
	if err != nil {
		return err
	}

	err = writeDescription(ctx, dir, desc)
	metrics.RecordSandboxMount(err == nil)
	if err != nil {
		return fmt.Errorf("mount session %s: %w", sessionID, err)
	}

	l.logger.Debug("sandbox mounted", "session_id", sessionID, "dir", dir)
	return nil
}

func writeDescription(ctx context.Context, dir string, desc builder.MountDescription) error {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}

	for name, entry := range desc {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := validateName(name); err != nil {
			return err
		}

		target := filepath.Join(dir, name)
		if entry.IsDirectory() {
			if err := writeDescription(ctx, target, entry.Directory); err != nil {
				return err
			}
			continue
		}
		if err := os.WriteFile(target, []byte(entry.File.Contents), 0644); err != nil {
			return err
		}
	}
	return nil
}

// Exec runs command with sh in the session directory.
// A command that runs and exits non-zero is not an error; see ExecResult.ExitCode.
func (l *Local) Exec(ctx context.Context, sessionID, command string) (*builder.ExecResult, error) {
	command = strings.TrimSpace(command)
	if err := l.checkCommand(command); err != nil {
		metrics.RecordSandboxCommand("rejected", 0)
		l.logger.Warn("sandbox command rejected", "session_id", sessionID, "command", command)
		return nil, err
	}

	dir, err := l.Dir(sessionID)
	if err != nil {
		return nil, err
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("create session directory: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, l.timeout)
	defer cancel()

	var stdout, stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, "sh", "-c", command)
	cmd.Dir = dir
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	// Children that outlive a killed shell must not hold the output pipes open
	cmd.WaitDelay = time.Second

	start := time.Now()
	runErr := cmd.Run()
	elapsed := time.Since(start)

	result := &builder.ExecResult{
		Command:  command,
		Output:   stdout.String(),
		Stderr:   stderr.String(),
		Duration: elapsed,
	}

	if runErr != nil {
		var exitErr *exec.ExitError
		switch {
		case ctx.Err() != nil:
			metrics.RecordSandboxCommand("error", elapsed)
			return nil, fmt.Errorf("command %q did not finish: %w", command, ctx.Err())
		case errors.As(runErr, &exitErr):
			result.ExitCode = exitErr.ExitCode()
		default:
			metrics.RecordSandboxCommand("error", elapsed)
			return nil, fmt.Errorf("run command %q: %w", command, runErr)
		}
	}

	status := "success"
	if !result.Succeeded() {
		status = "error"
	}
	metrics.RecordSandboxCommand(status, elapsed)

	l.logger.Info("sandbox command finished",
		"session_id", sessionID,
		"command", command,
		"exit_code", result.ExitCode,
		"duration_ms", elapsed.Milliseconds(),
	)
	return result, nil
}

// checkCommand accepts "a && b && c" where every part starts with an allowed prefix
func (l *Local) checkCommand(command string) error {
	if command == "" {
		return fmt.Errorf("%w: empty command", domain.ErrCommandNotAllowed)
	}

	for _, part := range strings.Split(command, "&&") {
		part = strings.TrimSpace(part)
		if strings.ContainsAny(part, forbiddenChars) {
			return fmt.Errorf("%w: %q contains shell control characters", domain.ErrCommandNotAllowed, part)
		}
		if !l.isAllowed(part) {
			return fmt.Errorf("%w: only %s commands are allowed", domain.ErrCommandNotAllowed, strings.Join(l.allowed, ", "))
		}
	}
	return nil
}

func (l *Local) isAllowed(part string) bool {
	for _, prefix := range l.allowed {
		if part == prefix || strings.HasPrefix(part, prefix+" ") {
			return true
		}
	}
	return false
}

// validateName accepts a single path element
func validateName(name string) error {
	switch {
	case name == "", name == ".", name == "..":
		return fmt.Errorf("invalid name %q", name)
	case strings.ContainsAny(name, `/\`), strings.ContainsRune(name, 0):
		return fmt.Errorf("name %q contains a path separator", name)
	}
	return nil
}
