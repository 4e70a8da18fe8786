package builder

import "time"

// ExecResult is the outcome of one sandbox command
type ExecResult struct {
	Command  string        `json:"command"`
	Output   string        `json:"output"`
	Stderr   string        `json:"stderr,omitempty"`
	ExitCode int           `json:"exit_code"`
	Duration time.Duration `json:"duration_ns"`
}

// Succeeded reports whether the command exited cleanly
func (r *ExecResult) Succeeded() bool {
	return r.ExitCode == 0
}
