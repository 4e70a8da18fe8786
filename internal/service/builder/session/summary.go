package session

import (
	"fmt"
	"strings"

	"codeforge/internal/domain/models/builder"
)

const (
	noFilesReply      = "No new files created. Anything else you want to do?"
	initialReplyClose = "All set! Anything else you'd like to do?"
)

// Summarize is the short reply shown in place of a raw model response.
// The first turn of a session lists every created file; later turns only count them.
func Summarize(steps []builder.BuildStep, initial bool) string {
	created := createdPaths(steps)
	if len(created) == 0 {
		return noFilesReply
	}

	if !initial {
		return fmt.Sprintf("%d new file(s) created. What would you like to do next?", len(created))
	}

	lines := make([]string, 0, len(created)+1)
	for i, path := range created {
		lines = append(lines, fmt.Sprintf("%d) Created %s", i+1, path))
	}
	lines = append(lines, initialReplyClose)
	return strings.Join(lines, "\n")
}

// createdPaths lists the paths of applied file steps in batch order
func createdPaths(steps []builder.BuildStep) []string {
	var paths []string
	for _, step := range steps {
		file, ok := step.Action.(builder.CreateFile)
		if !ok || file.Path == "" || step.Status != builder.StepStatusCompleted {
			continue
		}
		paths = append(paths, file.Path)
	}
	return paths
}
