package filetree

import (
	"fmt"
	"strings"
)

// SplitPath breaks a step path into tree segments.
//
// Path conventions:
//   - Leading, trailing and repeated "/" produce no segments ("/a//b/" → ["a", "b"])
//   - "." segments are dropped
//   - ".." is rejected; a step may not climb out of the project root
//   - A path with no segments left is rejected
//
// Examples:
//   - "src/App.tsx" → ["src", "App.tsx"]
//   - "/a/b.txt" → ["a", "b.txt"]
//   - "./index.js" → ["index.js"]
func SplitPath(path string) ([]string, error) {
	raw := strings.Split(path, "/")
	segments := make([]string, 0, len(raw))

	for _, segment := range raw {
		switch segment {
		case "", ".":
			continue
		case "..":
			return nil, fmt.Errorf("path %q climbs above the project root", path)
		}
		segments = append(segments, segment)
	}

	if len(segments) == 0 {
		return nil, fmt.Errorf("path %q has no segments", path)
	}

	return segments, nil
}

// JoinPath builds the node path for the first n segments ("/src/components")
func JoinPath(segments []string, n int) string {
	return "/" + strings.Join(segments[:n], "/")
}

// NormalizePath returns the node path a step path resolves to
func NormalizePath(path string) (string, error) {
	segments, err := SplitPath(path)
	if err != nil {
		return "", err
	}
	return JoinPath(segments, len(segments)), nil
}
