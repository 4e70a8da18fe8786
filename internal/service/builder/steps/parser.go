// Package steps turns a model response into an ordered list of build steps.
//
// Responses use the artifact tag format the prompts ask for:
//
//	<boltArtifact id="project-import" title="Project Files">
//	  <boltAction type="file" filePath="src/App.tsx">…</boltAction>
//	  <boltAction type="shell">npm install</boltAction>
//	</boltArtifact>
//
// Action tags are scanned in document order wherever they appear. The scan is
// best-effort: a broken tag is skipped on its own and never aborts the rest of
// the document.
package steps

import (
	"regexp"
	"strings"

	"codeforge/internal/domain/models/builder"
)

const (
	actionOpen    = "<boltAction"
	actionClose   = "</boltAction>"
	artifactOpen  = "<boltArtifact"
	attrFilePath  = "filePath"
	attrType      = "type"
	actionFile    = "file"
	actionShell   = "shell"
	actionFolder  = "folder"
	actionDirAlt  = "directory"
	artifactID    = "id"
	artifactTitle = "title"
)

var attrPattern = regexp.MustCompile(`([A-Za-z_:][-A-Za-z0-9_:.]*)\s*=\s*(?:"([^"]*)"|'([^']*)')`)

// Artifact is the header of one <boltArtifact> wrapper
type Artifact struct {
	ID    string `json:"id"`
	Title string `json:"title"`
}

// Document is the full result of scanning one response
type Document struct {
	Artifacts []Artifact          `json:"artifacts"`
	Steps     []builder.BuildStep `json:"steps"`
	// Skipped counts malformed action tags that produced no step
	Skipped int `json:"skipped"`
}

// Parse returns the build steps found in doc, all pending, in document order.
func Parse(doc string) []builder.BuildStep {
	return ParseDocument(doc).Steps
}

// ParseDocument scans doc for artifact headers and action tags.
func ParseDocument(doc string) *Document {
	result := &Document{
		Artifacts: parseArtifacts(doc),
		Steps:     []builder.BuildStep{},
	}

	pos := 0
	for pos < len(doc) {
		start := indexTag(doc, actionOpen, pos)
		if start < 0 {
			break
		}
		attrStart := start + len(actionOpen)

		gt := strings.IndexByte(doc[attrStart:], '>')
		if gt < 0 {
			// Opening tag never closes; nothing after it can be a complete tag.
			result.Skipped++
			break
		}
		attrText := doc[attrStart : attrStart+gt]
		if strings.Contains(attrText, "<") {
			result.Skipped++
			pos = attrStart
			continue
		}
		bodyStart := attrStart + gt + 1

		var body string
		if strings.HasSuffix(strings.TrimSpace(attrText), "/") {
			attrText = strings.TrimSuffix(strings.TrimSpace(attrText), "/")
			pos = bodyStart
		} else {
			end := strings.Index(doc[bodyStart:], actionClose)
			next := indexTag(doc, actionOpen, bodyStart)
			if end < 0 || (next >= 0 && next < bodyStart+end) {
				result.Skipped++
				pos = bodyStart
				continue
			}
			body = doc[bodyStart : bodyStart+end]
			pos = bodyStart + end + len(actionClose)
		}

		action, ok := buildAction(parseAttributes(attrText), body)
		if !ok {
			result.Skipped++
			continue
		}

		result.Steps = append(result.Steps, builder.BuildStep{
			SequenceIndex: len(result.Steps),
			Status:        builder.StepStatusPending,
			Action:        action,
		})
	}

	return result
}

// buildAction maps a tag to its action. ok is false for tags missing a required attribute.
func buildAction(attrs map[string]string, body string) (builder.Action, bool) {
	actionType := strings.TrimSpace(attrs[attrType])

	switch strings.ToLower(actionType) {
	case actionFile:
		path := strings.TrimSpace(attrs[attrFilePath])
		if path == "" {
			return nil, false
		}
		return builder.CreateFile{Path: path, Content: body}, true

	case actionFolder, actionDirAlt:
		path := strings.TrimSpace(attrs[attrFilePath])
		if path == "" {
			return nil, false
		}
		return builder.CreateFolder{Path: path}, true

	case actionShell:
		// A blank body is still a well-formed tag; it yields an empty command
		return builder.RunShellCommand{Command: strings.TrimSpace(body)}, true

	default:
		return builder.Unknown{Type: actionType, Body: body}, true
	}
}

// parseArtifacts collects the id/title of every artifact opening tag
func parseArtifacts(doc string) []Artifact {
	artifacts := []Artifact{}

	pos := 0
	for pos < len(doc) {
		start := indexTag(doc, artifactOpen, pos)
		if start < 0 {
			break
		}
		attrStart := start + len(artifactOpen)
		gt := strings.IndexByte(doc[attrStart:], '>')
		if gt < 0 {
			break
		}
		attrs := parseAttributes(doc[attrStart : attrStart+gt])
		artifacts = append(artifacts, Artifact{
			ID:    attrs[artifactID],
			Title: attrs[artifactTitle],
		})
		pos = attrStart + gt + 1
	}

	return artifacts
}

// parseAttributes reads name="value" / name='value' pairs; the first occurrence wins
func parseAttributes(text string) map[string]string {
	attrs := make(map[string]string)
	for _, m := range attrPattern.FindAllStringSubmatch(text, -1) {
		name := m[1]
		if _, seen := attrs[name]; seen {
			continue
		}
		value := m[2]
		if value == "" {
			value = m[3]
		}
		attrs[name] = value
	}
	return attrs
}

// indexTag finds the next occurrence of tag at or after from that is a whole tag name,
// so "<boltActionFoo" does not match "<boltAction".
func indexTag(doc, tag string, from int) int {
	for from < len(doc) {
		i := strings.Index(doc[from:], tag)
		if i < 0 {
			return -1
		}
		start := from + i
		after := start + len(tag)
		if after >= len(doc) || isTagBoundary(doc[after]) {
			return start
		}
		from = after
	}
	return -1
}

func isTagBoundary(c byte) bool {
	return c == '>' || c == '/' || c == ' ' || c == '\t' || c == '\n' || c == '\r'
}
