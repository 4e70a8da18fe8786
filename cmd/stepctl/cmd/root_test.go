package cmd

import (
	"archive/zip"
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
)

const sampleDoc = `<boltArtifact id="demo" title="Demo">
<boltAction type="file" filePath="src/index.js">console.log("hi")</boltAction>
<boltAction type="shell">npm install</boltAction>
<boltAction type="file">missing path</boltAction>
</boltArtifact>`

// run executes stepctl with args and stdin, returning stdout and stderr
func run(t *testing.T, stdin string, args ...string) (string, string, error) {
	t.Helper()

	var stdout, stderr bytes.Buffer
	root := newRootCmd()
	root.SetArgs(args)
	root.SetIn(strings.NewReader(stdin))
	root.SetOut(&stdout)
	root.SetErr(&stderr)

	err := root.Execute()
	return stdout.String(), stderr.String(), err
}

func writeDoc(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
	return path
}

func TestParseCommand(t *testing.T) {
	out, _, err := run(t, sampleDoc, "parse", "--compact")
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}

	var doc struct {
		Steps []struct {
			Kind string `json:"kind"`
			Path string `json:"path"`
		} `json:"steps"`
		Skipped int `json:"skipped"`
	}
	if err := json.Unmarshal([]byte(out), &doc); err != nil {
		t.Fatalf("output is not JSON: %v\n%s", err, out)
	}
	if len(doc.Steps) != 2 || doc.Skipped != 1 {
		t.Fatalf("steps = %d, skipped = %d, want 2 and 1", len(doc.Steps), doc.Skipped)
	}
	if doc.Steps[0].Kind != "create_file" || doc.Steps[0].Path != "src/index.js" {
		t.Errorf("first step = %+v", doc.Steps[0])
	}
}

func TestParseCommand_Summary(t *testing.T) {
	out, _, err := run(t, sampleDoc, "parse", "--summary")
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}

	for _, want := range []string{"create_file", "src/index.js", "run_shell_command", "npm install", "1 malformed action(s) skipped"} {
		if !strings.Contains(out, want) {
			t.Errorf("summary missing %q:\n%s", want, out)
		}
	}
}

func TestTreeCommand_BatchesInArgumentOrder(t *testing.T) {
	first := writeDoc(t, "first.xml", `<boltAction type="file" filePath="a.txt">one</boltAction>`)
	second := writeDoc(t, "second.xml", `<boltAction type="file" filePath="a.txt">two</boltAction>`+
		`<boltAction type="file" filePath="a.txt/b.txt">nested</boltAction>`)

	out, stderr, err := run(t, "", "tree", "--json", "--compact", first, second)
	if err != nil {
		t.Fatalf("tree failed: %v", err)
	}

	want := `[{"name":"a.txt","type":"file","path":"/a.txt","content":"two"}]` + "\n"
	if diff := cmp.Diff(want, out); diff != "" {
		t.Errorf("tree mismatch (-want +got):\n%s", diff)
	}
	if !strings.Contains(stderr, "batch 2 step 1 rejected") {
		t.Errorf("rejection not reported, stderr: %q", stderr)
	}
}

func TestTreeCommand_TemplateSeed(t *testing.T) {
	out, _, err := run(t, `<boltAction type="file" filePath="src/extra.ts">x</boltAction>`, "tree", "--template", "react")
	if err != nil {
		t.Fatalf("tree failed: %v", err)
	}

	for _, want := range []string{"src/", "App.tsx", "extra.ts", "package.json"} {
		if !strings.Contains(out, want) {
			t.Errorf("tree output missing %q:\n%s", want, out)
		}
	}

	if _, _, err := run(t, "", "tree", "--template", "rust"); err == nil {
		t.Error("expected an error for an unknown template")
	}
}

func TestMountCommand(t *testing.T) {
	out, _, err := run(t, sampleDoc, "mount", "--compact")
	if err != nil {
		t.Fatalf("mount failed: %v", err)
	}

	want := `{"src":{"directory":{"index.js":{"file":{"contents":"console.log(\"hi\")"}}}}}` + "\n"
	if diff := cmp.Diff(want, out); diff != "" {
		t.Errorf("mount mismatch (-want +got):\n%s", diff)
	}
}

func TestMaterializeCommand(t *testing.T) {
	dir := t.TempDir()

	out, _, err := run(t, sampleDoc, "materialize", "--out", dir, "--name", "demo")
	if err != nil {
		t.Fatalf("materialize failed: %v", err)
	}
	if !strings.Contains(out, "wrote 1 file(s) and 1 folder(s)") {
		t.Errorf("unexpected output %q", out)
	}

	data, err := os.ReadFile(filepath.Join(dir, "demo", "src", "index.js"))
	if err != nil {
		t.Fatalf("read materialized file: %v", err)
	}
	if string(data) != `console.log("hi")` {
		t.Errorf("materialized content = %q", data)
	}
}

func TestArchiveCommand(t *testing.T) {
	out := filepath.Join(t.TempDir(), "demo.zip")

	if _, _, err := run(t, sampleDoc, "archive", "--out", out, "--root", "demo"); err != nil {
		t.Fatalf("archive failed: %v", err)
	}

	zr, err := zip.OpenReader(out)
	if err != nil {
		t.Fatalf("open archive: %v", err)
	}
	defer zr.Close()

	var names []string
	for _, f := range zr.File {
		names = append(names, f.Name)
	}
	if diff := cmp.Diff([]string{"demo/src/", "demo/src/index.js"}, names); diff != "" {
		t.Errorf("archive entries mismatch (-want +got):\n%s", diff)
	}
}

func TestTemplatesCommand(t *testing.T) {
	out, _, err := run(t, "", "templates")
	if err != nil {
		t.Fatalf("templates failed: %v", err)
	}

	lines := strings.Split(strings.TrimSpace(out), "\n")
	if len(lines) != 3 {
		t.Fatalf("expected header and 2 templates, got:\n%s", out)
	}
	if !strings.HasPrefix(lines[1], "node") || !strings.HasPrefix(lines[2], "react") {
		t.Errorf("unexpected template order:\n%s", out)
	}
}

func TestMissingFile(t *testing.T) {
	if _, _, err := run(t, "", "tree", filepath.Join(t.TempDir(), "nope.xml")); err == nil {
		t.Error("expected an error for a missing file")
	}
}
