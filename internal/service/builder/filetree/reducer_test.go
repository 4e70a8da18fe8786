package filetree

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"codeforge/internal/domain/models/builder"
)

func fileStep(index int, path, content string) builder.BuildStep {
	return builder.BuildStep{
		SequenceIndex: index,
		Status:        builder.StepStatusPending,
		Action:        builder.CreateFile{Path: path, Content: content},
	}
}

func folderStep(index int, path string) builder.BuildStep {
	return builder.BuildStep{
		SequenceIndex: index,
		Status:        builder.StepStatusPending,
		Action:        builder.CreateFolder{Path: path},
	}
}

func TestApply_FolderAutoCreation(t *testing.T) {
	tree, steps := Apply(nil, []builder.BuildStep{
		fileStep(0, "/src/components/App.tsx", "hello"),
	})

	want := []builder.FileNode{
		{
			Name: "src",
			Kind: builder.NodeKindFolder,
			Path: "/src",
			Children: []builder.FileNode{
				{
					Name: "components",
					Kind: builder.NodeKindFolder,
					Path: "/src/components",
					Children: []builder.FileNode{
						{
							Name:    "App.tsx",
							Kind:    builder.NodeKindFile,
							Path:    "/src/components/App.tsx",
							Content: "hello",
						},
					},
				},
			},
		},
	}

	if diff := cmp.Diff(want, tree); diff != "" {
		t.Errorf("tree mismatch (-want +got):\n%s", diff)
	}
	if steps[0].Status != builder.StepStatusCompleted {
		t.Errorf("status = %s, want completed", steps[0].Status)
	}
}

func TestApply_RelativeAndAbsolutePathsShareNodes(t *testing.T) {
	tree, _ := Apply(nil, []builder.BuildStep{
		fileStep(0, "src/a.ts", "a"),
		fileStep(1, "/src/b.ts", "b"),
		fileStep(2, "./src//c.ts", "c"),
	})

	if len(tree) != 1 {
		t.Fatalf("expected one root folder, got %d nodes", len(tree))
	}
	if got := len(tree[0].Children); got != 3 {
		t.Errorf("expected 3 files under /src, got %d", got)
	}
	for i, name := range []string{"a.ts", "b.ts", "c.ts"} {
		if tree[0].Children[i].Name != name {
			t.Errorf("child %d = %s, want %s (insertion order)", i, tree[0].Children[i].Name, name)
		}
	}
}

func TestApply_LastWriteWins(t *testing.T) {
	tests := []struct {
		name  string
		steps []builder.BuildStep
		want  string
	}{
		{
			name:  "in slice order",
			steps: []builder.BuildStep{fileStep(0, "/a/b.txt", "X"), fileStep(1, "/a/b.txt", "Y")},
			want:  "Y",
		},
		{
			name:  "sequence index beats slice order",
			steps: []builder.BuildStep{fileStep(1, "/a/b.txt", "Y"), fileStep(0, "/a/b.txt", "X")},
			want:  "Y",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tree, _ := Apply(nil, tt.steps)
			node, ok := Find(tree, "/a/b.txt")
			if !ok {
				t.Fatal("file /a/b.txt not found")
			}
			if node.Content != tt.want {
				t.Errorf("content = %q, want %q", node.Content, tt.want)
			}
			if files, _ := Count(tree); files != 1 {
				t.Errorf("expected a single file node, got %d", files)
			}
		})
	}
}

func TestApply_UpsertIsIdempotent(t *testing.T) {
	once, _ := Apply(nil, []builder.BuildStep{fileStep(0, "src/index.js", "console.log(1)")})
	twice, _ := Apply(nil, []builder.BuildStep{
		fileStep(0, "src/index.js", "console.log(1)"),
		fileStep(1, "src/index.js", "console.log(1)"),
	})

	if diff := cmp.Diff(once, twice); diff != "" {
		t.Errorf("applying the same step twice changed the tree (-once +twice):\n%s", diff)
	}
}

func TestApply_CompletedStepsAreNoOps(t *testing.T) {
	tree, steps := Apply(nil, []builder.BuildStep{fileStep(0, "a.txt", "first")})

	// Re-apply the already completed step on a tree where the file has moved on
	edited, _ := Apply(tree, []builder.BuildStep{fileStep(1, "a.txt", "edited")})
	again, againSteps := Apply(edited, steps)

	if diff := cmp.Diff(edited, again); diff != "" {
		t.Errorf("completed step changed the tree (-want +got):\n%s", diff)
	}
	if againSteps[0].Status != builder.StepStatusCompleted {
		t.Errorf("status = %s, want completed", againSteps[0].Status)
	}
}

func TestApply_BatchesComposeLikeConcatenation(t *testing.T) {
	b1 := []builder.BuildStep{
		fileStep(0, "package.json", "{}"),
		fileStep(1, "src/index.js", "v1"),
		folderStep(2, "public"),
	}
	b2 := []builder.BuildStep{
		fileStep(3, "src/index.js", "v2"),
		fileStep(4, "src/lib/util.js", "util"),
		fileStep(5, "public/index.html", "<html></html>"),
	}

	seqTree, _ := Apply(nil, b1)
	seqTree, _ = Apply(seqTree, b2)

	all := append(append([]builder.BuildStep{}, b1...), b2...)
	oneTree, _ := Apply(nil, all)

	if diff := cmp.Diff(oneTree, seqTree); diff != "" {
		t.Errorf("sequential batches differ from one batch (-one +seq):\n%s", diff)
	}
}

func TestApply_NonFileStepsDoNotTouchTree(t *testing.T) {
	steps := []builder.BuildStep{
		{SequenceIndex: 0, Status: builder.StepStatusPending, Action: builder.RunShellCommand{Command: "npm install"}},
		{SequenceIndex: 1, Status: builder.StepStatusPending, Action: builder.Unknown{Type: "start", Body: "npm run dev"}},
	}

	tree, got := Apply([]builder.FileNode{}, steps)
	if len(tree) != 0 {
		t.Errorf("expected empty tree, got %d nodes", len(tree))
	}
	for i, step := range got {
		if step.Status != builder.StepStatusCompleted {
			t.Errorf("step %d status = %s, want completed", i, step.Status)
		}
	}
	if cmd, ok := got[0].Action.(builder.RunShellCommand); !ok || cmd.Command != "npm install" {
		t.Errorf("shell step not forwarded unchanged: %#v", got[0].Action)
	}
}

func TestApply_EmptyBatchReturnsTreeUnchanged(t *testing.T) {
	tree, _ := Apply(nil, []builder.BuildStep{fileStep(0, "a/b.txt", "b")})

	got, steps := Apply(tree, nil)
	if diff := cmp.Diff(tree, got); diff != "" {
		t.Errorf("tree changed (-want +got):\n%s", diff)
	}
	if len(steps) != 0 {
		t.Errorf("expected no steps, got %d", len(steps))
	}
}

func TestApply_DoesNotMutateInputs(t *testing.T) {
	tree, _ := Apply(nil, []builder.BuildStep{fileStep(0, "src/a.ts", "a")})
	snapshot := builder.CloneTree(tree)

	input := []builder.BuildStep{
		fileStep(1, "src/a.ts", "changed"),
		fileStep(2, "src/b.ts", "b"),
	}
	next, out := Apply(tree, input)

	if diff := cmp.Diff(snapshot, tree); diff != "" {
		t.Errorf("input tree mutated (-before +after):\n%s", diff)
	}
	for i, step := range input {
		if step.Status != builder.StepStatusPending {
			t.Errorf("input step %d mutated to %s", i, step.Status)
		}
	}
	if out[0].Status != builder.StepStatusCompleted || out[1].Status != builder.StepStatusCompleted {
		t.Errorf("returned steps not completed: %s, %s", out[0].Status, out[1].Status)
	}
	if files, _ := Count(next); files != 2 {
		t.Errorf("expected 2 files in next tree, got %d", files)
	}
}

func TestApply_PathKindConflicts(t *testing.T) {
	base, _ := Apply(nil, []builder.BuildStep{
		fileStep(0, "src/index.js", "x"),
		folderStep(1, "public"),
	})

	tests := []struct {
		name string
		step builder.BuildStep
	}{
		{name: "file under an existing file", step: fileStep(2, "src/index.js/extra.js", "y")},
		{name: "file over an existing folder", step: fileStep(2, "public", "y")},
		{name: "folder over an existing file", step: folderStep(2, "src/index.js")},
		{name: "path climbing above root", step: fileStep(2, "../etc/passwd", "y")},
		{name: "path without segments", step: fileStep(2, "/", "y")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tree, steps := Apply(base, []builder.BuildStep{tt.step})

			if steps[0].Status != builder.StepStatusRejected {
				t.Errorf("status = %s, want rejected", steps[0].Status)
			}
			if steps[0].Reason == "" {
				t.Error("expected a rejection reason")
			}
			if diff := cmp.Diff(base, tree); diff != "" {
				t.Errorf("rejected step changed the tree (-want +got):\n%s", diff)
			}
		})
	}
}

func TestApply_ConflictDoesNotBlockLaterSteps(t *testing.T) {
	tree, steps := Apply(nil, []builder.BuildStep{
		fileStep(0, "a", "file"),
		fileStep(1, "a/b.txt", "nested"),
		fileStep(2, "c.txt", "fine"),
	})

	want := []builder.StepStatus{
		builder.StepStatusCompleted,
		builder.StepStatusRejected,
		builder.StepStatusCompleted,
	}
	for i, status := range want {
		if steps[i].Status != status {
			t.Errorf("step %d status = %s, want %s", i, steps[i].Status, status)
		}
	}
	if _, ok := Find(tree, "c.txt"); !ok {
		t.Error("c.txt missing after earlier conflict")
	}
}

func TestApply_CreateFolderIsIdempotent(t *testing.T) {
	tree, steps := Apply(nil, []builder.BuildStep{
		folderStep(0, "src/components"),
		folderStep(1, "src/components"),
		fileStep(2, "src/components/Button.tsx", "btn"),
	})

	if _, folders := Count(tree); folders != 2 {
		t.Errorf("expected 2 folders, got %d", folders)
	}
	for i, step := range steps {
		if step.Status != builder.StepStatusCompleted {
			t.Errorf("step %d status = %s, want completed", i, step.Status)
		}
	}
}
