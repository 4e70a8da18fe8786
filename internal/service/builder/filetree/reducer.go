// Package filetree folds build steps into the virtual project tree.
//
// Apply is a pure function over tree values: it never mutates the tree or the
// step slice it is given, and returns the next tree plus the steps with their
// status advanced. Callers own the tree and must serialise calls, feeding each
// returned tree into the next Apply.
package filetree

import (
	"fmt"
	"sort"

	"codeforge/internal/domain/models/builder"
)

// Apply folds every pending step into tree in SequenceIndex order.
//
// CreateFile upserts the file (latest write wins) and creates missing parent
// folders. CreateFolder creates every missing folder on the path. Shell and
// unknown steps do not touch the tree and are only marked completed; the caller
// relays them. Steps that are not pending are returned as they are.
//
// A step whose path is unusable or collides with an existing node of the other
// kind is marked rejected with a reason, and the tree is left as it was for that
// step.
func Apply(tree []builder.FileNode, steps []builder.BuildStep) ([]builder.FileNode, []builder.BuildStep) {
	out := make([]builder.BuildStep, len(steps))
	copy(out, steps)

	order := pendingOrder(out)
	if len(order) == 0 {
		return tree, out
	}

	next := builder.CloneTree(tree)
	if next == nil {
		next = []builder.FileNode{}
	}

	for _, i := range order {
		step := &out[i]

		var err error
		switch action := step.Action.(type) {
		case builder.CreateFile:
			err = upsertFile(&next, action.Path, action.Content)
		case builder.CreateFolder:
			err = ensureFolder(&next, action.Path)
		case builder.RunShellCommand, builder.Unknown:
		default:
			err = fmt.Errorf("unsupported action %T", step.Action)
		}

		if err != nil {
			step.Status = builder.StepStatusRejected
			step.Reason = err.Error()
			continue
		}
		step.Status = builder.StepStatusCompleted
	}

	return next, out
}

// pendingOrder returns the indexes of pending steps sorted by SequenceIndex.
// The sort is stable so equal indexes keep their slice order.
func pendingOrder(steps []builder.BuildStep) []int {
	order := make([]int, 0, len(steps))
	for i := range steps {
		if steps[i].IsPending() {
			order = append(order, i)
		}
	}
	sort.SliceStable(order, func(a, b int) bool {
		return steps[order[a]].SequenceIndex < steps[order[b]].SequenceIndex
	})
	return order
}

// upsertFile walks from the root, creating folders for every non-final segment,
// then writes the file at the final segment.
func upsertFile(root *[]builder.FileNode, path, content string) error {
	segments, err := SplitPath(path)
	if err != nil {
		return err
	}

	current := root
	for depth := 1; depth < len(segments); depth++ {
		folder, err := descend(current, segments, depth)
		if err != nil {
			return err
		}
		current = &folder.Children
	}

	fullPath := JoinPath(segments, len(segments))
	if idx := indexOfPath(*current, fullPath); idx >= 0 {
		node := &(*current)[idx]
		if node.IsFolder() {
			return fmt.Errorf("cannot write file %s: path is a folder", fullPath)
		}
		node.Content = content
		return nil
	}

	*current = append(*current, builder.FileNode{
		Name:    segments[len(segments)-1],
		Kind:    builder.NodeKindFile,
		Path:    fullPath,
		Content: content,
	})
	return nil
}

// ensureFolder creates every folder on path that does not exist yet
func ensureFolder(root *[]builder.FileNode, path string) error {
	segments, err := SplitPath(path)
	if err != nil {
		return err
	}

	current := root
	for depth := 1; depth <= len(segments); depth++ {
		folder, err := descend(current, segments, depth)
		if err != nil {
			return err
		}
		current = &folder.Children
	}
	return nil
}

// descend returns the folder for the first depth segments inside current,
// appending a new empty folder when none exists.
func descend(current *[]builder.FileNode, segments []string, depth int) (*builder.FileNode, error) {
	prefix := JoinPath(segments, depth)

	if idx := indexOfPath(*current, prefix); idx >= 0 {
		node := &(*current)[idx]
		if !node.IsFolder() {
			return nil, fmt.Errorf("cannot use %s as a folder: path is a file", prefix)
		}
		return node, nil
	}

	*current = append(*current, builder.FileNode{
		Name:     segments[depth-1],
		Kind:     builder.NodeKindFolder,
		Path:     prefix,
		Children: []builder.FileNode{},
	})
	return &(*current)[len(*current)-1], nil
}

func indexOfPath(nodes []builder.FileNode, path string) int {
	for i := range nodes {
		if nodes[i].Path == path {
			return i
		}
	}
	return -1
}
