package filetree

import "codeforge/internal/domain/models/builder"

// Find returns the node at path ("src/App.tsx" and "/src/App.tsx" are the same node)
func Find(tree []builder.FileNode, path string) (*builder.FileNode, bool) {
	segments, err := SplitPath(path)
	if err != nil {
		return nil, false
	}

	current := tree
	for depth := 1; depth <= len(segments); depth++ {
		idx := indexOfPath(current, JoinPath(segments, depth))
		if idx < 0 {
			return nil, false
		}
		if depth == len(segments) {
			return &current[idx], true
		}
		current = current[idx].Children
	}
	return nil, false
}

// Walk visits every node depth-first in insertion order. Returning false from fn
// stops the walk below that node.
func Walk(tree []builder.FileNode, fn func(node *builder.FileNode) bool) {
	for i := range tree {
		if fn(&tree[i]) && tree[i].IsFolder() {
			Walk(tree[i].Children, fn)
		}
	}
}

// Count returns the number of file and folder nodes in the tree
func Count(tree []builder.FileNode) (files, folders int) {
	Walk(tree, func(node *builder.FileNode) bool {
		if node.IsFolder() {
			folders++
		} else {
			files++
		}
		return true
	})
	return files, folders
}

// Depth returns the number of levels in the tree; an empty tree has depth 0
func Depth(tree []builder.FileNode) int {
	deepest := 0
	for _, node := range tree {
		d := 1
		if node.IsFolder() {
			d += Depth(node.Children)
		}
		if d > deepest {
			deepest = d
		}
	}
	return deepest
}
