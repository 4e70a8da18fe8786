package builder

import "encoding/json"

// NodeKind distinguishes files from folders in the project tree
type NodeKind string

const (
	NodeKindFile   NodeKind = "file"
	NodeKindFolder NodeKind = "folder"
)

// FileNode is one entry of the virtual project tree.
// Path is the full slash-delimited path from the root ("/src/App.tsx") and is the
// node's identity among its siblings. There is no parent pointer; all traversal
// starts at the root slice.
type FileNode struct {
	Name     string     `json:"name"`
	Kind     NodeKind   `json:"type"`
	Path     string     `json:"path"`
	Content  string     `json:"content,omitempty"`
	Children []FileNode `json:"children,omitempty"`
}

// IsFolder reports whether the node is a folder
func (n FileNode) IsFolder() bool {
	return n.Kind == NodeKindFolder
}

// MarshalJSON always writes "content" for files and "children" for folders
func (n FileNode) MarshalJSON() ([]byte, error) {
	if n.IsFolder() {
		children := n.Children
		if children == nil {
			children = []FileNode{}
		}
		return json.Marshal(struct {
			Name     string     `json:"name"`
			Kind     NodeKind   `json:"type"`
			Path     string     `json:"path"`
			Children []FileNode `json:"children"`
		}{n.Name, n.Kind, n.Path, children})
	}

	return json.Marshal(struct {
		Name    string   `json:"name"`
		Kind    NodeKind `json:"type"`
		Path    string   `json:"path"`
		Content string   `json:"content"`
	}{n.Name, n.Kind, n.Path, n.Content})
}

// CloneTree returns a deep copy of the tree
func CloneTree(tree []FileNode) []FileNode {
	if tree == nil {
		return nil
	}
	out := make([]FileNode, len(tree))
	for i, node := range tree {
		out[i] = node
		if node.Children != nil {
			out[i].Children = CloneTree(node.Children)
		}
	}
	return out
}
