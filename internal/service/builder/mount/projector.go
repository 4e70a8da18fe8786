// Package mount projects the virtual project tree into the nested description
// the sandbox mounts.
package mount

import "codeforge/internal/domain/models/builder"

// Project converts the tree into a mount description keyed by top-level entry name.
// An empty or nil tree projects to an empty mapping.
func Project(tree []builder.FileNode) builder.MountDescription {
	out := make(builder.MountDescription, len(tree))
	for _, node := range tree {
		out[node.Name] = projectNode(node)
	}
	return out
}

// projectNode is applied identically at every depth
func projectNode(node builder.FileNode) builder.MountEntry {
	if node.IsFolder() {
		return builder.DirectoryEntry(Project(node.Children))
	}
	return builder.FileEntry(node.Content)
}

// Count returns the number of file and directory entries in the description
func Count(desc builder.MountDescription) (files, directories int) {
	for _, entry := range desc {
		if entry.IsDirectory() {
			directories++
			f, d := Count(entry.Directory)
			files += f
			directories += d
			continue
		}
		files++
	}
	return files, directories
}

// Depth returns the nesting depth of the description; an empty mapping has depth 0
func Depth(desc builder.MountDescription) int {
	deepest := 0
	for _, entry := range desc {
		d := 1
		if entry.IsDirectory() {
			d += Depth(entry.Directory)
		}
		if d > deepest {
			deepest = d
		}
	}
	return deepest
}
