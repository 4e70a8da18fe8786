package builder

import (
	"encoding/json"
	"fmt"
)

// MountDescription is the nested directory/file structure the sandbox mounts,
// keyed by entry name.
type MountDescription map[string]MountEntry

// FileContents is the payload of a file entry
type FileContents struct {
	Contents string `json:"contents"`
}

// MountEntry is either a file or a directory. Exactly one of File and Directory is
// meaningful: a nil File means the entry is a directory.
type MountEntry struct {
	File      *FileContents
	Directory MountDescription
}

// FileEntry builds a file entry
func FileEntry(contents string) MountEntry {
	return MountEntry{File: &FileContents{Contents: contents}}
}

// DirectoryEntry builds a directory entry, never with a nil mapping
func DirectoryEntry(children MountDescription) MountEntry {
	if children == nil {
		children = MountDescription{}
	}
	return MountEntry{Directory: children}
}

// IsDirectory reports whether the entry is a directory
func (e MountEntry) IsDirectory() bool {
	return e.File == nil
}

// MarshalJSON writes {"file":{"contents":…}} or {"directory":{…}}
func (e MountEntry) MarshalJSON() ([]byte, error) {
	if e.File != nil {
		return json.Marshal(struct {
			File *FileContents `json:"file"`
		}{e.File})
	}

	dir := e.Directory
	if dir == nil {
		dir = MountDescription{}
	}
	return json.Marshal(struct {
		Directory MountDescription `json:"directory"`
	}{dir})
}

// UnmarshalJSON accepts either shape and rejects entries that are both or neither
func (e *MountEntry) UnmarshalJSON(data []byte) error {
	var raw struct {
		File      *FileContents    `json:"file"`
		Directory MountDescription `json:"directory"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	switch {
	case raw.File != nil && raw.Directory != nil:
		return fmt.Errorf("mount entry cannot be both file and directory")
	case raw.File != nil:
		*e = FileEntry(raw.File.Contents)
	case raw.Directory != nil:
		*e = DirectoryEntry(raw.Directory)
	default:
		return fmt.Errorf("mount entry must have file or directory")
	}
	return nil
}
