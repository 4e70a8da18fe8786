// Package archive packs a file tree into a zip download.
package archive

import (
	"archive/zip"
	"bytes"
	"fmt"
	"io"
	"io/fs"
	"strings"
	"time"

	"codeforge/internal/domain/models/builder"
)

// Write streams tree into w as a zip archive with every entry under root/.
// Folders get their own entries so empty ones survive extraction.
func Write(w io.Writer, root string, tree []builder.FileNode) error {
	zw := zip.NewWriter(w)

	prefix := strings.Trim(root, "/")
	if prefix != "" {
		prefix += "/"
	}

	modified := time.Now()
	if err := writeNodes(zw, prefix, tree, modified); err != nil {
		_ = zw.Close()
		return err
	}
	return zw.Close()
}

// Bytes returns the archive of tree in memory.
func Bytes(root string, tree []builder.FileNode) (*bytes.Buffer, error) {
	buf := new(bytes.Buffer)
	if err := Write(buf, root, tree); err != nil {
		return nil, err
	}
	return buf, nil
}

func writeNodes(zw *zip.Writer, prefix string, nodes []builder.FileNode, modified time.Time) error {
	for _, node := range nodes {
		name := prefix + strings.TrimPrefix(node.Path, "/")

		if node.IsFolder() {
			header := &zip.FileHeader{Name: name + "/", Modified: modified}
			header.SetMode(fs.ModeDir | 0755)
			if _, err := zw.CreateHeader(header); err != nil {
				return fmt.Errorf("add folder %s: %w", node.Path, err)
			}
			if err := writeNodes(zw, prefix, node.Children, modified); err != nil {
				return err
			}
			continue
		}

		header := &zip.FileHeader{Name: name, Method: zip.Deflate, Modified: modified}
		header.SetMode(0644)
		fw, err := zw.CreateHeader(header)
		if err != nil {
			return fmt.Errorf("add file %s: %w", node.Path, err)
		}
		if _, err := io.WriteString(fw, node.Content); err != nil {
			return fmt.Errorf("write file %s: %w", node.Path, err)
		}
	}
	return nil
}
