package cmd

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"codeforge/internal/domain/models/builder"
	"codeforge/internal/service/builder/filetree"
)

func newTreeCmd(opts *options) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "tree [file...]",
		Short: "Apply documents as batches and print the resulting file tree",
		RunE: func(cmd *cobra.Command, args []string) error {
			docs, err := readDocuments(cmd, args)
			if err != nil {
				return err
			}

			tree, err := buildTree(cmd, opts, docs)
			if err != nil {
				return err
			}

			if asJSON {
				return printJSON(cmd, opts, tree)
			}

			printTree(cmd.OutOrStdout(), tree, 0)
			files, folders := filetree.Count(tree)
			fmt.Fprintf(cmd.OutOrStdout(), "\n%d file(s), %d folder(s)\n", files, folders)
			return nil
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "print the tree as JSON")
	return cmd
}

func printTree(w io.Writer, nodes []builder.FileNode, depth int) {
	indent := strings.Repeat("  ", depth)
	for _, node := range nodes {
		if node.IsFolder() {
			fmt.Fprintf(w, "%s%s/\n", indent, node.Name)
			printTree(w, node.Children, depth+1)
			continue
		}
		fmt.Fprintf(w, "%s%s (%d bytes)\n", indent, node.Name, len(node.Content))
	}
}
