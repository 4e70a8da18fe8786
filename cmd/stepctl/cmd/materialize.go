package cmd

import (
	"fmt"
	"io"
	"log/slog"

	"github.com/spf13/cobra"

	"codeforge/internal/sandbox"
	"codeforge/internal/service/builder/mount"
)

func newMaterializeCmd(opts *options) *cobra.Command {
	var (
		outDir  string
		project string
	)

	cmd := &cobra.Command{
		Use:   "materialize [file...]",
		Short: "Write the documents' tree to disk",
		Long: `materialize writes the tree the documents produce into <out>/<name>, the
same way the server mounts a session into its sandbox. Existing files that the
tree does not mention are left in place.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			docs, err := readDocuments(cmd, args)
			if err != nil {
				return err
			}

			tree, err := buildTree(cmd, opts, docs)
			if err != nil {
				return err
			}

			box, err := sandbox.NewLocal(sandbox.Options{Root: outDir}, slog.New(slog.NewTextHandler(io.Discard, nil)))
			if err != nil {
				return err
			}
			if err := box.Mount(cmd.Context(), project, mount.Project(tree)); err != nil {
				return err
			}

			dir, err := box.Dir(project)
			if err != nil {
				return err
			}
			files, folders := mount.Count(mount.Project(tree))
			fmt.Fprintf(cmd.OutOrStdout(), "wrote %d file(s) and %d folder(s) to %s\n", files, folders, dir)
			return nil
		},
	}

	cmd.Flags().StringVar(&outDir, "out", ".", "directory to create the project in")
	cmd.Flags().StringVar(&project, "name", "project", "project directory name")
	return cmd
}
