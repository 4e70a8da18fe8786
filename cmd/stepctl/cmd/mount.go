package cmd

import (
	"github.com/spf13/cobra"

	"codeforge/internal/service/builder/mount"
)

func newMountCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "mount [file...]",
		Short: "Print the sandbox mount description of the documents' tree",
		RunE: func(cmd *cobra.Command, args []string) error {
			docs, err := readDocuments(cmd, args)
			if err != nil {
				return err
			}

			tree, err := buildTree(cmd, opts, docs)
			if err != nil {
				return err
			}
			return printJSON(cmd, opts, mount.Project(tree))
		},
	}
}
