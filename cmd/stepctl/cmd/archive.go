package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"codeforge/internal/service/builder/archive"
)

func newArchiveCmd(opts *options) *cobra.Command {
	var (
		outFile string
		root    string
	)

	cmd := &cobra.Command{
		Use:   "archive [file...]",
		Short: "Pack the documents' tree into a zip file",
		RunE: func(cmd *cobra.Command, args []string) error {
			docs, err := readDocuments(cmd, args)
			if err != nil {
				return err
			}

			tree, err := buildTree(cmd, opts, docs)
			if err != nil {
				return err
			}

			f, err := os.Create(outFile)
			if err != nil {
				return err
			}
			if err := archive.Write(f, root, tree); err != nil {
				_ = f.Close()
				return err
			}
			if err := f.Close(); err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "wrote %s\n", outFile)
			return nil
		},
	}

	cmd.Flags().StringVarP(&outFile, "out", "o", "project.zip", "zip file to write")
	cmd.Flags().StringVar(&root, "root", "project", "folder the files are placed under inside the archive")
	return cmd
}
