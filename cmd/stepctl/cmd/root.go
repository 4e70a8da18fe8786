// Package cmd implements stepctl, which runs model responses through the step
// parser, tree reducer and mount projector offline.
package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"codeforge/internal/domain/models/builder"
	"codeforge/internal/service/builder/filetree"
	"codeforge/internal/service/builder/steps"
	"codeforge/internal/templates"
)

// Build-time variables set via -ldflags.
var (
	version = "dev"
	commit  = "none"
)

// options are the persistent flags shared by every subcommand
type options struct {
	template string
	compact  bool
}

func newRootCmd() *cobra.Command {
	opts := &options{}

	root := &cobra.Command{
		Use:   "stepctl",
		Short: "Inspect builder documents offline",
		Long: `stepctl parses model responses written in the artifact tag format, folds
their steps into a file tree and projects the tree into a sandbox mount
description. Documents are read from files, or from stdin when no file or "-"
is given. Each document is applied as one batch, in argument order.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.PersistentFlags().StringVar(&opts.template, "template", "", "seed the tree with a template (node or react) before the documents")
	root.PersistentFlags().BoolVar(&opts.compact, "compact", false, "print JSON without indentation")

	root.AddCommand(
		newVersionCmd(),
		newParseCmd(opts),
		newTreeCmd(opts),
		newMountCmd(opts),
		newMaterializeCmd(opts),
		newArchiveCmd(opts),
		newTemplatesCmd(),
	)
	return root
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "stepctl %s (%s)\n", version, commit)
		},
	}
}

// Execute runs the root command.
func Execute() error {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return err
	}
	return nil
}

// readDocuments returns the contents of args, reading stdin for "-" or no args
func readDocuments(cmd *cobra.Command, args []string) ([]string, error) {
	if len(args) == 0 {
		args = []string{"-"}
	}

	docs := make([]string, 0, len(args))
	for _, arg := range args {
		var (
			data []byte
			err  error
		)
		if arg == "-" {
			data, err = io.ReadAll(cmd.InOrStdin())
		} else {
			data, err = os.ReadFile(arg)
		}
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", arg, err)
		}
		docs = append(docs, string(data))
	}
	return docs, nil
}

// buildTree seeds the tree from the template flag and applies every document as a batch.
// Rejected steps are reported on stderr.
func buildTree(cmd *cobra.Command, opts *options, docs []string) ([]builder.FileNode, error) {
	tree := []builder.FileNode{}

	if opts.template != "" {
		registry, err := templates.NewRegistry()
		if err != nil {
			return nil, err
		}
		tmpl, err := registry.Get(builder.TemplateID(opts.template))
		if err != nil {
			return nil, err
		}
		docs = append([]string{tmpl.Document}, docs...)
	}

	for batch, doc := range docs {
		var applied []builder.BuildStep
		tree, applied = filetree.Apply(tree, steps.Parse(doc))
		for _, step := range applied {
			if step.Status == builder.StepStatusRejected {
				fmt.Fprintf(cmd.ErrOrStderr(), "batch %d step %d rejected: %s\n", batch+1, step.SequenceIndex, step.Reason)
			}
		}
	}
	return tree, nil
}

func printJSON(cmd *cobra.Command, opts *options, v any) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	if !opts.compact {
		enc.SetIndent("", "  ")
	}
	return enc.Encode(v)
}
