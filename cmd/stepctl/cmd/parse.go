package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"codeforge/internal/domain/models/builder"
	"codeforge/internal/service/builder/steps"
)

func newParseCmd(opts *options) *cobra.Command {
	var summary bool

	cmd := &cobra.Command{
		Use:   "parse [file]",
		Short: "Print the build steps found in a document",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			docs, err := readDocuments(cmd, args)
			if err != nil {
				return err
			}

			doc := steps.ParseDocument(docs[0])
			if !summary {
				return printJSON(cmd, opts, doc)
			}

			out := cmd.OutOrStdout()
			for _, step := range doc.Steps {
				target := step.Path()
				if target == "" {
					target = firstLine(describe(step))
				}
				fmt.Fprintf(out, "%3d  %-18s %s\n", step.SequenceIndex, step.Kind(), target)
			}
			if doc.Skipped > 0 {
				fmt.Fprintf(out, "%d malformed action(s) skipped\n", doc.Skipped)
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&summary, "summary", false, "print one line per step instead of JSON")
	return cmd
}

func firstLine(s string) string {
	line, _, _ := strings.Cut(strings.TrimSpace(s), "\n")
	return line
}

// describe is the body shown for steps without a path
func describe(step builder.BuildStep) string {
	switch a := step.Action.(type) {
	case builder.RunShellCommand:
		return a.Command
	case builder.Unknown:
		return a.Type + ": " + a.Body
	default:
		return ""
	}
}
