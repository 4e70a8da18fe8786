package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"codeforge/internal/templates"
)

func newTemplatesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "templates",
		Short: "List the embedded project templates",
		RunE: func(cmd *cobra.Command, args []string) error {
			registry, err := templates.NewRegistry()
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "%-8s %-24s %s\n", "ID", "NAME", "DESCRIPTION")
			for _, tmpl := range registry.List() {
				fmt.Fprintf(out, "%-8s %-24s %s\n", tmpl.ID, tmpl.DisplayName, tmpl.Description)
			}
			return nil
		},
	}
}
