package main

import (
	"context"
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/leofalp/fungraph/internal/utils"
)

func newToolsCommand(application *app) *cobra.Command {
	return &cobra.Command{
		Use:   "tools",
		Short: "List the tools available to the agent",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			if ctx == nil {
				ctx = context.Background()
			}
			catalog, closeTools, err := application.newCatalog(ctx)
			if err != nil {
				return err
			}
			defer closeTools()

			writer := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			for _, description := range catalog.Descriptions() {
				fmt.Fprintf(writer, "%s\t%s\n", description.Name, utils.TruncateString(description.Description, 80))
			}
			if catalog.Size() == 0 {
				fmt.Fprintln(writer, "no tools configured")
			}
			return writer.Flush()
		},
	}
}
