package main

import (
	"encoding/json"

	"github.com/spf13/cobra"

	"loopsite/application/queries"
)

func newRenderCmd(load containerFunc) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "render <path>",
		Short: "Print the rendered HTML for a path",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			container, cleanup, err := load(cmd.Context())
			if err != nil {
				return err
			}
			defer cleanup()

			result, err := container.QueryBus.Ask(cmd.Context(), queries.GetPageQuery{Path: args[0]})
			if err != nil {
				return err
			}
			page := result.(*queries.RenderedPage)

			if asJSON {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(page)
			}
			return container.Layout.RenderPage(cmd.OutOrStdout(), page)
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "print the rendered fragments as JSON")
	return cmd
}
