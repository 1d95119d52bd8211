package cli

import (
	"github.com/spf13/cobra"
	"github.com/trebuchet-org/sling/internal/cli/render"
)

// NewBlueprintsCmd creates the blueprints command
func NewBlueprintsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "blueprints",
		Aliases: []string{"ls"},
		Short:   "List deployable contracts in the build output",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := getApp(cmd)
			if err != nil {
				return err
			}

			blueprints, err := app.ListBlueprints.Run(cmd.Context())
			if err != nil {
				return err
			}

			renderer := render.NewBlueprintsRenderer(cmd.OutOrStdout())
			return renderer.RenderBlueprints(blueprints)
		},
	}

	return cmd
}
