package cli

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/trebuchet-org/sling/internal/app"
	"github.com/trebuchet-org/sling/internal/cli/render"
	"github.com/trebuchet-org/sling/internal/config"
	"github.com/trebuchet-org/sling/internal/domain"
)

// contextKey is the type for context keys
type contextKey string

const (
	// appKey is the context key for the app instance
	appKey contextKey = "app"
)

// NewRootCmd creates the root command
func NewRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "sling",
		Short: "Deploy a compiled smart contract and wait for confirmation",
		Long: `Sling deploys a single contract from your Foundry or Hardhat build output,
waits until the transaction is confirmed, and prints the deployed address.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			// Skip for help/version commands
			if cmd.Name() == "version" || cmd.Name() == "help" || cmd.Name() == "completion" {
				return nil
			}

			projectRoot, err := config.FindProjectRoot()
			if err != nil {
				return domain.AsDeploymentError(fmt.Errorf("failed to find project root: %w", err), domain.KindInvalidConfiguration)
			}

			v, err := config.SetupViper(projectRoot, cmd)
			if err != nil {
				return domain.AsDeploymentError(err, domain.KindInvalidConfiguration)
			}

			appInstance, err := app.InitApp(v)
			if err != nil {
				return domain.AsDeploymentError(fmt.Errorf("failed to load configuration: %w", err), domain.KindInvalidConfiguration)
			}

			ctx := context.WithValue(cmd.Context(), appKey, appInstance)
			cmd.SetContext(ctx)

			return nil
		},
	}

	// Global flags
	rootCmd.PersistentFlags().Bool("debug", false, "Enable debug logging")
	rootCmd.PersistentFlags().StringP("network", "n", "", "Network to use, from sling.toml [networks] or foundry.toml [rpc_endpoints]")
	rootCmd.PersistentFlags().String("rpc-url", "", "RPC endpoint, overrides the network's rpc_url")
	rootCmd.PersistentFlags().StringP("format", "f", "", "Output format: text, json or yaml (default \"text\")")
	rootCmd.PersistentFlags().String("artifacts", "", "Build output directory (default: detected from the project)")

	rootCmd.AddGroup(&cobra.Group{
		ID:    "main",
		Title: "Main Commands",
	})
	rootCmd.AddGroup(&cobra.Group{
		ID:    "management",
		Title: "Management Commands",
	})

	deployCmd := NewDeployCmd()
	deployCmd.GroupID = "main"
	rootCmd.AddCommand(deployCmd)

	blueprintsCmd := NewBlueprintsCmd()
	blueprintsCmd.GroupID = "management"
	rootCmd.AddCommand(blueprintsCmd)

	networksCmd := NewNetworksCmd()
	networksCmd.GroupID = "management"
	rootCmd.AddCommand(networksCmd)

	rootCmd.AddCommand(NewVersionCmd())

	return rootCmd
}

// Execute runs the CLI and returns the process exit status. Failures that
// were not rendered by a command are printed here.
func Execute(ctx context.Context, args []string) int {
	rootCmd := NewRootCmd()
	rootCmd.SetArgs(args)

	err := rootCmd.ExecuteContext(ctx)
	if err == nil {
		return 0
	}

	var reported *render.ReportedError
	if !errors.As(err, &reported) {
		var de *domain.DeploymentError
		if errors.As(err, &de) {
			render.RenderDeploymentError(os.Stderr, de)
		} else {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		}
	}
	return 1
}

// getApp retrieves the app instance from the command context
func getApp(cmd *cobra.Command) (*app.App, error) {
	appInstance := cmd.Context().Value(appKey)
	if appInstance == nil {
		return nil, fmt.Errorf("app not initialized")
	}

	app, ok := appInstance.(*app.App)
	if !ok {
		return nil, fmt.Errorf("invalid app instance")
	}

	return app, nil
}
