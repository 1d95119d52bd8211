package cli

import (
	"fmt"
	"math/big"

	"github.com/spf13/cobra"
	"github.com/trebuchet-org/sling/internal/cli/render"
	"github.com/trebuchet-org/sling/internal/domain/models"
	"github.com/trebuchet-org/sling/internal/usecase"
)

// NewDeployCmd creates the deploy command
func NewDeployCmd() *cobra.Command {
	var (
		gasLimit uint64
		value    string
	)

	cmd := &cobra.Command{
		Use:   "deploy <contract> [constructor-args...]",
		Short: "Deploy a compiled contract and wait for confirmation",
		Long: `Deploy a contract from the build output and wait until its creation
transaction has the requested number of confirmations.

The contract is referenced by name or, when several artifacts share a name,
by "path/to/Source.sol:Name". Constructor arguments follow the contract and
are parsed according to the constructor's ABI. Arrays are given as JSON.`,
		Example: `  sling deploy Marketplace --network sepolia
  sling deploy src/Token.sol:Token TKN 1000000 --rpc-url http://127.0.0.1:8545
  sling deploy Registry '["0x5FbDB2315678afecb367f032d93F642f64180aa3"]' --format json`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := getApp(cmd)
			if err != nil {
				return err
			}
			defer app.Close()

			opts := models.TxOptions{GasLimit: gasLimit}
			if value != "" {
				wei, ok := new(big.Int).SetString(value, 0)
				if !ok || wei.Sign() < 0 {
					return fmt.Errorf("invalid --value %q: expected an amount in wei", value)
				}
				opts.Value = wei
			}

			result := app.DeployContract.Run(cmd.Context(), usecase.DeployContractParams{
				ContractRef:     args[0],
				ConstructorArgs: args[1:],
				Options:         opts,
			})

			renderer := render.NewDeployRenderer(cmd.OutOrStdout(), cmd.ErrOrStderr(), app.Config.Format)
			return renderer.Render(result)
		},
	}

	cmd.Flags().String("sender", "", "Sender from sling.toml [senders] (default \"default\")")
	cmd.Flags().String("private-key", "", "Hex private key to sign with, overrides --sender")
	cmd.Flags().Uint64("confirmations", 0, "Blocks to wait for after inclusion (default 1)")
	cmd.Flags().Duration("timeout", 0, "Maximum time to wait for confirmation (default 5m)")
	cmd.Flags().Duration("poll-interval", 0, "Time between receipt checks (default 2s)")
	cmd.Flags().Bool("allow-stale", false, "Deploy artifacts older than their source files")
	cmd.Flags().Uint64Var(&gasLimit, "gas-limit", 0, "Gas limit, estimated by the node when unset")
	cmd.Flags().StringVar(&value, "value", "", "Wei to send to the constructor")

	return cmd
}
