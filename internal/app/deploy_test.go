package app

import (
	"bytes"
	"context"
	"encoding/hex"
	"math/big"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/ethereum/go-ethereum/ethclient/simulated"
	"github.com/ethereum/go-ethereum/params"
	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/trebuchet-org/sling/internal/adapters/abi"
	"github.com/trebuchet-org/sling/internal/adapters/blockchain"
	"github.com/trebuchet-org/sling/internal/adapters/fs"
	"github.com/trebuchet-org/sling/internal/adapters/senders"
	"github.com/trebuchet-org/sling/internal/cli/render"
	"github.com/trebuchet-org/sling/internal/config"
	"github.com/trebuchet-org/sling/internal/domain"
	domainconfig "github.com/trebuchet-org/sling/internal/domain/config"
	"github.com/trebuchet-org/sling/internal/logging"
	"github.com/trebuchet-org/sling/internal/usecase"
)

// Foundry artifact of a contract whose runtime returns 42
const marketplaceArtifact = `{
  "abi": [{"inputs":[],"stateMutability":"nonpayable","type":"constructor"}],
  "bytecode": {"object": "0x600a600c600039600a6000f3602a60005260206000f3", "linkReferences": {}},
  "deployedBytecode": {"object": "0x602a60005260206000f3"},
  "metadata": {"compiler": {"version": "0.8.24"}, "settings": {"compilationTarget": {"src/Marketplace.sol": "Marketplace"}}}
}`

// newSimulatedApp wires the real adapters over a build output in a temp
// project and a simulated chain that mines a block every few milliseconds.
func newSimulatedApp(t *testing.T) (*App, *simulated.Backend) {
	t.Helper()

	root := t.TempDir()
	artifact := filepath.Join(root, "out", "Marketplace.sol", "Marketplace.json")
	require.NoError(t, os.MkdirAll(filepath.Dir(artifact), 0o755))
	require.NoError(t, os.WriteFile(artifact, []byte(marketplaceArtifact), 0o644))

	key, err := crypto.GenerateKey()
	require.NoError(t, err)
	deployer := crypto.PubkeyToAddress(key.PublicKey)

	backend := simulated.NewBackend(types.GenesisAlloc{
		deployer: {Balance: new(big.Int).Mul(big.NewInt(10), big.NewInt(params.Ether))},
	})
	t.Cleanup(func() { _ = backend.Close() })

	done := make(chan struct{})
	stopped := make(chan struct{})
	go func() {
		defer close(stopped)
		ticker := time.NewTicker(10 * time.Millisecond)
		defer ticker.Stop()
		for {
			select {
			case <-done:
				return
			case <-ticker.C:
				backend.Commit()
			}
		}
	}()
	t.Cleanup(func() {
		close(done)
		<-stopped
	})

	cfg := &domainconfig.RuntimeConfig{
		ProjectRoot:  root,
		ArtifactsDir: filepath.Join(root, "out"),
		CheckStale:   true,
		Network:      &domainconfig.Network{Name: "simulated", ChainID: 1337},
		Sender: &domainconfig.SenderConfig{
			Name:       "default",
			Type:       domainconfig.SenderTypePrivateKey,
			PrivateKey: hex.EncodeToString(crypto.FromECDSA(key)),
		},
		Confirmations: 1,
		Timeout:       10 * time.Second,
		PollInterval:  10 * time.Millisecond,
		Format:        domainconfig.FormatText,
	}

	log := logging.Discard()
	repository := fs.NewArtifactRepository(cfg, log)
	connection := blockchain.NewConnectionFromBackend(backend.Client(), cfg.Network, log)
	deploy := usecase.NewDeployContract(cfg,
		repository,
		senders.NewManager(log),
		blockchain.NewSubmitter(connection, abi.NewConstructorEncoder(), log),
		blockchain.NewWaiter(connection, log),
		usecase.NopProgress{},
		log)

	app, err := NewApp(cfg, log, connection, deploy,
		usecase.NewListBlueprints(repository),
		usecase.NewListNetworks(cfg, config.NewNetworkResolver(cfg.Project)))
	require.NoError(t, err)
	t.Cleanup(app.Close)

	return app, backend
}

func TestDeployMarketplaceFromBuildOutput(t *testing.T) {
	color.NoColor = true
	app, backend := newSimulatedApp(t)
	ctx := context.Background()

	result := app.DeployContract.Run(ctx, usecase.DeployContractParams{ContractRef: "Marketplace"})
	require.Nil(t, result.Err)
	require.True(t, result.Succeeded())
	assert.Equal(t, domain.StageSucceeded, result.Stage)

	receipt, err := backend.Client().TransactionReceipt(ctx, result.TxHash)
	require.NoError(t, err)
	assert.Equal(t, types.ReceiptStatusSuccessful, receipt.Status)
	assert.Equal(t, receipt.ContractAddress, result.Address())
	assert.GreaterOrEqual(t, result.Confirmation.Confirmations, uint64(1))

	var out, errOut bytes.Buffer
	err = render.NewDeployRenderer(&out, &errOut, app.Config.Format).Render(result)
	require.NoError(t, err)
	assert.Contains(t, out.String(), "Marketplace deployed to: "+receipt.ContractAddress.Hex()+"\n")
	assert.Empty(t, errOut.String())
}

func TestDeployUnknownContractFromBuildOutput(t *testing.T) {
	app, _ := newSimulatedApp(t)

	result := app.DeployContract.Run(context.Background(), usecase.DeployContractParams{ContractRef: "Market"})
	require.NotNil(t, result.Err)
	assert.Equal(t, domain.KindBlueprintNotFound, result.Err.Kind)
	assert.Zero(t, result.TxHash)

	var out, errOut bytes.Buffer
	err := render.NewDeployRenderer(&out, &errOut, domainconfig.FormatText).Render(result)
	var reported *render.ReportedError
	require.ErrorAs(t, err, &reported)
	assert.Contains(t, errOut.String(), "BlueprintNotFound")
}
