package blockchain

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/big"
	"sync"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/ethclient"
	"github.com/trebuchet-org/sling/internal/domain"
	"github.com/trebuchet-org/sling/internal/domain/config"
)

// Backend is the part of the node API a deployment uses
type Backend interface {
	ethereum.ChainIDReader
	ethereum.BlockNumberReader
	ethereum.TransactionReader
	ethereum.TransactionSender
	ethereum.GasEstimator
	ethereum.GasPricer
	ethereum.GasPricer1559
	ethereum.PendingStateReader
	HeaderByNumber(ctx context.Context, number *big.Int) (*types.Header, error)
}

// Connection is the single node connection shared by the submitter and the
// waiter. It is dialed on first use, so commands that fail before submission
// never touch the network.
type Connection struct {
	network *config.Network
	log     *slog.Logger

	mu      sync.Mutex
	backend Backend
	client  *ethclient.Client
	chainID *big.Int
}

// NewConnection creates a lazily dialed connection to the configured network
func NewConnection(cfg *config.RuntimeConfig, log *slog.Logger) *Connection {
	return &Connection{
		network: cfg.Network,
		log:     log,
	}
}

// NewConnectionFromBackend wraps an already connected backend
func NewConnectionFromBackend(backend Backend, network *config.Network, log *slog.Logger) *Connection {
	return &Connection{
		network: network,
		backend: backend,
		log:     log,
	}
}

// Backend returns the connected backend and the verified chain ID
func (c *Connection) Backend(ctx context.Context) (Backend, *big.Int, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.network == nil {
		return nil, nil, domain.NewDeploymentError(domain.KindInvalidConfiguration,
			errors.New("no network configured"))
	}

	if c.backend == nil {
		c.log.Debug("connecting to network", "network", c.network.Name, "rpc", c.network.RPCURL)
		client, err := ethclient.DialContext(ctx, c.network.RPCURL)
		if err != nil {
			return nil, nil, unreachable(c.network, fmt.Errorf("failed to connect to RPC: %w", err))
		}
		c.client = client
		c.backend = client
	}

	if c.chainID == nil {
		chainID, err := c.backend.ChainID(ctx)
		if err != nil {
			return nil, nil, unreachable(c.network, fmt.Errorf("failed to get chain ID: %w", err))
		}

		// A chain ID of 0 means the network did not pin one
		if c.network.ChainID != 0 && chainID.Uint64() != c.network.ChainID {
			return nil, nil, unreachable(c.network,
				fmt.Errorf("chain ID mismatch: expected %d, got %d", c.network.ChainID, chainID.Uint64()))
		}
		c.chainID = chainID
	}

	return c.backend, new(big.Int).Set(c.chainID), nil
}

// Close releases the underlying client if one was dialed
func (c *Connection) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.client != nil {
		c.client.Close()
		c.client = nil
		c.backend = nil
		c.chainID = nil
	}
}

func unreachable(network *config.Network, err error) *domain.DeploymentError {
	return domain.NewDeploymentError(domain.KindNetworkUnreachable, err).
		WithDetail("network", network.Name).
		WithDetail("rpcUrl", network.RPCURL)
}
