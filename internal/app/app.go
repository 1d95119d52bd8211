package app

import (
	"log/slog"

	"github.com/trebuchet-org/sling/internal/adapters/blockchain"
	"github.com/trebuchet-org/sling/internal/domain/config"
	"github.com/trebuchet-org/sling/internal/usecase"
)

// App is the main application container that holds all use cases
type App struct {
	// Configuration
	Config *config.RuntimeConfig
	Log    *slog.Logger

	// Use cases
	DeployContract *usecase.DeployContract
	ListBlueprints *usecase.ListBlueprints
	ListNetworks   *usecase.ListNetworks

	connection *blockchain.Connection
}

// NewApp creates a new application instance with all use cases
func NewApp(
	cfg *config.RuntimeConfig,
	log *slog.Logger,
	connection *blockchain.Connection,
	deployContract *usecase.DeployContract,
	listBlueprints *usecase.ListBlueprints,
	listNetworks *usecase.ListNetworks,
) (*App, error) {
	return &App{
		Config:         cfg,
		Log:            log,
		DeployContract: deployContract,
		ListBlueprints: listBlueprints,
		ListNetworks:   listNetworks,
		connection:     connection,
	}, nil
}

// Close releases the node connection, if one was opened
func (a *App) Close() {
	if a.connection != nil {
		a.connection.Close()
	}
}
