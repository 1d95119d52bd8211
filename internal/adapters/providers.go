package adapters

import (
	"github.com/google/wire"
	"github.com/trebuchet-org/sling/internal/adapters/abi"
	"github.com/trebuchet-org/sling/internal/adapters/blockchain"
	"github.com/trebuchet-org/sling/internal/adapters/fs"
	"github.com/trebuchet-org/sling/internal/adapters/progress"
	"github.com/trebuchet-org/sling/internal/adapters/senders"
	"github.com/trebuchet-org/sling/internal/config"
	"github.com/trebuchet-org/sling/internal/usecase"
)

// FSSet provides filesystem-based implementations
var FSSet = wire.NewSet(
	fs.NewArtifactRepository,
	wire.Bind(new(usecase.BlueprintResolver), new(*fs.ArtifactRepository)),
)

// BlockchainSet provides the node connection and the deployment adapters sharing it
var BlockchainSet = wire.NewSet(
	blockchain.NewConnection,

	abi.NewConstructorEncoder,
	wire.Bind(new(blockchain.DeploymentEncoder), new(*abi.ConstructorEncoder)),

	blockchain.NewSubmitter,
	wire.Bind(new(usecase.DeploymentSubmitter), new(*blockchain.Submitter)),

	blockchain.NewWaiter,
	wire.Bind(new(usecase.ConfirmationWaiter), new(*blockchain.Waiter)),
)

// SendersSet provides signing identities
var SendersSet = wire.NewSet(
	senders.NewManager,
	wire.Bind(new(usecase.IdentityResolver), new(*senders.Manager)),
)

// ConfigSet provides configuration-based implementations
var ConfigSet = wire.NewSet(
	config.ProvideNetworkResolver,
	wire.Bind(new(usecase.NetworkResolver), new(*config.NetworkResolver)),
)

// ProgressSet provides the progress sink
var ProgressSet = wire.NewSet(
	progress.ProvideProgressSink,
)

// AllAdapters includes all adapter sets
var AllAdapters = wire.NewSet(
	FSSet,
	BlockchainSet,
	SendersSet,
	ConfigSet,
	ProgressSet,
)
