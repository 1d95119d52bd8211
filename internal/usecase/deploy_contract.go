package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/trebuchet-org/sling/internal/domain"
	"github.com/trebuchet-org/sling/internal/domain/config"
	"github.com/trebuchet-org/sling/internal/domain/models"
)

// DeployContractParams contains parameters for deploying a contract
type DeployContractParams struct {
	ContractRef     string
	ConstructorArgs []string
	Options         models.TxOptions
}

// DeployContract deploys one contract: resolve the blueprint, submit the
// creation transaction, wait for confirmation. Each stage runs only if the
// previous one succeeded.
type DeployContract struct {
	config     *config.RuntimeConfig
	resolver   BlueprintResolver
	identities IdentityResolver
	submitter  DeploymentSubmitter
	waiter     ConfirmationWaiter
	progress   ProgressSink
	log        *slog.Logger
}

// NewDeployContract creates a new DeployContract use case
func NewDeployContract(
	cfg *config.RuntimeConfig,
	resolver BlueprintResolver,
	identities IdentityResolver,
	submitter DeploymentSubmitter,
	waiter ConfirmationWaiter,
	progress ProgressSink,
	log *slog.Logger,
) *DeployContract {
	return &DeployContract{
		config:     cfg,
		resolver:   resolver,
		identities: identities,
		submitter:  submitter,
		waiter:     waiter,
		progress:   progress,
		log:        log,
	}
}

// Run executes the deployment and always returns exactly one terminal result
func (uc *DeployContract) Run(ctx context.Context, params DeployContractParams) *models.DeploymentResult {
	result := &models.DeploymentResult{
		Contract:  params.ContractRef,
		Stage:     domain.StageStart,
		StartedAt: time.Now(),
	}
	if uc.config.Network != nil {
		result.Network = uc.config.Network.Name
		result.ChainID = uc.config.Network.ChainID
	}

	// Stage 1: Resolve blueprint
	uc.enter(ctx, result, domain.StageResolving, fmt.Sprintf("Resolving %s", params.ContractRef))

	blueprint, err := uc.resolver.ResolveBlueprint(ctx, params.ContractRef)
	if err != nil {
		return uc.fail(ctx, result, err, domain.KindBlueprintNotFound)
	}
	result.Contract = blueprint.Name
	uc.log.Debug("resolved blueprint",
		"contract", blueprint.Key(),
		"artifact", blueprint.ArtifactPath,
		"bytecodeSize", len(blueprint.Bytecode))

	// Stage 2: Submit deployment transaction
	uc.enter(ctx, result, domain.StageSubmitting, fmt.Sprintf("Submitting %s", blueprint.Name))

	if uc.config.Network == nil {
		return uc.fail(ctx, result,
			errors.New("no network configured, use --network or --rpc-url"),
			domain.KindInvalidConfiguration)
	}

	identity, err := uc.identities.ResolveIdentity(ctx, uc.config.Sender)
	if err != nil {
		return uc.fail(ctx, result, fmt.Errorf("failed to resolve signing identity: %w", err), domain.KindInvalidConfiguration)
	}
	result.Deployer = identity.Address()

	pending, err := uc.submitter.Submit(ctx, &models.DeploymentRequest{
		Blueprint:       blueprint,
		Identity:        identity,
		ConstructorArgs: params.ConstructorArgs,
		Options:         params.Options,
	})
	if err != nil {
		return uc.fail(ctx, result, err, domain.KindSubmissionRejected)
	}
	result.TxHash = pending.TxHash
	if pending.ChainID != nil {
		result.ChainID = pending.ChainID.Uint64()
	}
	uc.log.Debug("deployment submitted",
		"tx", pending.TxHash.Hex(),
		"nonce", pending.Nonce,
		"predictedAddress", pending.PredictedAddress.Hex())
	uc.progress.Info(fmt.Sprintf("Transaction sent: %s", pending.TxHash.Hex()))

	// Stage 3: Wait for confirmation
	uc.enter(ctx, result, domain.StageAwaitingConfirmation,
		fmt.Sprintf("Waiting for %d confirmation(s)", uc.config.Confirmations))

	confirmation, err := uc.waiter.WaitForConfirmation(ctx, pending, models.WaitOptions{
		Confirmations: uc.config.Confirmations,
		Timeout:       uc.config.Timeout,
		PollInterval:  uc.config.PollInterval,
	})
	if err != nil {
		return uc.fail(ctx, result, err, domain.KindConfirmationTimeout)
	}

	result.Confirmation = confirmation
	result.Stage = domain.StageSucceeded
	result.FinishedAt = time.Now()
	uc.progress.OnProgress(ctx, ProgressEvent{
		Stage:    string(domain.StageSucceeded),
		Message:  fmt.Sprintf("%s deployed", blueprint.Name),
		Metadata: result,
	})

	return result
}

func (uc *DeployContract) enter(ctx context.Context, result *models.DeploymentResult, stage domain.Stage, message string) {
	result.Stage = stage
	uc.progress.OnProgress(ctx, ProgressEvent{
		Stage:   string(stage),
		Message: message,
		Spinner: true,
	})
}

// fail records err as the terminal failure of the current stage.
// Errors that are not already classified get the fallback kind.
func (uc *DeployContract) fail(ctx context.Context, result *models.DeploymentResult, err error, fallback domain.ErrorKind) *models.DeploymentResult {
	de := domain.AsDeploymentError(err, fallback)
	if de.Stage == "" {
		de.Stage = result.Stage
	}
	if result.TxHash != (common.Hash{}) {
		de.WithDetail("transactionHash", result.TxHash.Hex())
	}

	uc.log.Debug("deployment failed", "stage", de.Stage, "kind", de.Kind, "error", de.Err)

	result.Err = de
	result.Stage = domain.StageFailed
	result.FinishedAt = time.Now()
	uc.progress.OnProgress(ctx, ProgressEvent{
		Stage:    string(domain.StageFailed),
		Message:  de.Error(),
		Metadata: result,
	})

	return result
}
