package usecase

import (
	"context"

	"github.com/trebuchet-org/sling/internal/domain/config"
	"github.com/trebuchet-org/sling/internal/domain/models"
)

// BlueprintResolver provides access to compiled contracts in the build output
type BlueprintResolver interface {
	// ResolveBlueprint resolves "Name" or "path:Name" to a deployable blueprint
	ResolveBlueprint(ctx context.Context, ref string) (*models.Blueprint, error)
	// ListBlueprints returns every deployable artifact
	ListBlueprints(ctx context.Context) ([]*models.Blueprint, error)
}

// IdentityResolver turns a sender configuration into a signing identity
type IdentityResolver interface {
	ResolveIdentity(ctx context.Context, sender *config.SenderConfig) (models.SigningIdentity, error)
}

// DeploymentSubmitter signs and sends a contract-creation transaction.
// A submission is a single attempt.
type DeploymentSubmitter interface {
	Submit(ctx context.Context, request *models.DeploymentRequest) (*models.PendingDeployment, error)
}

// ConfirmationWaiter blocks until a pending deployment reaches the
// requested depth, reverts, or runs out of time.
type ConfirmationWaiter interface {
	WaitForConfirmation(ctx context.Context, pending *models.PendingDeployment, opts models.WaitOptions) (*models.Confirmation, error)
}

// NetworkResolver handles network configuration resolution
type NetworkResolver interface {
	List() []*config.Network
}

// Progress tracking interfaces

// ProgressEvent represents a progress update
type ProgressEvent struct {
	Stage    string
	Message  string
	Spinner  bool
	Metadata interface{}
}

// ProgressSink receives progress events
type ProgressSink interface {
	OnProgress(ctx context.Context, event ProgressEvent)
	Info(message string)
	Error(message string)
}

// NopProgress is a no-op implementation of ProgressSink
type NopProgress struct{}

func (NopProgress) OnProgress(context.Context, ProgressEvent) {}
func (NopProgress) Info(string)                               {}
func (NopProgress) Error(string)                              {}
