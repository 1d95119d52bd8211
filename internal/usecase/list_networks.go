package usecase

import (
	"context"

	"github.com/trebuchet-org/sling/internal/domain/config"
)

// ListNetworksResult contains the result of listing networks
type ListNetworksResult struct {
	Networks []*config.Network
	Active   string
}

// ListNetworks is a use case for listing configured networks
type ListNetworks struct {
	config   *config.RuntimeConfig
	resolver NetworkResolver
}

// NewListNetworks creates a new ListNetworks use case
func NewListNetworks(cfg *config.RuntimeConfig, resolver NetworkResolver) *ListNetworks {
	return &ListNetworks{
		config:   cfg,
		resolver: resolver,
	}
}

// Run executes the use case
func (uc *ListNetworks) Run(ctx context.Context) (*ListNetworksResult, error) {
	result := &ListNetworksResult{
		Networks: uc.resolver.List(),
	}
	if uc.config.Network != nil {
		result.Active = uc.config.Network.Name
	}
	return result, nil
}
