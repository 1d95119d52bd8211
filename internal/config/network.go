package config

import (
	"fmt"
	"sort"

	"github.com/trebuchet-org/sling/internal/domain/config"
)

// NetworkResolver resolves network names against the project configuration
type NetworkResolver struct {
	networks map[string]config.NetworkConfig
}

// NewNetworkResolver creates a new network resolver
func NewNetworkResolver(project *config.ProjectConfig) *NetworkResolver {
	networks := make(map[string]config.NetworkConfig)
	if project != nil {
		for name, n := range project.Networks {
			networks[name] = n
		}
	}
	return &NetworkResolver{networks: networks}
}

// ProvideNetworkResolver creates a NetworkResolver for Wire dependency injection
func ProvideNetworkResolver(cfg *config.RuntimeConfig) *NetworkResolver {
	return NewNetworkResolver(cfg.Project)
}

// Names returns the configured network names in sorted order
func (r *NetworkResolver) Names() []string {
	names := make([]string, 0, len(r.networks))
	for name := range r.networks {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Resolve resolves a network name to its configuration
func (r *NetworkResolver) Resolve(name string) (*config.Network, error) {
	n, exists := r.networks[name]
	if !exists {
		return nil, fmt.Errorf("network '%s' not found in sling.toml [networks] or foundry.toml [rpc_endpoints]", name)
	}
	if n.RPCURL == "" {
		return nil, fmt.Errorf("network '%s' has no rpc_url", name)
	}
	return &config.Network{
		Name:    name,
		RPCURL:  n.RPCURL,
		ChainID: n.ChainID,
	}, nil
}

// Select picks the network for a run. An explicit RPC URL wins; it keeps
// the expected chain ID of the named network when one is given. Without a
// name, a single configured network is used. Returns (nil, nil) when no
// network can be chosen.
func (r *NetworkResolver) Select(name, rpcURL string) (*config.Network, error) {
	if rpcURL != "" {
		network := &config.Network{Name: name, RPCURL: rpcURL}
		if network.Name == "" {
			network.Name = "custom"
		}
		if n, ok := r.networks[name]; ok {
			network.ChainID = n.ChainID
		}
		return network, nil
	}

	if name != "" {
		return r.Resolve(name)
	}

	if names := r.Names(); len(names) == 1 {
		return r.Resolve(names[0])
	}

	return nil, nil
}

// List returns every configured network, sorted by name
func (r *NetworkResolver) List() []*config.Network {
	var networks []*config.Network
	for _, name := range r.Names() {
		n := r.networks[name]
		networks = append(networks, &config.Network{
			Name:    name,
			RPCURL:  n.RPCURL,
			ChainID: n.ChainID,
		})
	}
	return networks
}
