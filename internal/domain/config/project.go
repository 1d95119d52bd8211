package config

// ProjectConfig represents the sling.toml project file merged with the
// rpc endpoints of foundry.toml.
type ProjectConfig struct {
	Artifacts  string                   `toml:"artifacts,omitempty"`
	CheckStale *bool                    `toml:"check_stale,omitempty"`
	Deploy     DeployDefaults           `toml:"deploy"`
	Networks   map[string]NetworkConfig `toml:"networks"`
	Senders    map[string]SenderConfig  `toml:"senders"`
}

// DeployDefaults represents the [deploy] section of sling.toml
type DeployDefaults struct {
	Network       string `toml:"network,omitempty"`
	Sender        string `toml:"sender,omitempty"`
	Confirmations uint64 `toml:"confirmations,omitempty"`
	Timeout       string `toml:"timeout,omitempty"`
	PollInterval  string `toml:"poll_interval,omitempty"`
}

// NetworkConfig represents a [networks.<name>] section
type NetworkConfig struct {
	RPCURL  string `toml:"rpc_url"`
	ChainID uint64 `toml:"chain_id,omitempty"`
}

// FoundryConfig is the subset of foundry.toml sling reads
type FoundryConfig struct {
	Profile      map[string]FoundryProfile `toml:"profile"`
	RpcEndpoints map[string]string         `toml:"rpc_endpoints"`
}

// FoundryProfile represents a [profile.<name>] section
type FoundryProfile struct {
	SrcPath string `toml:"src,omitempty"`
	OutPath string `toml:"out,omitempty"`
}
