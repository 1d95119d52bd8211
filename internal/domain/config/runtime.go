package config

import (
	"time"
)

// RuntimeConfig represents the complete runtime configuration
// This is injected into use cases and contains all resolved settings
type RuntimeConfig struct {
	// Core settings
	ProjectRoot  string
	ArtifactsDir string // absolute path of the build output
	CheckStale   bool

	// Context settings
	Network *Network      // nil if not specified
	Sender  *SenderConfig // Type is empty when the sender is not configured

	// Confirmation settings
	Confirmations uint64
	Timeout       time.Duration
	PollInterval  time.Duration

	// Output settings
	Debug  bool
	Format OutputFormat

	// Resolved configurations
	Project *ProjectConfig
}

// Network represents network configuration
type Network struct {
	ChainID uint64 `json:"chainId,omitempty" yaml:"chainId,omitempty"`
	Name    string `json:"name" yaml:"name"`
	RPCURL  string `json:"rpcUrl" yaml:"rpcUrl"`
}

// OutputFormat selects how results are reported
type OutputFormat string

const (
	FormatText OutputFormat = "text"
	FormatJSON OutputFormat = "json"
	FormatYAML OutputFormat = "yaml"
)

// Structured reports whether the format is machine readable
func (f OutputFormat) Structured() bool {
	return f == FormatJSON || f == FormatYAML
}
