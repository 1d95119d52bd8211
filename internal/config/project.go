package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
	"github.com/trebuchet-org/sling/internal/domain/config"
)

// LoadProjectConfig loads sling.toml and merges foundry.toml rpc endpoints
// as networks. sling.toml entries win over foundry.toml ones. Neither file
// is required.
func LoadProjectConfig(projectRoot string) (*config.ProjectConfig, error) {
	cfg := &config.ProjectConfig{}

	slingPath := filepath.Join(projectRoot, "sling.toml")
	if _, err := os.Stat(slingPath); err == nil {
		if _, err := toml.DecodeFile(slingPath, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse sling.toml: %w", err)
		}
	}

	if cfg.Networks == nil {
		cfg.Networks = make(map[string]config.NetworkConfig)
	}
	if cfg.Senders == nil {
		cfg.Senders = make(map[string]config.SenderConfig)
	}

	foundryConfig, err := loadFoundryConfig(projectRoot)
	if err != nil {
		return nil, err
	}
	if foundryConfig != nil {
		for name, url := range foundryConfig.RpcEndpoints {
			if _, exists := cfg.Networks[name]; !exists {
				cfg.Networks[name] = config.NetworkConfig{RPCURL: url}
			}
		}
	}

	// Expand environment variables in network and sender fields
	for name, network := range cfg.Networks {
		network.RPCURL = os.ExpandEnv(network.RPCURL)
		cfg.Networks[name] = network
	}
	for name, sender := range cfg.Senders {
		sender.Name = name
		sender.PrivateKey = os.ExpandEnv(sender.PrivateKey)
		sender.Keystore = os.ExpandEnv(sender.Keystore)
		sender.Password = os.ExpandEnv(sender.Password)
		sender.Address = os.ExpandEnv(sender.Address)
		if sender.Keystore != "" && !filepath.IsAbs(sender.Keystore) {
			sender.Keystore = filepath.Join(projectRoot, sender.Keystore)
		}
		cfg.Senders[name] = sender
	}

	return cfg, nil
}
