package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"github.com/trebuchet-org/sling/internal/domain/config"
)

const (
	DefaultConfirmations = 1
	DefaultTimeout       = 5 * time.Minute
	DefaultPollInterval  = 2 * time.Second
	DefaultSender        = "default"
)

// projectMarkers identify a project root, in lookup order
var projectMarkers = []string{
	"sling.toml",
	"foundry.toml",
	"hardhat.config.ts",
	"hardhat.config.js",
}

// Provider creates RuntimeConfig for Wire dependency injection
func Provider(v *viper.Viper) (*config.RuntimeConfig, error) {
	projectRoot := v.GetString("project_root")
	if projectRoot == "" {
		var err error
		projectRoot, err = FindProjectRoot()
		if err != nil {
			return nil, fmt.Errorf("failed to find project root: %w", err)
		}
	}

	projectRoot, err := filepath.Abs(projectRoot)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve project root: %w", err)
	}

	loadEnvFiles(projectRoot)

	project, err := LoadProjectConfig(projectRoot)
	if err != nil {
		return nil, err
	}

	cfg := &config.RuntimeConfig{
		ProjectRoot:  projectRoot,
		ArtifactsDir: resolveArtifactsDir(projectRoot, v.GetString("artifacts"), project),
		CheckStale:   !v.GetBool("allow_stale") && (project.CheckStale == nil || *project.CheckStale),
		Debug:        v.GetBool("debug"),
		Project:      project,
	}

	if cfg.Format, err = parseFormat(v.GetString("format")); err != nil {
		return nil, err
	}

	cfg.Confirmations = v.GetUint64("confirmations")
	if cfg.Confirmations == 0 {
		cfg.Confirmations = project.Deploy.Confirmations
	}
	if cfg.Confirmations == 0 {
		cfg.Confirmations = DefaultConfirmations
	}

	if cfg.Timeout, err = resolveDuration(v, "timeout", project.Deploy.Timeout, DefaultTimeout); err != nil {
		return nil, err
	}
	if cfg.PollInterval, err = resolveDuration(v, "poll_interval", project.Deploy.PollInterval, DefaultPollInterval); err != nil {
		return nil, err
	}

	networkName := v.GetString("network")
	if networkName == "" {
		networkName = project.Deploy.Network
	}
	resolver := NewNetworkResolver(project)
	if cfg.Network, err = resolver.Select(networkName, v.GetString("rpc_url")); err != nil {
		return nil, err
	}

	cfg.Sender = selectSender(project, v.GetString("sender"), v.GetString("private_key"))

	return cfg, nil
}

// FindProjectRoot walks up from current directory to find a project marker.
// Falls back to the current directory when none is found.
func FindProjectRoot() (string, error) {
	cwd, err := os.Getwd()
	if err != nil {
		return "", err
	}

	dir := cwd
	for {
		for _, marker := range projectMarkers {
			if _, err := os.Stat(filepath.Join(dir, marker)); err == nil {
				return dir, nil
			}
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			return cwd, nil
		}
		dir = parent
	}
}

// SetupViper creates and configures a viper instance
func SetupViper(projectRoot string, cmd *cobra.Command) (*viper.Viper, error) {
	v := viper.New()

	// Set up environment variables
	v.SetEnvPrefix("SLING")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_", ".", "_"))

	v.SetDefault("project_root", projectRoot)
	v.SetDefault("format", string(config.FormatText))

	if cmd != nil {
		var bindErr error
		cmd.Flags().VisitAll(func(f *pflag.Flag) {
			if bindErr != nil {
				return
			}
			key := strings.ReplaceAll(f.Name, "-", "_")
			if err := v.BindPFlag(key, f); err != nil {
				bindErr = fmt.Errorf("failed to bind flag --%s: %w", f.Name, err)
			}
		})
		if bindErr != nil {
			return nil, bindErr
		}
	}

	return v, nil
}

// resolveArtifactsDir picks the build output directory: flag, then
// sling.toml, then foundry.toml profile, then the toolchain default.
func resolveArtifactsDir(projectRoot, flagValue string, project *config.ProjectConfig) string {
	dir := flagValue
	if dir == "" {
		dir = project.Artifacts
	}
	if dir == "" {
		dir = detectArtifactsDir(projectRoot)
	}
	if !filepath.IsAbs(dir) {
		dir = filepath.Join(projectRoot, dir)
	}
	return dir
}

func detectArtifactsDir(projectRoot string) string {
	if foundry, err := loadFoundryConfig(projectRoot); err == nil && foundry != nil {
		if profile, ok := foundry.Profile["default"]; ok && profile.OutPath != "" {
			return profile.OutPath
		}
		return "out"
	}
	for _, marker := range []string{"hardhat.config.ts", "hardhat.config.js"} {
		if _, err := os.Stat(filepath.Join(projectRoot, marker)); err == nil {
			return "artifacts"
		}
	}
	return "out"
}

func resolveDuration(v *viper.Viper, key, projectValue string, fallback time.Duration) (time.Duration, error) {
	if d := v.GetDuration(key); d > 0 {
		return d, nil
	}
	if projectValue != "" {
		d, err := time.ParseDuration(projectValue)
		if err != nil {
			return 0, fmt.Errorf("invalid %s %q in sling.toml: %w", key, projectValue, err)
		}
		if d > 0 {
			return d, nil
		}
	}
	return fallback, nil
}

func parseFormat(value string) (config.OutputFormat, error) {
	switch config.OutputFormat(strings.ToLower(value)) {
	case "", config.FormatText:
		return config.FormatText, nil
	case config.FormatJSON:
		return config.FormatJSON, nil
	case config.FormatYAML:
		return config.FormatYAML, nil
	default:
		return "", fmt.Errorf("unknown output format %q (expected text, json or yaml)", value)
	}
}
