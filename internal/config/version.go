package config

// Build information, set with -ldflags "-X github.com/trebuchet-org/sling/internal/config.Version=..."
var (
	Version = "dev"
	Commit  = "unknown"
	Date    = "unknown"
)
