package config

type SenderType string

var (
	SenderTypePrivateKey SenderType = "private_key"
	SenderTypeKeystore   SenderType = "keystore"
)

// SenderConfig represents a [senders.<name>] section
type SenderConfig struct {
	Name       string     `toml:"-"`
	Type       SenderType `toml:"type"`
	PrivateKey string     `toml:"private_key,omitempty"` //nolint:gosec // holds env var reference, not a literal secret
	Keystore   string     `toml:"keystore,omitempty"`
	Password   string     `toml:"password,omitempty"` //nolint:gosec // holds env var reference, not a literal secret
	Address    string     `toml:"address,omitempty"`
}
