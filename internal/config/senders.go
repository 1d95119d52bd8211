package config

import (
	"github.com/trebuchet-org/sling/internal/domain/config"
)

// selectSender picks the signing account. An explicit private key beats
// the project file; otherwise the named sender (or [deploy].sender, or
// "default") is looked up. An unknown name yields a config with an empty
// Type so the signer resolver can report it.
func selectSender(project *config.ProjectConfig, name, privateKey string) *config.SenderConfig {
	if privateKey != "" {
		return &config.SenderConfig{
			Name:       "private-key",
			Type:       config.SenderTypePrivateKey,
			PrivateKey: privateKey,
		}
	}

	if name == "" {
		name = project.Deploy.Sender
	}
	if name == "" {
		name = DefaultSender
	}

	sender, ok := project.Senders[name]
	if !ok {
		return &config.SenderConfig{Name: name}
	}
	return &sender
}
