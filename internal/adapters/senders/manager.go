package senders

import (
	"context"
	"crypto/ecdsa"
	"fmt"
	"log/slog"
	"math/big"
	"os"
	"strings"

	"github.com/ethereum/go-ethereum/accounts/keystore"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/trebuchet-org/sling/internal/domain"
	"github.com/trebuchet-org/sling/internal/domain/config"
	"github.com/trebuchet-org/sling/internal/domain/models"
	"github.com/trebuchet-org/sling/internal/usecase"
)

// KeyIdentity signs with an in-memory secp256k1 key
type KeyIdentity struct {
	key     *ecdsa.PrivateKey
	address common.Address
}

// NewKeyIdentity creates an identity from a private key
func NewKeyIdentity(key *ecdsa.PrivateKey) *KeyIdentity {
	return &KeyIdentity{
		key:     key,
		address: crypto.PubkeyToAddress(key.PublicKey),
	}
}

// ParsePrivateKey parses a hex encoded private key, with or without 0x
func ParsePrivateKey(hexKey string) (*KeyIdentity, error) {
	hexKey = strings.TrimPrefix(strings.TrimSpace(hexKey), "0x")
	key, err := crypto.HexToECDSA(hexKey)
	if err != nil {
		return nil, fmt.Errorf("invalid private key: %w", err)
	}
	return NewKeyIdentity(key), nil
}

// Address returns the account address
func (i *KeyIdentity) Address() common.Address {
	return i.address
}

// SignTx signs tx for the given chain
func (i *KeyIdentity) SignTx(tx *types.Transaction, chainID *big.Int) (*types.Transaction, error) {
	return types.SignTx(tx, types.LatestSignerForChainID(chainID), i.key)
}

// Manager turns sender configurations into signing identities
type Manager struct {
	log *slog.Logger
}

// NewManager creates a new sender manager
func NewManager(log *slog.Logger) *Manager {
	return &Manager{log: log}
}

// ResolveIdentity loads the key material of a sender
func (m *Manager) ResolveIdentity(ctx context.Context, sender *config.SenderConfig) (models.SigningIdentity, error) {
	if sender == nil || sender.Type == "" {
		name := "default"
		if sender != nil && sender.Name != "" {
			name = sender.Name
		}
		return nil, invalidSender(name,
			fmt.Errorf("sender %q is not configured, add [senders.%s] to sling.toml or pass --private-key", name, name))
	}

	var identity *KeyIdentity
	var err error

	switch sender.Type {
	case config.SenderTypePrivateKey:
		if sender.PrivateKey == "" {
			return nil, invalidSender(sender.Name, fmt.Errorf("private key is required for private_key sender %s", sender.Name))
		}
		identity, err = ParsePrivateKey(sender.PrivateKey)

	case config.SenderTypeKeystore:
		identity, err = m.loadKeystore(sender)

	default:
		return nil, invalidSender(sender.Name, fmt.Errorf("unsupported sender type: %s", sender.Type))
	}
	if err != nil {
		return nil, invalidSender(sender.Name, err)
	}

	if sender.Address != "" && !strings.EqualFold(sender.Address, identity.Address().Hex()) {
		return nil, invalidSender(sender.Name,
			fmt.Errorf("sender %s key belongs to %s, not the configured address %s", sender.Name, identity.Address().Hex(), sender.Address))
	}

	m.log.Debug("resolved sender", "name", sender.Name, "type", sender.Type, "address", identity.Address().Hex())
	return identity, nil
}

func (m *Manager) loadKeystore(sender *config.SenderConfig) (*KeyIdentity, error) {
	if sender.Keystore == "" {
		return nil, fmt.Errorf("keystore path is required for keystore sender %s", sender.Name)
	}

	data, err := os.ReadFile(sender.Keystore)
	if err != nil {
		return nil, fmt.Errorf("failed to read keystore: %w", err)
	}

	key, err := keystore.DecryptKey(data, sender.Password)
	if err != nil {
		return nil, fmt.Errorf("failed to decrypt keystore %s: %w", sender.Keystore, err)
	}

	return NewKeyIdentity(key.PrivateKey), nil
}

func invalidSender(name string, err error) *domain.DeploymentError {
	return domain.NewDeploymentError(domain.KindInvalidConfiguration, err).
		WithDetail("sender", name)
}

var _ usecase.IdentityResolver = (*Manager)(nil)
