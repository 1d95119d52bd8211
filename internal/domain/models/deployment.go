package models

import (
	"math/big"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/trebuchet-org/sling/internal/domain"
)

// SigningIdentity is an account able to authorize transactions
type SigningIdentity interface {
	Address() common.Address
	SignTx(tx *types.Transaction, chainID *big.Int) (*types.Transaction, error)
}

// TxOptions are optional overrides for the deployment transaction.
// Zero values mean "ask the network".
type TxOptions struct {
	GasLimit uint64
	Value    *big.Int
}

// DeploymentRequest combines a blueprint with everything needed to submit it.
// It is created per invocation and never persisted.
type DeploymentRequest struct {
	Blueprint       *Blueprint
	Identity        SigningIdentity
	ConstructorArgs []string
	Options         TxOptions
}

// PendingDeployment is a submitted but unconfirmed deployment transaction
type PendingDeployment struct {
	Request *DeploymentRequest
	TxHash  common.Hash
	Nonce   uint64
	ChainID *big.Int
	// PredictedAddress is derived from sender and nonce. It is diagnostic
	// only; the reported address always comes from the receipt.
	PredictedAddress common.Address
	SubmittedAt      time.Time
}

// WaitOptions controls the confirmation wait
type WaitOptions struct {
	Confirmations uint64
	Timeout       time.Duration
	PollInterval  time.Duration
}

// Confirmation is the on-chain outcome of a confirmed deployment
type Confirmation struct {
	Address       common.Address
	TxHash        common.Hash
	BlockNumber   uint64
	BlockHash     common.Hash
	GasUsed       uint64
	Confirmations uint64
}

// DeploymentResult is the terminal value of one deployment invocation:
// either a confirmed address or a structured failure, never both.
type DeploymentResult struct {
	Contract     string
	Network      string
	ChainID      uint64
	Deployer     common.Address
	TxHash       common.Hash
	Confirmation *Confirmation
	Stage        domain.Stage
	Err          *domain.DeploymentError
	StartedAt    time.Time
	FinishedAt   time.Time
}

// Succeeded reports whether the deployment was confirmed
func (r *DeploymentResult) Succeeded() bool {
	return r.Err == nil && r.Confirmation != nil
}

// Address returns the confirmed contract address, zero on failure
func (r *DeploymentResult) Address() common.Address {
	if !r.Succeeded() {
		return common.Address{}
	}
	return r.Confirmation.Address
}

// Duration returns the wall time the invocation took
func (r *DeploymentResult) Duration() time.Duration {
	return r.FinishedAt.Sub(r.StartedAt)
}
