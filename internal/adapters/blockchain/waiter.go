package blockchain

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/trebuchet-org/sling/internal/domain"
	"github.com/trebuchet-org/sling/internal/domain/models"
	"github.com/trebuchet-org/sling/internal/usecase"
)

const defaultPollInterval = 2 * time.Second

// Waiter polls the node until a deployment transaction is buried under the
// requested number of blocks.
type Waiter struct {
	conn *Connection
	log  *slog.Logger
}

// NewWaiter creates a new confirmation waiter
func NewWaiter(conn *Connection, log *slog.Logger) *Waiter {
	return &Waiter{
		conn: conn,
		log:  log,
	}
}

// waitState is what the waiter has observed so far, used to explain timeouts
type waitState struct {
	minedBlock    uint64
	confirmations uint64
	lastErr       error
}

// WaitForConfirmation blocks until the transaction has opts.Confirmations
// confirmations, it reverts, or opts.Timeout expires.
func (w *Waiter) WaitForConfirmation(ctx context.Context, pending *models.PendingDeployment, opts models.WaitOptions) (*models.Confirmation, error) {
	backend, _, err := w.conn.Backend(ctx)
	if err != nil {
		return nil, err
	}

	depth := opts.Confirmations
	if depth == 0 {
		depth = 1
	}
	interval := opts.PollInterval
	if interval <= 0 {
		interval = defaultPollInterval
	}

	waitCtx := ctx
	if opts.Timeout > 0 {
		var cancel context.CancelFunc
		waitCtx, cancel = context.WithTimeout(ctx, opts.Timeout)
		defer cancel()
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	state := &waitState{}
	for {
		confirmation, err := w.poll(waitCtx, backend, pending, depth, state)
		if err != nil {
			return nil, err
		}
		if confirmation != nil {
			return confirmation, nil
		}

		select {
		case <-waitCtx.Done():
			return nil, w.timeoutError(ctx, pending, opts, depth, state)
		case <-ticker.C:
		}
	}
}

// poll checks the receipt once. It returns a confirmation when the depth is
// reached and an error only when the outcome is final.
func (w *Waiter) poll(ctx context.Context, backend Backend, pending *models.PendingDeployment, depth uint64, state *waitState) (*models.Confirmation, error) {
	receipt, err := backend.TransactionReceipt(ctx, pending.TxHash)
	if err != nil {
		if errors.Is(err, ethereum.NotFound) {
			if state.minedBlock != 0 {
				w.log.Debug("transaction receipt disappeared, block was reorganized", "tx", pending.TxHash.Hex(), "block", state.minedBlock)
				state.minedBlock = 0
				state.confirmations = 0
			}
			state.lastErr = nil
			return nil, nil
		}
		if ctx.Err() == nil {
			w.log.Debug("failed to get receipt", "tx", pending.TxHash.Hex(), "error", err)
			state.lastErr = err
		}
		return nil, nil
	}

	block := receipt.BlockNumber.Uint64()
	if receipt.Status == types.ReceiptStatusFailed {
		return nil, domain.NewDeploymentError(domain.KindTransactionReverted,
			fmt.Errorf("deployment transaction %s reverted in block %d", pending.TxHash.Hex(), block)).
			WithDetail("transactionHash", pending.TxHash.Hex()).
			WithDetail("blockNumber", strconv.FormatUint(block, 10)).
			WithDetail("gasUsed", strconv.FormatUint(receipt.GasUsed, 10))
	}
	if receipt.ContractAddress == (common.Address{}) {
		return nil, domain.NewDeploymentError(domain.KindTransactionReverted,
			fmt.Errorf("receipt for %s in block %d has no contract address, no contract was created", pending.TxHash.Hex(), block)).
			WithDetail("transactionHash", pending.TxHash.Hex()).
			WithDetail("blockNumber", strconv.FormatUint(block, 10)).
			WithDetail("gasUsed", strconv.FormatUint(receipt.GasUsed, 10))
	}

	head, err := backend.BlockNumber(ctx)
	if err != nil {
		if ctx.Err() == nil {
			state.lastErr = err
		}
		return nil, nil
	}
	state.lastErr = nil

	var confirmations uint64
	if head >= block {
		confirmations = head - block + 1
	}
	if block != state.minedBlock || confirmations != state.confirmations {
		w.log.Debug("deployment mined", "tx", pending.TxHash.Hex(), "block", block, "confirmations", confirmations, "required", depth)
	}
	state.minedBlock = block
	state.confirmations = confirmations

	if confirmations < depth {
		return nil, nil
	}

	return &models.Confirmation{
		Address:       receipt.ContractAddress,
		TxHash:        receipt.TxHash,
		BlockNumber:   block,
		BlockHash:     receipt.BlockHash,
		GasUsed:       receipt.GasUsed,
		Confirmations: confirmations,
	}, nil
}

func (w *Waiter) timeoutError(parent context.Context, pending *models.PendingDeployment, opts models.WaitOptions, depth uint64, state *waitState) error {
	var de *domain.DeploymentError
	switch {
	case parent.Err() != nil:
		de = domain.NewDeploymentError(domain.KindConfirmationTimeout,
			fmt.Errorf("stopped waiting for %s, the transaction may still be mined", pending.TxHash.Hex()))
	case isTransportError(state.lastErr):
		de = domain.NewDeploymentError(domain.KindNetworkUnreachable,
			fmt.Errorf("lost connection while waiting for %s: %w", pending.TxHash.Hex(), state.lastErr))
	default:
		de = domain.NewDeploymentError(domain.KindConfirmationTimeout,
			fmt.Errorf("transaction %s did not reach %d confirmation(s) within %s", pending.TxHash.Hex(), depth, opts.Timeout))
	}

	de.WithDetail("transactionHash", pending.TxHash.Hex()).
		WithDetail("expectedAddress", pending.PredictedAddress.Hex())
	if state.minedBlock != 0 {
		de.WithDetail("blockNumber", strconv.FormatUint(state.minedBlock, 10)).
			WithDetail("confirmations", strconv.FormatUint(state.confirmations, 10))
	}
	return de
}

var _ usecase.ConfirmationWaiter = (*Waiter)(nil)
