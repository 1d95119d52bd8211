package blockchain

import (
	"context"
	"math/big"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/trebuchet-org/sling/internal/domain"
	"github.com/trebuchet-org/sling/internal/domain/config"
	"github.com/trebuchet-org/sling/internal/domain/models"
	"github.com/trebuchet-org/sling/internal/logging"
)

// receiptBackend serves a fixed receipt at a fixed head. Methods the
// waiter does not use are left to the nil embedded Backend.
type receiptBackend struct {
	Backend
	receipt *types.Receipt
	head    uint64
}

func (b *receiptBackend) ChainID(context.Context) (*big.Int, error) {
	return big.NewInt(simulatedChainID), nil
}

func (b *receiptBackend) TransactionReceipt(context.Context, common.Hash) (*types.Receipt, error) {
	return b.receipt, nil
}

func (b *receiptBackend) BlockNumber(context.Context) (uint64, error) {
	return b.head, nil
}

func newReceiptWaiter(backend *receiptBackend) *Waiter {
	network := &config.Network{Name: "fake", ChainID: simulatedChainID}
	return NewWaiter(NewConnectionFromBackend(backend, network, logging.Discard()), logging.Discard())
}

func TestWaitForConfirmation_ReceiptWithoutContractAddress(t *testing.T) {
	txHash := common.HexToHash("0xabc1")
	backend := &receiptBackend{
		receipt: &types.Receipt{
			Status:      types.ReceiptStatusSuccessful,
			TxHash:      txHash,
			BlockNumber: big.NewInt(5),
			GasUsed:     21000,
		},
		head: 10,
	}

	pending := &models.PendingDeployment{
		TxHash:           txHash,
		PredictedAddress: common.HexToAddress("0x1111111111111111111111111111111111111111"),
	}

	confirmation, err := newReceiptWaiter(backend).WaitForConfirmation(context.Background(), pending, fastWait(1, time.Second))
	assert.Nil(t, confirmation)
	de := requireKind(t, err, domain.ErrTransactionReverted)
	assert.Contains(t, de.Error(), "no contract address")
	assert.Equal(t, txHash.Hex(), de.Detail["transactionHash"])
	assert.Equal(t, "5", de.Detail["blockNumber"])
	assert.NotContains(t, de.Error(), pending.PredictedAddress.Hex())
}

func TestWaitForConfirmation_AddressFromReceipt(t *testing.T) {
	txHash := common.HexToHash("0xabc2")
	created := common.HexToAddress("0x2222222222222222222222222222222222222222")
	backend := &receiptBackend{
		receipt: &types.Receipt{
			Status:          types.ReceiptStatusSuccessful,
			TxHash:          txHash,
			ContractAddress: created,
			BlockNumber:     big.NewInt(5),
		},
		head: 5,
	}

	pending := &models.PendingDeployment{
		TxHash:           txHash,
		PredictedAddress: common.HexToAddress("0x1111111111111111111111111111111111111111"),
	}

	confirmation, err := newReceiptWaiter(backend).WaitForConfirmation(context.Background(), pending, fastWait(1, time.Second))
	require.NoError(t, err)
	assert.Equal(t, created, confirmation.Address)
	assert.Equal(t, uint64(1), confirmation.Confirmations)
}
