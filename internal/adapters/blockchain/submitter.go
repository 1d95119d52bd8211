package blockchain

import (
	"context"
	"fmt"
	"log/slog"
	"math/big"
	"time"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/trebuchet-org/sling/internal/domain"
	"github.com/trebuchet-org/sling/internal/domain/models"
	"github.com/trebuchet-org/sling/internal/usecase"
)

// DeploymentEncoder builds the creation payload of a blueprint
type DeploymentEncoder interface {
	EncodeDeployment(blueprint *models.Blueprint, args []string) ([]byte, error)
}

// Submitter signs and broadcasts contract creation transactions
type Submitter struct {
	conn    *Connection
	encoder DeploymentEncoder
	log     *slog.Logger
}

// NewSubmitter creates a new deployment submitter
func NewSubmitter(conn *Connection, encoder DeploymentEncoder, log *slog.Logger) *Submitter {
	return &Submitter{
		conn:    conn,
		encoder: encoder,
		log:     log,
	}
}

// Submit sends exactly one creation transaction for the request
func (s *Submitter) Submit(ctx context.Context, req *models.DeploymentRequest) (*models.PendingDeployment, error) {
	data, err := s.encoder.EncodeDeployment(req.Blueprint, req.ConstructorArgs)
	if err != nil {
		return nil, domain.NewDeploymentError(domain.KindSubmissionRejected, err)
	}

	backend, chainID, err := s.conn.Backend(ctx)
	if err != nil {
		return nil, err
	}

	from := req.Identity.Address()
	value := req.Options.Value
	if value == nil {
		value = new(big.Int)
	}

	nonce, err := backend.PendingNonceAt(ctx, from)
	if err != nil {
		return nil, classify(fmt.Errorf("failed to get nonce for %s: %w", from.Hex(), err), domain.KindSubmissionRejected)
	}

	fees, err := s.suggestFees(ctx, backend)
	if err != nil {
		return nil, err
	}

	gas := req.Options.GasLimit
	if gas == 0 {
		gas, err = backend.EstimateGas(ctx, ethereum.CallMsg{
			From:      from,
			GasPrice:  fees.gasPrice,
			GasFeeCap: fees.feeCap,
			GasTipCap: fees.tipCap,
			Value:     value,
			Data:      data,
		})
		if err != nil {
			return nil, classify(fmt.Errorf("failed to estimate gas: %w", err), domain.KindSubmissionRejected)
		}
	}

	var inner types.TxData
	if fees.dynamic() {
		inner = &types.DynamicFeeTx{
			ChainID:   chainID,
			Nonce:     nonce,
			GasTipCap: fees.tipCap,
			GasFeeCap: fees.feeCap,
			Gas:       gas,
			Value:     value,
			Data:      data,
		}
	} else {
		inner = &types.LegacyTx{
			Nonce:    nonce,
			GasPrice: fees.gasPrice,
			Gas:      gas,
			Value:    value,
			Data:     data,
		}
	}

	signed, err := req.Identity.SignTx(types.NewTx(inner), chainID)
	if err != nil {
		return nil, domain.NewDeploymentError(domain.KindInvalidConfiguration,
			fmt.Errorf("failed to sign transaction: %w", err))
	}

	s.log.Debug("sending deployment transaction",
		"contract", req.Blueprint.Name,
		"from", from.Hex(),
		"nonce", nonce,
		"gas", gas,
		"type", signed.Type(),
		"tx", signed.Hash().Hex())

	if err := backend.SendTransaction(ctx, signed); err != nil {
		de := classify(fmt.Errorf("failed to send transaction: %w", err), domain.KindSubmissionRejected)
		if de.Kind == domain.KindNetworkUnreachable {
			// The node may have received it before the connection dropped
			de.WithDetail("transactionHash", signed.Hash().Hex())
		}
		return nil, de
	}

	return &models.PendingDeployment{
		Request:          req,
		TxHash:           signed.Hash(),
		Nonce:            nonce,
		ChainID:          chainID,
		PredictedAddress: crypto.CreateAddress(from, nonce),
		SubmittedAt:      time.Now(),
	}, nil
}

type feeSuggestion struct {
	gasPrice *big.Int
	tipCap   *big.Int
	feeCap   *big.Int
}

func (f feeSuggestion) dynamic() bool {
	return f.feeCap != nil
}

// suggestFees prices the transaction as EIP-1559 when the chain has a base
// fee and as a legacy transaction otherwise.
func (s *Submitter) suggestFees(ctx context.Context, backend Backend) (feeSuggestion, error) {
	head, err := backend.HeaderByNumber(ctx, nil)
	if err != nil {
		return feeSuggestion{}, classify(fmt.Errorf("failed to get latest block: %w", err), domain.KindSubmissionRejected)
	}

	if head.BaseFee == nil {
		price, err := backend.SuggestGasPrice(ctx)
		if err != nil {
			return feeSuggestion{}, classify(fmt.Errorf("failed to suggest gas price: %w", err), domain.KindSubmissionRejected)
		}
		return feeSuggestion{gasPrice: price}, nil
	}

	tip, err := backend.SuggestGasTipCap(ctx)
	if err != nil {
		return feeSuggestion{}, classify(fmt.Errorf("failed to suggest gas tip: %w", err), domain.KindSubmissionRejected)
	}

	// Leave room for the base fee to double before the transaction is mined
	feeCap := new(big.Int).Mul(head.BaseFee, big.NewInt(2))
	feeCap.Add(feeCap, tip)

	return feeSuggestion{tipCap: tip, feeCap: feeCap}, nil
}

var _ usecase.DeploymentSubmitter = (*Submitter)(nil)
