package render

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/ethereum/go-ethereum/common"
	"github.com/fatih/color"
	"github.com/trebuchet-org/sling/internal/domain"
	"github.com/trebuchet-org/sling/internal/domain/config"
	"github.com/trebuchet-org/sling/internal/domain/models"
	"gopkg.in/yaml.v3"
)

// ReportedError is returned once a failed result has been rendered, so the
// caller only has to pick the exit status.
type ReportedError struct {
	Result *models.DeploymentResult
}

func (e *ReportedError) Error() string {
	if e.Result == nil || e.Result.Err == nil {
		return "deployment failed"
	}
	return e.Result.Err.Error()
}

func (e *ReportedError) Unwrap() error {
	if e.Result == nil || e.Result.Err == nil {
		return nil
	}
	return e.Result.Err
}

// DeployRenderer renders the terminal result of a deployment
type DeployRenderer struct {
	out    io.Writer
	errOut io.Writer
	format config.OutputFormat
}

// NewDeployRenderer creates a new deploy renderer
func NewDeployRenderer(out, errOut io.Writer, format config.OutputFormat) *DeployRenderer {
	return &DeployRenderer{
		out:    out,
		errOut: errOut,
		format: format,
	}
}

// Render writes the result and returns a *ReportedError when it is a failure
func (r *DeployRenderer) Render(result *models.DeploymentResult) error {
	var err error
	switch r.format {
	case config.FormatJSON, config.FormatYAML:
		err = r.renderStructured(result)
		if err == nil && !result.Succeeded() {
			color.New(color.FgRed).Fprintf(r.errOut, "Error: %s\n", result.Err.Error())
		}
	default:
		if result.Succeeded() {
			r.renderSuccess(result)
		} else {
			RenderDeploymentError(r.errOut, result.Err)
		}
	}
	if err != nil {
		return err
	}

	if !result.Succeeded() {
		return &ReportedError{Result: result}
	}
	return nil
}

func (r *DeployRenderer) renderSuccess(result *models.DeploymentResult) {
	c := result.Confirmation
	fmt.Fprintf(r.out, "%s deployed to: %s\n", result.Contract, c.Address.Hex())

	label := color.New(color.Faint)
	fmt.Fprintf(r.out, "  %s %s\n", label.Sprint("Transaction:"), c.TxHash.Hex())
	fmt.Fprintf(r.out, "  %s %d (%d confirmation(s))\n", label.Sprint("Block:"), c.BlockNumber, c.Confirmations)
	fmt.Fprintf(r.out, "  %s %d\n", label.Sprint("Gas used:"), c.GasUsed)
	if result.Network != "" {
		fmt.Fprintf(r.out, "  %s %s (chain %d)\n", label.Sprint("Network:"), result.Network, result.ChainID)
	}
	fmt.Fprintf(r.out, "  %s %s\n", label.Sprint("Deployer:"), result.Deployer.Hex())
}

// RenderDeploymentError writes the kind, message and details of a failure
func RenderDeploymentError(w io.Writer, de *domain.DeploymentError) {
	if de == nil {
		color.New(color.FgRed, color.Bold).Fprintln(w, "Error: deployment failed")
		return
	}

	color.New(color.FgRed, color.Bold).Fprintf(w, "Error: %s\n", de.Kind)
	if de.Err != nil {
		fmt.Fprintf(w, "  %v\n", de.Err)
	}
	if de.Stage != "" {
		fmt.Fprintf(w, "  %s %s\n", color.New(color.Faint).Sprint("stage:"), de.Stage)
	}
	for _, key := range de.DetailKeys() {
		fmt.Fprintf(w, "  %s %s\n", color.New(color.Faint).Sprint(key+":"), de.Detail[key])
	}
}

// deploymentDocument is the structured form of a result
type deploymentDocument struct {
	Status          string         `json:"status" yaml:"status"`
	Contract        string         `json:"contract" yaml:"contract"`
	Address         string         `json:"address,omitempty" yaml:"address,omitempty"`
	Network         string         `json:"network,omitempty" yaml:"network,omitempty"`
	ChainID         uint64         `json:"chainId,omitempty" yaml:"chainId,omitempty"`
	Deployer        string         `json:"deployer,omitempty" yaml:"deployer,omitempty"`
	TransactionHash string         `json:"transactionHash,omitempty" yaml:"transactionHash,omitempty"`
	BlockNumber     uint64         `json:"blockNumber,omitempty" yaml:"blockNumber,omitempty"`
	BlockHash       string         `json:"blockHash,omitempty" yaml:"blockHash,omitempty"`
	GasUsed         uint64         `json:"gasUsed,omitempty" yaml:"gasUsed,omitempty"`
	Confirmations   uint64         `json:"confirmations,omitempty" yaml:"confirmations,omitempty"`
	DurationMs      int64          `json:"durationMs" yaml:"durationMs"`
	Error           *errorDocument `json:"error,omitempty" yaml:"error,omitempty"`
}

type errorDocument struct {
	Kind    string            `json:"kind" yaml:"kind"`
	Stage   string            `json:"stage,omitempty" yaml:"stage,omitempty"`
	Message string            `json:"message" yaml:"message"`
	Details map[string]string `json:"details,omitempty" yaml:"details,omitempty"`
}

func newDeploymentDocument(result *models.DeploymentResult) deploymentDocument {
	doc := deploymentDocument{
		Status:     "success",
		Contract:   result.Contract,
		Network:    result.Network,
		ChainID:    result.ChainID,
		DurationMs: result.Duration().Milliseconds(),
	}
	if result.Deployer != (common.Address{}) {
		doc.Deployer = result.Deployer.Hex()
	}
	if result.TxHash != (common.Hash{}) {
		doc.TransactionHash = result.TxHash.Hex()
	}

	if c := result.Confirmation; c != nil && result.Succeeded() {
		doc.Address = c.Address.Hex()
		doc.TransactionHash = c.TxHash.Hex()
		doc.BlockNumber = c.BlockNumber
		doc.BlockHash = c.BlockHash.Hex()
		doc.GasUsed = c.GasUsed
		doc.Confirmations = c.Confirmations
	}

	if de := result.Err; de != nil {
		doc.Status = "failed"
		doc.Error = &errorDocument{
			Kind:  string(de.Kind),
			Stage: string(de.Stage),
		}
		if de.Err != nil {
			doc.Error.Message = de.Err.Error()
		}
		if len(de.Detail) > 0 {
			doc.Error.Details = de.Detail
		}
	}

	return doc
}

func (r *DeployRenderer) renderStructured(result *models.DeploymentResult) error {
	doc := newDeploymentDocument(result)

	if r.format == config.FormatYAML {
		enc := yaml.NewEncoder(r.out)
		enc.SetIndent(2)
		if err := enc.Encode(doc); err != nil {
			return fmt.Errorf("failed to encode result: %w", err)
		}
		return enc.Close()
	}

	enc := json.NewEncoder(r.out)
	enc.SetIndent("", "  ")
	if err := enc.Encode(doc); err != nil {
		return fmt.Errorf("failed to encode result: %w", err)
	}
	return nil
}
