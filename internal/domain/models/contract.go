package models

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum/accounts/abi"
)

// ArtifactFormat identifies the toolchain that produced an artifact
type ArtifactFormat string

const (
	ArtifactFormatFoundry ArtifactFormat = "foundry"
	ArtifactFormatHardhat ArtifactFormat = "hardhat"
)

// Blueprint is a compiled contract ready for deployment.
// It is read-only once resolved.
type Blueprint struct {
	Name         string
	SourcePath   string
	ArtifactPath string
	Format       ArtifactFormat
	Bytecode     []byte
	RawABI       json.RawMessage
	ABI          abi.ABI
	CompiledAt   time.Time
	// Stale is set when the source file is newer than the artifact
	Stale bool
}

// Key returns the fully qualified "path:Name" reference
func (b *Blueprint) Key() string {
	if b.SourcePath == "" {
		return b.Name
	}
	return fmt.Sprintf("%s:%s", b.SourcePath, b.Name)
}

// ConstructorInputs returns the constructor parameters, empty when the
// contract has no explicit constructor.
func (b *Blueprint) ConstructorInputs() abi.Arguments {
	return b.ABI.Constructor.Inputs
}

// ConstructorSignature renders the constructor as "constructor(type name, ...)"
func (b *Blueprint) ConstructorSignature() string {
	inputs := b.ConstructorInputs()
	parts := make([]string, len(inputs))
	for i, in := range inputs {
		if in.Name != "" {
			parts[i] = in.Type.String() + " " + in.Name
		} else {
			parts[i] = in.Type.String()
		}
	}
	return "constructor(" + strings.Join(parts, ", ") + ")"
}

// BytecodeObject represents bytecode information in a Foundry artifact.
// Hardhat artifacts store the bytecode as a bare hex string, which is
// decoded into Object.
type BytecodeObject struct {
	Object         string         `json:"object"`
	LinkReferences map[string]any `json:"linkReferences,omitempty"`
}

func (b *BytecodeObject) UnmarshalJSON(data []byte) error {
	var hex string
	if err := json.Unmarshal(data, &hex); err == nil {
		b.Object = hex
		return nil
	}

	type plain BytecodeObject
	var obj plain
	if err := json.Unmarshal(data, &obj); err != nil {
		return err
	}
	*b = BytecodeObject(obj)
	return nil
}

// Artifact is the on-disk compilation output of either Foundry or Hardhat
type Artifact struct {
	Format           string           `json:"_format,omitempty"`
	ContractName     string           `json:"contractName,omitempty"`
	SourceName       string           `json:"sourceName,omitempty"`
	ABI              json.RawMessage  `json:"abi"`
	Bytecode         BytecodeObject   `json:"bytecode"`
	DeployedBytecode BytecodeObject   `json:"deployedBytecode"`
	Metadata         ArtifactMetadata `json:"metadata"`
}

// ArtifactMetadata represents the metadata section of a Foundry artifact
type ArtifactMetadata struct {
	Compiler struct {
		Version string `json:"version"`
	} `json:"compiler"`
	Settings struct {
		CompilationTarget map[string]string `json:"compilationTarget"`
	} `json:"settings"`
}

// UnmarshalJSON tolerates metadata serialized as a JSON string, which
// older Foundry versions emit.
func (m *ArtifactMetadata) UnmarshalJSON(data []byte) error {
	var raw string
	if err := json.Unmarshal(data, &raw); err == nil {
		if raw == "" {
			return nil
		}
		data = []byte(raw)
	}

	type plain ArtifactMetadata
	var obj plain
	if err := json.Unmarshal(data, &obj); err != nil {
		return err
	}
	*m = ArtifactMetadata(obj)
	return nil
}

// Target returns the source path and contract name this artifact was compiled for
func (a *Artifact) Target() (source, name string) {
	if a.ContractName != "" {
		return a.SourceName, a.ContractName
	}
	for s, n := range a.Metadata.Settings.CompilationTarget {
		return s, n
	}
	return "", ""
}

// Kind returns the artifact's toolchain
func (a *Artifact) Kind() ArtifactFormat {
	if strings.HasPrefix(a.Format, "hh-") {
		return ArtifactFormatHardhat
	}
	return ArtifactFormatFoundry
}
