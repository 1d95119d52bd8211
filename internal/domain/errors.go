package domain

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// ErrorKind classifies a failed deployment
type ErrorKind string

const (
	KindBlueprintNotFound    ErrorKind = "BlueprintNotFound"
	KindBlueprintInvalid     ErrorKind = "BlueprintInvalid"
	KindSubmissionRejected   ErrorKind = "SubmissionRejected"
	KindNetworkUnreachable   ErrorKind = "NetworkUnreachable"
	KindConfirmationTimeout  ErrorKind = "ConfirmationTimeout"
	KindTransactionReverted  ErrorKind = "TransactionReverted"
	KindInvalidConfiguration ErrorKind = "InvalidConfiguration"
)

// Sentinel errors, one per kind, for use with errors.Is
var (
	// ErrBlueprintNotFound is returned when no artifact matches a contract reference
	ErrBlueprintNotFound = errors.New("blueprint not found")

	// ErrBlueprintInvalid is returned when an artifact is malformed or stale
	ErrBlueprintInvalid = errors.New("blueprint invalid")

	// ErrSubmissionRejected is returned when the network refuses a transaction
	ErrSubmissionRejected = errors.New("submission rejected")

	// ErrNetworkUnreachable is returned when the RPC endpoint cannot be reached
	ErrNetworkUnreachable = errors.New("network unreachable")

	// ErrConfirmationTimeout is returned when the confirmation depth is not reached in time
	ErrConfirmationTimeout = errors.New("confirmation timeout")

	// ErrTransactionReverted is returned when the deployment was mined but failed
	ErrTransactionReverted = errors.New("transaction reverted")

	// ErrInvalidConfiguration is returned when network or signer settings are unusable
	ErrInvalidConfiguration = errors.New("invalid configuration")
)

var kindSentinels = map[ErrorKind]error{
	KindBlueprintNotFound:    ErrBlueprintNotFound,
	KindBlueprintInvalid:     ErrBlueprintInvalid,
	KindSubmissionRejected:   ErrSubmissionRejected,
	KindNetworkUnreachable:   ErrNetworkUnreachable,
	KindConfirmationTimeout:  ErrConfirmationTimeout,
	KindTransactionReverted:  ErrTransactionReverted,
	KindInvalidConfiguration: ErrInvalidConfiguration,
}

// Sentinel returns the sentinel error for a kind
func (k ErrorKind) Sentinel() error {
	return kindSentinels[k]
}

// DeploymentError is the structured failure of one deployment stage.
// Detail holds diagnostic key/value pairs (tx hash, block, gas used...).
type DeploymentError struct {
	Kind   ErrorKind
	Stage  Stage
	Err    error
	Detail map[string]string
}

// NewDeploymentError creates a deployment error of the given kind
func NewDeploymentError(kind ErrorKind, err error) *DeploymentError {
	return &DeploymentError{
		Kind:   kind,
		Err:    err,
		Detail: make(map[string]string),
	}
}

// WithDetail attaches a diagnostic key/value pair
func (e *DeploymentError) WithDetail(key, value string) *DeploymentError {
	if e.Detail == nil {
		e.Detail = make(map[string]string)
	}
	e.Detail[key] = value
	return e
}

func (e *DeploymentError) Error() string {
	if e.Err == nil {
		return string(e.Kind)
	}
	return fmt.Sprintf("%s: %v", e.Kind, e.Err)
}

func (e *DeploymentError) Unwrap() error {
	return e.Err
}

// Is matches the sentinel of the error's kind
func (e *DeploymentError) Is(target error) bool {
	sentinel := e.Kind.Sentinel()
	return sentinel != nil && sentinel == target
}

// DetailKeys returns the detail keys in stable order
func (e *DeploymentError) DetailKeys() []string {
	keys := make([]string, 0, len(e.Detail))
	for k := range e.Detail {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// AsDeploymentError extracts a *DeploymentError from err, classifying
// anything else with the fallback kind.
func AsDeploymentError(err error, fallback ErrorKind) *DeploymentError {
	var de *DeploymentError
	if errors.As(err, &de) {
		return de
	}
	return NewDeploymentError(fallback, err)
}

// NoBlueprintMatchErr is returned when no artifact matches a contract reference
type NoBlueprintMatchErr struct {
	Ref         string
	Suggestions []string
}

func (e NoBlueprintMatchErr) Error() string {
	if len(e.Suggestions) == 0 {
		return fmt.Sprintf("no artifact found for contract %q", e.Ref)
	}
	return fmt.Sprintf("no artifact found for contract %q (did you mean: %s?)",
		e.Ref, strings.Join(e.Suggestions, ", "))
}

// AmbiguousBlueprintErr is returned when a bare name matches several artifacts
type AmbiguousBlueprintErr struct {
	Ref     string
	Matches []string
}

func (e AmbiguousBlueprintErr) Error() string {
	sorted := make([]string, len(e.Matches))
	copy(sorted, e.Matches)
	sort.Strings(sorted)

	var suggestions []string
	for _, m := range sorted {
		suggestions = append(suggestions, "  - "+m)
	}

	return fmt.Sprintf("multiple artifacts found for contract %q - use full path:contract format to disambiguate:\n%s",
		e.Ref, strings.Join(suggestions, "\n"))
}
