package blockchain

import (
	"context"
	"errors"
	"io"
	"net"
	"net/url"
	"syscall"

	"github.com/ethereum/go-ethereum/rpc"
	"github.com/trebuchet-org/sling/internal/domain"
)

// isTransportError reports whether err means the node could not be reached,
// as opposed to the node answering with an error.
func isTransportError(err error) bool {
	if err == nil {
		return false
	}

	// JSON-RPC error responses come from a reachable node
	var rpcErr rpc.Error
	if errors.As(err, &rpcErr) {
		return false
	}

	var httpErr rpc.HTTPError
	if errors.As(err, &httpErr) {
		return true
	}

	var urlErr *url.Error
	var netErr net.Error
	var opErr *net.OpError
	var dnsErr *net.DNSError
	switch {
	case errors.As(err, &urlErr),
		errors.As(err, &opErr),
		errors.As(err, &dnsErr),
		errors.As(err, &netErr):
		return true
	case errors.Is(err, syscall.ECONNREFUSED),
		errors.Is(err, syscall.ECONNRESET),
		errors.Is(err, io.EOF),
		errors.Is(err, io.ErrUnexpectedEOF):
		return true
	}

	return false
}

// classify wraps a node error as a deployment error. Transport failures are
// NetworkUnreachable, everything else gets the fallback kind.
func classify(err error, fallback domain.ErrorKind) *domain.DeploymentError {
	var de *domain.DeploymentError
	if errors.As(err, &de) {
		return de
	}

	kind := fallback
	if isTransportError(err) && !errors.Is(err, context.Canceled) {
		kind = domain.KindNetworkUnreachable
	}
	return domain.NewDeploymentError(kind, err)
}
