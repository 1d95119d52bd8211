package render

import (
	"fmt"
	"io"
	"strconv"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/trebuchet-org/sling/internal/usecase"
)

// NetworksRenderer renders network lists
type NetworksRenderer struct {
	out io.Writer
}

// NewNetworksRenderer creates a new networks renderer
func NewNetworksRenderer(out io.Writer) *NetworksRenderer {
	return &NetworksRenderer{out: out}
}

// RenderNetworksList renders the configured networks, marking the active one
func (r *NetworksRenderer) RenderNetworksList(result *usecase.ListNetworksResult) error {
	if len(result.Networks) == 0 {
		fmt.Fprintln(r.out, "No networks configured in sling.toml [networks] or foundry.toml [rpc_endpoints]")
		return nil
	}

	t := newTable("", "NETWORK", "CHAIN ID", "RPC URL")
	for _, network := range result.Networks {
		marker := " "
		name := nameStyle.Sprint(network.Name)
		if network.Name == result.Active {
			marker = activeStyle.Sprint("*")
			name = activeStyle.Sprint(network.Name)
		}

		chainID := faintStyle.Sprint("any")
		if network.ChainID != 0 {
			chainID = strconv.FormatUint(network.ChainID, 10)
		}

		rpcURL := network.RPCURL
		if rpcURL == "" {
			rpcURL = warnStyle.Sprint("(no rpc_url)")
		}

		t.AppendRow(table.Row{marker, name, chainID, rpcURL})
	}

	fmt.Fprintln(r.out, t.Render())
	return nil
}
