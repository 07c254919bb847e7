// Package sourceSelector decides whether a transaction's main actions come
// from the indexer or from RPC.
package sourceSelector

import (
	"github.com/nearblocks/txns-action/internal/config"
)

// Last block heights at which the indexer's action data is incomplete.
const (
	MainnetRpcCutoff uint64 = 143997621
	TestnetRpcCutoff uint64 = 192373963
)

type SourceSelector struct {
	network config.Network
}

func NewSourceSelector(network config.Network) *SourceSelector {
	return &SourceSelector{network: network}
}

// ShouldUseRpc reports whether RPC derived actions are authoritative for a
// transaction included at blockHeight. A zero height means the height is
// unknown and keeps the indexer's actions.
func (s *SourceSelector) ShouldUseRpc(blockHeight uint64) bool {
	return ShouldUseRpc(s.network, blockHeight)
}

func ShouldUseRpc(network config.Network, blockHeight uint64) bool {
	if blockHeight == 0 {
		return false
	}
	switch network {
	case config.Network_Mainnet:
		return blockHeight <= MainnetRpcCutoff
	case config.Network_Testnet:
		return blockHeight <= TestnetRpcCutoff
	default:
		return false
	}
}
