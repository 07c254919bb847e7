package nearRpc

import (
	"encoding/json"
	"fmt"

	"github.com/pkg/errors"
)

var ErrAllProvidersFailed = errors.New("all rpc providers failed")

// RpcError is a JSON-RPC level error returned by a node.
type RpcError struct {
	Code    int             `json:"code"`
	Name    string          `json:"name"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data,omitempty"`
	Cause   *RpcErrorCause  `json:"cause,omitempty"`
}

type RpcErrorCause struct {
	Name string          `json:"name"`
	Info json.RawMessage `json:"info,omitempty"`
}

func (e *RpcError) Error() string {
	if e.Cause != nil && e.Cause.Name != "" {
		return fmt.Sprintf("rpc error %d %s: %s", e.Code, e.Cause.Name, e.Message)
	}
	return fmt.Sprintf("rpc error %d: %s", e.Code, e.Message)
}
