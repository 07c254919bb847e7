package nearRpc

import (
	"context"
	"fmt"

	lru "github.com/hashicorp/golang-lru"
	"github.com/nearblocks/txns-action/pkg/metrics/metricsTypes"
	"github.com/nearblocks/txns-action/pkg/nearTypes"
	"github.com/pkg/errors"
)

const sessionCacheSize = 64

// Session is a request-scoped view of the client whose responses are cached
// for its lifetime. Sessions are not shared between requests.
type Session struct {
	client *Client
	cache  *lru.Cache
}

func (c *Client) NewSession() *Session {
	cache, err := lru.New(sessionCacheSize)
	if err != nil {
		// only fails for a non-positive size
		panic(err)
	}
	return &Session{
		client: c,
		cache:  cache,
	}
}

// cached returns the cached response for key, or calls method and decodes
// into result which is then cached.
func (s *Session) cached(ctx context.Context, key string, method string, params interface{}, result interface{}) (interface{}, error) {
	if v, ok := s.cache.Get(key); ok {
		_ = s.client.metrics.Incr(metricsTypes.Metric_Incr_RpcCacheHit, []metricsTypes.MetricsLabel{
			{Name: "method", Value: method},
		}, 1)
		return v, nil
	}
	if err := s.client.Call(ctx, method, params, result); err != nil {
		return nil, err
	}
	s.cache.Add(key, result)
	return result, nil
}

// TxStatus fetches a transaction with its receipt outcomes.
func (s *Session) TxStatus(ctx context.Context, hash string, signerId string) (*nearTypes.RpcTransaction, error) {
	if hash == "" || signerId == "" {
		return nil, errors.New("transaction hash and signer are required")
	}
	txn := &nearTypes.RpcTransaction{}
	v, err := s.cached(ctx, fmt.Sprintf("tx:%s:%s", hash, signerId), "tx", []string{hash, signerId}, txn)
	if err != nil {
		return nil, err
	}
	return v.(*nearTypes.RpcTransaction), nil
}

// Block fetches a block by hash.
func (s *Session) Block(ctx context.Context, blockHash string) (*nearTypes.RpcBlock, error) {
	if blockHash == "" {
		return nil, errors.New("block hash is required")
	}
	block := &nearTypes.RpcBlock{}
	params := map[string]string{"block_id": blockHash}
	v, err := s.cached(ctx, "block:"+blockHash, "block", params, block)
	if err != nil {
		return nil, err
	}
	return v.(*nearTypes.RpcBlock), nil
}
