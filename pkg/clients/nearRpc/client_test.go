package nearRpc

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"testing"
	"time"

	"github.com/jarcoal/httpmock"
	"github.com/nearblocks/txns-action/pkg/logger"
	"github.com/nearblocks/txns-action/pkg/metrics"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
)

const (
	primary   = "https://rpc.primary.test"
	secondary = "https://rpc.secondary.test"
)

const txResult = `{"jsonrpc":"2.0","id":"1","result":{
	"transaction":{"hash":"hash1","signer_id":"alice.near","receiver_id":"usdt.near","actions":[{"Transfer":{"deposit":"1"}}]},
	"transaction_outcome":{"id":"hash1","block_hash":"bh1","outcome":{"receipt_ids":["r1"],"gas_burnt":1,"tokens_burnt":"1"}},
	"receipts_outcome":[{"id":"r1","outcome":{"executor_id":"usdt.near","logs":["hello"],"gas_burnt":2,"tokens_burnt":"2"}}],
	"status":{"SuccessValue":""}
}}`

func setup(t *testing.T, urls ...string) (*Client, *httpmock.MockTransport) {
	l, err := logger.NewLogger(&logger.LoggerConfig{Debug: false})
	assert.Nil(t, err)

	client := NewClient(&NearRpcClientConfig{Urls: urls, Timeout: 50 * time.Millisecond}, metrics.NewNoopMetricsSink(), l)
	mock := httpmock.NewMockTransport()
	client.SetHttpClient(&http.Client{Transport: mock})
	return client, mock
}

func Test_NearRpcClient(t *testing.T) {
	t.Run("Decodes a tx result", func(t *testing.T) {
		client, mock := setup(t, primary, secondary)
		mock.RegisterResponder("POST", primary, func(req *http.Request) (*http.Response, error) {
			body, _ := io.ReadAll(req.Body)
			rpcReq := &RpcRequest{}
			assert.Nil(t, json.Unmarshal(body, rpcReq))
			assert.Equal(t, "tx", rpcReq.Method)
			assert.Equal(t, []interface{}{"hash1", "alice.near"}, rpcReq.Params)
			return httpmock.NewStringResponse(200, txResult), nil
		})

		txn, err := client.NewSession().TxStatus(context.Background(), "hash1", "alice.near")
		assert.Nil(t, err)
		assert.Equal(t, "usdt.near", txn.Transaction.ReceiverId)
		assert.Equal(t, "r1", txn.ReceiptsOutcome[0].Id)
		assert.Equal(t, 0, mock.GetCallCountInfo()["POST "+secondary])
	})
	t.Run("Fails over to the next provider", func(t *testing.T) {
		client, mock := setup(t, primary, secondary)
		mock.RegisterResponder("POST", primary, httpmock.NewStringResponder(503, "unavailable"))
		mock.RegisterResponder("POST", secondary, httpmock.NewStringResponder(200, txResult))

		txn, err := client.NewSession().TxStatus(context.Background(), "hash1", "alice.near")
		assert.Nil(t, err)
		assert.NotNil(t, txn)
		assert.Equal(t, 1, mock.GetCallCountInfo()["POST "+primary])
		assert.Equal(t, 1, mock.GetCallCountInfo()["POST "+secondary])
	})
	t.Run("JSON-RPC errors fail over too", func(t *testing.T) {
		client, mock := setup(t, primary, secondary)
		mock.RegisterResponder("POST", primary, httpmock.NewStringResponder(200,
			`{"jsonrpc":"2.0","id":"1","error":{"name":"HANDLER_ERROR","cause":{"name":"UNKNOWN_TRANSACTION"},"code":-32000,"message":"Server error"}}`))
		mock.RegisterResponder("POST", secondary, httpmock.NewStringResponder(200, txResult))

		_, err := client.NewSession().TxStatus(context.Background(), "hash1", "alice.near")
		assert.Nil(t, err)
	})
	t.Run("Every provider failing is reported", func(t *testing.T) {
		client, mock := setup(t, primary, secondary)
		mock.RegisterResponder("POST", primary, httpmock.NewStringResponder(500, "boom"))
		mock.RegisterResponder("POST", secondary, httpmock.NewStringResponder(200,
			`{"jsonrpc":"2.0","id":"1","error":{"code":-32000,"message":"Server error"}}`))

		txn, err := client.NewSession().TxStatus(context.Background(), "hash1", "alice.near")
		assert.Nil(t, txn)
		assert.True(t, errors.Is(err, ErrAllProvidersFailed))
		assert.Contains(t, err.Error(), "status 500")
		assert.Contains(t, err.Error(), "Server error")
	})
	t.Run("No providers", func(t *testing.T) {
		client, _ := setup(t)
		err := client.Call(context.Background(), "block", nil, &struct{}{})
		assert.True(t, errors.Is(err, ErrAllProvidersFailed))
	})
	t.Run("Sessions cache responses", func(t *testing.T) {
		client, mock := setup(t, primary)
		mock.RegisterResponder("POST", primary, httpmock.NewStringResponder(200,
			`{"jsonrpc":"2.0","id":"1","result":{"author":"node.near","header":{"height":100,"hash":"bh1","timestamp":1700000000000000000}}}`))

		session := client.NewSession()
		first, err := session.Block(context.Background(), "bh1")
		assert.Nil(t, err)
		second, err := session.Block(context.Background(), "bh1")
		assert.Nil(t, err)
		assert.Equal(t, first, second)
		assert.Equal(t, uint64(100), first.Header.Height)
		assert.Equal(t, "1700000000000000000", first.Header.Timestamp.String())
		assert.Equal(t, 1, mock.GetCallCountInfo()["POST "+primary])

		_, err = client.NewSession().Block(context.Background(), "bh1")
		assert.Nil(t, err)
		assert.Equal(t, 2, mock.GetCallCountInfo()["POST "+primary])
	})
	t.Run("Missing arguments", func(t *testing.T) {
		client, _ := setup(t, primary)
		_, err := client.NewSession().TxStatus(context.Background(), "", "alice.near")
		assert.NotNil(t, err)
		_, err = client.NewSession().Block(context.Background(), "")
		assert.NotNil(t, err)
	})
}
