package indexer

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/jarcoal/httpmock"
	"github.com/nearblocks/txns-action/pkg/logger"
	"github.com/nearblocks/txns-action/pkg/metrics"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
)

const baseUrl = "https://api.nearblocks.test/"

func setup(t *testing.T, retries int) (*Client, *httpmock.MockTransport) {
	l, err := logger.NewLogger(&logger.LoggerConfig{Debug: false})
	assert.Nil(t, err)

	cfg := DefaultIndexerClientConfig()
	cfg.BaseUrl = baseUrl
	cfg.AccessKey = "secret"
	cfg.Retries = retries
	cfg.Timeout = 50 * time.Millisecond
	cfg.InitialInterval = time.Millisecond
	cfg.MaxRetryAfter = 10 * time.Millisecond

	client := NewClient(cfg, metrics.NewNoopMetricsSink(), l)
	mock := httpmock.NewMockTransport()
	client.SetHttpClient(&http.Client{Transport: mock})
	return client, mock
}

func Test_IndexerClient(t *testing.T) {
	t.Run("Sends the bearer token and decodes receipts", func(t *testing.T) {
		client, mock := setup(t, 3)
		mock.RegisterResponder("GET", baseUrl+"v2/txns/hash1/receipts",
			func(req *http.Request) (*http.Response, error) {
				assert.Equal(t, "Bearer secret", req.Header.Get("Authorization"))
				return httpmock.NewStringResponse(200, `{"receipts":[{"receipt_tree":{"receipt_id":"r1","predecessor_account_id":"alice.near","receiver_account_id":"bob.near","receipts":[]}}]}`), nil
			})

		res, err := client.GetReceipts(context.Background(), "hash1")
		assert.Nil(t, err)
		assert.Equal(t, "r1", res.Root().ReceiptId)
	})
	t.Run("Fungible token metadata", func(t *testing.T) {
		client, mock := setup(t, 3)
		mock.RegisterResponder("GET", baseUrl+"v1/fts/usdt.near",
			httpmock.NewStringResponder(200, `{"contracts":[{"contract":"usdt.near","name":"Tether USD","symbol":"USDt","decimals":6,"price":"1.00","onchain_market_cap":"100","volume_24h":"5","icon":"data:x"}]}`))

		meta, err := client.GetFtMeta(context.Background(), "usdt.near")
		assert.Nil(t, err)
		assert.Equal(t, "USDt", meta.Symbol)
		assert.Equal(t, int64(6), meta.Decimals.OrZero().IntPart())
		assert.Equal(t, "1.00", meta.Price.String())
		assert.Equal(t, "data:x", *meta.Icon)
	})
	t.Run("Unknown contract is nil without error", func(t *testing.T) {
		client, mock := setup(t, 3)
		mock.RegisterResponder("GET", baseUrl+"v1/fts/nobody.near",
			httpmock.NewStringResponder(200, `{"contracts":[]}`))

		meta, err := client.GetFtMeta(context.Background(), "nobody.near")
		assert.Nil(t, err)
		assert.Nil(t, meta)
	})
	t.Run("Multi token metadata", func(t *testing.T) {
		client, mock := setup(t, 3)
		mock.RegisterResponder("GET", baseUrl+"v2/mts/contract/intents.near/nep141:wrap.near",
			httpmock.NewStringResponder(200, `{"contracts":[{"base":{"name":"Wrapped NEAR","symbol":"wNEAR","decimals":24},"token":{"description":"d","media":"m"}}]}`))

		meta, err := client.GetMtMeta(context.Background(), "intents.near", "nep141:wrap.near")
		assert.Nil(t, err)
		assert.Equal(t, "wNEAR", meta.Base.Symbol)
		assert.Equal(t, "m", *meta.Token.Media)
	})
	t.Run("Retries server errors then succeeds", func(t *testing.T) {
		client, mock := setup(t, 3)
		mock.RegisterResponder("GET", baseUrl+"v1/nfts/paras.near",
			httpmock.NewStringResponder(502, "bad gateway").
				Then(httpmock.NewStringResponder(200, `{"contracts":[{"contract":"paras.near","name":"Paras","symbol":"PARAS"}]}`)))

		meta, err := client.GetNftMeta(context.Background(), "paras.near")
		assert.Nil(t, err)
		assert.Equal(t, "Paras", meta.Name)
		assert.Equal(t, 2, mock.GetCallCountInfo()["GET "+baseUrl+"v1/nfts/paras.near"])
	})
	t.Run("Honors Retry-After on 429", func(t *testing.T) {
		client, mock := setup(t, 3)
		limited := func(req *http.Request) (*http.Response, error) {
			resp := httpmock.NewStringResponse(429, "slow down")
			resp.Header.Set("Retry-After", "1")
			return resp, nil
		}
		mock.RegisterResponder("GET", baseUrl+"v1/fts/wrap.near",
			httpmock.Responder(limited).Then(httpmock.NewStringResponder(200, `{"contracts":[{"symbol":"wNEAR"}]}`)))

		meta, err := client.GetFtMeta(context.Background(), "wrap.near")
		assert.Nil(t, err)
		assert.Equal(t, "wNEAR", meta.Symbol)
	})
	t.Run("Gives up after the configured attempts", func(t *testing.T) {
		client, mock := setup(t, 3)
		mock.RegisterResponder("GET", baseUrl+"v1/fts/down.near", httpmock.NewStringResponder(503, "down"))

		meta, err := client.GetFtMeta(context.Background(), "down.near")
		assert.Nil(t, meta)
		var apiErr *ApiError
		assert.True(t, errors.As(err, &apiErr))
		assert.Equal(t, 503, apiErr.Status)
		assert.Equal(t, 3, mock.GetCallCountInfo()["GET "+baseUrl+"v1/fts/down.near"])
	})
	t.Run("Client errors are not retried", func(t *testing.T) {
		client, mock := setup(t, 3)
		mock.RegisterResponder("GET", baseUrl+"v1/fts/missing.near", httpmock.NewStringResponder(404, "not found"))

		_, err := client.GetFtMeta(context.Background(), "missing.near")
		assert.True(t, IsNotFound(err))
		assert.Equal(t, 1, mock.GetCallCountInfo()["GET "+baseUrl+"v1/fts/missing.near"])
	})
	t.Run("Each attempt is bounded by the timeout", func(t *testing.T) {
		client, mock := setup(t, 2)
		mock.RegisterResponder("GET", baseUrl+"v1/fts/slow.near",
			func(req *http.Request) (*http.Response, error) {
				<-req.Context().Done()
				return nil, req.Context().Err()
			})

		_, err := client.GetFtMeta(context.Background(), "slow.near")
		var apiErr *ApiError
		assert.True(t, errors.As(err, &apiErr))
		assert.Equal(t, 0, apiErr.Status)
		assert.Equal(t, 2, mock.GetCallCountInfo()["GET "+baseUrl+"v1/fts/slow.near"])
	})
	t.Run("Undecodable bodies are an ApiError", func(t *testing.T) {
		client, mock := setup(t, 1)
		mock.RegisterResponder("GET", baseUrl+"v2/txns/bad/receipts", httpmock.NewStringResponder(200, `{"receipts":`))

		res, err := client.GetReceipts(context.Background(), "bad")
		assert.Nil(t, res)
		assert.NotNil(t, err)
	})
}

func Test_ParseRetryAfter(t *testing.T) {
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	assert.Equal(t, 2*time.Second, parseRetryAfter("2", now))
	assert.Equal(t, time.Duration(0), parseRetryAfter("", now))
	assert.Equal(t, time.Duration(0), parseRetryAfter("-1", now))
	assert.Equal(t, 5*time.Second, parseRetryAfter("Mon, 01 Jan 2024 00:00:05 GMT", now))
	assert.Equal(t, time.Duration(0), parseRetryAfter("garbage", now))
}
