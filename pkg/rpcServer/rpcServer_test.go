package rpcServer

import (
	"bufio"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/jarcoal/httpmock"
	"github.com/nearblocks/txns-action/internal/tests"
	"github.com/nearblocks/txns-action/pkg/actionParser"
	"github.com/nearblocks/txns-action/pkg/clients/indexer"
	"github.com/nearblocks/txns-action/pkg/clients/nearRpc"
	"github.com/nearblocks/txns-action/pkg/eventBus"
	"github.com/nearblocks/txns-action/pkg/eventBus/eventBusTypes"
	"github.com/nearblocks/txns-action/pkg/eventParser"
	"github.com/nearblocks/txns-action/pkg/logger"
	"github.com/nearblocks/txns-action/pkg/metrics"
	"github.com/nearblocks/txns-action/pkg/nearTypes"
	"github.com/nearblocks/txns-action/pkg/pipeline"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

type fakeParser struct {
	parse func(ctx context.Context, req *pipeline.ParseRequest) (*pipeline.ParseResult, error)
	last  *pipeline.ParseRequest
}

func (f *fakeParser) ParseTransaction(ctx context.Context, req *pipeline.ParseRequest) (*pipeline.ParseResult, error) {
	f.last = req
	return f.parse(ctx, req)
}

func emptyResult(ctx context.Context, req *pipeline.ParseRequest) (*pipeline.ParseResult, error) {
	return &pipeline.ParseResult{}, nil
}

func newTestServer(t *testing.T, tp TransactionParser, eb eventBusTypes.IEventBus) (*RpcServer, *zap.Logger) {
	l, err := logger.NewLogger(&logger.LoggerConfig{Debug: false})
	assert.Nil(t, err)
	return NewRpcServer(&RpcServerConfig{HttpPort: 0}, tp, eb, metrics.NewNoopMetricsSink(), l), l
}

func doRequest(h http.Handler, method string, path string, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]interface{} {
	out := map[string]interface{}{}
	assert.Nil(t, json.Unmarshal(rec.Body.Bytes(), &out))
	return out
}

func Test_Routing(t *testing.T) {
	rpc, _ := newTestServer(t, &fakeParser{parse: emptyResult}, nil)
	h := rpc.Handler()

	t.Run("Health", func(t *testing.T) {
		rec := doRequest(h, http.MethodGet, "/health", "")
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "ok", decodeBody(t, rec)["status"])
	})
	t.Run("Unknown route", func(t *testing.T) {
		rec := doRequest(h, http.MethodGet, "/v1/unknown", "")
		assert.Equal(t, http.StatusNotFound, rec.Code)
		assert.Equal(t, "Not Found", decodeBody(t, rec)["message"])
	})
	t.Run("Wrong method on the txnsaction route", func(t *testing.T) {
		rec := doRequest(h, http.MethodGet, "/v1/txnsaction/abc", "")
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})
	t.Run("Stream is not routed without an event bus", func(t *testing.T) {
		rec := doRequest(h, http.MethodGet, "/v1/txnsaction/stream", "")
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})
}

const minimalTxn = `{"transaction_hash":"abc","signer_account_id":"alice.near","block":{"block_height":150000000}}`

func Test_TxnsActionValidation(t *testing.T) {
	parser := &fakeParser{parse: emptyResult}
	rpc, _ := newTestServer(t, parser, nil)
	h := rpc.Handler()

	t.Run("Missing txns", func(t *testing.T) {
		rec := doRequest(h, http.MethodPost, "/v1/txnsaction/abc", `{}`)
		assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
		body := decodeBody(t, rec)
		assert.Equal(t, "Validation Error", body["message"])
		assert.Contains(t, body["errors"], "txns")
	})
	t.Run("Invalid JSON", func(t *testing.T) {
		rec := doRequest(h, http.MethodPost, "/v1/txnsaction/abc", `{"txns":`)
		assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
		assert.Contains(t, decodeBody(t, rec)["errors"], "_error")
	})
	t.Run("txns must be an object", func(t *testing.T) {
		rec := doRequest(h, http.MethodPost, "/v1/txnsaction/abc", `{"txns":[1,2]}`)
		assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
		assert.Contains(t, decodeBody(t, rec)["errors"], "txns")
	})
	t.Run("Receipts must be an object when given", func(t *testing.T) {
		rec := doRequest(h, http.MethodPost, "/v1/txnsaction/abc", `{"txns":`+minimalTxn+`,"receipts":"nope"}`)
		assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
		assert.Contains(t, decodeBody(t, rec)["errors"], "receipts")
	})
	t.Run("transaction is accepted as an alias", func(t *testing.T) {
		rec := doRequest(h, http.MethodPost, "/v1/txnsaction/abc", `{"transaction":`+minimalTxn+`}`)
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "abc", parser.last.TxnHash)
		assert.Equal(t, "alice.near", parser.last.Transaction.SignerAccountId)
		assert.Nil(t, parser.last.Receipts)
	})
	t.Run("Receipts are passed through", func(t *testing.T) {
		rec := doRequest(h, http.MethodPost, "/v1/txnsaction/abc", `{"txns":`+minimalTxn+`,"receipts":{"receipts":[]}}`)
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.NotNil(t, parser.last.Receipts)
	})
	t.Run("Empty result answers an empty list", func(t *testing.T) {
		rec := doRequest(h, http.MethodPost, "/v1/txnsaction/abc", `{"txns":`+minimalTxn+`}`)
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.JSONEq(t, `{"Actions":[]}`, rec.Body.String())
		assert.Equal(t, uint64(150000000), parser.last.Transaction.Block.BlockHeight)
	})
	t.Run("Block height is required", func(t *testing.T) {
		bodies := []string{
			`{"txns":{"transaction_hash":"abc"}}`,
			`{"txns":{"transaction_hash":"abc","block":{}}}`,
			`{"txns":{"transaction_hash":"abc","block":{"block_height":0}}}`,
			`{"txns":{"transaction_hash":"abc","block":{"block_height":"150000000"}}}`,
			`{"txns":{"transaction_hash":"abc","block":{"block_height":-1}}}`,
			`{"transaction":{"transaction_hash":"abc"}}`,
		}
		for _, body := range bodies {
			parser.last = nil
			rec := doRequest(h, http.MethodPost, "/v1/txnsaction/abc", body)
			assert.Equal(t, http.StatusUnprocessableEntity, rec.Code, body)
			assert.Contains(t, decodeBody(t, rec)["errors"], "txns", body)
			assert.Nil(t, parser.last, body)
		}
	})
}

func Test_Errors(t *testing.T) {
	t.Run("Panics answer a generic 500", func(t *testing.T) {
		rpc, _ := newTestServer(t, &fakeParser{parse: func(ctx context.Context, req *pipeline.ParseRequest) (*pipeline.ParseResult, error) {
			panic("secret internal detail")
		}}, nil)

		rec := doRequest(rpc.Handler(), http.MethodPost, "/v1/txnsaction/abc", `{"txns":`+minimalTxn+`}`)
		assert.Equal(t, http.StatusInternalServerError, rec.Code)
		assert.JSONEq(t, `{"message":"Server Error"}`, rec.Body.String())
		assert.NotContains(t, rec.Body.String(), "secret")
		assert.NotEmpty(t, rec.Header().Get(RequestIdHeader))
	})
	t.Run("Pipeline errors answer a generic 500", func(t *testing.T) {
		rpc, _ := newTestServer(t, &fakeParser{parse: func(ctx context.Context, req *pipeline.ParseRequest) (*pipeline.ParseResult, error) {
			return nil, context.Canceled
		}}, nil)

		rec := doRequest(rpc.Handler(), http.MethodPost, "/v1/txnsaction/abc", `{"txns":`+minimalTxn+`}`)
		assert.Equal(t, http.StatusInternalServerError, rec.Code)
		assert.JSONEq(t, `{"message":"Server Error"}`, rec.Body.String())
	})
	t.Run("Incoming request ids are kept", func(t *testing.T) {
		rpc, _ := newTestServer(t, &fakeParser{parse: emptyResult}, nil)
		req := httptest.NewRequest(http.MethodGet, "/health", nil)
		req.Header.Set(RequestIdHeader, "7d3c6a2e-8c1f-4b8e-9f43-2b1d7e0c5a11")
		rec := httptest.NewRecorder()
		rpc.Handler().ServeHTTP(rec, req)
		assert.Equal(t, "7d3c6a2e-8c1f-4b8e-9f43-2b1d7e0c5a11", rec.Header().Get(RequestIdHeader))
	})
}

func Test_TxnsActionEndToEnd(t *testing.T) {
	l, err := logger.NewLogger(&logger.LoggerConfig{Debug: false})
	assert.Nil(t, err)

	cfg := tests.GetConfig()
	ms := metrics.NewNoopMetricsSink()
	mock := httpmock.NewMockTransport()

	indexerCfg := indexer.ConvertGlobalConfigToIndexerConfig(&cfg.ApiConfig)
	indexerCfg.Retries = 1
	indexerClient := indexer.NewClient(indexerCfg, ms, l)
	indexerClient.SetHttpClient(&http.Client{Transport: mock})
	rpcClient := nearRpc.NewClient(nearRpc.ConvertGlobalConfigToNearRpcConfig(&cfg.RpcConfig), ms, l)
	rpcClient.SetHttpClient(&http.Client{Transport: mock})

	txnJson, err := tests.ReadFixture("ftTransferTxn.json")
	assert.Nil(t, err)
	receipts, err := tests.ReadFixture("ftTransferReceipts.json")
	assert.Nil(t, err)
	txn := &nearTypes.ApiTransaction{}
	assert.Nil(t, nearTypes.UnmarshalUseNumber(txnJson, txn))

	mock.RegisterResponder("GET", tests.TestApiUrl+"v2/txns/"+txn.TransactionHash+"/receipts", httpmock.NewBytesResponder(200, receipts))
	mock.RegisterResponder("GET", tests.TestApiUrl+"v1/fts/usdt.near",
		httpmock.NewStringResponder(200, `{"contracts":[{"name":"Tether USD","symbol":"USDt","decimals":6,"price":"1.00"}]}`))

	eb := eventBus.NewEventBus(l)
	p := pipeline.NewPipelineFromConfig(cfg, indexerClient, rpcClient, ms, eb, l)
	rpc := NewRpcServer(&RpcServerConfig{}, p, eb, ms, l)
	h := rpc.Handler()

	body := `{"txns":` + string(txnJson) + `}`
	first := doRequest(h, http.MethodPost, "/v1/txnsaction/"+txn.TransactionHash, body)
	second := doRequest(h, http.MethodPost, "/v1/txnsaction/"+txn.TransactionHash, body)

	t.Run("Actions are rendered", func(t *testing.T) {
		assert.Equal(t, http.StatusOK, first.Code)
		out := struct {
			Actions []map[string]interface{} `json:"Actions"`
		}{}
		assert.Nil(t, json.Unmarshal(first.Body.Bytes(), &out))
		assert.Len(t, out.Actions, 2)
		assert.Equal(t, "function_call", out.Actions[0]["type"])
		assert.Equal(t, "transfer", out.Actions[1]["type"])
		token := out.Actions[1]["token"].(map[string]interface{})
		assert.Equal(t, "USDt", token["symbol"])
	})
	t.Run("Identical input gives identical output", func(t *testing.T) {
		assert.Equal(t, first.Body.String(), second.Body.String())
	})
}

// readFirstEvent opens the stream at path, publishes data until an event comes
// through and returns the first payload.
func readFirstEvent(t *testing.T, path string, data *eventBusTypes.TransactionParsedData) map[string]interface{} {
	l, err := logger.NewLogger(&logger.LoggerConfig{Debug: false})
	assert.Nil(t, err)
	eb := eventBus.NewEventBus(l)
	rpc := NewRpcServer(&RpcServerConfig{}, &fakeParser{parse: emptyResult}, eb, metrics.NewNoopMetricsSink(), l)

	server := httptest.NewServer(rpc.Handler())
	defer server.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, server.URL+path, nil)
	assert.Nil(t, err)
	res, err := http.DefaultClient.Do(req)
	assert.Nil(t, err)
	defer res.Body.Close()
	assert.Equal(t, "text/event-stream", res.Header.Get("Content-Type"))

	// the subscription starts after the headers are flushed, so keep publishing
	// until the first event comes through
	go func() {
		ticker := time.NewTicker(10 * time.Millisecond)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				eb.Publish(&eventBusTypes.Event{
					Name: eventBusTypes.Event_TransactionParsed,
					Data: data,
				})
			}
		}
	}()

	scanner := bufio.NewScanner(res.Body)
	var line string
	for scanner.Scan() {
		if strings.HasPrefix(scanner.Text(), "data: ") {
			line = strings.TrimPrefix(scanner.Text(), "data: ")
			break
		}
	}
	cancel()

	out := map[string]interface{}{}
	assert.Nil(t, json.Unmarshal([]byte(line), &out))
	return out
}

func Test_Stream(t *testing.T) {
	actions := []nearTypes.ParsedAction{
		&actionParser.BaseAction{Type: "function_call", From: "alice.near", To: "usdt.near"},
		&eventParser.TokenEvent{Type: "transfer", Contract: "usdt.near", Sender: "alice.near", Recipient: "bob.near", Amount: "10"},
	}

	t.Run("Streams parsed transactions", func(t *testing.T) {
		out := readFirstEvent(t, "/v1/txnsaction/stream", &eventBusTypes.TransactionParsedData{
			TxnHash: "abc", Source: "api", BlockHeight: 1, Actions: actions,
		})
		assert.Equal(t, "abc", out["txnHash"])
		assert.Equal(t, "api", out["source"])
		assert.Len(t, out["Actions"], 2)
	})
	t.Run("Filter keeps matching actions", func(t *testing.T) {
		filter := url.QueryEscape(`{"type":"condition","field":"type","value":"transfer"}`)
		out := readFirstEvent(t, "/v1/txnsaction/stream?filter="+filter, &eventBusTypes.TransactionParsedData{
			TxnHash: "abc", Source: "rpc", BlockHeight: 1, Actions: actions,
		})
		list := out["Actions"].([]interface{})
		assert.Len(t, list, 1)
		assert.Equal(t, "transfer", list[0].(map[string]interface{})["type"])
	})
	t.Run("Invalid filter", func(t *testing.T) {
		l, err := logger.NewLogger(&logger.LoggerConfig{Debug: false})
		assert.Nil(t, err)
		rpc := NewRpcServer(&RpcServerConfig{}, &fakeParser{parse: emptyResult}, eventBus.NewEventBus(l), metrics.NewNoopMetricsSink(), l)

		filter := url.QueryEscape(`{"type":"xor"}`)
		rec := doRequest(rpc.Handler(), http.MethodGet, "/v1/txnsaction/stream?filter="+filter, "")
		assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
		body := decodeBody(t, rec)
		assert.Equal(t, "Validation Error", body["message"])
		assert.Contains(t, body["errors"], "filter")
	})
}

type recordingBus struct {
	*eventBus.EventBus
	mu         sync.Mutex
	subscribed []*eventBusTypes.Consumer
}

func (b *recordingBus) Subscribe(consumer *eventBusTypes.Consumer) {
	b.mu.Lock()
	b.subscribed = append(b.subscribed, consumer)
	b.mu.Unlock()
	b.EventBus.Subscribe(consumer)
}

func (b *recordingBus) consumers() []*eventBusTypes.Consumer {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]*eventBusTypes.Consumer{}, b.subscribed...)
}

func Test_SubscriptionsShareRequestId(t *testing.T) {
	l, err := logger.NewLogger(&logger.LoggerConfig{Debug: false})
	assert.Nil(t, err)
	bus := &recordingBus{EventBus: eventBus.NewEventBus(l)}
	rpc := NewRpcServer(&RpcServerConfig{}, &fakeParser{parse: emptyResult}, bus, metrics.NewNoopMetricsSink(), l)

	requestId := "7d3c6a2e-8c1f-4b8e-9f43-2b1d7e0c5a11"
	firstCtx, cancelFirst := context.WithCancel(context.Background())
	secondCtx, cancelSecond := context.WithCancel(context.Background())
	defer cancelSecond()

	firstDone := make(chan struct{})
	go func() {
		defer close(firstDone)
		_ = rpc.subscribeToTransactions(firstCtx, requestId, func(*eventBusTypes.TransactionParsedData) error { return nil })
	}()
	received := make(chan string, 1)
	go func() {
		_ = rpc.subscribeToTransactions(secondCtx, requestId, func(data *eventBusTypes.TransactionParsedData) error {
			select {
			case received <- data.TxnHash:
			default:
			}
			return nil
		})
	}()

	assert.Eventually(t, func() bool { return len(bus.consumers()) == 2 }, 2*time.Second, 10*time.Millisecond)
	consumers := bus.consumers()
	assert.NotEqual(t, consumers[0].Id, consumers[1].Id)
	assert.NotEqual(t, eventBusTypes.ConsumerId(requestId), consumers[0].Id)

	cancelFirst()
	<-firstDone

	bus.Publish(&eventBusTypes.Event{
		Name: eventBusTypes.Event_TransactionParsed,
		Data: &eventBusTypes.TransactionParsedData{TxnHash: "abc"},
	})
	select {
	case hash := <-received:
		assert.Equal(t, "abc", hash)
	case <-time.After(2 * time.Second):
		t.Fatal("second subscription stopped receiving after the first ended")
	}
}
