// Package nearRpc is a JSON-RPC client for NEAR nodes that fails over across
// an ordered list of providers.
package nearRpc

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/nearblocks/txns-action/internal/config"
	"github.com/nearblocks/txns-action/pkg/metrics"
	"github.com/nearblocks/txns-action/pkg/metrics/metricsTypes"
	"github.com/nearblocks/txns-action/pkg/nearTypes"
	"github.com/pkg/errors"
	"go.uber.org/multierr"
	"go.uber.org/zap"
)

type NearRpcClientConfig struct {
	Urls    []string
	Timeout time.Duration
}

func ConvertGlobalConfigToNearRpcConfig(cfg *config.RpcConfig) *NearRpcClientConfig {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &NearRpcClientConfig{
		Urls:    cfg.Urls,
		Timeout: timeout,
	}
}

type RpcRequest struct {
	JSONRPC string      `json:"jsonrpc"`
	Method  string      `json:"method"`
	Params  interface{} `json:"params"`
	ID      string      `json:"id"`
}

type RpcResponse struct {
	JSONRPC string          `json:"jsonrpc"`
	Result  json.RawMessage `json:"result"`
	Error   *RpcError       `json:"error"`
	ID      json.RawMessage `json:"id"`
}

type Client struct {
	config     *NearRpcClientConfig
	httpClient *http.Client
	metrics    *metrics.MetricsSink
	logger     *zap.Logger
	requestId  atomic.Uint64
}

func NewClient(cfg *NearRpcClientConfig, ms *metrics.MetricsSink, l *zap.Logger) *Client {
	return &Client{
		config:     cfg,
		httpClient: &http.Client{},
		metrics:    ms,
		logger:     l,
	}
}

func (c *Client) SetHttpClient(client *http.Client) {
	c.httpClient = client
}

// Call tries every provider in order, once each, and decodes the first
// successful result into result.
func (c *Client) Call(ctx context.Context, method string, params interface{}, result interface{}) error {
	if len(c.config.Urls) == 0 {
		return errors.Wrap(ErrAllProvidersFailed, "no rpc providers configured")
	}

	var errs error
	for i, url := range c.config.Urls {
		raw, err := c.callProvider(ctx, url, method, params)
		if err == nil {
			if err := nearTypes.UnmarshalUseNumber(raw, result); err != nil {
				return errors.Wrapf(err, "failed to decode %s result", method)
			}
			return nil
		}
		errs = multierr.Append(errs, errors.Wrapf(err, "provider %s", url))

		if ctx.Err() != nil {
			break
		}
		if i < len(c.config.Urls)-1 {
			c.logger.Sugar().Warnw("RPC provider failed, trying next provider",
				zap.String("provider", url),
				zap.String("method", method),
				zap.Error(err),
			)
			_ = c.metrics.Incr(metricsTypes.Metric_Incr_RpcFailover, []metricsTypes.MetricsLabel{
				{Name: "provider", Value: url},
				{Name: "method", Value: method},
			}, 1)
		}
	}
	return errors.Wrap(multierr.Append(ErrAllProvidersFailed, errs), method)
}

func (c *Client) callProvider(ctx context.Context, url string, method string, params interface{}) (json.RawMessage, error) {
	payload, err := json.Marshal(RpcRequest{
		JSONRPC: "2.0",
		Method:  method,
		Params:  params,
		ID:      fmt.Sprintf("%d", c.requestId.Add(1)),
	})
	if err != nil {
		return nil, errors.Wrap(err, "failed to marshal request")
	}

	attemptCtx, cancel := context.WithTimeout(ctx, c.config.Timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(attemptCtx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return nil, errors.Wrap(err, "failed to create request")
	}
	req.Header.Set("Content-Type", "application/json")

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	_ = c.metrics.Timing(metricsTypes.Metric_Timing_UpstreamDuration, time.Since(start), []metricsTypes.MetricsLabel{
		{Name: "upstream", Value: "rpc"},
		{Name: "endpoint", Value: method},
	})
	if err != nil {
		return nil, errors.Wrap(err, "failed to make request")
	}
	defer resp.Body.Close()

	_ = c.metrics.Incr(metricsTypes.Metric_Incr_UpstreamRequest, []metricsTypes.MetricsLabel{
		{Name: "upstream", Value: "rpc"},
		{Name: "endpoint", Value: method},
		{Name: "status_code", Value: fmt.Sprintf("%d", resp.StatusCode)},
	}, 1)

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, errors.Wrap(err, "failed to read response body")
	}
	if resp.StatusCode != http.StatusOK {
		return nil, errors.Errorf("request failed with status %d: %s", resp.StatusCode, string(body))
	}

	rpcResp := &RpcResponse{}
	if err := json.Unmarshal(body, rpcResp); err != nil {
		return nil, errors.Wrap(err, "failed to unmarshal response")
	}
	if rpcResp.Error != nil {
		return nil, rpcResp.Error
	}
	if len(rpcResp.Result) == 0 || string(rpcResp.Result) == "null" {
		return nil, errors.New("empty result")
	}
	return rpcResp.Result, nil
}
