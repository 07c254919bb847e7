// Package indexer is the client for the nearblocks indexer REST API.
package indexer

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/nearblocks/txns-action/internal/config"
	"github.com/nearblocks/txns-action/pkg/metrics"
	"github.com/nearblocks/txns-action/pkg/metrics/metricsTypes"
	"github.com/nearblocks/txns-action/pkg/nearTypes"
	"github.com/pkg/errors"
	"go.uber.org/zap"
)

const (
	Endpoint_Receipts = "receipts"
	Endpoint_Fts      = "fts"
	Endpoint_Mts      = "mts"
	Endpoint_Nfts     = "nfts"
)

type IndexerClientConfig struct {
	BaseUrl   string
	AccessKey string

	// Timeout bounds a single attempt.
	Timeout time.Duration
	// Retries is the total number of attempts.
	Retries         int
	InitialInterval time.Duration
	MaxRetryAfter   time.Duration
}

func DefaultIndexerClientConfig() *IndexerClientConfig {
	return &IndexerClientConfig{
		Timeout:         10 * time.Second,
		Retries:         3,
		InitialInterval: 500 * time.Millisecond,
		MaxRetryAfter:   30 * time.Second,
	}
}

func ConvertGlobalConfigToIndexerConfig(cfg *config.ApiConfig) *IndexerClientConfig {
	c := DefaultIndexerClientConfig()
	c.BaseUrl = cfg.Url
	c.AccessKey = cfg.AccessKey
	if cfg.Timeout > 0 {
		c.Timeout = cfg.Timeout
	}
	if cfg.Retries > 0 {
		c.Retries = cfg.Retries
	}
	return c
}

type Client struct {
	config     *IndexerClientConfig
	httpClient *http.Client
	metrics    *metrics.MetricsSink
	logger     *zap.Logger
}

func NewClient(cfg *IndexerClientConfig, ms *metrics.MetricsSink, l *zap.Logger) *Client {
	if !strings.HasSuffix(cfg.BaseUrl, "/") {
		cfg.BaseUrl += "/"
	}
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

// GetReceipts fetches the receipt tree of a transaction.
func (c *Client) GetReceipts(ctx context.Context, hash string) (*nearTypes.ReceiptApiResponse, error) {
	res := &nearTypes.ReceiptApiResponse{}
	path := fmt.Sprintf("v2/txns/%s/receipts", url.PathEscape(hash))
	if err := c.get(ctx, Endpoint_Receipts, path, res); err != nil {
		return nil, err
	}
	return res, nil
}

// GetFtMeta returns the fungible token metadata of a contract, or nil when the
// indexer does not know it.
func (c *Client) GetFtMeta(ctx context.Context, contract string) (*FtContract, error) {
	res := &FtResponse{}
	path := fmt.Sprintf("v1/fts/%s", url.PathEscape(contract))
	if err := c.get(ctx, Endpoint_Fts, path, res); err != nil {
		return nil, err
	}
	if len(res.Contracts) == 0 {
		return nil, nil
	}
	return &res.Contracts[0], nil
}

// GetMtMeta returns the metadata of one token of a multi-token contract.
func (c *Client) GetMtMeta(ctx context.Context, contract string, tokenId string) (*MtContract, error) {
	res := &MtResponse{}
	path := fmt.Sprintf("v2/mts/contract/%s/%s", url.PathEscape(contract), url.PathEscape(tokenId))
	if err := c.get(ctx, Endpoint_Mts, path, res); err != nil {
		return nil, err
	}
	if len(res.Contracts) == 0 {
		return nil, nil
	}
	return &res.Contracts[0], nil
}

// GetNftMeta returns the metadata of an NFT contract.
func (c *Client) GetNftMeta(ctx context.Context, contract string) (*NftContract, error) {
	res := &NftResponse{}
	path := fmt.Sprintf("v1/nfts/%s", url.PathEscape(contract))
	if err := c.get(ctx, Endpoint_Nfts, path, res); err != nil {
		return nil, err
	}
	if len(res.Contracts) == 0 {
		return nil, nil
	}
	return &res.Contracts[0], nil
}

func (c *Client) newBackOff() *retryAfterBackOff {
	exp := backoff.NewExponentialBackOff()
	exp.InitialInterval = c.config.InitialInterval
	exp.MaxElapsedTime = 0

	retries := c.config.Retries - 1
	if retries < 0 {
		retries = 0
	}
	return newRetryAfterBackOff(backoff.WithMaxRetries(exp, uint64(retries)), c.config.MaxRetryAfter)
}

// get performs a GET with retries and decodes the JSON body into v. Network
// errors, timeouts, 5xx and 429 responses are retried; other statuses fail
// immediately.
func (c *Client) get(ctx context.Context, endpoint string, path string, v interface{}) error {
	fullUrl := c.config.BaseUrl + path

	var body []byte
	lastStatus := 0
	b := c.newBackOff()

	operation := func() error {
		status, data, header, err := c.doRequest(ctx, endpoint, fullUrl)
		lastStatus = status
		if err != nil {
			if ctx.Err() != nil {
				return backoff.Permanent(err)
			}
			return err
		}

		switch {
		case status >= 200 && status < 300:
			body = data
			return nil
		case status == http.StatusTooManyRequests:
			b.setRetryAfter(parseRetryAfter(header.Get("Retry-After"), time.Now()))
			return &statusError{status: status, body: string(data)}
		case status >= 500:
			return &statusError{status: status, body: string(data)}
		default:
			return backoff.Permanent(&statusError{status: status, body: string(data)})
		}
	}

	notify := func(err error, next time.Duration) {
		c.logger.Sugar().Debugw("Retrying indexer request",
			zap.String("url", fullUrl),
			zap.Duration("backoff", next),
			zap.Error(err),
		)
		_ = c.metrics.Incr(metricsTypes.Metric_Incr_UpstreamRetry, []metricsTypes.MetricsLabel{
			{Name: "upstream", Value: "indexer"},
			{Name: "endpoint", Value: endpoint},
		}, 1)
	}

	if err := backoff.RetryNotify(operation, backoff.WithContext(b, ctx), notify); err != nil {
		c.logger.Sugar().Warnw("Indexer request failed",
			zap.String("url", fullUrl),
			zap.Int("status", lastStatus),
			zap.Error(err),
		)
		return &ApiError{
			Message: fmt.Sprintf("Failed to fetch %s", path),
			Status:  lastStatus,
			Err:     err,
		}
	}

	if err := nearTypes.UnmarshalUseNumber(body, v); err != nil {
		return &ApiError{
			Message: fmt.Sprintf("Failed to decode %s", path),
			Status:  lastStatus,
			Err:     errors.Wrap(err, "failed to unmarshal response"),
		}
	}
	return nil
}

func (c *Client) doRequest(ctx context.Context, endpoint string, fullUrl string) (int, []byte, http.Header, error) {
	attemptCtx, cancel := context.WithTimeout(ctx, c.config.Timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(attemptCtx, http.MethodGet, fullUrl, nil)
	if err != nil {
		return 0, nil, nil, backoff.Permanent(errors.Wrap(err, "failed to create request"))
	}
	req.Header.Set("accept", "application/json")
	if c.config.AccessKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.config.AccessKey)
	}

	c.logger.Sugar().Debugw("Making indexer request", zap.String("url", fullUrl))

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	_ = c.metrics.Timing(metricsTypes.Metric_Timing_UpstreamDuration, time.Since(start), []metricsTypes.MetricsLabel{
		{Name: "upstream", Value: "indexer"},
		{Name: "endpoint", Value: endpoint},
	})
	if err != nil {
		return 0, nil, nil, errors.Wrap(err, "failed to make request")
	}
	defer resp.Body.Close()

	_ = c.metrics.Incr(metricsTypes.Metric_Incr_UpstreamRequest, []metricsTypes.MetricsLabel{
		{Name: "upstream", Value: "indexer"},
		{Name: "endpoint", Value: endpoint},
		{Name: "status_code", Value: strconv.Itoa(resp.StatusCode)},
	}, 1)

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return resp.StatusCode, nil, resp.Header, errors.Wrap(err, "failed to read response body")
	}
	return resp.StatusCode, data, resp.Header, nil
}
