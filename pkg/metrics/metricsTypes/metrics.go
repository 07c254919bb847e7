package metricsTypes

import "time"

type IMetricsClient interface {
	Incr(name string, labels []MetricsLabel, value float64) error
	Gauge(name string, value float64, labels []MetricsLabel) error
	Timing(name string, value time.Duration, labels []MetricsLabel) error
	Flush()
}

type MetricsLabel struct {
	Name  string
	Value string
}

type MetricsType string

var (
	MetricsType_Incr   MetricsType = "incr"
	MetricsType_Gauge  MetricsType = "gauge"
	MetricsType_Timing MetricsType = "timing"
)

type MetricsTypeConfig struct {
	Name   string
	Labels []string
}

var (
	Metric_Incr_HttpRequest        = "http.request"
	Metric_Incr_UpstreamRequest    = "upstream.request"
	Metric_Incr_UpstreamRetry      = "upstream.retry"
	Metric_Incr_RpcFailover        = "rpc.failover"
	Metric_Incr_RpcCacheHit        = "rpc.cache.hit"
	Metric_Incr_TokenMetadataFetch = "tokenMetadata.fetch"
	Metric_Incr_SourceSelected     = "pipeline.source"
	Metric_Incr_ActionsParsed      = "pipeline.actions"

	Metric_Gauge_TokenMetadataKeys = "tokenMetadata.keys"

	Metric_Timing_HttpDuration     = "http.duration"
	Metric_Timing_UpstreamDuration = "upstream.duration"
	Metric_Timing_PipelineDuration = "pipeline.duration"
)

var MetricTypes = map[MetricsType][]MetricsTypeConfig{
	MetricsType_Incr: {
		MetricsTypeConfig{
			Name: Metric_Incr_HttpRequest,
			Labels: []string{
				"method",
				"pattern",
				"status_code",
			},
		},
		MetricsTypeConfig{
			Name: Metric_Incr_UpstreamRequest,
			Labels: []string{
				"upstream",
				"endpoint",
				"status_code",
			},
		},
		MetricsTypeConfig{
			Name: Metric_Incr_UpstreamRetry,
			Labels: []string{
				"upstream",
				"endpoint",
			},
		},
		MetricsTypeConfig{
			Name: Metric_Incr_RpcFailover,
			Labels: []string{
				"provider",
				"method",
			},
		},
		MetricsTypeConfig{
			Name: Metric_Incr_RpcCacheHit,
			Labels: []string{
				"method",
			},
		},
		MetricsTypeConfig{
			Name: Metric_Incr_TokenMetadataFetch,
			Labels: []string{
				"kind",
				"status",
			},
		},
		MetricsTypeConfig{
			Name: Metric_Incr_SourceSelected,
			Labels: []string{
				"source",
			},
		},
		MetricsTypeConfig{
			Name: Metric_Incr_ActionsParsed,
			Labels: []string{
				"origin",
			},
		},
	},
	MetricsType_Gauge: {
		MetricsTypeConfig{
			Name:   Metric_Gauge_TokenMetadataKeys,
			Labels: []string{},
		},
	},
	MetricsType_Timing: {
		MetricsTypeConfig{
			Name: Metric_Timing_HttpDuration,
			Labels: []string{
				"method",
				"pattern",
				"status_code",
			},
		},
		MetricsTypeConfig{
			Name: Metric_Timing_UpstreamDuration,
			Labels: []string{
				"upstream",
				"endpoint",
			},
		},
		MetricsTypeConfig{
			Name: Metric_Timing_PipelineDuration,
			Labels: []string{
				"source",
				"hasError",
			},
		},
	},
}
