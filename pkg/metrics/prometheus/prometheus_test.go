package prometheus

import (
	"testing"
	"time"

	"github.com/nearblocks/txns-action/pkg/logger"
	"github.com/nearblocks/txns-action/pkg/metrics/metricsTypes"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
)

func Test_UnexpectedLabelsParsing(t *testing.T) {
	l, err := logger.NewLogger(&logger.LoggerConfig{Debug: false})
	assert.Nil(t, err)

	pmc, err := NewPrometheusMetricsClient(&PrometheusMetricsConfig{
		Metrics:    metricsTypes.MetricTypes,
		Registerer: prometheus.NewRegistry(),
	}, l)
	assert.Nil(t, err)

	t.Run("Should return no error for all labels", func(t *testing.T) {
		err := pmc.hasUnexpectedLabels(metricsTypes.MetricsType_Timing, metricsTypes.Metric_Timing_PipelineDuration, []metricsTypes.MetricsLabel{
			{Name: "source", Value: "api"},
			{Name: "hasError", Value: "false"},
		})
		assert.Nil(t, err)
	})
	t.Run("Should return no error for a subset labels", func(t *testing.T) {
		err := pmc.hasUnexpectedLabels(metricsTypes.MetricsType_Timing, metricsTypes.Metric_Timing_PipelineDuration, []metricsTypes.MetricsLabel{
			{Name: "source", Value: "rpc"},
		})
		assert.Nil(t, err)
	})
	t.Run("Should return an error for unexpected labels", func(t *testing.T) {
		err := pmc.hasUnexpectedLabels(metricsTypes.MetricsType_Timing, metricsTypes.Metric_Timing_PipelineDuration, []metricsTypes.MetricsLabel{
			{Name: "source", Value: "api"},
			{Name: "hasError", Value: "false"},
			{Name: "unexpectedLabel", Value: "unexpectedValue"},
		})
		assert.NotNil(t, err)
	})
	t.Run("Should return an error for unexpected labels when expecting 0 labels", func(t *testing.T) {
		err := pmc.hasUnexpectedLabels(metricsTypes.MetricsType_Gauge, metricsTypes.Metric_Gauge_TokenMetadataKeys, []metricsTypes.MetricsLabel{
			{Name: "source", Value: "api"},
		})
		assert.NotNil(t, err)
	})
	t.Run("Partial label sets are recorded", func(t *testing.T) {
		assert.Nil(t, pmc.Incr(metricsTypes.Metric_Incr_UpstreamRequest, []metricsTypes.MetricsLabel{
			{Name: "upstream", Value: "indexer"},
		}, 1))
		assert.Nil(t, pmc.Timing(metricsTypes.Metric_Timing_PipelineDuration, 10*time.Millisecond, nil))
	})
	t.Run("Unknown metrics are ignored", func(t *testing.T) {
		assert.Nil(t, pmc.Incr("not.registered", nil, 1))
	})
}

func Test_MetricName(t *testing.T) {
	assert.Equal(t, "tokenMetadata_fetch", MetricName("tokenMetadata.fetch"))
	assert.Equal(t, "upstream_request", MetricName("upstream.request"))
}
