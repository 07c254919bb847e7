// Package metrics fans metric writes out to every configured backend.
package metrics

import (
	"time"

	"github.com/nearblocks/txns-action/internal/config"
	"github.com/nearblocks/txns-action/pkg/metrics/dogstatsd"
	"github.com/nearblocks/txns-action/pkg/metrics/metricsTypes"
	"github.com/nearblocks/txns-action/pkg/metrics/prometheus"
	"go.uber.org/multierr"
	"go.uber.org/zap"
)

type MetricsSinkConfig struct {
	DefaultLabels []metricsTypes.MetricsLabel
}

type MetricsSink struct {
	config  *MetricsSinkConfig
	clients []metricsTypes.IMetricsClient
}

func NewMetricsSink(cfg *MetricsSinkConfig, clients []metricsTypes.IMetricsClient) (*MetricsSink, error) {
	if cfg == nil {
		cfg = &MetricsSinkConfig{}
	}
	return &MetricsSink{
		config:  cfg,
		clients: clients,
	}, nil
}

// NewNoopMetricsSink records nothing. Useful for tests and the offline CLI.
func NewNoopMetricsSink() *MetricsSink {
	sink, _ := NewMetricsSink(nil, nil)
	return sink
}

func (ms *MetricsSink) withDefaults(labels []metricsTypes.MetricsLabel) []metricsTypes.MetricsLabel {
	if len(ms.config.DefaultLabels) == 0 {
		return labels
	}
	out := make([]metricsTypes.MetricsLabel, 0, len(labels)+len(ms.config.DefaultLabels))
	out = append(out, ms.config.DefaultLabels...)
	return append(out, labels...)
}

func (ms *MetricsSink) Incr(name string, labels []metricsTypes.MetricsLabel, value float64) error {
	var err error
	for _, client := range ms.clients {
		err = multierr.Append(err, client.Incr(name, ms.withDefaults(labels), value))
	}
	return err
}

func (ms *MetricsSink) Gauge(name string, value float64, labels []metricsTypes.MetricsLabel) error {
	var err error
	for _, client := range ms.clients {
		err = multierr.Append(err, client.Gauge(name, value, ms.withDefaults(labels)))
	}
	return err
}

func (ms *MetricsSink) Timing(name string, value time.Duration, labels []metricsTypes.MetricsLabel) error {
	var err error
	for _, client := range ms.clients {
		err = multierr.Append(err, client.Timing(name, value, ms.withDefaults(labels)))
	}
	return err
}

func (ms *MetricsSink) Flush() {
	for _, client := range ms.clients {
		client.Flush()
	}
}

// InitMetricsSinksFromConfig builds the backends enabled in cfg.
func InitMetricsSinksFromConfig(cfg *config.Config, l *zap.Logger) ([]metricsTypes.IMetricsClient, error) {
	clients := make([]metricsTypes.IMetricsClient, 0)

	if cfg.DataDogConfig.StatsdConfig.Enabled {
		dd, err := dogstatsd.NewDogStatsdMetricsClient(cfg.DataDogConfig.StatsdConfig.Url, l)
		if err != nil {
			return nil, err
		}
		clients = append(clients, dd)
		l.Sugar().Infow("DogStatsd metrics enabled", zap.String("url", cfg.DataDogConfig.StatsdConfig.Url))
	}

	if cfg.PrometheusConfig.Enabled {
		pm, err := prometheus.NewPrometheusMetricsClient(&prometheus.PrometheusMetricsConfig{
			Metrics: metricsTypes.MetricTypes,
		}, l)
		if err != nil {
			return nil, err
		}
		clients = append(clients, pm)
		l.Sugar().Infow("Prometheus metrics enabled", zap.Int("port", cfg.PrometheusConfig.Port))
	}

	return clients, nil
}
