package dogstatsd

import (
	"fmt"
	"time"

	"github.com/DataDog/datadog-go/v5/statsd"
	"github.com/nearblocks/txns-action/pkg/metrics/metricsTypes"
	"github.com/nearblocks/txns-action/pkg/utils"
	"go.uber.org/zap"
)

const Namespace = "txns_action."

type DogStatsdMetricsClient struct {
	client statsd.ClientInterface
	logger *zap.Logger
}

func NewDogStatsdMetricsClient(addr string, l *zap.Logger) (*DogStatsdMetricsClient, error) {
	client, err := statsd.New(addr, statsd.WithNamespace(Namespace))
	if err != nil {
		l.Sugar().Errorw("Failed to create statsd client", zap.Error(err))
		return nil, err
	}
	return NewDogStatsdMetricsClientWithStatsd(client, l), nil
}

// NewDogStatsdMetricsClientWithStatsd wraps an existing statsd client.
func NewDogStatsdMetricsClientWithStatsd(client statsd.ClientInterface, l *zap.Logger) *DogStatsdMetricsClient {
	return &DogStatsdMetricsClient{
		client: client,
		logger: l,
	}
}

func formatTags(labels []metricsTypes.MetricsLabel) []string {
	return utils.Map(labels, func(label metricsTypes.MetricsLabel, i uint64) string {
		return fmt.Sprintf("%s:%s", label.Name, label.Value)
	})
}

func (d *DogStatsdMetricsClient) Incr(name string, labels []metricsTypes.MetricsLabel, value float64) error {
	return d.client.Count(name, int64(value), formatTags(labels), 1)
}

func (d *DogStatsdMetricsClient) Gauge(name string, value float64, labels []metricsTypes.MetricsLabel) error {
	return d.client.Gauge(name, value, formatTags(labels), 1)
}

func (d *DogStatsdMetricsClient) Timing(name string, value time.Duration, labels []metricsTypes.MetricsLabel) error {
	return d.client.Timing(name, value, formatTags(labels), 1)
}

func (d *DogStatsdMetricsClient) Flush() {
	if err := d.client.Flush(); err != nil {
		d.logger.Sugar().Warnw("Failed to flush statsd client", zap.Error(err))
	}
}
