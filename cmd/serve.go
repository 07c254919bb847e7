package cmd

import (
	"time"

	"github.com/nearblocks/txns-action/internal/config"
	"github.com/nearblocks/txns-action/internal/version"
	"github.com/nearblocks/txns-action/pkg/clients/indexer"
	"github.com/nearblocks/txns-action/pkg/clients/nearRpc"
	"github.com/nearblocks/txns-action/pkg/eventBus"
	"github.com/nearblocks/txns-action/pkg/logger"
	"github.com/nearblocks/txns-action/pkg/metrics"
	"github.com/nearblocks/txns-action/pkg/metrics/metricsTypes"
	"github.com/nearblocks/txns-action/pkg/metrics/prometheus"
	"github.com/nearblocks/txns-action/pkg/pipeline"
	"github.com/nearblocks/txns-action/pkg/rpcServer"
	"github.com/nearblocks/txns-action/pkg/shutdown"
	"github.com/nearblocks/txns-action/pkg/tracer"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the txnsaction HTTP API",
	Run: func(cmd *cobra.Command, args []string) {
		bindSubcommandFlags(cmd)
		cfg := config.NewConfig()

		l, _ := logger.NewLogger(&logger.LoggerConfig{
			Debug:  cfg.Debug,
			Format: logger.FormatForNodeEnv(cfg.NodeEnv),
		})
		defer l.Sync() //nolint:errcheck

		if err := cfg.Validate(); err != nil {
			l.Sugar().Fatalw("Invalid configuration", zap.Error(err))
		}

		l.Sugar().Infow("txns-action",
			zap.String("version", version.GetVersion()),
			zap.String("commit", version.GetCommit()),
			zap.String("network", cfg.Network.String()),
		)

		tracer.StartTracer(cfg.DataDogConfig.TracingConfig.Enabled, cfg.Network)
		defer tracer.StopTracer()

		metricsClients, err := metrics.InitMetricsSinksFromConfig(cfg, l)
		if err != nil {
			l.Sugar().Fatalw("Failed to setup metrics sink", zap.Error(err))
		}

		sink, err := metrics.NewMetricsSink(&metrics.MetricsSinkConfig{
			DefaultLabels: []metricsTypes.MetricsLabel{
				{Name: "network", Value: cfg.Network.String()},
			},
		}, metricsClients)
		if err != nil {
			l.Sugar().Fatalw("Failed to setup metrics sink", zap.Error(err))
		}
		defer sink.Flush()

		eb := eventBus.NewEventBus(l)

		indexerClient := indexer.NewClient(indexer.ConvertGlobalConfigToIndexerConfig(&cfg.ApiConfig), sink, l)
		rpcClient := nearRpc.NewClient(nearRpc.ConvertGlobalConfigToNearRpcConfig(&cfg.RpcConfig), sink, l)

		p := pipeline.NewPipelineFromConfig(cfg, indexerClient, rpcClient, sink, eb, l)

		rpc := rpcServer.NewRpcServer(&rpcServer.RpcServerConfig{
			HttpPort:       cfg.HttpConfig.Port,
			AllowedOrigins: cfg.HttpConfig.AllowedOrigins,
		}, p, eb, sink, l)

		// RPC channel to notify the RPC server to shutdown gracefully
		rpcChannel := make(chan bool)
		done := make(chan bool, 1)
		if err := rpc.Start(rpcChannel, done); err != nil {
			l.Sugar().Fatalw("Failed to start RPC server", zap.Error(err))
		}

		promChan := make(chan bool, 1)
		if cfg.PrometheusConfig.Enabled {
			pServer := prometheus.NewPrometheusServer(&prometheus.PrometheusServerConfig{
				Port: cfg.PrometheusConfig.Port,
			}, l)
			if err := pServer.Start(promChan); err != nil {
				l.Sugar().Fatalw("Failed to start prometheus server", zap.Error(err))
			}
		}

		l.Sugar().Info("Started txns-action")

		gracefulShutdown := shutdown.CreateGracefulShutdownChannel()

		shutdown.ListenForShutdown(gracefulShutdown, done, func() {
			l.Sugar().Info("Shutting down...")
			rpcChannel <- true
			promChan <- true
		}, time.Second*10, l)
	},
}
