package rpcServer

import (
	"compress/gzip"
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"
	"github.com/nearblocks/txns-action/pkg/eventBus/eventBusTypes"
	"github.com/nearblocks/txns-action/pkg/metrics"
	"github.com/nearblocks/txns-action/pkg/pipeline"
	"github.com/rs/cors"
	"go.uber.org/zap"
)

// TransactionParser is the part of the pipeline the HTTP surface depends on.
type TransactionParser interface {
	ParseTransaction(ctx context.Context, req *pipeline.ParseRequest) (*pipeline.ParseResult, error)
}

type RpcServerConfig struct {
	HttpPort       int
	AllowedOrigins []string
	// MaxBodyBytes caps the request body of the txnsaction route. Zero means 10MiB.
	MaxBodyBytes int64
}

type RpcServer struct {
	config      *RpcServerConfig
	parser      TransactionParser
	eventBus    eventBusTypes.IEventBus
	metricsSink *metrics.MetricsSink
	Logger      *zap.Logger
	server      *http.Server
	// closing is closed on shutdown so open streams return.
	closing     chan struct{}
}

// NewRpcServer creates the HTTP API.
//
// Parameters:
//   - config: listen port and CORS settings
//   - tp: the transaction pipeline
//   - eb: event bus feeding the stream route; nil disables it
//   - ms: metrics sink
//   - l: logger
func NewRpcServer(
	config *RpcServerConfig,
	tp TransactionParser,
	eb eventBusTypes.IEventBus,
	ms *metrics.MetricsSink,
	l *zap.Logger,
) *RpcServer {
	if config.MaxBodyBytes <= 0 {
		config.MaxBodyBytes = 10 << 20
	}
	return &RpcServer{
		config:      config,
		parser:      tp,
		eventBus:    eb,
		metricsSink: ms,
		Logger:      l,
		closing:     make(chan struct{}),
	}
}

// Handler builds the full middleware chain around the router.
func (rpc *RpcServer) Handler() http.Handler {
	r := mux.NewRouter()
	r.NotFoundHandler = http.HandlerFunc(rpc.handleNotFound)
	r.MethodNotAllowedHandler = http.HandlerFunc(rpc.handleNotFound)

	r.HandleFunc("/health", rpc.handleHealth).Methods(http.MethodGet)
	r.HandleFunc("/v1/txnsaction/{hash}", rpc.handleTxnsAction).Methods(http.MethodPost)
	if rpc.eventBus != nil {
		r.HandleFunc("/v1/txnsaction/stream", rpc.handleStream).Methods(http.MethodGet)
	}

	r.Use(rpc.requestIdMiddleware, rpc.tracingMiddleware, rpc.metricsMiddleware, rpc.recoveryMiddleware)

	var h http.Handler = r
	h = handlers.CustomLoggingHandler(io.Discard, h, rpc.accessLogFormatter)
	h = cors.New(cors.Options{
		AllowedOrigins: rpc.allowedOrigins(),
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Content-Type", "Authorization", RequestIdHeader},
		ExposedHeaders: []string{RequestIdHeader},
	}).Handler(h)
	return handlers.CompressHandlerLevel(h, gzip.BestSpeed)
}

func (rpc *RpcServer) allowedOrigins() []string {
	if len(rpc.config.AllowedOrigins) == 0 {
		return []string{"*"}
	}
	return rpc.config.AllowedOrigins
}

// Start serves the API in the background. It shuts down, draining in-flight
// requests, when a value is sent on stop, and signals done once closed.
func (rpc *RpcServer) Start(stop chan bool, done chan bool) error {
	rpc.server = &http.Server{
		Addr:              fmt.Sprintf(":%d", rpc.config.HttpPort),
		Handler:           rpc.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		rpc.Logger.Sugar().Infow("Starting http server", zap.Int("port", rpc.config.HttpPort))
		if err := rpc.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			rpc.Logger.Sugar().Errorw("Http server failed", zap.Error(err))
		}
	}()

	go func() {
		<-stop
		close(rpc.closing)
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := rpc.server.Shutdown(ctx); err != nil {
			rpc.Logger.Sugar().Errorw("Failed to shutdown http server", zap.Error(err))
		}
		if done != nil {
			done <- true
		}
	}()
	return nil
}
