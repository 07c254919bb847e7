package rpcServer

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"
	"github.com/nearblocks/txns-action/pkg/metrics/metricsTypes"
	"go.uber.org/zap"
	ddTracer "gopkg.in/DataDog/dd-trace-go.v1/ddtrace/tracer"
)

const RequestIdHeader = "X-Request-Id"

type contextKey string

const requestIdKey contextKey = "requestId"

// RequestIdFromContext returns the id assigned by requestIdMiddleware, or "".
func RequestIdFromContext(ctx context.Context) string {
	if id, ok := ctx.Value(requestIdKey).(string); ok {
		return id
	}
	return ""
}

func (rpc *RpcServer) requestIdMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestId := r.Header.Get(RequestIdHeader)
		if _, err := uuid.Parse(requestId); err != nil {
			requestId = uuid.New().String()
		}
		w.Header().Set(RequestIdHeader, requestId)
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), requestIdKey, requestId)))
	})
}

func routePattern(r *http.Request) string {
	if route := mux.CurrentRoute(r); route != nil {
		if tpl, err := route.GetPathTemplate(); err == nil {
			return tpl
		}
	}
	return "unmatched"
}

func (rpc *RpcServer) tracingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		span, ctx := ddTracer.StartSpanFromContext(r.Context(), "http.request",
			ddTracer.ResourceName(fmt.Sprintf("%s %s", r.Method, routePattern(r))),
		)
		span.SetTag("request_id", RequestIdFromContext(r.Context()))
		defer span.Finish()

		rec := newStatusRecorder(w)
		next.ServeHTTP(rec, r.WithContext(ctx))
		span.SetTag("http.status_code", rec.status)
	})
}

func (rpc *RpcServer) metricsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := newStatusRecorder(w)
		next.ServeHTTP(rec, r)

		labels := []metricsTypes.MetricsLabel{
			{Name: "method", Value: r.Method},
			{Name: "pattern", Value: routePattern(r)},
			{Name: "status_code", Value: strconv.Itoa(rec.status)},
		}
		_ = rpc.metricsSink.Incr(metricsTypes.Metric_Incr_HttpRequest, labels, 1)
		_ = rpc.metricsSink.Timing(metricsTypes.Metric_Timing_HttpDuration, time.Since(start), labels)
	})
}

// recoveryMiddleware turns a panic into a generic 500. The details only go to
// the log.
func (rpc *RpcServer) recoveryMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if rec := recover(); rec != nil {
				rpc.Logger.Sugar().Errorw("Recovered from panic",
					zap.String("requestId", RequestIdFromContext(r.Context())),
					zap.String("hash", mux.Vars(r)["hash"]),
					zap.Any("panic", rec),
					zap.Stack("stack"),
				)
				writeServerError(w)
			}
		}()
		next.ServeHTTP(w, r)
	})
}

func (rpc *RpcServer) accessLogFormatter(_ io.Writer, params handlers.LogFormatterParams) {
	rpc.Logger.Sugar().Debugw("Handled request",
		zap.String("method", params.Request.Method),
		zap.String("path", params.URL.Path),
		zap.Int("status", params.StatusCode),
		zap.Int("size", params.Size),
		zap.Duration("duration", time.Since(params.TimeStamp)),
	)
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func newStatusRecorder(w http.ResponseWriter) *statusRecorder {
	return &statusRecorder{ResponseWriter: w, status: http.StatusOK}
}

func (s *statusRecorder) WriteHeader(code int) {
	s.status = code
	s.ResponseWriter.WriteHeader(code)
}

func (s *statusRecorder) Flush() {
	if f, ok := s.ResponseWriter.(http.Flusher); ok {
		f.Flush()
	}
}
