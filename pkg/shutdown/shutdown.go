package shutdown

import (
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"
)

func CreateGracefulShutdownChannel() chan os.Signal {
	gracefulShutdown := make(chan os.Signal, 1)
	signal.Notify(gracefulShutdown, syscall.SIGINT, syscall.SIGTERM)
	return gracefulShutdown
}

// ListenForShutdown blocks until a signal arrives on sig, runs notify and then
// waits up to timeout for done before returning.
func ListenForShutdown(sig chan os.Signal, done chan bool, notify func(), timeout time.Duration, l *zap.Logger) {
	received := <-sig
	l.Sugar().Infow("Received shutdown signal", zap.String("signal", received.String()))

	notify()

	select {
	case <-done:
		l.Sugar().Info("Shutdown complete")
	case <-time.After(timeout):
		l.Sugar().Warnw("Shutdown timed out", zap.Duration("timeout", timeout))
	}
}
