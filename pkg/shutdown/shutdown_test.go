package shutdown

import (
	"os"
	"syscall"
	"testing"
	"time"

	"github.com/nearblocks/txns-action/pkg/logger"
	"github.com/stretchr/testify/assert"
)

func Test_ListenForShutdown(t *testing.T) {
	l, _ := logger.NewLogger(&logger.LoggerConfig{Debug: false})

	t.Run("Runs notify and waits for done", func(t *testing.T) {
		sig := make(chan os.Signal, 1)
		done := make(chan bool, 1)
		notified := false

		sig <- syscall.SIGTERM
		ListenForShutdown(sig, done, func() {
			notified = true
			done <- true
		}, time.Second, l)

		assert.True(t, notified)
	})
	t.Run("Gives up after the timeout", func(t *testing.T) {
		sig := make(chan os.Signal, 1)
		done := make(chan bool)

		sig <- syscall.SIGINT
		start := time.Now()
		ListenForShutdown(sig, done, func() {}, 20*time.Millisecond, l)
		assert.GreaterOrEqual(t, time.Since(start), 20*time.Millisecond)
	})
}
