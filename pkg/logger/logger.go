package logger

import (
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

type LoggerConfig struct {
	Debug bool
	// Format is "json" or "console". Empty defaults to console.
	Format string
}

// FormatForNodeEnv maps the NODE_ENV convention onto a log encoder.
func FormatForNodeEnv(nodeEnv string) string {
	if strings.EqualFold(strings.TrimSpace(nodeEnv), "production") {
		return "json"
	}
	return "console"
}

func NewLogger(cfg *LoggerConfig) (*zap.Logger, error) {
	var c zap.Config
	if cfg.Format == "json" {
		c = zap.NewProductionConfig()
		c.EncoderConfig.TimeKey = "timestamp"
		c.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	} else {
		c = zap.NewDevelopmentConfig()
		c.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	}

	if cfg.Debug {
		c.Level = zap.NewAtomicLevelAt(zap.DebugLevel)
	} else {
		c.Level = zap.NewAtomicLevelAt(zap.InfoLevel)
	}

	return c.Build()
}
