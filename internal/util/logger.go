package util

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var logger *zap.Logger

// InitLogger initializes the global logger. Every entry carries the
// "stock-reconciler" name so the stream stays separable when aggregated
// with other services' logs.
func InitLogger(env string) error {
	var err error
	var config zap.Config

	if env == "production" {
		config = zap.NewProductionConfig()
	} else {
		config = zap.NewDevelopmentConfig()
		config.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	}

	logger, err = config.Build()
	if err != nil {
		return err
	}
	logger = logger.Named("stock-reconciler")

	zap.ReplaceGlobals(logger)
	return nil
}

// GetLogger returns the global logger, falling back to a development logger
// when InitLogger has not run (tests, mostly).
func GetLogger() *zap.Logger {
	if logger == nil {
		l, _ := zap.NewDevelopment()
		logger = l.Named("stock-reconciler")
	}
	return logger
}

// SyncLogger flushes any buffered log entries
func SyncLogger() {
	if logger != nil {
		_ = logger.Sync()
	}
}
