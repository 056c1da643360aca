package birch

import (
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// newLogger builds the App logger from config. Release builds log at
// Config.LogLevel in production format. Debug switches to a development
// logger at debug level.
func newLogger(cfg Config) *zap.Logger {
	zc := zap.NewProductionConfig()
	if cfg.Debug {
		zc = zap.NewDevelopmentConfig()
	}
	zc.Level = zap.NewAtomicLevelAt(parseLevel(cfg.LogLevel, cfg.Debug))
	zc.DisableStacktrace = true

	l, err := zc.Build()
	if err != nil {
		return zap.NewNop()
	}
	return l.Named("birch")
}

func parseLevel(s string, debug bool) zapcore.Level {
	if debug {
		return zapcore.DebugLevel
	}
	switch strings.ToLower(s) {
	case "debug":
		return zapcore.DebugLevel
	case "info":
		return zapcore.InfoLevel
	case "warn", "warning":
		return zapcore.WarnLevel
	case "error":
		return zapcore.ErrorLevel
	}
	return zapcore.WarnLevel
}
