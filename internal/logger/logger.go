package logger

import (
	"fmt"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var (
	// Log is the process-wide sugared logger, set by Init
	Log *zap.SugaredLogger

	base *zap.Logger
)

// Init builds the process logger and installs it as the zap global
func Init(level, format string) error {
	l, err := New(level, format)
	if err != nil {
		return err
	}

	base = l
	Log = l.Sugar()
	zap.ReplaceGlobals(l)
	return nil
}

// New builds a logger for the given level ("debug", "info", "warn", "error")
// and format ("json" or "text").
func New(level, format string) (*zap.Logger, error) {
	var cfg zap.Config
	switch format {
	case "json":
		cfg = zap.NewProductionConfig()
	case "text":
		cfg = zap.NewDevelopmentConfig()
		cfg.Encoding = "console"
	default:
		return nil, fmt.Errorf("invalid log format: %s", format)
	}

	zapLevel, err := zapcore.ParseLevel(level)
	if err != nil {
		return nil, fmt.Errorf("invalid log level: %s", level)
	}
	cfg.Level = zap.NewAtomicLevelAt(zapLevel)

	cfg.EncoderConfig.TimeKey = "timestamp"
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	cfg.EncoderConfig.MessageKey = "msg"
	cfg.EncoderConfig.EncodeCaller = zapcore.ShortCallerEncoder

	l, err := cfg.Build(zap.Fields(zap.String("service", "label-portal")))
	if err != nil {
		return nil, fmt.Errorf("failed to build logger: %w", err)
	}
	return l, nil
}

// Sync flushes any buffered log entries
func Sync() error {
	if base != nil {
		return base.Sync()
	}
	return nil
}

// GetZapLogger returns the logger built by Init, or a no-op logger before Init
func GetZapLogger() *zap.Logger {
	if base == nil {
		return zap.NewNop()
	}
	return base
}
