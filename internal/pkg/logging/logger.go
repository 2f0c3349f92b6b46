// Package logging builds the zap logger every other logger in the service derives from.
package logging

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

const (
	// SystemTraceID marks log lines emitted outside any request or event.
	SystemTraceID = "system"
	SystemSpanID  = "system"

	envLogFile   = "LOG_FILE"
	envLogFormat = "LOG_FORMAT"

	formatJSON    = "json"
	formatConsole = "console"
)

// NewLogger builds a JSON logger on stdout tagged with service and env. level takes
// zap level names and defaults to info. LOG_FILE tees output to a file and
// LOG_FORMAT=console switches to the human readable encoder.
func NewLogger(service, env, level string) (*zap.Logger, error) {
	cfg := zap.NewProductionConfig()
	cfg.OutputPaths = []string{"stdout"}
	cfg.ErrorOutputPaths = []string{"stderr"}
	cfg.Sampling = nil

	if level != "" {
		lvl, err := zapcore.ParseLevel(level)
		if err != nil {
			return nil, fmt.Errorf("parse log level: %w", err)
		}
		cfg.Level = zap.NewAtomicLevelAt(lvl)
	}

	switch format := strings.ToLower(os.Getenv(envLogFormat)); format {
	case "", formatJSON:
	case formatConsole:
		cfg.Encoding = formatConsole
	default:
		return nil, fmt.Errorf("unknown log format %q", format)
	}

	if logFile := os.Getenv(envLogFile); logFile != "" {
		if err := ensureLogFile(logFile); err != nil {
			return nil, fmt.Errorf("prepare log file: %w", err)
		}
		cfg.OutputPaths = append(cfg.OutputPaths, logFile)
		cfg.ErrorOutputPaths = append(cfg.ErrorOutputPaths, logFile)
	}

	cfg.EncoderConfig.TimeKey = "ts"
	cfg.EncoderConfig.MessageKey = "msg"
	cfg.EncoderConfig.EncodeTime = zapcore.RFC3339NanoTimeEncoder
	cfg.EncoderConfig.EncodeLevel = zapcore.LowercaseLevelEncoder

	cfg.InitialFields = map[string]any{
		"service": service,
		"env":     env,
	}

	return cfg.Build()
}

func MustNewLogger(service, env, level string) *zap.Logger {
	logger, err := NewLogger(service, env, level)
	if err != nil {
		panic(err)
	}
	return logger
}

// WithTrace pins trace_id and span_id on logger; empty ids become "unknown".
func WithTrace(logger *zap.Logger, traceID, spanID string) *zap.Logger {
	if logger == nil {
		logger = zap.L()
	}
	return logger.With(
		zap.String("trace_id", orUnknown(traceID)),
		zap.String("span_id", orUnknown(spanID)),
	)
}

func orUnknown(s string) string {
	if s == "" {
		return "unknown"
	}
	return s
}

func ensureLogFile(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return err
	}
	return f.Close()
}
