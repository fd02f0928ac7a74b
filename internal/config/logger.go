package config

import (
	"os"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

const (
	LogFormatJSON    = "json"
	LogFormatConsole = "console"
)

// NewLogger пишет в stderr: stdout у cine занят выдачей.
func NewLogger(cfg LogConfig) (*zap.Logger, error) {
	return newLogger(cfg, zapcore.Lock(os.Stderr))
}

func newLogger(cfg LogConfig, out zapcore.WriteSyncer) (*zap.Logger, error) {
	level, err := parseLogLevel(cfg.Level)
	if err != nil {
		return nil, err
	}

	format, err := logFormat(cfg.Format, level)
	if err != nil {
		return nil, err
	}

	encCfg := zap.NewProductionEncoderConfig()
	encCfg.TimeKey = "timestamp"
	encCfg.EncodeTime = zapcore.ISO8601TimeEncoder
	encCfg.EncodeCaller = zapcore.ShortCallerEncoder

	var enc zapcore.Encoder
	if format == LogFormatConsole {
		encCfg.EncodeLevel = zapcore.CapitalColorLevelEncoder
		enc = zapcore.NewConsoleEncoder(encCfg)
	} else {
		enc = zapcore.NewJSONEncoder(encCfg)
	}

	opts := []zap.Option{zap.AddCaller(), zap.AddStacktrace(zapcore.ErrorLevel)}
	if cfg.Service != "" {
		opts = append(opts, zap.Fields(zap.String("service", cfg.Service)))
	}

	return zap.New(zapcore.NewCore(enc, out, level), opts...), nil
}

// parseLogLevel: пустая строка = info, "warning" тоже принимаем.
func parseLogLevel(level string) (zapcore.Level, error) {
	level = strings.ToLower(strings.TrimSpace(level))
	switch level {
	case "":
		return zapcore.InfoLevel, nil
	case "warning":
		return zapcore.WarnLevel, nil
	}
	l, err := zapcore.ParseLevel(level)
	if err != nil {
		return zapcore.InfoLevel, ErrInvalidLogLevel
	}
	return l, nil
}

func logFormat(format string, level zapcore.Level) (string, error) {
	switch strings.ToLower(strings.TrimSpace(format)) {
	case "":
		if level == zapcore.DebugLevel {
			return LogFormatConsole, nil
		}
		return LogFormatJSON, nil
	case LogFormatJSON:
		return LogFormatJSON, nil
	case LogFormatConsole:
		return LogFormatConsole, nil
	default:
		return "", ErrInvalidLogFormat
	}
}
