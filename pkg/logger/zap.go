package logger

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// ZapLogger is the logging surface shared by usecases, handlers and listeners.
type ZapLogger interface {
	Debug(msg string, fields ...zap.Field)
	Info(msg string, fields ...zap.Field)
	Warn(msg string, fields ...zap.Field)
	Error(msg string, fields ...zap.Field)
	Fatal(msg string, fields ...zap.Field)
	With(fields ...zap.Field) ZapLogger
	Sync() error
}

type ZapLoggerConfig struct {
	IsDevelopment     bool
	Encoding          string // json, console
	Level             string // debug, info, warn, error
	DisableCaller     bool
	DisableStacktrace bool
}

type zapLogger struct {
	l *zap.Logger
}

func NewZapLogger(cfg *ZapLoggerConfig) ZapLogger {
	zc := zap.NewProductionConfig()
	if cfg.IsDevelopment {
		zc = zap.NewDevelopmentConfig()
	}
	if cfg.Encoding != "" {
		zc.Encoding = cfg.Encoding
	}
	if lvl, err := zapcore.ParseLevel(cfg.Level); err == nil {
		zc.Level = zap.NewAtomicLevelAt(lvl)
	}
	zc.DisableCaller = cfg.DisableCaller
	zc.DisableStacktrace = cfg.DisableStacktrace
	zc.EncoderConfig.TimeKey = "time"
	zc.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	l, err := zc.Build(zap.AddCallerSkip(1))
	if err != nil {
		l = zap.NewExample()
	}
	return &zapLogger{l: l}
}

// NewNop returns a logger that discards everything. Used by tests.
func NewNop() ZapLogger {
	return &zapLogger{l: zap.NewNop()}
}

// NewFromZap wraps an existing *zap.Logger, e.g. one built with zaptest/observer.
func NewFromZap(l *zap.Logger) ZapLogger {
	return &zapLogger{l: l}
}

func (z *zapLogger) Debug(msg string, fields ...zap.Field) { z.l.Debug(msg, fields...) }
func (z *zapLogger) Info(msg string, fields ...zap.Field)  { z.l.Info(msg, fields...) }
func (z *zapLogger) Warn(msg string, fields ...zap.Field)  { z.l.Warn(msg, fields...) }
func (z *zapLogger) Error(msg string, fields ...zap.Field) { z.l.Error(msg, fields...) }
func (z *zapLogger) Fatal(msg string, fields ...zap.Field) { z.l.Fatal(msg, fields...) }

func (z *zapLogger) With(fields ...zap.Field) ZapLogger {
	return &zapLogger{l: z.l.With(fields...)}
}

func (z *zapLogger) Sync() error { return z.l.Sync() }
