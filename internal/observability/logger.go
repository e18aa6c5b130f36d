package observability

import (
	"context"
	"fmt"

	"github.com/upb/web-core/config"
	"github.com/upb/web-core/internal/masking"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Logger provides structured logging with context awareness.
type Logger interface {
	Debug(ctx context.Context, msg string, fields ...Field)
	Info(ctx context.Context, msg string, fields ...Field)
	Warn(ctx context.Context, msg string, fields ...Field)
	Error(ctx context.Context, msg string, fields ...Field)
}

// Field represents a structured log field.
type Field = zap.Field

// NewLogger builds a zap logger from cfg whose core masks sensitive fields.
// "json" selects the production encoder, "console" and "text" the development one.
func NewLogger(cfg config.ObservabilityConfig, masker *masking.Masker, opts ...zap.Option) (*zap.Logger, error) {
	zapCfg, err := newZapConfig(cfg)
	if err != nil {
		return nil, err
	}

	opts = append(opts, zap.WrapCore(func(core zapcore.Core) zapcore.Core {
		return NewMaskingCore(core, masker)
	}))
	logger, err := zapCfg.Build(opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to build logger: %w", err)
	}
	return logger, nil
}

// newZapConfig maps cfg onto a zap preset. Sampling is off: the masking core
// writes entries without consulting the wrapped core's Check, so a sampler
// would never run, and every traffic line is kept.
func newZapConfig(cfg config.ObservabilityConfig) (zap.Config, error) {
	level, err := zapcore.ParseLevel(cfg.LogLevel)
	if err != nil {
		return zap.Config{}, fmt.Errorf("invalid log level %q: %w", cfg.LogLevel, err)
	}

	var zapCfg zap.Config
	switch cfg.LogFormat {
	case "", "json":
		zapCfg = zap.NewProductionConfig()
	case "console", "text":
		zapCfg = zap.NewDevelopmentConfig()
	default:
		return zap.Config{}, fmt.Errorf("invalid log format %q", cfg.LogFormat)
	}
	zapCfg.Level = zap.NewAtomicLevelAt(level)
	zapCfg.Sampling = nil
	return zapCfg, nil
}

// ContextLogger implements Logger on top of zap, adding trace_id and
// request_id from the context to every entry.
type ContextLogger struct {
	raw    *zap.Logger
	base   *zap.Logger
	masker *masking.Masker
}

// NewContextLogger wraps base. masker is applied to Infof arguments and may be nil.
func NewContextLogger(base *zap.Logger, masker *masking.Masker) *ContextLogger {
	return &ContextLogger{raw: base, base: base.WithOptions(zap.AddCallerSkip(1)), masker: masker}
}

// Zap returns the underlying zap logger
func (l *ContextLogger) Zap() *zap.Logger {
	return l.raw
}

func (l *ContextLogger) Debug(ctx context.Context, msg string, fields ...Field) {
	l.base.Debug(msg, l.withContext(ctx, fields)...)
}

func (l *ContextLogger) Info(ctx context.Context, msg string, fields ...Field) {
	l.base.Info(msg, l.withContext(ctx, fields)...)
}

func (l *ContextLogger) Warn(ctx context.Context, msg string, fields ...Field) {
	l.base.Warn(msg, l.withContext(ctx, fields)...)
}

func (l *ContextLogger) Error(ctx context.Context, msg string, fields ...Field) {
	l.base.Error(msg, l.withContext(ctx, fields)...)
}

// Infof logs a formatted message at info level. Each argument is masked
// before formatting, so sensitive fields never reach the message text.
func (l *ContextLogger) Infof(ctx context.Context, format string, args ...any) {
	if !l.base.Core().Enabled(zapcore.InfoLevel) {
		return
	}
	masked := make([]any, len(args))
	for i, arg := range args {
		masked[i] = l.maskArg(arg)
	}
	l.base.Info(fmt.Sprintf(format, masked...), l.withContext(ctx, nil)...)
}

func (l *ContextLogger) maskArg(arg any) any {
	if l.masker == nil {
		return arg
	}
	switch v := l.masker.Mask(arg).(type) {
	case masking.Node:
		// Render masked structures as JSON rather than Go syntax.
		return v.String()
	default:
		return v
	}
}

func (l *ContextLogger) withContext(ctx context.Context, fields []Field) []Field {
	traceID := TraceIDFromContext(ctx)
	requestID := RequestIDFromContext(ctx)
	if traceID == "" && requestID == "" {
		return fields
	}
	out := make([]Field, 0, len(fields)+2)
	if traceID != "" {
		out = append(out, zap.String("trace_id", traceID))
	}
	if requestID != "" {
		out = append(out, zap.String("request_id", requestID))
	}
	return append(out, fields...)
}
