package observability

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/upb/web-core/config"
	"github.com/upb/web-core/internal/masking"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func newObservedLogger(t *testing.T, masker *masking.Masker) (*zap.Logger, *observer.ObservedLogs) {
	t.Helper()
	core, logs := observer.New(zapcore.DebugLevel)
	return zap.New(NewMaskingCore(core, masker)), logs
}

func TestNewLogger(t *testing.T) {
	masker := masking.New(masking.DefaultFieldSet())

	tests := []struct {
		name    string
		cfg     config.ObservabilityConfig
		wantErr string
	}{
		{name: "json", cfg: config.ObservabilityConfig{LogLevel: "info", LogFormat: "json"}},
		{name: "console", cfg: config.ObservabilityConfig{LogLevel: "debug", LogFormat: "console"}},
		{name: "text", cfg: config.ObservabilityConfig{LogLevel: "warn", LogFormat: "text"}},
		{name: "empty format", cfg: config.ObservabilityConfig{LogLevel: "error"}},
		{name: "invalid level", cfg: config.ObservabilityConfig{LogLevel: "loud", LogFormat: "json"}, wantErr: "invalid log level"},
		{name: "invalid format", cfg: config.ObservabilityConfig{LogLevel: "info", LogFormat: "xml"}, wantErr: "invalid log format"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			logger, err := NewLogger(tt.cfg, masker)
			if tt.wantErr != "" {
				require.Error(t, err)
				assert.Nil(t, logger)
				assert.Contains(t, err.Error(), tt.wantErr)
				return
			}
			require.NoError(t, err)
			require.NotNil(t, logger)
			_ = logger.Sync()
		})
	}
}

func TestNewLogger_Level(t *testing.T) {
	logger, err := NewLogger(config.ObservabilityConfig{LogLevel: "warn", LogFormat: "json"}, nil)
	require.NoError(t, err)

	assert.False(t, logger.Core().Enabled(zapcore.InfoLevel))
	assert.True(t, logger.Core().Enabled(zapcore.WarnLevel))
}

func TestNewZapConfig_NoSampling(t *testing.T) {
	for _, format := range []string{"json", "console"} {
		t.Run(format, func(t *testing.T) {
			zapCfg, err := newZapConfig(config.ObservabilityConfig{LogLevel: "warn", LogFormat: format})
			require.NoError(t, err)
			assert.Nil(t, zapCfg.Sampling)
			assert.Equal(t, zapcore.WarnLevel, zapCfg.Level.Level())
		})
	}
}

func TestMaskingCore_Write(t *testing.T) {
	logger, logs := newObservedLogger(t, masking.New(masking.DefaultFieldSet()))

	logger.Info("request",
		zap.String("body", `{"userPhone":"13812345678","name":"li"}`),
		zap.String("plain", "userPhone=13812345678"),
		zap.ByteString("raw", []byte(`{"legalId":"110101199001011234"}`)),
		zap.Int("count", 3),
	)

	require.Equal(t, 1, logs.Len())
	fields := logs.All()[0].ContextMap()
	assert.Equal(t, `{"userPhone":"13******678","name":"li"}`, fields["body"])
	assert.Equal(t, "userPhone=13812345678", fields["plain"])
	assert.Equal(t, `{"legalId":"1101**********1234"}`, fields["raw"])
	assert.Equal(t, int64(3), fields["count"])
}

func TestMaskingCore_Reflect(t *testing.T) {
	logger, logs := newObservedLogger(t, masking.New(masking.DefaultFieldSet()))

	type user struct {
		Name     string `json:"name"`
		BankCard string `json:"bankCard"`
	}
	logger.Info("user", zap.Any("user", user{Name: "li", BankCard: "6222020200112233"}))

	require.Equal(t, 1, logs.Len())
	field := logs.All()[0].Context[0]
	assert.Equal(t, zapcore.ReflectType, field.Type)
	node, ok := field.Interface.(masking.Node)
	require.True(t, ok)
	assert.Equal(t, `{"name":"li","bankCard":"622*********2233"}`, node.String())
}

type jsonStringer string

func (s jsonStringer) String() string { return string(s) }

func TestMaskingCore_Stringer(t *testing.T) {
	logger, logs := newObservedLogger(t, masking.New(masking.DefaultFieldSet()))

	logger.Info("stringer", zap.Stringer("payload", jsonStringer(`{"phoneNumber":"13812345678"}`)))

	require.Equal(t, 1, logs.Len())
	assert.Equal(t, `{"phoneNumber":"13******678"}`, logs.All()[0].ContextMap()["payload"])
}

func TestMaskingCore_With(t *testing.T) {
	logger, logs := newObservedLogger(t, masking.New(masking.DefaultFieldSet()))

	logger.With(zap.String("ctx", `{"userPhone":"13812345678"}`)).Info("child")

	require.Equal(t, 1, logs.Len())
	assert.Equal(t, `{"userPhone":"13******678"}`, logs.All()[0].ContextMap()["ctx"])
}

func TestMaskingCore_LevelRespected(t *testing.T) {
	core, logs := observer.New(zapcore.WarnLevel)
	logger := zap.New(NewMaskingCore(core, masking.New(masking.DefaultFieldSet())))

	logger.Info("dropped", zap.String("body", `{"userPhone":"1"}`))
	logger.Warn("kept")

	require.Equal(t, 1, logs.Len())
	assert.Equal(t, "kept", logs.All()[0].Message)
}

func TestNewMaskingCore_Passthrough(t *testing.T) {
	core, _ := observer.New(zapcore.InfoLevel)

	assert.Same(t, core, NewMaskingCore(core, nil))
	assert.Same(t, core, NewMaskingCore(core, masking.New(masking.NewFieldSet())))
}

type panickingStringer struct{}

func (panickingStringer) String() string { panic("boom") }

func TestMaskingCore_PanicDoesNotBreakLogging(t *testing.T) {
	logger, logs := newObservedLogger(t, masking.New(masking.DefaultFieldSet()))

	assert.NotPanics(t, func() {
		logger.Info("still logged", zap.Stringer("bad", panickingStringer{}))
	})
	require.Equal(t, 1, logs.Len())
	assert.Equal(t, "still logged", logs.All()[0].Message)
}

func TestContextLogger(t *testing.T) {
	base, logs := newObservedLogger(t, masking.New(masking.DefaultFieldSet()))
	logger := NewContextLogger(base, masking.New(masking.DefaultFieldSet()))

	ctx := WithRequestID(WithTraceID(context.Background(), "abc123"), "req-1")
	logger.Info(ctx, "hello", zap.String("k", "v"))
	logger.Warn(context.Background(), "no context")
	logger.Debug(ctx, "debug")
	logger.Error(ctx, "error")

	entries := logs.All()
	require.Len(t, entries, 4)

	fields := entries[0].ContextMap()
	assert.Equal(t, "abc123", fields["trace_id"])
	assert.Equal(t, "req-1", fields["request_id"])
	assert.Equal(t, "v", fields["k"])

	assert.Empty(t, entries[1].Context)
	assert.Equal(t, zapcore.DebugLevel, entries[2].Level)
	assert.Equal(t, zapcore.ErrorLevel, entries[3].Level)
	assert.Same(t, base, logger.Zap())
}

func TestContextLogger_Infof(t *testing.T) {
	base, logs := newObservedLogger(t, nil)
	logger := NewContextLogger(base, masking.New(masking.DefaultFieldSet()))

	type card struct {
		BankCard string `json:"bankCard"`
	}
	logger.Infof(WithTraceID(context.Background(), "t-1"), "params %s and %v, count %d",
		`{"userPhone":"13812345678"}`, card{BankCard: "6222020200112233"}, 7)

	require.Equal(t, 1, logs.Len())
	entry := logs.All()[0]
	assert.Equal(t, `params {"userPhone":"13******678"} and {"bankCard":"622*********2233"}, count 7`, entry.Message)
	assert.Equal(t, "t-1", entry.ContextMap()["trace_id"])
}

func TestContextLogger_InfofDisabled(t *testing.T) {
	core, logs := observer.New(zapcore.WarnLevel)
	logger := NewContextLogger(zap.New(core), nil)

	logger.Infof(context.Background(), "value %s", "x")
	assert.Equal(t, 0, logs.Len())
}

func TestContextHelpers(t *testing.T) {
	ctx := context.Background()
	assert.Empty(t, TraceIDFromContext(ctx))
	assert.Empty(t, RequestIDFromContext(ctx))

	ctx = WithTraceID(ctx, "trace")
	ctx = WithRequestID(ctx, "request")
	assert.Equal(t, "trace", TraceIDFromContext(ctx))
	assert.Equal(t, "request", RequestIDFromContext(ctx))
}
