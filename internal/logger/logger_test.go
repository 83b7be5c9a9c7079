package logger

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
)

// TestParseLogLevel verifies mapping from strings to zapcore.Level and handling of unknown values.
func TestParseLogLevel(t *testing.T) {
	t.Parallel()

	cases := map[string]zapcore.Level{
		"debug": zapcore.DebugLevel,
		"info":  zapcore.InfoLevel,
		"warn":  zapcore.WarnLevel,
		"error": zapcore.ErrorLevel,
		"panic": zapcore.PanicLevel,
		"fatal": zapcore.FatalLevel,
	}
	for s, lvl := range cases {
		got, ok := ParseLogLevel(s)
		require.True(t, ok)
		require.Equal(t, lvl, got)
	}

	_, ok := ParseLogLevel("unknown")
	require.False(t, ok)
}

// TestFromContextFallback verifies the global logger is returned for a bare
// context and a context-attached logger takes precedence.
func TestFromContextFallback(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	require.Same(t, Logger(), FromContext(ctx))

	scoped := New(zapcore.WarnLevel)
	ctx = ToContext(ctx, scoped)
	require.Same(t, scoped, FromContext(ctx))
}

// TestWithName verifies naming produces a distinct child logger in the context.
func TestWithName(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	named := WithName(ctx, "driver")

	require.NotSame(t, FromContext(ctx), FromContext(named))
}
