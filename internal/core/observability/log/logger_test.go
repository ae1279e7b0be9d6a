package log

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	for in, want := range map[string]Level{
		"debug": LevelDebug, "INFO": LevelInfo, "": LevelInfo,
		"warning": LevelWarn, "error": LevelError, "fatal": LevelFatal,
	} {
		got, err := ParseLevel(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}
	_, err := ParseLevel("loud")
	assert.Error(t, err)
}

func TestLevelIsSharedWithDerivedLoggers(t *testing.T) {
	l := New(LevelInfo)
	child := l.With(String("component", "test"))
	l.SetLevel(LevelError)
	assert.Equal(t, LevelError, child.GetLevel())
}

func TestNopLoggerAcceptsEverything(t *testing.T) {
	l := NewNop()
	ctx := ContextWith(context.Background(), Uint64("tick", 3))
	assert.NotPanics(t, func() {
		l.WithContext(ctx).Info("hello", Int("n", 1), Float64("f", 2), Bool("b", true), Error(assert.AnError))
		l.Debug("dbg", Any("v", struct{}{}))
	})
}
