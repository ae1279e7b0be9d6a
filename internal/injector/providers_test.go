package injector

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zeusync/horde/internal/config"
)

func TestInitializeAppRunsUntilCancelled(t *testing.T) {
	cfg := config.Default()
	cfg.LogLevel = "error"
	cfg.Feed.Addr = "127.0.0.1:0"

	app, err := InitializeApp(cfg)
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 300*time.Millisecond)
	defer cancel()
	require.NoError(t, app.Run(ctx))

	m := app.Engine.Metrics()
	assert.Positive(t, m.Tick)
	require.NotNil(t, m.Events, "the journal observer enables bus metrics")
	assert.Positive(t, m.Events.Published)
	assert.False(t, app.Server.GetStats().Running)
}

func TestInitializeAppRejectsBadLogLevel(t *testing.T) {
	cfg := config.Default()
	cfg.LogLevel = "chatty"

	_, err := InitializeApp(cfg)
	assert.ErrorIs(t, err, config.ErrInvalidConfig)
}

func TestRunFailsWhenFeedCannotListen(t *testing.T) {
	cfg := config.Default()
	cfg.LogLevel = "error"
	cfg.Feed.Addr = "127.0.0.1:-1"

	app, err := InitializeApp(cfg)
	require.NoError(t, err)
	assert.Error(t, app.Run(context.Background()))
}
