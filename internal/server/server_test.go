package server

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zeusync/horde/internal/config"
	"github.com/zeusync/horde/internal/game"
)

func newTestEngine(t *testing.T) *game.Engine {
	t.Helper()
	e, err := game.NewEngine(config.Default(), nil, nil)
	require.NoError(t, err)
	for range 70 {
		require.NoError(t, e.Step(time.Second/60))
	}
	return e
}

func testFeedConfig() config.FeedConfig {
	return config.FeedConfig{
		Addr:              "127.0.0.1:0",
		BroadcastInterval: 10 * time.Millisecond,
		MaxClients:        2,
	}
}

func TestSnapshotEndpoint(t *testing.T) {
	engine := newTestEngine(t)
	srv := NewServer(engine, testFeedConfig(), nil)

	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/snapshot", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	var snap game.Snapshot
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &snap))
	assert.Equal(t, uint64(70), snap.Tick)
	assert.Equal(t, engine.Session(), snap.Session)
	assert.Len(t, snap.Hostiles, 5)
}

func TestMetricsEndpoint(t *testing.T) {
	srv := NewServer(newTestEngine(t), testFeedConfig(), nil)

	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var body metricsResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, uint64(70), body.Engine.Pipeline.Ticks)
	assert.Contains(t, body.Engine.Systems, "targeting")
	assert.False(t, body.Feed.Running)
}

func TestMethodNotAllowed(t *testing.T) {
	srv := NewServer(newTestEngine(t), testFeedConfig(), nil)

	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/snapshot", nil))
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}

func TestServerLifecycle(t *testing.T) {
	srv := NewServer(newTestEngine(t), testFeedConfig(), nil)
	ctx := context.Background()

	require.NoError(t, srv.Start(ctx))
	assert.ErrorIs(t, srv.Start(ctx), ErrServerAlreadyRunning)
	assert.True(t, srv.GetStats().Running)

	resp, err := http.Get("http://" + srv.Addr() + "/snapshot")
	require.NoError(t, err)
	_ = resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	require.NoError(t, srv.Stop(ctx))
	assert.ErrorIs(t, srv.Stop(ctx), ErrServerNotRunning)
	assert.ErrorIs(t, srv.Start(ctx), ErrServerClosed)
	assert.NoError(t, srv.Close())
}

func TestStartFailsOnBadAddress(t *testing.T) {
	cfg := testFeedConfig()
	cfg.Addr = "127.0.0.1:-1"
	srv := NewServer(newTestEngine(t), cfg, nil)
	assert.ErrorIs(t, srv.Start(context.Background()), ErrListenerFailed)
	assert.False(t, srv.GetStats().Running)
}
