// Package server exposes a running engine over HTTP: JSON endpoints for the
// latest snapshot and metrics, and a websocket feed that streams snapshots
// and accepts player input.
package server

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"

	"github.com/zeusync/horde/internal/config"
	"github.com/zeusync/horde/internal/core/observability/log"
	"github.com/zeusync/horde/internal/game"
	"github.com/zeusync/horde/pkg/generic"
)

// Engine is the part of the game engine the feed depends on.
type Engine interface {
	Snapshot() game.Snapshot
	Metrics() game.Metrics
	UpdateInput(fn func(*game.Input))
}

// Server streams engine snapshots to websocket clients.
type Server struct {
	engine Engine
	config config.FeedConfig
	logger log.Log

	http     *http.Server
	listener net.Listener
	upgrader websocket.Upgrader
	buffers  *generic.Pool[*bytes.Buffer]

	// Client management
	clients     sync.Map // map[string]*ClientSession
	clientCount int64    // atomic
	broadcasts  uint64   // atomic

	// Server state
	running int32 // atomic bool
	closed  int32 // atomic bool

	// Background workers
	workerGroup sync.WaitGroup
	stopChan    chan struct{}
}

// Stats contains server statistics
type Stats struct {
	ClientCount int64  `json:"clients"`
	Broadcasts  uint64 `json:"broadcasts"`
	Running     bool   `json:"running"`
}

func NewServer(engine Engine, cfg config.FeedConfig, logger log.Log) *Server {
	if logger == nil {
		logger = log.NewNop()
	}
	s := &Server{
		engine: engine,
		config: cfg,
		logger: logger.With(log.String("component", "server")),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 4096,
		},
		buffers: generic.NewHotPool(func() *bytes.Buffer { return new(bytes.Buffer) }, 4).
			WithReset(func(b *bytes.Buffer) { b.Reset() }),
		stopChan: make(chan struct{}),
	}
	s.http = &http.Server{
		Handler:           s.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	s.logger.Info("Server created",
		log.String("addr", cfg.Addr),
		log.Int("max_clients", cfg.MaxClients),
		log.Duration("broadcast_interval", cfg.BroadcastInterval))
	return s
}

// Start listens on the configured address and serves in the background.
func (s *Server) Start(_ context.Context) error {
	if atomic.LoadInt32(&s.closed) == 1 {
		return ErrServerClosed
	}
	if !atomic.CompareAndSwapInt32(&s.running, 0, 1) {
		return ErrServerAlreadyRunning
	}

	listener, err := net.Listen("tcp", s.config.Addr)
	if err != nil {
		atomic.StoreInt32(&s.running, 0)
		s.logger.Error("Failed to create listener", log.Error(err))
		return fmt.Errorf("%w: %w", ErrListenerFailed, err)
	}
	s.listener = listener

	s.workerGroup.Add(2)
	go func() {
		defer s.workerGroup.Done()
		if err := s.http.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Error("HTTP server failed", log.Error(err))
		}
	}()
	go func() {
		defer s.workerGroup.Done()
		s.broadcaster()
	}()

	s.logger.Info("Server listening", log.String("addr", listener.Addr().String()))
	return nil
}

// Addr is the bound listener address, useful when listening on port 0.
func (s *Server) Addr() string {
	if s.listener == nil {
		return s.config.Addr
	}
	return s.listener.Addr().String()
}

// Stop shuts the HTTP server down and disconnects every client. A stopped
// server cannot be started again.
func (s *Server) Stop(ctx context.Context) error {
	if !atomic.CompareAndSwapInt32(&s.running, 1, 0) {
		return ErrServerNotRunning
	}
	atomic.StoreInt32(&s.closed, 1)

	s.logger.Info("Stopping server")
	close(s.stopChan)

	// Shutdown does not wait for hijacked websocket connections.
	err := s.http.Shutdown(ctx)
	s.clients.Range(func(_, value any) bool {
		value.(*ClientSession).close()
		return true
	})
	s.workerGroup.Wait()

	s.logger.Info("Server stopped")
	return err
}

// Close stops the server if needed and makes it unusable.
func (s *Server) Close() error {
	if !atomic.CompareAndSwapInt32(&s.closed, 0, 1) {
		return nil
	}
	if atomic.LoadInt32(&s.running) == 1 {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return s.Stop(ctx)
	}
	return nil
}

// Run starts the server and blocks until ctx is cancelled.
func (s *Server) Run(ctx context.Context) error {
	if err := s.Start(ctx); err != nil {
		return err
	}
	<-ctx.Done()
	return s.Close()
}

// GetStats returns server statistics
func (s *Server) GetStats() Stats {
	return Stats{
		ClientCount: atomic.LoadInt64(&s.clientCount),
		Broadcasts:  atomic.LoadUint64(&s.broadcasts),
		Running:     atomic.LoadInt32(&s.running) == 1,
	}
}
