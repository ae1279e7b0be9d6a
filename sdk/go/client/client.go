// Package client provides a Go SDK for the horde snapshot feed.
package client

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"

	"github.com/zeusync/horde/internal/core/observability/log"
	"github.com/zeusync/horde/internal/core/systems/physics"
	"github.com/zeusync/horde/internal/game"
	"github.com/zeusync/horde/internal/server"
)

// Client represents a feed connection
type Client struct {
	// conn and id are guarded by writeMutex.
	conn *websocket.Conn
	id   string

	latest atomic.Pointer[game.Snapshot]
	frames uint64 // atomic

	// Event handlers
	snapshotHandlers []SnapshotHandler
	eventHandlers    map[EventType][]EventHandler
	handlerMutex     sync.RWMutex

	writeMutex sync.Mutex

	// Lifecycle
	connecting int32 // atomic bool, held while dialing
	connected  int32 // atomic bool, set once conn is usable
	closed     int32 // atomic bool

	config Config
	logger log.Log

	workerGroup sync.WaitGroup
}

// Config holds configuration for the client
type Config struct {
	// ServerURL is the websocket endpoint, e.g. ws://127.0.0.1:8080/ws.
	ServerURL      string
	ConnectTimeout time.Duration
	// ReadTimeout bounds the silence between two frames.
	ReadTimeout time.Duration
	LogLevel    log.Level
}

// DefaultClientConfig returns default client configuration
func DefaultClientConfig() Config {
	return Config{
		ServerURL:      "ws://127.0.0.1:8080/ws",
		ConnectTimeout: 10 * time.Second,
		ReadTimeout:    30 * time.Second,
		LogLevel:       log.LevelInfo,
	}
}

// SnapshotHandler is called from the read loop for every frame.
type SnapshotHandler func(snap *game.Snapshot)

// EventHandler defines a function type for handling client events
type EventHandler func(event Event)

// EventType represents different types of client events
type EventType string

const (
	EventTypeConnected    EventType = "connected"
	EventTypeDisconnected EventType = "disconnected"
	EventTypeError        EventType = "error"
)

// Event represents a client event
type Event struct {
	Type      EventType
	Timestamp time.Time
	Error     error
}

// Stats contains client statistics
type Stats struct {
	Frames    uint64
	Connected bool
	LastTick  uint64
}

func NewClient(config Config, logger log.Log) *Client {
	if logger == nil {
		logger = log.New(config.LogLevel)
	}
	return &Client{
		eventHandlers: make(map[EventType][]EventHandler),
		config:        config,
		logger:        logger.With(log.String("component", "client")),
	}
}

// Connect dials the feed and starts the read loop.
func (c *Client) Connect(ctx context.Context) error {
	if atomic.LoadInt32(&c.closed) == 1 {
		return ErrClientClosed
	}
	if c.config.ServerURL == "" {
		return fmt.Errorf("%w: empty server url", ErrInvalidConfig)
	}
	if !atomic.CompareAndSwapInt32(&c.connecting, 0, 1) {
		return ErrAlreadyConnected
	}
	defer atomic.StoreInt32(&c.connecting, 0)
	if c.IsConnected() {
		return ErrAlreadyConnected
	}

	c.logger.Info("Connecting to server", log.String("url", c.config.ServerURL))

	connectCtx, cancel := context.WithTimeout(ctx, c.config.ConnectTimeout)
	defer cancel()

	conn, resp, err := websocket.DefaultDialer.DialContext(connectCtx, c.config.ServerURL, nil)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			err = fmt.Errorf("%w: %w", ErrConnectionTimeout, err)
		}
		c.logger.Error("Failed to connect to server", log.String("url", c.config.ServerURL), log.Error(err))
		return err
	}
	id := resp.Header.Get(server.ClientIDHeader)
	c.writeMutex.Lock()
	c.conn = conn
	c.id = id
	c.writeMutex.Unlock()
	atomic.StoreInt32(&c.connected, 1)

	c.logger.Info("Connected to server",
		log.String("client_id", id),
		log.String("remote_addr", conn.RemoteAddr().String()))

	c.workerGroup.Add(1)
	go func() {
		defer c.workerGroup.Done()
		c.readLoop(conn)
	}()

	c.emitEvent(Event{Type: EventTypeConnected, Timestamp: time.Now()})
	return nil
}

// ID is the id the server assigned on connect.
func (c *Client) ID() string {
	c.writeMutex.Lock()
	defer c.writeMutex.Unlock()
	return c.id
}

func (c *Client) IsConnected() bool { return atomic.LoadInt32(&c.connected) == 1 }

// Disconnect closes the connection to the server
func (c *Client) Disconnect() error {
	if !atomic.CompareAndSwapInt32(&c.connected, 1, 0) {
		return ErrNotConnected
	}
	c.logger.Info("Disconnecting from server")

	c.writeMutex.Lock()
	conn := c.conn
	_ = conn.WriteControl(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
		time.Now().Add(time.Second))
	c.writeMutex.Unlock()
	_ = conn.Close()
	c.workerGroup.Wait()

	c.emitEvent(Event{Type: EventTypeDisconnected, Timestamp: time.Now()})
	return nil
}

// Close closes the client and releases all resources
func (c *Client) Close() error {
	if !atomic.CompareAndSwapInt32(&c.closed, 0, 1) {
		return nil
	}
	if c.IsConnected() {
		_ = c.Disconnect()
	}
	c.logger.Info("Client closed")
	return nil
}

// SendInput forwards player input to the engine behind the feed. Nil fields
// are left unchanged on the server.
func (c *Client) SendInput(cursor *physics.Vec2, active *bool) error {
	if atomic.LoadInt32(&c.closed) == 1 {
		return ErrClientClosed
	}
	c.writeMutex.Lock()
	defer c.writeMutex.Unlock()
	if !c.IsConnected() || c.conn == nil {
		return ErrNotConnected
	}
	_ = c.conn.SetWriteDeadline(time.Now().Add(5 * time.Second))
	return c.conn.WriteJSON(server.InputMessage{Cursor: cursor, Active: active})
}

// Latest returns the most recent snapshot.
func (c *Client) Latest() (game.Snapshot, error) {
	snap := c.latest.Load()
	if snap == nil {
		return game.Snapshot{}, ErrNoSnapshot
	}
	return *snap, nil
}

// OnSnapshot registers a handler for every received snapshot.
func (c *Client) OnSnapshot(handler SnapshotHandler) {
	c.handlerMutex.Lock()
	defer c.handlerMutex.Unlock()
	c.snapshotHandlers = append(c.snapshotHandlers, handler)
}

// OnEvent registers an event handler
func (c *Client) OnEvent(eventType EventType, handler EventHandler) {
	c.handlerMutex.Lock()
	defer c.handlerMutex.Unlock()
	c.eventHandlers[eventType] = append(c.eventHandlers[eventType], handler)
}

func (c *Client) GetStats() Stats {
	st := Stats{Frames: atomic.LoadUint64(&c.frames), Connected: c.IsConnected()}
	if snap := c.latest.Load(); snap != nil {
		st.LastTick = snap.Tick
	}
	return st
}

func (c *Client) readLoop(conn *websocket.Conn) {
	c.logger.Debug("Read loop started")
	defer c.logger.Debug("Read loop stopped")

	for {
		if c.config.ReadTimeout > 0 {
			_ = conn.SetReadDeadline(time.Now().Add(c.config.ReadTimeout))
		}
		_, data, err := conn.ReadMessage()
		if err != nil {
			// A read error after Disconnect is the expected way out.
			if atomic.CompareAndSwapInt32(&c.connected, 1, 0) {
				c.logger.Warn("Connection lost", log.Error(err))
				_ = conn.Close()
				c.emitEvent(Event{Type: EventTypeError, Timestamp: time.Now(), Error: err})
				c.emitEvent(Event{Type: EventTypeDisconnected, Timestamp: time.Now()})
			}
			return
		}

		snap := new(game.Snapshot)
		if err := json.Unmarshal(data, snap); err != nil {
			c.logger.Warn("Dropping malformed frame", log.Error(err))
			continue
		}
		c.latest.Store(snap)
		atomic.AddUint64(&c.frames, 1)

		c.handlerMutex.RLock()
		handlers := c.snapshotHandlers
		c.handlerMutex.RUnlock()
		for _, h := range handlers {
			h(snap)
		}
	}
}

func (c *Client) emitEvent(event Event) {
	c.handlerMutex.RLock()
	handlers := c.eventHandlers[event.Type]
	c.handlerMutex.RUnlock()
	for _, h := range handlers {
		h(event)
	}
}
