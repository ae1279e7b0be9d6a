package server

import (
	"encoding/json"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/zeusync/horde/internal/core/observability/log"
	"github.com/zeusync/horde/internal/core/systems/physics"
	"github.com/zeusync/horde/internal/game"
)

const (
	// ClientIDHeader carries the id assigned to a websocket client.
	ClientIDHeader = "X-Horde-Client"

	writeWait      = 5 * time.Second
	pongWait       = 30 * time.Second
	pingInterval   = pongWait * 9 / 10
	maxMessageSize = 1024
	sendBuffer     = 8
)

// InputMessage is what clients send over the websocket. Absent fields leave
// the engine's input untouched.
type InputMessage struct {
	Cursor *physics.Vec2 `json:"cursor,omitempty"`
	Active *bool         `json:"active,omitempty"`
}

// ClientSession represents a connected websocket client.
type ClientSession struct {
	ID          string
	ConnectedAt time.Time
	LastSeen    int64  // atomic unix nano
	Dropped     uint64 // atomic, frames skipped because the client lagged

	conn      *websocket.Conn
	send      chan []byte
	done      chan struct{}
	closeOnce sync.Once
}

func (c *ClientSession) close() {
	c.closeOnce.Do(func() {
		close(c.done)
		_ = c.conn.Close()
	})
}

func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	if int(atomic.LoadInt64(&s.clientCount)) >= s.config.MaxClients {
		s.logger.Warn("Maximum clients reached, rejecting connection",
			log.String("remote_addr", r.RemoteAddr))
		http.Error(w, ErrMaxClientsReached.Error(), http.StatusServiceUnavailable)
		return
	}

	id := uuid.NewString()
	conn, err := s.upgrader.Upgrade(w, r, http.Header{ClientIDHeader: []string{id}})
	if err != nil {
		s.logger.Warn("WebSocket upgrade failed", log.Error(err))
		return
	}

	session := &ClientSession{
		ID:          id,
		ConnectedAt: time.Now(),
		LastSeen:    time.Now().UnixNano(),
		conn:        conn,
		send:        make(chan []byte, sendBuffer),
		done:        make(chan struct{}),
	}
	s.clients.Store(id, session)
	atomic.AddInt64(&s.clientCount, 1)

	s.logger.Info("Client connected",
		log.String("client_id", id),
		log.String("remote_addr", conn.RemoteAddr().String()),
		log.Int64("total_clients", atomic.LoadInt64(&s.clientCount)))

	go s.writeLoop(session)
	s.readLoop(session)
}

// readLoop applies client input until the connection fails, then
// unregisters the session.
func (s *Server) readLoop(session *ClientSession) {
	clientLogger := s.logger.With(log.String("client_id", session.ID))
	defer func() {
		session.close()
		s.clients.Delete(session.ID)
		atomic.AddInt64(&s.clientCount, -1)
		clientLogger.Info("Client disconnected",
			log.Int64("total_clients", atomic.LoadInt64(&s.clientCount)),
			log.Uint64("dropped_frames", atomic.LoadUint64(&session.Dropped)))
	}()

	conn := session.conn
	conn.SetReadLimit(maxMessageSize)
	_ = conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		atomic.StoreInt64(&session.LastSeen, time.Now().UnixNano())
		return conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				clientLogger.Warn("Read failed", log.Error(err))
			}
			return
		}
		atomic.StoreInt64(&session.LastSeen, time.Now().UnixNano())
		_ = conn.SetReadDeadline(time.Now().Add(pongWait))

		var msg InputMessage
		if err := json.Unmarshal(data, &msg); err != nil {
			clientLogger.Debug("Ignoring malformed input", log.ErrorWithKey("reason", ErrInvalidMessage), log.Error(err))
			continue
		}
		s.applyInput(msg)
	}
}

func (s *Server) applyInput(msg InputMessage) {
	s.engine.UpdateInput(func(in *game.Input) {
		if msg.Cursor != nil {
			c := *msg.Cursor
			in.Cursor = &c
		}
		if msg.Active != nil {
			in.Active = *msg.Active
		}
	})
}

func (s *Server) writeLoop(session *ClientSession) {
	ticker := time.NewTicker(pingInterval)
	defer ticker.Stop()

	conn := session.conn
	for {
		select {
		case frame := <-session.send:
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(websocket.TextMessage, frame); err != nil {
				session.close()
				return
			}
		case <-ticker.C:
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				session.close()
				return
			}
		case <-session.done:
			return
		}
	}
}

// broadcaster encodes one snapshot per interval and hands it to every
// client. A client whose buffer is full skips the frame.
func (s *Server) broadcaster() {
	s.logger.Debug("Broadcaster started")
	defer s.logger.Debug("Broadcaster stopped")

	ticker := time.NewTicker(s.config.BroadcastInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if atomic.LoadInt64(&s.clientCount) == 0 {
				continue
			}
			s.broadcast()
		case <-s.stopChan:
			return
		}
	}
}

func (s *Server) broadcast() {
	buf := s.buffers.Get()
	defer s.buffers.Put(buf)
	if err := json.NewEncoder(buf).Encode(s.engine.Snapshot()); err != nil {
		s.logger.Error("Failed to encode snapshot", log.Error(err))
		return
	}
	// The frame outlives the pooled buffer.
	frame := append([]byte(nil), buf.Bytes()...)

	s.clients.Range(func(_, value any) bool {
		session := value.(*ClientSession)
		select {
		case session.send <- frame:
		default:
			atomic.AddUint64(&session.Dropped, 1)
		}
		return true
	})
	atomic.AddUint64(&s.broadcasts, 1)
}
