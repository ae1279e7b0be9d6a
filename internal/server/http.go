package server

import (
	"bytes"
	"encoding/json"
	"net/http"

	"github.com/zeusync/horde/internal/core/observability/log"
	"github.com/zeusync/horde/internal/game"
)

// Handler routes the feed endpoints.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /snapshot", s.handleSnapshot)
	mux.HandleFunc("GET /metrics", s.handleMetrics)
	mux.HandleFunc("GET /ws", s.handleWebSocket)
	return mux
}

func (s *Server) handleSnapshot(w http.ResponseWriter, _ *http.Request) {
	s.writeJSON(w, s.engine.Snapshot())
}

type metricsResponse struct {
	Engine game.Metrics `json:"engine"`
	Feed   Stats        `json:"feed"`
}

func (s *Server) handleMetrics(w http.ResponseWriter, _ *http.Request) {
	s.writeJSON(w, metricsResponse{Engine: s.engine.Metrics(), Feed: s.GetStats()})
}

func (s *Server) writeJSON(w http.ResponseWriter, v any) {
	s.buffers.With(func(buf *bytes.Buffer) {
		if err := json.NewEncoder(buf).Encode(v); err != nil {
			s.logger.Error("Failed to encode response", log.Error(err))
			http.Error(w, "encoding failed", http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write(buf.Bytes())
	})
}
