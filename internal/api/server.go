// Package api provides the operator HTTP surface for observing the
// simulation. GET endpoints are read-only; this is not the chat transport,
// which lives outside the core.
package api

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/talgya/chatlife/internal/scheduler"
	"github.com/talgya/chatlife/internal/sim"
)

// Server serves simulation state over HTTP.
type Server struct {
	Core  *sim.Core
	Sched *scheduler.Scheduler
	Port  int

	started time.Time
}

// Start begins serving the HTTP API in a goroutine.
func (s *Server) Start() {
	s.started = time.Now()

	// Event history and leaderboards hit the database per request.
	queryLimiter := NewRateLimiter(120, time.Minute)

	mux := http.NewServeMux()
	mux.HandleFunc("/api/v1/status", s.handleStatus)
	mux.HandleFunc("/api/v1/top", RateLimitMiddleware(queryLimiter, s.handleTop))
	mux.HandleFunc("/api/v1/events", RateLimitMiddleware(queryLimiter, s.handleEvents))

	addr := fmt.Sprintf(":%d", s.Port)
	slog.Info("HTTP API starting", "addr", addr)

	go func() {
		if err := http.ListenAndServe(addr, mux); err != nil {
			slog.Error("HTTP server error", "error", err)
		}
	}()
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	chats := s.Sched.Chats()
	writeJSON(w, map[string]any{
		"uptime_seconds":  int(time.Since(s.started).Seconds()),
		"scheduled_chats": len(chats),
		"chat_ids":        chats,
	})
}

func (s *Server) handleTop(w http.ResponseWriter, r *http.Request) {
	chatID, ok := chatParam(w, r)
	if !ok {
		return
	}

	rows, err := s.Core.Ledger().Leaderboard(chatID, 10)
	if err != nil {
		http.Error(w, "leaderboard query failed", http.StatusInternalServerError)
		return
	}
	writeJSON(w, rows)
}

func (s *Server) handleEvents(w http.ResponseWriter, r *http.Request) {
	chatID, ok := chatParam(w, r)
	if !ok {
		return
	}

	limit := 50
	if v := r.URL.Query().Get("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 && n <= 200 {
			limit = n
		}
	}

	rows, err := s.Core.Ledger().RecentEvents(chatID, limit)
	if err != nil {
		http.Error(w, "event query failed", http.StatusInternalServerError)
		return
	}
	writeJSON(w, rows)
}

func chatParam(w http.ResponseWriter, r *http.Request) (int64, bool) {
	v := r.URL.Query().Get("chat")
	if v == "" {
		http.Error(w, "missing chat parameter", http.StatusBadRequest)
		return 0, false
	}
	id, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		http.Error(w, "bad chat parameter", http.StatusBadRequest)
		return 0, false
	}
	return id, true
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Debug("response encode failed", "error", err)
	}
}
