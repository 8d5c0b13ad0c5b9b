// Rate limiter for endpoints that hit the database per request.
package api

import (
	"net"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"
)

// RateLimiter grants each client a fixed request allowance per window.
type RateLimiter struct {
	mu      sync.Mutex
	clients map[string]*allowance

	limit  int
	window time.Duration
}

type allowance struct {
	remaining int
	resetAt   time.Time
}

// NewRateLimiter allows limit requests per client per window.
func NewRateLimiter(limit int, window time.Duration) *RateLimiter {
	rl := &RateLimiter{
		clients: make(map[string]*allowance),
		limit:   limit,
		window:  window,
	}
	go rl.sweep()
	return rl
}

// Allow reports whether the client may make another request now.
func (rl *RateLimiter) Allow(client string) bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := time.Now()
	a, ok := rl.clients[client]
	if !ok || now.After(a.resetAt) {
		rl.clients[client] = &allowance{remaining: rl.limit - 1, resetAt: now.Add(rl.window)}
		return true
	}
	if a.remaining > 0 {
		a.remaining--
		return true
	}
	return false
}

// RetryAfter returns the seconds until the client's window resets.
func (rl *RateLimiter) RetryAfter(client string) int {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	a, ok := rl.clients[client]
	if !ok {
		return 0
	}
	remaining := time.Until(a.resetAt)
	if remaining <= 0 {
		return 0
	}
	return int(remaining.Seconds()) + 1
}

// sweep drops clients whose window expired long ago.
func (rl *RateLimiter) sweep() {
	for range time.Tick(time.Hour) {
		rl.mu.Lock()
		now := time.Now()
		for client, a := range rl.clients {
			if now.Sub(a.resetAt) > rl.window {
				delete(rl.clients, client)
			}
		}
		rl.mu.Unlock()
	}
}

// RateLimitMiddleware rejects over-limit clients with 429 and a Retry-After.
func RateLimitMiddleware(rl *RateLimiter, next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		client := clientKey(r)
		if !rl.Allow(client) {
			w.Header().Set("Retry-After", strconv.Itoa(rl.RetryAfter(client)))
			http.Error(w, "rate limit exceeded", http.StatusTooManyRequests)
			return
		}
		next(w, r)
	}
}

// clientKey identifies the caller: the first hop of X-Forwarded-For when
// proxied, the remote host otherwise.
func clientKey(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		first, _, _ := strings.Cut(xff, ",")
		return strings.TrimSpace(first)
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
