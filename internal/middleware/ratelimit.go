package middleware

import (
	"log/slog"
	"net"
	"net/http"
	"strings"
	"sync"
	"time"
)

// window counts the requests of one client since start.
type window struct {
	start time.Time
	count int
}

// RateLimiter allows limit requests per client in consecutive fixed windows.
type RateLimiter struct {
	limit  int
	period time.Duration

	mu      sync.RWMutex
	clients map[string]*window

	stop chan struct{}
	done chan struct{}
	once sync.Once
}

// NewRateLimiter starts a limiter and its sweeper goroutine, release it with Stop.
func NewRateLimiter(limit int, period time.Duration) *RateLimiter {
	rl := &RateLimiter{
		limit:   limit,
		period:  period,
		clients: make(map[string]*window),
		stop:    make(chan struct{}),
		done:    make(chan struct{}),
	}
	go rl.sweepLoop(5 * time.Minute)
	return rl
}

// Allow records a request from client and reports whether it is within the limit.
func (rl *RateLimiter) Allow(client string) bool {
	now := time.Now()

	rl.mu.Lock()
	defer rl.mu.Unlock()

	w, ok := rl.clients[client]
	if !ok || now.Sub(w.start) >= rl.period {
		rl.clients[client] = &window{start: now, count: 1}
		return true
	}
	if w.count >= rl.limit {
		return false
	}
	w.count++
	return true
}

// Stop ends the sweeper. It is safe to call more than once.
func (rl *RateLimiter) Stop() error {
	rl.once.Do(func() { close(rl.stop) })
	<-rl.done
	return nil
}

func (rl *RateLimiter) sweepLoop(every time.Duration) {
	defer close(rl.done)

	ticker := time.NewTicker(every)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			rl.sweep()
		case <-rl.stop:
			return
		}
	}
}

// sweep forgets clients whose window is over.
func (rl *RateLimiter) sweep() {
	now := time.Now()

	rl.mu.Lock()
	defer rl.mu.Unlock()

	for client, w := range rl.clients {
		if now.Sub(w.start) >= rl.period {
			delete(rl.clients, client)
		}
	}
}

// RateLimitAuth guards the login, registration and password forgotten posts.
func RateLimitAuth(limiter *RateLimiter) func(http.HandlerFunc) http.HandlerFunc {
	return func(next http.HandlerFunc) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			ip := getClientIP(r)
			if !limiter.Allow(ip) {
				slog.Warn("rate limit exceeded", "ip", ip, "path", r.URL.Path)
				http.Error(w, "Too many requests. Please try again later.", http.StatusTooManyRequests)
				return
			}
			next(w, r)
		}
	}
}

// getClientIP prefers the proxy headers over the socket address.
func getClientIP(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		first, _, _ := strings.Cut(xff, ",")
		return strings.TrimSpace(first)
	}
	if xri := strings.TrimSpace(r.Header.Get("X-Real-IP")); xri != "" {
		return xri
	}
	if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil {
		return host
	}
	return r.RemoteAddr
}
