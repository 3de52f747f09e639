package middleware

import (
	"math"
	"net"
	"net/http"
	"strconv"
	"sync"
	"time"
)

// RateLimiter counts requests per client IP in fixed one-minute windows.
type RateLimiter struct {
	mu      sync.Mutex
	clients map[string]*window
	length  time.Duration
	now     func() time.Time

	stop chan struct{}
	once sync.Once
}

type window struct {
	start time.Time
	count int
}

// NewRateLimiter creates a limiter that drops expired windows every
// cleanupInterval. Call Stop on shutdown.
func NewRateLimiter(cleanupInterval time.Duration) *RateLimiter {
	rl := newRateLimiter(time.Minute, time.Now)
	go rl.sweep(cleanupInterval)
	return rl
}

func newRateLimiter(length time.Duration, now func() time.Time) *RateLimiter {
	return &RateLimiter{
		clients: make(map[string]*window),
		length:  length,
		now:     now,
		stop:    make(chan struct{}),
	}
}

// Stop ends the cleanup goroutine. Safe to call more than once.
func (rl *RateLimiter) Stop() {
	rl.once.Do(func() { close(rl.stop) })
}

// Limit allows perMinute requests per client IP and window and answers the
// rest with 429 and Retry-After set to the end of the window.
func (rl *RateLimiter) Limit(perMinute int) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ok, wait := rl.take(clientIP(r), perMinute)
			if !ok {
				w.Header().Set("Retry-After", strconv.Itoa(int(math.Ceil(wait.Seconds()))))
				writeError(w, http.StatusTooManyRequests, "rate limit exceeded")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// take counts one request for key. When the window is full it returns the
// time left until the window resets.
func (rl *RateLimiter) take(key string, limit int) (bool, time.Duration) {
	now := rl.now()

	rl.mu.Lock()
	defer rl.mu.Unlock()

	win, ok := rl.clients[key]
	if !ok || now.Sub(win.start) >= rl.length {
		win = &window{start: now}
		rl.clients[key] = win
	}
	if win.count >= limit {
		return false, win.start.Add(rl.length).Sub(now)
	}
	win.count++
	return true, 0
}

func (rl *RateLimiter) sweep(interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-rl.stop:
			return
		case <-ticker.C:
			rl.evictExpired()
		}
	}
}

func (rl *RateLimiter) evictExpired() {
	now := rl.now()

	rl.mu.Lock()
	defer rl.mu.Unlock()

	for key, win := range rl.clients {
		if now.Sub(win.start) >= rl.length {
			delete(rl.clients, key)
		}
	}
}

// clientIP strips the port so that all connections from one host share a window.
func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
