package ratelimit

import (
	"encoding/json"
	"net"
	"net/http"
	"sync"
	"time"
)

type RateLimit interface {
	Allow(addr string) bool
}

type windowData struct {
	count       int
	windowStart time.Time
}

type FixedWindowLimiter struct {
	maxRequests int
	window      time.Duration
	requests    map[string]*windowData
	mutex       sync.Mutex
}

func New(maxRequests int, interval time.Duration) *FixedWindowLimiter {
	return &FixedWindowLimiter{
		maxRequests: maxRequests,
		window:      interval,
		requests:    make(map[string]*windowData),
	}
}

func (rl *FixedWindowLimiter) Allow(addr string) bool {
	rl.mutex.Lock()
	defer rl.mutex.Unlock()

	now := time.Now()
	wd := rl.requests[addr]

	if wd == nil || now.Sub(wd.windowStart) > rl.window {
		if rl.maxRequests == 0 {
			return false
		}

		rl.requests[addr] = &windowData{
			count:       1,
			windowStart: now,
		}
		return true
	}

	if wd.count >= rl.maxRequests {
		return false
	}
	wd.count++

	return true
}

// Middleware rejects requests over the per-client limit with 429. Clients
// are keyed by remote IP; mutating wallet routes sit behind this so a looping
// frontend cannot flood the record store.
func (rl *FixedWindowLimiter) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		host, _, err := net.SplitHostPort(r.RemoteAddr)
		if err != nil {
			host = r.RemoteAddr
		}

		if !rl.Allow(host) {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusTooManyRequests)
			json.NewEncoder(w).Encode(map[string]string{"error": "Too many requests"})
			return
		}

		next.ServeHTTP(w, r)
	})
}
