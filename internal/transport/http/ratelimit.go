package http

import (
	"sync"
	"time"
)

// rateLimiter caps websocket upgrades per client IP per minute.
// Counters reset on a fixed window; a nil or zero-limit limiter
// allows everything.
type rateLimiter struct {
	mu       sync.Mutex
	limit    int
	counters map[string]int
	window   time.Time
}

func newRateLimiter(limit int) *rateLimiter {
	return &rateLimiter{
		limit:    limit,
		counters: make(map[string]int),
		window:   time.Now(),
	}
}

func (r *rateLimiter) allow(ip string) bool {
	if r == nil || r.limit <= 0 {
		return true
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	now := time.Now()
	if now.Sub(r.window) >= time.Minute {
		r.counters = make(map[string]int)
		r.window = now
	}

	r.counters[ip]++
	return r.counters[ip] <= r.limit
}
