package http

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const (
	rateLimitPerMinute   = 60
	rateLimitStaleAfter  = 10 * time.Minute
	rateLimitSweepPeriod = 5 * time.Minute
)

// rateLimiter is a simple in-memory per-IP rate limiter. It caps POST
// submissions so a stuck htmx retry loop cannot flood the decision log.
type rateLimiter struct {
	mu           sync.Mutex
	clients      map[string]*clientInfo
	hits         prometheus.Counter
	stopCleanup  chan struct{}
	shutdownOnce sync.Once
}

type clientInfo struct {
	lastRequest time.Time
	requests    int
}

func newRateLimiter(hits prometheus.Counter) *rateLimiter {
	rl := &rateLimiter{
		clients:     make(map[string]*clientInfo),
		hits:        hits,
		stopCleanup: make(chan struct{}),
	}
	go rl.startCleanup()
	return rl
}

// startCleanup runs periodic cleanup to remove stale client entries.
func (rl *rateLimiter) startCleanup() {
	ticker := time.NewTicker(rateLimitSweepPeriod)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			rl.cleanupStaleEntries()
		case <-rl.stopCleanup:
			return
		}
	}
}

func (rl *rateLimiter) cleanupStaleEntries() {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	cutoff := time.Now().Add(-rateLimitStaleAfter)
	for ip, client := range rl.clients {
		if client.lastRequest.Before(cutoff) {
			delete(rl.clients, ip)
		}
	}
}

// stop shuts down the cleanup goroutine.
func (rl *rateLimiter) stop() {
	rl.shutdownOnce.Do(func() {
		close(rl.stopCleanup)
	})
}

// allow reports whether a request from the given IP is within the
// per-minute budget. The counter resets one minute after the first
// request of the current window.
func (rl *rateLimiter) allow(clientIP string) bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := time.Now()
	client, exists := rl.clients[clientIP]

	if !exists {
		rl.clients[clientIP] = &clientInfo{
			lastRequest: now,
			requests:    1,
		}
		return true
	}

	if now.Sub(client.lastRequest) > time.Minute {
		client.requests = 1
		client.lastRequest = now
		return true
	}

	client.requests++
	client.lastRequest = now

	if client.requests > rateLimitPerMinute {
		if rl.hits != nil {
			rl.hits.Inc()
		}
		return false
	}

	return true
}
