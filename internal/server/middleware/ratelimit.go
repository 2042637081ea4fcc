package middleware

import (
	"net"
	"net/http"
	"strings"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// RateLimit returns middleware that applies per-client token-bucket rate
// limiting. Each unique client IP gets its own limiter with the given rate
// and burst; idle limiters are evicted after a few minutes so the map does
// not grow without bound.
func RateLimit(rps float64, burst int) func(http.Handler) http.Handler {
	limiters := &clientLimiters{
		entries: make(map[string]*limiterEntry),
		rate:    rate.Limit(rps),
		burst:   burst,
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !limiters.get(extractClientIP(r)).Allow() {
				w.Header().Set("Content-Type", "application/json; charset=utf-8")
				w.Header().Set("Retry-After", "1")
				w.WriteHeader(http.StatusTooManyRequests)
				w.Write([]byte(`{"error":"rate limit exceeded"}`))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// idleEviction is how long an unused per-client limiter survives.
const idleEviction = 5 * time.Minute

type limiterEntry struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

type clientLimiters struct {
	mu      sync.Mutex
	entries map[string]*limiterEntry
	rate    rate.Limit
	burst   int
	sweep   time.Time
}

// get returns the limiter for the given client, creating one on first sight
// and opportunistically evicting stale entries.
func (c *clientLimiters) get(client string) *rate.Limiter {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := time.Now()
	if now.Sub(c.sweep) > idleEviction {
		for k, e := range c.entries {
			if now.Sub(e.lastSeen) > idleEviction {
				delete(c.entries, k)
			}
		}
		c.sweep = now
	}

	e, ok := c.entries[client]
	if !ok {
		e = &limiterEntry{limiter: rate.NewLimiter(c.rate, c.burst)}
		c.entries[client] = e
	}
	e.lastSeen = now
	return e.limiter
}

// extractClientIP attempts to determine the real client IP from standard
// proxy headers, falling back to the direct remote address.
func extractClientIP(r *http.Request) string {
	// Check X-Forwarded-For first (may contain multiple IPs).
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		parts := strings.SplitN(xff, ",", 2)
		ip := strings.TrimSpace(parts[0])
		if ip != "" {
			return ip
		}
	}

	// Check X-Real-IP.
	if xri := r.Header.Get("X-Real-IP"); xri != "" {
		return strings.TrimSpace(xri)
	}

	// Fall back to RemoteAddr.
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
