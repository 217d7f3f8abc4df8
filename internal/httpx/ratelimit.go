package httpx

import (
	"net"
	"net/http"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// RateLimiter throttles requests per client IP. Entries for idle IPs are
// swept by a background goroutine started on first use.
type RateLimiter struct {
	rps   rate.Limit
	burst int

	clients     sync.Map // ip -> *ipLimiter
	cleanupOnce sync.Once
}

type ipLimiter struct {
	mu   sync.Mutex
	lim  *rate.Limiter
	last time.Time
}

func NewRateLimiter(rps float64, burst int) *RateLimiter {
	return &RateLimiter{rps: rate.Limit(rps), burst: burst}
}

// Middleware returns 429 once a client exceeds its bucket.
func (rl *RateLimiter) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !rl.Allow(clientIP(r)) {
			writeMsg(w, http.StatusTooManyRequests, "too many requests, slow down")
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (rl *RateLimiter) Allow(ip string) bool {
	rl.cleanupOnce.Do(func() { go rl.sweep() })

	v, _ := rl.clients.LoadOrStore(ip, &ipLimiter{
		lim:  rate.NewLimiter(rl.rps, rl.burst),
		last: time.Now(),
	})
	il := v.(*ipLimiter)

	il.mu.Lock()
	il.last = time.Now()
	ok := il.lim.Allow()
	il.mu.Unlock()
	return ok
}

// sweep drops limiters for IPs not seen in 30 minutes.
func (rl *RateLimiter) sweep() {
	ticker := time.NewTicker(5 * time.Minute)
	defer ticker.Stop()
	for range ticker.C {
		cutoff := time.Now().Add(-30 * time.Minute)
		rl.clients.Range(func(key, value any) bool {
			il := value.(*ipLimiter)
			il.mu.Lock()
			stale := il.last.Before(cutoff)
			il.mu.Unlock()
			if stale {
				rl.clients.Delete(key)
			}
			return true
		})
	}
}

// clientIP trusts middleware.RealIP to have rewritten RemoteAddr already.
func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
