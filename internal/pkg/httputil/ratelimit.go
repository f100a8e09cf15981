package httputil

import (
	"net/http"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// RateLimitMiddleware throttles requests per remote address. Applied to the
// auth endpoints to slow down credential stuffing; other routes are untouched.
func RateLimitMiddleware(rps float64, burst int) func(http.Handler) http.Handler {
	limiters := &visitorLimiters{
		visitors: make(map[string]*visitor),
		rps:      rps,
		burst:    burst,
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !limiters.allow(r.RemoteAddr) {
				Error(w, http.StatusTooManyRequests, "too many requests")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

type visitor struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

type visitorLimiters struct {
	mu       sync.Mutex
	visitors map[string]*visitor
	rps      float64
	burst    int
}

func (v *visitorLimiters) allow(addr string) bool {
	v.mu.Lock()
	defer v.mu.Unlock()

	vis, ok := v.visitors[addr]
	if !ok {
		vis = &visitor{limiter: rate.NewLimiter(rate.Limit(v.rps), v.burst)}
		v.visitors[addr] = vis
	}
	vis.lastSeen = time.Now()

	// Opportunistic cleanup of stale entries
	if len(v.visitors) > 10000 {
		cutoff := time.Now().Add(-10 * time.Minute)
		for k, e := range v.visitors {
			if e.lastSeen.Before(cutoff) {
				delete(v.visitors, k)
			}
		}
	}

	return vis.limiter.Allow()
}
