package middleware

import (
	"net/http"

	"golang.org/x/time/rate"
)

// RateLimiter throttles an endpoint with a token bucket shared across all
// callers.
type RateLimiter struct {
	limiter *rate.Limiter
}

// NewRateLimiter creates a rate limiter allowing r requests per second with
// the given burst.
func NewRateLimiter(r float64, burst int) *RateLimiter {
	return &RateLimiter{limiter: rate.NewLimiter(rate.Limit(r), burst)}
}

// Middleware returns an HTTP middleware that rejects requests over the limit
// with 429.
func (l *RateLimiter) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !l.limiter.Allow() {
			w.Header().Set("Retry-After", "1")
			w.WriteHeader(http.StatusTooManyRequests)
			w.Write([]byte("Rate limit exceeded"))
			return
		}
		next.ServeHTTP(w, r)
	})
}
