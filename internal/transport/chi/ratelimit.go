package chi

import (
	"net/http"

	"golang.org/x/time/rate"
)

// Limiter decides whether a request may proceed now.
type Limiter interface {
	Allow() bool
}

// NewLimiter returns a token bucket refilled at rps with the given burst,
// or nil (no limiting) when rps is not positive.
func NewLimiter(rps float64, burst int) Limiter {
	if rps <= 0 {
		return nil
	}
	return rate.NewLimiter(rate.Limit(rps), max(burst, 1))
}

// RateLimitMiddleware rejects requests with 429 once the limiter is exhausted.
// A nil limiter disables the middleware. Health and metrics are never limited.
func RateLimitMiddleware(l Limiter) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if l == nil {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if _, ok := exemptPaths[r.URL.Path]; ok {
				next.ServeHTTP(w, r)
				return
			}
			if !l.Allow() {
				w.Header().Set("Retry-After", "1")
				writeError(w, http.StatusTooManyRequests, ErrorCodeRateLimited, "rate limited")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
