package middleware

import (
	"net"
	"net/http"
	"strconv"
	"sync"
	"time"

	appErrors "investigation-canvas/pkg/errors"
)

// RateLimiter caps requests per client over a sliding window
type RateLimiter struct {
	mu      sync.Mutex
	windows map[string][]time.Time
	limit   int
	window  time.Duration
	errors  *appErrors.ErrorHandler
	now     func() time.Time
	pruned  time.Time
}

// NewRateLimiter allows limit requests per client per window
func NewRateLimiter(limit int, window time.Duration, errorHandler *appErrors.ErrorHandler) *RateLimiter {
	return &RateLimiter{
		windows: make(map[string][]time.Time),
		limit:   limit,
		window:  window,
		errors:  errorHandler,
		now:     time.Now,
	}
}

// Allow records a request from key and reports whether it is within the limit
func (l *RateLimiter) Allow(key string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	start := now.Add(-l.window)
	if now.Sub(l.pruned) > l.window {
		l.pruneLocked(start)
		l.pruned = now
	}

	requests := l.windows[key]
	kept := requests[:0]
	for _, at := range requests {
		if at.After(start) {
			kept = append(kept, at)
		}
	}

	if len(kept) >= l.limit {
		l.windows[key] = kept
		return false
	}
	l.windows[key] = append(kept, now)
	return true
}

// pruneLocked drops clients with no requests since start
func (l *RateLimiter) pruneLocked(start time.Time) {
	for key, requests := range l.windows {
		if len(requests) == 0 || !requests[len(requests)-1].After(start) {
			delete(l.windows, key)
		}
	}
}

// Handler rejects requests over the limit with 429, keyed by remote address.
// Put it after chi's RealIP so proxied clients are told apart.
func (l *RateLimiter) Handler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !l.Allow(clientKey(r)) {
			w.Header().Set("Retry-After", strconv.Itoa(int(l.window.Seconds())))
			l.errors.Handle(w, r, appErrors.NewRateLimitError(l.limit, l.window))
			return
		}
		next.ServeHTTP(w, r)
	})
}

func clientKey(r *http.Request) string {
	if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil {
		return host
	}
	return r.RemoteAddr
}
