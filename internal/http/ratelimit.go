package http

import (
	"net"
	"net/http"
	"sync"
	"time"

	"ledgerbot/internal/cache"
)

const (
	defaultRequestsPerMinute = 60
	maxTrackedClients        = 1024
)

// limiter counts requests per client. A client's counter starts over once it
// has been idle for a full minute.
type limiter struct {
	mu      sync.Mutex
	clients *cache.LRUCache[string, int]
	limit   int
}

func newLimiter(requestsPerMinute int) *limiter {
	if requestsPerMinute <= 0 {
		requestsPerMinute = defaultRequestsPerMinute
	}
	return &limiter{
		clients: cache.NewLRUCache[string, int](maxTrackedClients, time.Minute),
		limit:   requestsPerMinute,
	}
}

func (l *limiter) allow(clientIP string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	n, _ := l.clients.Get(clientIP)
	n++
	l.clients.Set(clientIP, n)
	return n <= l.limit
}

func (l *limiter) middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !l.allow(clientIP(r)) {
			w.Header().Set("Retry-After", "60")
			http.Error(w, "Rate limit exceeded. Please try again later.", http.StatusTooManyRequests)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
