package api

import (
	"net"
	"net/http"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/nerrad567/lookingglass/internal/infrastructure/config"
)

// Idle client buckets are dropped once the table grows past
// limiterSweepSize.
const (
	limiterSweepSize = 1024
	limiterIdleTTL   = 10 * time.Minute
)

// clientLimiter holds one token bucket per client address.
type clientLimiter struct {
	limit rate.Limit
	burst int

	mu      sync.Mutex
	clients map[string]*clientBucket
	now     func() time.Time
}

type clientBucket struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// newClientLimiter returns nil when cfg disables limiting.
func newClientLimiter(cfg config.RateLimitConfig) *clientLimiter {
	if cfg.PerMinute <= 0 {
		return nil
	}
	burst := cfg.Burst
	if burst <= 0 {
		burst = 1
	}
	return &clientLimiter{
		limit:   rate.Limit(float64(cfg.PerMinute) / 60),
		burst:   burst,
		clients: make(map[string]*clientBucket),
		now:     time.Now,
	}
}

// allow reports whether client may make a request now.
func (l *clientLimiter) allow(client string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	if len(l.clients) >= limiterSweepSize {
		for k, b := range l.clients {
			if now.Sub(b.lastSeen) > limiterIdleTTL {
				delete(l.clients, k)
			}
		}
	}

	b, ok := l.clients[client]
	if !ok {
		b = &clientBucket{limiter: rate.NewLimiter(l.limit, l.burst)}
		l.clients[client] = b
	}
	b.lastSeen = now
	return b.limiter.AllowN(now, 1)
}

// clientAddress is the remote IP without the port.
func clientAddress(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

// rateLimitMiddleware throttles execute routes. Rejections use the error
// shape of the route they guard.
func (s *Server) rateLimitMiddleware(legacy bool) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if s.limiter == nil {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			client := clientAddress(r)
			if !s.limiter.allow(client) {
				s.logger.Warn("execute rate limited",
					"client", client,
					"path", r.URL.Path,
					"request_id", requestID(r.Context()),
				)
				w.Header().Set("Retry-After", "60")
				if legacy {
					writeLegacyError(w, http.StatusTooManyRequests, msgRateLimited)
				} else {
					writeError(w, http.StatusTooManyRequests, ErrCodeRateLimited, msgRateLimited)
				}
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
