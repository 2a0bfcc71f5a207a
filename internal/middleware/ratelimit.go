package middleware

import (
	"log"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/ellsondrew-png/inventory-system-tml/httpx"
	"golang.org/x/time/rate"
)

const (
	limiterIdleTTL     = 30 * time.Minute
	limiterCleanupTick = 10 * time.Minute
)

type clientLimiter struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// LoginLimiter throttles login attempts per client IP.
type LoginLimiter struct {
	mu      sync.Mutex
	clients map[string]*clientLimiter
	limit   rate.Limit
	burst   int
	now     func() time.Time
}

// NewLoginLimiter allows perMinute attempts per IP with the given burst.
func NewLoginLimiter(perMinute, burst int) *LoginLimiter {
	if perMinute <= 0 {
		perMinute = 10
	}
	if burst <= 0 {
		burst = 1
	}
	return &LoginLimiter{
		clients: make(map[string]*clientLimiter),
		limit:   rate.Every(time.Minute / time.Duration(perMinute)),
		burst:   burst,
		now:     time.Now,
	}
}

func (l *LoginLimiter) get(ip string) *rate.Limiter {
	l.mu.Lock()
	defer l.mu.Unlock()
	c, ok := l.clients[ip]
	if !ok {
		c = &clientLimiter{limiter: rate.NewLimiter(l.limit, l.burst)}
		l.clients[ip] = c
	}
	c.lastSeen = l.now()
	return c.limiter
}

// Cleanup drops limiters idle for longer than the idle TTL and returns
// how many were removed.
func (l *LoginLimiter) Cleanup() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	removed := 0
	for ip, c := range l.clients {
		if l.now().Sub(c.lastSeen) > limiterIdleTTL {
			delete(l.clients, ip)
			removed++
		}
	}
	return removed
}

// Run calls Cleanup periodically until stop is closed.
func (l *LoginLimiter) Run(stop <-chan struct{}) {
	t := time.NewTicker(limiterCleanupTick)
	defer t.Stop()
	for {
		select {
		case <-stop:
			return
		case <-t.C:
			if n := l.Cleanup(); n > 0 {
				log.Printf("login limiter cleanup removed %d idle clients", n)
			}
		}
	}
}

// Limit answers 429 once the client IP has used up its attempts.
func (l *LoginLimiter) Limit(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ip := clientIP(r)
		if !l.get(ip).Allow() {
			log.Printf("login rate limit exceeded for %s", ip)
			w.Header().Set("Retry-After", "60")
			httpx.JSONError(w, http.StatusTooManyRequests, "too_many_attempts", nil)
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
