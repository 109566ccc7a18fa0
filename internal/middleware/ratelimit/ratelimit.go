// Package ratelimit throttles ledger writes per client address.
package ratelimit

import (
	"net/http"
	"strconv"
	"sync"
	"time"
)

// Config controls a Limiter. Zero fields take the defaults.
type Config struct {
	RequestsPerMinute int
	CleanupInterval   time.Duration
	// IdleTTL is how long an idle client is remembered.
	IdleTTL time.Duration
}

func DefaultConfig() Config {
	return Config{
		RequestsPerMinute: 60,
		CleanupInterval:   5 * time.Minute,
		IdleTTL:           10 * time.Minute,
	}
}

// Stats is reported on the readiness endpoint.
type Stats struct {
	Rejected int64 `json:"rejected"`
	Clients  int   `json:"clients"`
}

type window struct {
	start time.Time
	seen  time.Time
	count int
}

// Limiter counts requests per client in fixed one-minute windows.
type Limiter struct {
	cfg Config
	now func() time.Time

	mu       sync.Mutex
	windows  map[string]*window
	rejected int64

	done     chan struct{}
	stopOnce sync.Once
}

// NewLimiter starts the idle-client sweeper; call Stop to release it.
func NewLimiter(cfg Config) *Limiter {
	def := DefaultConfig()
	if cfg.RequestsPerMinute <= 0 {
		cfg.RequestsPerMinute = def.RequestsPerMinute
	}
	if cfg.CleanupInterval <= 0 {
		cfg.CleanupInterval = def.CleanupInterval
	}
	if cfg.IdleTTL <= 0 {
		cfg.IdleTTL = def.IdleTTL
	}
	l := &Limiter{
		cfg:     cfg,
		now:     time.Now,
		windows: make(map[string]*window),
		done:    make(chan struct{}),
	}
	go l.sweep()
	return l
}

// Allow records one request from client and reports whether it fits in
// the current window.
func (l *Limiter) Allow(client string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	w, ok := l.windows[client]
	if !ok || now.Sub(w.start) >= time.Minute {
		l.windows[client] = &window{start: now, seen: now, count: 1}
		return true
	}
	w.seen = now
	w.count++
	if w.count <= l.cfg.RequestsPerMinute {
		return true
	}
	l.rejected++
	return false
}

// RetryAfter returns whole seconds until client's window resets.
func (l *Limiter) RetryAfter(client string) int {
	l.mu.Lock()
	defer l.mu.Unlock()

	w, ok := l.windows[client]
	if !ok {
		return 0
	}
	left := w.start.Add(time.Minute).Sub(l.now())
	if left <= 0 {
		return 0
	}
	secs := int(left / time.Second)
	if left%time.Second != 0 {
		secs++
	}
	return secs
}

func (l *Limiter) sweep() {
	t := time.NewTicker(l.cfg.CleanupInterval)
	defer t.Stop()
	for {
		select {
		case <-l.done:
			return
		case <-t.C:
			l.evictIdle()
		}
	}
}

func (l *Limiter) evictIdle() int {
	l.mu.Lock()
	defer l.mu.Unlock()

	cutoff := l.now().Add(-l.cfg.IdleTTL)
	n := 0
	for client, w := range l.windows {
		if w.seen.Before(cutoff) {
			delete(l.windows, client)
			n++
		}
	}
	return n
}

func (l *Limiter) ActiveClients() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.windows)
}

func (l *Limiter) Stats() Stats {
	l.mu.Lock()
	defer l.mu.Unlock()
	return Stats{Rejected: l.rejected, Clients: len(l.windows)}
}

func (l *Limiter) Stop() {
	l.stopOnce.Do(func() { close(l.done) })
}

// Middleware limits requests keyed by clientOf. Requests matching exempt
// pass uncounted; exempt and onLimit may be nil.
func (l *Limiter) Middleware(clientOf func(*http.Request) string, exempt func(*http.Request) bool, onLimit func(http.ResponseWriter, *http.Request)) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if exempt != nil && exempt(r) {
				next.ServeHTTP(w, r)
				return
			}
			client := clientOf(r)
			if l.Allow(client) {
				next.ServeHTTP(w, r)
				return
			}
			w.Header().Set("Retry-After", strconv.Itoa(max(l.RetryAfter(client), 1)))
			if onLimit == nil {
				http.Error(w, "too many requests", http.StatusTooManyRequests)
				return
			}
			onLimit(w, r)
		})
	}
}

// ReadOnly exempts safe methods, so only writes are limited.
func ReadOnly(r *http.Request) bool {
	switch r.Method {
	case http.MethodGet, http.MethodHead, http.MethodOptions:
		return true
	}
	return false
}
