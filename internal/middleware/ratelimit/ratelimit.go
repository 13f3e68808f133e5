// Package ratelimit throttles clients with one token bucket per client key.
package ratelimit

import (
	"math"
	"net/http"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"cashflow/internal/cache"

	"golang.org/x/time/rate"
)

// Limiter hands out a token bucket per client. Idle buckets expire from a
// bounded LRU cache, so a client that disappears stops costing memory.
type Limiter struct {
	mu      sync.Mutex
	clients *cache.LRUCache[*rate.Limiter]

	limit rate.Limit
	burst int

	rejected atomic.Int64
}

// Config holds rate limiter configuration
type Config struct {
	RequestsPerMinute int
	// Burst defaults to RequestsPerMinute.
	Burst      int
	MaxClients int
	IdleTTL    time.Duration
}

func DefaultConfig() Config {
	return Config{
		RequestsPerMinute: 60,
		MaxClients:        10000,
		IdleTTL:           10 * time.Minute,
	}
}

func NewLimiter(config Config) *Limiter {
	def := DefaultConfig()
	if config.RequestsPerMinute <= 0 {
		config.RequestsPerMinute = def.RequestsPerMinute
	}
	if config.Burst <= 0 {
		config.Burst = config.RequestsPerMinute
	}
	if config.MaxClients <= 0 {
		config.MaxClients = def.MaxClients
	}
	if config.IdleTTL <= 0 {
		config.IdleTTL = def.IdleTTL
	}

	return &Limiter{
		clients: cache.NewLRUCache[*rate.Limiter](config.MaxClients, config.IdleTTL),
		limit:   rate.Every(time.Minute / time.Duration(config.RequestsPerMinute)),
		burst:   config.Burst,
	}
}

func (rl *Limiter) bucket(key string) *rate.Limiter {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	lim, ok := rl.clients.Get(key)
	if !ok {
		lim = rate.NewLimiter(rl.limit, rl.burst)
	}
	// Refresh the idle TTL on every hit.
	rl.clients.Set(key, lim)
	return lim
}

// Allow reports whether the client identified by key may proceed now.
func (rl *Limiter) Allow(key string) bool {
	return rl.bucket(key).Allow()
}

// retryAfter estimates how long the client must wait for the next token.
func (rl *Limiter) retryAfter(key string) time.Duration {
	r := rl.bucket(key).Reserve()
	defer r.Cancel()
	return r.Delay()
}

// Cache exposes the client cache so a cache.Manager can sweep it.
func (rl *Limiter) Cache() cache.Cleaner { return rl.clients }

func (rl *Limiter) ActiveClients() int { return rl.clients.Size() }

func (rl *Limiter) Rejected() int64 { return rl.rejected.Load() }

// Middleware rejects over-limit requests with 429. keyFunc picks the
// client key, usually the client IP.
func (rl *Limiter) Middleware(keyFunc func(*http.Request) string, onLimit func(http.ResponseWriter, *http.Request)) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			key := keyFunc(r)
			if rl.Allow(key) {
				next.ServeHTTP(w, r)
				return
			}

			rl.rejected.Add(1)
			wait := int(math.Ceil(rl.retryAfter(key).Seconds()))
			if wait < 1 {
				wait = 1
			}
			w.Header().Set("Retry-After", strconv.Itoa(wait))
			if onLimit != nil {
				onLimit(w, r)
				return
			}
			http.Error(w, "Rate limit exceeded. Please try again later.", http.StatusTooManyRequests)
		})
	}
}
