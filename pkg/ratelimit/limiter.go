// Package ratelimit implements request admission control with token
// buckets keyed by (route class, client identity).
package ratelimit

import (
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// defaultIdleTTL is how long a bucket may sit unused before eviction.
const defaultIdleTTL = 10 * time.Minute

// evictInterval bounds how often Allow performs an opportunistic eviction
// pass over the bucket registry.
const evictInterval = time.Minute

// Rule is the admission policy for one route class.
type Rule struct {
	// Enabled turns limiting on for the class; a disabled class admits
	// everything
	Enabled bool

	// RequestsPerMinute is the sustained refill rate
	RequestsPerMinute int

	// BurstSize is the bucket capacity: how many requests a fresh client
	// may issue instantly
	BurstSize int
}

// Config holds the per-class rules plus the global bypass list.
type Config struct {
	Auth   Rule
	Upload Rule
	Static Rule

	// DisabledRoutes lists path prefixes that bypass limiting entirely
	DisabledRoutes []string

	// IdleTTL is how long an untouched bucket survives before eviction
	// (default 10m)
	IdleTTL time.Duration
}

// bucket pairs a token bucket with its last-use stamp for idle eviction.
type bucket struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// Limiter is a registry of lazily created token buckets.
//
// Each bucket refills continuously at RequestsPerMinute/60 tokens per
// second up to BurstSize capacity; an admitted request consumes one token.
// Buckets idle past IdleTTL are evicted opportunistically during Allow, so
// the registry stays bounded by the set of recently active clients.
type Limiter struct {
	mu        sync.Mutex
	rules     map[Class]Rule
	disabled  []string
	buckets   map[string]*bucket
	idleTTL   time.Duration
	lastEvict time.Time
}

// New creates a limiter from the given config.
func New(cfg Config) *Limiter {
	idleTTL := cfg.IdleTTL
	if idleTTL <= 0 {
		idleTTL = defaultIdleTTL
	}
	return &Limiter{
		rules: map[Class]Rule{
			ClassAuth:   cfg.Auth,
			ClassUpload: cfg.Upload,
			ClassStatic: cfg.Static,
		},
		disabled:  cfg.DisabledRoutes,
		buckets:   make(map[string]*bucket),
		idleTTL:   idleTTL,
		lastEvict: time.Now(),
	}
}

// Allow reports whether one request from clientID may proceed under the
// given class. The bucket for the key is created on first use.
func (l *Limiter) Allow(class Class, clientID string) bool {
	rule, ok := l.rules[class]
	if !ok || !rule.Enabled {
		return true
	}

	key := string(class) + "|" + clientID

	l.mu.Lock()
	now := time.Now()
	if now.Sub(l.lastEvict) >= evictInterval {
		l.evictLocked(now)
	}
	b, ok := l.buckets[key]
	if !ok {
		b = &bucket{
			limiter: rate.NewLimiter(rate.Limit(float64(rule.RequestsPerMinute)/60.0), rule.BurstSize),
		}
		l.buckets[key] = b
	}
	b.lastSeen = now
	l.mu.Unlock()

	return b.limiter.Allow()
}

// EvictIdle removes buckets untouched for longer than the idle TTL and
// returns how many were removed.
func (l *Limiter) EvictIdle(now time.Time) int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.evictLocked(now)
}

// BucketCount returns the number of live buckets.
func (l *Limiter) BucketCount() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.buckets)
}

func (l *Limiter) evictLocked(now time.Time) int {
	removed := 0
	for key, b := range l.buckets {
		if now.Sub(b.lastSeen) > l.idleTTL {
			delete(l.buckets, key)
			removed++
		}
	}
	l.lastEvict = now
	return removed
}
