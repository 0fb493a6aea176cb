package ratelimit

import (
	"sync"
	"time"

	"github.com/lmerrick/dashguard/internal/config"
	"github.com/lmerrick/dashguard/internal/dependencies/clock"
)

// Limiter bounds submission frequency per canonical identity with a
// sliding window of timestamps. Each identity has its own critical
// section; distinct identities never contend.
type Limiter struct {
	cfg   config.RateLimitConfig
	clock clock.Clock

	mu      sync.Mutex // guards the bucket map only
	buckets map[string]*bucket
}

type bucket struct {
	mu    sync.Mutex
	times []time.Time
}

// NewLimiter creates a new rate limiter
func NewLimiter(cfg config.RateLimitConfig, clock clock.Clock) *Limiter {
	return &Limiter{
		cfg:     cfg,
		clock:   clock,
		buckets: make(map[string]*bucket),
	}
}

// Allow reports whether the identity may submit now. An allowed call
// consumes one slot; a denied call consumes nothing, so flooding cannot
// grow the bucket past its bound. retryAfter is how long until a slot
// frees up, zero when allowed.
func (l *Limiter) Allow(identityKey string) (allowed bool, retryAfter time.Duration) {
	b := l.bucketFor(identityKey)

	b.mu.Lock()
	defer b.mu.Unlock()

	now := l.clock.Now()
	cutoff := now.Add(-l.cfg.Window)

	// Evict timestamps that slid out of the window
	kept := b.times[:0]
	for _, t := range b.times {
		if t.After(cutoff) {
			kept = append(kept, t)
		}
	}
	b.times = kept

	if len(b.times) >= l.cfg.MaxSubmissions {
		oldest := b.times[0]
		return false, oldest.Sub(cutoff)
	}

	b.times = append(b.times, now)
	return true, 0
}

func (l *Limiter) bucketFor(identityKey string) *bucket {
	l.mu.Lock()
	defer l.mu.Unlock()
	b, ok := l.buckets[identityKey]
	if !ok {
		b = &bucket{}
		l.buckets[identityKey] = b
	}
	return b
}
