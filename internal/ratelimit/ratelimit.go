// Package ratelimit provides keyed token-bucket rate limiting for outbound
// API calls. Each key (a model name, a provider endpoint) gets its own
// independent bucket.
package ratelimit

import (
	"context"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

const (
	// idleTTL is how long an untouched bucket survives before eviction.
	idleTTL = 15 * time.Minute

	sweepInterval = 5 * time.Minute
)

// Keyed hands out one token bucket per key and evicts buckets that have
// gone idle.
type Keyed struct {
	mu      sync.Mutex
	buckets map[string]*bucket
	limit   rate.Limit
	burst   int

	done     chan struct{}
	stopOnce sync.Once
}

type bucket struct {
	limiter  *rate.Limiter
	lastUsed time.Time
}

// New creates a keyed limiter allowing rps requests per second with the
// given burst per key.
func New(rps float64, burst int) *Keyed {
	k := &Keyed{
		buckets: make(map[string]*bucket),
		limit:   rate.Limit(rps),
		burst:   burst,
		done:    make(chan struct{}),
	}

	go k.evictIdle()

	return k
}

// Allow reports whether a request for key may proceed right now. It never
// blocks; use it for inbound protection.
func (k *Keyed) Allow(key string) bool {
	return k.get(key).Allow()
}

// Wait blocks until a request for key may proceed or ctx is done. Use it
// for outbound calls that should be throttled rather than dropped.
func (k *Keyed) Wait(ctx context.Context, key string) error {
	return k.get(key).Wait(ctx)
}

// get returns the bucket's limiter for key, creating it on first use and
// stamping the access time.
func (k *Keyed) get(key string) *rate.Limiter {
	k.mu.Lock()
	defer k.mu.Unlock()

	b, ok := k.buckets[key]
	if !ok {
		b = &bucket{limiter: rate.NewLimiter(k.limit, k.burst)}
		k.buckets[key] = b
	}
	b.lastUsed = time.Now()
	return b.limiter
}

// Stop shuts down the eviction loop.
func (k *Keyed) Stop() {
	k.stopOnce.Do(func() {
		close(k.done)
	})
}

// evictIdle drops buckets that have not been used within idleTTL. A dropped
// bucket regenerates with a full burst on next use, which is acceptable for
// the call volumes involved.
func (k *Keyed) evictIdle() {
	ticker := time.NewTicker(sweepInterval)
	defer ticker.Stop()

	for {
		select {
		case <-k.done:
			return
		case <-ticker.C:
			k.sweep(time.Now().Add(-idleTTL))
		}
	}
}

// sweep removes every bucket last used before cutoff.
func (k *Keyed) sweep(cutoff time.Time) {
	k.mu.Lock()
	defer k.mu.Unlock()

	for key, b := range k.buckets {
		if b.lastUsed.Before(cutoff) {
			delete(k.buckets, key)
		}
	}
}
