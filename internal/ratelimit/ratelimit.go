// Package ratelimit provides a per-key token bucket limiter, used to throttle
// login and registration attempts per client IP.
package ratelimit

import (
	"context"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// Options tunes idle-key eviction. Zero values use the defaults.
type Options struct {
	IdleTTL       time.Duration // Forget keys unused this long (default 10m)
	SweepInterval time.Duration // How often to look (default 1m)
}

type entry struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// KeyedRateLimiter gives every key its own independent limiter.
type KeyedRateLimiter struct {
	mu       sync.Mutex
	limiters map[string]*entry
	limit    rate.Limit
	burst    int
	idleTTL  time.Duration
	now      func() time.Time

	done     chan struct{}
	stopOnce sync.Once
}

// New creates a limiter allowing rps requests per second per key with the
// given burst, and starts the eviction goroutine. Call Stop when done.
func New(rps float64, burst int) *KeyedRateLimiter {
	return NewWithOptions(rps, burst, Options{})
}

// PerMinute is New with the rate expressed per minute.
func PerMinute(n, burst int) *KeyedRateLimiter {
	return New(float64(n)/60, burst)
}

// NewWithOptions is New with explicit eviction settings.
func NewWithOptions(rps float64, burst int, opts Options) *KeyedRateLimiter {
	if opts.IdleTTL <= 0 {
		opts.IdleTTL = 10 * time.Minute
	}
	if opts.SweepInterval <= 0 {
		opts.SweepInterval = time.Minute
	}

	krl := &KeyedRateLimiter{
		limiters: make(map[string]*entry),
		limit:    rate.Limit(rps),
		burst:    burst,
		idleTTL:  opts.IdleTTL,
		now:      time.Now,
		done:     make(chan struct{}),
	}

	go krl.sweepLoop(opts.SweepInterval)

	return krl
}

// Allow reports whether a request for key may proceed now.
func (krl *KeyedRateLimiter) Allow(key string) bool {
	return krl.getLimiter(key).Allow()
}

// Wait blocks until a request for key is allowed or ctx is done.
func (krl *KeyedRateLimiter) Wait(ctx context.Context, key string) error {
	return krl.getLimiter(key).Wait(ctx)
}

// RetryAfter estimates how long key must wait for its next token.
func (krl *KeyedRateLimiter) RetryAfter(key string) time.Duration {
	r := krl.getLimiter(key).Reserve()
	defer r.Cancel()
	if !r.OK() {
		return time.Minute
	}
	return r.Delay()
}

// Len returns the number of tracked keys.
func (krl *KeyedRateLimiter) Len() int {
	krl.mu.Lock()
	defer krl.mu.Unlock()
	return len(krl.limiters)
}

func (krl *KeyedRateLimiter) getLimiter(key string) *rate.Limiter {
	krl.mu.Lock()
	defer krl.mu.Unlock()

	e, ok := krl.limiters[key]
	if !ok {
		e = &entry{limiter: rate.NewLimiter(krl.limit, krl.burst)}
		krl.limiters[key] = e
	}
	e.lastSeen = krl.now()
	return e.limiter
}

// Stop ends the eviction goroutine. Safe to call more than once.
func (krl *KeyedRateLimiter) Stop() {
	krl.stopOnce.Do(func() {
		close(krl.done)
	})
}

// Shutdown lets the DI container stop the limiter. A nil limiter is a no-op.
func (krl *KeyedRateLimiter) Shutdown() error {
	if krl == nil {
		return nil
	}
	krl.Stop()
	return nil
}

func (krl *KeyedRateLimiter) sweepLoop(interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-krl.done:
			return
		case <-ticker.C:
			krl.sweep()
		}
	}
}

// sweep drops keys idle for longer than idleTTL. A dropped key starts again
// with a full bucket, which is what it would have refilled to anyway.
func (krl *KeyedRateLimiter) sweep() {
	cutoff := krl.now().Add(-krl.idleTTL)

	krl.mu.Lock()
	defer krl.mu.Unlock()

	for key, e := range krl.limiters {
		if e.lastSeen.Before(cutoff) {
			delete(krl.limiters, key)
		}
	}
}
