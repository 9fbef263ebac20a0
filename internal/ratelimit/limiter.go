// Package ratelimit throttles outbound API requests with a leaky bucket.
package ratelimit

import (
	"sync"
	"time"

	"podium/internal/services"
)

// Limiter is a leaky bucket rate limiter. Bursts up to the bucket capacity
// pass immediately; beyond that, Acquire blocks until the bucket has leaked
// enough room. Safe for concurrent use.
type Limiter struct {
	ratePerSecond float64
	capacity      float64

	mu         sync.Mutex
	level      float64
	lastUpdate time.Time
	inFlight   bool

	now   func() time.Time
	sleep func(time.Duration)
}

// Option configures a Limiter.
type Option func(*Limiter)

// WithClock substitutes the time source, for tests.
func WithClock(now func() time.Time) Option {
	return func(l *Limiter) { l.now = now }
}

// WithSleep substitutes the blocking sleep, for tests.
func WithSleep(sleep func(time.Duration)) Option {
	return func(l *Limiter) { l.sleep = sleep }
}

// WithCapacity overrides the burst capacity, which otherwise defaults to
// the per-minute rate.
func WithCapacity(capacity int) Option {
	return func(l *Limiter) { l.capacity = float64(capacity) }
}

// New constructs a Limiter for the given sustained request rate.
func New(requestsPerMinute int, opts ...Option) (*Limiter, error) {
	if requestsPerMinute <= 0 {
		return nil, services.Wrap(services.ErrValidation, "ratelimit", "new",
			"requests per minute must be positive", nil)
	}
	l := &Limiter{
		ratePerSecond: float64(requestsPerMinute) / 60.0,
		capacity:      float64(requestsPerMinute),
		now:           time.Now,
		sleep:         time.Sleep,
	}
	for _, opt := range opts {
		opt(l)
	}
	l.lastUpdate = l.now()
	return l, nil
}

// Acquire blocks until the request may proceed. Callers pair it with
// Release once the response arrives so pacing reflects response time
// rather than request time. The lock is held for the duration of a blocked
// wait, so concurrent callers queue behind it.
func (l *Limiter) Acquire() {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	l.leak(now)

	if l.level >= l.capacity {
		wait := time.Duration((l.level - l.capacity + 1) / l.ratePerSecond * float64(time.Second))
		l.sleep(wait)
		now = l.now()
		l.leak(now)
	}

	l.level++
	l.inFlight = true
}

// Release marks the in-flight request complete and rebaselines the leak
// clock to the completion time.
func (l *Limiter) Release() {
	l.mu.Lock()
	defer l.mu.Unlock()

	if !l.inFlight {
		return
	}
	l.lastUpdate = l.now()
	l.inFlight = false
}

// Do runs fn inside an Acquire/Release pair.
func (l *Limiter) Do(fn func() error) error {
	l.Acquire()
	defer l.Release()
	return fn()
}

// leak drains the bucket for the time elapsed since the last update.
// Callers must hold the lock.
func (l *Limiter) leak(now time.Time) {
	elapsed := now.Sub(l.lastUpdate).Seconds()
	if elapsed > 0 {
		l.level -= elapsed * l.ratePerSecond
		if l.level < 0 {
			l.level = 0
		}
	}
	l.lastUpdate = now
}
