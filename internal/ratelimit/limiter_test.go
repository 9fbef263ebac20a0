package ratelimit

import (
	"errors"
	"testing"
	"time"

	"podium/internal/services"
)

type fakeClock struct {
	now time.Time
}

func (c *fakeClock) Now() time.Time { return c.now }

func (c *fakeClock) Advance(d time.Duration) { c.now = c.now.Add(d) }

func TestNewRejectsNonPositiveRate(t *testing.T) {
	if _, err := New(0); !errors.Is(err, services.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
	if _, err := New(-5); err == nil {
		t.Fatal("expected error for negative rate")
	}
}

func TestBurstWithinCapacityDoesNotBlock(t *testing.T) {
	clock := &fakeClock{now: time.Unix(1_000_000, 0)}
	var slept []time.Duration
	limiter, err := New(60,
		WithClock(clock.Now),
		WithSleep(func(d time.Duration) { slept = append(slept, d) }))
	if err != nil {
		t.Fatal(err)
	}

	for i := 0; i < 60; i++ {
		limiter.Acquire()
		limiter.Release()
	}
	if len(slept) != 0 {
		t.Fatalf("burst within capacity should not sleep, slept %v", slept)
	}
}

func TestOverflowBlocksForLeakTime(t *testing.T) {
	clock := &fakeClock{now: time.Unix(1_000_000, 0)}
	var slept []time.Duration
	limiter, err := New(60,
		WithClock(clock.Now),
		WithSleep(func(d time.Duration) {
			slept = append(slept, d)
			clock.Advance(d)
		}))
	if err != nil {
		t.Fatal(err)
	}

	// Fill the bucket without any simulated time passing.
	for i := 0; i < 60; i++ {
		limiter.Acquire()
		limiter.Release()
	}
	limiter.Acquire()
	limiter.Release()

	if len(slept) != 1 {
		t.Fatalf("61st request should sleep exactly once, slept %v", slept)
	}
	// Level 60, capacity 60, rate 1/s: wait (60-60+1)/1 = 1s.
	if slept[0] != time.Second {
		t.Errorf("expected 1s wait, got %v", slept[0])
	}
}

func TestIdleTimeDrainsBucket(t *testing.T) {
	clock := &fakeClock{now: time.Unix(1_000_000, 0)}
	var slept []time.Duration
	limiter, err := New(60,
		WithClock(clock.Now),
		WithSleep(func(d time.Duration) {
			slept = append(slept, d)
			clock.Advance(d)
		}))
	if err != nil {
		t.Fatal(err)
	}

	for i := 0; i < 60; i++ {
		limiter.Acquire()
		limiter.Release()
	}
	// A full bucket drains completely after 60s idle at 1 req/s.
	clock.Advance(60 * time.Second)
	for i := 0; i < 60; i++ {
		limiter.Acquire()
		limiter.Release()
	}
	if len(slept) != 0 {
		t.Fatalf("drained bucket should admit a fresh burst, slept %v", slept)
	}
}

func TestReleaseWithoutAcquireIsNoop(t *testing.T) {
	clock := &fakeClock{now: time.Unix(1_000_000, 0)}
	limiter, err := New(60, WithClock(clock.Now))
	if err != nil {
		t.Fatal(err)
	}
	limiter.Release()
}

func TestDoReleasesOnError(t *testing.T) {
	clock := &fakeClock{now: time.Unix(1_000_000, 0)}
	limiter, err := New(60, WithClock(clock.Now), WithSleep(func(time.Duration) {}))
	if err != nil {
		t.Fatal(err)
	}
	wantErr := errors.New("boom")
	if got := limiter.Do(func() error { return wantErr }); !errors.Is(got, wantErr) {
		t.Fatalf("Do should return fn error, got %v", got)
	}
	limiter.mu.Lock()
	inFlight := limiter.inFlight
	limiter.mu.Unlock()
	if inFlight {
		t.Error("Do should release even when fn fails")
	}
}
