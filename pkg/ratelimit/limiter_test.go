package ratelimit

import (
	"context"
	"testing"
	"time"

	"golang.org/x/time/rate"
)

func TestNew(t *testing.T) {
	l := New(5, 2)
	if l.Limit() != rate.Limit(5) {
		t.Errorf("Limit() = %v, want 5", l.Limit())
	}
}

func TestNew_NonPositiveRateMeansUnlimited(t *testing.T) {
	for _, rps := range []float64{0, -1} {
		l := New(rps, 1)
		if l.Limit() != rate.Inf {
			t.Errorf("New(%v) Limit = %v, want Inf", rps, l.Limit())
		}
	}
}

func TestNew_BurstFloor(t *testing.T) {
	// A zero burst would make every Wait fail; it must floor at 1.
	l := New(5, 0)
	if err := l.Wait(context.Background()); err != nil {
		t.Errorf("Wait() with floored burst: %v", err)
	}
}

func TestWait_Throttles(t *testing.T) {
	l := New(20, 1) // 50ms per token

	ctx := context.Background()
	start := time.Now()
	for i := 0; i < 3; i++ {
		if err := l.Wait(ctx); err != nil {
			t.Fatalf("Wait() error: %v", err)
		}
	}

	// First token is free, the next two cost 50ms each.
	if elapsed := time.Since(start); elapsed < 90*time.Millisecond {
		t.Errorf("3 waits took %v, want >= ~100ms", elapsed)
	}
}

func TestWait_Unlimited(t *testing.T) {
	l := New(0, 1)

	ctx := context.Background()
	start := time.Now()
	for i := 0; i < 100; i++ {
		if err := l.Wait(ctx); err != nil {
			t.Fatalf("Wait() error: %v", err)
		}
	}
	if elapsed := time.Since(start); elapsed > 100*time.Millisecond {
		t.Errorf("unlimited waits took %v", elapsed)
	}
}

func TestWait_ContextCancelled(t *testing.T) {
	l := New(0.1, 1) // 10s per token
	ctx := context.Background()

	if err := l.Wait(ctx); err != nil {
		t.Fatalf("first Wait() error: %v", err)
	}

	cancelCtx, cancel := context.WithTimeout(ctx, 20*time.Millisecond)
	defer cancel()

	if err := l.Wait(cancelCtx); err == nil {
		t.Error("Wait() with expiring context should fail")
	}
}
