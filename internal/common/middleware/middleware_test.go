package middleware

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestTokenBucketExhaustion(t *testing.T) {
	tb := NewTokenBucket(3, 0)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		if !tb.Allow(ctx) {
			t.Fatalf("request %d should be allowed", i+1)
		}
	}
	if tb.Allow(ctx) {
		t.Fatalf("request beyond capacity should be rejected")
	}
}

func TestKeyedLimiterIsolatesKeys(t *testing.T) {
	kl := NewKeyedLimiter(1, 0)
	ctx := context.Background()

	if !kl.Allow(ctx, "1.2.3.4") {
		t.Fatalf("first request for key should be allowed")
	}
	if kl.Allow(ctx, "1.2.3.4") {
		t.Fatalf("second request for same key should be rejected")
	}
	// 其他 key 不受影响
	if !kl.Allow(ctx, "5.6.7.8") {
		t.Fatalf("different key should have its own bucket")
	}
}

func TestCircuitBreakerOpensAfterFailures(t *testing.T) {
	cb := NewCircuitBreaker("test", 2, time.Minute)
	ctx := context.Background()
	boom := errors.New("boom")

	for i := 0; i < 2; i++ {
		if err := cb.Call(ctx, func() error { return boom }); !errors.Is(err, boom) {
			t.Fatalf("expected underlying error, got %v", err)
		}
	}
	if got := cb.GetState(); got != StateOpen {
		t.Fatalf("expected open after %d failures, got %v", 2, got)
	}

	if err := cb.Call(ctx, func() error { return nil }); !errors.Is(err, ErrCircuitOpen) {
		t.Fatalf("open breaker should reject calls, got %v", err)
	}
}

func TestCircuitBreakerHalfOpenRecovery(t *testing.T) {
	cb := NewCircuitBreaker("test", 1, 10*time.Millisecond)
	ctx := context.Background()

	if err := cb.Call(ctx, func() error { return errors.New("boom") }); err == nil {
		t.Fatalf("expected failure")
	}
	if cb.GetState() != StateOpen {
		t.Fatalf("expected open state")
	}

	time.Sleep(20 * time.Millisecond)

	// 半开后一次成功应恢复关闭
	if err := cb.Call(ctx, func() error { return nil }); err != nil {
		t.Fatalf("half-open probe should pass, got %v", err)
	}
	if got := cb.GetState(); got != StateClosed {
		t.Fatalf("expected closed after successful probe, got %v", got)
	}
}

func TestCircuitBreakerIgnoresContextCancel(t *testing.T) {
	cb := NewCircuitBreaker("test", 1, time.Minute)
	ctx := context.Background()

	if err := cb.Call(ctx, func() error { return context.Canceled }); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	if got := cb.GetState(); got != StateClosed {
		t.Fatalf("caller cancellation must not trip the breaker, got %v", got)
	}
}
