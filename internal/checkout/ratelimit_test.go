package checkout

import (
	"context"
	"testing"
	"time"
)

type fakeClock struct {
	t time.Time
}

func (c *fakeClock) Now() time.Time { return c.t }

func (c *fakeClock) Advance(d time.Duration) { c.t = c.t.Add(d) }

func newTestLimiter() (*Limiter, *fakeClock, *memStore) {
	store := newMemStore()
	clock := &fakeClock{t: time.Date(2025, 6, 2, 10, 0, 0, 0, time.UTC)}
	limiter := NewLimiter(store)
	limiter.now = clock.Now
	return limiter, clock, store
}

func TestLimiterAllowsUpToLimit(t *testing.T) {
	limiter, _, _ := newTestLimiter()
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		_, allowed, err := limiter.Allow(ctx, "sms_phone:+40712345678", 3, 24*time.Hour)
		if err != nil {
			t.Fatalf("Allow returned error: %v", err)
		}
		if !allowed {
			t.Fatalf("call %d should have been allowed", i+1)
		}
	}

	retryAfter, allowed, err := limiter.Allow(ctx, "sms_phone:+40712345678", 3, 24*time.Hour)
	if err != nil {
		t.Fatalf("Allow returned error: %v", err)
	}
	if allowed {
		t.Fatal("4th call within the window should have been denied")
	}
	if retryAfter <= 0 || retryAfter > 24*time.Hour {
		t.Fatalf("retryAfter out of range: %v", retryAfter)
	}
}

func TestLimiterWindowReset(t *testing.T) {
	limiter, clock, _ := newTestLimiter()
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		if _, allowed, _ := limiter.Allow(ctx, "k", 3, time.Hour); !allowed {
			t.Fatalf("call %d should have been allowed", i+1)
		}
	}
	if _, allowed, _ := limiter.Allow(ctx, "k", 3, time.Hour); allowed {
		t.Fatal("over-limit call should have been denied")
	}

	clock.Advance(time.Hour + time.Second)
	if _, allowed, _ := limiter.Allow(ctx, "k", 3, time.Hour); !allowed {
		t.Fatal("call after window elapsed should have been allowed")
	}
}

func TestLimiterKeysAreIndependent(t *testing.T) {
	limiter, _, _ := newTestLimiter()
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		limiter.Allow(ctx, "sms_phone:+40711111111", 3, 24*time.Hour)
	}
	if _, allowed, _ := limiter.Allow(ctx, "sms_phone:+40722222222", 3, 24*time.Hour); !allowed {
		t.Fatal("a different key must have its own budget")
	}
}

func TestLimiterRefundRestoresBudget(t *testing.T) {
	limiter, _, _ := newTestLimiter()
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		limiter.Allow(ctx, "k", 3, time.Hour)
	}
	if err := limiter.Refund(ctx, "k"); err != nil {
		t.Fatalf("Refund returned error: %v", err)
	}
	if _, allowed, _ := limiter.Allow(ctx, "k", 3, time.Hour); !allowed {
		t.Fatal("refunded budget should allow one more call")
	}
	if _, allowed, _ := limiter.Allow(ctx, "k", 3, time.Hour); allowed {
		t.Fatal("budget should be exhausted again")
	}
}

func TestLimiterRetryAfterShrinksOverTime(t *testing.T) {
	limiter, clock, _ := newTestLimiter()
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		limiter.Allow(ctx, "k", 3, time.Hour)
	}
	first, _, _ := limiter.Allow(ctx, "k", 3, time.Hour)
	clock.Advance(30 * time.Minute)
	second, _, _ := limiter.Allow(ctx, "k", 3, time.Hour)
	if second >= first {
		t.Fatalf("retryAfter should shrink as the window ages: first=%v second=%v", first, second)
	}
}
