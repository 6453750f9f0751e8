package ratelimit

import (
	"context"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func TestLimiterAllowSlidingWindow(t *testing.T) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("run miniredis: %v", err)
	}
	defer mr.Close()

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer func() { _ = client.Close() }()
	limiter := SlidingWindow{Client: client, Prefix: "test:"}

	ctx := context.Background()
	window := 2 * time.Second
	max := 2

	for i := 0; i < max; i++ {
		allowed, remaining, _, err := limiter.Allow(ctx, "key", window, max)
		if err != nil {
			t.Fatalf("allow: %v", err)
		}
		if !allowed {
			t.Fatalf("expected request %d to be allowed", i)
		}
		if remaining != max-(i+1) {
			t.Fatalf("unexpected remaining: %d", remaining)
		}
	}

	allowed, remaining, _, err := limiter.Allow(ctx, "key", window, max)
	if err != nil {
		t.Fatalf("allow: %v", err)
	}
	if allowed {
		t.Fatal("expected third request to be rejected")
	}
	if remaining != 0 {
		t.Fatalf("expected remaining 0, got %d", remaining)
	}

	mr.FastForward(window)

	allowed, _, _, err = limiter.Allow(ctx, "key", window, max)
	if err != nil {
		t.Fatalf("allow after window: %v", err)
	}
	if !allowed {
		t.Fatal("expected request after window to be allowed")
	}
}

func TestFixedWindowMemoryStore(t *testing.T) {
	limiter := NewMemoryLimiter("test")
	ctx := context.Background()

	allowed, remaining, reset, err := limiter.Allow(ctx, "key", time.Minute, 2)
	if err != nil {
		t.Fatalf("allow: %v", err)
	}
	if !allowed || remaining != 1 {
		t.Fatalf("unexpected first result allowed=%v remaining=%d", allowed, remaining)
	}
	if !reset.After(time.Now()) {
		t.Fatalf("expected reset in the future, got %v", reset)
	}

	if allowed, _, _, _ = limiter.Allow(ctx, "key", time.Minute, 2); !allowed {
		t.Fatal("expected second request allowed")
	}
	allowed, remaining, _, err = limiter.Allow(ctx, "key", time.Minute, 2)
	if err != nil {
		t.Fatalf("allow: %v", err)
	}
	if allowed || remaining != 0 {
		t.Fatalf("expected third request rejected, allowed=%v remaining=%d", allowed, remaining)
	}
}

func TestLimitersDisabledWithoutBudget(t *testing.T) {
	ctx := context.Background()
	for _, l := range []Limiter{SlidingWindow{}, FixedWindow{}, NewMemoryLimiter("x")} {
		allowed, _, _, err := l.Allow(ctx, "k", time.Second, 0)
		if err != nil || !allowed {
			t.Fatalf("%T: expected allow without budget, got allowed=%v err=%v", l, allowed, err)
		}
	}
}
