package ratelimit

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/noah-isme/zenmarket/internal/resilience"
)

type failingLimiter struct {
	calls int
}

func (f *failingLimiter) Allow(context.Context, string, time.Duration, int) (bool, int, time.Time, error) {
	f.calls++
	return false, 0, time.Time{}, errors.New("store down")
}

func TestGuardedFallsBackAndOpens(t *testing.T) {
	primary := &failingLimiter{}
	limiter := Guarded{
		Primary:  primary,
		Fallback: NewMemoryLimiter("fallback"),
		Breaker:  resilience.NewBreaker(2, 0.5, time.Minute),
	}
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		allowed, _, _, err := limiter.Allow(ctx, "client", time.Minute, 3)
		require.NoError(t, err)
		require.True(t, allowed)
	}
	require.Equal(t, 2, primary.calls)
	require.Equal(t, resilience.Open, limiter.Breaker.State())

	allowed, remaining, _, err := limiter.Allow(ctx, "client", time.Minute, 3)
	require.NoError(t, err)
	require.True(t, allowed)
	require.Equal(t, 0, remaining)
	require.Equal(t, 2, primary.calls, "open breaker skips the primary store")

	allowed, _, _, err = limiter.Allow(ctx, "client", time.Minute, 3)
	require.NoError(t, err)
	require.False(t, allowed, "fallback keeps enforcing the budget")
}

func TestGuardedWithoutFallbackReturnsError(t *testing.T) {
	limiter := Guarded{Primary: &failingLimiter{}, Breaker: resilience.NewBreaker(5, 0.5, time.Minute)}
	_, _, _, err := limiter.Allow(context.Background(), "client", time.Second, 1)
	require.Error(t, err)
}
