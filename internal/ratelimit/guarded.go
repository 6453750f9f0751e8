package ratelimit

import (
	"context"
	"time"

	"github.com/noah-isme/zenmarket/internal/resilience"
)

// Guarded consults Primary while its breaker is closed and switches to
// Fallback when the primary store fails or the breaker is open. Clients keep
// being limited, per process, during a shared store outage.
type Guarded struct {
	Primary  Limiter
	Fallback Limiter
	Breaker  *resilience.Breaker
}

// Allow implements Limiter.
func (g Guarded) Allow(ctx context.Context, key string, window time.Duration, max int) (bool, int, time.Time, error) {
	if g.Breaker == nil {
		return g.Primary.Allow(ctx, key, window, max)
	}
	var (
		allowed   bool
		remaining int
		reset     time.Time
	)
	err := g.Breaker.Do(ctx, func(ctx context.Context) error {
		var err error
		allowed, remaining, reset, err = g.Primary.Allow(ctx, key, window, max)
		return err
	})
	if err == nil {
		return allowed, remaining, reset, nil
	}
	if g.Fallback == nil {
		return false, 0, time.Now().Add(window), err
	}
	return g.Fallback.Allow(ctx, key, window, max)
}
