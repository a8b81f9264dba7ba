package provider

import (
	"context"
	"time"

	"github.com/rotisserie/eris"
	"golang.org/x/time/rate"
)

// Limiter enforces a minimum interval between calls per upstream API. Keys
// without a registered interval pass through unthrottled.
type Limiter struct {
	limiters map[string]*rate.Limiter
}

// NewLimiter builds a limiter from per-key minimum intervals.
func NewLimiter(intervals map[string]time.Duration) *Limiter {
	l := &Limiter{limiters: make(map[string]*rate.Limiter, len(intervals))}
	for key, iv := range intervals {
		if iv <= 0 {
			continue
		}
		l.limiters[key] = rate.NewLimiter(rate.Every(iv), 1)
	}
	return l
}

// Acquire blocks until the key's next slot is available. It fails only when
// the context is cancelled first.
func (l *Limiter) Acquire(ctx context.Context, key string) error {
	rl, ok := l.limiters[key]
	if !ok {
		return nil
	}
	if err := rl.Wait(ctx); err != nil {
		return eris.Wrapf(err, "rate limit wait for %s", key)
	}
	return nil
}
