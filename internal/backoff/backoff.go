// Package backoff provides context-aware sleeping and retrying for flaky
// desktop helpers such as clipboard commands.
package backoff

import (
	"context"
	"errors"
	"math"
	"math/rand"
	"time"
)

// ErrAttemptsExhausted wraps the last failure once every attempt has failed.
var ErrAttemptsExhausted = errors.New("retry attempts exhausted")

// Policy describes exponential growth of the delay between attempts.
type Policy struct {
	Initial time.Duration
	Max     time.Duration
	Factor  float64
	// Jitter adds up to this fraction of the delay at random (0.0 to 1.0).
	Jitter float64
}

// QuickPolicy suits local helper processes: 25ms, 50ms, 100ms... capped at 500ms.
func QuickPolicy() Policy {
	return Policy{
		Initial: 25 * time.Millisecond,
		Max:     500 * time.Millisecond,
		Factor:  2,
		Jitter:  0.1,
	}
}

// Delay returns the wait after the given attempt (1-indexed). random must be
// in [0, 1); pass 0 for a deterministic result.
func (p Policy) Delay(attempt int, random float64) time.Duration {
	exp := math.Max(float64(attempt-1), 0)
	factor := p.Factor
	if factor < 1 {
		factor = 1
	}
	base := float64(p.Initial) * math.Pow(factor, exp)
	total := base + base*p.Jitter*random
	if p.Max > 0 {
		total = math.Min(float64(p.Max), total)
	}
	return time.Duration(math.Round(total))
}

// Sleep waits for d or until ctx ends. Non-positive durations return at once.
func Sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// Retry calls fn up to attempts times, sleeping per policy in between.
// Context cancellation stops the loop and is returned as is.
func Retry(ctx context.Context, policy Policy, attempts int, fn func() error) error {
	if attempts < 1 {
		attempts = 1
	}
	var last error
	for attempt := 1; attempt <= attempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return err
		}
		if last = fn(); last == nil {
			return nil
		}
		if attempt < attempts {
			delay := policy.Delay(attempt, rand.Float64()) // #nosec G404 -- jitter does not require cryptographic randomness
			if err := Sleep(ctx, delay); err != nil {
				return err
			}
		}
	}
	return errors.Join(ErrAttemptsExhausted, last)
}
