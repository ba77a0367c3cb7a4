package backoff

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestPolicyDelay(t *testing.T) {
	p := Policy{Initial: 10 * time.Millisecond, Max: 50 * time.Millisecond, Factor: 2, Jitter: 0.5}
	tests := []struct {
		attempt int
		random  float64
		want    time.Duration
	}{
		{0, 0, 10 * time.Millisecond},
		{1, 0, 10 * time.Millisecond},
		{2, 0, 20 * time.Millisecond},
		{3, 0, 40 * time.Millisecond},
		{4, 0, 50 * time.Millisecond},
		{1, 0.5, 12500 * time.Microsecond},
	}
	for _, tt := range tests {
		if got := p.Delay(tt.attempt, tt.random); got != tt.want {
			t.Errorf("Delay(%d, %v) = %v, want %v", tt.attempt, tt.random, got, tt.want)
		}
	}
}

func TestSleep(t *testing.T) {
	if err := Sleep(context.Background(), 0); err != nil {
		t.Errorf("Sleep(0) = %v", err)
	}
	if err := Sleep(context.Background(), -time.Second); err != nil {
		t.Errorf("Sleep(negative) = %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	start := time.Now()
	if err := Sleep(ctx, time.Minute); !errors.Is(err, context.Canceled) {
		t.Errorf("Sleep(cancelled) = %v", err)
	}
	if time.Since(start) > time.Second {
		t.Error("cancelled Sleep should return promptly")
	}
}

func TestRetry(t *testing.T) {
	fast := Policy{Initial: time.Microsecond, Factor: 1}
	errFlaky := errors.New("xclip: cannot open display")

	t.Run("succeeds after failures", func(t *testing.T) {
		calls := 0
		err := Retry(context.Background(), fast, 3, func() error {
			calls++
			if calls < 3 {
				return errFlaky
			}
			return nil
		})
		if err != nil || calls != 3 {
			t.Errorf("err = %v, calls = %d", err, calls)
		}
	})

	t.Run("exhausted", func(t *testing.T) {
		calls := 0
		err := Retry(context.Background(), fast, 2, func() error {
			calls++
			return errFlaky
		})
		if !errors.Is(err, ErrAttemptsExhausted) || !errors.Is(err, errFlaky) {
			t.Errorf("err = %v", err)
		}
		if calls != 2 {
			t.Errorf("calls = %d, want 2", calls)
		}
	})

	t.Run("zero attempts runs once", func(t *testing.T) {
		calls := 0
		_ = Retry(context.Background(), fast, 0, func() error { calls++; return nil })
		if calls != 1 {
			t.Errorf("calls = %d, want 1", calls)
		}
	})

	t.Run("cancelled", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		calls := 0
		err := Retry(ctx, fast, 3, func() error { calls++; return nil })
		if !errors.Is(err, context.Canceled) || calls != 0 {
			t.Errorf("err = %v, calls = %d", err, calls)
		}
	})
}
