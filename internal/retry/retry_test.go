package retry

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestDo_SucceedsFirstAttempt(t *testing.T) {
	calls := 0
	err := Do(context.Background(), 3, nil, func() error {
		calls++
		return nil
	})
	if err != nil {
		t.Fatalf("err=%v want nil", err)
	}
	if calls != 1 {
		t.Fatalf("calls=%d want 1", calls)
	}
}

func TestDo_RetriesThenSucceeds(t *testing.T) {
	calls := 0
	err := Do(context.Background(), 3, func(int) time.Duration { return 0 }, func() error {
		calls++
		if calls < 3 {
			return errors.New("transient")
		}
		return nil
	})
	if err != nil {
		t.Fatalf("err=%v want nil", err)
	}
	if calls != 3 {
		t.Fatalf("calls=%d want 3", calls)
	}
}

func TestDo_ExhaustedReturnsLastError(t *testing.T) {
	calls := 0
	last := errors.New("last failure")
	err := Do(context.Background(), 3, func(int) time.Duration { return 0 }, func() error {
		calls++
		if calls == 3 {
			return last
		}
		return errors.New("earlier failure")
	})
	if !errors.Is(err, last) {
		t.Fatalf("err=%v want last failure", err)
	}
	if calls != 3 {
		t.Fatalf("calls=%d want 3", calls)
	}
}

func TestDo_NoSleepAfterFinalAttempt(t *testing.T) {
	start := time.Now()
	_ = Do(context.Background(), 1, func(int) time.Duration { return time.Hour }, func() error {
		return errors.New("fail")
	})
	if elapsed := time.Since(start); elapsed > time.Second {
		t.Fatalf("final attempt slept for %s", elapsed)
	}
}

func TestDo_ContextCancelInterruptsBackoff(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(10 * time.Millisecond)
		cancel()
	}()
	err := Do(ctx, 3, func(int) time.Duration { return time.Hour }, func() error {
		return errors.New("fail")
	})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("err=%v want context.Canceled", err)
	}
}

func TestExponential(t *testing.T) {
	b := Exponential(time.Second)
	for i, want := range []time.Duration{time.Second, 2 * time.Second, 4 * time.Second, 8 * time.Second} {
		if got := b(i); got != want {
			t.Fatalf("backoff(%d)=%s want %s", i, got, want)
		}
	}
}
