package retry

import (
	"context"
	"errors"
	"testing"
	"time"
)

func fastPolicy() Policy {
	return Policy{Attempts: 3, Delay: time.Millisecond, MaxDelay: 2 * time.Millisecond}
}

func TestDoSucceedsFirstTry(t *testing.T) {
	calls := 0
	err := fastPolicy().Do(context.Background(), func(context.Context) error {
		calls++
		return nil
	})
	if err != nil || calls != 1 {
		t.Errorf("err=%v calls=%d, want nil/1", err, calls)
	}
}

func TestDoRetriesUntilSuccess(t *testing.T) {
	calls := 0
	err := fastPolicy().Do(context.Background(), func(context.Context) error {
		calls++
		if calls < 3 {
			return errors.New("transient")
		}
		return nil
	})
	if err != nil || calls != 3 {
		t.Errorf("err=%v calls=%d, want nil/3", err, calls)
	}
}

func TestDoExhaustsAttempts(t *testing.T) {
	sentinel := errors.New("still down")
	calls := 0
	err := fastPolicy().Do(context.Background(), func(context.Context) error {
		calls++
		return sentinel
	})
	if !errors.Is(err, sentinel) {
		t.Errorf("err = %v, want the last failure", err)
	}
	if calls != 3 {
		t.Errorf("calls = %d, want 3", calls)
	}
}

func TestDoPermanentStopsRetrying(t *testing.T) {
	sentinel := errors.New("ticket already completed")
	calls := 0
	err := fastPolicy().Do(context.Background(), func(context.Context) error {
		calls++
		return Permanent(sentinel)
	})
	if !errors.Is(err, sentinel) {
		t.Errorf("err = %v, want the unwrapped sentinel", err)
	}
	if calls != 1 {
		t.Errorf("calls = %d, want 1 (definitive outcomes are not retried)", calls)
	}
}

func TestPermanentNil(t *testing.T) {
	if Permanent(nil) != nil {
		t.Error("Permanent(nil) must stay nil")
	}
}

func TestDoStopsOnCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	calls := 0
	err := Policy{Attempts: 5, Delay: time.Hour, MaxDelay: time.Hour}.Do(ctx, func(context.Context) error {
		calls++
		return errors.New("transient")
	})
	if err == nil {
		t.Fatal("cancelled context must surface an error")
	}
	if calls != 1 {
		t.Errorf("calls = %d, want 1 (no waiting on a dead context)", calls)
	}
}
