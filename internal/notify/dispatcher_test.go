package notify

import (
	"context"
	"errors"
	"testing"
	"time"
)

type fakeSender struct {
	sent    []int64
	failFor map[int64]bool
}

func (s *fakeSender) SendText(_ context.Context, chatID int64, _ string) error {
	if s.failFor[chatID] {
		return errors.New("blocked by user")
	}
	s.sent = append(s.sent, chatID)
	return nil
}

func TestNotifyAllReturnsFailedSubset(t *testing.T) {
	sender := &fakeSender{failFor: map[int64]bool{2: true, 4: true}}
	d := NewDispatcher(sender, 0)

	failed := d.NotifyAll(context.Background(), []int64{1, 2, 3, 4, 5}, "alert")

	if len(failed) != 2 || failed[0] != 2 || failed[1] != 4 {
		t.Errorf("failed = %v, want [2 4]", failed)
	}
	if len(sender.sent) != 3 {
		t.Errorf("delivered = %v, want the other three", sender.sent)
	}
}

func TestNotifyAllAllSucceed(t *testing.T) {
	sender := &fakeSender{}
	d := NewDispatcher(sender, 0)
	if failed := d.NotifyAll(context.Background(), []int64{1, 2, 3}, "x"); len(failed) != 0 {
		t.Errorf("failed = %v, want none", failed)
	}
}

func TestNotifyAllCancelledContext(t *testing.T) {
	sender := &fakeSender{}
	d := NewDispatcher(sender, time.Hour) // long throttle so cancellation always wins the wait
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	failed := d.NotifyAll(ctx, []int64{1, 2, 3}, "x")
	// The first send happens before any throttle wait; the rest are counted
	// as failed without being attempted.
	if len(failed) != 2 {
		t.Errorf("failed = %v, want the unattempted tail", failed)
	}
}
