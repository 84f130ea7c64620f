// Package notify implements the fan-out notification dispatcher: one
// message delivered to a dynamic recipient set, tolerating per-recipient
// failure.
package notify

import (
	"context"
	"log"
	"time"
)

// Sender delivers one message to one chat. The Telegram transport adapter
// implements it; tests substitute fakes.
type Sender interface {
	SendText(ctx context.Context, chatID int64, text string) error
}

// Dispatcher fans a message out to a recipient set with at-least-effort
// semantics: each delivery is attempted exactly once, one failure never
// aborts the rest.
type Dispatcher struct {
	sender   Sender
	throttle time.Duration
}

func NewDispatcher(sender Sender, throttle time.Duration) *Dispatcher {
	return &Dispatcher{sender: sender, throttle: throttle}
}

// NotifyAll attempts delivery to every recipient and returns the subset
// that failed. A small pause between sends respects the transport's rate
// limits; throttling is the dispatcher's concern, not its callers'.
func (d *Dispatcher) NotifyAll(ctx context.Context, recipients []int64, text string) []int64 {
	var failed []int64
	for i, chat := range recipients {
		if i > 0 && d.throttle > 0 {
			select {
			case <-ctx.Done():
				// Remaining recipients were never attempted; count them
				// as failed so the escalation contact hears about them.
				failed = append(failed, recipients[i:]...)
				return failed
			case <-time.After(d.throttle):
			}
		}
		if err := d.sender.SendText(ctx, chat, text); err != nil {
			log.Printf("notify: send to %d failed: %v", chat, err)
			failed = append(failed, chat)
		}
	}
	return failed
}
