// Package retry centralizes bounded retry with capped backoff for store
// and transport access, replacing scattered sleep loops at call sites.
package retry

import (
	"context"
	"errors"
	"time"
)

// Policy is a fixed attempt count with exponentially growing, capped
// delays between attempts.
type Policy struct {
	Attempts int
	Delay    time.Duration // delay before the second attempt
	MaxDelay time.Duration // growth cap
}

// DefaultStore is the policy applied to relational-store access.
var DefaultStore = Policy{Attempts: 3, Delay: 500 * time.Millisecond, MaxDelay: 5 * time.Second}

type permanentError struct{ err error }

func (e *permanentError) Error() string { return e.err.Error() }
func (e *permanentError) Unwrap() error { return e.err }

// Permanent marks err as a definitive outcome rather than a transient
// failure: Do returns the wrapped error immediately instead of retrying.
func Permanent(err error) error {
	if err == nil {
		return nil
	}
	return &permanentError{err: err}
}

// Do runs fn until it succeeds, returns a Permanent error, the attempts are
// exhausted, or the context is cancelled. The last error is returned; the
// caller decides whether to surface it as a transient failure.
func (p Policy) Do(ctx context.Context, fn func(ctx context.Context) error) error {
	attempts := p.Attempts
	if attempts < 1 {
		attempts = 1
	}
	delay := p.Delay
	var err error
	for i := 0; i < attempts; i++ {
		if err = fn(ctx); err == nil {
			return nil
		}
		var perm *permanentError
		if errors.As(err, &perm) {
			return perm.err
		}
		if i == attempts-1 {
			break
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(delay):
		}
		delay *= 2
		if p.MaxDelay > 0 && delay > p.MaxDelay {
			delay = p.MaxDelay
		}
	}
	return err
}
