// Package await is the harness's synchronization engine. Every suspension
// point in a scenario is a bounded predicate poll through this package;
// fixed sleeps are not a substitute for these waits.
package await

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// PollInterval is the fixed interval between predicate evaluations.
const PollInterval = 250 * time.Millisecond

// TimeoutError reports that a predicate never held within its bound. It
// carries the predicate's description so scenario failures name the unmet
// condition rather than a bare deadline.
type TimeoutError struct {
	Description string
	Timeout     time.Duration
}

func (e *TimeoutError) Error() string {
	return fmt.Sprintf("condition %q not met within %v", e.Description, e.Timeout)
}

// IsTimeout reports whether err is, or wraps, a synchronization timeout.
func IsTimeout(err error) bool {
	var te *TimeoutError
	return errors.As(err, &te)
}

// Until polls pred at PollInterval until it returns true or timeout elapses.
// Predicate errors are treated as "not yet" and retried; only the timeout
// surfaces, carrying desc. The parent context cancellation aborts early.
func Until(ctx context.Context, desc string, timeout time.Duration, pred func(context.Context) (bool, error)) error {
	deadline := time.Now().Add(timeout)
	ticker := time.NewTicker(PollInterval)
	defer ticker.Stop()

	for {
		ok, err := pred(ctx)
		if err == nil && ok {
			return nil
		}
		if time.Now().After(deadline) {
			return &TimeoutError{Description: desc, Timeout: timeout}
		}
		select {
		case <-ctx.Done():
			return fmt.Errorf("wait for %q aborted: %w", desc, ctx.Err())
		case <-ticker.C:
		}
	}
}

// Absence is the dual of Until: it resolves once pred stops holding, used to
// confirm an element or condition has disappeared (a deleted row, a spinner).
func Absence(ctx context.Context, desc string, timeout time.Duration, pred func(context.Context) (bool, error)) error {
	return Until(ctx, "absence of "+desc, timeout, func(ctx context.Context) (bool, error) {
		ok, err := pred(ctx)
		if err != nil {
			// An evaluation error (e.g. stale node) counts as absent.
			return true, nil
		}
		return !ok, nil
	})
}

// Value polls fetch until it yields a value, returning the zero value and a
// TimeoutError when the bound elapses first.
func Value[T any](ctx context.Context, desc string, timeout time.Duration, fetch func(context.Context) (T, bool, error)) (T, error) {
	var out T
	err := Until(ctx, desc, timeout, func(ctx context.Context) (bool, error) {
		v, ok, err := fetch(ctx)
		if err != nil || !ok {
			return false, err
		}
		out = v
		return true, nil
	})
	return out, err
}
