package utils

import (
	"context"
	"time"
)

// timer is swapped in tests to control when a wait ends.
var timer = func(d time.Duration) (<-chan time.Time, func() bool) {
	t := time.NewTimer(d)
	return t.C, t.Stop
}

// WaitFor pauses between retry attempts. It returns ctx.Err() when the
// context ends first, and the timer is released either way.
func WaitFor(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}

	fired, stop := timer(d)
	defer stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-fired:
		return nil
	}
}
