package bus

import (
	"context"
	"time"
)

// Backoff is the wait before each retry of a state-bearing publish; once it
// is exhausted the caller gives up.
var Backoff = []time.Duration{
	50 * time.Millisecond,
	100 * time.Millisecond,
	200 * time.Millisecond,
	500 * time.Millisecond,
	time.Second,
}

// Retry calls fn until it succeeds, waiting schedule[i] after the i-th
// failure. The last error is returned once the schedule runs out.
func Retry(ctx context.Context, schedule []time.Duration, fn func() error) error {
	err := fn()
	for _, wait := range schedule {
		if err == nil {
			return nil
		}
		t := time.NewTimer(wait)
		select {
		case <-ctx.Done():
			t.Stop()
			return ctx.Err()
		case <-t.C:
		}
		err = fn()
	}
	return err
}
