package macro

import (
	"context"
	"time"
)

// Clock supplies time to the recorder and player.
type Clock interface {
	// Now returns the current time. Successive calls never go backwards.
	Now() time.Time

	// Sleep blocks for d or until ctx is done, whichever comes first,
	// and returns ctx.Err() in the latter case.
	Sleep(ctx context.Context, d time.Duration) error
}

// SystemClock is a Clock backed by the monotonic system clock.
type SystemClock struct{}

// Now returns time.Now(), which carries a monotonic reading.
func (SystemClock) Now() time.Time {
	return time.Now()
}

// Sleep waits on a timer, yielding the processor.
func (SystemClock) Sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
