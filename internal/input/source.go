package input

import (
	"context"
	"errors"
	"fmt"
)

// DefaultQueueSize is the notification buffer used when none is given.
const DefaultQueueSize = 256

// ErrSourceClosed is returned by ChanSource once its channel is closed.
var ErrSourceClosed = errors.New("input source closed")

// Source emits raw device notifications until ctx is done or the
// source is exhausted.
type Source interface {
	Stream(ctx context.Context, emit func(Notification) error) error
}

// SourceFunc adapts a function literal to the Source interface.
type SourceFunc func(ctx context.Context, emit func(Notification) error) error

// Stream calls the underlying function.
func (f SourceFunc) Stream(ctx context.Context, emit func(Notification) error) error {
	return f(ctx, emit)
}

// ChanSource emits every notification received on a channel.
// Stream returns ErrSourceClosed when the channel is closed.
type ChanSource <-chan Notification

// Stream forwards notifications from the channel.
func (c ChanSource) Stream(ctx context.Context, emit func(Notification) error) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case n, ok := <-c:
			if !ok {
				return ErrSourceClosed
			}
			if err := emit(n); err != nil {
				return err
			}
		}
	}
}

// Queue runs a Source in its own goroutine and exposes its notifications
// through a bounded channel. A full queue applies backpressure to the
// source rather than dropping notifications.
type Queue struct {
	ch   chan Notification
	done chan struct{}
	err  error
}

// NewQueue starts streaming src into a channel of the given capacity.
// The channel is closed when the source returns; Err reports why.
func NewQueue(ctx context.Context, src Source, size int) *Queue {
	if size <= 0 {
		size = DefaultQueueSize
	}
	q := &Queue{
		ch:   make(chan Notification, size),
		done: make(chan struct{}),
	}

	go func() {
		defer close(q.done)
		defer close(q.ch)
		err := src.Stream(ctx, func(n Notification) error {
			select {
			case q.ch <- n:
				return nil
			case <-ctx.Done():
				return ctx.Err()
			}
		})
		if err != nil && !errors.Is(err, context.Canceled) {
			q.err = fmt.Errorf("input source: %w", err)
		}
	}()

	return q
}

// C returns the receive side of the queue.
func (q *Queue) C() <-chan Notification {
	return q.ch
}

// Done is closed once the source has returned.
func (q *Queue) Done() <-chan struct{} {
	return q.done
}

// Err returns the source's terminal error, if any. It is only
// meaningful after Done is closed.
func (q *Queue) Err() error {
	<-q.done
	return q.err
}

// Idle is a Source that never emits and returns when ctx is done.
var Idle Source = SourceFunc(func(ctx context.Context, _ func(Notification) error) error {
	<-ctx.Done()
	return ctx.Err()
})
