package macro

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/dshills/keyloop/internal/logging"
	"github.com/dshills/keyloop/internal/output"
)

const (
	// DefaultPollInterval is the longest the scheduler waits between
	// checks of the clock. It bounds how late an event can fire.
	DefaultPollInterval = 2 * time.Millisecond

	// MaxPollInterval is the coarsest polling quantum accepted.
	MaxPollInterval = 10 * time.Millisecond

	// DefaultRestartDelay is the pause between the last event of one pass
	// and the first event of the next.
	DefaultRestartDelay = time.Second

	// DefaultMaxDuration caps a single playback session. Zero disables the cap.
	DefaultMaxDuration = 7 * time.Hour
)

// Player replays a sequence through an output sink in an endless loop.
type Player struct {
	out          output.Sink
	clock        Clock
	poll         time.Duration
	restartDelay time.Duration
	maxDuration  time.Duration
	logger       *logging.Logger
	observer     Observer

	playing atomic.Bool
}

// PlayerOption configures a Player.
type PlayerOption func(*Player)

// WithClock sets the playback clock.
func WithClock(c Clock) PlayerOption {
	return func(p *Player) {
		p.clock = c
	}
}

// WithPollInterval sets the polling quantum.
func WithPollInterval(d time.Duration) PlayerOption {
	return func(p *Player) {
		if d > 0 {
			p.poll = d
		}
	}
}

// WithRestartDelay sets the pause between passes.
func WithRestartDelay(d time.Duration) PlayerOption {
	return func(p *Player) {
		if d >= 0 {
			p.restartDelay = d
		}
	}
}

// WithMaxDuration caps the length of a playback session. Zero means no cap.
func WithMaxDuration(d time.Duration) PlayerOption {
	return func(p *Player) {
		if d >= 0 {
			p.maxDuration = d
		}
	}
}

// WithLogger sets the player's logger.
func WithLogger(l *logging.Logger) PlayerOption {
	return func(p *Player) {
		if l != nil {
			p.logger = l
		}
	}
}

// WithObserver sets the observer notified of fired events.
func WithObserver(o Observer) PlayerOption {
	return func(p *Player) {
		if o != nil {
			p.observer = o
		}
	}
}

// NewPlayer creates a player that drives out.
func NewPlayer(out output.Sink, opts ...PlayerOption) *Player {
	p := &Player{
		out:          out,
		clock:        SystemClock{},
		poll:         DefaultPollInterval,
		restartDelay: DefaultRestartDelay,
		maxDuration:  DefaultMaxDuration,
		logger:       logging.Nop(),
		observer:     nopObserver{},
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// IsPlaying returns true while Play is running.
func (p *Player) IsPlaying() bool {
	return p.playing.Load()
}

// Play replays seq until ctx is canceled, the maximum session duration
// elapses, or an event cannot be replayed.
//
// The first event fires immediately. Each later event fires once the clock
// has advanced by its offset from the first event. After the last event the
// player waits the restart delay and begins the next pass. Whenever several
// events are due at once they are fired back to back, in order, before the
// next wait.
//
// An empty sequence is rejected with a *PlaybackError. Canceling ctx
// returns the context error; reaching the maximum duration returns nil.
func (p *Player) Play(ctx context.Context, seq Sequence) error {
	if seq.IsEmpty() {
		return &PlaybackError{Err: ErrEmptySequence}
	}

	if !p.playing.CompareAndSwap(false, true) {
		return &PlaybackError{Err: ErrAlreadyPlaying}
	}
	defer p.playing.Store(false)

	return p.run(ctx, seq.events)
}

func (p *Player) run(ctx context.Context, events []Event) error {
	start := p.clock.Now()
	var deadline time.Time
	if p.maxDuration > 0 {
		deadline = start.Add(p.maxDuration)
	}

	// anchor is the wall time corresponding to events[0].Timestamp for the
	// current pass.
	anchor := start.Add(-events[0].Timestamp)
	due := start
	cursor := 0
	pass := 1

	p.logger.Info("Start playing %d events", len(events))

	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		now := p.clock.Now()
		if !deadline.IsZero() && !now.Before(deadline) {
			p.logger.Info("Maximum play duration %s reached", p.maxDuration)
			return nil
		}

		for !now.Before(due) {
			if err := ctx.Err(); err != nil {
				return err
			}

			e := events[cursor]
			if err := p.fire(cursor, e); err != nil {
				return err
			}
			p.observer.Fired(e, now.Sub(due))

			cursor++
			if cursor == len(events) {
				cursor = 0
				pass++
				due = p.clock.Now().Add(p.restartDelay)
				anchor = due.Add(-events[0].Timestamp)
				p.observer.Restarted()
				p.logger.WithField("pass", pass).Info("Restart playing")
				break
			}
			due = anchor.Add(events[cursor].Timestamp)
			now = p.clock.Now()
		}

		wait := due.Sub(p.clock.Now())
		if wait > p.poll {
			wait = p.poll
		}
		if wait <= 0 {
			continue
		}
		if err := p.clock.Sleep(ctx, wait); err != nil {
			return err
		}
	}
}

// fire applies the side effect of a single event.
func (p *Player) fire(i int, e Event) error {
	var err error
	switch e.Kind {
	case PointerMove, PointerButtonDown, PointerButtonUp:
		x, y := p.out.Position()
		if err = p.out.MoveBy(e.X-x, e.Y-y); err != nil {
			break
		}
		switch e.Kind {
		case PointerButtonDown:
			err = p.out.PressButton(e.Button)
		case PointerButtonUp:
			err = p.out.ReleaseButton(e.Button)
		}
	case PointerScroll:
		err = p.out.Scroll(e.X, e.Y)
	case KeyPress:
		err = p.out.PressKey(e.Key)
	case KeyRelease:
		err = p.out.ReleaseKey(e.Key)
	default:
		return &UnknownEventTypeError{Kind: e.Kind, Index: i}
	}
	if err != nil {
		return fmt.Errorf("replay event %d (%s): %w", i, e.Kind, err)
	}
	return nil
}
