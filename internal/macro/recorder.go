package macro

import (
	"sync"
	"time"

	"github.com/dshills/keyloop/internal/input"
)

// Observer receives per-event notifications from the recorder and player.
// Implementations must be safe for concurrent use and must not block.
type Observer interface {
	// Captured is called for every event appended while recording.
	Captured(e Event)

	// Fired is called after each replayed event, with how far past its
	// due time it was fired.
	Fired(e Event, lateness time.Duration)

	// Restarted is called each time playback loops back to the start.
	Restarted()
}

type nopObserver struct{}

func (nopObserver) Captured(Event)             {}
func (nopObserver) Fired(Event, time.Duration) {}
func (nopObserver) Restarted()                 {}

// Recorder is the capture sink. It turns input notifications into
// timestamped events while a recording is in progress.
type Recorder struct {
	mu        sync.Mutex
	clock     Clock
	epoch     time.Time
	observer  Observer
	recording bool
	events    []Event
}

// RecorderOption configures a Recorder.
type RecorderOption func(*Recorder)

// WithRecorderClock sets the capture clock.
func WithRecorderClock(c Clock) RecorderOption {
	return func(r *Recorder) {
		r.clock = c
	}
}

// WithRecorderObserver sets the observer notified of captured events.
func WithRecorderObserver(o Observer) RecorderOption {
	return func(r *Recorder) {
		r.observer = o
	}
}

// NewRecorder creates an idle recorder.
func NewRecorder(opts ...RecorderOption) *Recorder {
	r := &Recorder{
		clock:    SystemClock{},
		observer: nopObserver{},
	}
	for _, opt := range opts {
		opt(r)
	}
	r.epoch = r.clock.Now()
	return r
}

// Start begins a new, empty recording.
func (r *Recorder) Start() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.recording {
		return ErrAlreadyRecording
	}
	r.recording = true
	r.events = nil
	return nil
}

// Stop ends the recording, appends the modifier release sequence and
// returns the finished sequence.
func (r *Recorder) Stop() (Sequence, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if !r.recording {
		return Sequence{}, ErrNotRecording
	}
	r.recording = false

	r.events = append(r.events, ReleaseSequence(r.nowLocked())...)
	seq := Sequence{events: r.events}
	r.events = nil
	return seq, nil
}

// IsRecording returns true if a recording is in progress.
func (r *Recorder) IsRecording() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.recording
}

// Len returns the number of events captured so far.
// Returns 0 if not recording.
func (r *Recorder) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.events)
}

// Handle converts a notification into an event and appends it.
// Returns false if not recording.
func (r *Recorder) Handle(n input.Notification) bool {
	r.mu.Lock()
	if !r.recording {
		r.mu.Unlock()
		return false
	}

	ts := r.nowLocked()
	var e Event
	switch n.Kind {
	case input.NotifyMove:
		e = MoveEvent(ts, n.X, n.Y)
	case input.NotifyClick:
		kind := PointerButtonUp
		if n.Pressed {
			kind = PointerButtonDown
		}
		e = ButtonEvent(kind, ts, n.X, n.Y, n.Button)
	case input.NotifyScroll:
		e = ScrollEvent(ts, n.DX, n.DY)
	case input.NotifyKey:
		kind := KeyRelease
		if n.Pressed {
			kind = KeyPress
		}
		e = KeyEvent(kind, ts, n.Key)
	default:
		r.mu.Unlock()
		return false
	}
	r.events = append(r.events, e)
	r.mu.Unlock()

	r.observer.Captured(e)
	return true
}

// nowLocked returns the capture-clock reading, clamped so it never falls
// below the last appended timestamp.
func (r *Recorder) nowLocked() time.Duration {
	ts := r.clock.Now().Sub(r.epoch)
	if n := len(r.events); n > 0 && ts < r.events[n-1].Timestamp {
		ts = r.events[n-1].Timestamp
	}
	return ts
}
