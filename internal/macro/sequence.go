package macro

import (
	"time"

	"github.com/dshills/keyloop/internal/input/key"
)

// releaseKeys are the modifiers released at the end of every recording so a
// replay never leaves a modifier stuck down. The stop hotkey is usually
// still held when recording ends.
var releaseKeys = []key.Named{key.Alt, key.AltGr, key.Cmd, key.Ctrl}

// ReleaseSequence returns the KeyRelease events for alt, alt_gr, cmd and
// ctrl, in that order, all stamped with ts.
func ReleaseSequence(ts time.Duration) []Event {
	events := make([]Event, len(releaseKeys))
	for i, n := range releaseKeys {
		events[i] = KeyEvent(KeyRelease, ts, key.Of(n))
	}
	return events
}

// Sequence is an ordered, read-only list of events with non-decreasing
// timestamps. The zero Sequence is empty.
type Sequence struct {
	events []Event
}

// NewSequence copies events into a Sequence. It returns ErrUnordered if
// a timestamp is lower than the one before it.
func NewSequence(events []Event) (Sequence, error) {
	for i := 1; i < len(events); i++ {
		if events[i].Timestamp < events[i-1].Timestamp {
			return Sequence{}, &FormatError{Index: i, Field: "ts", Err: ErrUnordered}
		}
	}
	return freeze(events), nil
}

func freeze(events []Event) Sequence {
	if len(events) == 0 {
		return Sequence{}
	}
	copied := make([]Event, len(events))
	copy(copied, events)
	return Sequence{events: copied}
}

// Len returns the number of events.
func (s Sequence) Len() int {
	return len(s.events)
}

// IsEmpty returns true if the sequence holds no events.
func (s Sequence) IsEmpty() bool {
	return len(s.events) == 0
}

// At returns the i-th event.
func (s Sequence) At(i int) Event {
	return s.events[i]
}

// Events returns a copy of the events.
func (s Sequence) Events() []Event {
	out := make([]Event, len(s.events))
	copy(out, s.events)
	return out
}

// Duration returns the span between the first and last event.
func (s Sequence) Duration() time.Duration {
	if len(s.events) < 2 {
		return 0
	}
	return s.events[len(s.events)-1].Timestamp - s.events[0].Timestamp
}

// Offsets returns each event's timestamp relative to the first event.
func (s Sequence) Offsets() []time.Duration {
	out := make([]time.Duration, len(s.events))
	for i, e := range s.events {
		out[i] = e.Timestamp - s.events[0].Timestamp
	}
	return out
}

// CountByKind tallies the events per kind.
func (s Sequence) CountByKind() map[Kind]int {
	counts := make(map[Kind]int)
	for _, e := range s.events {
		counts[e.Kind]++
	}
	return counts
}
