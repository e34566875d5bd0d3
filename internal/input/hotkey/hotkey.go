// Package hotkey recognizes global trigger chords in a stream of key
// notifications.
//
// A chord fires on press-then-release: every key of the chord must be held
// at the same time (in any physical order), and the trigger is reported
// when the first of those keys is released. Keys outside the chord neither
// arm nor disarm it. All keys are canonicalized first, so "<ctrl>" is
// satisfied by either control key.
//
// Listener is not safe for concurrent use; it belongs to the goroutine
// draining the input queue.
package hotkey

import (
	"fmt"

	"github.com/dshills/keyloop/internal/input/key"
)

// Trigger names a bound chord.
type Trigger string

// Hotkey tracks the held state of a single chord.
type Hotkey struct {
	keys  []key.Key
	held  map[key.Key]bool
	armed bool
}

// New creates a hotkey for the given chord. Keys are canonicalized.
func New(keys []key.Key) (*Hotkey, error) {
	if len(keys) == 0 {
		return nil, fmt.Errorf("hotkey: empty chord")
	}
	canon := make([]key.Key, 0, len(keys))
	seen := make(map[key.Key]bool, len(keys))
	for _, k := range keys {
		c := key.Canonical(k)
		if c.IsZero() {
			return nil, fmt.Errorf("hotkey: zero key in chord")
		}
		if seen[c] {
			continue
		}
		seen[c] = true
		canon = append(canon, c)
	}
	return &Hotkey{
		keys: canon,
		held: make(map[key.Key]bool, len(canon)),
	}, nil
}

// Parse creates a hotkey from chord notation like "<ctrl>+<alt>+b".
func Parse(spec string) (*Hotkey, error) {
	keys, err := key.ParseChord(spec)
	if err != nil {
		return nil, err
	}
	return New(keys)
}

// Keys returns the canonical chord keys.
func (h *Hotkey) Keys() []key.Key {
	out := make([]key.Key, len(h.keys))
	copy(out, h.keys)
	return out
}

// String returns the chord in parseable notation.
func (h *Hotkey) String() string {
	return key.FormatChord(h.keys)
}

// Armed returns true while the whole chord is held.
func (h *Hotkey) Armed() bool {
	return h.armed
}

func (h *Hotkey) member(k key.Key) bool {
	for _, c := range h.keys {
		if c == k {
			return true
		}
	}
	return false
}

// Press records a key press. k must already be canonical.
func (h *Hotkey) Press(k key.Key) {
	if !h.member(k) {
		return
	}
	h.held[k] = true
	if len(h.held) == len(h.keys) {
		h.armed = true
	}
}

// Release records a key release and returns true if it completes the chord.
// k must already be canonical.
func (h *Hotkey) Release(k key.Key) bool {
	if !h.held[k] {
		return false
	}
	delete(h.held, k)
	if h.armed {
		h.armed = false
		return true
	}
	return false
}

// Reset forgets all held keys.
func (h *Hotkey) Reset() {
	clear(h.held)
	h.armed = false
}

type binding struct {
	trigger Trigger
	hotkey  *Hotkey
}

// Listener matches key transitions against a set of bound chords.
type Listener struct {
	bindings []binding
}

// NewListener creates a listener with no bindings.
func NewListener() *Listener {
	return &Listener{}
}

// Bind associates a chord with a trigger. Bindings are checked in the
// order they were added.
func (l *Listener) Bind(t Trigger, h *Hotkey) {
	l.bindings = append(l.bindings, binding{trigger: t, hotkey: h})
}

// Hotkey returns the chord bound to t, or nil.
func (l *Listener) Hotkey(t Trigger) *Hotkey {
	for _, b := range l.bindings {
		if b.trigger == t {
			return b.hotkey
		}
	}
	return nil
}

// Handle feeds one key transition to every binding and returns the
// triggers it completed.
func (l *Listener) Handle(k key.Key, pressed bool) []Trigger {
	c := key.Canonical(k)
	var fired []Trigger
	for _, b := range l.bindings {
		if pressed {
			b.hotkey.Press(c)
			continue
		}
		if b.hotkey.Release(c) {
			fired = append(fired, b.trigger)
		}
	}
	return fired
}

// Reset clears the held state of every binding.
func (l *Listener) Reset() {
	for _, b := range l.bindings {
		b.hotkey.Reset()
	}
}
