package macro

import (
	"fmt"
	"time"

	"github.com/dshills/keyloop/internal/input/key"
	"github.com/dshills/keyloop/internal/input/mouse"
)

// Kind identifies the type of a recorded event. The numeric values are part
// of the persisted document format and must not change.
type Kind uint8

const (
	KeyPress          Kind = 0
	KeyRelease        Kind = 1
	PointerMove       Kind = 2
	PointerButtonDown Kind = 3
	PointerButtonUp   Kind = 4
	PointerScroll     Kind = 5

	kindCount = 6
)

var kindNames = [kindCount]string{
	KeyPress:          "KeyPress",
	KeyRelease:        "KeyRelease",
	PointerMove:       "PointerMove",
	PointerButtonDown: "PointerButtonDown",
	PointerButtonUp:   "PointerButtonUp",
	PointerScroll:     "PointerScroll",
}

// String returns the kind name.
func (k Kind) String() string {
	if k.Valid() {
		return kindNames[k]
	}
	return fmt.Sprintf("Kind(%d)", uint8(k))
}

// Valid reports whether k is one of the six known kinds.
func (k Kind) Valid() bool {
	return k < kindCount
}

// IsKey returns true for key press and release.
func (k Kind) IsKey() bool {
	return k == KeyPress || k == KeyRelease
}

// IsPointer returns true for kinds that carry x and y.
func (k Kind) IsPointer() bool {
	return k >= PointerMove && k <= PointerScroll
}

// HasButton returns true for pointer button press and release.
func (k Kind) HasButton() bool {
	return k == PointerButtonDown || k == PointerButtonUp
}

// Event is a single captured input action.
//
// Key is set only for key kinds. X and Y hold the absolute pointer position
// for move and button kinds, and the scroll deltas for PointerScroll.
// Button is set only for button kinds.
type Event struct {
	Kind      Kind
	Timestamp time.Duration
	Key       key.Key
	X, Y      int
	Button    mouse.Button
}

// KeyEvent creates a key press or release event.
func KeyEvent(kind Kind, ts time.Duration, k key.Key) Event {
	return Event{Kind: kind, Timestamp: ts, Key: k}
}

// MoveEvent creates a pointer move to the absolute position (x, y).
func MoveEvent(ts time.Duration, x, y int) Event {
	return Event{Kind: PointerMove, Timestamp: ts, X: x, Y: y}
}

// ButtonEvent creates a pointer button press or release at (x, y).
func ButtonEvent(kind Kind, ts time.Duration, x, y int, b mouse.Button) Event {
	return Event{Kind: kind, Timestamp: ts, X: x, Y: y, Button: b}
}

// ScrollEvent creates a scroll step with deltas dx and dy.
func ScrollEvent(ts time.Duration, dx, dy int) Event {
	return Event{Kind: PointerScroll, Timestamp: ts, X: dx, Y: dy}
}

// String returns a compact human-readable form of the event.
func (e Event) String() string {
	switch {
	case e.Kind.IsKey():
		return fmt.Sprintf("%s %s @%s", e.Kind, e.Key, e.Timestamp)
	case e.Kind.HasButton():
		return fmt.Sprintf("%s %s (%d,%d) @%s", e.Kind, e.Button, e.X, e.Y, e.Timestamp)
	case e.Kind == PointerScroll:
		return fmt.Sprintf("%s (%+d,%+d) @%s", e.Kind, e.X, e.Y, e.Timestamp)
	default:
		return fmt.Sprintf("%s (%d,%d) @%s", e.Kind, e.X, e.Y, e.Timestamp)
	}
}
