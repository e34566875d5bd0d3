package output

import (
	"fmt"
	"sync"

	"github.com/dshills/keyloop/internal/input/key"
	"github.com/dshills/keyloop/internal/input/mouse"
)

// Op identifies a recorded sink call.
type Op uint8

const (
	OpMove Op = iota
	OpKeyDown
	OpKeyUp
	OpButtonDown
	OpButtonUp
	OpScroll
)

// String returns the op name.
func (o Op) String() string {
	switch o {
	case OpMove:
		return "move"
	case OpKeyDown:
		return "key-down"
	case OpKeyUp:
		return "key-up"
	case OpButtonDown:
		return "button-down"
	case OpButtonUp:
		return "button-up"
	case OpScroll:
		return "scroll"
	default:
		return fmt.Sprintf("Op(%d)", o)
	}
}

// Call is one side effect applied to a Virtual sink.
type Call struct {
	Op     Op
	DX, DY int
	Key    key.Key
	Button mouse.Button
}

// String returns a compact description of the call.
func (c Call) String() string {
	switch c.Op {
	case OpMove, OpScroll:
		return fmt.Sprintf("%s %+d,%+d", c.Op, c.DX, c.DY)
	case OpKeyDown, OpKeyUp:
		return fmt.Sprintf("%s %s", c.Op, c.Key)
	default:
		return fmt.Sprintf("%s %s", c.Op, c.Button)
	}
}

// Virtual is an in-memory sink. It tracks the pointer position, the held
// keys and buttons, and every call made to it.
type Virtual struct {
	mu      sync.Mutex
	pos     mouse.Position
	keys    map[key.Key]bool
	buttons map[mouse.Button]bool
	calls   []Call
	hook    func(Call)
}

// NewVirtual creates a virtual sink with the pointer at (x, y).
func NewVirtual(x, y int) *Virtual {
	return &Virtual{
		pos:     mouse.Position{X: x, Y: y},
		keys:    make(map[key.Key]bool),
		buttons: make(map[mouse.Button]bool),
	}
}

// OnCall registers fn to run after every call, outside the sink lock.
func (v *Virtual) OnCall(fn func(Call)) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.hook = fn
}

// Position returns the virtual pointer position.
func (v *Virtual) Position() (int, int) {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.pos.X, v.pos.Y
}

// MoveBy shifts the virtual pointer.
func (v *Virtual) MoveBy(dx, dy int) error {
	v.mu.Lock()
	v.pos.X += dx
	v.pos.Y += dy
	return v.record(Call{Op: OpMove, DX: dx, DY: dy})
}

// PressKey marks k as held.
func (v *Virtual) PressKey(k key.Key) error {
	v.mu.Lock()
	v.keys[k] = true
	return v.record(Call{Op: OpKeyDown, Key: k})
}

// ReleaseKey marks k as released.
func (v *Virtual) ReleaseKey(k key.Key) error {
	v.mu.Lock()
	delete(v.keys, k)
	return v.record(Call{Op: OpKeyUp, Key: k})
}

// PressButton marks b as held.
func (v *Virtual) PressButton(b mouse.Button) error {
	v.mu.Lock()
	v.buttons[b] = true
	return v.record(Call{Op: OpButtonDown, Button: b})
}

// ReleaseButton marks b as released.
func (v *Virtual) ReleaseButton(b mouse.Button) error {
	v.mu.Lock()
	delete(v.buttons, b)
	return v.record(Call{Op: OpButtonUp, Button: b})
}

// Scroll records wheel steps.
func (v *Virtual) Scroll(dx, dy int) error {
	v.mu.Lock()
	return v.record(Call{Op: OpScroll, DX: dx, DY: dy})
}

// record appends c, releases the lock taken by the caller and runs the hook.
func (v *Virtual) record(c Call) error {
	v.calls = append(v.calls, c)
	hook := v.hook
	v.mu.Unlock()
	if hook != nil {
		hook(c)
	}
	return nil
}

// Calls returns a copy of every call made so far.
func (v *Virtual) Calls() []Call {
	v.mu.Lock()
	defer v.mu.Unlock()
	out := make([]Call, len(v.calls))
	copy(out, v.calls)
	return out
}

// HeldKeys returns the keys currently pressed.
func (v *Virtual) HeldKeys() []key.Key {
	v.mu.Lock()
	defer v.mu.Unlock()
	out := make([]key.Key, 0, len(v.keys))
	for k := range v.keys {
		out = append(out, k)
	}
	return out
}

// IsButtonHeld reports whether b is currently pressed.
func (v *Virtual) IsButtonHeld(b mouse.Button) bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.buttons[b]
}

// Reset clears the call log and held state, keeping the pointer position.
func (v *Virtual) Reset() {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.calls = nil
	v.keys = make(map[key.Key]bool)
	v.buttons = make(map[mouse.Button]bool)
}
