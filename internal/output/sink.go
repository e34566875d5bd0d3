package output

import (
	"errors"

	"github.com/dshills/keyloop/internal/input/key"
	"github.com/dshills/keyloop/internal/input/mouse"
)

// ErrUnsupported is returned by a sink that cannot inject a given action.
var ErrUnsupported = errors.New("output: unsupported action")

// Sink injects synthetic input into the host.
type Sink interface {
	// Position returns the current pointer position.
	Position() (x, y int)

	// MoveBy moves the pointer relative to its current position.
	MoveBy(dx, dy int) error

	// PressKey and ReleaseKey inject a key transition.
	PressKey(k key.Key) error
	ReleaseKey(k key.Key) error

	// PressButton and ReleaseButton inject a button transition at the
	// current pointer position.
	PressButton(b mouse.Button) error
	ReleaseButton(b mouse.Button) error

	// Scroll injects wheel steps.
	Scroll(dx, dy int) error
}
