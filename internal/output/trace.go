package output

import (
	"github.com/dshills/keyloop/internal/input/key"
	"github.com/dshills/keyloop/internal/input/mouse"
	"github.com/dshills/keyloop/internal/logging"
)

// Trace wraps a sink and logs every side effect at debug level before
// forwarding it. Failures from the wrapped sink are logged as warnings and
// returned unchanged.
type Trace struct {
	next   Sink
	logger *logging.Logger
}

// NewTrace creates a tracing sink in front of next.
func NewTrace(next Sink, logger *logging.Logger) *Trace {
	if logger == nil {
		logger = logging.Nop()
	}
	return &Trace{next: next, logger: logger.WithComponent("output")}
}

// Position returns the wrapped sink's pointer position.
func (t *Trace) Position() (int, int) {
	return t.next.Position()
}

// MoveBy forwards a relative pointer move.
func (t *Trace) MoveBy(dx, dy int) error {
	return t.forward(Call{Op: OpMove, DX: dx, DY: dy}, t.next.MoveBy(dx, dy))
}

// PressKey forwards a key press.
func (t *Trace) PressKey(k key.Key) error {
	return t.forward(Call{Op: OpKeyDown, Key: k}, t.next.PressKey(k))
}

// ReleaseKey forwards a key release.
func (t *Trace) ReleaseKey(k key.Key) error {
	return t.forward(Call{Op: OpKeyUp, Key: k}, t.next.ReleaseKey(k))
}

// PressButton forwards a button press.
func (t *Trace) PressButton(b mouse.Button) error {
	return t.forward(Call{Op: OpButtonDown, Button: b}, t.next.PressButton(b))
}

// ReleaseButton forwards a button release.
func (t *Trace) ReleaseButton(b mouse.Button) error {
	return t.forward(Call{Op: OpButtonUp, Button: b}, t.next.ReleaseButton(b))
}

// Scroll forwards wheel steps.
func (t *Trace) Scroll(dx, dy int) error {
	return t.forward(Call{Op: OpScroll, DX: dx, DY: dy}, t.next.Scroll(dx, dy))
}

func (t *Trace) forward(c Call, err error) error {
	if err != nil {
		t.logger.WithError(err).Warn("%s failed", c)
		return err
	}
	t.logger.Debug("%s", c)
	return nil
}
